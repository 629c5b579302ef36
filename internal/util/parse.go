package util

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// ParseLimit reads the "limit" query param with a default and an upper bound.
func ParseLimit(c *gin.Context, def, max int) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(def)))
	if err != nil || limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	return limit
}

// ParseOffset reads the "offset" query param, clamped at zero.
func ParseOffset(c *gin.Context) int {
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return offset
}

// ParseBoolQuery reads a query param as a boolean, defaulting when absent or malformed.
func ParseBoolQuery(c *gin.Context, key string, def bool) bool {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return val
}
