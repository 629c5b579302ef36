package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/punkontrol/backend/internal/util"
)

// FixCounts recomputes the denormalized per-user counters. userId query
// param limits the repair to one account; otherwise every user is swept.
func (h *Handlers) FixCounts(c *gin.Context) {
	if userID := c.Query("userId"); userID != "" {
		if err := h.repairer.FixUser(c.Request.Context(), userID); err != nil {
			util.RespondInternalError(c, "failed to repair user counters")
			return
		}
		c.JSON(http.StatusOK, gin.H{"repaired": 1})
		return
	}

	repaired, err := h.repairer.FixAll(c.Request.Context())
	if err != nil {
		util.RespondInternalError(c, "failed to repair counters")
		return
	}

	c.JSON(http.StatusOK, gin.H{"repaired": repaired})
}
