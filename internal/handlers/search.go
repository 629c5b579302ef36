package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/punkontrol/backend/internal/discover"
	"github.com/punkontrol/backend/internal/metrics"
	"github.com/punkontrol/backend/internal/models"
	"github.com/punkontrol/backend/internal/util"
)

// Search runs the aggregated discover query across artworks, posts
// and users.
func (h *Handlers) Search(c *gin.Context) {
	sort := discover.Sort(c.DefaultQuery("sort", string(discover.SortLatest)))
	if sort != discover.SortLatest && sort != discover.SortPopular {
		util.RespondValidationError(c, "sort", "unknown sort order")
		return
	}

	nsfw := discover.NSFWFilter(c.DefaultQuery("nsfw", string(discover.NSFWHide)))
	switch nsfw {
	case discover.NSFWHide, discover.NSFWShow, discover.NSFWOnly:
	default:
		util.RespondValidationError(c, "nsfw", "unknown nsfw filter")
		return
	}

	postType := c.Query("type")
	if postType != "" && !models.ValidPostType(postType) {
		util.RespondValidationError(c, "type", "unknown post type")
		return
	}

	opts := discover.Options{
		Query:    c.Query("q"),
		Category: c.Query("category"),
		Type:     postType,
		NSFW:     nsfw,
		Sort:     sort,
		Limit:    util.ParseLimit(c, 50, 200),
	}

	results, err := h.discover.Search(c.Request.Context(), opts)
	if err != nil {
		util.RespondInternalError(c, "search failed")
		return
	}

	metrics.Get().SearchQueriesTotal.WithLabelValues(string(sort)).Inc()

	c.JSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
}
