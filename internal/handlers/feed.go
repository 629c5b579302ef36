package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/punkontrol/backend/internal/feed"
	"github.com/punkontrol/backend/internal/metrics"
	"github.com/punkontrol/backend/internal/models"
	"github.com/punkontrol/backend/internal/util"
)

// GetFeed serves one page of the post feed. The cursor is opaque to the
// client; an empty cursor starts from the top. has_more turns false on
// the first short page.
func (h *Handlers) GetFeed(c *gin.Context) {
	limit := util.ParseLimit(c, feed.DefaultPageSize, 50)

	postType := c.Query("type")
	if postType != "" && !models.ValidPostType(postType) {
		util.RespondValidationError(c, "type", "unknown post type")
		return
	}

	cursor, err := feed.DecodeCursor(c.Query("cursor"))
	if err != nil {
		util.RespondBadRequest(c, "invalid cursor")
		return
	}

	posts, err := h.feedSource.FetchPage(c.Request.Context(), cursor, limit, postType)
	if err != nil {
		util.RespondInternalError(c, "failed to fetch feed")
		return
	}

	metrics.Get().FeedPagesTotal.WithLabelValues(labelOrAll(postType)).Inc()

	next := ""
	if len(posts) == limit {
		last := posts[len(posts)-1]
		next = feed.EncodeCursor(feed.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":    posts,
		"cursor":   next,
		"has_more": len(posts) == limit,
	})
}

func labelOrAll(postType string) string {
	if postType == "" {
		return "all"
	}
	return postType
}
