package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/punkontrol/backend/internal/database"
	"github.com/punkontrol/backend/internal/models"
	"github.com/punkontrol/backend/internal/util"
	"gorm.io/gorm"
)

// CreateComment appends a comment to a post and bumps the post's counter
// in the same transaction.
func (h *Handlers) CreateComment(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req struct {
		Text string `json:"text" binding:"required,min=1,max=2000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		util.RespondValidationError(c, "text", "comment text is required")
		return
	}

	var post models.Post
	err := database.DB.Where("id = ?", c.Param("id")).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.RespondNotFound(c, "post")
		return
	} else if err != nil {
		util.RespondInternalError(c, "failed to fetch post")
		return
	}

	comment := models.Comment{
		PostID:         post.ID,
		AuthorID:       user.ID,
		AuthorUsername: user.Username,
		Text:           text,
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", post.ID).
			UpdateColumn("comments_count", gorm.Expr("comments_count + 1")).Error
	})
	if err != nil {
		util.RespondInternalError(c, "failed to create comment")
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// GetComments lists a post's comments oldest-first
func (h *Handlers) GetComments(c *gin.Context) {
	postID := c.Param("id")

	var post models.Post
	err := database.DB.Select("id").Where("id = ?", postID).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.RespondNotFound(c, "post")
		return
	} else if err != nil {
		util.RespondInternalError(c, "failed to fetch post")
		return
	}

	var comments []models.Comment
	err = database.DB.
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		util.RespondInternalError(c, "failed to fetch comments")
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments, "count": len(comments)})
}

// DeleteComment removes a comment the caller authored and decrements the
// post's counter in the same transaction.
func (h *Handlers) DeleteComment(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var comment models.Comment
	err := database.DB.Where("id = ?", c.Param("commentId")).First(&comment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.RespondNotFound(c, "comment")
		return
	} else if err != nil {
		util.RespondInternalError(c, "failed to fetch comment")
		return
	}

	if comment.AuthorID != user.ID && !user.IsAdmin {
		util.RespondForbidden(c, "you can only delete your own comments")
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", comment.PostID).
			UpdateColumn("comments_count", gorm.Expr("GREATEST(comments_count - 1, 0)")).Error
	})
	if err != nil {
		util.RespondInternalError(c, "failed to delete comment")
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": comment.ID})
}
