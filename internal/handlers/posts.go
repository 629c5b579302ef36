package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/punkontrol/backend/internal/database"
	"github.com/punkontrol/backend/internal/logger"
	"github.com/punkontrol/backend/internal/metrics"
	"github.com/punkontrol/backend/internal/models"
	"github.com/punkontrol/backend/internal/util"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxPostImages = 10

// CreatePost creates a feed post. Media files are uploaded before the
// record is written, so a storage failure aborts the post entirely and
// never leaves a post pointing at missing images.
func (h *Handlers) CreatePost(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	title := strings.TrimSpace(c.PostForm("title"))
	if title == "" {
		util.RespondValidationError(c, "title", "title is required")
		return
	}

	postType := c.PostForm("type")
	if postType == "" {
		postType = models.PostTypeText
	}
	if !models.ValidPostType(postType) {
		util.RespondValidationError(c, "type", "unknown post type")
		return
	}

	body := c.PostForm("body")
	tags := util.SplitTags(c.PostForm("tags"))

	form, err := c.MultipartForm()
	if err != nil {
		util.RespondBadRequest(c, "invalid multipart form")
		return
	}

	files := form.File["images"]
	if len(files) > maxPostImages {
		util.RespondValidationError(c, "images", "too many images")
		return
	}
	if len(files) > 0 && h.store == nil {
		util.RespondWithAPIError(c, apiServiceUnavailable("image storage not configured"))
		return
	}

	var media []models.MediaItem
	for _, fileHeader := range files {
		if fileHeader.Size > maxImageBytes {
			util.RespondValidationError(c, "images", "image exceeds maximum size")
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			util.RespondInternalError(c, "failed to read upload")
			return
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			util.RespondInternalError(c, "failed to read upload")
			return
		}

		ext := util.NormalizeImageExt(fileHeader.Filename)
		key := fmt.Sprintf("posts/%s/%d_%s", user.ID, time.Now().UnixNano(), fileHeader.Filename)

		start := time.Now()
		result, err := h.store.UploadImage(c.Request.Context(), data, key, util.ContentTypeForExt(ext))
		metrics.Get().UploadDuration.WithLabelValues("post").Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.Get().UploadsTotal.WithLabelValues("post", "error").Inc()
			logger.Log.Error("post image upload failed",
				logger.WithUserID(user.ID),
				zap.Error(err),
			)
			util.RespondInternalError(c, "image upload failed")
			return
		}
		metrics.Get().UploadsTotal.WithLabelValues("post", "success").Inc()

		media = append(media, models.MediaItem{URL: result.URL, Path: result.Key})
	}

	post := models.Post{
		AuthorID:       user.ID,
		AuthorUsername: user.Username,
		Title:          title,
		Body:           body,
		Type:           postType,
		Tags:           models.StringArray(tags),
		Media:          media,
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&post).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", user.ID).
			UpdateColumn("posts_count", gorm.Expr("posts_count + 1")).Error
	})
	if err != nil {
		util.RespondInternalError(c, "failed to create post")
		return
	}

	c.JSON(http.StatusCreated, post)
}

// GetPost returns a single post by id
func (h *Handlers) GetPost(c *gin.Context) {
	var post models.Post
	err := database.DB.Where("id = ?", c.Param("id")).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.RespondNotFound(c, "post")
		return
	} else if err != nil {
		util.RespondInternalError(c, "failed to fetch post")
		return
	}

	c.JSON(http.StatusOK, post)
}

// DeletePost removes a post the caller owns, along with its comments
// and like markers.
func (h *Handlers) DeletePost(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
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

	if post.AuthorID != user.ID && !user.IsAdmin {
		util.RespondForbidden(c, "you can only delete your own posts")
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("target_type = ? AND target_id = ?", models.LikeTargetPost, post.ID).
			Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&post).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", post.AuthorID).
			UpdateColumn("posts_count", gorm.Expr("GREATEST(posts_count - 1, 0)")).Error
	})
	if err != nil {
		util.RespondInternalError(c, "failed to delete post")
		return
	}

	// Stored media is removed best-effort after the record is gone
	if h.store != nil {
		for _, m := range post.Media {
			if err := h.store.DeleteFile(c.Request.Context(), m.Path); err != nil {
				logger.Log.Warn("failed to delete post media",
					zap.String("path", m.Path),
					zap.Error(err),
				)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"deleted": post.ID})
}
