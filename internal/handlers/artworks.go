package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/punkontrol/backend/internal/categories"
	"github.com/punkontrol/backend/internal/database"
	"github.com/punkontrol/backend/internal/logger"
	"github.com/punkontrol/backend/internal/metrics"
	"github.com/punkontrol/backend/internal/middleware"
	"github.com/punkontrol/backend/internal/models"
	"github.com/punkontrol/backend/internal/util"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	latestArtworksCacheKey = "artworks:latest"
	latestArtworksCacheTTL = 60 * time.Second

	maxImageBytes = 20 << 20 // 20 MB
)

// GetLatestArtworks returns the newest public artworks, cached in Redis
// for a short TTL.
func (h *Handlers) GetLatestArtworks(c *gin.Context) {
	limit := util.ParseLimit(c, 24, 100)
	cacheKey := fmt.Sprintf("%s:%d", latestArtworksCacheKey, limit)

	if h.redis != nil {
		if cached, err := h.redis.Get(c.Request.Context(), cacheKey); err == nil {
			middleware.RecordCacheHit("latest_artworks")
			c.Data(http.StatusOK, "application/json", []byte(cached))
			return
		}
		middleware.RecordCacheMiss("latest_artworks")
	}

	var artworks []models.Artwork
	err := database.DB.
		Where("visibility = ?", models.VisibilityPublic).
		Order("created_at DESC").
		Limit(limit).
		Find(&artworks).Error
	if err != nil {
		util.RespondInternalError(c, "failed to fetch artworks")
		return
	}

	body := gin.H{"artworks": artworks, "count": len(artworks)}
	if h.redis != nil {
		if encoded, err := json.Marshal(body); err == nil {
			_ = h.redis.SetEx(c.Request.Context(), cacheKey, encoded, latestArtworksCacheTTL)
		}
	}

	c.JSON(http.StatusOK, body)
}

// GetArtwork looks up an artwork by id first and slug second, so both
// /artworks/:idOrSlug forms work.
func (h *Handlers) GetArtwork(c *gin.Context) {
	idOrSlug := c.Param("idOrSlug")

	var artwork models.Artwork
	err := database.DB.Where("id = ?", idOrSlug).First(&artwork).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = database.DB.Where("slug = ?", idOrSlug).First(&artwork).Error
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.RespondNotFound(c, "artwork")
		return
	} else if err != nil {
		util.RespondInternalError(c, "failed to fetch artwork")
		return
	}

	c.JSON(http.StatusOK, artwork)
}

// UploadArtwork creates the artwork record first, then uploads the image
// and patches the record with the public URL. A failed upload leaves a
// pending record behind rather than an orphaned file.
func (h *Handlers) UploadArtwork(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	if h.store == nil {
		util.RespondWithAPIError(c, apiServiceUnavailable("image storage not configured"))
		return
	}

	title := strings.TrimSpace(c.PostForm("title"))
	if title == "" {
		util.RespondValidationError(c, "title", "title is required")
		return
	}
	description := c.PostForm("description")
	ageRestricted := c.PostForm("age_restricted") == "true"

	cats := categories.Normalize(c.PostForm("categories"))
	cats = categories.WithAgeRestriction(cats, ageRestricted)

	fileHeader, err := c.FormFile("image")
	if err != nil {
		util.RespondValidationError(c, "image", "image file is required")
		return
	}
	if fileHeader.Size > maxImageBytes {
		util.RespondValidationError(c, "image", "image exceeds maximum size")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.RespondInternalError(c, "failed to read upload")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		util.RespondInternalError(c, "failed to read upload")
		return
	}

	artwork := models.Artwork{
		AuthorID:       user.ID,
		AuthorUsername: user.Username,
		Title:          title,
		TitleLower:     strings.ToLower(title),
		Slug:           makeSlug(title),
		Description:    description,
		Tags:           models.StringArray(util.SplitTags(c.PostForm("tags"))),
		Categories:     models.StringArray(cats),
		AgeRestricted:  ageRestricted,
		Visibility:     models.VisibilityPublic,
		Status:         models.ArtworkStatusPending,
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&artwork).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", user.ID).
			UpdateColumn("artworks_count", gorm.Expr("artworks_count + 1")).Error
	})
	if err != nil {
		util.RespondInternalError(c, "failed to create artwork")
		return
	}

	ext := util.NormalizeImageExt(fileHeader.Filename)
	key := fmt.Sprintf("artworks/%s/%s.%s", user.ID, artwork.ID, ext)

	start := time.Now()
	result, err := h.store.UploadImage(c.Request.Context(), data, key, util.ContentTypeForExt(ext))
	metrics.Get().UploadDuration.WithLabelValues("artwork").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.Get().UploadsTotal.WithLabelValues("artwork", "error").Inc()
		logger.Log.Error("artwork image upload failed",
			zap.String("artwork_id", artwork.ID),
			zap.Error(err),
		)
		// The record stays pending; the client can retry the upload.
		c.JSON(http.StatusAccepted, gin.H{
			"artwork": artwork,
			"error":   "image upload failed, artwork is pending",
		})
		return
	}
	metrics.Get().UploadsTotal.WithLabelValues("artwork", "success").Inc()

	err = database.DB.Model(&artwork).Updates(map[string]interface{}{
		"image_url": result.URL,
		"status":    models.ArtworkStatusReady,
	}).Error
	if err != nil {
		util.RespondInternalError(c, "failed to finalize artwork")
		return
	}
	artwork.ImageURL = result.URL
	artwork.Status = models.ArtworkStatusReady

	h.invalidateLatestArtworks(c)

	c.JSON(http.StatusCreated, artwork)
}

// DeleteArtwork removes an artwork the caller owns
func (h *Handlers) DeleteArtwork(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var artwork models.Artwork
	err := database.DB.Where("id = ?", c.Param("idOrSlug")).First(&artwork).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.RespondNotFound(c, "artwork")
		return
	} else if err != nil {
		util.RespondInternalError(c, "failed to fetch artwork")
		return
	}

	if artwork.AuthorID != user.ID && !user.IsAdmin {
		util.RespondForbidden(c, "you can only delete your own artworks")
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("target_type = ? AND target_id = ?",
			models.LikeTargetArtwork, artwork.ID).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&artwork).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", artwork.AuthorID).
			UpdateColumn("artworks_count", gorm.Expr("GREATEST(artworks_count - 1, 0)")).Error
	})
	if err != nil {
		util.RespondInternalError(c, "failed to delete artwork")
		return
	}

	h.invalidateLatestArtworks(c)

	c.JSON(http.StatusOK, gin.H{"deleted": artwork.ID})
}

// GetCategories returns the closed category vocabulary
func (h *Handlers) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": categories.All})
}

func (h *Handlers) invalidateLatestArtworks(c *gin.Context) {
	if h.redis == nil {
		return
	}
	keys, err := h.redis.Keys(c.Request.Context(), latestArtworksCacheKey+":*")
	if err != nil || len(keys) == 0 {
		return
	}
	_ = h.redis.Del(c.Request.Context(), keys...)
}

// makeSlug builds a slug from the title plus four random digits to keep
// collisions unlikely.
func makeSlug(title string) string {
	return fmt.Sprintf("%s-%04d", util.Slugify(title), rand.Intn(10000))
}
