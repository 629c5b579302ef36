package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/punkontrol/backend/internal/database"
	"github.com/punkontrol/backend/internal/metrics"
	"github.com/punkontrol/backend/internal/models"
	"github.com/punkontrol/backend/internal/util"
	"gorm.io/gorm"
)

// likeTarget resolves the :targetType route segment and verifies the
// target row exists.
func likeTarget(c *gin.Context) (targetType, targetID string, ok bool) {
	targetType = c.Param("targetType")
	targetID = c.Param("targetId")

	switch targetType {
	case models.LikeTargetPost:
		var post models.Post
		err := database.DB.Select("id").Where("id = ?", targetID).First(&post).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.RespondNotFound(c, "post")
			return "", "", false
		} else if err != nil {
			util.RespondInternalError(c, "failed to fetch post")
			return "", "", false
		}
	case models.LikeTargetArtwork:
		var artwork models.Artwork
		err := database.DB.Select("id").Where("id = ?", targetID).First(&artwork).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.RespondNotFound(c, "artwork")
			return "", "", false
		} else if err != nil {
			util.RespondInternalError(c, "failed to fetch artwork")
			return "", "", false
		}
	default:
		util.RespondValidationError(c, "targetType", "unknown like target type")
		return "", "", false
	}

	return targetType, targetID, true
}

// ToggleLike flips the caller's like marker for a target. The marker and
// the cached counter move together in one transaction, so the counter
// can never permanently drift from the markers.
func (h *Handlers) ToggleLike(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	targetType, targetID, ok := likeTarget(c)
	if !ok {
		return
	}

	liked := false
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.Like
		err := tx.Where("target_type = ? AND target_id = ? AND user_id = ?",
			targetType, targetID, userID).First(&existing).Error

		if err == nil {
			// Unlike: delete the marker, decrement the counter
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			return adjustLikesCount(tx, targetType, targetID, -1)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		like := models.Like{
			TargetType: targetType,
			TargetID:   targetID,
			UserID:     userID,
		}
		if err := tx.Create(&like).Error; err != nil {
			return err
		}
		liked = true
		return adjustLikesCount(tx, targetType, targetID, 1)
	})
	if err != nil {
		util.RespondInternalError(c, "failed to toggle like")
		return
	}

	action := "unlike"
	if liked {
		action = "like"
	}
	metrics.Get().LikeTogglesTotal.WithLabelValues(targetType, action).Inc()

	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

// GetLikeStatus reports whether the caller has liked a target, by marker
// existence.
func (h *Handlers) GetLikeStatus(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	targetType, targetID, ok := likeTarget(c)
	if !ok {
		return
	}

	var count int64
	err := database.DB.Model(&models.Like{}).
		Where("target_type = ? AND target_id = ? AND user_id = ?", targetType, targetID, userID).
		Count(&count).Error
	if err != nil {
		util.RespondInternalError(c, "failed to fetch like status")
		return
	}

	c.JSON(http.StatusOK, gin.H{"liked": count > 0})
}

func adjustLikesCount(tx *gorm.DB, targetType, targetID string, delta int) error {
	expr := gorm.Expr("likes_count + ?", delta)
	if delta < 0 {
		expr = gorm.Expr("GREATEST(likes_count + ?, 0)", delta)
	}

	switch targetType {
	case models.LikeTargetPost:
		return tx.Model(&models.Post{}).Where("id = ?", targetID).
			UpdateColumn("likes_count", expr).Error
	case models.LikeTargetArtwork:
		return tx.Model(&models.Artwork{}).Where("id = ?", targetID).
			UpdateColumn("likes_count", expr).Error
	}
	return nil
}
