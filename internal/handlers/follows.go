package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/punkontrol/backend/internal/database"
	"github.com/punkontrol/backend/internal/models"
	"github.com/punkontrol/backend/internal/util"
	"gorm.io/gorm"
)

// ToggleFollow flips the caller's follow of another user. The marker and
// both counters move in one transaction.
func (h *Handlers) ToggleFollow(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	followeeID := c.Param("userId")
	if followeeID == userID {
		util.RespondValidationError(c, "userId", "cannot follow yourself")
		return
	}

	var followee models.User
	err := database.DB.Select("id").Where("id = ?", followeeID).First(&followee).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.RespondNotFound(c, "user")
		return
	} else if err != nil {
		util.RespondInternalError(c, "failed to fetch user")
		return
	}

	following := false
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.Follow
		err := tx.Where("id = ?", models.FollowID(userID, followeeID)).First(&existing).Error

		if err == nil {
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			return adjustFollowCounts(tx, userID, followeeID, -1)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		follow := models.Follow{
			FollowerID: userID,
			FolloweeID: followeeID,
		}
		if err := tx.Create(&follow).Error; err != nil {
			return err
		}
		following = true
		return adjustFollowCounts(tx, userID, followeeID, 1)
	})
	if err != nil {
		util.RespondInternalError(c, "failed to toggle follow")
		return
	}

	c.JSON(http.StatusOK, gin.H{"following": following})
}

// GetFollowStatus reports whether the caller follows a user
func (h *Handlers) GetFollowStatus(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var count int64
	err := database.DB.Model(&models.Follow{}).
		Where("id = ?", models.FollowID(userID, c.Param("userId"))).
		Count(&count).Error
	if err != nil {
		util.RespondInternalError(c, "failed to fetch follow status")
		return
	}

	c.JSON(http.StatusOK, gin.H{"following": count > 0})
}

// GetFollowers lists users following the given user
func (h *Handlers) GetFollowers(c *gin.Context) {
	limit := util.ParseLimit(c, 50, 200)

	var users []models.User
	err := database.DB.
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.followee_id = ?", c.Param("userId")).
		Order("follows.created_at DESC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		util.RespondInternalError(c, "failed to fetch followers")
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}

// GetFollowing lists users the given user follows
func (h *Handlers) GetFollowing(c *gin.Context) {
	limit := util.ParseLimit(c, 50, 200)

	var users []models.User
	err := database.DB.
		Joins("JOIN follows ON follows.followee_id = users.id").
		Where("follows.follower_id = ?", c.Param("userId")).
		Order("follows.created_at DESC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		util.RespondInternalError(c, "failed to fetch following")
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}

func adjustFollowCounts(tx *gorm.DB, followerID, followeeID string, delta int) error {
	expr := func(col string) interface{} {
		if delta < 0 {
			return gorm.Expr("GREATEST("+col+" + ?, 0)", delta)
		}
		return gorm.Expr(col+" + ?", delta)
	}

	if err := tx.Model(&models.User{}).Where("id = ?", followerID).
		UpdateColumn("following_count", expr("following_count")).Error; err != nil {
		return err
	}
	return tx.Model(&models.User{}).Where("id = ?", followeeID).
		UpdateColumn("followers_count", expr("followers_count")).Error
}
