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

// profileArtworksLimit caps the artwork grid on a profile page.
const profileArtworksLimit = 60

// GetUserByUsername returns a public profile. A missing profile is a
// plain 404 so clients can render a not-found state.
func (h *Handlers) GetUserByUsername(c *gin.Context) {
	username := c.Param("username")

	var user models.User
	err := database.DB.Where("LOWER(username) = LOWER(?)", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.RespondNotFound(c, "user")
		return
	} else if err != nil {
		util.RespondInternalError(c, "failed to fetch user")
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateMe updates mutable fields of the caller's profile
func (h *Handlers) UpdateMe(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req struct {
		DisplayName *string `json:"display_name"`
		Bio         *string `json:"bio"`
		AvatarURL   *string `json:"avatar_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.DisplayName != nil {
		name := strings.TrimSpace(*req.DisplayName)
		if name == "" {
			util.RespondValidationError(c, "display_name", "display name cannot be empty")
			return
		}
		updates["display_name"] = name
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}
	if req.AvatarURL != nil {
		updates["avatar_url"] = *req.AvatarURL
	}

	if len(updates) == 0 {
		c.JSON(http.StatusOK, user)
		return
	}

	if err := database.DB.Model(user).Updates(updates).Error; err != nil {
		util.RespondInternalError(c, "failed to update profile")
		return
	}

	c.JSON(http.StatusOK, user)
}

// GetUserArtworks lists a user's public artworks, newest first.
// Artworks are keyed by the denormalized author username, so renamed
// accounts only show artworks uploaded under the current name.
func (h *Handlers) GetUserArtworks(c *gin.Context) {
	username := c.Param("username")
	limit := util.ParseLimit(c, profileArtworksLimit, profileArtworksLimit)

	var artworks []models.Artwork
	err := database.DB.
		Where("author_username = ? AND visibility = ?", username, models.VisibilityPublic).
		Order("created_at DESC").
		Limit(limit).
		Find(&artworks).Error
	if err != nil {
		util.RespondInternalError(c, "failed to fetch artworks")
		return
	}

	c.JSON(http.StatusOK, gin.H{"artworks": artworks, "count": len(artworks)})
}

// GetUserPosts lists a user's posts, newest first. Posts are keyed by
// author id, so they follow the account across renames.
func (h *Handlers) GetUserPosts(c *gin.Context) {
	username := c.Param("username")
	limit := util.ParseLimit(c, 20, 100)

	var user models.User
	err := database.DB.Select("id").Where("LOWER(username) = LOWER(?)", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.RespondNotFound(c, "user")
		return
	} else if err != nil {
		util.RespondInternalError(c, "failed to fetch user")
		return
	}

	var posts []models.Post
	err = database.DB.
		Where("author_id = ?", user.ID).
		Order("created_at DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		util.RespondInternalError(c, "failed to fetch posts")
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts, "count": len(posts)})
}
