// Package counts recomputes the denormalized per-user counters from the
// underlying collections. The counters are caches and can drift after
// partial failures; repair is run from the admin CLI or endpoint.
package counts

import (
	"context"
	"fmt"

	"github.com/punkontrol/backend/internal/logger"
	"github.com/punkontrol/backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Repairer recounts user-owned collections and rewrites the counters.
type Repairer struct {
	db *gorm.DB
}

// NewRepairer creates a repairer over the given database handle.
func NewRepairer(db *gorm.DB) *Repairer {
	return &Repairer{db: db}
}

// FixUser recounts artworks and posts for one user and updates the
// counter columns when they differ.
func (r *Repairer) FixUser(ctx context.Context, userID string) error {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}

	var artworks, posts int64
	if err := r.db.WithContext(ctx).Model(&models.Artwork{}).
		Where("author_id = ?", userID).Count(&artworks).Error; err != nil {
		return fmt.Errorf("failed to count artworks: %w", err)
	}
	if err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("author_id = ?", userID).Count(&posts).Error; err != nil {
		return fmt.Errorf("failed to count posts: %w", err)
	}

	if int(artworks) == user.ArtworksCount && int(posts) == user.PostsCount {
		return nil
	}

	logger.Log.Info("repairing user counters",
		zap.String("user_id", userID),
		zap.Int("artworks_count", int(artworks)),
		zap.Int("posts_count", int(posts)),
	)

	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumns(map[string]interface{}{
			"artworks_count": artworks,
			"posts_count":    posts,
		}).Error
}

// FixAll walks every user and repairs their counters. Failures on
// individual users are logged and skipped so one bad row does not stop
// the sweep.
func (r *Repairer) FixAll(ctx context.Context) (int, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Pluck("id", &ids).Error; err != nil {
		return 0, fmt.Errorf("failed to list users: %w", err)
	}

	repaired := 0
	for _, id := range ids {
		if err := r.FixUser(ctx, id); err != nil {
			logger.Log.Warn("failed to repair user counters",
				zap.String("user_id", id),
				zap.Error(err),
			)
			continue
		}
		repaired++
	}
	return repaired, nil
}
