package handlers

import (
	"github.com/punkontrol/backend/internal/auth"
	"github.com/punkontrol/backend/internal/cache"
	"github.com/punkontrol/backend/internal/counts"
	"github.com/punkontrol/backend/internal/database"
	"github.com/punkontrol/backend/internal/discover"
	"github.com/punkontrol/backend/internal/feed"
	"github.com/punkontrol/backend/internal/storage"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	authService *auth.Service
	store       storage.ImageStore
	redis       *cache.RedisClient
	feedSource  feed.PageSource
	discover    *discover.Service
	repairer    *counts.Repairer
}

// NewHandlers creates a new handlers instance
func NewHandlers(authService *auth.Service) *Handlers {
	return &Handlers{
		authService: authService,
		feedSource:  feed.NewPostSource(database.DB),
		discover:    discover.NewService(database.DB),
		repairer:    counts.NewRepairer(database.DB),
	}
}

// SetImageStore sets the object store used for uploads
func (h *Handlers) SetImageStore(store storage.ImageStore) {
	h.store = store
}

// SetRedisClient sets the Redis client used for response caching
func (h *Handlers) SetRedisClient(redis *cache.RedisClient) {
	h.redis = redis
}
