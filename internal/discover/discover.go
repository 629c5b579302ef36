// Package discover implements the aggregated search across artworks,
// posts and users. Results from each source are fetched with structural
// filters, merged, sorted, and then narrowed by a case-insensitive
// substring match over kind-specific text fields.
package discover

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/punkontrol/backend/internal/models"
	"gorm.io/gorm"
)

// Kind identifies which source a result came from.
type Kind string

const (
	KindArtwork Kind = "artwork"
	KindPost    Kind = "post"
	KindUser    Kind = "user"
)

// Sort orders for merged results.
type Sort string

const (
	SortLatest  Sort = "latest"
	SortPopular Sort = "popular"
)

// NSFWFilter controls how age-restricted artworks appear.
type NSFWFilter string

const (
	NSFWHide NSFWFilter = "hide"
	NSFWShow NSFWFilter = "show"
	NSFWOnly NSFWFilter = "only"
)

// Options narrows a discover query. Zero values mean "no filter".
type Options struct {
	Query    string
	Category string
	Type     string
	NSFW     NSFWFilter
	Sort     Sort
	Limit    int
}

// Result is one merged search hit. Exactly one of the pointers is set,
// matching Kind.
type Result struct {
	Kind    Kind            `json:"kind"`
	Artwork *models.Artwork `json:"artwork,omitempty"`
	Post    *models.Post    `json:"post,omitempty"`
	User    *models.User    `json:"user,omitempty"`
}

// perSourceLimit caps how many rows each source contributes before the
// merge; the text filter runs after fetching.
const perSourceLimit = 200

// Service runs discover queries against the database.
type Service struct {
	db *gorm.DB
}

// NewService creates a discover service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Search fetches all three sources, merges and sorts them, then applies
// the text filter. Structural filters (category, post type, NSFW) are
// pushed into the queries.
func (s *Service) Search(ctx context.Context, opts Options) ([]Result, error) {
	if opts.Sort == "" {
		opts.Sort = SortLatest
	}
	if opts.NSFW == "" {
		opts.NSFW = NSFWHide
	}

	artworks, err := s.fetchArtworks(ctx, opts)
	if err != nil {
		return nil, err
	}
	posts, err := s.fetchPosts(ctx, opts)
	if err != nil {
		return nil, err
	}
	users, err := s.fetchUsers(ctx, opts)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(artworks)+len(posts)+len(users))
	for i := range artworks {
		results = append(results, Result{Kind: KindArtwork, Artwork: &artworks[i]})
	}
	for i := range posts {
		results = append(results, Result{Kind: KindPost, Post: &posts[i]})
	}
	for i := range users {
		results = append(results, Result{Kind: KindUser, User: &users[i]})
	}

	MergeSort(results, opts.Sort)

	if q := strings.TrimSpace(opts.Query); q != "" {
		filtered := results[:0]
		for _, r := range results {
			if TextMatches(r, q) {
				filtered = append(filtered, r)
			}
		}
		results = filtered
	}

	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results, nil
}

func (s *Service) fetchArtworks(ctx context.Context, opts Options) ([]models.Artwork, error) {
	q := s.db.WithContext(ctx).
		Where("visibility = ?", models.VisibilityPublic).
		Limit(perSourceLimit)

	switch opts.NSFW {
	case NSFWOnly:
		q = q.Where("age_restricted = true")
	case NSFWShow:
		// no filter
	default:
		q = q.Where("age_restricted = false")
	}

	if opts.Category != "" {
		q = q.Where("? = ANY (categories)", opts.Category)
	}

	q = orderBy(q, opts.Sort, "likes_count")

	var artworks []models.Artwork
	if err := q.Find(&artworks).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch artworks: %w", err)
	}
	return artworks, nil
}

func (s *Service) fetchPosts(ctx context.Context, opts Options) ([]models.Post, error) {
	q := s.db.WithContext(ctx).Limit(perSourceLimit)
	if opts.Type != "" {
		q = q.Where("type = ?", opts.Type)
	}
	q = orderBy(q, opts.Sort, "likes_count")

	var posts []models.Post
	if err := q.Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch posts: %w", err)
	}
	return posts, nil
}

func (s *Service) fetchUsers(ctx context.Context, opts Options) ([]models.User, error) {
	q := s.db.WithContext(ctx).
		Where("status = ?", models.UserStatusActive).
		Limit(perSourceLimit)
	q = orderBy(q, opts.Sort, "followers_count")

	var users []models.User
	if err := q.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	return users, nil
}

func orderBy(q *gorm.DB, s Sort, popularColumn string) *gorm.DB {
	if s == SortPopular {
		return q.Order(popularColumn + " DESC, created_at DESC")
	}
	return q.Order("created_at DESC")
}

// TextMatches reports whether a result matches the query by
// case-insensitive substring over the fields of its kind. Category ids
// are structural filters, not text fields, and are never matched.
func TextMatches(r Result, query string) bool {
	q := strings.ToLower(query)
	contains := func(fields ...string) bool {
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f), q) {
				return true
			}
		}
		return false
	}

	switch r.Kind {
	case KindArtwork:
		a := r.Artwork
		return contains(a.Title, a.Description, a.AuthorUsername) ||
			contains(a.Tags...)
	case KindPost:
		p := r.Post
		return contains(p.Title, p.Body, p.AuthorUsername) || contains(p.Tags...)
	case KindUser:
		u := r.User
		return contains(u.Username, u.DisplayName, u.Bio)
	}
	return false
}

// MergeSort orders merged results in place. Popular ranks by the
// kind-specific popularity counter; latest ranks by creation time.
// The sort is stable so equal keys keep their source order.
func MergeSort(results []Result, s Sort) {
	if s == SortPopular {
		sort.SliceStable(results, func(i, j int) bool {
			return popularity(results[i]) > popularity(results[j])
		})
		return
	}
	sort.SliceStable(results, func(i, j int) bool {
		return createdAt(results[i]).After(createdAt(results[j]))
	})
}

func popularity(r Result) int {
	switch r.Kind {
	case KindArtwork:
		return r.Artwork.LikesCount
	case KindPost:
		return r.Post.LikesCount
	case KindUser:
		return r.User.FollowersCount
	}
	return 0
}

func createdAt(r Result) time.Time {
	switch r.Kind {
	case KindArtwork:
		return r.Artwork.CreatedAt
	case KindPost:
		return r.Post.CreatedAt
	case KindUser:
		return r.User.CreatedAt
	}
	return time.Time{}
}
