// Package feed implements keyset pagination over posts with the
// accumulate-in-memory semantics the clients rely on: a feed grows
// page by page, latches "no more" when a short page comes back, and
// ignores overlapping load requests.
package feed

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/punkontrol/backend/internal/models"
	"gorm.io/gorm"
)

// DefaultPageSize is the page size used when the request does not set
// a limit. The web client's infinite scroll asks for 20 at a time.
const DefaultPageSize = 20

// Cursor marks the position after the last item of a fetched page.
// The (CreatedAt, ID) pair gives a total order even when timestamps tie.
type Cursor struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
}

// IsZero reports whether the cursor points at the top of the feed.
func (c Cursor) IsZero() bool {
	return c.ID == "" && c.CreatedAt.IsZero()
}

// EncodeCursor serializes a cursor for use as an opaque query parameter.
func EncodeCursor(c Cursor) string {
	if c.IsZero() {
		return ""
	}
	b, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeCursor parses an opaque cursor string. Empty input yields the
// zero cursor (top of feed).
func DecodeCursor(s string) (Cursor, error) {
	if s == "" {
		return Cursor{}, nil
	}
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid cursor: %w", err)
	}
	var c Cursor
	if err := json.Unmarshal(b, &c); err != nil {
		return Cursor{}, fmt.Errorf("invalid cursor: %w", err)
	}
	return c, nil
}

// PageSource fetches one page of posts newest-first, starting strictly
// after the cursor. postType filters to a single post type when non-empty.
type PageSource interface {
	FetchPage(ctx context.Context, cursor Cursor, pageSize int, postType string) ([]models.Post, error)
}

// PostSource reads pages from the posts table.
type PostSource struct {
	db *gorm.DB
}

// NewPostSource creates a page source over the given database handle.
func NewPostSource(db *gorm.DB) *PostSource {
	return &PostSource{db: db}
}

// FetchPage returns up to pageSize posts ordered (created_at, id) DESC.
func (s *PostSource) FetchPage(ctx context.Context, cursor Cursor, pageSize int, postType string) ([]models.Post, error) {
	q := s.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(pageSize)

	if postType != "" {
		q = q.Where("type = ?", postType)
	}
	if !cursor.IsZero() {
		q = q.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var posts []models.Post
	if err := q.Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch feed page: %w", err)
	}
	return posts, nil
}

// Feed accumulates pages from a PageSource. Safe for concurrent use.
type Feed struct {
	mu       sync.Mutex
	source   PageSource
	pageSize int
	postType string

	items   []models.Post
	cursor  Cursor
	hasMore bool
	loading bool
	err     string
}

// New creates an empty feed. pageSize values below 1 fall back to the
// default.
func New(source PageSource, pageSize int, postType string) *Feed {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &Feed{
		source:   source,
		pageSize: pageSize,
		postType: postType,
		hasMore:  true,
	}
}

// LoadMore fetches and appends the next page. It is a no-op while a load
// is already in flight or after the feed is exhausted. On failure the
// accumulated items and cursor are left untouched and the error message
// is retained for the caller.
func (f *Feed) LoadMore(ctx context.Context) error {
	f.mu.Lock()
	if f.loading || !f.hasMore {
		f.mu.Unlock()
		return nil
	}
	f.loading = true
	cursor := f.cursor
	f.mu.Unlock()

	page, err := f.source.FetchPage(ctx, cursor, f.pageSize, f.postType)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.loading = false

	if err != nil {
		f.err = err.Error()
		return err
	}

	f.err = ""
	f.items = append(f.items, page...)
	if len(page) > 0 {
		last := page[len(page)-1]
		f.cursor = Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	// A short page means the source is drained; hasMore stays false
	// until Reset.
	if len(page) < f.pageSize {
		f.hasMore = false
	}
	return nil
}

// Reset clears accumulated state so the next LoadMore starts from the top.
func (f *Feed) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = nil
	f.cursor = Cursor{}
	f.hasMore = true
	f.err = ""
}

// Items returns a copy of the accumulated posts in feed order.
func (f *Feed) Items() []models.Post {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Post, len(f.items))
	copy(out, f.items)
	return out
}

// HasMore reports whether another page may exist.
func (f *Feed) HasMore() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hasMore
}

// Err returns the message from the most recent failed load, if any.
func (f *Feed) Err() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Cursor returns the current resume position.
func (f *Feed) Cursor() Cursor {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cursor
}
