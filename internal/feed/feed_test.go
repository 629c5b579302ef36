package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/punkontrol/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSource serves a fixed list of posts in keyset order and counts
// how many fetches it has served.
type stubSource struct {
	mu      sync.Mutex
	posts   []models.Post
	fetches int
	err     error

	// block, when non-nil, is closed by the test to release an
	// in-flight fetch.
	block chan struct{}
}

func (s *stubSource) FetchPage(ctx context.Context, cursor Cursor, pageSize int, postType string) ([]models.Post, error) {
	s.mu.Lock()
	s.fetches++
	block := s.block
	s.mu.Unlock()

	if block != nil {
		<-block
	}
	if s.err != nil {
		return nil, s.err
	}

	start := 0
	if !cursor.IsZero() {
		for i, p := range s.posts {
			if p.ID == cursor.ID {
				start = i + 1
				break
			}
		}
	}

	end := start + pageSize
	if end > len(s.posts) {
		end = len(s.posts)
	}
	if start >= len(s.posts) {
		return nil, nil
	}

	out := make([]models.Post, end-start)
	copy(out, s.posts[start:end])
	return out, nil
}

func (s *stubSource) fetchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches
}

func makePosts(n int) []models.Post {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	posts := make([]models.Post, n)
	for i := 0; i < n; i++ {
		posts[i] = models.Post{
			ID:        fmt.Sprintf("post-%03d", i),
			Title:     fmt.Sprintf("Post %d", i),
			Type:      models.PostTypeText,
			CreatedAt: base.Add(-time.Duration(i) * time.Minute),
		}
	}
	return posts
}

func TestLoadMoreAccumulatesPages(t *testing.T) {
	source := &stubSource{posts: makePosts(25)}
	f := New(source, 10, "")

	require.NoError(t, f.LoadMore(context.Background()))
	assert.Len(t, f.Items(), 10)
	assert.True(t, f.HasMore())

	require.NoError(t, f.LoadMore(context.Background()))
	assert.Len(t, f.Items(), 20)
	assert.True(t, f.HasMore())

	// Third page is short (5 < 10) so the feed is exhausted
	require.NoError(t, f.LoadMore(context.Background()))
	assert.Len(t, f.Items(), 25)
	assert.False(t, f.HasMore())

	// No duplicates across pages
	seen := make(map[string]bool)
	for _, p := range f.Items() {
		assert.False(t, seen[p.ID], "duplicate post %s", p.ID)
		seen[p.ID] = true
	}
}

// Without an explicit page size the feed fetches in steps of 20, the
// same stride the web client's infinite scroll uses.
func TestDefaultPageSizeMatchesClientStride(t *testing.T) {
	source := &stubSource{posts: makePosts(30)}
	f := New(source, 0, "")

	require.NoError(t, f.LoadMore(context.Background()))
	assert.Len(t, f.Items(), DefaultPageSize)
	assert.Len(t, f.Items(), 20)
	assert.True(t, f.HasMore())
}

func TestLoadMoreNoOpWhenExhausted(t *testing.T) {
	source := &stubSource{posts: makePosts(5)}
	f := New(source, 10, "")

	require.NoError(t, f.LoadMore(context.Background()))
	assert.False(t, f.HasMore())
	fetchesAfterFirst := source.fetchCount()

	// Further calls must not hit the source until Reset
	require.NoError(t, f.LoadMore(context.Background()))
	require.NoError(t, f.LoadMore(context.Background()))
	assert.Equal(t, fetchesAfterFirst, source.fetchCount())
	assert.Len(t, f.Items(), 5)
}

func TestLoadMoreNoOpWhileInFlight(t *testing.T) {
	source := &stubSource{
		posts: makePosts(20),
		block: make(chan struct{}),
	}
	f := New(source, 10, "")

	done := make(chan error, 1)
	go func() {
		done <- f.LoadMore(context.Background())
	}()

	// Wait for the first load to reach the source
	require.Eventually(t, func() bool {
		return source.fetchCount() == 1
	}, time.Second, time.Millisecond)

	// Overlapping calls return immediately without a second fetch
	require.NoError(t, f.LoadMore(context.Background()))
	require.NoError(t, f.LoadMore(context.Background()))
	assert.Equal(t, 1, source.fetchCount())

	close(source.block)
	require.NoError(t, <-done)
	assert.Len(t, f.Items(), 10)
}

func TestLoadMoreErrorLeavesItemsUntouched(t *testing.T) {
	source := &stubSource{posts: makePosts(20)}
	f := New(source, 10, "")

	require.NoError(t, f.LoadMore(context.Background()))
	itemsBefore := f.Items()
	cursorBefore := f.Cursor()

	source.err = errors.New("connection refused")
	err := f.LoadMore(context.Background())
	require.Error(t, err)

	assert.Equal(t, itemsBefore, f.Items())
	assert.Equal(t, cursorBefore, f.Cursor())
	assert.True(t, f.HasMore())
	assert.Equal(t, "connection refused", f.Err())

	// Recovery: clearing the fault lets the next load proceed
	source.err = nil
	require.NoError(t, f.LoadMore(context.Background()))
	assert.Len(t, f.Items(), 20)
	assert.Empty(t, f.Err())
}

func TestResetStartsFromTop(t *testing.T) {
	source := &stubSource{posts: makePosts(5)}
	f := New(source, 10, "")

	require.NoError(t, f.LoadMore(context.Background()))
	assert.False(t, f.HasMore())

	f.Reset()
	assert.Empty(t, f.Items())
	assert.True(t, f.HasMore())
	assert.True(t, f.Cursor().IsZero())

	require.NoError(t, f.LoadMore(context.Background()))
	assert.Len(t, f.Items(), 5)
}

func TestResetIdempotent(t *testing.T) {
	source := &stubSource{posts: makePosts(5)}
	f := New(source, 10, "")

	require.NoError(t, f.LoadMore(context.Background()))
	f.Reset()
	f.Reset()
	assert.Empty(t, f.Items())
	assert.True(t, f.HasMore())
}

func TestCursorRoundTrip(t *testing.T) {
	c := Cursor{
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		ID:        "post-001",
	}

	encoded := EncodeCursor(c)
	require.NotEmpty(t, encoded)

	decoded, err := DecodeCursor(encoded)
	require.NoError(t, err)
	assert.True(t, c.CreatedAt.Equal(decoded.CreatedAt))
	assert.Equal(t, c.ID, decoded.ID)
}

func TestDecodeCursorEmptyAndInvalid(t *testing.T) {
	c, err := DecodeCursor("")
	require.NoError(t, err)
	assert.True(t, c.IsZero())

	_, err = DecodeCursor("not base64 json!!")
	assert.Error(t, err)

	assert.Empty(t, EncodeCursor(Cursor{}))
}
