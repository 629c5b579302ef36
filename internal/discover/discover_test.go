package discover

import (
	"testing"
	"time"

	"github.com/punkontrol/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func artworkResult(title string, likes int, created time.Time) Result {
	return Result{Kind: KindArtwork, Artwork: &models.Artwork{
		Title:      title,
		LikesCount: likes,
		CreatedAt:  created,
	}}
}

func postResult(title string, likes int, created time.Time) Result {
	return Result{Kind: KindPost, Post: &models.Post{
		Title:      title,
		LikesCount: likes,
		CreatedAt:  created,
	}}
}

func userResult(username string, followers int, created time.Time) Result {
	return Result{Kind: KindUser, User: &models.User{
		Username:       username,
		FollowersCount: followers,
		CreatedAt:      created,
	}}
}

func TestTextMatchesCaseInsensitiveSubstring(t *testing.T) {
	r := artworkResult("Neon Dragon", 0, time.Now())

	assert.True(t, TextMatches(r, "dragon"))
	assert.True(t, TextMatches(r, "DRAGON"))
	assert.True(t, TextMatches(r, "drag"))
	assert.True(t, TextMatches(r, "Neon Dragon"))
	assert.False(t, TextMatches(r, "neonx"))
	assert.False(t, TextMatches(r, "dragons"))
}

func TestTextMatchesKindSpecificFields(t *testing.T) {
	artwork := Result{Kind: KindArtwork, Artwork: &models.Artwork{
		Title:          "Untitled",
		Description:    "a misty forest at dawn",
		Tags:           models.StringArray{"landscape"},
		Categories:     models.StringArray{"digital-art"},
		AuthorUsername: "brushwitch",
	}}
	assert.True(t, TextMatches(artwork, "misty"))
	assert.True(t, TextMatches(artwork, "landscape"))
	assert.True(t, TextMatches(artwork, "brushwitch"))
	// Category ids are structural filters only; "digital" hits no text field
	assert.False(t, TextMatches(artwork, "digital"))

	post := Result{Kind: KindPost, Post: &models.Post{
		Title:          "Process notes",
		Body:           "inking the third chapter",
		AuthorUsername: "penciller",
	}}
	assert.True(t, TextMatches(post, "inking"))
	assert.True(t, TextMatches(post, "penciller"))
	assert.False(t, TextMatches(post, "misty"))

	user := Result{Kind: KindUser, User: &models.User{
		Username:    "inkling",
		DisplayName: "The Inkling",
		Bio:         "comics and coffee",
	}}
	assert.True(t, TextMatches(user, "coffee"))
	assert.True(t, TextMatches(user, "INKLING"))
	assert.False(t, TextMatches(user, "dragon"))
}

func TestMergeSortLatest(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	results := []Result{
		artworkResult("old art", 100, base.Add(-2*time.Hour)),
		postResult("new post", 1, base),
		userResult("mid user", 50, base.Add(-time.Hour)),
	}

	MergeSort(results, SortLatest)

	assert.Equal(t, KindPost, results[0].Kind)
	assert.Equal(t, KindUser, results[1].Kind)
	assert.Equal(t, KindArtwork, results[2].Kind)

	// Creation time is non-increasing throughout
	for i := 1; i < len(results); i++ {
		assert.False(t, createdAt(results[i]).After(createdAt(results[i-1])))
	}
}

func TestMergeSortPopular(t *testing.T) {
	now := time.Now()
	results := []Result{
		postResult("quiet post", 2, now),
		userResult("famous", 900, now),
		artworkResult("hit art", 40, now),
	}

	MergeSort(results, SortPopular)

	assert.Equal(t, KindUser, results[0].Kind)
	assert.Equal(t, KindArtwork, results[1].Kind)
	assert.Equal(t, KindPost, results[2].Kind)

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, popularity(results[i-1]), popularity(results[i]))
	}
}

func TestMergeSortStableOnTies(t *testing.T) {
	now := time.Now()
	a := postResult("first", 10, now)
	b := artworkResult("second", 10, now)
	results := []Result{a, b}

	MergeSort(results, SortPopular)

	assert.Equal(t, "first", results[0].Post.Title)
	assert.Equal(t, "second", results[1].Artwork.Title)
}
