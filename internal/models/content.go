package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Artwork status values. An artwork stays pending from document creation
// until its image URL is patched in after the storage upload succeeds.
const (
	ArtworkStatusPending = "pending"
	ArtworkStatusReady   = "ready"
)

// Visibility values for artworks
const (
	VisibilityPublic = "public"
)

// Artwork represents a single uploaded image with gallery metadata.
type Artwork struct {
	ID       string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	AuthorID string `gorm:"not null;index" json:"author_id"`
	Author   User   `gorm:"foreignKey:AuthorID" json:"author,omitempty"`

	// AuthorUsername is denormalized at write time and never re-synced;
	// it can drift from users.username after a rename.
	AuthorUsername string `gorm:"not null;index" json:"author_username"`

	Title       string      `gorm:"not null" json:"title"`
	TitleLower  string      `gorm:"index" json:"title_lower"`
	Slug        string      `gorm:"uniqueIndex" json:"slug"`
	Description string      `gorm:"type:text" json:"description"`
	Tags        StringArray `gorm:"type:text[]" json:"tags"`
	Categories  StringArray `gorm:"type:text[]" json:"categories"`

	AgeRestricted bool   `gorm:"default:false;index" json:"age_restricted"`
	ImageURL      string `json:"image_url"`
	Visibility    string `gorm:"default:public;index" json:"visibility"`
	Status        string `gorm:"default:pending" json:"status"`

	LikesCount int `gorm:"default:0" json:"likes_count"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Post type values
const (
	PostTypeText  = "text"
	PostTypeArt   = "art"
	PostTypeComic = "comic"
)

// ValidPostType reports whether t is one of the known post types.
func ValidPostType(t string) bool {
	return t == PostTypeText || t == PostTypeArt || t == PostTypeComic
}

// MediaItem is one uploaded image attached to a post, with its resolved
// public URL and the storage path it lives under.
type MediaItem struct {
	URL  string `json:"url"`
	Path string `json:"path"`
}

// Post represents a blog-style entry (text, art or comic) in the feed.
type Post struct {
	ID       string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	AuthorID string `gorm:"not null;index" json:"author_id"`
	Author   User   `gorm:"foreignKey:AuthorID" json:"author,omitempty"`

	// Denormalized like Artwork.AuthorUsername
	AuthorUsername string `gorm:"not null;index" json:"author_username"`

	Title string      `gorm:"not null" json:"title"`
	Body  string      `gorm:"type:text" json:"body"`
	Type  string      `gorm:"not null;index" json:"type"`
	Tags  StringArray `gorm:"type:text[]" json:"tags"`
	Media []MediaItem `gorm:"type:jsonb;serializer:json" json:"media"`

	// Denormalized counters over the likes and comments collections
	LikesCount    int `gorm:"default:0" json:"likes_count"`
	CommentsCount int `gorm:"default:0" json:"comments_count"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Comment is an append-only entry under a post. Comments are never edited;
// they are created and individually deleted.
type Comment struct {
	ID     string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	PostID string `gorm:"not null;index" json:"post_id"`
	Post   Post   `gorm:"foreignKey:PostID" json:"-"`

	AuthorID       string `gorm:"not null;index" json:"author_id"`
	AuthorUsername string `gorm:"not null" json:"author_username"`
	Text           string `gorm:"type:text;not null" json:"text"`

	CreatedAt time.Time `json:"created_at"`
}

// Like target kinds
const (
	LikeTargetPost    = "post"
	LikeTargetArtwork = "artwork"
)

// Like is a marker document: its existence is the sole source of truth for
// "this user liked this item". The counters on Post/Artwork are caches.
type Like struct {
	ID         string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	TargetType string `gorm:"not null;index:idx_likes_target" json:"target_type"`
	TargetID   string `gorm:"not null;index:idx_likes_target" json:"target_id"`
	UserID     string `gorm:"not null;index" json:"user_id"`

	CreatedAt time.Time `json:"created_at"`
}

// Follow is a marker document keyed "<followerId>_<followeeId>" so a pair
// can exist at most once.
type Follow struct {
	ID         string `gorm:"primaryKey" json:"id"`
	FollowerID string `gorm:"not null;index" json:"follower_id"`
	FolloweeID string `gorm:"not null;index" json:"followee_id"`

	CreatedAt time.Time `json:"created_at"`
}

// FollowID builds the composite key for a follower/followee pair.
func FollowID(followerID, followeeID string) string {
	return fmt.Sprintf("%s_%s", followerID, followeeID)
}

// BeforeCreate hooks

func (a *Artwork) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = generateUUID()
	}
	return nil
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = generateUUID()
	}
	return nil
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = generateUUID()
	}
	return nil
}

func (l *Like) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = generateUUID()
	}
	return nil
}

func (f *Follow) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = FollowID(f.FollowerID, f.FolloweeID)
	}
	return nil
}
