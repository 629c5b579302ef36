// Package seed populates a development database with realistic fake data.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/punkontrol/backend/internal/categories"
	"github.com/punkontrol/backend/internal/logger"
	"github.com/punkontrol/backend/internal/models"
	"github.com/punkontrol/backend/internal/util"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	_ = gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{db: db}
}

// SeedDev seeds the development database with realistic data
func (s *Seeder) SeedDev() error {
	log := func(msg string) {
		logger.Log.Info(msg)
	}

	log("Creating users...")
	users, err := s.seedUsers(50)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	log("Creating artworks...")
	if err := s.seedArtworks(users, 200); err != nil {
		return fmt.Errorf("failed to seed artworks: %w", err)
	}

	log("Creating posts...")
	posts, err := s.seedPosts(users, 150)
	if err != nil {
		return fmt.Errorf("failed to seed posts: %w", err)
	}

	log("Creating comments...")
	if err := s.seedComments(users, posts, 400); err != nil {
		return fmt.Errorf("failed to seed comments: %w", err)
	}

	log("Creating likes...")
	if err := s.seedLikes(users, posts); err != nil {
		return fmt.Errorf("failed to seed likes: %w", err)
	}

	log("Creating follows...")
	if err := s.seedFollows(users); err != nil {
		return fmt.Errorf("failed to seed follows: %w", err)
	}

	return nil
}

// Clean removes all seeded data. Order matters for foreign keys.
func (s *Seeder) Clean() error {
	tables := []string{"likes", "comments", "follows", "posts", "artworks", "users"}
	for _, table := range tables {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clean %s: %w", table, err)
		}
	}
	return nil
}

// seedUsers creates users with realistic data
func (s *Seeder) seedUsers(count int) ([]models.User, error) {
	var seedUserCount int64
	s.db.Model(&models.User{}).Where("email LIKE '%@example.com'").Count(&seedUserCount)
	if seedUserCount >= int64(count) {
		var users []models.User
		if err := s.db.Find(&users).Error; err != nil {
			return nil, err
		}
		logger.Log.Info("Found existing seed users, skipping creation",
			zap.Int("total_users", len(users)))
		return users, nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	hashedPasswordStr := string(hashedPassword)

	var users []models.User
	for i := 0; i < count; i++ {
		username := strings.ToLower(gofakeit.Username())
		email := fmt.Sprintf("%s@example.com", username)

		var existing models.User
		for {
			if err := s.db.Where("username = ? OR email = ?", username, email).First(&existing).Error; err == gorm.ErrRecordNotFound {
				break
			}
			username = strings.ToLower(gofakeit.Username())
			email = fmt.Sprintf("%s@example.com", username)
		}

		user := models.User{
			Email:        email,
			Username:     username,
			DisplayName:  gofakeit.Name(),
			Bio:          gofakeit.HipsterSentence(10),
			AvatarURL:    fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/png?seed=%s", username),
			PasswordHash: &hashedPasswordStr,
		}

		lastActive := gofakeit.DateRange(time.Now().AddDate(0, 0, -30), time.Now())
		user.LastActiveAt = &lastActive

		if err := s.db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		users = append(users, user)
	}

	logger.Log.Info("Created seed users", zap.Int("count", len(users)))
	return users, nil
}

// seedArtworks creates artworks spread across users and categories
func (s *Seeder) seedArtworks(users []models.User, count int) error {
	if len(users) == 0 {
		return fmt.Errorf("no users to assign artworks to")
	}

	for i := 0; i < count; i++ {
		author := users[rand.Intn(len(users))]
		title := gofakeit.HipsterSentence(10)
		ageRestricted := rand.Float32() < 0.1

		cats := []string{categories.All[rand.Intn(len(categories.All))].ID}
		cats = categories.WithAgeRestriction(cats, ageRestricted)

		artwork := models.Artwork{
			AuthorID:       author.ID,
			AuthorUsername: author.Username,
			Title:          title,
			TitleLower:     strings.ToLower(title),
			Slug:           fmt.Sprintf("%s-%04d", util.Slugify(title), rand.Intn(10000)),
			Description:    gofakeit.Paragraph(1, 3, 10, " "),
			Tags:           models.StringArray{gofakeit.HipsterWord(), gofakeit.HipsterWord()},
			Categories:     cats,
			AgeRestricted:  ageRestricted,
			ImageURL:       gofakeit.ImageURL(800, 600),
			Visibility:     models.VisibilityPublic,
			Status:         models.ArtworkStatusReady,
			LikesCount:     0,
			CreatedAt:      gofakeit.DateRange(time.Now().AddDate(0, -6, 0), time.Now()),
		}
		if err := s.db.Create(&artwork).Error; err != nil {
			return fmt.Errorf("failed to create artwork: %w", err)
		}

		s.db.Model(&models.User{}).Where("id = ?", author.ID).
			UpdateColumn("artworks_count", gorm.Expr("artworks_count + 1"))
	}
	return nil
}

// seedPosts creates feed posts of mixed types
func (s *Seeder) seedPosts(users []models.User, count int) ([]models.Post, error) {
	if len(users) == 0 {
		return nil, fmt.Errorf("no users to assign posts to")
	}

	types := []string{models.PostTypeText, models.PostTypeArt, models.PostTypeComic}

	var posts []models.Post
	for i := 0; i < count; i++ {
		author := users[rand.Intn(len(users))]
		postType := types[rand.Intn(len(types))]

		post := models.Post{
			AuthorID:       author.ID,
			AuthorUsername: author.Username,
			Title:          gofakeit.HipsterSentence(10),
			Body:           gofakeit.Paragraph(2, 4, 15, "\n\n"),
			Type:           postType,
			Tags:           models.StringArray{gofakeit.HipsterWord()},
			CreatedAt:      gofakeit.DateRange(time.Now().AddDate(0, -3, 0), time.Now()),
		}
		if postType != models.PostTypeText {
			post.Media = []models.MediaItem{{
				URL:  gofakeit.ImageURL(1000, 800),
				Path: fmt.Sprintf("posts/%s/%d_seed.jpg", author.ID, time.Now().UnixNano()),
			}}
		}

		if err := s.db.Create(&post).Error; err != nil {
			return nil, fmt.Errorf("failed to create post: %w", err)
		}

		s.db.Model(&models.User{}).Where("id = ?", author.ID).
			UpdateColumn("posts_count", gorm.Expr("posts_count + 1"))
		posts = append(posts, post)
	}
	return posts, nil
}

// seedComments creates comments and keeps the post counters in sync
func (s *Seeder) seedComments(users []models.User, posts []models.Post, count int) error {
	if len(posts) == 0 {
		return nil
	}

	for i := 0; i < count; i++ {
		author := users[rand.Intn(len(users))]
		post := posts[rand.Intn(len(posts))]

		comment := models.Comment{
			PostID:         post.ID,
			AuthorID:       author.ID,
			AuthorUsername: author.Username,
			Text:           gofakeit.HipsterSentence(10),
		}
		if err := s.db.Create(&comment).Error; err != nil {
			return fmt.Errorf("failed to create comment: %w", err)
		}

		s.db.Model(&models.Post{}).Where("id = ?", post.ID).
			UpdateColumn("comments_count", gorm.Expr("comments_count + 1"))
	}
	return nil
}

// seedLikes creates like markers and keeps counters in sync
func (s *Seeder) seedLikes(users []models.User, posts []models.Post) error {
	for _, post := range posts {
		likers := rand.Intn(len(users)/2 + 1)
		seen := make(map[string]bool)
		for i := 0; i < likers; i++ {
			user := users[rand.Intn(len(users))]
			if seen[user.ID] {
				continue
			}
			seen[user.ID] = true

			like := models.Like{
				TargetType: models.LikeTargetPost,
				TargetID:   post.ID,
				UserID:     user.ID,
			}
			if err := s.db.Create(&like).Error; err != nil {
				return fmt.Errorf("failed to create like: %w", err)
			}

			s.db.Model(&models.Post{}).Where("id = ?", post.ID).
				UpdateColumn("likes_count", gorm.Expr("likes_count + 1"))
		}
	}
	return nil
}

// seedFollows creates follow relationships and keeps counters in sync
func (s *Seeder) seedFollows(users []models.User) error {
	for _, follower := range users {
		followCount := rand.Intn(10)
		seen := make(map[string]bool)
		for i := 0; i < followCount; i++ {
			followee := users[rand.Intn(len(users))]
			if followee.ID == follower.ID || seen[followee.ID] {
				continue
			}
			seen[followee.ID] = true

			follow := models.Follow{
				FollowerID: follower.ID,
				FolloweeID: followee.ID,
			}
			if err := s.db.Create(&follow).Error; err != nil {
				return fmt.Errorf("failed to create follow: %w", err)
			}

			s.db.Model(&models.User{}).Where("id = ?", follower.ID).
				UpdateColumn("following_count", gorm.Expr("following_count + 1"))
			s.db.Model(&models.User{}).Where("id = ?", followee.ID).
				UpdateColumn("followers_count", gorm.Expr("followers_count + 1"))
		}
	}
	return nil
}
