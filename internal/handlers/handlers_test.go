package handlers

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/punkontrol/backend/internal/auth"
	"github.com/punkontrol/backend/internal/database"
	"github.com/punkontrol/backend/internal/models"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// handlerSuite is the shared base for handler tests that need a real
// Postgres instance. Suites skip when no database is reachable.
type handlerSuite struct {
	suite.Suite
	db       *gorm.DB
	router   *gin.Engine
	handlers *Handlers
	testUser *models.User
}

func (suite *handlerSuite) SetupSuite() {
	host := getEnvOrDefaultTest("POSTGRES_HOST", "localhost")
	port := getEnvOrDefaultTest("POSTGRES_PORT", "5432")
	user := getEnvOrDefaultTest("POSTGRES_USER", "postgres")
	password := getEnvOrDefaultTest("POSTGRES_PASSWORD", "")
	dbname := getEnvOrDefaultTest("POSTGRES_DB", "punkontrol_test")

	testDSN := fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=disable", host, port, user, dbname)
	if password != "" {
		testDSN = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", host, port, user, password, dbname)
	}

	db, err := gorm.Open(postgres.Open(testDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		suite.T().Skipf("Skipping handler tests: database not available (%v)", err)
		return
	}

	// Set global DB for the database package
	database.DB = db

	err = db.AutoMigrate(
		&models.User{},
		&models.Artwork{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Follow{},
	)
	require.NoError(suite.T(), err)

	suite.db = db
	suite.handlers = NewHandlers(auth.NewService([]byte("test-secret"), "", ""))

	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
}

func (suite *handlerSuite) TearDownSuite() {
	if suite.db == nil {
		return
	}
	sqlDB, _ := suite.db.DB()
	sqlDB.Close()
}

func (suite *handlerSuite) SetupTest() {
	suite.db.Exec("TRUNCATE TABLE likes, comments, follows, posts, artworks RESTART IDENTITY CASCADE")
	suite.db.Exec("TRUNCATE TABLE users RESTART IDENTITY CASCADE")

	testID := fmt.Sprintf("%d", time.Now().UnixNano())
	suite.testUser = &models.User{
		Email:       fmt.Sprintf("tester_%s@example.com", testID),
		Username:    fmt.Sprintf("tester_%s", testID),
		DisplayName: "Test User",
	}
	require.NoError(suite.T(), suite.db.Create(suite.testUser).Error)
}

// mockAuthMiddleware loads the user named by X-User-ID into the context,
// standing in for the JWT middleware.
func (suite *handlerSuite) mockAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		var user models.User
		if err := suite.db.Where("id = ?", userID).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		c.Set("user", &user)
		c.Set("user_id", user.ID)
		c.Next()
	}
}

func (suite *handlerSuite) createPost(author *models.User) *models.Post {
	post := &models.Post{
		AuthorID:       author.ID,
		AuthorUsername: author.Username,
		Title:          "Test post",
		Body:           "body",
		Type:           models.PostTypeText,
	}
	require.NoError(suite.T(), suite.db.Create(post).Error)
	return post
}

func getEnvOrDefaultTest(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
