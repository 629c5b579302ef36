package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/punkontrol/backend/internal/models"
)

type CommentsTestSuite struct {
	handlerSuite
}

func (suite *CommentsTestSuite) SetupSuite() {
	suite.handlerSuite.SetupSuite()
	if suite.db == nil {
		return
	}

	posts := suite.router.Group("/api/v1/posts")
	posts.GET("/:id/comments", suite.handlers.GetComments)
	posts.POST("/:id/comments", suite.mockAuthMiddleware(), suite.handlers.CreateComment)
	posts.DELETE("/:id/comments/:commentId", suite.mockAuthMiddleware(), suite.handlers.DeleteComment)
}

func (suite *CommentsTestSuite) postComment(postID, userID, text string) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(map[string]string{"text": text})
	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/api/v1/posts/%s/comments", postID), bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", userID)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *CommentsTestSuite) TestCreateBumpsCounter() {
	post := suite.createPost(suite.testUser)

	w := suite.postComment(post.ID, suite.testUser.ID, "first!")
	require.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())

	w = suite.postComment(post.ID, suite.testUser.ID, "second")
	require.Equal(suite.T(), http.StatusCreated, w.Code)

	var updated models.Post
	require.NoError(suite.T(), suite.db.First(&updated, "id = ?", post.ID).Error)
	assert.Equal(suite.T(), 2, updated.CommentsCount)
}

func (suite *CommentsTestSuite) TestListOldestFirst() {
	post := suite.createPost(suite.testUser)

	for _, text := range []string{"one", "two", "three"} {
		w := suite.postComment(post.ID, suite.testUser.ID, text)
		require.Equal(suite.T(), http.StatusCreated, w.Code)
	}

	req := httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/api/v1/posts/%s/comments", post.ID), nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	var body struct {
		Comments []models.Comment `json:"comments"`
		Count    int              `json:"count"`
	}
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(suite.T(), 3, body.Count)
	assert.Equal(suite.T(), "one", body.Comments[0].Text)
	assert.Equal(suite.T(), "three", body.Comments[2].Text)
}

func (suite *CommentsTestSuite) TestDeleteDecrementsCounter() {
	post := suite.createPost(suite.testUser)

	w := suite.postComment(post.ID, suite.testUser.ID, "doomed")
	require.Equal(suite.T(), http.StatusCreated, w.Code)

	var comment models.Comment
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &comment))

	req := httptest.NewRequest(http.MethodDelete,
		fmt.Sprintf("/api/v1/posts/%s/comments/%s", post.ID, comment.ID), nil)
	req.Header.Set("X-User-ID", suite.testUser.ID)
	rec := httptest.NewRecorder()
	suite.router.ServeHTTP(rec, req)
	require.Equal(suite.T(), http.StatusOK, rec.Code)

	var updated models.Post
	require.NoError(suite.T(), suite.db.First(&updated, "id = ?", post.ID).Error)
	assert.Equal(suite.T(), 0, updated.CommentsCount)
}

func (suite *CommentsTestSuite) TestDeleteOtherUsersCommentForbidden() {
	post := suite.createPost(suite.testUser)

	w := suite.postComment(post.ID, suite.testUser.ID, "mine")
	require.Equal(suite.T(), http.StatusCreated, w.Code)
	var comment models.Comment
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &comment))

	other := &models.User{
		Email:       "other@example.com",
		Username:    "otheruser",
		DisplayName: "Other",
	}
	require.NoError(suite.T(), suite.db.Create(other).Error)

	req := httptest.NewRequest(http.MethodDelete,
		fmt.Sprintf("/api/v1/posts/%s/comments/%s", post.ID, comment.ID), nil)
	req.Header.Set("X-User-ID", other.ID)
	rec := httptest.NewRecorder()
	suite.router.ServeHTTP(rec, req)
	assert.Equal(suite.T(), http.StatusForbidden, rec.Code)
}

func (suite *CommentsTestSuite) TestCommentOnMissingPost() {
	w := suite.postComment("00000000-0000-0000-0000-000000000000", suite.testUser.ID, "hello")
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func TestCommentsTestSuite(t *testing.T) {
	suite.Run(t, new(CommentsTestSuite))
}
