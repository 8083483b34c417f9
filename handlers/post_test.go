package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"medialeader/config"
	"medialeader/middleware"
	"medialeader/models"
	"medialeader/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeImageStore struct{}

func (fakeImageStore) Upload(ctx context.Context, file io.Reader) (*services.UploadedImage, error) {
	return &services.UploadedImage{URL: "https://img.example/x.jpg", PublicID: "x"}, nil
}

func (fakeImageStore) Destroy(ctx context.Context, publicID string) error { return nil }

// withUser plays the auth guard for tests, attaching a resolved user.
func withUser(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.CurrentUserKey, user)
		c.Next()
	}
}

func postTestRouter(user *models.User) *gin.Engine {
	h := NewPostHandler(fakeImageStore{}, config.LikeStrict)

	router := gin.New()
	group := router.Group("/api", withUser(user))
	group.POST("/posts", h.Create)
	group.POST("/posts/:id/comments", h.AddComment)
	group.DELETE("/posts/:id/comments/:commentId", h.DeleteComment)
	return router
}

func journalist() *models.User {
	return &models.User{
		ID:              primitive.NewObjectID(),
		Email:           "reporter@example.com",
		Name:            "Reporter",
		Role:            models.RoleJournalist,
		IsEmailVerified: true,
	}
}

func regularUser() *models.User {
	return &models.User{
		ID:              primitive.NewObjectID(),
		Email:           "reader@example.com",
		Name:            "Reader",
		Role:            models.RoleUser,
		IsEmailVerified: true,
	}
}

func multipartBody(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestCreatePostRejectsNonJournalist(t *testing.T) {
	router := postTestRouter(regularUser())

	body, contentType := multipartBody(t, map[string]string{
		"title":   "Headline",
		"content": "Body text",
	})
	req := httptest.NewRequest("POST", "/api/posts", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.Equal(t, "error", envelope["status"])
	assert.Equal(t, "Only journalists can create posts", envelope["message"])
}

func TestCreatePostValidation(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
	}{
		{"missing title", map[string]string{"content": "Body text"}},
		{"missing content", map[string]string{"title": "Headline"}},
		{"oversized title", map[string]string{
			"title":   strings.Repeat("a", models.MaxTitleLength+1),
			"content": "Body text",
		}},
		{"oversized content", map[string]string{
			"title":   "Headline",
			"content": strings.Repeat("a", models.MaxContentLength+1),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := postTestRouter(journalist())

			body, contentType := multipartBody(t, tt.fields)
			req := httptest.NewRequest("POST", "/api/posts", body)
			req.Header.Set("Content-Type", contentType)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "error", decodeEnvelope(t, w)["status"])
		})
	}
}

func TestCreatePostRequiresImage(t *testing.T) {
	router := postTestRouter(journalist())

	body, contentType := multipartBody(t, map[string]string{
		"title":   "Headline",
		"content": "Body text",
	})
	req := httptest.NewRequest("POST", "/api/posts", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Image is required", decodeEnvelope(t, w)["message"])
}

func TestAddCommentValidation(t *testing.T) {
	router := postTestRouter(regularUser())
	postID := primitive.NewObjectID().Hex()

	tests := []struct {
		name string
		body string
	}{
		{"empty body", `{}`},
		{"blank content", `{"content":""}`},
		{"oversized content", `{"content":"` + strings.Repeat("a", models.MaxCommentLength+1) + `"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/posts/"+postID+"/comments", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestDeleteCommentUnknownCommentID(t *testing.T) {
	router := postTestRouter(regularUser())
	postID := primitive.NewObjectID().Hex()

	req := httptest.NewRequest("DELETE", "/api/posts/"+postID+"/comments/not-a-hex-id", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Comment not found", decodeEnvelope(t, w)["message"])
}

// recordingImageStore captures Destroy calls so tests can assert which
// assets a handler dropped.
type recordingImageStore struct {
	fakeImageStore
	destroyed []string
}

func (r *recordingImageStore) Destroy(ctx context.Context, publicID string) error {
	r.destroyed = append(r.destroyed, publicID)
	return nil
}

func TestReplaceImageDestroysOnlyOwnedAssets(t *testing.T) {
	originalID := primitive.NewObjectID()

	tests := []struct {
		name          string
		post          models.Post
		wantDestroyed []string
	}{
		{
			name: "original with stored asset",
			post: models.Post{
				ID:            primitive.NewObjectID(),
				ImagePublicID: "media-leaderboard/abc",
			},
			wantDestroyed: []string{"media-leaderboard/abc"},
		},
		{
			name: "shared copy referencing the original's asset",
			post: models.Post{
				ID:            primitive.NewObjectID(),
				ImagePublicID: "media-leaderboard/abc",
				IsSharedPost:  true,
				OriginalPost:  &originalID,
			},
			wantDestroyed: nil,
		},
		{
			name: "original without a stored asset",
			post: models.Post{
				ID: primitive.NewObjectID(),
			},
			wantDestroyed: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &recordingImageStore{}
			h := NewPostHandler(store, config.LikeStrict)

			uploaded, err := h.replaceImage(context.Background(), &tt.post, strings.NewReader("pixels"))
			require.NoError(t, err)
			assert.Equal(t, "x", uploaded.PublicID)
			assert.Equal(t, tt.wantDestroyed, store.destroyed)
		})
	}
}

func TestNewSharedCopy(t *testing.T) {
	sharer := primitive.NewObjectID()
	now := time.Now()
	original := models.Post{
		ID:            primitive.NewObjectID(),
		Author:        primitive.NewObjectID(),
		Title:         "Breaking",
		Content:       "Story body",
		Image:         "https://img.example/orig.jpg",
		ImagePublicID: "media-leaderboard/orig",
		Likes:         []primitive.ObjectID{sharer},
		Comments:      []models.Comment{{ID: primitive.NewObjectID(), Content: "hi"}},
		Shares:        []models.Share{{User: sharer, CreatedAt: now}},
	}

	copyPost := newSharedCopy(&original, sharer, now)

	assert.True(t, copyPost.IsSharedPost)
	require.NotNil(t, copyPost.OriginalPost)
	assert.Equal(t, original.ID, *copyPost.OriginalPost)
	assert.Equal(t, sharer, copyPost.Author)
	assert.Equal(t, original.Title, copyPost.Title)
	assert.Equal(t, original.Content, copyPost.Content)

	// The copy displays the original's asset but never owns it.
	assert.Equal(t, original.Image, copyPost.Image)
	assert.Equal(t, original.ImagePublicID, copyPost.ImagePublicID)
	assert.False(t, ownsStoredImage(&copyPost))

	// Engagement does not carry over to the copy.
	assert.Empty(t, copyPost.Likes)
	assert.Empty(t, copyPost.Comments)
	assert.Empty(t, copyPost.Shares)
	assert.Equal(t, now, copyPost.CreatedAt)
}
