package handlers

import (
	"context"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"time"

	"medialeader/config"
	"medialeader/database"
	"medialeader/models"
	"medialeader/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PostHandler struct {
	images     services.ImageStore
	likePolicy config.LikePolicy
}

func NewPostHandler(images services.ImageStore, likePolicy config.LikePolicy) *PostHandler {
	return &PostHandler{images: images, likePolicy: likePolicy}
}

type CreatePostRequest struct {
	Title   string `form:"title" binding:"required,max=100"`
	Content string `form:"content" binding:"required,max=1000"`
}

type UpdatePostRequest struct {
	Title   string `form:"title" binding:"omitempty,max=100"`
	Content string `form:"content" binding:"omitempty,max=1000"`
}

type AddCommentRequest struct {
	Content string `json:"content" binding:"required,max=500"`
}

func (h *PostHandler) Create(c *gin.Context) {
	user := currentUser(c)
	if !user.IsJournalist() {
		respondError(c, http.StatusForbidden, "Only journalists can create posts")
		return
	}

	var req CreatePostRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Title and content are required")
		return
	}

	file, _, err := c.Request.FormFile("image")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Image is required")
		return
	}
	defer file.Close()

	uploaded, err := h.uploadImage(c, file)
	if err != nil {
		respondUploadError(c, err)
		return
	}

	ctx, cancel := dbContext()
	defer cancel()

	now := time.Now()
	post := models.Post{
		ID:            primitive.NewObjectID(),
		Author:        user.ID,
		Title:         req.Title,
		Content:       req.Content,
		Image:         uploaded.URL,
		ImagePublicID: uploaded.PublicID,
		Likes:         []primitive.ObjectID{},
		Comments:      []models.Comment{},
		Shares:        []models.Share{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if _, err := database.Posts.InsertOne(ctx, post); err != nil {
		log.Printf("Create post error: %v", err)
		respondError(c, http.StatusInternalServerError, "Failed to create post")
		return
	}

	h.respondWithPost(ctx, c, http.StatusCreated, &post)
}

func (h *PostHandler) List(c *gin.Context) {
	ctx, cancel := dbContext()
	defer cancel()

	h.listPosts(ctx, c, bson.M{})
}

func (h *PostHandler) ListMine(c *gin.Context) {
	user := currentUser(c)

	ctx, cancel := dbContext()
	defer cancel()

	h.listPosts(ctx, c, bson.M{"author": user.ID})
}

func (h *PostHandler) listPosts(ctx context.Context, c *gin.Context, filter bson.M) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := database.Posts.Find(ctx, filter, findOptions)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Error fetching posts")
		return
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err := cursor.All(ctx, &posts); err != nil {
		respondError(c, http.StatusInternalServerError, "Error fetching posts")
		return
	}

	rendered, err := renderPosts(ctx, posts)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Error fetching posts")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"results": len(rendered),
		"posts":   rendered,
	})
}

func (h *PostHandler) Get(c *gin.Context) {
	ctx, cancel := dbContext()
	defer cancel()

	post, ok := fetchPost(ctx, c)
	if !ok {
		return
	}

	h.respondWithPost(ctx, c, http.StatusOK, post)
}

func (h *PostHandler) Update(c *gin.Context) {
	user := currentUser(c)

	var req UpdatePostRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := dbContext()
	defer cancel()

	post, ok := fetchPost(ctx, c)
	if !ok {
		return
	}

	if !models.CanModifyPost(post, user) {
		respondError(c, http.StatusForbidden, "You are not authorized to update this post")
		return
	}

	update := bson.M{"updatedAt": time.Now()}
	if req.Title != "" {
		update["title"] = req.Title
		post.Title = req.Title
	}
	if req.Content != "" {
		update["content"] = req.Content
		post.Content = req.Content
	}

	if file, _, err := c.Request.FormFile("image"); err == nil {
		defer file.Close()

		// A copy displays the original's image and has no asset of
		// its own to replace.
		if post.IsSharedPost {
			respondError(c, http.StatusBadRequest, "Cannot replace the image of a shared post")
			return
		}

		uploaded, err := h.replaceImage(ctx, post, file)
		if err != nil {
			respondUploadError(c, err)
			return
		}
		update["image"] = uploaded.URL
		update["imagePublicId"] = uploaded.PublicID
		post.Image = uploaded.URL
		post.ImagePublicID = uploaded.PublicID
	}

	if _, err := database.Posts.UpdateByID(ctx, post.ID, bson.M{"$set": update}); err != nil {
		respondError(c, http.StatusInternalServerError, "Error updating post")
		return
	}

	h.respondWithPost(ctx, c, http.StatusOK, post)
}

func (h *PostHandler) Delete(c *gin.Context) {
	user := currentUser(c)

	ctx, cancel := dbContext()
	defer cancel()

	post, ok := fetchPost(ctx, c)
	if !ok {
		return
	}

	if !models.CanModifyPost(post, user) {
		respondError(c, http.StatusForbidden, "You are not authorized to delete this post")
		return
	}

	if ownsStoredImage(post) {
		if err := h.images.Destroy(ctx, post.ImagePublicID); err != nil {
			log.Printf("Delete post %s: destroy image: %v", post.ID.Hex(), err)
		}
	}

	// Cascade: remove the copies created by shares of this post.
	if len(post.Shares) > 0 {
		if _, err := database.Posts.DeleteMany(ctx, bson.M{
			"isSharedPost": true,
			"originalPost": post.ID,
		}); err != nil {
			respondError(c, http.StatusInternalServerError, "Error deleting post")
			return
		}
	}

	if _, err := database.Posts.DeleteOne(ctx, bson.M{"_id": post.ID}); err != nil {
		respondError(c, http.StatusInternalServerError, "Error deleting post")
		return
	}

	respondMessage(c, http.StatusOK, "Post deleted successfully")
}

func (h *PostHandler) Like(c *gin.Context) {
	user := currentUser(c)

	ctx, cancel := dbContext()
	defer cancel()

	post, ok := fetchPost(ctx, c)
	if !ok {
		return
	}

	if post.HasLiked(user.ID) {
		if h.likePolicy == config.LikeStrict {
			respondError(c, http.StatusConflict, "You have already liked this post")
			return
		}
		h.respondWithPost(ctx, c, http.StatusOK, post)
		return
	}

	// $addToSet keeps the likes set duplicate-free even when two
	// requests race past the read above.
	_, err := database.Posts.UpdateByID(ctx, post.ID, bson.M{
		"$addToSet": bson.M{"likes": user.ID},
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Error liking post")
		return
	}
	post.Likes = append(post.Likes, user.ID)

	if post.Author != user.ID {
		insertNotification(ctx, post.Author, user.ID, models.NotificationLike, post.ID)
	}

	h.respondWithPost(ctx, c, http.StatusOK, post)
}

func (h *PostHandler) Unlike(c *gin.Context) {
	user := currentUser(c)

	ctx, cancel := dbContext()
	defer cancel()

	post, ok := fetchPost(ctx, c)
	if !ok {
		return
	}

	_, err := database.Posts.UpdateByID(ctx, post.ID, bson.M{
		"$pull": bson.M{"likes": user.ID},
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Error unliking post")
		return
	}

	likes := post.Likes[:0]
	for _, id := range post.Likes {
		if id != user.ID {
			likes = append(likes, id)
		}
	}
	post.Likes = likes

	h.respondWithPost(ctx, c, http.StatusOK, post)
}

func (h *PostHandler) AddComment(c *gin.Context) {
	user := currentUser(c)

	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := dbContext()
	defer cancel()

	post, ok := fetchPost(ctx, c)
	if !ok {
		return
	}

	comment := models.Comment{
		ID:        primitive.NewObjectID(),
		User:      user.ID,
		Content:   req.Content,
		CreatedAt: time.Now(),
	}

	_, err := database.Posts.UpdateByID(ctx, post.ID, bson.M{
		"$push": bson.M{"comments": comment},
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Error adding comment")
		return
	}
	post.Comments = append(post.Comments, comment)

	if post.Author != user.ID {
		insertNotification(ctx, post.Author, user.ID, models.NotificationComment, post.ID)
	}

	h.respondWithPost(ctx, c, http.StatusCreated, post)
}

func (h *PostHandler) DeleteComment(c *gin.Context) {
	user := currentUser(c)

	commentID, err := primitive.ObjectIDFromHex(c.Param("commentId"))
	if err != nil {
		respondError(c, http.StatusNotFound, "Comment not found")
		return
	}

	ctx, cancel := dbContext()
	defer cancel()

	post, ok := fetchPost(ctx, c)
	if !ok {
		return
	}

	comment := post.FindComment(commentID)
	if comment == nil {
		respondError(c, http.StatusNotFound, "Comment not found")
		return
	}

	if !models.CanDeleteComment(post, comment, user.ID) {
		respondError(c, http.StatusForbidden, "You are not authorized to delete this comment")
		return
	}

	_, err = database.Posts.UpdateByID(ctx, post.ID, bson.M{
		"$pull": bson.M{"comments": bson.M{"_id": commentID}},
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Error deleting comment")
		return
	}

	comments := post.Comments[:0]
	for _, cm := range post.Comments {
		if cm.ID != commentID {
			comments = append(comments, cm)
		}
	}
	post.Comments = comments

	h.respondWithPost(ctx, c, http.StatusOK, post)
}

func (h *PostHandler) Share(c *gin.Context) {
	user := currentUser(c)

	ctx, cancel := dbContext()
	defer cancel()

	original, ok := fetchPost(ctx, c)
	if !ok {
		return
	}

	// A user shares a given original at most once; the standalone copy
	// is the sole duplicate marker.
	count, err := database.Posts.CountDocuments(ctx, bson.M{
		"author":       user.ID,
		"originalPost": original.ID,
		"isSharedPost": true,
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Error sharing post")
		return
	}
	if count > 0 {
		respondError(c, http.StatusConflict, "You have already shared this post")
		return
	}

	// The copy is written first: the two writes are not atomic, and a
	// crash after this insert makes the retry hit the duplicate check
	// instead of double-writing.
	now := time.Now()
	sharedPost := newSharedCopy(original, user.ID, now)
	if _, err := database.Posts.InsertOne(ctx, sharedPost); err != nil {
		respondError(c, http.StatusInternalServerError, "Error sharing post")
		return
	}

	_, err = database.Posts.UpdateByID(ctx, original.ID, bson.M{
		"$push": bson.M{"shares": models.Share{User: user.ID, CreatedAt: now}},
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Error sharing post")
		return
	}

	if original.Author != user.ID {
		insertNotification(ctx, original.Author, user.ID, models.NotificationShare, original.ID)
	}

	h.respondWithPost(ctx, c, http.StatusCreated, &sharedPost)
}

// newSharedCopy builds the standalone post a share creates: the
// original's display fields under the sharer, flagged and linked so the
// duplicate check can find it.
func newSharedCopy(original *models.Post, sharer primitive.ObjectID, now time.Time) models.Post {
	return models.Post{
		ID:            primitive.NewObjectID(),
		Author:        sharer,
		Title:         original.Title,
		Content:       original.Content,
		Image:         original.Image,
		ImagePublicID: original.ImagePublicID,
		Likes:         []primitive.ObjectID{},
		Comments:      []models.Comment{},
		Shares:        []models.Share{},
		IsSharedPost:  true,
		OriginalPost:  &original.ID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// fetchPost loads the post addressed by the :id route param, writing
// the 404 itself when absent.
func fetchPost(ctx context.Context, c *gin.Context) (*models.Post, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusNotFound, "Post not found")
		return nil, false
	}

	var post models.Post
	err = database.Posts.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err == mongo.ErrNoDocuments {
		respondError(c, http.StatusNotFound, "Post not found")
		return nil, false
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Database error")
		return nil, false
	}
	return &post, true
}

func (h *PostHandler) uploadImage(c *gin.Context, file multipart.File) (*services.UploadedImage, error) {
	return h.images.Upload(c.Request.Context(), file)
}

// ownsStoredImage reports whether the post owns its stored image asset.
// A shared copy references the original's image and public id, so it
// must never destroy them.
func ownsStoredImage(p *models.Post) bool {
	return !p.IsSharedPost && p.ImagePublicID != ""
}

// replaceImage uploads the replacement, first dropping the prior asset
// when the post owns one.
func (h *PostHandler) replaceImage(ctx context.Context, post *models.Post, file io.Reader) (*services.UploadedImage, error) {
	if ownsStoredImage(post) {
		if err := h.images.Destroy(ctx, post.ImagePublicID); err != nil {
			log.Printf("Replace image on post %s: destroy old image: %v", post.ID.Hex(), err)
		}
	}
	return h.images.Upload(ctx, file)
}

func (h *PostHandler) respondWithPost(ctx context.Context, c *gin.Context, code int, post *models.Post) {
	rendered, err := renderPosts(ctx, []models.Post{*post})
	if err != nil || len(rendered) != 1 {
		respondError(c, http.StatusInternalServerError, "Error fetching post")
		return
	}
	respondSuccess(c, code, gin.H{"post": rendered[0]})
}

func respondUploadError(c *gin.Context, err error) {
	log.Printf("Image upload error: %v", err)
	respondError(c, http.StatusInternalServerError, err.Error())
}
