package handlers

import (
	"context"

	"medialeader/database"
	"medialeader/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// renderPosts resolves every user and original-post reference in the
// given posts with two batched queries, then shapes the response
// documents. Authors come back as {id, name, role}, comment and share
// users as {id, name}.
func renderPosts(ctx context.Context, posts []models.Post) ([]gin.H, error) {
	originals, err := loadOriginals(ctx, posts)
	if err != nil {
		return nil, err
	}

	users, err := loadReferencedUsers(ctx, posts, originals)
	if err != nil {
		return nil, err
	}

	rendered := make([]gin.H, len(posts))
	for i := range posts {
		rendered[i] = renderPost(&posts[i], users, originals)
	}
	return rendered, nil
}

func loadOriginals(ctx context.Context, posts []models.Post) (map[primitive.ObjectID]models.Post, error) {
	var ids []primitive.ObjectID
	for i := range posts {
		if posts[i].OriginalPost != nil {
			ids = append(ids, *posts[i].OriginalPost)
		}
	}

	originals := make(map[primitive.ObjectID]models.Post)
	if len(ids) == 0 {
		return originals, nil
	}

	cursor, err := database.Posts.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var found []models.Post
	if err := cursor.All(ctx, &found); err != nil {
		return nil, err
	}
	for _, p := range found {
		originals[p.ID] = p
	}
	return originals, nil
}

func loadReferencedUsers(ctx context.Context, posts []models.Post, originals map[primitive.ObjectID]models.Post) (map[primitive.ObjectID]models.User, error) {
	seen := make(map[primitive.ObjectID]bool)
	var ids []primitive.ObjectID
	add := func(id primitive.ObjectID) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	collect := func(p *models.Post) {
		add(p.Author)
		for _, cm := range p.Comments {
			add(cm.User)
		}
		for _, s := range p.Shares {
			add(s.User)
		}
	}
	for i := range posts {
		collect(&posts[i])
	}
	for _, p := range originals {
		add(p.Author)
	}

	users := make(map[primitive.ObjectID]models.User)
	if len(ids) == 0 {
		return users, nil
	}

	cursor, err := database.Users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var found []models.User
	if err := cursor.All(ctx, &found); err != nil {
		return nil, err
	}
	for _, u := range found {
		users[u.ID] = u
	}
	return users, nil
}

func renderPost(p *models.Post, users map[primitive.ObjectID]models.User, originals map[primitive.ObjectID]models.Post) gin.H {
	likes := make([]string, len(p.Likes))
	for i, id := range p.Likes {
		likes[i] = id.Hex()
	}

	comments := make([]gin.H, len(p.Comments))
	for i, cm := range p.Comments {
		comments[i] = gin.H{
			"id":        cm.ID.Hex(),
			"user":      userRef(users, cm.User, false),
			"content":   cm.Content,
			"createdAt": cm.CreatedAt,
		}
	}

	shares := make([]gin.H, len(p.Shares))
	for i, s := range p.Shares {
		shares[i] = gin.H{
			"user":      userRef(users, s.User, false),
			"createdAt": s.CreatedAt,
		}
	}

	doc := gin.H{
		"id":           p.ID.Hex(),
		"author":       userRef(users, p.Author, true),
		"title":        p.Title,
		"content":      p.Content,
		"image":        p.Image,
		"likes":        likes,
		"comments":     comments,
		"shares":       shares,
		"isSharedPost": p.IsSharedPost,
		"createdAt":    p.CreatedAt,
		"updatedAt":    p.UpdatedAt,
	}

	if p.OriginalPost != nil {
		if original, ok := originals[*p.OriginalPost]; ok {
			doc["originalPost"] = gin.H{
				"id":        original.ID.Hex(),
				"author":    userRef(users, original.Author, true),
				"title":     original.Title,
				"content":   original.Content,
				"image":     original.Image,
				"createdAt": original.CreatedAt,
			}
		} else {
			// Original was deleted out from under the copy.
			doc["originalPost"] = nil
		}
	}

	return doc
}

func userRef(users map[primitive.ObjectID]models.User, id primitive.ObjectID, withRole bool) gin.H {
	ref := gin.H{
		"id":   id.Hex(),
		"name": "Unknown User",
	}
	if withRole {
		ref["role"] = ""
	}
	if u, ok := users[id]; ok {
		ref["name"] = u.Name
		if withRole {
			ref["role"] = u.Role
		}
	}
	return ref
}
