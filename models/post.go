package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MaxTitleLength   = 100
	MaxContentLength = 1000
	MaxCommentLength = 500
)

type Post struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Author        primitive.ObjectID   `bson:"author" json:"-"`
	Title         string               `bson:"title" json:"title"`
	Content       string               `bson:"content" json:"content"`
	Image         string               `bson:"image,omitempty" json:"image,omitempty"`
	ImagePublicID string               `bson:"imagePublicId,omitempty" json:"-"`
	Likes         []primitive.ObjectID `bson:"likes" json:"likes"`
	Comments      []Comment            `bson:"comments" json:"comments"`
	Shares        []Share              `bson:"shares" json:"shares"`
	IsSharedPost  bool                 `bson:"isSharedPost" json:"isSharedPost"`
	OriginalPost  *primitive.ObjectID  `bson:"originalPost,omitempty" json:"-"`
	CreatedAt     time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// Comment is embedded in a post. It carries its own id so it can be
// addressed for deletion.
type Comment struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	User      primitive.ObjectID `bson:"user" json:"-"`
	Content   string             `bson:"content" json:"content"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Share records one user redistributing the post. The redistribution
// itself also exists as a standalone copy post referencing the original.
type Share struct {
	User      primitive.ObjectID `bson:"user" json:"-"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// HasLiked reports whether userID is already in the post's likes.
func (p *Post) HasLiked(userID primitive.ObjectID) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}


// FindComment returns the embedded comment with the given id, or nil.
func (p *Post) FindComment(commentID primitive.ObjectID) *Comment {
	for i := range p.Comments {
		if p.Comments[i].ID == commentID {
			return &p.Comments[i]
		}
	}
	return nil
}
