package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Authorization rules shared by every mutation path. Handlers must not
// re-implement these checks inline.

// CanModifyPost reports whether user may update or delete the post:
// the post's author, and a journalist.
func CanModifyPost(post *Post, user *User) bool {
	return post.Author == user.ID && user.IsJournalist()
}

// CanDeleteComment reports whether userID may delete the comment:
// either the comment's author or the post's author.
func CanDeleteComment(post *Post, comment *Comment, userID primitive.ObjectID) bool {
	return comment.User == userID || post.Author == userID
}

// OwnsNotification reports whether userID is the notification's
// recipient. Read/delete operations require it.
func OwnsNotification(n *Notification, userID primitive.ObjectID) bool {
	return n.Recipient == userID
}
