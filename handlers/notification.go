package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"medialeader/database"
	"medialeader/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NotificationHandler struct{}

func NewNotificationHandler() *NotificationHandler {
	return &NotificationHandler{}
}

// insertNotification records a like/comment/share event for the post
// author. Failure is logged, not surfaced: the triggering action has
// already been persisted.
func insertNotification(ctx context.Context, recipient, sender primitive.ObjectID, notifType string, post primitive.ObjectID) {
	n := models.Notification{
		ID:        primitive.NewObjectID(),
		Recipient: recipient,
		Sender:    sender,
		Type:      notifType,
		Post:      post,
		Read:      false,
		CreatedAt: time.Now(),
	}
	if _, err := database.Notifications.InsertOne(ctx, n); err != nil {
		log.Printf("Failed to record %s notification for %s: %v", notifType, recipient.Hex(), err)
	}
}

func (h *NotificationHandler) ListMine(c *gin.Context) {
	user := currentUser(c)

	ctx, cancel := dbContext()
	defer cancel()

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := database.Notifications.Find(ctx, bson.M{"recipient": user.ID}, findOptions)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Error fetching notifications")
		return
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		respondError(c, http.StatusInternalServerError, "Error fetching notifications")
		return
	}

	rendered, err := renderNotifications(ctx, notifications)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Error fetching notifications")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"results":       len(rendered),
		"notifications": rendered,
	})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	user := currentUser(c)

	ctx, cancel := dbContext()
	defer cancel()

	notification, ok := fetchNotification(ctx, c)
	if !ok {
		return
	}

	if !models.OwnsNotification(notification, user.ID) {
		respondError(c, http.StatusForbidden, "You are not authorized to update this notification")
		return
	}

	_, err := database.Notifications.UpdateByID(ctx, notification.ID, bson.M{
		"$set": bson.M{"read": true},
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Error updating notification")
		return
	}
	notification.Read = true

	respondSuccess(c, http.StatusOK, gin.H{"notification": notification})
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	user := currentUser(c)

	ctx, cancel := dbContext()
	defer cancel()

	_, err := database.Notifications.UpdateMany(ctx,
		bson.M{"recipient": user.ID, "read": false},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Error updating notifications")
		return
	}

	respondMessage(c, http.StatusOK, "All notifications marked as read")
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	user := currentUser(c)

	ctx, cancel := dbContext()
	defer cancel()

	notification, ok := fetchNotification(ctx, c)
	if !ok {
		return
	}

	if !models.OwnsNotification(notification, user.ID) {
		respondError(c, http.StatusForbidden, "You are not authorized to delete this notification")
		return
	}

	if _, err := database.Notifications.DeleteOne(ctx, bson.M{"_id": notification.ID}); err != nil {
		respondError(c, http.StatusInternalServerError, "Error deleting notification")
		return
	}

	respondMessage(c, http.StatusOK, "Notification deleted")
}

func fetchNotification(ctx context.Context, c *gin.Context) (*models.Notification, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusNotFound, "Notification not found")
		return nil, false
	}

	var notification models.Notification
	err = database.Notifications.FindOne(ctx, bson.M{"_id": id}).Decode(&notification)
	if err == mongo.ErrNoDocuments {
		respondError(c, http.StatusNotFound, "Notification not found")
		return nil, false
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Database error")
		return nil, false
	}
	return &notification, true
}

// renderNotifications resolves sender identity and the referenced
// post's title/content, batch-fetched like renderPosts.
func renderNotifications(ctx context.Context, notifications []models.Notification) ([]gin.H, error) {
	senders := make(map[primitive.ObjectID]models.User)
	posts := make(map[primitive.ObjectID]models.Post)

	var senderIDs, postIDs []primitive.ObjectID
	seenSender := make(map[primitive.ObjectID]bool)
	seenPost := make(map[primitive.ObjectID]bool)
	for _, n := range notifications {
		if !seenSender[n.Sender] {
			seenSender[n.Sender] = true
			senderIDs = append(senderIDs, n.Sender)
		}
		if !seenPost[n.Post] {
			seenPost[n.Post] = true
			postIDs = append(postIDs, n.Post)
		}
	}

	if len(senderIDs) > 0 {
		cursor, err := database.Users.Find(ctx, bson.M{"_id": bson.M{"$in": senderIDs}})
		if err != nil {
			return nil, err
		}
		var found []models.User
		if err := cursor.All(ctx, &found); err != nil {
			return nil, err
		}
		for _, u := range found {
			senders[u.ID] = u
		}
	}

	if len(postIDs) > 0 {
		cursor, err := database.Posts.Find(ctx, bson.M{"_id": bson.M{"$in": postIDs}})
		if err != nil {
			return nil, err
		}
		var found []models.Post
		if err := cursor.All(ctx, &found); err != nil {
			return nil, err
		}
		for _, p := range found {
			posts[p.ID] = p
		}
	}

	rendered := make([]gin.H, len(notifications))
	for i, n := range notifications {
		doc := gin.H{
			"id":        n.ID.Hex(),
			"sender":    userRef(senders, n.Sender, true),
			"type":      n.Type,
			"read":      n.Read,
			"createdAt": n.CreatedAt,
		}
		if p, ok := posts[n.Post]; ok {
			doc["post"] = gin.H{
				"id":      p.ID.Hex(),
				"title":   p.Title,
				"content": p.Content,
			}
		} else {
			doc["post"] = nil
		}
		rendered[i] = doc
	}
	return rendered, nil
}
