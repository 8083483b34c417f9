package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser       = "user"
	RoleJournalist = "journalist"
)

type User struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email             string             `bson:"email" json:"email"`
	PasswordHash      string             `bson:"passwordHash" json:"-"`
	Name              string             `bson:"name" json:"name"`
	Role              string             `bson:"role" json:"role"`
	IsEmailVerified   bool               `bson:"isEmailVerified" json:"isEmailVerified"`
	VerificationToken string             `bson:"verificationToken,omitempty" json:"-"`
	JournalistInfo    *JournalistInfo    `bson:"journalistInfo,omitempty" json:"journalistInfo,omitempty"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// JournalistInfo is meaningful only when Role is journalist.
type JournalistInfo struct {
	MediaOutlet   string `bson:"mediaOutlet,omitempty" json:"mediaOutlet,omitempty"`
	Position      string `bson:"position,omitempty" json:"position,omitempty"`
	Experience    int    `bson:"experience,omitempty" json:"experience,omitempty"`
	Portfolio     string `bson:"portfolio,omitempty" json:"portfolio,omitempty"`
	PressID       string `bson:"pressId,omitempty" json:"pressId,omitempty"`
	Country       string `bson:"country,omitempty" json:"country,omitempty"`
	State         string `bson:"state,omitempty" json:"state,omitempty"`
	ContactNumber string `bson:"contactNumber,omitempty" json:"contactNumber,omitempty"`
}

// IsJournalist reports whether the user may author posts.
func (u *User) IsJournalist() bool {
	return u.Role == RoleJournalist
}

// PublicRef is the identity slice embedded in post and notification
// responses.
type PublicRef struct {
	ID   primitive.ObjectID `json:"id"`
	Name string             `json:"name"`
	Role string             `json:"role"`
}

func (u *User) Ref() PublicRef {
	return PublicRef{ID: u.ID, Name: u.Name, Role: u.Role}
}
