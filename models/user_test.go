package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The password hash and verification token must never reach clients,
// whatever shape the user document takes in a response.
func TestUserSerializationHidesSecrets(t *testing.T) {
	user := User{
		ID:                primitive.NewObjectID(),
		Email:             "reporter@example.com",
		PasswordHash:      "$2a$10$abcdef",
		Name:              "Reporter",
		Role:              RoleJournalist,
		VerificationToken: "some.jwt.token",
		JournalistInfo:    &JournalistInfo{MediaOutlet: "Daily Planet"},
	}

	raw, err := json.Marshal(user)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))

	assert.NotContains(t, out, "passwordHash")
	assert.NotContains(t, out, "verificationToken")
	assert.NotContains(t, string(raw), "$2a$10$abcdef")
	assert.NotContains(t, string(raw), "some.jwt.token")

	assert.Equal(t, "reporter@example.com", out["email"])
	assert.Equal(t, RoleJournalist, out["role"])
}

func TestPostSerializationHidesStorageID(t *testing.T) {
	post := Post{
		ID:            primitive.NewObjectID(),
		Title:         "Headline",
		Image:         "https://res.cloudinary.com/demo/image.jpg",
		ImagePublicID: "media-leaderboard/xyz",
	}

	raw, err := json.Marshal(post)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "media-leaderboard/xyz")
}
