package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"medialeader/config"
	"medialeader/database"
	"medialeader/models"
	"medialeader/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	cfg    *config.Config
	tokens *services.TokenService
	mailer services.Mailer
}

func NewAuthHandler(cfg *config.Config, tokens *services.TokenService, mailer services.Mailer) *AuthHandler {
	return &AuthHandler{cfg: cfg, tokens: tokens, mailer: mailer}
}

type SignupRequest struct {
	Name           string                 `json:"name" binding:"required"`
	Email          string                 `json:"email" binding:"required,email"`
	Password       string                 `json:"password" binding:"required,min=8"`
	Role           string                 `json:"role" binding:"omitempty,oneof=user journalist"`
	JournalistInfo *models.JournalistInfo `json:"journalistInfo"`
}

type VerifyEmailRequest struct {
	Token string `json:"token" binding:"required"`
}

type ResendVerificationRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := dbContext()
	defer cancel()

	var existing models.User
	err := database.Users.FindOne(ctx, bson.M{"email": email}).Decode(&existing)
	if err == nil {
		respondError(c, http.StatusConflict, "Email already registered")
		return
	}
	if err != mongo.ErrNoDocuments {
		respondError(c, http.StatusInternalServerError, "Database error")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Error creating account")
		return
	}

	verificationToken, err := h.tokens.GenerateVerificationToken(email)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Error creating account")
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}

	now := time.Now()
	user := models.User{
		ID:                primitive.NewObjectID(),
		Email:             email,
		PasswordHash:      string(hashed),
		Name:              req.Name,
		Role:              role,
		IsEmailVerified:   false,
		VerificationToken: verificationToken,
		JournalistInfo:    req.JournalistInfo,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if user.Role != models.RoleJournalist {
		user.JournalistInfo = nil
	}

	if _, err := database.Users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			respondError(c, http.StatusConflict, "Email already registered")
			return
		}
		respondError(c, http.StatusInternalServerError, "Error creating account")
		return
	}

	if err := h.sendVerification(&user, verificationToken); err != nil {
		log.Printf("Signup: verification email to %s not sent: %v", email, err)
		respondMessage(c, http.StatusCreated,
			"Account created, but the verification email could not be sent. Please request a new one.")
		return
	}

	respondMessage(c, http.StatusCreated, "Verification email sent. Please check your inbox.")
}

func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	email, err := h.tokens.ParseVerificationToken(req.Token)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid or expired verification link")
		return
	}

	ctx, cancel := dbContext()
	defer cancel()

	// The token must also match the one stored for the user, so a
	// re-issued token invalidates its predecessors.
	var user models.User
	err = database.Users.FindOne(ctx, bson.M{
		"email":             email,
		"verificationToken": req.Token,
	}).Decode(&user)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid or expired verification link")
		return
	}

	_, err = database.Users.UpdateByID(ctx, user.ID, bson.M{
		"$set":   bson.M{"isEmailVerified": true, "updatedAt": time.Now()},
		"$unset": bson.M{"verificationToken": ""},
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Error verifying email")
		return
	}
	user.IsEmailVerified = true

	sessionToken, err := h.tokens.GenerateSessionToken(&user)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Error verifying email")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"token": sessionToken,
		"user": gin.H{
			"id":    user.ID.Hex(),
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req ResendVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := dbContext()
	defer cancel()

	var user models.User
	err := database.Users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		respondError(c, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Database error")
		return
	}

	if user.IsEmailVerified {
		respondError(c, http.StatusBadRequest, "Email already verified")
		return
	}

	verificationToken, err := h.tokens.GenerateVerificationToken(email)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Error generating verification token")
		return
	}

	_, err = database.Users.UpdateByID(ctx, user.ID, bson.M{
		"$set": bson.M{"verificationToken": verificationToken, "updatedAt": time.Now()},
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Database error")
		return
	}

	if err := h.sendVerification(&user, verificationToken); err != nil {
		log.Printf("ResendVerification: email to %s not sent: %v", email, err)
		respondError(c, http.StatusInternalServerError, "Could not send verification email")
		return
	}

	respondMessage(c, http.StatusOK, "New verification email sent successfully")
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := dbContext()
	defer cancel()

	var user models.User
	err := database.Users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		respondError(c, http.StatusUnauthorized, "Incorrect email or password")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Database error")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		respondError(c, http.StatusUnauthorized, "Incorrect email or password")
		return
	}

	if !user.IsEmailVerified {
		respondError(c, http.StatusUnauthorized, "Please verify your email first")
		return
	}

	token, err := h.tokens.GenerateSessionToken(&user)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Error logging in")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

func (h *AuthHandler) sendVerification(user *models.User, token string) error {
	link := fmt.Sprintf("%s/verify-email?token=%s", h.cfg.Server.FrontendURL, token)
	return h.mailer.SendVerificationEmail(user.Email, user.Name, link)
}
