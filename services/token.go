package services

import (
	"errors"
	"fmt"
	"time"

	"medialeader/config"
	"medialeader/models"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

const (
	sessionTokenTTL      = 7 * 24 * time.Hour
	verificationTokenTTL = time.Hour

	purposeVerifyEmail = "verify-email"
)

type TokenService struct {
	secret []byte
}

// SessionClaims assert an authenticated user's identity on every
// protected request. Email and role are rechecked against the stored
// record by the auth guard to catch stale tokens.
type SessionClaims struct {
	UserID          string `json:"_id"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	IsEmailVerified bool   `json:"isEmailVerified"`
	jwt.RegisteredClaims
}

// VerificationClaims prove control of an email address. Purpose keeps a
// verification token from being replayed as a session token.
type VerificationClaims struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

func NewTokenService(cfg *config.Config) *TokenService {
	return &TokenService{secret: []byte(cfg.JWT.Secret)}
}

func (s *TokenService) GenerateSessionToken(user *models.User) (string, error) {
	claims := SessionClaims{
		UserID:          user.ID.Hex(),
		Email:           user.Email,
		Role:            user.Role,
		IsEmailVerified: user.IsEmailVerified,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(sessionTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *TokenService) GenerateVerificationToken(email string) (string, error) {
	claims := VerificationClaims{
		Email:   email,
		Purpose: purposeVerifyEmail,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(verificationTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *TokenService) ParseSessionToken(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// ParseVerificationToken returns the email the token was issued for.
func (s *TokenService) ParseVerificationToken(tokenString string) (string, error) {
	claims := &VerificationClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return "", err
	}
	if claims.Purpose != purposeVerifyEmail {
		return "", ErrInvalidToken
	}
	return claims.Email, nil
}

func (s *TokenService) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
