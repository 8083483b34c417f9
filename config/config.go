package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// LikePolicy controls what happens when a user likes a post they have
// already liked.
type LikePolicy string

const (
	// LikeStrict rejects a duplicate like with a conflict error.
	LikeStrict LikePolicy = "strict"
	// LikeLenient treats a duplicate like as a no-op.
	LikeLenient LikePolicy = "lenient"
)

type Config struct {
	Server     ServerConfig
	Mongo      MongoConfig
	JWT        JWTConfig
	SMTP       SMTPConfig
	Cloudinary CloudinaryConfig
	Posts      PostsConfig
}

type ServerConfig struct {
	Port        string
	FrontendURL string
	Env         string
}

type MongoConfig struct {
	URI      string
	Database string
}

type JWTConfig struct {
	Secret string
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

type CloudinaryConfig struct {
	URL string
}

type PostsConfig struct {
	LikePolicy LikePolicy
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file loaded, using environment variables")
	}

	return &Config{
		Server: ServerConfig{
			Port:        getEnvOrDefault("PORT", "8080"),
			FrontendURL: getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
			Env:         getEnvOrDefault("APP_ENV", "development"),
		},
		Mongo: MongoConfig{
			URI:      os.Getenv("MONGODB_URI"),
			Database: getEnvOrDefault("MONGODB_DATABASE", "medialeader"),
		},
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
		},
		SMTP: SMTPConfig{
			Host:     getEnvOrDefault("SMTP_HOST", "smtp.gmail.com"),
			Port:     getEnvOrDefault("SMTP_PORT", "587"),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("EMAIL_FROM"),
		},
		Cloudinary: CloudinaryConfig{
			URL: os.Getenv("CLOUDINARY_URL"),
		},
		Posts: PostsConfig{
			LikePolicy: parseLikePolicy(os.Getenv("LIKE_POLICY")),
		},
	}
}

// IsProduction reports whether the app runs in production mode. Error
// responses include stack details only outside production.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

func parseLikePolicy(v string) LikePolicy {
	switch v {
	case string(LikeLenient):
		return LikeLenient
	case string(LikeStrict), "":
		return LikeStrict
	default:
		log.Printf("Unknown LIKE_POLICY %q, defaulting to strict", v)
		return LikeStrict
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
