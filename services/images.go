package services

import (
	"context"
	"errors"
	"io"
	"time"

	"medialeader/config"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

var (
	ErrUploadTimeout = errors.New("image upload timed out")
	ErrUploadFailed  = errors.New("image upload failed")
)

const (
	uploadFolder  = "media-leaderboard"
	uploadTimeout = 30 * time.Second

	// Resize to 1200x800 with fill crop and automatic quality.
	uploadTransformation = "w_1200,h_800,c_fill/q_auto"
)

type UploadedImage struct {
	URL      string
	PublicID string
}

// ImageStore is the external image host consumed by the post handlers.
type ImageStore interface {
	Upload(ctx context.Context, file io.Reader) (*UploadedImage, error)
	Destroy(ctx context.Context, publicID string) error
}

type CloudinaryStore struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryStore(cfg *config.Config) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromURL(cfg.Cloudinary.URL)
	if err != nil {
		return nil, err
	}
	return &CloudinaryStore{cld: cld}, nil
}

func (s *CloudinaryStore) Upload(ctx context.Context, file io.Reader) (*UploadedImage, error) {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	result, err := s.cld.Upload.Upload(ctx, file, newUploadParams())
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrUploadTimeout
		}
		return nil, errors.Join(ErrUploadFailed, err)
	}
	if result.SecureURL == "" {
		return nil, ErrUploadFailed
	}

	return &UploadedImage{URL: result.SecureURL, PublicID: result.PublicID}, nil
}

func (s *CloudinaryStore) Destroy(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	return err
}

func newUploadParams() uploader.UploadParams {
	return uploader.UploadParams{
		Folder:         uploadFolder,
		PublicID:       uuid.NewString(),
		Transformation: uploadTransformation,
	}
}
