package media

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"communityevents/internal/domain"
)

// CloudinaryConfig holds credentials for the Cloudinary upload API.
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

func (c CloudinaryConfig) configured() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

type uploadAPI interface {
	Upload(ctx context.Context, file interface{}, uploadParams uploader.UploadParams) (*uploader.UploadResult, error)
}

type cloudinaryUploader struct {
	api    uploadAPI
	folder string
}

// NewImageUploader returns a Cloudinary backed uploader. Without credentials every
// upload fails with domain.ErrUnavailable.
func NewImageUploader(config CloudinaryConfig, logger *slog.Logger) (domain.ImageUploader, error) {
	if !config.configured() {
		logger.Warn("cloudinary credentials not set, image uploads are disabled")
		return disabledUploader{}, nil
	}
	cld, err := cloudinary.NewFromParams(config.CloudName, config.APIKey, config.APISecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary config: %w", err)
	}
	folder := config.Folder
	if folder == "" {
		folder = "events"
	}
	return &cloudinaryUploader{api: &cld.Upload, folder: folder}, nil
}

func (u *cloudinaryUploader) Upload(ctx context.Context, name string, image io.Reader) (string, error) {
	resp, err := u.api.Upload(ctx, image, uploader.UploadParams{
		Folder:   u.folder,
		PublicID: name,
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", resp.Error.Message)
	}
	if resp.SecureURL == "" {
		return "", fmt.Errorf("cloudinary upload: empty url in response")
	}
	return resp.SecureURL, nil
}

type disabledUploader struct{}

func (disabledUploader) Upload(context.Context, string, io.Reader) (string, error) {
	return "", domain.NewError(domain.ErrUnavailable, "image storage is not configured")
}
