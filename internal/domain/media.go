package domain

import (
	"context"
	"io"
)

// ImageUploader stores an image and returns its public URL.
// Implementations return ErrUnavailable when no storage is configured.
type ImageUploader interface {
	Upload(ctx context.Context, name string, image io.Reader) (url string, err error)
}
