package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// ImageRef identifies an uploaded reference image.
type ImageRef struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// ImageStore persists client reference images and returns stable ids.
type ImageStore interface {
	Upload(ctx context.Context, filename string, r io.Reader) (ImageRef, error)
}

var ErrNotConfigured = errors.New("image storage is not configured")

type imageUploader interface {
	Upload(ctx context.Context, file interface{}, uploadParams uploader.UploadParams) (*uploader.UploadResult, error)
}

type CloudinaryStore struct {
	upload imageUploader
	folder string
}

func NewCloudinaryStore(cloudName, apiKey, apiSecret, folder string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return &CloudinaryStore{upload: &cld.Upload, folder: folder}, nil
}

// Upload stores the image under a generated public id in the configured
// folder.
func (s *CloudinaryStore) Upload(ctx context.Context, filename string, r io.Reader) (ImageRef, error) {
	base := strings.TrimSuffix(path.Base(filename), path.Ext(filename))
	publicID := uuid.NewString()
	if base != "" && base != "." && base != "/" {
		publicID = sanitize(base) + "-" + publicID
	}

	result, err := s.upload.Upload(ctx, r, uploader.UploadParams{
		Folder:   s.folder,
		PublicID: publicID,
	})
	if err != nil {
		return ImageRef{}, fmt.Errorf("cloudinary upload: %w", err)
	}
	if result.Error.Message != "" {
		return ImageRef{}, fmt.Errorf("cloudinary upload: %s", result.Error.Message)
	}
	if result.PublicID == "" {
		return ImageRef{}, errors.New("cloudinary upload: no public ID returned")
	}
	return ImageRef{ID: result.PublicID, URL: result.SecureURL}, nil
}

func sanitize(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return b.String()
}

// Unconfigured rejects every upload. It stands in when no credentials are set.
type Unconfigured struct{}

func (Unconfigured) Upload(context.Context, string, io.Reader) (ImageRef, error) {
	return ImageRef{}, ErrNotConfigured
}
