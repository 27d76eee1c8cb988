package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryStore uploads media to Cloudinary. Used in production where
// homestay photos and verification documents must survive node restarts.
type CloudinaryStore struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryStore builds a store from Cloudinary account credentials.
func NewCloudinaryStore(cloudName, apiKey, apiSecret string) (*CloudinaryStore, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, errors.New("storage: cloudinary credentials are required")
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("storage: initialize cloudinary: %w", err)
	}
	return &CloudinaryStore{cld: cld}, nil
}

// Upload sends the content to Cloudinary and returns its secure URL.
func (s *CloudinaryStore) Upload(ctx context.Context, folder, filename string, content io.Reader) (*Object, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, fmt.Errorf("storage: read upload: %w", err)
	}

	result, err := s.cld.Upload.Upload(ctx, data, uploader.UploadParams{
		Folder:       sanitizeFolder(folder),
		ResourceType: "auto",
	})
	if err != nil {
		return nil, fmt.Errorf("storage: upload to cloudinary: %w", err)
	}
	if result.Error.Message != "" {
		return nil, fmt.Errorf("storage: upload to cloudinary: %s", result.Error.Message)
	}

	return &Object{Key: result.PublicID, URL: result.SecureURL, Size: int64(len(data))}, nil
}

// Delete destroys the asset identified by its public ID.
func (s *CloudinaryStore) Delete(ctx context.Context, key string) error {
	result, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: key})
	if err != nil {
		return fmt.Errorf("storage: destroy cloudinary asset: %w", err)
	}
	if result.Result == "not found" {
		return ErrNotFound
	}
	return nil
}
