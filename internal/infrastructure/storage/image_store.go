package storage

import (
	"context"
	"io"

	gcs "cloud.google.com/go/storage"

	"github.com/oksasatya/pixel-news/pkg/helpers"
)

// ImageStore uploads article images to a GCS bucket.
type ImageStore struct {
	Client *gcs.Client
	Bucket string
}

func NewImageStore(client *gcs.Client, bucket string) *ImageStore {
	return &ImageStore{Client: client, Bucket: bucket}
}

func (s *ImageStore) Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	return helpers.UploadObject(ctx, s.Client, s.Bucket, objectPath, contentType, r)
}
