package helpers

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// NewGCSClient creates a Google Cloud Storage client. If credsPath is empty, ADC is used.
func NewGCSClient(ctx context.Context, credsPath string) (*storage.Client, error) {
	if credsPath == "" {
		return storage.NewClient(ctx)
	}
	return storage.NewClient(ctx, option.WithCredentialsFile(credsPath))
}

// ImageCacheControl is set on uploaded images. Object names are unique, so they never change.
const ImageCacheControl = "public, max-age=31536000, immutable"

// UploadObject streams r into bucket/objectPath and returns the public URL.
// The object must not exist yet; a name collision fails instead of overwriting.
func UploadObject(ctx context.Context, client *storage.Client, bucket, objectPath, contentType string, r io.Reader) (string, error) {
	obj := client.Bucket(bucket).Object(objectPath).If(storage.Conditions{DoesNotExist: true})
	wc := obj.NewWriter(ctx)
	wc.ContentType = contentType
	wc.CacheControl = ImageCacheControl
	wc.ChunkSize = 0 // images are small; single request upload
	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		return "", fmt.Errorf("upload %s: %w", objectPath, err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("finalize %s: %w", objectPath, err)
	}
	return PublicURL(bucket, objectPath), nil
}

// ObjectPath builds a collision-free object name under prefix/owner keeping the file extension.
func ObjectPath(prefix, owner, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	owner = strings.NewReplacer("/", "_", "@", "_at_").Replace(strings.ToLower(owner))
	return path.Join(prefix, owner, uuid.NewString()+ext)
}

// PublicURL is the URL of an object in a publicly readable bucket.
func PublicURL(bucket, objectPath string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, objectPath)
}
