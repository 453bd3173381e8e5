package report

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/minio/minio-go/v7"
)

// FileStore persists the raw report file and returns a fetchable URL.
type FileStore interface {
	Put(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) (string, error)
}

type minioStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMinioStore writes report files to a MinIO bucket. publicURL is the
// externally reachable base the bucket is served from; when empty, the
// client's endpoint URL is used.
func NewMinioStore(client *minio.Client, bucket, publicURL string) FileStore {
	if publicURL == "" {
		publicURL = client.EndpointURL().String()
	}
	return &minioStore{
		client:    client,
		bucket:    bucket,
		publicURL: publicURL,
	}
}

func (m *minioStore) Put(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) (string, error) {
	_, err := m.client.PutObject(ctx, m.bucket, objectName, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", objectName, err)
	}

	return fmt.Sprintf("%s/%s/%s", m.publicURL, m.bucket, url.PathEscape(objectName)), nil
}
