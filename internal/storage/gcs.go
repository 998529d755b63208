package storage

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSResultStore implements ResultStore with one Google Cloud Storage object
type GCSResultStore struct {
	client *storage.Client
	bucket string
	object string
}

// NewGCSResultStore creates a new GCSResultStore instance. Extra client
// options are appended after the credentials option.
func NewGCSResultStore(ctx context.Context, bucketName, objectName, credentialsFile string, opts ...option.ClientOption) (*GCSResultStore, error) {
	var clientOpts []option.ClientOption
	if credentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(credentialsFile))
	}
	// No credentials file means application default credentials
	clientOpts = append(clientOpts, opts...)

	client, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSResultStore{
		client: client,
		bucket: bucketName,
		object: strings.TrimPrefix(objectName, "/"),
	}, nil
}

// SaveResults overwrites the result object. GCS object writes are atomic:
// the new content only becomes visible once the writer is closed.
func (s *GCSResultStore) SaveResults(ctx context.Context, urls []string) error {
	wc := s.client.Bucket(s.bucket).Object(s.object).NewWriter(ctx)
	wc.ContentType = "text/plain; charset=utf-8"

	if _, err := wc.Write(FormatResults(urls)); err != nil {
		wc.Close()
		return fmt.Errorf("failed to write results to GCS: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return nil
}

// Close closes the GCS client
func (s *GCSResultStore) Close() error {
	return s.client.Close()
}
