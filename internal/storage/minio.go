package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Store wraps the MinIO client for the receipt bucket and the result bucket.
type Store struct {
	client       *minio.Client
	Bucket       string
	ResultBucket string
}

// NewFromEnv creates a Store from MINIO_* environment variables and verifies
// the receipt bucket exists.
func NewFromEnv() (*Store, error) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		endpoint = "minio:9000"
	}

	accessKey := os.Getenv("MINIO_ACCESS_KEY")
	if accessKey == "" {
		accessKey = "receipts-backend"
	}

	secretKey := os.Getenv("MINIO_SECRET_KEY")
	if secretKey == "" {
		return nil, fmt.Errorf("MINIO_SECRET_KEY is not set")
	}

	bucket := os.Getenv("MINIO_BUCKET")
	if bucket == "" {
		bucket = "receipts"
	}

	resultBucket := os.Getenv("MINIO_RESULT_BUCKET")
	if resultBucket == "" {
		resultBucket = "result-receipts"
	}

	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist", bucket)
	}

	return &Store{client: client, Bucket: bucket, ResultBucket: resultBucket}, nil
}

// List enumerates all object keys in the receipt bucket.
func (s *Store) List(ctx context.Context) ([]string, error) {
	var keys []string
	for obj := range s.client.ListObjects(ctx, s.Bucket, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list bucket %s: %w", s.Bucket, obj.Err)
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

// Get fetches the raw bytes of one object.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.Bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", key, err)
	}
	return data, nil
}

// Upload stores an uploaded receipt under its original filename.
func (s *Store) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.Bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

// ResultKey names the mirrored result object for one (document, strategy)
// pair. The strategy is part of the key: several strategies finish the same
// document within the same second, and a timestamp-only key would overwrite
// all but the last of them.
func ResultKey(t time.Time, strategy, key string) string {
	return fmt.Sprintf("results/%s_%s_%s.json", t.UTC().Format("20060102150405"), strategy, key)
}

// PutResult writes a serialized extraction result to the result bucket under
// results/<timestamp>_<strategy>_<key>.json.
func (s *Store) PutResult(ctx context.Context, strategy, key string, data []byte) (string, error) {
	resultKey := ResultKey(time.Now(), strategy, key)

	_, err := s.client.PutObject(ctx, s.ResultBucket, resultKey, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("failed to write result %s: %w", resultKey, err)
	}
	return resultKey, nil
}

// ContentTypeExtension maps a content type to a file extension for uploads
// that arrive without one.
func ContentTypeExtension(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	default:
		return ".bin"
	}
}
