package checkpoint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/google/uuid"

	"github.com/stockwatch/backend/internal/domain/watch"
	infraconfig "github.com/stockwatch/backend/internal/infrastructure/config"
)

// S3Store implements watch.CheckpointStore on S3-compatible object storage
// (AWS S3, MinIO, RustFS, etc.). Each checkpoint is one JSON object keyed by
// job ID; cycles for a job never overlap, so a plain PutObject replacement
// is sufficient.
type S3Store struct {
	client    *s3.Client
	bucket    string
	keyPrefix string
}

// NewS3Store creates a new object-storage-backed checkpoint store from
// configuration
func NewS3Store(cfg *infraconfig.StorageConfig) (*S3Store, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKey == "" {
		return nil, errors.New("storage access key is required")
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("storage secret key is required")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "http://localhost:9000"
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if cfg.UseSSL {
			endpoint = "https://" + endpoint
		} else {
			endpoint = "http://" + endpoint
		}
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("invalid storage endpoint: %w", err)
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"", // session token (not used for static credentials)
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		o.BaseEndpoint = aws.String(endpoint)
	})

	keyPrefix := cfg.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = "checkpoints/"
	}

	return &S3Store{
		client:    client,
		bucket:    cfg.Bucket,
		keyPrefix: keyPrefix,
	}, nil
}

// NewS3StoreWithClient creates a store with an existing S3 client (for testing)
func NewS3StoreWithClient(client *s3.Client, bucket, keyPrefix string) *S3Store {
	if keyPrefix == "" {
		keyPrefix = "checkpoints/"
	}
	return &S3Store{
		client:    client,
		bucket:    bucket,
		keyPrefix: keyPrefix,
	}
}

// EnsureBucket creates the bucket if it doesn't exist.
// Call this during application startup.
func (s *S3Store) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		// Ignore "BucketAlreadyOwnedByYou" error (race condition)
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

func (s *S3Store) objectKey(jobID uuid.UUID) string {
	return s.keyPrefix + jobID.String() + ".json"
}

// Load returns the stored checkpoint for a job, or a zero-value checkpoint
// when the object does not exist
func (s *S3Store) Load(ctx context.Context, jobID uuid.UUID) (watch.Checkpoint, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(jobID)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) || strings.Contains(err.Error(), "NoSuchKey") {
			return watch.Checkpoint{}, nil
		}
		return watch.Checkpoint{}, fmt.Errorf("failed to load checkpoint: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return watch.Checkpoint{}, fmt.Errorf("failed to read checkpoint object: %w", err)
	}

	var cp watch.Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return watch.Checkpoint{}, fmt.Errorf("failed to decode checkpoint: %w", err)
	}
	return cp, nil
}

// Save replaces the stored checkpoint object for a job
func (s *S3Store) Save(ctx context.Context, jobID uuid.UUID, cp watch.Checkpoint) error {
	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.objectKey(jobID)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

// Delete removes a job's checkpoint object
func (s *S3Store) Delete(ctx context.Context, jobID uuid.UUID) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(jobID)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	return nil
}

// Ensure S3Store implements CheckpointStore
var _ watch.CheckpointStore = (*S3Store)(nil)
