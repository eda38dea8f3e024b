package postgres

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/platinummonkey/schema-registry/pkg/storage"
	"encoding/json"
)

// S3Store persists a Snapshot as a single object in an S3-compatible bucket.
// Grounded on the teacher's S3Client, folded from content-addressable
// proto-file storage down to one well-known key since a Snapshot already is
// the whole state graph.
type S3Store struct {
	client *s3.Client
	bucket string
	key    string
}

const defaultSnapshotKey = "snapshot.json"

// NewS3Store creates an S3-backed SnapshotStore, creating the bucket if it
// does not already exist (useful for local MinIO development).
func NewS3Store(cfg storage.Config) (*S3Store, error) {
	ctx := context.Background()

	var awsConfig aws.Config
	var err error
	if cfg.S3AccessKey != "" && cfg.S3SecretKey != "" {
		awsConfig, err = config.LoadDefaultConfig(ctx,
			config.WithRegion(cfg.S3Region),
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				cfg.S3AccessKey, cfg.S3SecretKey, "",
			)),
		)
	} else {
		awsConfig, err = config.LoadDefaultConfig(ctx, config.WithRegion(cfg.S3Region))
	}
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
		if cfg.S3UsePathStyle {
			o.UsePathStyle = true
		}
	})

	if err := ensureBucket(ctx, client, cfg.S3Bucket, cfg.S3Region); err != nil {
		return nil, fmt.Errorf("ensure bucket exists: %w", err)
	}

	key := cfg.S3Key
	if key == "" {
		key = defaultSnapshotKey
	}
	return &S3Store{client: client, bucket: cfg.S3Bucket, key: key}, nil
}

// Save uploads snap as the snapshot object, overwriting any prior version.
func (s *S3Store) Save(ctx context.Context, snap *storage.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("upload snapshot to s3: %w", err)
	}
	return nil
}

// Load downloads and decodes the snapshot object; a missing object is an
// empty snapshot, not an error, since a fresh registry has nothing to
// restore.
func (s *S3Store) Load(ctx context.Context) (*storage.Snapshot, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if isNoSuchKey(err, nsk) {
			return &storage.Snapshot{NextID: 1}, nil
		}
		return nil, fmt.Errorf("download snapshot from s3: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("read snapshot body: %w", err)
	}
	var snap storage.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// HealthCheck verifies the bucket is reachable.
func (s *S3Store) HealthCheck(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		return fmt.Errorf("s3 health check failed: %w", err)
	}
	return nil
}

func ensureBucket(ctx context.Context, client *s3.Client, bucket, region string) error {
	_, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)})
	if err == nil {
		return nil
	}
	_, err = client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucket)})
	if err != nil && !containsString(err.Error(), "BucketAlreadyExists") && !containsString(err.Error(), "BucketAlreadyOwnedByYou") {
		return fmt.Errorf("create bucket: %w", err)
	}
	return nil
}

func isNoSuchKey(err error, target *types.NoSuchKey) bool {
	return err != nil && (containsString(err.Error(), "NoSuchKey") || containsString(err.Error(), "NotFound"))
}

func containsString(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
