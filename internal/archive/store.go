package archive

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectPutter is the part of *s3.Client the store uses.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Config describes the bucket raw feeds are archived to. Endpoint and
// PathStyle target MinIO and other S3-compatible stores.
type Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	PathStyle bool
}

// Store keeps a copy of every feed that was imported.
type Store struct {
	client ObjectPutter
	bucket string
	now    func() time.Time
}

// New builds an S3 store from the default credential chain. It returns nil,
// nil when no bucket is configured.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		log.Println("ℹ️  FEED_ARCHIVE_BUCKET not set, raw feeds will not be archived")
		return nil, nil
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	log.Printf("✅ Feed archive ready (bucket=%s)", cfg.Bucket)
	return NewWithClient(client, cfg.Bucket), nil
}

func NewWithClient(client ObjectPutter, bucket string) *Store {
	return &Store{client: client, bucket: bucket, now: time.Now}
}

// Key is the object key of a run's raw feed: feeds/<yyyy>/<run-id>.<ext>.
func Key(at time.Time, runID, contentType string) string {
	return fmt.Sprintf("feeds/%04d/%s.%s", at.Year(), runID, extension(contentType))
}

// Put uploads body and returns its object key. A nil store is a no-op.
func (s *Store) Put(ctx context.Context, runID, contentType string, body []byte) (string, error) {
	if s == nil || len(body) == 0 {
		return "", nil
	}
	key := Key(s.now(), runID, contentType)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
		Metadata:    map[string]string{"run-id": runID},
	})
	if err != nil {
		return "", fmt.Errorf("archive %s: %w", key, err)
	}
	return key, nil
}

func extension(contentType string) string {
	switch contentType {
	case "application/json":
		return "json"
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return "xlsx"
	}
	return "bin"
}
