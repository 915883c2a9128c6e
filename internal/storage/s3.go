package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dicoevent/dicoevent/internal/domain/poster"
)

// FolderPosters is the bucket prefix for poster objects.
const FolderPosters = "posters"

type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	PosterURLTTL    time.Duration
}

// PosterStore uploads poster images and hands out short-lived signed GET
// URLs; the bucket stays private.
type PosterStore struct {
	client   *s3.Client
	uploader *manager.Uploader
	cfg      S3Config
	logger   *slog.Logger
}

func NewPosterStore(ctx context.Context, cfg S3Config, logger *slog.Logger) (*PosterStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID, cfg.SecretAccessKey, "",
		)))
	} else {
		logger.Warn("s3 poster store using default credential chain")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)

	return &PosterStore{
		client:   client,
		uploader: manager.NewUploader(client),
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// PosterKey returns the object key: posters/{event_id}/{poster_id}{ext}.
func PosterKey(eventID, posterID, contentType string) string {
	return path.Join(FolderPosters, eventID, posterID+poster.AllowedTypes[contentType])
}

func (s *PosterStore) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	var sizePtr *int64
	if size > 0 {
		sizePtr = &size
	}

	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: sizePtr,
	})
	if err != nil {
		return fmt.Errorf("upload poster: %w", err)
	}
	return nil
}

// SignedURL returns a pre-signed GET URL for a stored poster.
func (s *PosterStore) SignedURL(ctx context.Context, key string) (string, error) {
	presignClient := s3.NewPresignClient(s.client)

	req, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = s.urlTTL()
	})
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}
	return req.URL, nil
}

func (s *PosterStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete poster: %w", err)
	}
	return nil
}

func (s *PosterStore) urlTTL() time.Duration {
	if s.cfg.PosterURLTTL <= 0 {
		return 15 * time.Minute
	}
	return s.cfg.PosterURLTTL
}
