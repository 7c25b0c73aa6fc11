package s3

import (
	"bytes"
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/cockroachdb/errors"
	"github.com/guardpost/console/internal/config"
	ierr "github.com/guardpost/console/internal/errors"
	"github.com/guardpost/console/internal/logger"
)

const (
	defaultPresignExpiry = 30 * time.Minute
)

// Service archives sent invoice documents and hands out time limited links to them
type Service interface {
	UploadDocument(ctx context.Context, document *Document) error
	GetPresignedUrl(ctx context.Context, tenantID, invoiceID string) (*PresignedURL, error)
	Exists(ctx context.Context, tenantID, invoiceID string) (bool, error)
}

// PresignedURL is a download link and the moment it stops working
type PresignedURL struct {
	URL       string
	ExpiresAt time.Time
}

type s3ServiceImpl struct {
	client *s3.Client
	config *config.S3Config
	logger *logger.Logger
}

// NewService returns nil when the archive is disabled
func NewService(cfg *config.Configuration, logger *logger.Logger) (Service, error) {
	if !cfg.S3.Enabled {
		return nil, nil
	}

	awsCfg, err := config.LoadAwsConfig(context.Background(), &cfg.S3)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to load aws config").
			Mark(ierr.ErrSystem)
	}

	logger.Infow("invoice archive enabled",
		"bucket", cfg.S3.Bucket,
		"region", cfg.S3.Region,
	)

	return &s3ServiceImpl{
		client: s3.NewFromConfig(awsCfg),
		config: &cfg.S3,
		logger: logger,
	}, nil
}

func (s *s3ServiceImpl) getObjectKey(tenantID, invoiceID string) string {
	return ObjectKey(s.config.KeyPrefix, tenantID, invoiceID)
}

func (s *s3ServiceImpl) presignExpiry() time.Duration {
	if s.config.PresignExpiry <= 0 {
		return defaultPresignExpiry
	}
	return s.config.PresignExpiry
}

// Exists implements Service
func (s *s3ServiceImpl) Exists(ctx context.Context, tenantID, invoiceID string) (bool, error) {
	key := s.getObjectKey(tenantID, invoiceID)

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		var nf *types.NotFound
		if errors.As(err, &nsk) || errors.As(err, &nf) {
			return false, nil
		}
		return false, ierr.WithError(err).
			WithHint("The invoice archive is unavailable").
			WithReportableDetails(map[string]any{
				"bucket": s.config.Bucket,
				"key":    key,
			}).
			Mark(ierr.ErrHTTPClient)
	}

	return true, nil
}

// GetPresignedUrl implements Service
func (s *s3ServiceImpl) GetPresignedUrl(ctx context.Context, tenantID, invoiceID string) (*PresignedURL, error) {
	key := s.getObjectKey(tenantID, invoiceID)
	expiry := s.presignExpiry()

	presigner := s3.NewPresignClient(s.client)
	result, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to get presigned url").
			WithReportableDetails(map[string]any{
				"bucket": s.config.Bucket,
				"key":    key,
			}).
			Mark(ierr.ErrHTTPClient)
	}

	return &PresignedURL{
		URL:       result.URL,
		ExpiresAt: time.Now().UTC().Add(expiry),
	}, nil
}

// UploadDocument implements Service
func (s *s3ServiceImpl) UploadDocument(ctx context.Context, document *Document) error {
	key := s.getObjectKey(document.TenantID, document.InvoiceID)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(document.Data),
		ContentType: aws.String(document.Kind.ContentType()),
	})
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to upload document").
			WithReportableDetails(map[string]any{
				"bucket": s.config.Bucket,
				"key":    key,
			}).
			Mark(ierr.ErrHTTPClient)
	}

	s.logger.Debugw("archived invoice document", "key", key, "size", len(document.Data))
	return nil
}
