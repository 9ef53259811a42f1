package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	aws_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"homepath/api/internal/config"
)

// ErrUnsupportedContentType is returned for attachment types offers do not accept.
var ErrUnsupportedContentType = errors.New("unsupported content type")

// AllowedContentTypes are the attachment types accepted on offers.
var AllowedContentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
}

// IS3Storage defines the interface for S3 operations.
type IS3Storage interface {
	PresignAttachmentUpload(ctx context.Context, offerID, filename, contentType string) (url, key string, err error)
	PresignAttachmentDownload(ctx context.Context, key string) (string, error)
}

// Presigner is the slice of the S3 presign client the storage uses.
type Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// s3Storage implements IS3Storage.
type s3Storage struct {
	cfg       *config.Config
	presigner Presigner
	logger    *zap.Logger
}

// LoadAWSConfig builds the AWS config shared by S3, SES and SNS. Static keys
// are used when configured; otherwise the default credential chain applies.
func LoadAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	opts := []func(*aws_config.LoadOptions) error{aws_config.WithRegion(cfg.AwsRegion)}
	if cfg.AwsAccessKeyID != "" {
		opts = append(opts, aws_config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AwsAccessKeyID,
			cfg.AwsSecretAccessKey,
			"",
		)))
	}
	awsCfg, err := aws_config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return awsCfg, nil
}

// NewS3Storage creates a new S3 storage service from an AWS config.
func NewS3Storage(cfg *config.Config, awsCfg aws.Config, logger *zap.Logger) IS3Storage {
	return NewS3StorageWithPresigner(cfg, s3.NewPresignClient(s3.NewFromConfig(awsCfg)), logger)
}

// NewS3StorageWithPresigner creates a storage service around an existing presigner.
func NewS3StorageWithPresigner(cfg *config.Config, presigner Presigner, logger *zap.Logger) IS3Storage {
	return &s3Storage{cfg: cfg, presigner: presigner, logger: logger.Named("s3")}
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeFilename strips directories and characters that do not belong in an object key.
func SanitizeFilename(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	base = unsafeFilenameChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if base == "" {
		return "attachment"
	}
	return base
}

// PresignAttachmentUpload creates a pre-signed PUT URL for an offer attachment.
// It returns the URL and the generated object key.
func (s *s3Storage) PresignAttachmentUpload(ctx context.Context, offerID, filename, contentType string) (string, string, error) {
	if !AllowedContentTypes[contentType] {
		return "", "", ErrUnsupportedContentType
	}
	objectKey := fmt.Sprintf("offers/%s/%s_%s", offerID, uuid.NewString(), SanitizeFilename(filename))

	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.AwsS3Bucket),
		Key:         aws.String(objectKey),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(s.cfg.AttachmentURLTTL))
	if err != nil {
		return "", "", fmt.Errorf("failed to generate presigned PUT URL for key %s: %w", objectKey, err)
	}

	s.logger.Debug("presigned attachment upload", zap.String("key", objectKey))
	return req.URL, objectKey, nil
}

// PresignAttachmentDownload creates a pre-signed GET URL for a stored attachment.
func (s *s3Storage) PresignAttachmentDownload(ctx context.Context, key string) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.AwsS3Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.cfg.AttachmentURLTTL))
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned GET URL for key %s: %w", key, err)
	}
	return req.URL, nil
}
