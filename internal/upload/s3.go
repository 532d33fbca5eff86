// Package upload stores payment proof images in S3 and returns their URL.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/iliyamo/atelier-booking/internal/config"
)

// MaxFileBytes is the largest accepted proof image.
const MaxFileBytes = 5 << 20

// ErrTooLarge is returned for files above MaxFileBytes.
var ErrTooLarge = errors.New("file too large")

// ErrUnsupportedType is returned for anything that is not an image.
var ErrUnsupportedType = errors.New("unsupported file type")

// File is an uploaded file as received from the client.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// PutObjectAPI is the part of *s3.Client the uploader needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader writes files under a bucket and builds their public URL.
type S3Uploader struct {
	client  PutObjectAPI
	bucket  string
	baseURL string
}

// NewS3Uploader loads the default AWS configuration for the configured
// region.  It returns nil, nil when no bucket is configured.
func NewS3Uploader(ctx context.Context, cfg config.UploadConfig) (*S3Uploader, error) {
	if cfg.Bucket == "" {
		return nil, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3UploaderWithClient(client, cfg.Bucket, publicBase(cfg)), nil
}

// NewS3UploaderWithClient wires an uploader around an existing client.
func NewS3UploaderWithClient(c PutObjectAPI, bucket, baseURL string) *S3Uploader {
	return &S3Uploader{client: c, bucket: bucket, baseURL: strings.TrimRight(baseURL, "/")}
}

func publicBase(cfg config.UploadConfig) string {
	switch {
	case cfg.PublicBaseURL != "":
		return cfg.PublicBaseURL
	case cfg.Endpoint != "":
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
}

// Upload stores f under folder and returns its URL.
func (u *S3Uploader) Upload(ctx context.Context, f File, folder string) (string, error) {
	if f.Size > MaxFileBytes {
		return "", ErrTooLarge
	}
	if !strings.HasPrefix(f.ContentType, "image/") {
		return "", ErrUnsupportedType
	}
	key := path.Join(folder, uuid.NewString()+strings.ToLower(path.Ext(f.Name)))
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          f.Body,
		ContentType:   aws.String(f.ContentType),
		ContentLength: aws.Int64(f.Size),
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return u.baseURL + "/" + (&url.URL{Path: key}).EscapedPath(), nil
}
