package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// presigned PUT URLs stay valid this long
const uploadURLTTL = time.Hour

// ObjectStore issues presigned upload URLs and public URLs for stored
// objects.
type ObjectStore interface {
	PresignUpload(ctx context.Context, key, contentType string) (string, error)
	PublicURL(key string) string
}

// R2Store talks to a Cloudflare R2 bucket over the S3 API.
type R2Store struct {
	presigner *s3.PresignClient
	bucket    string
	publicURL string
}

func NewR2Store(ctx context.Context, endpoint, bucket, accessKey, secretKey, publicURL string) (*R2Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &R2Store{
		presigner: s3.NewPresignClient(client),
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// PresignUpload returns a URL the browser can PUT the file to directly, so
// image bytes never pass through this service.
func (s *R2Store) PresignUpload(ctx context.Context, key, contentType string) (string, error) {
	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(uploadURLTTL))
	if err != nil {
		return "", fmt.Errorf("failed to presign upload for %s: %w", key, err)
	}
	return req.URL, nil
}

func (s *R2Store) PublicURL(key string) string {
	return s.publicURL + "/" + key
}
