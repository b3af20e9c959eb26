package storage

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Storage implements Storage using S3-compatible object storage.
type S3Storage struct {
	client *s3.Client
	cfg    Config
}

// New creates an S3Storage with static credentials from cfg.
func New(cfg Config) (*S3Storage, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	opts := []func(*s3.Options){
		func(o *s3.Options) {
			o.Region = cfg.Region
			o.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
		},
	}

	if cfg.Endpoint != "" {
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.PathStyle
		})
	}

	return &S3Storage{
		client: s3.New(s3.Options{}, opts...),
		cfg:    cfg,
	}, nil
}

// Put uploads r under key.
func (s *S3Storage) Put(ctx context.Context, key string, r io.Reader, size int64, opts ...Option) (*ObjectInfo, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	o := &putOptions{}
	for _, opt := range opts {
		opt(o)
	}

	body, contentType, size, err := prepareBody(r, size, o.contentType)
	if err != nil {
		return nil, err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return nil, wrapS3Error(err, ErrUploadFailed)
	}

	return &ObjectInfo{Key: key, ContentType: contentType, Size: size}, nil
}

// Get streams the object body.
func (s *S3Storage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, wrapS3Error(err, ErrNotFound)
	}
	return out.Body, nil
}

// Delete removes the object. S3 reports success for missing keys.
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return wrapS3Error(err, ErrDeleteFailed)
	}
	return nil
}

// Healthcheck verifies the bucket is reachable with the configured credentials.
func (s *S3Storage) Healthcheck() func(ctx context.Context) error {
	return func(ctx context.Context) error {
		_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.cfg.Bucket)})
		if err != nil {
			return wrapS3Error(err, ErrAccessDenied)
		}
		return nil
	}
}

var _ Storage = (*S3Storage)(nil)
