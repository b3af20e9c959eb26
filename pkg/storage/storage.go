package storage

import (
	"context"
	"io"
)

// Storage is a flat key/object store. Keys are chosen by the caller.
type Storage interface {
	// Put writes the object under key, replacing any previous object.
	// A negative size means unknown; the implementation measures the body.
	Put(ctx context.Context, key string, r io.Reader, size int64, opts ...Option) (*ObjectInfo, error)

	// Get returns a reader for the object. The caller must close it.
	// Returns ErrNotFound if the key does not exist.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Config holds S3-compatible storage configuration.
type Config struct {
	// Bucket is the S3 bucket name (required).
	Bucket string `env:"STORAGE_BUCKET" yaml:"bucket"`

	// AccessKey is the AWS access key ID (required).
	AccessKey string `env:"STORAGE_ACCESS_KEY" yaml:"access_key"`

	// SecretKey is the AWS secret access key (required).
	SecretKey string `env:"STORAGE_SECRET_KEY" yaml:"secret_key"`

	// Endpoint is the custom S3 endpoint URL (MinIO or other S3-compatible services).
	Endpoint string `env:"STORAGE_ENDPOINT" yaml:"endpoint"`

	// Region is the AWS region (default: us-east-1).
	Region string `env:"STORAGE_REGION" envDefault:"us-east-1" yaml:"region"`

	// PathStyle enables path-style URLs (required for MinIO).
	PathStyle bool `env:"STORAGE_PATH_STYLE" yaml:"path_style"`
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key         string
	ContentType string
	Size        int64
}

// DefaultRegion is used when Config.Region is empty.
const DefaultRegion = "us-east-1"

func (c *Config) applyDefaults() {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
}

func (c *Config) validate() error {
	if c.Bucket == "" || c.AccessKey == "" || c.SecretKey == "" {
		return ErrInvalidConfig
	}
	return nil
}
