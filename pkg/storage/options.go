package storage

// Option configures Put operations.
type Option func(*putOptions)

type putOptions struct {
	contentType string
}

// WithContentType overrides the content type detected from the first bytes.
func WithContentType(ct string) Option {
	return func(o *putOptions) {
		o.contentType = ct
	}
}
