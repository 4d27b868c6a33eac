package config

import "strings"

// StorageConfig configures the S3-compatible bucket holding product images.
// An empty Endpoint disables uploads.
type StorageConfig struct {
	Endpoint  string `env:"ENDPOINT"`
	AccessKey string `env:"ACCESS_KEY"`
	SecretKey string `env:"SECRET_KEY"`
	Bucket    string `env:"BUCKET"     envDefault:"jersey-images"`
	Region    string `env:"REGION"     envDefault:"us-east-1"`
	UseSSL    bool   `env:"USE_SSL"    envDefault:"false"`
	// PublicURL is the base URL objects are served from.
	PublicURL string `env:"PUBLIC_URL"`
}

// Enabled reports whether an object store is configured.
func (s StorageConfig) Enabled() bool { return s.Endpoint != "" }

// Sanitize trims values and restores the default bucket.
func (s *StorageConfig) Sanitize() {
	s.Endpoint = strings.TrimSpace(s.Endpoint)
	s.PublicURL = strings.TrimRight(strings.TrimSpace(s.PublicURL), "/")
	if s.Bucket = strings.TrimSpace(s.Bucket); s.Bucket == "" {
		s.Bucket = "jersey-images"
	}
}
