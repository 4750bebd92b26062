package filestore

// Provider identifies the object storage backend.
type Provider string

const (
	ProviderMinIO Provider = "minio"
)

// Config holds the settings for an object storage backend. Snapshots are
// the only thing dbscribe writes to it.
type Config struct {
	Provider Provider `yaml:"provider"`

	// Endpoint is host:port of the storage server, e.g. "localhost:9000".
	Endpoint string `yaml:"endpoint"`

	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`

	// Region is only needed by region-aware backends. Leave empty for MinIO.
	Region string `yaml:"region"`

	// DefaultBucket is used when a snapshot names no bucket.
	DefaultBucket string `yaml:"default_bucket"`
}

// DefaultConfig returns a local-dev MinIO config.
func DefaultConfig(endpoint, accessKey, secretKey string) *Config {
	return &Config{
		Provider:      ProviderMinIO,
		Endpoint:      endpoint,
		AccessKey:     accessKey,
		SecretKey:     secretKey,
		DefaultBucket: "dbscribe-snapshots",
	}
}
