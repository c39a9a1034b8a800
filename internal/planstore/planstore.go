// Package planstore defines the unified interface for archiving
// migration plans in object storage.
//
// All providers (MinIO, S3-compatible services, …) implement the Store
// interface. Callers depend only on this package, never on a specific
// provider package.
//
// Usage:
//
//	cfg := planstore.DefaultConfig("localhost:9000", "minioadmin", "minioadmin")
//	store, err := minio.New(ctx, cfg)
//	if err != nil { ... }
//	defer store.Close()
//
//	info, err := store.PutPlan(ctx, "plans", "2026/08/users.yaml", doc)
package planstore

import (
	"context"
	"time"

	"github.com/koustreak/datmig/internal/plan"
)

// ContentType is the MIME type plan documents are stored under.
const ContentType = "application/yaml"

// Store is the single interface all plan archive providers must
// implement.
type Store interface {
	// Ping verifies the storage backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any held resources (connections, goroutines, etc.).
	Close() error

	// EnsureBucket creates the bucket if it does not exist yet.
	EnsureBucket(ctx context.Context, bucket string) error

	// PutPlan serializes the document and stores it at key inside
	// bucket, overwriting any previous version.
	PutPlan(ctx context.Context, bucket, key string, doc *plan.Document) (*PlanInfo, error)

	// GetPlan fetches and parses the document at key inside bucket.
	// Documents that fail validation surface as invalid-input errors.
	GetPlan(ctx context.Context, bucket, key string) (*plan.Document, error)

	// StatPlan returns metadata for the plan at key inside bucket
	// without downloading its content.
	StatPlan(ctx context.Context, bucket, key string) (*PlanInfo, error)

	// ListPlans returns the plans in bucket whose key starts with
	// prefix. Use "" to list the whole archive.
	ListPlans(ctx context.Context, bucket, prefix string) ([]PlanInfo, error)

	// PresignGetURL returns a time-limited URL that allows anyone to
	// download the plan at key inside bucket without credentials.
	PresignGetURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
}

// PlanInfo describes a single archived plan.
type PlanInfo struct {
	// Key is the full object path within the bucket (e.g. "2026/08/users.yaml").
	Key string

	// Size is the byte size of the serialized document. -1 if unknown.
	Size int64

	// ETag is the object's entity tag / hash, as returned by the backend.
	ETag string

	// StoredAt is when the plan was last written.
	// May be zero if the backend does not expose it.
	StoredAt time.Time
}

// Provider identifies the archive backend.
type Provider string

const (
	ProviderMinIO Provider = "minio"
)

// Config holds all settings needed to connect to an archive backend.
type Config struct {
	// Provider is the storage backend (e.g. ProviderMinIO).
	Provider Provider

	// Endpoint is the host:port of the storage server.
	// Example: "localhost:9000" for local MinIO.
	Endpoint string

	// AccessKey is the access key ID (MinIO / S3 style).
	AccessKey string

	// SecretKey is the secret access key.
	SecretKey string

	// UseSSL controls whether TLS is used for the connection.
	UseSSL bool

	// Region is used by region-aware backends (e.g. AWS S3).
	// Leave empty for MinIO.
	Region string

	// Bucket is an optional default bucket name.
	// Callers may override it per-request.
	Bucket string
}

// DefaultConfig returns a sensible local-dev config for MinIO.
func DefaultConfig(endpoint, accessKey, secretKey string) *Config {
	return &Config{
		Provider:  ProviderMinIO,
		Endpoint:  endpoint,
		AccessKey: accessKey,
		SecretKey: secretKey,
		UseSSL:    false,
		Bucket:    "plans",
	}
}
