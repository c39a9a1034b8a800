// Package minio provides a MinIO implementation of planstore.Store.
//
// Usage:
//
//	cfg := planstore.DefaultConfig("localhost:9000", "minioadmin", "minioadmin")
//	store, err := minio.New(ctx, cfg)
//	if err != nil { ... }
//	defer store.Close()
//
//	doc, err := store.GetPlan(ctx, "plans", "2026/08/users.yaml")
package minio

import (
	"bytes"
	"context"
	"io"
	"time"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/koustreak/datmig/internal/plan"
	"github.com/koustreak/datmig/internal/planstore"
)

// Driver is a MinIO implementation of planstore.Store.
// It is safe for concurrent use by multiple goroutines.
type Driver struct {
	client *miniogo.Client
	region string
}

// New connects to MinIO using the provided Config and returns a Driver.
// It calls Ping to validate the connection before returning.
func New(ctx context.Context, cfg *planstore.Config) (*Driver, error) {
	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, mapError(err, "failed to create minio client")
	}

	d := &Driver{client: client, region: cfg.Region}

	if err := d.Ping(ctx); err != nil {
		return nil, err
	}

	return d, nil
}

// --- planstore.Store implementation ---

// Ping verifies the MinIO server is reachable by listing buckets.
func (d *Driver) Ping(ctx context.Context) error {
	if _, err := d.client.ListBuckets(ctx); err != nil {
		return mapError(err, "ping failed")
	}
	return nil
}

// Close is a no-op for MinIO; the SDK client holds no persistent connections.
func (d *Driver) Close() error {
	return nil
}

// EnsureBucket creates the bucket if it does not exist yet.
func (d *Driver) EnsureBucket(ctx context.Context, bucket string) error {
	exists, err := d.client.BucketExists(ctx, bucket)
	if err != nil {
		return mapError(err, "failed to check bucket")
	}
	if exists {
		return nil
	}
	opts := miniogo.MakeBucketOptions{Region: d.region}
	if err := d.client.MakeBucket(ctx, bucket, opts); err != nil {
		return mapError(err, "failed to create bucket")
	}
	return nil
}

// PutPlan serializes the document and stores it at key inside bucket.
func (d *Driver) PutPlan(ctx context.Context, bucket, key string, doc *plan.Document) (*planstore.PlanInfo, error) {
	data, err := doc.Marshal()
	if err != nil {
		return nil, err
	}

	opts := miniogo.PutObjectOptions{ContentType: planstore.ContentType}
	up, err := d.client.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), opts)
	if err != nil {
		return nil, mapError(err, "failed to store plan")
	}

	return &planstore.PlanInfo{
		Key:      key,
		Size:     up.Size,
		ETag:     up.ETag,
		StoredAt: up.LastModified,
	}, nil
}

// GetPlan fetches and parses the document at key inside bucket.
func (d *Driver) GetPlan(ctx context.Context, bucket, key string) (*plan.Document, error) {
	obj, err := d.client.GetObject(ctx, bucket, key, miniogo.GetObjectOptions{})
	if err != nil {
		return nil, mapError(err, "failed to get plan")
	}
	defer obj.Close()

	// MinIO defers missing-key errors until the first read.
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, mapError(err, "failed to read plan")
	}
	return plan.Unmarshal(data)
}

// StatPlan returns metadata for the plan at key inside bucket
// without downloading its content.
func (d *Driver) StatPlan(ctx context.Context, bucket, key string) (*planstore.PlanInfo, error) {
	stat, err := d.client.StatObject(ctx, bucket, key, miniogo.StatObjectOptions{})
	if err != nil {
		return nil, mapError(err, "failed to stat plan")
	}

	return &planstore.PlanInfo{
		Key:      stat.Key,
		Size:     stat.Size,
		ETag:     stat.ETag,
		StoredAt: stat.LastModified,
	}, nil
}

// ListPlans returns the plans in bucket under prefix.
func (d *Driver) ListPlans(ctx context.Context, bucket, prefix string) ([]planstore.PlanInfo, error) {
	opts := miniogo.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}

	var results []planstore.PlanInfo
	for obj := range d.client.ListObjects(ctx, bucket, opts) {
		if obj.Err != nil {
			return nil, mapError(obj.Err, "failed to list plans")
		}
		results = append(results, planstore.PlanInfo{
			Key:      obj.Key,
			Size:     obj.Size,
			ETag:     obj.ETag,
			StoredAt: obj.LastModified,
		})
	}
	return results, nil
}

// PresignGetURL returns a time-limited public download URL for the plan.
func (d *Driver) PresignGetURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	u, err := d.client.PresignedGetObject(ctx, bucket, key, ttl, nil)
	if err != nil {
		return "", mapError(err, "failed to generate presigned URL")
	}
	return u.String(), nil
}
