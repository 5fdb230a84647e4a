package ganeti

import (
	"context"
	"fmt"
	"io"
	"os"

	"ganeti-netbox-sync/core/reconcile"
	"ganeti-netbox-sync/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// LoadFile reads a captured bulk instance list from disk.
func LoadFile(path string, logger *zap.Logger) ([]reconcile.SourceRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", reconcile.ErrSourceUnavailable, err)
	}
	return Parse(data, logger)
}

// LoadObject reads a captured bulk instance list from object storage.
func LoadObject(ctx context.Context, client storage.Client, bucket, key string, logger *zap.Logger) ([]reconcile.SourceRecord, error) {
	obj, err := client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get s3://%s/%s: %w", reconcile.ErrSourceUnavailable, bucket, key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read s3://%s/%s: %w", reconcile.ErrSourceUnavailable, bucket, key, err)
	}
	return Parse(data, logger)
}

// Load reads a captured instance list from a path or an s3://bucket/key
// location. client may be nil for local paths.
func Load(ctx context.Context, location string, client storage.Client, logger *zap.Logger) ([]reconcile.SourceRecord, error) {
	bucket, key, ok := storage.ParseURL(location)
	if !ok {
		return LoadFile(location, logger)
	}
	if client == nil {
		return nil, fmt.Errorf("%w: object storage is not configured for %s", reconcile.ErrSourceUnavailable, location)
	}
	return LoadObject(ctx, client, bucket, key, logger)
}
