// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client, which speaks to both AWS S3 and self-hosted
// MinIO. Two features use it: instance snapshots are read from s3://bucket/key
// locations with GetObject, and inventory dumps are uploaded with PutObject.
//
// # Client Interface
//
// The Client interface abstracts the provider so tests can use the
// testify mock in core/storage/mocks.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
//	    return err
//	}
package storage
