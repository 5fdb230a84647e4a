package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"ganeti-netbox-sync/core/storage"

	"github.com/minio/minio-go/v7"
)

// Sink receives rendered tables.
type Sink interface {
	// Write stores data under name (e.g. dcim.sites.csv).
	Write(ctx context.Context, name string, data []byte) error
	// Location describes where name ends up, for logs.
	Location(name string) string
}

// DirSink writes files into a local directory.
type DirSink struct {
	Dir string
}

// NewDirSink checks dir and optionally creates it.
func NewDirSink(dir string, makeDir bool) (*DirSink, error) {
	if makeDir {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("output directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("output %s is not a directory", dir)
	}
	return &DirSink{Dir: dir}, nil
}

// Write implements Sink.
func (s *DirSink) Write(_ context.Context, name string, data []byte) error {
	return os.WriteFile(s.Location(name), data, 0o644)
}

// Location implements Sink.
func (s *DirSink) Location(name string) string {
	return filepath.Join(s.Dir, name)
}

// ObjectSink uploads into a bucket under a prefix.
type ObjectSink struct {
	client storage.Client
	bucket string
	prefix string
}

// NewObjectSink creates the bucket when needed.
func NewObjectSink(ctx context.Context, client storage.Client, bucket, prefix, region string) (*ObjectSink, error) {
	if err := storage.EnsureBucket(ctx, client, bucket, region); err != nil {
		return nil, err
	}
	return &ObjectSink{client: client, bucket: bucket, prefix: prefix}, nil
}

// Write implements Sink.
func (s *ObjectSink) Write(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, s.key(name), bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType(name)})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", s.Location(name), err)
	}
	return nil
}

// Location implements Sink.
func (s *ObjectSink) Location(name string) string {
	return "s3://" + s.bucket + "/" + s.key(name)
}

func (s *ObjectSink) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

func contentType(name string) string {
	switch path.Ext(name) {
	case "." + FormatCSV:
		return "text/csv"
	case "." + FormatJSON:
		return "application/json"
	case "." + FormatYAML:
		return "application/yaml"
	}
	return "application/octet-stream"
}
