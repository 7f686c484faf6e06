package surface

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yanqian/shadowcast/pkg/raster"
)

// ObjectConfig locates a surface model in an S3-compatible bucket.
type ObjectConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	Bucket    string
	Key       string
}

// ObjectLoader fetches the surface model from S3-compatible storage (S3, R2,
// MinIO) on every Load.
type ObjectLoader struct {
	client *minio.Client
	bucket string
	key    string
	logger *slog.Logger
}

// NewObjectLoader constructs the loader.
func NewObjectLoader(cfg ObjectConfig, logger *slog.Logger) (*ObjectLoader, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(cfg.Bucket) == "" || strings.TrimSpace(cfg.Key) == "" {
		return nil, errors.New("surface object bucket and key are required")
	}
	cleanEndpoint := sanitizeEndpoint(cfg.Endpoint)
	if cleanEndpoint == "" {
		return nil, errors.New("surface object endpoint is required")
	}
	useSSL := !strings.HasPrefix(strings.ToLower(strings.TrimSpace(cfg.Endpoint)), "http://")
	client, err := minio.New(cleanEndpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:       useSSL,
		Region:       cfg.Region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init object storage client: %w", err)
	}
	return &ObjectLoader{
		client: client,
		bucket: cfg.Bucket,
		key:    cfg.Key,
		logger: logger.With("component", "surface.object"),
	}, nil
}

// Load implements analysis.SurfaceLoader.
func (l *ObjectLoader) Load(ctx context.Context) (raster.Grid, error) {
	obj, err := l.client.GetObject(ctx, l.bucket, l.key, minio.GetObjectOptions{})
	if err != nil {
		return raster.Grid{}, fmt.Errorf("get surface object: %w", err)
	}
	defer obj.Close()
	// GetObject is lazy; Stat surfaces missing keys before decoding.
	info, err := obj.Stat()
	if err != nil {
		return raster.Grid{}, fmt.Errorf("stat surface object %s/%s: %w", l.bucket, l.key, err)
	}

	grid, err := Decode(bufio.NewReader(obj))
	if err != nil {
		return raster.Grid{}, fmt.Errorf("decode %s/%s: %w", l.bucket, l.key, err)
	}
	l.logger.Debug("surface model fetched", "bucket", l.bucket, "key", l.key, "bytes", info.Size, "rows", grid.Rows, "cols", grid.Cols)
	return grid, nil
}

// sanitizeEndpoint removes schemes and paths to satisfy minio.New expectations.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if strings.Contains(raw, "/") {
		parts := strings.Split(raw, "/")
		raw = parts[0]
	}
	return raw
}
