// Package archive copies persisted tables to S3-compatible object storage.
package archive

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const defaultRegion = "us-east-1"

type Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	// PublicURL prefixes returned object URLs. Defaults to the endpoint.
	PublicURL string
}

func (c Config) Enabled() bool {
	return c.Endpoint != "" && c.AccessKeyID != "" && c.SecretAccessKey != ""
}

type MinIO struct {
	client *minio.Client
	cfg    Config
	now    func() time.Time
}

func NewMinIO(cfg Config) (*MinIO, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("MinIO configuration missing")
	}
	if cfg.Bucket == "" {
		cfg.Bucket = "gridplaces"
	}
	if cfg.PublicURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		cfg.PublicURL = scheme + "://" + cfg.Endpoint
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}
	return &MinIO{client: client, cfg: cfg, now: time.Now}, nil
}

// Put uploads the file at localPath as <prefix>/<timestamp>_<basename> and
// returns its URL. The bucket is created when missing.
func (m *MinIO) Put(ctx context.Context, localPath, prefix string) (string, error) {
	if err := m.ensureBucket(ctx); err != nil {
		return "", err
	}

	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", localPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", localPath, err)
	}

	objectName := ObjectName(prefix, localPath, m.now())
	_, err = m.client.PutObject(ctx, m.cfg.Bucket, objectName, f, info.Size(), minio.PutObjectOptions{
		ContentType:  contentType(localPath),
		UserMetadata: map[string]string{"filename": filepath.Base(localPath)},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(m.cfg.PublicURL, "/"), m.cfg.Bucket, objectName), nil
}

func (m *MinIO) ensureBucket(ctx context.Context) error {
	err := m.client.MakeBucket(ctx, m.cfg.Bucket, minio.MakeBucketOptions{Region: defaultRegion})
	if err == nil {
		return nil
	}
	exists, errBucketExists := m.client.BucketExists(ctx, m.cfg.Bucket)
	if errBucketExists != nil {
		return fmt.Errorf("failed to check bucket existence: %w", errBucketExists)
	}
	if !exists {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// ObjectName builds the archive key for one snapshot.
func ObjectName(prefix, localPath string, at time.Time) string {
	name := at.UTC().Format("20060102T150405Z") + "_" + filepath.Base(localPath)
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

func contentType(localPath string) string {
	switch strings.ToLower(filepath.Ext(localPath)) {
	case ".csv":
		return "text/csv"
	case ".geojson", ".json":
		return "application/geo+json"
	default:
		return "application/octet-stream"
	}
}
