package objectstore

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"path"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"karaoke/internal/logging"
	"karaoke/internal/stage"
)

const (
	componentName = "objectstore"
	keyPrefix     = "jobs"
	// r2Region is the region R2 accepts for SigV4.
	r2Region = "auto"
)

// Config captures bucket access settings.
type Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	PublicURL       string
	UseSSL          bool
}

// Configured reports whether enough settings exist to attempt an upload.
func (c Config) Configured() bool {
	return strings.TrimSpace(c.Endpoint) != "" &&
		strings.TrimSpace(c.AccessKeyID) != "" &&
		strings.TrimSpace(c.SecretAccessKey) != "" &&
		strings.TrimSpace(c.Bucket) != ""
}

// Publisher turns a local file into a shareable location.
type Publisher interface {
	Publish(ctx context.Context, localPath, jobID string) (string, bool)
}

// Store uploads to an S3-compatible bucket.
type Store struct {
	cfg    Config
	client *minio.Client
	logger *slog.Logger
}

// New returns a bucket-backed publisher, or Local when credentials are absent.
func New(cfg Config, logger *slog.Logger) (Publisher, error) {
	if !cfg.Configured() {
		return Local{}, nil
	}
	client, err := minio.New(strings.TrimSpace(cfg.Endpoint), &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure:       cfg.UseSSL,
		Region:       r2Region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("objectstore: create client: %w", err)
	}
	return &Store{
		cfg:    cfg,
		client: client,
		logger: logging.NewComponentLogger(logger, componentName),
	}, nil
}

// Key is the object name for a job's file.
func Key(jobID, localPath string) string {
	return path.Join(keyPrefix, jobID, filepath.Base(localPath))
}

// URL is the public address for key. Without a public base it falls back to
// the bucket endpoint.
func (s *Store) URL(key string) string {
	base := strings.TrimRight(strings.TrimSpace(s.cfg.PublicURL), "/")
	if base == "" {
		scheme := "http"
		if s.cfg.UseSSL {
			scheme = "https"
		}
		base = fmt.Sprintf("%s://%s/%s", scheme, s.cfg.Endpoint, s.cfg.Bucket)
	}
	return base + "/" + key
}

// Publish uploads localPath and returns its public URL. Any failure returns
// localPath and false.
func (s *Store) Publish(ctx context.Context, localPath, jobID string) (string, bool) {
	key := Key(jobID, localPath)
	contentType := mime.TypeByExtension(filepath.Ext(localPath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	info, err := s.client.FPutObject(ctx, s.cfg.Bucket, key, localPath, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "upload failed; using local path", "upload_failed",
			logging.String("key", key),
			logging.String("local_path", localPath),
			logging.String(logging.FieldErrorHint, "check R2 credentials and bucket name"),
			logging.String(logging.FieldImpact, "job result points at a local file"),
			logging.Error(err),
		)
		return localPath, false
	}
	publicURL := s.URL(key)
	s.logger.Info("upload complete",
		logging.String(logging.FieldEventType, "upload_complete"),
		logging.String("key", key),
		logging.Int64("bytes", info.Size),
		logging.String("url", publicURL),
	)
	return publicURL, true
}

// HealthCheck reports the configured bucket.
func (s *Store) HealthCheck(context.Context) stage.Health {
	if s == nil || s.client == nil {
		return stage.Unhealthy(componentName, "client not configured")
	}
	return stage.Health{Name: componentName, Ready: true, Detail: "bucket " + s.cfg.Bucket}
}

// Local keeps files where they are.
type Local struct{}

// Publish returns localPath unchanged.
func (Local) Publish(_ context.Context, localPath, _ string) (string, bool) {
	return localPath, false
}

// HealthCheck reports that uploads are disabled.
func (Local) HealthCheck(context.Context) stage.Health {
	return stage.Health{Name: componentName, Ready: true, Detail: "uploads disabled; results stay local"}
}
