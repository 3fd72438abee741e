package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Storage keeps user files (currently avatars) behind a key space.
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

type Config struct {
	Driver        string // local | s3 | gcs
	LocalDir      string
	PublicBaseURL string
	S3Bucket      string
	S3Region      string
	GCSBucket     string
	GCSCredsFile  string
}

// New builds the backend selected by cfg.Driver; empty means local.
func New(ctx context.Context, cfg Config) (Storage, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "local":
		return NewLocal(cfg.LocalDir, cfg.PublicBaseURL)
	case "s3":
		return NewS3(ctx, cfg.S3Bucket, cfg.S3Region, cfg.PublicBaseURL)
	case "gcs":
		return NewGCS(ctx, cfg.GCSBucket, cfg.GCSCredsFile, cfg.PublicBaseURL)
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Driver)
	}
}

// KeyFromURL recovers the object key from a URL produced by s.URL, or "" when
// the URL belongs to something else (an external avatar, for example).
func KeyFromURL(s Storage, url string) string {
	prefix := s.URL("")
	if prefix == "" || !strings.HasPrefix(url, prefix) {
		return ""
	}
	return strings.TrimPrefix(url, prefix)
}

func contentTypeForKey(key string) string {
	s := strings.ToLower(strings.TrimSpace(key))
	if i := strings.Index(s, "?"); i >= 0 {
		s = s[:i]
	}
	switch {
	case strings.HasSuffix(s, ".png"):
		return "image/png"
	case strings.HasSuffix(s, ".jpg"), strings.HasSuffix(s, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(s, ".webp"):
		return "image/webp"
	case strings.HasSuffix(s, ".gif"):
		return "image/gif"
	case strings.HasSuffix(s, ".pdf"):
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
