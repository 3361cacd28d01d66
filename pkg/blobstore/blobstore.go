package blobstore

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Store persists report images and hands out public URLs for them. The
// submission flow requires Upload to succeed before any incident row is
// created.
type Store interface {
	Upload(bucket, path string, data []byte) error
	PublicURL(bucket, path string) string
}

// FSStore is a filesystem-backed Store. Buckets map to directories under the
// root; PublicURL joins the configured base URL with bucket and path.
type FSStore struct {
	root    string
	baseURL string
}

// NewFSStore creates the root directory if needed and returns a Store over it.
func NewFSStore(root, baseURL string) (*FSStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create blob root %s: %w", root, err)
	}
	return &FSStore{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (s *FSStore) Upload(bucket, path string, data []byte) error {
	if strings.Contains(path, "..") {
		return fmt.Errorf("invalid blob path %q", path)
	}
	dst := filepath.Join(s.root, bucket, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create blob directory: %w", err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("failed to write blob %s/%s: %w", bucket, path, err)
	}
	return nil
}

func (s *FSStore) PublicURL(bucket, path string) string {
	segments := []string{url.PathEscape(bucket)}
	for _, seg := range strings.Split(path, "/") {
		segments = append(segments, url.PathEscape(seg))
	}
	return s.baseURL + "/" + strings.Join(segments, "/")
}
