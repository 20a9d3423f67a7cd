// Package source opens guest-list files from the local disk or an S3 bucket.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsafeLocation is returned for local paths that are absolute or leave the base directory
var ErrUnsafeLocation = errors.New("location must be an s3:// object or a path inside the data directory")

// ValidateLocation accepts s3:// locations and relative local paths that stay
// below the base directory. Locations coming from remote callers go through it.
func ValidateLocation(location string) error {
	if strings.HasPrefix(location, "s3://") {
		return nil
	}
	if !filepath.IsLocal(location) {
		return fmt.Errorf("%q: %w", location, ErrUnsafeLocation)
	}
	return nil
}

// Opener opens a guest-list document by location
type Opener interface {
	Open(ctx context.Context, location string) (io.ReadCloser, error)
}

type LocalSource struct {
	BaseDir string
}

func NewLocalSource(baseDir string) *LocalSource {
	if baseDir == "" {
		baseDir = "."
	}
	return &LocalSource{BaseDir: baseDir}
}

func (s *LocalSource) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	path := location
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.BaseDir, location)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file %s: %w", path, err)
	}
	return file, nil
}

// Router sends s3:// locations to the S3 opener and everything else to the local one
type Router struct {
	Local Opener
	S3    Opener
}

func (r *Router) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	if strings.HasPrefix(location, "s3://") {
		if r.S3 == nil {
			return nil, fmt.Errorf("open %s: S3 is not configured", location)
		}
		return r.S3.Open(ctx, location)
	}
	return r.Local.Open(ctx, location)
}

// ReadText reads a whole guest-list document as text
func ReadText(ctx context.Context, o Opener, location string) (string, error) {
	rc, err := o.Open(ctx, location)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", location, err)
	}
	return string(data), nil
}
