// Package source opens the byte streams behind track locators.
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

type Kind string

const (
	KindFile Kind = "file"
	KindS3   Kind = "s3"
)

const s3Scheme = "s3://"

var (
	ErrEmptyLocator    = errors.New("empty source locator")
	ErrS3NotConfigured = errors.New("s3 source requested but object storage is not configured")
	ErrBadS3Locator    = errors.New("s3 locator must look like s3://bucket/key")
)

// KindOf classifies a locator.
func KindOf(locator string) Kind {
	if strings.HasPrefix(locator, s3Scheme) {
		return KindS3
	}
	return KindFile
}

// ObjectGetter fetches one object from a bucket.
type ObjectGetter interface {
	GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

// Opener resolves plain locators under a base directory and s3:// locators
// through an optional ObjectGetter.
type Opener struct {
	baseDir string
	objects ObjectGetter
}

// NewOpener returns an opener rooted at baseDir. objects may be nil.
func NewOpener(baseDir string, objects ObjectGetter) *Opener {
	return &Opener{baseDir: baseDir, objects: objects}
}

// Open returns a reader for the locator. Callers must close it.
func (o *Opener) Open(ctx context.Context, locator string) (io.ReadCloser, error) {
	if locator == "" {
		return nil, ErrEmptyLocator
	}

	switch KindOf(locator) {
	case KindS3:
		if o.objects == nil {
			return nil, ErrS3NotConfigured
		}
		bucket, key, err := splitS3(locator)
		if err != nil {
			return nil, err
		}
		rc, err := o.objects.GetObject(ctx, bucket, key)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s: %w", locator, err)
		}
		return rc, nil
	default:
		f, err := os.Open(o.Path(locator))
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", locator, err)
		}
		return f, nil
	}
}

// Path returns the filesystem path a plain locator resolves to.
func (o *Opener) Path(locator string) string {
	if filepath.IsAbs(locator) || o.baseDir == "" {
		return locator
	}
	return filepath.Join(o.baseDir, locator)
}

func splitS3(locator string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(locator, s3Scheme)
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("%w: %q", ErrBadS3Locator, locator)
	}
	return bucket, key, nil
}
