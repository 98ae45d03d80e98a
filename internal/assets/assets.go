// Package assets moves staged uploads into object storage and keeps
// documents and their binary assets consistent.
package assets

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type Asset struct {
	URL      string
	Duration float64
}

// Store is the remote object storage. Upload consumes the staged file: it is
// removed whether or not the upload succeeds.
type Store interface {
	Upload(ctx context.Context, localPath string) (Asset, error)
	Delete(ctx context.Context, url string) error
}

// Staged is a file written to local disk and waiting for upload.
type Staged struct {
	Field string
	Path  string
}

// Stage copies a multipart file into dir under a random name.
func Stage(dir, field string, fh *multipart.FileHeader) (Staged, error) {
	src, err := fh.Open()
	if err != nil {
		return Staged{}, fmt.Errorf("open %s: %w", field, err)
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if len(ext) > 10 {
		ext = ""
	}
	dst, err := os.CreateTemp(dir, "upload-*-"+uuid.NewString()[:8]+ext)
	if err != nil {
		return Staged{}, fmt.Errorf("stage %s: %w", field, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return Staged{}, fmt.Errorf("stage %s: %w", field, err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return Staged{}, fmt.Errorf("stage %s: %w", field, err)
	}
	return Staged{Field: field, Path: dst.Name()}, nil
}

// Discard removes staged files that will never be uploaded.
func Discard(staged ...Staged) {
	for _, s := range staged {
		if s.Path != "" {
			_ = os.Remove(s.Path)
		}
	}
}
