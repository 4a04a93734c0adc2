package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Disk stores uploads on the local filesystem. Stored names are prefixed with
// a UUID so colliding client file names never overwrite each other.
type Disk struct {
	dir    string
	logger zerolog.Logger
}

// NewDisk creates the upload directory when absent and returns the uploader.
func NewDisk(dir string, logger zerolog.Logger) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	return &Disk{
		dir:    dir,
		logger: logger.With().Str("component", "disk_uploader").Logger(),
	}, nil
}

// Upload writes the bytes to a new file and returns its path relative to the
// upload directory root.
func (d *Disk) Upload(_ context.Context, name string, reader io.Reader) (string, error) {
	stored := uuid.NewString() + "-" + sanitizeFileName(name)
	path := filepath.Join(d.dir, stored)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(dst, reader); err != nil {
		dst.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close file: %w", err)
	}

	d.logger.Info().Str("file", stored).Msg("file stored")

	return path, nil
}

func sanitizeFileName(name string) string {
	base := filepath.Base(name)
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '-'
		}
	}, base)

	base = strings.Trim(base, "-.")
	if base == "" {
		base = "upload"
	}

	return base
}
