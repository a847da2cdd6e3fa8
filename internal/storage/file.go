package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/starford/rosarium/internal/apperr"
	"github.com/starford/rosarium/internal/checksum"
	"github.com/starford/rosarium/internal/models"
)

// File implements Provider as a single JSON document on the local disk.
type File struct {
	path  string // absolute
	quota int64  // bytes, 0 = unlimited

	mu      sync.Mutex
	lastSum string
}

// NewFile returns a provider writing to path. The parent directory is
// created if needed; the file itself appears on the first save.
func NewFile(path string, quota int64) (*File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, fmt.Errorf("storage: mkdir: %w", err)
	}
	return &File{path: abs, quota: quota}, nil
}

// Path returns the absolute snapshot path.
func (f *File) Path() string { return f.path }

// LastChecksum returns the checksum of the bytes last read or written by
// this provider.
func (f *File) LastChecksum() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastSum
}

// Load reads and decodes the snapshot file.
func (f *File) Load(ctx context.Context) (*models.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", f.path, err)
	}
	f.mu.Lock()
	f.lastSum = checksum.Sum(data)
	f.mu.Unlock()
	return Decode(data)
}

// Save encodes snap and writes it atomically: tmp file → fsync → rename.
func (f *File) Save(ctx context.Context, snap *models.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := Encode(snap)
	if err != nil {
		return err
	}
	if err := checkQuota(len(data), f.quota); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.write(data); err != nil {
		return err
	}
	f.lastSum = checksum.Sum(data)
	snapshotBytes.WithLabelValues(DriverFile).Set(float64(len(data)))
	return nil
}

func (f *File) write(content []byte) error {
	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".rosarium-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", mapDiskErr(err))
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", mapDiskErr(err))
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", mapDiskErr(err))
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", mapDiskErr(err))
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// mapDiskErr tags out-of-space errors with apperr.ErrQuotaExceeded.
func mapDiskErr(err error) error {
	if errors.Is(err, syscall.ENOSPC) || errors.Is(err, syscall.EDQUOT) {
		return fmt.Errorf("%w: %w", apperr.ErrQuotaExceeded, err)
	}
	return err
}
