// Package storage persists garden snapshots.
package storage

import (
	"context"
	"fmt"

	"github.com/starford/rosarium/internal/apperr"
	"github.com/starford/rosarium/internal/models"
)

// Provider loads and saves the whole garden as one snapshot.
type Provider interface {
	// Load returns the last saved snapshot. It returns apperr.ErrNotFound
	// when nothing has been saved yet. A partially readable snapshot is
	// returned together with an error wrapping apperr.ErrMalformedSnapshot.
	Load(ctx context.Context) (*models.Snapshot, error)
	// Save replaces the stored snapshot atomically. Storage limits surface as
	// apperr.ErrQuotaExceeded and leave the previous snapshot in place.
	Save(ctx context.Context, snap *models.Snapshot) error
}

func checkQuota(size int, quota int64) error {
	if quota > 0 && int64(size) > quota {
		return fmt.Errorf("storage: snapshot is %d bytes, limit %d: %w", size, quota, apperr.ErrQuotaExceeded)
	}
	return nil
}
