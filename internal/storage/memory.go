package storage

import (
	"context"
	"sync"

	"github.com/starford/rosarium/internal/apperr"
	"github.com/starford/rosarium/internal/models"
)

// Memory implements Provider in process. It keeps the encoded bytes so that
// loads go through the same codec as the durable providers.
type Memory struct {
	mu    sync.Mutex
	data  []byte
	quota int64
	saves int
}

// NewMemory returns an empty in-memory provider. quota is in bytes, 0 for
// unlimited.
func NewMemory(quota int64) *Memory {
	return &Memory{quota: quota}
}

// SetQuota changes the byte limit for subsequent saves.
func (m *Memory) SetQuota(quota int64) {
	m.mu.Lock()
	m.quota = quota
	m.mu.Unlock()
}

// Saves returns the number of successful saves.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Load decodes the last saved snapshot.
func (m *Memory) Load(ctx context.Context) (*models.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	data := m.data
	m.mu.Unlock()
	if data == nil {
		return nil, apperr.ErrNotFound
	}
	return Decode(data)
}

// Save stores the encoded snapshot.
func (m *Memory) Save(ctx context.Context, snap *models.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := Encode(snap)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := checkQuota(len(data), m.quota); err != nil {
		return err
	}
	m.data = data
	m.saves++
	snapshotBytes.WithLabelValues(DriverMemory).Set(float64(len(data)))
	return nil
}
