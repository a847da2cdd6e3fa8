// Package testutil provides shared test helpers for setting up gardens and
// snapshot providers.
package testutil

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/rosarium/internal/gardenservice"
	"github.com/starford/rosarium/internal/models"
	"github.com/starford/rosarium/internal/storage"
)

// Now is the fixed clock used by TestService.
var Now = time.Date(2025, time.June, 15, 9, 0, 0, 0, time.UTC)

// Logger returns a logger that only reports errors.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// Eventually polls fn until it returns true or timeout elapses.
func Eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

// TestFile creates a file provider in a temporary directory.
func TestFile(t *testing.T) *storage.File {
	t.Helper()
	f, err := storage.NewFile(filepath.Join(t.TempDir(), "garden.json"), 0)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

// TestSQLite creates a temporary SQLite provider that is closed on cleanup.
func TestSQLite(t *testing.T) *storage.SQLite {
	t.Helper()
	db, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "garden.db"), 0)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// SequentialIDs returns an id generator yielding prefix-1, prefix-2, ...
func SequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

// Garden returns a small snapshot: two specimens, three events.
func Garden() *models.Snapshot {
	return &models.Snapshot{
		Specimens: []models.Specimen{
			{ID: "r1", Name: "Gabriel", Brand: "Kawamoto Rose (Japan)"},
			{ID: "r2", Name: "Iceberg", Brand: "Kordes (Germany)"},
		},
		Events: []models.CareEvent{
			{ID: "e1", SpecimenID: "r1", Date: "2023-04-10", TypeID: models.CarePruning},
			{ID: "e2", SpecimenID: "r1", Date: "2024-03-15", TypeID: models.CareLiquid, ProductID: "hyponex-liquid"},
			{ID: "e3", SpecimenID: "r2", Date: "2024-03-02", TypeID: models.CarePest},
		},
		Settings: models.DefaultSettings(),
	}
}

// TestService opens a service over provider with a fixed clock, sequential
// ids and a quiet logger. Extra options are applied last.
func TestService(t *testing.T, provider storage.Provider, opts ...gardenservice.Option) *gardenservice.Service {
	t.Helper()
	base := []gardenservice.Option{
		gardenservice.WithLogger(Logger()),
		gardenservice.WithClock(func() time.Time { return Now }),
		gardenservice.WithIDs(SequentialIDs("id")),
	}
	svc := gardenservice.New(provider, append(base, opts...)...)
	if err := svc.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	return svc
}

// Notice is one recorded notification.
type Notice struct {
	Kind string
	ID   string
}

// Recorder is a gardenservice.Notifier that remembers what it was told.
type Recorder struct {
	mu       sync.Mutex
	changes  []Notice
	warnings []string
	cleared  int
}

// PublishChange records a change.
func (r *Recorder) PublishChange(kind, id string) {
	r.mu.Lock()
	r.changes = append(r.changes, Notice{Kind: kind, ID: id})
	r.mu.Unlock()
}

// PublishWarning records a warning.
func (r *Recorder) PublishWarning(message string) {
	r.mu.Lock()
	r.warnings = append(r.warnings, message)
	r.mu.Unlock()
}

// ClearWarning counts a cleared warning.
func (r *Recorder) ClearWarning() {
	r.mu.Lock()
	r.cleared++
	r.mu.Unlock()
}

// Cleared returns how often the warning was cleared.
func (r *Recorder) Cleared() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cleared
}

// Changes returns the recorded changes.
func (r *Recorder) Changes() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.changes...)
}

// Warnings returns the recorded warnings.
func (r *Recorder) Warnings() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.warnings...)
}

// Seeded opens a service over an in-memory provider holding Garden.
func Seeded(t *testing.T, opts ...gardenservice.Option) (*gardenservice.Service, *storage.Memory) {
	t.Helper()
	mem := storage.NewMemory(0)
	if err := mem.Save(context.Background(), Garden()); err != nil {
		t.Fatal(err)
	}
	return TestService(t, mem, opts...), mem
}
