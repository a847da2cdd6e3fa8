// Package gardenservice is the application controller. It owns the garden
// store, the year window and the projector, and schedules persistence after
// every mutation.
package gardenservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starford/rosarium/internal/apperr"
	"github.com/starford/rosarium/internal/catalog"
	"github.com/starford/rosarium/internal/garden"
	"github.com/starford/rosarium/internal/grid"
	"github.com/starford/rosarium/internal/models"
	"github.com/starford/rosarium/internal/sse"
	"github.com/starford/rosarium/internal/storage"
	"github.com/starford/rosarium/internal/timeline"
)

// Notifier receives change notifications. *sse.Broker satisfies it.
// A warning stays active until ClearWarning.
type Notifier interface {
	PublishChange(kind, id string)
	PublishWarning(message string)
	ClearWarning()
}

type nopNotifier struct{}

func (nopNotifier) PublishChange(string, string) {}
func (nopNotifier) PublishWarning(string)        {}
func (nopNotifier) ClearWarning()                {}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithNotifier sets the change notifier.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithWindowConfig sets the year window bounds and sheet geometry.
func WithWindowConfig(cfg timeline.Config) Option {
	return func(s *Service) { s.windowCfg = cfg }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDs overrides the id generator.
func WithIDs(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// WithSaveDebounce delays background saves so bursts of mutations are
// written once.
func WithSaveDebounce(d time.Duration) Option {
	return func(s *Service) { s.debounce = d }
}

// Service serialises every operation on the garden behind one mutex.
type Service struct {
	provider  storage.Provider
	logger    *slog.Logger
	notifier  Notifier
	windowCfg timeline.Config
	now       func() time.Time
	newID     func() string
	debounce  time.Duration

	mu        sync.Mutex
	store     *garden.Store
	window    *timeline.Window
	projector *grid.Projector
	settings  models.AppSettings
	gen       uint64 // bumped by every mutation
	savedGen  uint64
	lastErr   error

	saveMu sync.Mutex
	dirty  chan struct{}
}

// New returns a service with an empty garden. Call Open to load the stored
// snapshot.
func New(provider storage.Provider, opts ...Option) *Service {
	s := &Service{
		provider:  provider,
		logger:    slog.Default(),
		notifier:  nopNotifier{},
		windowCfg: timeline.DefaultConfig(),
		now:       time.Now,
		newID:     uuid.NewString,
		projector: grid.Default(),
		settings:  models.DefaultSettings(),
		dirty:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.store = garden.New(nil, nil)
	s.window = timeline.New(s.windowCfg, s.initialYears(0))
	return s
}

// Open loads the stored snapshot. With nothing stored the garden starts from
// the seed collection. A partially readable snapshot is used as far as it
// goes and the problems are logged.
func (s *Service) Open(ctx context.Context) error {
	snap, err := s.provider.Load(ctx)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		s.logger.Info("gardenservice: no snapshot stored, using seed collection")
		snap = &models.Snapshot{Specimens: catalog.SeedSpecimens(), Settings: models.DefaultSettings()}
	case errors.Is(err, apperr.ErrMalformedSnapshot):
		s.logger.Warn("gardenservice: snapshot partially recovered", slog.String("error", err.Error()))
	case err != nil:
		return fmt.Errorf("gardenservice: load: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceLocked(snap, 0)
	s.savedGen = s.gen
	return nil
}

// Reload replaces in-memory state with the stored snapshot without
// scheduling a save. It is used when the snapshot changed underneath.
// While there are unsaved changes the reload is skipped, and the next save
// overwrites the external edit.
func (s *Service) Reload(ctx context.Context) error {
	snap, err := s.provider.Load(ctx)
	if err != nil && !errors.Is(err, apperr.ErrMalformedSnapshot) {
		return fmt.Errorf("gardenservice: reload: %w", err)
	}
	if err != nil {
		s.logger.Warn("gardenservice: reloaded snapshot partially recovered", slog.String("error", err.Error()))
	}
	s.mu.Lock()
	if s.gen != s.savedGen {
		s.mu.Unlock()
		s.logger.Warn("gardenservice: snapshot changed on disk with unsaved changes pending, reload skipped")
		return nil
	}
	s.replaceLocked(snap, 0)
	s.savedGen = s.gen
	s.mu.Unlock()

	mutationsTotal.WithLabelValues("reload").Inc()
	s.notifier.PublishChange(sse.GardenReplaced, "")
	return nil
}

// replaceLocked swaps the whole state and resets the window. Callers hold mu.
func (s *Service) replaceLocked(snap *models.Snapshot, targetYear int) {
	s.store.Replace(snap.Specimens, snap.Events)
	s.settings = snap.Settings
	s.window.Reset(s.initialYears(targetYear))
	s.gen++
}

func (s *Service) initialYears(targetYear int) []int {
	seed := timeline.Seed{CurrentYear: s.now().Year(), TargetYear: targetYear}
	if s.store != nil {
		seed.DataFirst, seed.DataLast, seed.HasData = s.store.YearSpan()
	}
	return timeline.InitialYears(seed)
}

// changedLocked records a mutation and wakes the saver. Callers hold mu.
func (s *Service) changedLocked(kind string) {
	s.gen++
	mutationsTotal.WithLabelValues(kind).Inc()
	select {
	case s.dirty <- struct{}{}:
	default:
	}
}

func invalid(err error) error {
	return fmt.Errorf("%w: %s", apperr.ErrInvalid, err.Error())
}
