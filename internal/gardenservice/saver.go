package gardenservice

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/starford/rosarium/internal/apperr"
	"github.com/starford/rosarium/internal/models"
)

var (
	savesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rosarium_saves_total",
		Help: "Snapshot saves by result (ok, quota, error)",
	}, []string{"result"})

	saveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rosarium_save_duration_seconds",
		Help:    "Duration of snapshot saves",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	})

	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rosarium_mutations_total",
		Help: "Garden mutations by kind",
	}, []string{"kind"})
)

// RunSaver writes the snapshot in the background until ctx is cancelled.
// Mutations only mark the state dirty; the saver reads the latest state when
// it writes, so a burst of mutations costs one save. Pending changes are
// flushed on shutdown.
func (s *Service) RunSaver(ctx context.Context) error {
	var timer *time.Timer
	var timerCh <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			defer cancel()
			_ = s.Flush(shutdownCtx)
			s.logger.Info("saver: stopped")
			return nil

		case <-s.dirty:
			if s.debounce <= 0 {
				_ = s.Flush(ctx)
				continue
			}
			if timer == nil {
				timer = time.NewTimer(s.debounce)
				timerCh = timer.C
			} else {
				timer.Reset(s.debounce)
			}

		case <-timerCh:
			_ = s.Flush(ctx)
		}
	}
}

// Flush writes the current state now if it has unsaved changes. A quota
// failure keeps the in-memory state, logs a warning, notifies subscribers
// and is returned wrapped in apperr.ErrQuotaExceeded. It is not retried
// until the next mutation. The first successful save after it clears the
// warning.
func (s *Service) Flush(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	if s.gen == s.savedGen {
		s.mu.Unlock()
		return nil
	}
	gen := s.gen
	snap := s.snapshotLocked()
	s.mu.Unlock()

	start := time.Now()
	err := s.provider.Save(ctx, snap)
	saveDuration.Observe(time.Since(start).Seconds())

	s.mu.Lock()
	wasFull := errors.Is(s.lastErr, apperr.ErrQuotaExceeded)
	s.lastErr = err
	s.mu.Unlock()

	switch {
	case err == nil:
		savesTotal.WithLabelValues("ok").Inc()
		s.mu.Lock()
		s.savedGen = max(s.savedGen, gen)
		s.mu.Unlock()
		if wasFull {
			s.logger.Info("saver: storage writable again")
			s.notifier.ClearWarning()
		}
		return nil
	case errors.Is(err, apperr.ErrQuotaExceeded):
		savesTotal.WithLabelValues("quota").Inc()
		s.logger.Warn("saver: storage quota exceeded, changes kept in memory only",
			slog.String("error", err.Error()))
		s.notifier.PublishWarning("Storage is full. Recent changes are not saved; export your data or remove photos.")
		s.mu.Lock()
		s.savedGen = max(s.savedGen, gen)
		s.mu.Unlock()
		return err
	default:
		savesTotal.WithLabelValues("error").Inc()
		s.logger.Error("saver: save failed", slog.String("error", err.Error()))
		return err
	}
}

// Dirty reports whether there are changes not yet written.
func (s *Service) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen != s.savedGen
}

// LastSaveError returns the outcome of the most recent save attempt.
func (s *Service) LastSaveError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Service) snapshotLocked() *models.Snapshot {
	return &models.Snapshot{
		Specimens: s.store.Specimens(),
		Events:    s.store.Events(),
		Settings:  s.settings,
	}
}
