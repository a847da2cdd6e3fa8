package gardenservice

import (
	"context"
	"fmt"
	"net/http"

	"github.com/starford/rosarium/internal/apperr"
	"github.com/starford/rosarium/internal/grid"
	"github.com/starford/rosarium/internal/models"
	"github.com/starford/rosarium/internal/sse"
)

// Photo slots.
const (
	PhotoBefore = "before"
	PhotoAfter  = "after"
)

// Summary counts activity for the dashboard.
func (s *Service) Summary(_ context.Context, year int) grid.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	if year == 0 {
		year = s.now().Year()
	}
	return s.projector.Summarize(s.store.Specimens(), s.store.Events(), year)
}

// Album lists photographed events, newest first.
func (s *Service) Album(_ context.Context) []grid.AlbumEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return grid.Album(s.store.Specimens(), s.store.Events())
}

// Photo decodes one embedded photo of an event.
func (s *Service) Photo(_ context.Context, eventID, which string) (contentType string, data []byte, err error) {
	s.mu.Lock()
	e, ok := s.store.Event(eventID)
	s.mu.Unlock()
	if !ok {
		return "", nil, apperr.ErrNotFound
	}
	var raw string
	if e.Images != nil {
		switch which {
		case PhotoBefore:
			raw = e.Images.Before
		case PhotoAfter:
			raw = e.Images.After
		default:
			return "", nil, fmt.Errorf("%w: photo slot %q", apperr.ErrInvalid, which)
		}
	}
	if raw == "" {
		return "", nil, apperr.ErrNotFound
	}
	contentType, data, err = models.DecodeDataURL(raw)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s photo of %s: %v", apperr.ErrInvalid, which, eventID, err)
	}
	return contentType, data, nil
}

// AttachPhoto stores data as the before or after photo of a pruning event.
func (s *Service) AttachPhoto(_ context.Context, eventID, which string, data []byte) (models.CareEvent, error) {
	if which != PhotoBefore && which != PhotoAfter {
		return models.CareEvent{}, fmt.Errorf("%w: photo slot %q", apperr.ErrInvalid, which)
	}
	contentType := http.DetectContentType(data)
	if !models.PhotoTypes[contentType] {
		return models.CareEvent{}, fmt.Errorf("%w: unsupported photo type %s, want png, jpeg, gif or webp", apperr.ErrInvalid, contentType)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.store.Event(eventID)
	if !ok {
		return models.CareEvent{}, apperr.ErrNotFound
	}
	if e.TypeID != models.CarePruning {
		return models.CareEvent{}, fmt.Errorf("%w: photos belong to pruning events", apperr.ErrInvalid)
	}
	if e.Images == nil {
		e.Images = &models.EventImages{}
	}
	url := models.EncodeDataURL(contentType, data)
	if which == PhotoBefore {
		e.Images.Before = url
	} else {
		e.Images.After = url
	}
	s.store.UpdateEvent(e)
	s.changedLocked("event.photo")
	s.notifier.PublishChange(sse.CareSaved, e.ID)
	return e, nil
}

// Settings returns the presentation settings.
func (s *Service) Settings(_ context.Context) models.AppSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// UpdateSettings validates and stores the presentation settings.
func (s *Service) UpdateSettings(_ context.Context, settings models.AppSettings) (models.AppSettings, error) {
	if err := settings.Validate(); err != nil {
		return models.AppSettings{}, invalid(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	s.changedLocked("settings")
	s.notifier.PublishChange(sse.SettingsSaved, "")
	return settings, nil
}

// Export returns the whole garden as a snapshot document.
func (s *Service) Export(_ context.Context) *models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Import replaces the garden and settings wholesale. There is no merge.
func (s *Service) Import(_ context.Context, snap *models.Snapshot) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceLocked(snap, 0)
	s.changedLocked("import")
	s.notifier.PublishChange(sse.GardenReplaced, "")
	return s.window.Years()
}
