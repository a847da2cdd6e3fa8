package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/rosarium/internal/apperr"
	"github.com/starford/rosarium/internal/models"
)

// Top-level snapshot fields. "roses" is what every writer emits; "specimens"
// is accepted on read.
const (
	fieldRoses     = "roses"
	fieldSpecimens = "specimens"
	fieldEvents    = "events"
	fieldSettings  = "settings"
)

// MalformedError lists the parts of a snapshot that could not be read. The
// snapshot returned alongside it holds defaults for those parts.
type MalformedError struct {
	Problems []string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed snapshot: %s", strings.Join(e.Problems, "; "))
}

func (e *MalformedError) Unwrap() error { return apperr.ErrMalformedSnapshot }

// Encode renders snap as a compact JSON snapshot document.
func Encode(snap *models.Snapshot) ([]byte, error) {
	data, err := json.Marshal(normalize(snap))
	if err != nil {
		return nil, fmt.Errorf("storage: encode: %w", err)
	}
	return data, nil
}

// EncodeIndent renders snap as an indented JSON document for export.
func EncodeIndent(snap *models.Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(normalize(snap), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("storage: encode: %w", err)
	}
	return data, nil
}

func normalize(snap *models.Snapshot) *models.Snapshot {
	out := &models.Snapshot{Settings: models.DefaultSettings()}
	if snap == nil {
		out.Specimens = []models.Specimen{}
		out.Events = []models.CareEvent{}
		return out
	}
	*out = *snap
	if out.Specimens == nil {
		out.Specimens = []models.Specimen{}
	}
	if out.Events == nil {
		out.Events = []models.CareEvent{}
	}
	return out
}

// DecodeDocument decodes a JSON or YAML snapshot document, choosing by the
// first non-blank byte.
func DecodeDocument(data []byte) (*models.Snapshot, error) {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		return Decode(data)
	}
	return DecodeYAML(data)
}

// DecodeImport decodes a user-supplied document for a wholesale import. The
// problems of a partly readable document come back as warnings; a document
// with no readable specimen or event is refused with apperr.ErrInvalid so it
// cannot wipe the garden.
func DecodeImport(data []byte) (*models.Snapshot, []string, error) {
	snap, err := DecodeDocument(data)
	if err == nil {
		return snap, nil, nil
	}
	var malformed *MalformedError
	if !errors.As(err, &malformed) {
		return nil, nil, err
	}
	if len(snap.Specimens) == 0 && len(snap.Events) == 0 {
		return nil, nil, fmt.Errorf("%w: nothing importable: %s", apperr.ErrInvalid, err.Error())
	}
	return snap, malformed.Problems, nil
}

// DecodeYAML decodes a YAML snapshot document. It goes through the JSON
// decoder so both formats recover identically.
func DecodeYAML(data []byte) (*models.Snapshot, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return emptySnapshot(), &MalformedError{Problems: []string{fmt.Sprintf("yaml: %v", err)}}
	}
	js, err := json.Marshal(doc)
	if err != nil {
		return emptySnapshot(), &MalformedError{Problems: []string{fmt.Sprintf("yaml: %v", err)}}
	}
	return Decode(js)
}

// Decode decodes a JSON snapshot document. Every top-level field is
// recovered on its own, and so is every record within the lists: a broken
// field falls back to its default and a broken record is dropped. When
// anything was dropped the error is a *MalformedError and the returned
// snapshot is still usable.
func Decode(data []byte) (*models.Snapshot, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return emptySnapshot(), &MalformedError{Problems: []string{err.Error()}}
	}
	return decodeFields(doc)
}

func emptySnapshot() *models.Snapshot {
	return &models.Snapshot{
		Specimens: []models.Specimen{},
		Events:    []models.CareEvent{},
		Settings:  models.DefaultSettings(),
	}
}

func decodeFields(doc map[string]json.RawMessage) (*models.Snapshot, error) {
	snap := emptySnapshot()
	var problems []string

	raw, ok := doc[fieldRoses]
	if !ok {
		raw, ok = doc[fieldSpecimens]
	}
	if ok {
		snap.Specimens, problems = decodeSpecimens(raw, problems)
	} else {
		problems = append(problems, "specimens: missing")
	}

	if raw, ok := doc[fieldEvents]; ok {
		snap.Events, problems = decodeEvents(raw, problems)
	} else {
		problems = append(problems, "events: missing")
	}

	if raw, ok := doc[fieldSettings]; ok {
		snap.Settings, problems = decodeSettings(raw, problems)
	} else {
		problems = append(problems, "settings: missing")
	}

	if len(problems) > 0 {
		return snap, &MalformedError{Problems: problems}
	}
	return snap, nil
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func decodeSpecimens(raw json.RawMessage, problems []string) ([]models.Specimen, []string) {
	out := []models.Specimen{}
	if isNull(raw) {
		return out, problems
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return out, append(problems, fmt.Sprintf("specimens: %v", err))
	}
	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		var s models.Specimen
		if err := json.Unmarshal(item, &s); err != nil {
			problems = append(problems, fmt.Sprintf("specimens[%d]: %v", i, err))
			continue
		}
		if strings.TrimSpace(s.Brand) == "" {
			s.Brand = models.UnknownBrand
		}
		if err := s.Validate(); err != nil {
			problems = append(problems, fmt.Sprintf("specimens[%d]: %v", i, err))
			continue
		}
		if _, dup := seen[s.ID]; dup {
			problems = append(problems, fmt.Sprintf("specimens[%d]: duplicate id %q", i, s.ID))
			continue
		}
		seen[s.ID] = struct{}{}
		out = append(out, s)
	}
	return out, problems
}

// eventRecord accepts specimenId as a spelling of roseId.
type eventRecord struct {
	models.CareEvent
	AliasSpecimenID string `json:"specimenId"`
}

func decodeEvents(raw json.RawMessage, problems []string) ([]models.CareEvent, []string) {
	out := []models.CareEvent{}
	if isNull(raw) {
		return out, problems
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return out, append(problems, fmt.Sprintf("events: %v", err))
	}
	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		var rec eventRecord
		if err := json.Unmarshal(item, &rec); err != nil {
			problems = append(problems, fmt.Sprintf("events[%d]: %v", i, err))
			continue
		}
		e := rec.CareEvent
		if e.SpecimenID == "" {
			e.SpecimenID = rec.AliasSpecimenID
		}
		if err := e.Validate(); err != nil {
			problems = append(problems, fmt.Sprintf("events[%d]: %v", i, err))
			continue
		}
		if _, dup := seen[e.ID]; dup {
			problems = append(problems, fmt.Sprintf("events[%d]: duplicate id %q", i, e.ID))
			continue
		}
		seen[e.ID] = struct{}{}
		out = append(out, e)
	}
	return out, problems
}

func decodeSettings(raw json.RawMessage, problems []string) (models.AppSettings, []string) {
	settings := models.DefaultSettings()
	if isNull(raw) {
		return settings, problems
	}
	var rec struct {
		FontSize            *models.FontSize `json:"fontSize"`
		HighContrast        *bool            `json:"highContrast"`
		HighContrastEnabled *bool            `json:"highContrastEnabled"`
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return settings, append(problems, fmt.Sprintf("settings: %v", err))
	}
	if rec.FontSize != nil {
		candidate := models.AppSettings{FontSize: *rec.FontSize}
		if err := candidate.Validate(); err != nil {
			problems = append(problems, fmt.Sprintf("settings: %v", err))
		} else {
			settings.FontSize = *rec.FontSize
		}
	}
	switch {
	case rec.HighContrast != nil:
		settings.HighContrast = *rec.HighContrast
	case rec.HighContrastEnabled != nil:
		settings.HighContrast = *rec.HighContrastEnabled
	}
	return settings, problems
}
