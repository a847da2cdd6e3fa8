package gardenservice

import (
	"context"
	"fmt"

	"github.com/starford/rosarium/internal/apperr"
	"github.com/starford/rosarium/internal/garden"
	"github.com/starford/rosarium/internal/grid"
	"github.com/starford/rosarium/internal/timeline"
)

// Sheet is the projected grid plus the layout facts a client needs to size
// its scroll area.
type Sheet struct {
	grid.ViewModel
	ContentWidth float64 `json:"contentWidth"`
	ColumnWidth  float64 `json:"columnWidth"`
	SidebarWidth float64 `json:"sidebarWidth"`
	Pending      bool    `json:"pendingCorrection"`
}

// ScrollResult reports what a scroll callback did to the window.
type ScrollResult struct {
	timeline.Change
	Years        []int   `json:"years"`
	ContentWidth float64 `json:"contentWidth"`
	Pending      bool    `json:"pendingCorrection"`
}

// Correction is the offset to apply after a prepend has been laid out.
type Correction struct {
	Offset  float64 `json:"scrollOffset"`
	Apply   bool    `json:"apply"`
	Pending bool    `json:"pendingCorrection"`
}

// Sheet projects the garden over the current window. Chips are ordered by
// date, earliest first.
func (s *Service) Sheet(_ context.Context) Sheet {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := s.window.Config()
	return Sheet{
		ViewModel:    s.projector.Project(s.store.Specimens(), s.store.Events(), s.window.Years(), garden.Ascending),
		ContentWidth: s.window.ContentWidth(),
		ColumnWidth:  cfg.ColumnWidth,
		SidebarWidth: cfg.SidebarWidth,
		Pending:      s.window.Pending(),
	}
}

// Years returns the current window.
func (s *Service) Years(_ context.Context) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window.Years()
}

// Scroll feeds a scroll callback to the window.
func (s *Service) Scroll(_ context.Context, m timeline.Metrics) ScrollResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := s.window.OnScroll(m)
	return ScrollResult{
		Change:       ch,
		Years:        s.window.Years(),
		ContentWidth: s.window.ContentWidth(),
		Pending:      s.window.Pending(),
	}
}

// Layout reports the new extent after the client re-rendered. When a prepend
// is pending and the extent has grown, the corrected offset is returned and
// the correction is consumed.
func (s *Service) Layout(_ context.Context, m timeline.Metrics) Correction {
	s.mu.Lock()
	defer s.mu.Unlock()
	offset, ok := s.window.AfterLayout(m)
	return Correction{Offset: offset, Apply: ok, Pending: s.window.Pending()}
}

// Seek returns the offset that brings a month column into view.
func (s *Service) Seek(_ context.Context, year, month int, m timeline.Metrics) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	offset, ok := s.window.SeekOffset(year, month, m)
	if !ok {
		return 0, fmt.Errorf("%w: %04d-%02d is not in the window", apperr.ErrInvalid, year, month)
	}
	return offset, nil
}

// ResetWindow rebuilds the window from the data, widened to targetYear when
// it is non-zero.
func (s *Service) ResetWindow(_ context.Context, targetYear int) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.window.Reset(s.initialYears(targetYear))
	return s.window.Years()
}
