// Package timeline manages the contiguous run of calendar years materialised
// in the sheet and keeps the user's scroll anchor stable while it grows.
package timeline

// Config holds the fixed geometry and bounds of the sheet.
type Config struct {
	// FloorYear and CeilingYear bound scroll-driven growth.
	FloorYear   int
	CeilingYear int
	// AppendThreshold is the distance in pixels from the right edge that
	// triggers appending the next year.
	AppendThreshold float64
	// PrependThreshold is the scroll offset below which the previous year is
	// prepended.
	PrependThreshold float64
	// ColumnWidth is the width of one month column.
	ColumnWidth float64
	// SidebarWidth is the sticky row-label column on the left.
	SidebarWidth float64
}

// DefaultConfig returns the stock sheet geometry.
func DefaultConfig() Config {
	return Config{
		FloorYear:        2000,
		CeilingYear:      2035,
		AppendThreshold:  100,
		PrependThreshold: 50,
		ColumnWidth:      80,
		SidebarWidth:     260,
	}
}

// Metrics is what the rendering surface reports on every scroll.
type Metrics struct {
	Offset          float64 `json:"scrollOffset"`
	ScrollableWidth float64 `json:"scrollableWidth"`
	ViewportWidth   float64 `json:"viewportWidth"`
}

// Viewport is the rendering surface as seen by the window. SetScrollOffset
// must take effect before the next paint.
type Viewport interface {
	Metrics() Metrics
	SetScrollOffset(offset float64)
}

// Change reports what a scroll callback did to the window.
type Change struct {
	Appended  bool `json:"appended"`
	Prepended bool `json:"prepended"`
}

// anchor is the pre-prepend scroll state awaiting correction.
type anchor struct {
	width  float64
	offset float64
}

// Window owns the visible years. It is not safe for concurrent use.
type Window struct {
	cfg     Config
	years   []int
	pending *anchor
}

// New returns a window over years. A non-contiguous or empty input is
// normalised to the contiguous run spanning its extremes.
func New(cfg Config, years []int) *Window {
	w := &Window{cfg: cfg}
	w.Reset(years)
	return w
}

// Config returns the window geometry.
func (w *Window) Config() Config { return w.cfg }

// Years returns a copy of the visible years in ascending order.
func (w *Window) Years() []int {
	return append([]int(nil), w.years...)
}

// First returns the earliest visible year.
func (w *Window) First() int { return w.years[0] }

// Last returns the latest visible year.
func (w *Window) Last() int { return w.years[len(w.years)-1] }

// Contains reports whether year is materialised.
func (w *Window) Contains(year int) bool {
	return year >= w.First() && year <= w.Last()
}

// Pending reports whether a prepend is waiting for its layout correction.
func (w *Window) Pending() bool { return w.pending != nil }

// Reset replaces the window wholesale and drops any pending correction.
func (w *Window) Reset(years []int) {
	w.pending = nil
	if len(years) == 0 {
		w.years = []int{w.cfg.FloorYear}
		return
	}
	lo, hi := years[0], years[0]
	for _, y := range years {
		lo = min(lo, y)
		hi = max(hi, y)
	}
	w.years = Span(lo, hi)
}

// OnScroll applies the extension rules for one scroll callback. A prepend
// records the current width and offset; the caller must lay out the new
// year and then call Settle (or AfterLayout) before the next paint.
//
// While a prepend is pending neither edge grows, so the width delta measured
// after layout belongs to the prepended year alone.
func (w *Window) OnScroll(m Metrics) Change {
	var ch Change
	if w.pending != nil {
		return ch
	}
	if m.Offset < w.cfg.PrependThreshold && w.First() > w.cfg.FloorYear {
		w.pending = &anchor{width: m.ScrollableWidth, offset: m.Offset}
		w.years = append([]int{w.First() - 1}, w.years...)
		ch.Prepended = true
		return ch
	}
	if m.Offset+m.ViewportWidth >= m.ScrollableWidth-w.cfg.AppendThreshold && w.Last() < w.cfg.CeilingYear {
		w.years = append(w.years, w.Last()+1)
		ch.Appended = true
	}
	return ch
}

// AfterLayout is the second phase of a prepend. Given the metrics measured
// after the new year was laid out, it returns the offset that keeps the
// previous content in place. ok is false when nothing is pending or the
// layout has not absorbed the new year yet; in the latter case the
// correction stays pending so the caller can measure again.
func (w *Window) AfterLayout(m Metrics) (offset float64, ok bool) {
	if w.pending == nil || m.ScrollableWidth == w.pending.width {
		return 0, false
	}
	offset = CorrectedOffset(w.pending.offset, w.pending.width, m.ScrollableWidth)
	w.pending = nil
	return offset, true
}

// Settle measures vp and applies the pending correction, if any.
func (w *Window) Settle(vp Viewport) bool {
	offset, ok := w.AfterLayout(vp.Metrics())
	if ok {
		vp.SetScrollOffset(offset)
	}
	return ok
}

// CorrectedOffset shifts oldOffset by the growth of the scrollable width.
func CorrectedOffset(oldOffset, oldWidth, newWidth float64) float64 {
	return oldOffset + (newWidth - oldWidth)
}

// ContentWidth is the scrollable width of a sheet laid out with the
// configured geometry.
func (w *Window) ContentWidth() float64 {
	return w.cfg.SidebarWidth + float64(len(w.years)*12)*w.cfg.ColumnWidth
}

// SeekOffset returns the scroll offset that centres the (year, month) column
// in the area right of the sidebar. When that area is narrower than a
// column, the column's left edge is placed flush with the sidebar. ok is
// false when the year is not materialised or month is out of range.
func (w *Window) SeekOffset(year, month int, m Metrics) (offset float64, ok bool) {
	if !w.Contains(year) || month < 1 || month > 12 {
		return 0, false
	}
	col := float64((year-w.First())*12 + month - 1)
	left := w.cfg.SidebarWidth + col*w.cfg.ColumnWidth
	area := m.ViewportWidth - w.cfg.SidebarWidth

	offset = left - w.cfg.SidebarWidth
	if area >= w.cfg.ColumnWidth {
		offset -= (area - w.cfg.ColumnWidth) / 2
	}

	scrollable := m.ScrollableWidth
	if scrollable <= 0 {
		scrollable = w.ContentWidth()
	}
	maxOffset := max(scrollable-m.ViewportWidth, 0)
	return min(max(offset, 0), maxOffset), true
}
