package timeline

// Seed describes what the first window must cover.
type Seed struct {
	CurrentYear int
	// DataFirst and DataLast span the years present in stored events; they
	// are ignored unless HasData is set.
	DataFirst int
	DataLast  int
	HasData   bool
	// TargetYear, when non-zero, is a focus year handed over by batch entry.
	TargetYear int
}

// InitialYears returns the contiguous run covering the current year and the
// next, widened to the stored data and the target year.
func InitialYears(s Seed) []int {
	lo, hi := s.CurrentYear, s.CurrentYear+1
	if s.HasData {
		lo = min(lo, s.DataFirst)
		hi = max(hi, s.DataLast)
	}
	if s.TargetYear != 0 {
		lo = min(lo, s.TargetYear)
		hi = max(hi, s.TargetYear)
	}
	return Span(lo, hi)
}

// Span returns the years lo..hi inclusive.
func Span(lo, hi int) []int {
	if hi < lo {
		lo, hi = hi, lo
	}
	out := make([]int, 0, hi-lo+1)
	for y := lo; y <= hi; y++ {
		out = append(out, y)
	}
	return out
}
