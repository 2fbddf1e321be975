package index

// Stats summarizes how points are spread over grid cells.
type Stats struct {
	Entries       int
	Cells         int // distinct non-empty cells
	MaxOccupancy  int
	MeanOccupancy float64
}

// Stats walks the index once and returns its cell occupancy.
func (x *Index) Stats() Stats {
	s := Stats{Entries: len(x.codes)}
	for lo := 0; lo < len(x.codes); {
		hi := lo + 1
		for hi < len(x.codes) && x.codes[hi] == x.codes[lo] {
			hi++
		}
		s.Cells++
		s.MaxOccupancy = max(s.MaxOccupancy, hi-lo)
		lo = hi
	}
	if s.Cells > 0 {
		s.MeanOccupancy = float64(s.Entries) / float64(s.Cells)
	}
	return s
}
