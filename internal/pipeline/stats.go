package pipeline

// RunStats tracks aggregate counters and byte totals across a batch run.
type RunStats struct {
	Total         int
	Current       int
	Reported      int
	Failed        int
	TotalCBRBytes int64
	TotalVBRBytes int64
}

// Saved returns the aggregate byte difference between the CBR and VBR
// outputs. Positive means VBR was smaller overall.
func (s *RunStats) Saved() int64 {
	return s.TotalCBRBytes - s.TotalVBRBytes
}

func (s *RunStats) add(cbr, vbr int64) {
	s.Reported++
	s.TotalCBRBytes += cbr
	s.TotalVBRBytes += vbr
}
