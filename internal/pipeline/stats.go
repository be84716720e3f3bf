package pipeline

import "sync"

// RunStats tracks aggregate counters and byte totals across a batch run.
// Workers update it concurrently through the record methods.
type RunStats struct {
	mu sync.Mutex

	Total            int
	Converted        int // Dry runs count planned conversions here.
	Skipped          int
	Failed           int
	TotalInputBytes  int64
	TotalOutputBytes int64
}

func (s *RunStats) recordConverted(inBytes, outBytes int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Converted++
	s.TotalInputBytes += inBytes
	s.TotalOutputBytes += outBytes
}

func (s *RunStats) recordFailed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Failed++
}

func (s *RunStats) recordSkipped(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Skipped += n
}

// SpaceSaved returns the aggregate byte difference between inputs and outputs.
// Positive means outputs are smaller; negative means they grew.
func (s *RunStats) SpaceSaved() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.TotalInputBytes - s.TotalOutputBytes
}
