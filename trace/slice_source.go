package trace

// SliceSource replays a fixed, in-memory sequence of records. It is the
// trace source used by tests and by hand-written scenario traces, where
// the exact op/dest/src shape of each instruction matters more than
// where it came from.
type SliceSource struct {
	records []Record
	pos     int
}

// NewSliceSource wraps records for replay in order.
func NewSliceSource(records []Record) *SliceSource {
	return &SliceSource{records: records}
}

// Next implements tomasulo.Source.
func (s *SliceSource) Next() (Record, bool) {
	if s.pos >= len(s.records) {
		return Record{}, false
	}
	rec := s.records[s.pos]
	s.pos++
	return rec, true
}

// Len reports the total number of instructions in the trace.
func (s *SliceSource) Len() int { return len(s.records) }
