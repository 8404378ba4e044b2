package dump

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"
)

// discard swallows writes; backs the sinks in dry-run mode.
type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
func (discard) Close() error                { return nil }

// SinkSet fans extraction output out to one CSV file per snapshot
// timestamp. Files are created lazily on first write for their
// timestamp, so snapshots with no surviving page cost nothing.
type SinkSet struct {
	timestamps  []time.Time
	pattern     string // must contain exactly one %s, replaced by the date
	compression Compression
	header      []string
	dryRun      bool

	files   []io.WriteCloser
	writers []*csv.Writer
}

// NewSinkSet prepares a fan-out over the given timestamps. pattern is a
// printf pattern with one %s verb that receives the timestamp's
// YYYY-MM-DD date. header, if non-nil, is written as the first row of
// every created file.
func NewSinkSet(timestamps []time.Time, pattern string, compression Compression, header []string, dryRun bool) *SinkSet {
	return &SinkSet{
		timestamps:  timestamps,
		pattern:     pattern,
		compression: compression,
		header:      header,
		dryRun:      dryRun,
		files:       make([]io.WriteCloser, len(timestamps)),
		writers:     make([]*csv.Writer, len(timestamps)),
	}
}

// Write appends one row to the sink for timestamp index tsIndex.
func (s *SinkSet) Write(tsIndex int, row []string) error {
	if tsIndex < 0 || tsIndex >= len(s.writers) {
		return fmt.Errorf("sink: timestamp index %d out of range", tsIndex)
	}

	w := s.writers[tsIndex]
	if w == nil {
		var err error
		w, err = s.open(tsIndex)
		if err != nil {
			return err
		}
	}

	if err := w.Write(row); err != nil {
		return fmt.Errorf("sink: write row for %s: %w", s.date(tsIndex), err)
	}
	return nil
}

func (s *SinkSet) open(tsIndex int) (*csv.Writer, error) {
	var file io.WriteCloser
	if s.dryRun {
		file = discard{}
	} else {
		var err error
		file, err = CreateOutput(fmt.Sprintf(s.pattern, s.date(tsIndex)), s.compression)
		if err != nil {
			return nil, fmt.Errorf("sink: %w", err)
		}
	}

	w := csv.NewWriter(file)
	if s.header != nil {
		if err := w.Write(s.header); err != nil {
			file.Close()
			return nil, fmt.Errorf("sink: write header for %s: %w", s.date(tsIndex), err)
		}
	}

	s.files[tsIndex] = file
	s.writers[tsIndex] = w
	return w, nil
}

func (s *SinkSet) date(tsIndex int) string {
	return s.timestamps[tsIndex].Format("2006-01-02")
}

// Close flushes and closes every opened sink. The first error wins but
// every sink is still closed.
func (s *SinkSet) Close() error {
	var first error
	for i, w := range s.writers {
		if w == nil {
			continue
		}
		w.Flush()
		if err := w.Error(); err != nil && first == nil {
			first = fmt.Errorf("sink: flush %s: %w", s.date(i), err)
		}
		if err := s.files[i].Close(); err != nil && first == nil {
			first = fmt.Errorf("sink: close %s: %w", s.date(i), err)
		}
	}
	return first
}
