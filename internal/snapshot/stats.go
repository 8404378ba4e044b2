package snapshot

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"
)

// Stats accumulates the observational counters of one extraction run.
// The reader and the driver increment it; it never influences outputs.
type Stats struct {
	StartTime         time.Time
	EndTime           time.Time
	PagesAnalyzed     int64
	RevisionsAnalyzed int64
	RecordsSkipped    int64
	PairsEmitted      int64
}

// Merge folds counters from another run into s. Time bounds widen to
// cover both runs. Used when multiple input files run in parallel.
func (s *Stats) Merge(other *Stats) {
	s.PagesAnalyzed += other.PagesAnalyzed
	s.RevisionsAnalyzed += other.RevisionsAnalyzed
	s.RecordsSkipped += other.RecordsSkipped
	s.PairsEmitted += other.PairsEmitted
	if s.StartTime.IsZero() || (!other.StartTime.IsZero() && other.StartTime.Before(s.StartTime)) {
		s.StartTime = other.StartTime
	}
	if other.EndTime.After(s.EndTime) {
		s.EndTime = other.EndTime
	}
}

type statsXML struct {
	XMLName     xml.Name       `xml:"stats"`
	Performance performanceXML `xml:"performance"`
}

type performanceXML struct {
	StartTime string        `xml:"start_time"`
	EndTime   string        `xml:"end_time"`
	Input     statsInputXML `xml:"input"`
}

type statsInputXML struct {
	PagesAnalyzed     int64 `xml:"pages_analyzed"`
	RevisionsAnalyzed int64 `xml:"revisions_analyzed"`
	RecordsSkipped    int64 `xml:"records_skipped"`
	PairsEmitted      int64 `xml:"pairs_emitted"`
}

// WriteXML renders the stats report for one input file.
func (s *Stats) WriteXML(w io.Writer) error {
	doc := statsXML{
		Performance: performanceXML{
			StartTime: s.StartTime.UTC().Format(time.RFC3339),
			EndTime:   s.EndTime.UTC().Format(time.RFC3339),
			Input: statsInputXML{
				PagesAnalyzed:     s.PagesAnalyzed,
				RevisionsAnalyzed: s.RevisionsAnalyzed,
				RecordsSkipped:    s.RecordsSkipped,
				PairsEmitted:      s.PairsEmitted,
			},
		},
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("write stats header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "    ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}
