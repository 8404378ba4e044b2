package snapshot

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"
)

// RowReader is the slice of encoding/csv.Reader the GroupReader needs:
// one delimited record per call, io.EOF at end of stream.
type RowReader interface {
	Read() ([]string, error)
}

// ParseErrorPolicy controls what the reader does with a row it cannot
// parse.
type ParseErrorPolicy int

const (
	// AbortOnError stops the whole read with a MalformedRecordError.
	// Silent corruption is worse than a loud early stop for batch runs.
	AbortOnError ParseErrorPolicy = iota

	// SkipOnError drops the bad row, counts it, and keeps reading.
	SkipOnError
)

// timestampLayouts are tried in order when parsing revision timestamps.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// GroupReader turns a stream of delimited rows into a sequence of
// per-page revision groups. Rows of one page must be contiguous in the
// input; their order within the page is not trusted. The reader buffers
// exactly one open group at a time, so memory stays bounded no matter
// how large the dump is.
//
// The reader is a single forward pass: it is finite and not restartable.
type GroupReader struct {
	src    RowReader
	cols   Columns
	policy ParseErrorPolicy
	stats  *Stats

	line    int
	open    *PageGroup
	done    bool
	lastErr error
}

// NewGroupReader wraps src. stats may be nil if no counters are wanted.
func NewGroupReader(src RowReader, cols Columns, policy ParseErrorPolicy, stats *Stats) *GroupReader {
	return &GroupReader{src: src, cols: cols, policy: policy, stats: stats}
}

// Next returns the next complete page group, sorted by revision
// timestamp (stable: equal timestamps keep arrival order). It returns
// io.EOF once the input is exhausted. After any non-nil error the reader
// is spent.
func (r *GroupReader) Next() (*PageGroup, error) {
	if r.lastErr != nil {
		return nil, r.lastErr
	}
	if r.done {
		r.lastErr = io.EOF
		return nil, io.EOF
	}

	for {
		row, err := r.src.Read()
		if err == io.EOF {
			r.done = true
			if r.open != nil {
				g := r.finish()
				return g, nil
			}
			r.lastErr = io.EOF
			return nil, io.EOF
		}
		if err != nil {
			var perr *csv.ParseError
			if !errors.As(err, &perr) {
				// The source itself failed (truncated or corrupt
				// stream). Skipping would retry the same error forever,
				// so this aborts regardless of policy.
				r.lastErr = fmt.Errorf("reading input: %w", err)
				return nil, r.lastErr
			}
			// The csv layer rejected one record (bad quoting, wrong
			// field count). Treated the same as a field-level parse
			// failure.
			r.line++
			if r.policy == SkipOnError {
				r.countSkip()
				continue
			}
			r.lastErr = &MalformedRecordError{Line: r.line, Reason: err.Error()}
			return nil, r.lastErr
		}

		r.line++
		pageID, title, rev, perr := r.parseRow(row)
		if perr != nil {
			if r.policy == SkipOnError {
				r.countSkip()
				continue
			}
			r.lastErr = perr
			return nil, perr
		}

		if r.stats != nil {
			r.stats.RevisionsAnalyzed++
		}

		if r.open == nil {
			r.startGroup(pageID, title, rev)
			continue
		}
		if r.open.PageID == pageID {
			r.open.Revisions = append(r.open.Revisions, rev)
			continue
		}

		// Page boundary: the open group is complete. Sort it, hand it
		// out, and start accumulating the new page.
		g := r.finish()
		r.startGroup(pageID, title, rev)
		return g, nil
	}
}

func (r *GroupReader) startGroup(pageID int64, title string, rev Revision) {
	r.open = &PageGroup{
		PageID:    pageID,
		Title:     title,
		Revisions: []Revision{rev},
	}
	if r.stats != nil {
		r.stats.PagesAnalyzed++
	}
}

// finish seals the open group: sorts revisions by timestamp (stable, so
// ties keep arrival order) and detaches it from the reader.
func (r *GroupReader) finish() *PageGroup {
	g := r.open
	r.open = nil
	sort.SliceStable(g.Revisions, func(i, j int) bool {
		return g.Revisions[i].Timestamp.Before(g.Revisions[j].Timestamp)
	})
	return g
}

func (r *GroupReader) countSkip() {
	if r.stats != nil {
		r.stats.RecordsSkipped++
	}
}

func (r *GroupReader) parseRow(row []string) (int64, string, Revision, error) {
	if len(row) < r.cols.minWidth() {
		return 0, "", Revision{}, &MalformedRecordError{
			Line:   r.line,
			Reason: fmt.Sprintf("got %d fields, need at least %d", len(row), r.cols.minWidth()),
		}
	}

	pageID, err := strconv.ParseInt(row[r.cols.PageID], 10, 64)
	if err != nil {
		return 0, "", Revision{}, &MalformedRecordError{
			Line:   r.line,
			Reason: fmt.Sprintf("bad page id %q", row[r.cols.PageID]),
		}
	}

	revID, err := strconv.ParseInt(row[r.cols.RevID], 10, 64)
	if err != nil {
		return 0, "", Revision{}, &MalformedRecordError{
			Line:   r.line,
			Reason: fmt.Sprintf("bad revision id %q", row[r.cols.RevID]),
		}
	}

	// A first revision has no parent; the dump leaves the field empty.
	parentID := int64(-1)
	if raw := row[r.cols.RevParentID]; raw != "" {
		parentID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, "", Revision{}, &MalformedRecordError{
				Line:   r.line,
				Reason: fmt.Sprintf("bad revision parent id %q", raw),
			}
		}
	}

	ts, err := parseTimestamp(row[r.cols.RevTimestamp])
	if err != nil {
		return 0, "", Revision{}, &MalformedRecordError{
			Line:   r.line,
			Reason: fmt.Sprintf("bad revision timestamp %q", row[r.cols.RevTimestamp]),
		}
	}

	title := ""
	if r.cols.PageTitle >= 0 {
		title = row[r.cols.PageTitle]
	}

	fields := make([]string, len(row))
	copy(fields, row)

	return pageID, title, Revision{
		ID:        revID,
		ParentID:  parentID,
		Timestamp: ts,
		Fields:    fields,
	}, nil
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
