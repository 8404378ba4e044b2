package snapshot

import "time"

// Revision is one recorded edit of a page. Fields carries the raw input
// row so passthrough columns survive to the output untouched.
type Revision struct {
	ID        int64
	ParentID  int64 // -1 when the revision has no parent
	Timestamp time.Time
	Fields    []string
}

// PageGroup holds every revision of one page, sorted by timestamp.
// A group is immutable once handed out by the GroupReader.
type PageGroup struct {
	PageID    int64
	Title     string
	Revisions []Revision
}

// Pair is one (revision, snapshot timestamp) assignment: the revision was
// the page's live state as of Timestamp. TsIndex is the position of
// Timestamp in the global timestamp list, used to select the output sink.
type Pair struct {
	Revision  *Revision
	Timestamp time.Time
	TsIndex   int
}

// Columns maps the caller-declared field order of the input rows to the
// positions the reader needs. Any column set to -1 is treated as absent.
type Columns struct {
	PageID       int
	PageTitle    int
	RevID        int
	RevParentID  int
	RevTimestamp int
}

// DefaultColumns matches the canonical dump export header:
// page_id, page_title, revision_id, revision_parent_id,
// revision_timestamp, user_type, user_username, user_id, revision_minor.
func DefaultColumns() Columns {
	return Columns{
		PageID:       0,
		PageTitle:    1,
		RevID:        2,
		RevParentID:  3,
		RevTimestamp: 4,
	}
}

// minWidth is the number of fields a row must have to cover the mapped
// columns.
func (c Columns) minWidth() int {
	w := 0
	for _, idx := range []int{c.PageID, c.PageTitle, c.RevID, c.RevParentID, c.RevTimestamp} {
		if idx+1 > w {
			w = idx + 1
		}
	}
	return w
}
