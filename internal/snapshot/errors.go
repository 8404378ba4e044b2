package snapshot

import (
	"errors"
	"fmt"
)

// ErrEmptyPageGroup indicates a page group with no revisions was handed to
// the sweep. The reader never produces one; hitting this is a programming
// error, not bad input.
var ErrEmptyPageGroup = errors.New("empty page group")

// ErrUnorderedTimestamps indicates the snapshot timestamp list is not
// strictly increasing. The sweep validates this once at construction and
// refuses to run rather than produce silently wrong assignments.
var ErrUnorderedTimestamps = errors.New("snapshot timestamps not strictly increasing")

// MalformedRecordError reports an input row that could not be parsed into
// a revision. Line is 1-based and counts rows as delivered by the source
// (the header, if any, is consumed before the reader sees the stream).
type MalformedRecordError struct {
	Line   int
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record at line %d: %s", e.Line, e.Reason)
}
