package snapshot

import (
	"fmt"
	"time"
)

// Sweep assigns one page's sorted revisions to snapshot timestamps: for
// each timestamp T, the revision with the greatest timestamp <= T is the
// page's state "as of" T. A page with no revision at or before T simply
// does not exist yet and produces nothing.
//
// It is a two-pointer merge over two ascending sequences. j walks the
// revisions, i walks the timestamps, and prev is the revision believed
// current as of the last examined instant (nil while the page does not
// exist yet). Both pointers only move forward, so the whole sweep is
// O(revisions + timestamps) and the emitted pairs are non-decreasing in
// snapshot timestamp.
type Sweep struct {
	revs       []Revision
	timestamps []time.Time

	i    int
	j    int
	prev *Revision
}

// NewSweep validates its inputs once and prepares the sweep. The
// timestamp list must be strictly increasing and must not be mutated for
// the lifetime of the sweep. The group must hold at least one revision;
// the reader guarantees that, so an empty group is a programming error.
//
// With onlyLast set, the sweep skips the merge entirely: the single most
// recent revision is paired with every timestamp at or after its own.
func NewSweep(group *PageGroup, timestamps []time.Time, onlyLast bool) (*Sweep, error) {
	if group == nil || len(group.Revisions) == 0 {
		return nil, ErrEmptyPageGroup
	}
	for i := 1; i < len(timestamps); i++ {
		if !timestamps[i].After(timestamps[i-1]) {
			return nil, fmt.Errorf("%w: index %d", ErrUnorderedTimestamps, i)
		}
	}

	s := &Sweep{revs: group.Revisions, timestamps: timestamps}
	if onlyLast {
		s.j = len(s.revs)
		s.prev = &s.revs[len(s.revs)-1]
	}
	return s, nil
}

// Next produces the next (revision, timestamp) pair, or ok=false when the
// timestamp sequence is exhausted. Pairs come out in strictly increasing
// snapshot-timestamp order; the same revision may satisfy several
// consecutive timestamps.
func (s *Sweep) Next() (Pair, bool) {
	for s.i < len(s.timestamps) {
		ts := s.timestamps[s.i]

		if s.j >= len(s.revs) {
			// No revision can supersede prev anymore: it is current for
			// every remaining timestamp at or after its own.
			if s.prev == nil || s.prev.Timestamp.After(ts) {
				s.i++
				continue
			}
			idx := s.i
			s.i++
			return Pair{Revision: s.prev, Timestamp: ts, TsIndex: idx}, true
		}

		cur := &s.revs[s.j]

		if s.prev == nil {
			if cur.Timestamp.After(ts) {
				// Page not created yet at ts.
				s.i++
				continue
			}
			// cur became the page's first live revision at or before ts.
			s.prev = cur
			s.j++
			continue
		}

		if s.prev.Timestamp.After(ts) {
			// ts predates prev's creation. Cannot happen with a strictly
			// increasing timestamp list, but the policy is to move i
			// forward, never a revision pointer backward.
			s.i++
			continue
		}

		if cur.Timestamp.After(ts) {
			// prev is still current as of ts.
			idx := s.i
			s.i++
			return Pair{Revision: s.prev, Timestamp: ts, TsIndex: idx}, true
		}

		// cur supersedes prev at or before ts; re-evaluate the same ts
		// against the next candidate.
		s.prev = cur
		s.j++
	}
	return Pair{}, false
}

// Collect drains the sweep into a slice. Convenience for callers that do
// not need laziness (the per-page output is bounded by the timestamp
// count).
func (s *Sweep) Collect() []Pair {
	var pairs []Pair
	for {
		p, ok := s.Next()
		if !ok {
			return pairs
		}
		pairs = append(pairs, p)
	}
}
