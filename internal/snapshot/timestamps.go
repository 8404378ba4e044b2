package snapshot

import (
	"fmt"
	"time"
)

// WikiEpoch is the birth date of the encyclopedia; the first snapshot
// instant of every periodicity.
var WikiEpoch = time.Date(2001, 1, 15, 0, 0, 0, 0, time.UTC)

// Periodicity is the spacing between consecutive snapshot instants.
type Periodicity string

const (
	Daily   Periodicity = "d"
	Weekly  Periodicity = "w"
	Monthly Periodicity = "M"
	Yearly  Periodicity = "y"
)

// ParsePeriodicity validates a periodicity flag value.
func ParsePeriodicity(s string) (Periodicity, error) {
	switch Periodicity(s) {
	case Daily, Weekly, Monthly, Yearly:
		return Periodicity(s), nil
	}
	return "", fmt.Errorf("invalid periodicity %q (use d, w, M or y)", s)
}

func (p Periodicity) String() string { return string(p) }

// add returns epoch advanced by k periods.
func (p Periodicity) add(epoch time.Time, k int) time.Time {
	switch p {
	case Daily:
		return epoch.AddDate(0, 0, k)
	case Weekly:
		return epoch.AddDate(0, 0, 7*k)
	case Monthly:
		return epoch.AddDate(0, k, 0)
	case Yearly:
		return epoch.AddDate(k, 0, 0)
	}
	panic(fmt.Sprintf("unknown periodicity %q", string(p)))
}

// Bound derives the end of the snapshot range from the dump's own date: a
// two-day safety margin (the dump may contain revisions saved while it
// was being produced), minus one second to stay clear of midnight, plus
// one extra period.
func (p Periodicity) Bound(dumpDate time.Time) time.Time {
	margin := dumpDate.AddDate(0, 0, 2).Add(-time.Second)
	return p.add(margin, 1)
}

// Timestamps produces the strictly increasing snapshot instants
// epoch + k*period for k = 0, 1, 2, ... up to and including end. The
// slice is computed once per input file and shared, read-only, by every
// per-page sweep.
func Timestamps(p Periodicity, epoch, end time.Time) []time.Time {
	var out []time.Time
	for k := 0; ; k++ {
		t := p.add(epoch, k)
		if t.After(end) {
			return out
		}
		out = append(out, t)
	}
}
