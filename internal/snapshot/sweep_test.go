package snapshot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func days(ss ...string) []time.Time {
	out := make([]time.Time, len(ss))
	for i, s := range ss {
		out[i] = day(s)
	}
	return out
}

func rev(id int64, ts string) Revision {
	return Revision{ID: id, ParentID: -1, Timestamp: day(ts)}
}

func group(pageID int64, revs ...Revision) *PageGroup {
	return &PageGroup{PageID: pageID, Title: "Page", Revisions: revs}
}

func collect(t *testing.T, g *PageGroup, ts []time.Time, onlyLast bool) []Pair {
	t.Helper()
	s, err := NewSweep(g, ts, onlyLast)
	require.NoError(t, err)
	return s.Collect()
}

func TestSweepTwoRevisions(t *testing.T) {
	// Page 42: revisions at 2015-01-10 and 2015-03-05, monthly snapshots.
	g := group(42, rev(100, "2015-01-10"), rev(101, "2015-03-05"))
	ts := days("2015-01-01", "2015-02-01", "2015-03-01", "2015-04-01")

	pairs := collect(t, g, ts, false)

	require.Len(t, pairs, 3)
	assert.Equal(t, int64(100), pairs[0].Revision.ID)
	assert.Equal(t, day("2015-02-01"), pairs[0].Timestamp)
	assert.Equal(t, int64(100), pairs[1].Revision.ID)
	assert.Equal(t, day("2015-03-01"), pairs[1].Timestamp)
	assert.Equal(t, int64(101), pairs[2].Revision.ID)
	assert.Equal(t, day("2015-04-01"), pairs[2].Timestamp)
}

func TestSweepOnlyLastRevision(t *testing.T) {
	g := group(42, rev(100, "2015-01-10"), rev(101, "2015-03-05"))
	ts := days("2015-01-01", "2015-02-01", "2015-03-01", "2015-04-01")

	pairs := collect(t, g, ts, true)

	// Only the newest revision appears, and only at timestamps at or
	// after its own.
	require.Len(t, pairs, 1)
	assert.Equal(t, int64(101), pairs[0].Revision.ID)
	assert.Equal(t, day("2015-04-01"), pairs[0].Timestamp)
}

func TestSweepSingleRevisionPage(t *testing.T) {
	g := group(7, rev(500, "2020-06-15"))
	ts := days("2020-05-01", "2020-06-01", "2020-07-01", "2020-08-01")

	pairs := collect(t, g, ts, false)

	// Emitted for every timestamp at or after its own, none before.
	require.Len(t, pairs, 2)
	for i, want := range days("2020-07-01", "2020-08-01") {
		assert.Equal(t, int64(500), pairs[i].Revision.ID)
		assert.Equal(t, want, pairs[i].Timestamp)
	}
}

func TestSweepFirstRevisionMatchesEqualTimestamp(t *testing.T) {
	// The first-revision boundary is inclusive: a revision saved exactly
	// at a snapshot instant is live at that instant.
	g := group(7, rev(500, "2020-06-01"))
	ts := days("2020-06-01", "2020-07-01")

	pairs := collect(t, g, ts, false)

	require.Len(t, pairs, 2)
	assert.Equal(t, day("2020-06-01"), pairs[0].Timestamp)
}

func TestSweepNoEmissionBeforeCreation(t *testing.T) {
	g := group(7, rev(500, "2020-06-15"))
	ts := days("2020-01-01", "2020-02-01", "2020-03-01")

	pairs := collect(t, g, ts, false)
	assert.Empty(t, pairs)
}

func TestSweepEmptyTimestampList(t *testing.T) {
	g := group(7, rev(500, "2020-06-15"))

	pairs := collect(t, g, nil, false)
	assert.Empty(t, pairs)
}

func TestSweepManyTimestampsPerRevision(t *testing.T) {
	g := group(9, rev(1, "2019-01-02"), rev(2, "2019-05-20"))
	ts := days("2019-01-01", "2019-02-01", "2019-03-01", "2019-04-01",
		"2019-05-01", "2019-06-01", "2019-07-01")

	pairs := collect(t, g, ts, false)

	require.Len(t, pairs, 6)
	// rev 1 covers Feb through May, rev 2 covers June onward.
	for _, p := range pairs[:4] {
		assert.Equal(t, int64(1), p.Revision.ID)
	}
	for _, p := range pairs[4:] {
		assert.Equal(t, int64(2), p.Revision.ID)
	}
}

func TestSweepRejectsEmptyGroup(t *testing.T) {
	_, err := NewSweep(&PageGroup{PageID: 1}, days("2020-01-01"), false)
	assert.ErrorIs(t, err, ErrEmptyPageGroup)

	_, err = NewSweep(nil, days("2020-01-01"), false)
	assert.ErrorIs(t, err, ErrEmptyPageGroup)
}

func TestSweepRejectsUnorderedTimestamps(t *testing.T) {
	g := group(7, rev(500, "2020-06-15"))

	_, err := NewSweep(g, days("2020-02-01", "2020-01-01"), false)
	assert.ErrorIs(t, err, ErrUnorderedTimestamps)

	// Equal timestamps are not strictly increasing either.
	_, err = NewSweep(g, days("2020-01-01", "2020-01-01"), false)
	assert.ErrorIs(t, err, ErrUnorderedTimestamps)
}

func TestSweepMonotonicAndAtMostOnePerSlot(t *testing.T) {
	g := group(3,
		rev(1, "2010-03-14"),
		rev(2, "2010-03-14"), // same-day edit
		rev(3, "2011-11-02"),
		rev(4, "2014-07-30"),
	)
	ts := Timestamps(Monthly, WikiEpoch, day("2015-01-01"))

	pairs := collect(t, g, ts, false)
	require.NotEmpty(t, pairs)

	seen := map[time.Time]int{}
	for i := 1; i < len(pairs); i++ {
		assert.True(t, pairs[i].Timestamp.After(pairs[i-1].Timestamp),
			"pair timestamps must be increasing")
	}
	for _, p := range pairs {
		seen[p.Timestamp]++
		assert.LessOrEqual(t, seen[p.Timestamp], 1, "at most one revision per snapshot")
	}
}

func TestSweepCoverage(t *testing.T) {
	// For every snapshot at or after the first revision, exactly one
	// revision is emitted: the newest one at or before the snapshot.
	revs := []Revision{
		rev(1, "2010-03-14"),
		rev(2, "2011-11-02"),
		rev(3, "2014-07-30"),
	}
	g := group(3, revs...)
	ts := Timestamps(Yearly, WikiEpoch, day("2018-01-01"))

	pairs := collect(t, g, ts, false)

	byTS := map[time.Time]*Revision{}
	for _, p := range pairs {
		byTS[p.Timestamp] = p.Revision
	}

	for _, instant := range ts {
		var want *Revision
		for i := range revs {
			if !revs[i].Timestamp.After(instant) {
				want = &revs[i]
			}
		}
		got := byTS[instant]
		if want == nil {
			assert.Nil(t, got, "no emission before page creation at %s", instant)
			continue
		}
		require.NotNil(t, got, "expected a revision at %s", instant)
		assert.Equal(t, want.ID, got.ID, "wrong revision at %s", instant)
	}
}

func TestSweepIdempotent(t *testing.T) {
	g := group(5, rev(1, "2005-02-28"), rev(2, "2009-12-31"), rev(3, "2013-06-01"))
	ts := Timestamps(Yearly, WikiEpoch, day("2015-01-01"))

	first := collect(t, g, ts, false)
	second := collect(t, g, ts, false)
	assert.Equal(t, first, second)
}

func TestSweepLinearPointerProgress(t *testing.T) {
	// Both pointers only move forward: the pair count can never exceed
	// the timestamp count regardless of revision count.
	revs := make([]Revision, 0, 100)
	base := day("2008-01-01")
	for i := 0; i < 100; i++ {
		revs = append(revs, Revision{ID: int64(i), ParentID: -1, Timestamp: base.AddDate(0, 0, i)})
	}
	ts := days("2008-02-01", "2008-03-01")

	pairs := collect(t, group(1, revs...), ts, false)
	assert.Len(t, pairs, 2)
}
