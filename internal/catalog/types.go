package catalog

import "time"

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Run is one extraction run over one input file.
type Run struct {
	ID          int64
	InputFile   string
	InputHash   string // xxh3-64 fingerprint of the input file, hex
	Periodicity string
	OnlyLast    bool
	Timestamps  int
	Pages       int64
	Revisions   int64
	Skipped     int64
	Pairs       int64
	StartedAt   time.Time
	FinishedAt  time.Time
	Status      string
	Error       string
}

// Summary holds aggregate statistics about the run catalog.
type Summary struct {
	TotalRuns      int64
	CompletedRuns  int64
	FailedRuns     int64
	TotalPages     int64
	TotalRevisions int64
	TotalPairs     int64
	LastRun        time.Time
}
