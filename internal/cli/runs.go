package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	gojson "github.com/goccy/go-json"

	"github.com/runnerr0/wikisnap/internal/catalog"
)

// runJSON is the JSON output structure for one catalog run.
type runJSON struct {
	ID          int64  `json:"id"`
	InputFile   string `json:"input_file"`
	InputHash   string `json:"input_hash,omitempty"`
	Periodicity string `json:"periodicity"`
	OnlyLast    bool   `json:"only_last_revision"`
	Timestamps  int    `json:"timestamps"`
	Pages       int64  `json:"pages"`
	Revisions   int64  `json:"revisions"`
	Skipped     int64  `json:"skipped"`
	Pairs       int64  `json:"pairs"`
	StartedAt   string `json:"started_at"`
	FinishedAt  string `json:"finished_at,omitempty"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
}

type summaryJSON struct {
	TotalRuns      int64  `json:"total_runs"`
	CompletedRuns  int64  `json:"completed_runs"`
	FailedRuns     int64  `json:"failed_runs"`
	TotalPages     int64  `json:"total_pages"`
	TotalRevisions int64  `json:"total_revisions"`
	TotalPairs     int64  `json:"total_pairs"`
	LastRun        string `json:"last_run,omitempty"`
}

// Execute implements the go-flags Commander interface for RunsCommand.
func (c *RunsCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store, db, err := openCatalog(cfg)
	if err != nil {
		return fmt.Errorf("opening catalog: %w", err)
	}
	defer db.Close()
	defer store.Close()

	return c.executeWithStore(store)
}

// executeWithStore runs the listing against a provided store (used by tests).
func (c *RunsCommand) executeWithStore(store catalog.Store) error {
	ctx := context.Background()

	if c.Summary {
		sum, err := store.GetSummary(ctx)
		if err != nil {
			return err
		}
		return c.printSummary(sum)
	}

	var runs []catalog.Run
	var err error
	if c.Hash != "" {
		runs, err = store.RunsForHash(ctx, c.Hash)
	} else {
		runs, err = store.ListRuns(ctx, c.Limit)
	}
	if err != nil {
		return err
	}

	if c.globals != nil && c.globals.JSON {
		return c.printRunsJSON(runs)
	}
	return c.printRunsHuman(runs)
}

func (c *RunsCommand) printRunsHuman(runs []catalog.Run) error {
	if len(runs) == 0 {
		fmt.Println("No extraction runs recorded.")
		return nil
	}

	for _, r := range runs {
		fmt.Printf("#%d  %s  [%s]\n", r.ID, r.InputFile, r.Status)
		fmt.Printf("    periodicity %s, %d timestamps", r.Periodicity, r.Timestamps)
		if r.OnlyLast {
			fmt.Printf(", only last revision")
		}
		fmt.Println()
		fmt.Printf("    pages %s, revisions %s, pairs %s",
			formatNumber(r.Pages), formatNumber(r.Revisions), formatNumber(r.Pairs))
		if r.Skipped > 0 {
			fmt.Printf(", skipped %s", formatNumber(r.Skipped))
		}
		fmt.Println()
		fmt.Printf("    started %s", r.StartedAt.Local().Format("2006-01-02 15:04:05"))
		if !r.FinishedAt.IsZero() {
			fmt.Printf(", took %s", r.FinishedAt.Sub(r.StartedAt).Round(time.Second))
		}
		fmt.Println()
		if r.Error != "" {
			fmt.Printf("    error: %s\n", r.Error)
		}
	}
	return nil
}

func (c *RunsCommand) printRunsJSON(runs []catalog.Run) error {
	out := make([]runJSON, 0, len(runs))
	for _, r := range runs {
		j := runJSON{
			ID:          r.ID,
			InputFile:   r.InputFile,
			InputHash:   r.InputHash,
			Periodicity: r.Periodicity,
			OnlyLast:    r.OnlyLast,
			Timestamps:  r.Timestamps,
			Pages:       r.Pages,
			Revisions:   r.Revisions,
			Skipped:     r.Skipped,
			Pairs:       r.Pairs,
			StartedAt:   r.StartedAt.UTC().Format(time.RFC3339),
			Status:      r.Status,
			Error:       r.Error,
		}
		if !r.FinishedAt.IsZero() {
			j.FinishedAt = r.FinishedAt.UTC().Format(time.RFC3339)
		}
		out = append(out, j)
	}

	enc := gojson.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func (c *RunsCommand) printSummary(sum *catalog.Summary) error {
	if c.globals != nil && c.globals.JSON {
		j := summaryJSON{
			TotalRuns:      sum.TotalRuns,
			CompletedRuns:  sum.CompletedRuns,
			FailedRuns:     sum.FailedRuns,
			TotalPages:     sum.TotalPages,
			TotalRevisions: sum.TotalRevisions,
			TotalPairs:     sum.TotalPairs,
		}
		if !sum.LastRun.IsZero() {
			j.LastRun = sum.LastRun.UTC().Format(time.RFC3339)
		}
		enc := gojson.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(j)
	}

	fmt.Println("Catalog Summary")
	fmt.Println("===============")
	fmt.Printf("Runs:       %s (%s completed, %s failed)\n",
		formatNumber(sum.TotalRuns), formatNumber(sum.CompletedRuns), formatNumber(sum.FailedRuns))
	fmt.Printf("Pages:      %s\n", formatNumber(sum.TotalPages))
	fmt.Printf("Revisions:  %s\n", formatNumber(sum.TotalRevisions))
	fmt.Printf("Pairs:      %s\n", formatNumber(sum.TotalPairs))
	if !sum.LastRun.IsZero() {
		fmt.Printf("Last run:   %s\n", sum.LastRun.Local().Format("2006-01-02 15:04:05"))
	}
	return nil
}
