package cli

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/runnerr0/wikisnap/internal/catalog"
	"github.com/runnerr0/wikisnap/internal/config"
	"github.com/runnerr0/wikisnap/internal/dump"
	"github.com/runnerr0/wikisnap/internal/snapshot"
)

// outputHeader is the column set written to every snapshot file.
var outputHeader = []string{
	"page_id",
	"page_title",
	"revision_id",
	"revision_parent_id",
	"revision_timestamp",
}

// extractParams is the fully resolved configuration of one extract
// invocation: flags override config file values, which override defaults.
type extractParams struct {
	periodicity snapshot.Periodicity
	lastDate    time.Time // zero: infer from each input filename
	skipHeader  bool
	onlyLast    bool
	policy      snapshot.ParseErrorPolicy
	outDir      string
	compression dump.Compression
	dryRun      bool
	parallel    int
}

// Execute implements the go-flags Commander interface for ExtractCommand.
func (c *ExtractCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	params, err := c.resolveParams(cfg)
	if err != nil {
		return err
	}

	var store catalog.Store
	if !c.NoCatalog && !params.dryRun {
		s, db, err := openCatalog(cfg)
		if err != nil {
			return fmt.Errorf("opening catalog: %w", err)
		}
		defer db.Close()
		defer s.Close()
		store = s
	}

	totals := &snapshot.Stats{}
	var mu sync.Mutex

	// Each input file is an independent pipeline; the only shared state
	// is the additive stats merge and the catalog.
	var g errgroup.Group
	g.SetLimit(params.parallel)

	for _, path := range c.Args.Files {
		path := path
		g.Go(func() error {
			logf(c.globals, "analyzing %s", path)
			stats, err := c.extractFile(path, params, store)
			if stats != nil {
				mu.Lock()
				totals.Merge(stats)
				mu.Unlock()
			}
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Printf("Processed %s pages, %s revisions; emitted %s snapshot rows",
		formatNumber(totals.PagesAnalyzed),
		formatNumber(totals.RevisionsAnalyzed),
		formatNumber(totals.PairsEmitted))
	if totals.RecordsSkipped > 0 {
		fmt.Printf(" (%s malformed rows skipped)", formatNumber(totals.RecordsSkipped))
	}
	fmt.Println()
	return nil
}

func (c *ExtractCommand) resolveParams(cfg *config.Config) (extractParams, error) {
	p := extractParams{
		skipHeader: c.SkipHeader || cfg.Extract.SkipHeader,
		onlyLast:   c.OnlyLastRevision,
		dryRun:     c.globals.DryRun,
	}

	perStr := cfg.Extract.Periodicity
	if c.Periodicity != "" {
		perStr = c.Periodicity
	}
	per, err := snapshot.ParsePeriodicity(perStr)
	if err != nil {
		return extractParams{}, err
	}
	p.periodicity = per

	if c.LastDate != "" {
		p.lastDate, err = parseDate(c.LastDate)
		if err != nil {
			return extractParams{}, err
		}
	}

	policyStr := cfg.Extract.OnParseError
	if c.OnParseError != "" {
		policyStr = c.OnParseError
	}
	switch policyStr {
	case "abort", "":
		p.policy = snapshot.AbortOnError
	case "skip":
		p.policy = snapshot.SkipOnError
	default:
		return extractParams{}, fmt.Errorf("invalid --on-parse-error %q (use abort or skip)", policyStr)
	}

	p.outDir = cfg.Output.Dir
	if c.globals.OutputDir != "" {
		p.outDir = c.globals.OutputDir
	}

	compStr := cfg.Output.Compression
	if c.globals.OutputCompression != "" {
		compStr = c.globals.OutputCompression
	}
	p.compression, err = dump.ParseCompression(compStr)
	if err != nil {
		return extractParams{}, err
	}

	p.parallel = cfg.Extract.Parallel
	if c.Parallel > 0 {
		p.parallel = c.Parallel
	}
	if p.parallel < 1 {
		p.parallel = 1
	}

	return p, nil
}

// parseDate accepts the dump's compact YYYYMMDD form and plain
// YYYY-MM-DD.
func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "20060102"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD)", s)
}

// extractFile runs the full pipeline for one input file: open and
// decompress, group revisions per page, sweep each group against the
// snapshot timestamps, fan pairs out to per-timestamp sinks, and write
// the stats report. It records the run in the catalog when store is
// non-nil.
func (c *ExtractCommand) extractFile(path string, p extractParams, store catalog.Store) (*snapshot.Stats, error) {
	lastDate := p.lastDate
	if lastDate.IsZero() {
		var ok bool
		lastDate, ok = dump.DumpDate(path)
		if !ok {
			return nil, fmt.Errorf("cannot infer dump date from filename; pass --last-date")
		}
	}
	timestamps := snapshot.Timestamps(p.periodicity, snapshot.WikiEpoch, p.periodicity.Bound(lastDate))

	ctx := context.Background()
	var run *catalog.Run
	if store != nil {
		hash, err := fingerprintFile(path)
		if err != nil {
			return nil, err
		}
		if prior, err := store.RunsForHash(ctx, hash); err == nil && len(prior) > 0 {
			logf(c.globals, "input %s already extracted %d time(s)", path, len(prior))
		}
		run = &catalog.Run{
			InputFile:   filepath.Base(path),
			InputHash:   hash,
			Periodicity: p.periodicity.String(),
			OnlyLast:    p.onlyLast,
			Timestamps:  len(timestamps),
		}
		if _, err := store.BeginRun(ctx, run); err != nil {
			return nil, fmt.Errorf("recording run: %w", err)
		}
	}

	stats, err := runPipeline(path, p, timestamps)

	if run != nil {
		run.Status = catalog.StatusCompleted
		if err != nil {
			run.Status = catalog.StatusFailed
			run.Error = err.Error()
		}
		if stats != nil {
			run.Pages = stats.PagesAnalyzed
			run.Revisions = stats.RevisionsAnalyzed
			run.Skipped = stats.RecordsSkipped
			run.Pairs = stats.PairsEmitted
		}
		if ferr := store.FinishRun(ctx, run); ferr != nil && err == nil {
			err = fmt.Errorf("recording run result: %w", ferr)
		}
	}

	return stats, err
}

// runPipeline is the single forward pass over one input file.
func runPipeline(path string, p extractParams, timestamps []time.Time) (*snapshot.Stats, error) {
	in, err := dump.OpenInput(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	csvr := csv.NewReader(in)
	csvr.FieldsPerRecord = -1
	csvr.ReuseRecord = true

	if p.skipHeader {
		if _, err := csvr.Read(); err != nil && err != io.EOF {
			return nil, fmt.Errorf("reading header: %w", err)
		}
	}

	stats := &snapshot.Stats{StartTime: time.Now().UTC()}
	reader := snapshot.NewGroupReader(csvr, snapshot.DefaultColumns(), p.policy, stats)

	base := filepath.Base(path)
	pattern := filepath.Join(p.outDir, base+".snapshot.%s.csv")
	sinks := dump.NewSinkSet(timestamps, pattern, p.compression, outputHeader, p.dryRun)

	procErr := func() error {
		for {
			group, err := reader.Next()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}

			sweep, err := snapshot.NewSweep(group, timestamps, p.onlyLast)
			if err != nil {
				return fmt.Errorf("page %d: %w", group.PageID, err)
			}

			for {
				pair, ok := sweep.Next()
				if !ok {
					break
				}
				row := []string{
					fmt.Sprintf("%d", group.PageID),
					group.Title,
					fmt.Sprintf("%d", pair.Revision.ID),
					parentIDField(pair.Revision.ParentID),
					pair.Revision.Timestamp.UTC().Format("2006-01-02T15:04:05Z"),
				}
				if err := sinks.Write(pair.TsIndex, row); err != nil {
					return err
				}
				stats.PairsEmitted++
			}
		}
	}()

	if cerr := sinks.Close(); cerr != nil && procErr == nil {
		procErr = cerr
	}

	stats.EndTime = time.Now().UTC()

	if procErr == nil && !p.dryRun {
		procErr = writeStatsReport(filepath.Join(p.outDir, base+".stats.xml"), p.compression, stats)
	}

	return stats, procErr
}

// parentIDField renders the parent id column; a parentless first
// revision round-trips back to an empty field.
func parentIDField(id int64) string {
	if id < 0 {
		return ""
	}
	return fmt.Sprintf("%d", id)
}

func writeStatsReport(path string, compression dump.Compression, stats *snapshot.Stats) error {
	out, err := dump.CreateOutput(path, compression)
	if err != nil {
		return fmt.Errorf("stats report: %w", err)
	}
	if err := stats.WriteXML(out); err != nil {
		out.Close()
		return fmt.Errorf("stats report: %w", err)
	}
	return out.Close()
}
