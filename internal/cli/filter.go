package cli

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"regexp"

	"github.com/runnerr0/wikisnap/internal/dump"
)

// Execute implements the go-flags Commander interface for FilterCommand.
func (c *FilterCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if c.Field < 0 {
		return fmt.Errorf("invalid --field %d (use a 0-based index)", c.Field)
	}

	re, err := regexp.Compile(c.Match)
	if err != nil {
		return fmt.Errorf("invalid --match pattern: %w", err)
	}

	outDir := cfg.Output.Dir
	if c.globals.OutputDir != "" {
		outDir = c.globals.OutputDir
	}
	compStr := cfg.Output.Compression
	if c.globals.OutputCompression != "" {
		compStr = c.globals.OutputCompression
	}
	compression, err := dump.ParseCompression(compStr)
	if err != nil {
		return err
	}

	var kept, total int64
	for _, path := range c.Args.Files {
		logf(c.globals, "filtering %s", path)
		k, n, err := c.filterFile(path, outDir, compression, c.Field, re)
		kept += k
		total += n
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}

	fmt.Printf("Kept %s of %s rows\n", formatNumber(kept), formatNumber(total))
	return nil
}

// filterFile copies the rows of one input whose field matches (or does
// not match, with --invert) the pattern. Rows too short to have the
// field are dropped and counted, never an error: the filter is a
// best-effort pass in the skip-and-continue tradition.
func (c *FilterCommand) filterFile(path, outDir string, compression dump.Compression, field int, re *regexp.Regexp) (kept, total int64, err error) {
	in, err := dump.OpenInput(path)
	if err != nil {
		return 0, 0, err
	}
	defer in.Close()

	csvr := csv.NewReader(in)
	csvr.FieldsPerRecord = -1

	outPath := filepath.Join(outDir, filepath.Base(path)+".filtered.csv")
	var out io.WriteCloser
	if c.globals.DryRun {
		out = nopWriteCloser{}
	} else {
		out, err = dump.CreateOutput(outPath, compression)
		if err != nil {
			return 0, 0, err
		}
	}
	w := csv.NewWriter(out)

	closeOut := func(prior error) error {
		w.Flush()
		if ferr := w.Error(); ferr != nil && prior == nil {
			prior = ferr
		}
		if cerr := out.Close(); cerr != nil && prior == nil {
			prior = cerr
		}
		return prior
	}

	if c.SkipHeader {
		header, rerr := csvr.Read()
		if rerr != nil && rerr != io.EOF {
			return 0, 0, closeOut(fmt.Errorf("reading header: %w", rerr))
		}
		if header != nil {
			if werr := w.Write(header); werr != nil {
				return 0, 0, closeOut(werr)
			}
		}
	}

	for {
		row, rerr := csvr.Read()
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			// Bad quoting or a ragged line; skip and keep going.
			total++
			continue
		}
		total++

		if field >= len(row) {
			continue
		}
		if re.MatchString(row[field]) == c.Invert {
			continue
		}
		if werr := w.Write(row); werr != nil {
			return kept, total, closeOut(werr)
		}
		kept++
	}

	return kept, total, closeOut(nil)
}

type nopWriteCloser struct{}

func (nopWriteCloser) Write(p []byte) (int, error) { return len(p), nil }
func (nopWriteCloser) Close() error                { return nil }
