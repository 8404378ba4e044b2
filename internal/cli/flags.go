package cli

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config            string `long:"config" description:"Path to config file" default:""`
	OutputDir         string `long:"output-dir" short:"o" description:"Directory for output files" default:""`
	OutputCompression string `long:"output-compression" description:"Output compression: gzip | zstd | lz4 | snappy | none" default:""`
	DryRun            bool   `long:"dry-run" short:"n" description:"Process input but write no files"`
	JSON              bool   `long:"json" description:"Output in JSON format"`
	Verbose           bool   `long:"verbose" description:"Enable verbose output"`
	Version           bool   `long:"version" description:"Show version and exit"`
}

// ExtractCommand — assign revisions to periodic snapshots, one output
// file per snapshot timestamp.
type ExtractCommand struct {
	Periodicity      string `long:"periodicity" short:"p" description:"Snapshot spacing: d (daily), w (weekly), M (monthly), y (yearly)" default:""`
	LastDate         string `long:"last-date" description:"Greatest timestamp in the dump (default: infer from input filename)"`
	SkipHeader       bool   `long:"skip-header" description:"Skip the first line of each input file"`
	OnlyLastRevision bool   `long:"only-last-revision" description:"Consider only the last revision of each page"`
	OnParseError     string `long:"on-parse-error" description:"Parse failure policy: abort | skip" default:""`
	Parallel         int    `long:"parallel" description:"Process up to N input files concurrently" default:"0"`
	NoCatalog        bool   `long:"no-catalog" description:"Do not record this run in the catalog"`

	Args struct {
		Files []string `positional-arg-name:"FILE" required:"1"`
	} `positional-args:"yes"`

	globals *GlobalFlags
	version string
}

// FilterCommand — pass through rows whose field matches a pattern.
type FilterCommand struct {
	Field      int    `long:"field" description:"0-based index of the field to match" required:"true"`
	Match      string `long:"match" description:"Regexp the field must match" required:"true"`
	Invert     bool   `long:"invert" description:"Keep rows that do NOT match"`
	SkipHeader bool   `long:"skip-header" description:"Copy the first line of each input to the output unexamined"`

	Args struct {
		Files []string `positional-arg-name:"FILE" required:"1"`
	} `positional-args:"yes"`

	globals *GlobalFlags
	version string
}

// RunsCommand — show recorded extraction runs and catalog totals.
type RunsCommand struct {
	Limit   int    `long:"limit" description:"Maximum runs to list" default:"10"`
	Hash    string `long:"hash" description:"Only runs for this input fingerprint"`
	Summary bool   `long:"summary" description:"Show catalog totals only"`

	globals *GlobalFlags
	version string
}
