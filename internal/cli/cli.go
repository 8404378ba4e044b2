package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Extract *ExtractCommand
	Filter  *FilterCommand
	Runs    *RunsCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "wikisnap"
	parser.LongDescription = "Point-in-time snapshot extraction from revision-history dumps."

	cmds := &commands{
		Extract: &ExtractCommand{globals: &globals, version: version},
		Filter:  &FilterCommand{globals: &globals, version: version},
		Runs:    &RunsCommand{globals: &globals, version: version},
	}

	parser.AddCommand("extract", "Extract periodic snapshots", "Assign each page revision to the snapshot timestamps it was live at, writing one CSV per snapshot.", cmds.Extract)
	parser.AddCommand("filter", "Filter rows by field", "Pass through input rows whose field matches a regexp.", cmds.Filter)
	parser.AddCommand("runs", "Show recorded extraction runs", "List extraction runs recorded in the catalog, with aggregate totals.", cmds.Runs)

	return parser, &globals, cmds
}

// Run is the main entry point for the wikisnap CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// Handle --version before parser (go-flags requires a subcommand, but
	// --version is valid without one).
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("wikisnap %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}
