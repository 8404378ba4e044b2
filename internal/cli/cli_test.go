package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildParserRegistersCommands(t *testing.T) {
	parser, globals, cmds := buildParser("1.0.0")

	require.NotNil(t, parser)
	require.NotNil(t, globals)
	assert.Equal(t, "wikisnap", parser.Name)

	for _, name := range []string{"extract", "filter", "runs"} {
		assert.NotNil(t, parser.Find(name), "command %s should be registered", name)
	}

	assert.NotNil(t, cmds.Extract)
	assert.NotNil(t, cmds.Filter)
	assert.NotNil(t, cmds.Runs)
}

func TestRunWithArgsVersion(t *testing.T) {
	err := RunWithArgs("1.2.3", []string{"--version"})
	assert.NoError(t, err)
}

func TestRunWithArgsUnknownCommand(t *testing.T) {
	err := RunWithArgs("1.0.0", []string{"frobnicate"})
	assert.Error(t, err)
}

func TestRunWithArgsNoCommand(t *testing.T) {
	err := RunWithArgs("1.0.0", []string{})
	assert.Error(t, err)
}

func TestExtractRequiresFiles(t *testing.T) {
	err := RunWithArgs("1.0.0", []string{"extract"})
	assert.Error(t, err)
}

func TestFilterRequiresFlags(t *testing.T) {
	err := RunWithArgs("1.0.0", []string{"filter", "input.csv"})
	assert.Error(t, err)
}
