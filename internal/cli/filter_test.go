package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterKeepsMatchingRows(t *testing.T) {
	cfgPath, outDir := writeTestConfig(t)

	input := writeInput(t, "links.csv",
		inputRow("42", "Alpha", "1", "", "2015-01-10T00:00:00Z"),
		inputRow("99", "Beta", "2", "", "2015-02-10T00:00:00Z"),
		inputRow("42", "Alpha", "3", "1", "2015-03-10T00:00:00Z"),
	)

	err := RunWithArgs("test", []string{
		"--config", cfgPath, "filter", "--field", "0", "--match", "^42$", input,
	})
	require.NoError(t, err)

	rows := readCSV(t, filepath.Join(outDir, "links.csv.filtered.csv"))
	require.Len(t, rows, 2)
	assert.Equal(t, "42", rows[0][0])
	assert.Equal(t, "42", rows[1][0])
}

func TestFilterInvert(t *testing.T) {
	cfgPath, outDir := writeTestConfig(t)

	input := writeInput(t, "links.csv",
		inputRow("42", "Alpha", "1", "", "2015-01-10T00:00:00Z"),
		inputRow("99", "Beta", "2", "", "2015-02-10T00:00:00Z"),
	)

	err := RunWithArgs("test", []string{
		"--config", cfgPath, "filter", "--field", "0", "--match", "^42$", "--invert", input,
	})
	require.NoError(t, err)

	rows := readCSV(t, filepath.Join(outDir, "links.csv.filtered.csv"))
	require.Len(t, rows, 1)
	assert.Equal(t, "99", rows[0][0])
}

func TestFilterCopiesHeader(t *testing.T) {
	cfgPath, outDir := writeTestConfig(t)

	input := writeInput(t, "links.csv",
		"page_id,page_title,revision_id,revision_parent_id,revision_timestamp,user_type,user_username,user_id,revision_minor",
		inputRow("42", "Alpha", "1", "", "2015-01-10T00:00:00Z"),
		inputRow("99", "Beta", "2", "", "2015-02-10T00:00:00Z"),
	)

	err := RunWithArgs("test", []string{
		"--config", cfgPath, "filter", "--skip-header", "--field", "1", "--match", "Alpha", input,
	})
	require.NoError(t, err)

	rows := readCSV(t, filepath.Join(outDir, "links.csv.filtered.csv"))
	require.Len(t, rows, 2)
	assert.Equal(t, "page_id", rows[0][0])
	assert.Equal(t, "Alpha", rows[1][1])
}

func TestFilterRejectsBadField(t *testing.T) {
	cfgPath, _ := writeTestConfig(t)

	input := writeInput(t, "links.csv",
		inputRow("42", "Alpha", "1", "", "2015-01-10T00:00:00Z"),
	)

	// Non-numeric values never reach Execute: the flag parser owns the
	// int conversion.
	err := RunWithArgs("test", []string{
		"--config", cfgPath, "filter", "--field", "title", "--match", ".", input,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--field")
}

func TestFilterRejectsNegativeField(t *testing.T) {
	cfgPath, _ := writeTestConfig(t)

	input := writeInput(t, "links.csv",
		inputRow("42", "Alpha", "1", "", "2015-01-10T00:00:00Z"),
	)

	err := RunWithArgs("test", []string{
		"--config", cfgPath, "filter", "--field=-1", "--match", ".", input,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--field")
}

func TestFilterRejectsBadPattern(t *testing.T) {
	cfgPath, _ := writeTestConfig(t)

	input := writeInput(t, "links.csv",
		inputRow("42", "Alpha", "1", "", "2015-01-10T00:00:00Z"),
	)

	err := RunWithArgs("test", []string{
		"--config", cfgPath, "filter", "--field", "0", "--match", "([", input,
	})
	require.Error(t, err)
}

func TestFilterDryRunWritesNothing(t *testing.T) {
	cfgPath, outDir := writeTestConfig(t)

	input := writeInput(t, "links.csv",
		inputRow("42", "Alpha", "1", "", "2015-01-10T00:00:00Z"),
	)

	err := RunWithArgs("test", []string{
		"--config", cfgPath, "--dry-run", "filter", "--field", "0", "--match", ".", input,
	})
	require.NoError(t, err)

	_, statErr := os.Stat(outDir)
	assert.True(t, os.IsNotExist(statErr))
}
