package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/ambiguity-engine/pkg/types"
)

func sampleRecords() []types.Record {
	return []types.Record{
		{
			Entity: types.Entity{Index: 0, Name: "ঢাকা", Processed: true},
			Status: types.StatusSuccess,
			Result: types.Disambiguated([]types.Candidate{
				{Label: "ঢাকা (বাংলাদেশের রাজধানী)", Link: "https://bn.wikipedia.org/wiki/ঢাকা"},
				{Label: "ঢাকা জেলা", Link: "https://bn.wikipedia.org/wiki/ঢাকা_জেলা"},
			}),
		},
		{
			Entity: types.Entity{Index: 1, Name: "অস্তিত্বহীন", Processed: true},
			Status: types.StatusFailed,
			Result: types.Failed(&types.Failure{Kind: types.FailureNotFound, Detail: types.PageNotFound}),
		},
		{
			Entity: types.Entity{Index: 2, Name: "পদ্মা"},
		},
	}
}

func TestWriteTableAlignsByDisplayWidth(t *testing.T) {
	var buf bytes.Buffer
	writeTable(&buf, sampleRecords())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.GreaterOrEqual(t, len(lines), 5)

	// The Status column starts at the same display offset on every row.
	header := lines[0]
	offset := runewidth.StringWidth(header[:strings.Index(header, "Status")])
	for _, line := range lines[2:5] {
		for _, status := range []string{types.StatusSuccess, types.StatusFailed, "pending"} {
			if i := strings.Index(line, status); i >= 0 {
				assert.Equal(t, offset, runewidth.StringWidth(line[:i]), line)
			}
		}
	}

	assert.Contains(t, lines[2], "ঢাকা (বাংলাদেশের রাজধানী) (+1)")
	assert.Contains(t, lines[3], types.PageNotFound)
	assert.Contains(t, buf.String(), "3 entities")
}

func TestWriteTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	writeTable(&buf, nil)
	assert.Equal(t, "No entities found.\n", buf.String())
}

func TestFilterRecords(t *testing.T) {
	records := sampleRecords()

	assert.Len(t, filterRecords(records, false, false), 3)

	failed := filterRecords(records, true, false)
	require.Len(t, failed, 1)
	assert.Equal(t, "অস্তিত্বহীন", failed[0].Name)

	pending := filterRecords(records, false, true)
	require.Len(t, pending, 1)
	assert.Equal(t, "পদ্মা", pending[0].Name)
}

const backupYAML = `- index: 0
  entity: ঢাকা
  ambiguity_data: |-
    ঢাকা (বাংলাদেশের রাজধানী);
    ঢাকা জেলা
  source_links: |-
    https://bn.wikipedia.org/wiki/ঢাকা;
    https://bn.wikipedia.org/wiki/ঢাকা_জেলা
  processed: true
  status: Success
  kind: disambiguated
  candidates:
    - label: ঢাকা (বাংলাদেশের রাজধানী)
      link: https://bn.wikipedia.org/wiki/ঢাকা
    - label: ঢাকা জেলা
      link: https://bn.wikipedia.org/wiki/ঢাকা_জেলা
- index: 1
  entity: অস্তিত্বহীন
  ambiguity_data: Page not found
  source_links: ""
  processed: true
  status: Failed
  kind: failure
  failure_kind: not_found
- index: 2
  entity: পদ্মা
  ambiguity_data: ""
  source_links: ""
  processed: false
  status: ""
`

func TestRecordsFromExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Backup_Results.yaml")
	require.NoError(t, os.WriteFile(path, []byte(backupYAML), 0o644))

	records, err := recordsFromExport(path)
	require.NoError(t, err)
	assert.Equal(t, sampleRecords(), records)

	var buf bytes.Buffer
	require.NoError(t, printRecords(&buf, filterRecords(records, true, false), false))
	assert.Contains(t, buf.String(), "অস্তিত্বহীন")
	assert.NotContains(t, buf.String(), "পদ্মা")
	assert.Contains(t, buf.String(), "1 entities")
}

func TestRecordsFromExportMissingFile(t *testing.T) {
	_, err := recordsFromExport(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l, err := newLogger("warn", true, &buf)
	require.NoError(t, err)

	l.Info().Msg("hidden")
	l.Warn().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"message":"shown"`)
	assert.Equal(t, zerolog.WarnLevel, l.GetLevel())

	_, err = newLogger("loud", false, &buf)
	assert.Error(t, err)
}
