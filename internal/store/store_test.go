// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/ambiguity-engine/pkg/types"
)

// --- test helpers ---

func testStore(t *testing.T) (*Store, string) {
	t.Helper()
	tmpDir := t.TempDir()
	s, err := NewStore(types.StoreConfig{DBPath: filepath.Join(tmpDir, "db", "ambiguity.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, tmpDir
}

func importNames(t *testing.T, s *Store, names ...string) []types.Entity {
	t.Helper()
	ctx := context.Background()
	_, err := s.Import(ctx, names)
	require.NoError(t, err)
	entities, err := s.Entities(ctx)
	require.NoError(t, err)
	return entities
}

func sampleDisambiguation() types.AmbiguityResult {
	return types.Disambiguated([]types.Candidate{
		{Label: "ঢাকা (বাংলাদেশের রাজধানী)", Link: "https://bn.wikipedia.org/wiki/ঢাকা"},
		{Label: "ঢাকা জেলা (জেলা)", Link: "https://bn.wikipedia.org/wiki/ঢাকা_জেলা"},
	})
}

// --- tests ---

func TestImport(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	summary, err := s.Import(ctx, []string{"ঢাকা", " বুধ ", "", "ঢাকা", "পদ্মা"})
	require.NoError(t, err)
	assert.Equal(t, ImportSummary{Added: 3, Duplicates: 1, Blank: 1}, summary)

	entities, err := s.Entities(ctx)
	require.NoError(t, err)
	assert.Equal(t, []types.Entity{
		{Index: 0, Name: "ঢাকা"},
		{Index: 1, Name: "বুধ"},
		{Index: 2, Name: "পদ্মা"},
	}, entities)
}

func TestImportIsIdempotentAndAppends(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	_, err := s.Import(ctx, []string{"ঢাকা", "বুধ"})
	require.NoError(t, err)
	summary, err := s.Import(ctx, []string{"ঢাকা", "বুধ", "মেঘনা"})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Added)
	assert.Equal(t, 2, summary.Duplicates)

	entities, err := s.Entities(ctx)
	require.NoError(t, err)
	require.Len(t, entities, 3)
	assert.Equal(t, 2, entities[2].Index)
	assert.Equal(t, "মেঘনা", entities[2].Name)
}

func TestRecordAndResults(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()
	entities := importNames(t, s, "ঢাকা", "বুধ", "অস্তিত্বহীন", "খালি")

	require.NoError(t, s.Record(ctx, entities[0], sampleDisambiguation()))
	require.NoError(t, s.Record(ctx, entities[1], types.Article("বুধ সৌরজগতের ক্ষুদ্রতম গ্রহ।", "https://bn.wikipedia.org/wiki/বুধ_(গ্রহ)")))
	require.NoError(t, s.Record(ctx, entities[2], types.Failed(&types.Failure{Kind: types.FailureNotFound, Detail: types.PageNotFound})))

	records, err := s.Results(ctx)
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.True(t, records[0].Processed)
	assert.Equal(t, types.StatusSuccess, records[0].Status)
	assert.Equal(t, sampleDisambiguation(), records[0].Result)
	assert.False(t, records[0].UpdatedAt.IsZero())

	assert.Equal(t, types.ResultArticle, records[1].Result.Kind)
	assert.Equal(t, "বুধ সৌরজগতের ক্ষুদ্রতম গ্রহ।", records[1].Result.Summary)

	assert.Equal(t, types.StatusFailed, records[2].Status)
	require.NotNil(t, records[2].Result.Failure)
	assert.Equal(t, types.FailureNotFound, records[2].Result.Failure.Kind)

	assert.False(t, records[3].Processed)
	assert.Equal(t, types.ResultKind(""), records[3].Result.Kind)

	entities, err = s.Entities(ctx)
	require.NoError(t, err)
	assert.True(t, entities[0].Processed)
	assert.False(t, entities[3].Processed)
}

func TestRecordReplacesCandidates(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()
	entities := importNames(t, s, "ঢাকা")

	require.NoError(t, s.Record(ctx, entities[0], sampleDisambiguation()))
	require.NoError(t, s.Record(ctx, entities[0], types.Disambiguated(nil)))

	records, err := s.Results(ctx)
	require.NoError(t, err)
	assert.Empty(t, records[0].Result.Candidates)
	assert.Equal(t, types.NoDisambiguationFound, records[0].Result.Meanings())
}

func TestRecordUnknownEntity(t *testing.T) {
	s, _ := testStore(t)

	err := s.Record(context.Background(), types.Entity{Index: 42, Name: "x"}, sampleDisambiguation())
	assert.True(t, errors.Is(err, ErrUnknownEntity))
}

func TestReset(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()
	entities := importNames(t, s, "ঢাকা", "অস্তিত্বহীন")
	require.NoError(t, s.Record(ctx, entities[0], sampleDisambiguation()))
	require.NoError(t, s.Record(ctx, entities[1], types.Failed(&types.Failure{Kind: types.FailureMaxRetriesExceeded, Detail: "HTTP Error 503"})))

	n, err := s.Reset(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	entities, err = s.Entities(ctx)
	require.NoError(t, err)
	assert.True(t, entities[0].Processed)
	assert.False(t, entities[1].Processed)

	n, err = s.Reset(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	records, err := s.Results(ctx)
	require.NoError(t, err)
	assert.Empty(t, records[0].Result.Candidates)
	assert.False(t, records[0].Processed)
}

func TestRuns(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	id, err := s.StartRun(ctx)
	require.NoError(t, err)
	assert.Len(t, id, 36)

	require.NoError(t, s.FinishRun(ctx, id, RunStats{Resolved: 4, Failed: 1, Skipped: 2}))

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].ID)
	assert.Equal(t, RunStats{Resolved: 4, Failed: 1, Skipped: 2}, runs[0].RunStats)
	assert.False(t, runs[0].FinishedAt.IsZero())
}

func TestExportYAMLAndJSON(t *testing.T) {
	s, tmpDir := testStore(t)
	ctx := context.Background()
	entities := importNames(t, s, "ঢাকা", "বুধ")
	require.NoError(t, s.Record(ctx, entities[0], sampleDisambiguation()))

	yamlPath := filepath.Join(tmpDir, "out", "results.yaml")
	require.NoError(t, s.ExportYAML(ctx, yamlPath))
	jsonPath := filepath.Join(tmpDir, "out", "results.json")
	require.NoError(t, s.ExportJSON(ctx, jsonPath))

	for _, path := range []string{yamlPath, jsonPath} {
		entries, err := ReadExport(path)
		require.NoError(t, err, path)
		require.Len(t, entries, 2)

		assert.Equal(t, "ঢাকা", entries[0].Entity)
		assert.Equal(t, "ঢাকা (বাংলাদেশের রাজধানী);\nঢাকা জেলা (জেলা)", entries[0].AmbiguityData)
		assert.Equal(t, "https://bn.wikipedia.org/wiki/ঢাকা;\nhttps://bn.wikipedia.org/wiki/ঢাকা_জেলা", entries[0].SourceLinks)
		assert.Equal(t, types.StatusSuccess, entries[0].Status)
		assert.Len(t, entries[0].Candidates, 2)

		assert.False(t, entries[1].Processed)
		assert.Equal(t, "", entries[1].AmbiguityData)
	}

	// No temp files left behind.
	files, err := os.ReadDir(filepath.Join(tmpDir, "out"))
	require.NoError(t, err)
	for _, f := range files {
		assert.False(t, strings.HasSuffix(f.Name(), ".tmp"), f.Name())
	}
}

func TestExportEntryRecord(t *testing.T) {
	s, tmpDir := testStore(t)
	ctx := context.Background()
	entities := importNames(t, s, "ঢাকা", "বুধ", "অস্তিত্বহীন", "পদ্মা")
	article := types.Article("বুধ সৌরজগতের ক্ষুদ্রতম গ্রহ।", "https://bn.wikipedia.org/wiki/বুধ_(গ্রহ)")
	failure := types.Failed(&types.Failure{Kind: types.FailureNotFound, Detail: types.PageNotFound})
	require.NoError(t, s.Record(ctx, entities[0], sampleDisambiguation()))
	require.NoError(t, s.Record(ctx, entities[1], article))
	require.NoError(t, s.Record(ctx, entities[2], failure))

	path := filepath.Join(tmpDir, "results.yaml")
	require.NoError(t, s.ExportYAML(ctx, path))
	entries, err := ReadExport(path)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	got := make([]types.Record, len(entries))
	for i, e := range entries {
		got[i] = e.Record()
	}

	assert.Equal(t, sampleDisambiguation(), got[0].Result)
	assert.Equal(t, article, got[1].Result)
	assert.Equal(t, failure, got[2].Result)
	assert.Equal(t, types.StatusFailed, got[2].Status)
	assert.False(t, got[2].UpdatedAt.IsZero())

	assert.Equal(t, "পদ্মা", got[3].Name)
	assert.Equal(t, 3, got[3].Index)
	assert.False(t, got[3].Processed)
	assert.Equal(t, types.ResultKind(""), got[3].Result.Kind)
}

func TestBackupCheckpoint(t *testing.T) {
	s, tmpDir := testStore(t)
	ctx := context.Background()
	importNames(t, s, "ঢাকা")

	b := s.BackupTo(filepath.Join(tmpDir, "Backup_Results.yaml"))
	require.NoError(t, b.Checkpoint(ctx))

	entries, err := ReadExport(b.Path())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestNewStoreEmptyPath(t *testing.T) {
	_, err := NewStore(types.StoreConfig{})
	assert.Error(t, err)
}
