// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/ambiguity-engine/pkg/types"
)

// ExportEntry is one row of an export, laid out like the entity sheet
// columns with the structured candidates alongside.
type ExportEntry struct {
	Index         int               `json:"index" yaml:"index"`
	Entity        string            `json:"entity" yaml:"entity"`
	AmbiguityData string            `json:"ambiguity_data" yaml:"ambiguity_data"`
	SourceLinks   string            `json:"source_links" yaml:"source_links"`
	Processed     bool              `json:"processed" yaml:"processed"`
	Status        string            `json:"status" yaml:"status"`
	Kind          string            `json:"kind,omitempty" yaml:"kind,omitempty"`
	Candidates    []types.Candidate `json:"candidates,omitempty" yaml:"candidates,omitempty"`
	FailureKind   string            `json:"failure_kind,omitempty" yaml:"failure_kind,omitempty"`
	UpdatedAt     string            `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// Backup writes YAML checkpoints of the store to a fixed path.
type Backup struct {
	store *Store
	path  string
}

// BackupTo returns a checkpointer writing YAML exports to path.
func (s *Store) BackupTo(path string) *Backup {
	return &Backup{store: s, path: path}
}

// Checkpoint writes the current state of the store.
func (b *Backup) Checkpoint(ctx context.Context) error {
	return b.store.ExportYAML(ctx, b.path)
}

// Path returns the checkpoint file path.
func (b *Backup) Path() string {
	return b.path
}

// ExportYAML writes every row to path as YAML.
func (s *Store) ExportYAML(ctx context.Context, path string) error {
	entries, err := s.exportEntries(ctx)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return writeFileAtomic(path, data)
}

// ExportJSON writes every row to path as indented JSON.
func (s *Store) ExportJSON(ctx context.Context, path string) error {
	entries, err := s.exportEntries(ctx)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return writeFileAtomic(path, data)
}

// ReadExport loads a YAML or JSON export written by ExportYAML or ExportJSON.
func ReadExport(path string) ([]ExportEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []ExportEntry
	if filepath.Ext(path) == ".json" {
		err = json.Unmarshal(data, &entries)
	} else {
		err = yaml.Unmarshal(data, &entries)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing export %s: %w", path, err)
	}
	return entries, nil
}

// Record rebuilds the stored record an entry was exported from. Article
// entries carry their summary in AmbiguityData and their link in
// SourceLinks; failed entries carry the failure detail in AmbiguityData.
func (e ExportEntry) Record() types.Record {
	r := types.Record{
		Entity: types.Entity{Index: e.Index, Name: e.Entity, Processed: e.Processed},
		Status: e.Status,
	}
	if t, err := time.Parse(time.RFC3339, e.UpdatedAt); err == nil {
		r.UpdatedAt = t
	}
	if !e.Processed {
		return r
	}
	switch types.ResultKind(e.Kind) {
	case types.ResultDisambiguated:
		r.Result = types.Disambiguated(e.Candidates)
	case types.ResultArticle:
		r.Result = types.Article(e.AmbiguityData, e.SourceLinks)
	case types.ResultFailure:
		r.Result = types.Failed(&types.Failure{Kind: types.FailureKind(e.FailureKind), Detail: e.AmbiguityData})
	}
	return r
}

func (s *Store) exportEntries(ctx context.Context) ([]ExportEntry, error) {
	records, err := s.Results(ctx)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ExportEntry, len(records))
	for i, r := range records {
		entries[i] = ExportEntry{
			Index:     r.Index,
			Entity:    r.Name,
			Processed: r.Processed,
			Status:    r.Status,
			Kind:      string(r.Result.Kind),
		}
		if r.Processed {
			entries[i].AmbiguityData = r.Result.Meanings()
			entries[i].SourceLinks = r.Result.Links()
			entries[i].Candidates = r.Result.Candidates
		}
		if r.Result.Failure != nil {
			entries[i].FailureKind = string(r.Result.Failure.Kind)
		}
		if !r.UpdatedAt.IsZero() {
			entries[i].UpdatedAt = r.UpdatedAt.Format(time.RFC3339)
		}
	}
	return entries, nil
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it into place, so a crash never leaves a half-written backup.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, ".export-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, writeErr := tmpFile.Write(data)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing export: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
