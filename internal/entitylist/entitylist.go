// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package entitylist reads entity names from CSV, YAML, or plain text files.
package entitylist

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"
	"golang.org/x/text/unicode/norm"
)

// KnownHeaders are first-column header cells skipped at the top of a CSV file.
var KnownHeaders = []string{"Entity", "Entities", "Mention", "Name", "SL.No", "SL", "No"}

// listFile is the mapping form of a YAML entity list.
type listFile struct {
	Entities []string `yaml:"entities"`
}

// Load reads entity names from path. The format follows the extension:
// .csv takes the first column, .yaml/.yml takes a list of strings or an
// "entities" key, anything else takes one name per line with "#" comments.
// Names are trimmed and NFC-normalized; blank names are dropped.
func Load(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading entity list: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\uFEFF"))

	var names []string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		names, err = parseCSV(data)
	case ".yaml", ".yml":
		names, err = parseYAML(data)
	default:
		names = parseText(data)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing entity list %s: %w", path, err)
	}
	return normalize(names), nil
}

func parseCSV(data []byte) ([]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var names []string
	first := true
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) == 0 {
			continue
		}
		cell := rec[0]
		if first {
			first = false
			if isHeader(cell) {
				continue
			}
		}
		names = append(names, cell)
	}
	return names, nil
}

func isHeader(cell string) bool {
	cell = strings.TrimSpace(cell)
	for _, h := range KnownHeaders {
		if strings.EqualFold(cell, h) {
			return true
		}
	}
	return false
}

func parseYAML(data []byte) ([]string, error) {
	var list []string
	if err := yaml.Unmarshal(data, &list); err == nil {
		return list, nil
	}
	var lf listFile
	if err := yaml.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("expected a list of names or an entities key: %w", err)
	}
	return lf.Entities, nil
}

func parseText(data []byte) []string {
	var names []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	return names
}

func normalize(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = norm.NFC.String(strings.TrimSpace(n))
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}
