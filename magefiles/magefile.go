//go:build mage

// Package main contains Mage build targets for ambiguity-engine developer tooling.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// projectDirs lists the working directories a batch run writes to.
var projectDirs = []string{
	"data",
	"output",
	".secrets",
}

// sampleConfig is written to ambiguity-engine.yaml by Init when none exists.
const sampleConfig = `store:
  db_path: data/ambiguity.db
batch:
  workers: 1
  entity_delay: 1.5s
  checkpoint_every: 5
  backup_path: output/Backup_Results.yaml
  output_path: output/Wikipedia_Ambiguity_Results.yaml
resolver:
  timeout: 15s
  retry:
    max_attempts: 3
`

// Init creates the project directories and a starter config file.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	if _, err := os.Stat("ambiguity-engine.yaml"); os.IsNotExist(err) {
		if err := os.WriteFile("ambiguity-engine.yaml", []byte(sampleConfig), 0o644); err != nil {
			return fmt.Errorf("writing ambiguity-engine.yaml: %w", err)
		}
		fmt.Println("   ambiguity-engine.yaml")
	}
	fmt.Println("Project initialized.")
	return nil
}

const (
	binDir  = "bin"
	binName = "ambiguity-engine"
	cmdPkg  = "./cmd/ambiguity-engine"
)

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil {
		version = "dev"
	}
	ldflags := "-X main.version=" + strings.TrimSpace(version)
	if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests. The SQLite driver needs cgo.
func Test() error {
	return sh.RunWithV(map[string]string{"CGO_ENABLED": "1"}, "go", "test", "./...")
}

// Check vets the code and runs the tests.
func Check() error {
	if err := sh.RunV("go", "vet", "./..."); err != nil {
		return err
	}
	mg.Deps(Test)
	return nil
}

// Stats prints project metrics: Go production/test LOC and documentation word count.
func Stats() error {
	prodLines, err := countGoLines(".", false)
	if err != nil {
		return err
	}
	testLines, err := countGoLines(".", true)
	if err != nil {
		return err
	}
	docWords, err := countDocWords(".")
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", testLines)
	fmt.Printf("Words (documentation):           %d\n", docWords)
	return nil
}

// skipDir reports directories excluded from the metrics.
func skipDir(name string) bool {
	return name == "bin" || name == "vendor" || (len(name) > 1 && (name[0] == '.' || name[0] == '_'))
}

// countGoLines walks the directory tree and counts non-blank lines in Go files.
// If testOnly is true, count only _test.go files; otherwise count non-test .go files.
func countGoLines(root string, testOnly bool) (int, error) {
	total := 0
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		if strings.HasSuffix(path, "_test.go") != testOnly {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		for _, line := range strings.Split(string(data), "\n") {
			if strings.TrimSpace(line) != "" {
				total++
			}
		}
		return nil
	})
	return total, err
}

// countDocWords counts words in the Markdown files of the tree.
func countDocWords(root string) (int, error) {
	total := 0
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".md" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		total += len(strings.Fields(string(data)))
		return nil
	})
	return total, err
}
