package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/ambiguity-engine/internal/entitylist"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Load an entity list into the result store",
	Long: `Import reads entity names from a CSV file (first column), a YAML list,
or a text file with one name per line, and appends them to the result store.
Names already in the store keep their position and results.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := pipelineConfig()
	if err != nil {
		return err
	}

	names, err := entitylist.Load(args[0])
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	summary, err := st.Import(context.Background(), names)
	if err != nil {
		return err
	}
	fmt.Printf("imported %d entities from %s (%d already present, %d blank)\n",
		summary.Added, args[0], summary.Duplicates, summary.Blank)
	return nil
}
