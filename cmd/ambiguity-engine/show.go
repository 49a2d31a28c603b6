package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/pdiddy/ambiguity-engine/internal/store"
	"github.com/pdiddy/ambiguity-engine/pkg/types"
)

// Display widths of the truncated table columns.
const (
	entityWidth   = 24
	meaningsWidth = 60
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print stored results",
	Long: `Show prints the entities of the result store with their status and the
first of their meanings as an aligned table, or every field as JSON.
Use --runs to list past batch runs instead, or --file to read a YAML or
JSON export (such as the backup checkpoint) instead of the store.`,
	RunE: runShow,
}

func init() {
	showCmd.Flags().Bool("json", false, "output results as JSON")
	showCmd.Flags().Bool("failed", false, "show only failed entities")
	showCmd.Flags().Bool("pending", false, "show only unprocessed entities")
	showCmd.Flags().Bool("runs", false, "list batch runs")
	showCmd.Flags().String("file", "", "read results from an export file instead of the store")

	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	failedOnly, _ := cmd.Flags().GetBool("failed")
	pendingOnly, _ := cmd.Flags().GetBool("pending")

	if file, _ := cmd.Flags().GetString("file"); file != "" {
		records, err := recordsFromExport(file)
		if err != nil {
			return err
		}
		return printRecords(os.Stdout, filterRecords(records, failedOnly, pendingOnly), jsonOutput)
	}

	cfg, err := pipelineConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()

	if runs, _ := cmd.Flags().GetBool("runs"); runs {
		list, err := st.Runs(ctx)
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(os.Stdout, list)
		}
		writeRuns(os.Stdout, list)
		return nil
	}

	records, err := st.Results(ctx)
	if err != nil {
		return err
	}
	return printRecords(os.Stdout, filterRecords(records, failedOnly, pendingOnly), jsonOutput)
}

// recordsFromExport loads the records of a YAML or JSON export.
func recordsFromExport(path string) ([]types.Record, error) {
	entries, err := store.ReadExport(path)
	if err != nil {
		return nil, err
	}
	records := make([]types.Record, len(entries))
	for i, e := range entries {
		records[i] = e.Record()
	}
	return records, nil
}

func printRecords(w io.Writer, records []types.Record, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(w, records)
	}
	writeTable(w, records)
	return nil
}

func filterRecords(records []types.Record, failedOnly, pendingOnly bool) []types.Record {
	if !failedOnly && !pendingOnly {
		return records
	}
	var out []types.Record
	for _, r := range records {
		switch {
		case failedOnly && r.Status == types.StatusFailed:
			out = append(out, r)
		case pendingOnly && !r.Processed:
			out = append(out, r)
		}
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeTable prints records as a table padded by display width, so rows
// containing Bengali conjuncts stay aligned.
func writeTable(w io.Writer, records []types.Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No entities found.")
		return
	}

	rows := [][]string{{"#", "Entity", "Status", "Kind", "Meanings"}}
	for _, r := range records {
		status := r.Status
		if !r.Processed {
			status = "pending"
		}
		rows = append(rows, []string{
			strconv.Itoa(r.Index),
			runewidth.Truncate(r.Name, entityWidth, "..."),
			status,
			string(r.Result.Kind),
			firstMeaning(r),
		})
	}

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			if cw := runewidth.StringWidth(cell); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	for i, row := range rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			if j == len(row)-1 {
				cells[j] = cell
				continue
			}
			cells[j] = runewidth.FillRight(cell, widths[j])
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " "))
		if i == 0 {
			total := 0
			for _, cw := range widths {
				total += cw
			}
			fmt.Fprintln(w, strings.Repeat("-", total+2*(len(widths)-1)))
		}
	}

	fmt.Fprintf(w, "\n%d entities\n", len(records))
}

// firstMeaning returns the first line of the rendered meanings, marked
// with the number of further candidates and cut to the column width.
func firstMeaning(r types.Record) string {
	if !r.Processed {
		return ""
	}
	m := r.Result.Meanings()
	first, _, more := strings.Cut(m, "\n")
	first = strings.TrimSuffix(first, ";")
	if more && r.Result.Kind == types.ResultDisambiguated {
		first = fmt.Sprintf("%s (+%d)", first, len(r.Result.Candidates)-1)
	}
	return runewidth.Truncate(first, meaningsWidth, "...")
}

func writeRuns(w io.Writer, runs []store.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}
	fmt.Fprintf(w, "%-36s  %-20s  %-20s  %8s  %6s  %7s\n",
		"Run", "Started", "Finished", "Resolved", "Failed", "Skipped")
	fmt.Fprintln(w, strings.Repeat("-", 108))
	for _, r := range runs {
		finished := "-"
		if !r.FinishedAt.IsZero() {
			finished = r.FinishedAt.Local().Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(w, "%-36s  %-20s  %-20s  %8d  %6d  %7d\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04:05"), finished,
			r.Resolved, r.Failed, r.Skipped)
	}
}
