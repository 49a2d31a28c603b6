package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/ambiguity-engine/internal/batch"
	"github.com/pdiddy/ambiguity-engine/internal/resolve"
	"github.com/pdiddy/ambiguity-engine/internal/store"
	"github.com/pdiddy/ambiguity-engine/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Resolve every unprocessed entity in the result store",
	Long: `Run resolves the entities imported into the result store that have no
result yet, recording each result as it arrives. A YAML backup is written
every few entities and when the run stops, so an interrupted run can be
resumed by running again. After a complete run the results are exported.`,
	RunE: runBatch,
}

func init() {
	defaults := types.DefaultBatchConfig()
	f := runCmd.Flags()
	f.Int("workers", defaults.Workers, "concurrent resolutions")
	f.Duration("delay", defaults.EntityDelay, "pause between consecutive entities")
	f.Int("checkpoint-every", defaults.CheckpointEvery, "write a backup after this many results")
	f.String("backup", defaults.BackupPath, "backup checkpoint file")
	f.String("output", defaults.OutputPath, "export written after the run (.yaml or .json)")
	f.Bool("retry-failed", false, "clear failed results before running")

	viper.BindPFlag("batch.workers", f.Lookup("workers"))
	viper.BindPFlag("batch.entity_delay", f.Lookup("delay"))
	viper.BindPFlag("batch.checkpoint_every", f.Lookup("checkpoint-every"))
	viper.BindPFlag("batch.backup_path", f.Lookup("backup"))
	viper.BindPFlag("batch.output_path", f.Lookup("output"))

	rootCmd.AddCommand(runCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := pipelineConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if retryFailed, _ := cmd.Flags().GetBool("retry-failed"); retryFailed {
		n, err := st.Reset(ctx, true)
		if err != nil {
			return err
		}
		fmt.Printf("cleared %d failed result(s)\n", n)
	}

	runID, err := st.StartRun(ctx)
	if err != nil {
		return err
	}
	logger.Info().Str("run", runID).Int("workers", cfg.Batch.Workers).Msg("batch started")

	r := resolve.New(httpClient(cfg.Resolver), cfg.Resolver, logger)
	summary, runErr := batch.Run(ctx, r, st, st, st.BackupTo(cfg.Batch.BackupPath), cfg.Batch, os.Stdout, logger)

	finishCtx := context.WithoutCancel(ctx)
	if err := st.FinishRun(finishCtx, runID, store.RunStats{
		Resolved: summary.Resolved,
		Failed:   summary.Failed,
		Skipped:  summary.Skipped,
	}); err != nil {
		logger.Warn().Err(err).Str("run", runID).Msg("recording run finish failed")
	}

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			fmt.Printf("interrupted: %d entit(ies) left for the next run; backup at %s\n",
				summary.Pending, cfg.Batch.BackupPath)
		}
		return runErr
	}

	if err := exportTo(finishCtx, st, cfg.Batch.OutputPath); err != nil {
		return err
	}
	fmt.Printf("results written to %s\n", cfg.Batch.OutputPath)
	return nil
}

// exportTo writes a JSON export for a .json path and YAML otherwise.
func exportTo(ctx context.Context, st *store.Store, path string) error {
	if filepath.Ext(path) == ".json" {
		return st.ExportJSON(ctx, path)
	}
	return st.ExportYAML(ctx, path)
}
