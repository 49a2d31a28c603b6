package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/ambiguity-engine/internal/resolve"
	"github.com/pdiddy/ambiguity-engine/pkg/types"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <entity>...",
	Short: "Resolve entity names directly and print the results",
	Long: `Resolve fetches the Wikipedia page of each entity and prints either the
candidate meanings of a disambiguation page or the summary of an article.
Nothing is written to the result store.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResolve,
}

func init() {
	defaults := types.DefaultResolverConfig()
	f := resolveCmd.Flags()
	f.Bool("json", false, "output results as JSON")
	f.Duration("timeout", defaults.Timeout, "HTTP request timeout")
	f.String("origin", defaults.Site.Origin, "Wikipedia origin to query")
	f.Int("max-attempts", defaults.Retry.MaxAttempts, "fetch attempts per entity")

	viper.BindPFlag("resolver.timeout", f.Lookup("timeout"))
	viper.BindPFlag("resolver.site.origin", f.Lookup("origin"))
	viper.BindPFlag("resolver.retry.max_attempts", f.Lookup("max-attempts"))

	rootCmd.AddCommand(resolveCmd)
}

// resolvedEntity pairs an entity with its result for JSON output.
type resolvedEntity struct {
	Entity   string                `json:"entity"`
	Status   string                `json:"status"`
	Meanings string                `json:"ambiguity_data"`
	Links    string                `json:"source_links"`
	Result   types.AmbiguityResult `json:"result"`
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg, err := pipelineConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	r := resolve.New(httpClient(cfg.Resolver), cfg.Resolver, logger)

	out := make([]resolvedEntity, 0, len(args))
	failed := 0
	for _, entity := range args {
		res := r.Resolve(ctx, entity)
		if res.IsFailure() {
			failed++
		}
		out = append(out, resolvedEntity{
			Entity:   entity,
			Status:   res.Status(),
			Meanings: res.Meanings(),
			Links:    res.Links(),
			Result:   res,
		})
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return err
		}
	} else {
		for _, e := range out {
			printResolved(os.Stdout, e)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d entit(ies) could not be resolved", failed)
	}
	return nil
}

func printResolved(w io.Writer, e resolvedEntity) {
	fmt.Fprintf(w, "%s [%s]\n", e.Entity, e.Result.Kind)
	if e.Result.IsFailure() {
		fmt.Fprintf(w, "  failed: %s\n\n", e.Meanings)
		return
	}
	switch e.Result.Kind {
	case types.ResultDisambiguated:
		if len(e.Result.Candidates) == 0 {
			fmt.Fprintf(w, "  %s\n", types.NoDisambiguationFound)
		}
		for i, c := range e.Result.Candidates {
			fmt.Fprintf(w, "  %2d. %s\n      %s\n", i+1, c.Label, c.Link)
		}
	case types.ResultArticle:
		fmt.Fprintf(w, "  %s\n  %s\n", e.Result.Summary, e.Result.Link)
	}
	fmt.Fprintln(w)
}
