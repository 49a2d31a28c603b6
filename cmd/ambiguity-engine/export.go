package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored results to YAML or JSON",
	Long: `Export writes every entity of the result store, with its ambiguity data,
source links and status, to a YAML or JSON file.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	exportCmd.Flags().String("out", "", "output file (default Wikipedia_Ambiguity_Results.<format>)")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = "Wikipedia_Ambiguity_Results." + format
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
	switch format {
	case "yaml":
		err = st.ExportYAML(ctx, out)
	case "json":
		err = st.ExportJSON(ctx, out)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	fmt.Printf("Exported to %s\n", out)
	return nil
}
