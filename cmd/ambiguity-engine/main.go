// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the ambiguity-engine CLI.
// It resolves Bengali entity names against bn.wikipedia.org, collecting the
// candidate meanings of ambiguous names and a summary for the rest.
package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/ambiguity-engine/internal/secrets"
	"github.com/pdiddy/ambiguity-engine/internal/store"
	"github.com/pdiddy/ambiguity-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// logger is the diagnostic logger configured by the root command.
var logger = zerolog.Nop()

// rootCmd is the base command for the ambiguity-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "ambiguity-engine",
	Short: "Resolve Bengali entity names against Wikipedia",
	Long: `ambiguity-engine looks up entity names on bn.wikipedia.org. For a name
that leads to a disambiguation page it collects the candidate meanings and
their links; for a name that leads to an article it collects a summary.

Use resolve for one-off lookups. For a list of names, import the list into
the result store, then run the batch; progress survives interruption and
results can be shown or exported at any time.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLogger(viper.GetString("log_level"), viper.GetBool("log_json"), os.Stderr)
		if err != nil {
			return err
		}
		logger = l

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug().Strs("keys", keys).Msg("loaded secrets")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := types.DefaultPipelineConfig()
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./ambiguity-engine.yaml or ~/.config/ambiguity-engine/ambiguity-engine.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.Bool("log-json", false, "write logs as JSON lines instead of console text")
	pf.String("db", defaults.Store.DBPath, "SQLite result store")

	viper.BindPFlag("log_level", pf.Lookup("log-level"))
	viper.BindPFlag("log_json", pf.Lookup("log-json"))
	viper.BindPFlag("store.db_path", pf.Lookup("db"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("ambiguity-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "ambiguity-engine"))
		}
	}

	viper.SetEnvPrefix("AMBIGUITY_ENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the diagnostic logger: console text on w, or JSON lines
// when jsonOut is set.
func newLogger(level string, jsonOut bool, w io.Writer) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	if !jsonOut {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// pipelineConfig folds the config file, environment and bound flags over
// the defaults.
func pipelineConfig() (types.PipelineConfig, error) {
	cfg := types.DefaultPipelineConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("reading configuration: %w", err)
	}
	cfg.Resolver.UserAgent = secrets.UserAgent(cfg.Resolver.UserAgent, loadedSecrets)
	return cfg, nil
}

func httpClient(cfg types.ResolverConfig) *http.Client {
	return &http.Client{
		Timeout: cfg.Timeout,
	}
}

func openStore(cfg types.PipelineConfig) (*store.Store, error) {
	s, err := store.NewStore(cfg.Store)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("db", s.Path()).Msg("opened result store")
	return s, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
