// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the coauthor-graph CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/coauthor-graph/internal/config"
	"github.com/pdiddy/coauthor-graph/internal/observability"
	"github.com/pdiddy/coauthor-graph/internal/secrets"
	"github.com/pdiddy/coauthor-graph/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// app holds the state shared by all subcommands of one invocation.
type app struct {
	v       *viper.Viper
	cfg     types.PipelineConfig
	log     zerolog.Logger
	metrics *observability.Metrics

	// secrets holds values loaded from secretsDir at startup.
	secrets    map[string]string
	secretsDir string
}

// secretDefault returns fallback when it is set, and the secret stored
// under key otherwise.
func (a *app) secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	return a.secrets[key]
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), secretsDir: ".secrets/", log: zerolog.Nop()}
	config.SetDefaults(a.v)

	root := &cobra.Command{
		Use:   "coauthor-graph",
		Short: "Build co-authorship networks from publication metadata",
		Long: `coauthor-graph turns publication records into weighted co-authorship
graphs. Authors become nodes annotated with their dominant research
category; every pair of co-authors on a paper adds weight to the edge
between them.

Records come from the OpenAlex API (collect), from CSV or JSONL files, or
from DBLP for the CSIndex sub-area networks. Graphs are exported as GEXF,
JSON, YAML, or SQLite.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			path := a.v.GetString("metrics_file")
			if path == "" {
				return nil
			}
			if err := a.metrics.WriteFile(path); err != nil {
				return err
			}
			a.log.Debug().Str("path", path).Msg("wrote metrics")
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (default: ./coauthor-graph.yaml or ~/.config/coauthor-graph/config.yaml)")
	pf.String("log-level", "", "log level: trace, debug, info, warn, error")
	pf.String("log-format", "", "log format: console or json")
	pf.String("metrics-file", "", "write prometheus metrics to this file on exit")
	a.v.BindPFlag("logging.level", pf.Lookup("log-level"))
	a.v.BindPFlag("logging.format", pf.Lookup("log-format"))
	a.v.BindPFlag("metrics_file", pf.Lookup("metrics-file"))

	root.AddCommand(
		newCollectCmd(a),
		newCountsCmd(a),
		newBuildCmd(a),
		newPartitionCmd(a),
		newResearchersCmd(a),
		newSubareaCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup reads the config file, secrets, logger, and metrics.
func (a *app) setup(cmd *cobra.Command) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	if cfgFile != "" {
		a.v.SetConfigFile(cfgFile)
	} else {
		a.v.SetConfigName("coauthor-graph")
		a.v.SetConfigType("yaml")
		a.v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			a.v.AddConfigPath(filepath.Join(home, ".config", "coauthor-graph"))
		}
	}
	config.BindEnv(a.v)

	usedFile := ""
	if err := a.v.ReadInConfig(); err == nil {
		usedFile = a.v.ConfigFileUsed()
	} else if cfgFile != "" {
		return fmt.Errorf("reading config %s: %w", cfgFile, err)
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = observability.NewLogger(cfg.Logging)
	a.metrics = observability.NewMetrics()
	if usedFile != "" {
		a.log.Info().Str("path", usedFile).Msg("using config file")
	}

	s, err := secrets.Load(a.secretsDir, a.log)
	if err != nil {
		return err
	}
	a.secrets = s
	if len(s) > 0 {
		keys := make([]string, 0, len(s))
		for k := range s {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		a.log.Debug().Strs("keys", keys).Msg("loaded secrets")
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
