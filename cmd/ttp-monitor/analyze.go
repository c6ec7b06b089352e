// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/ttp-monitor/internal/analyze"
	"github.com/pdiddy/ttp-monitor/internal/backend"
	"github.com/pdiddy/ttp-monitor/internal/fetch"
	"github.com/pdiddy/ttp-monitor/internal/store"
	"github.com/pdiddy/ttp-monitor/pkg/types"
)

const defaultDBPath = "ttp-monitor.db"

var analyzeCmd = &cobra.Command{
	Use:   "analyze [snapshot]",
	Short: "Classify and extract threat intelligence from fetched content",
	Long: `Analyze runs each fetched item through the configured LLM backend in two
stages: a classification pass that assigns a content type, then a
type-specific extraction pass that pulls out structured intelligence.

With no argument the latest snapshot in the content directory is used.
Results are saved as a run in the local database. Per-item failures are
recorded in the run rather than aborting it.`,
	RunE: runAnalyze,
}

func init() {
	addAIFlags(analyzeCmd)
	analyzeCmd.Flags().String("content-dir", "content", "directory holding content snapshots")
	analyzeCmd.Flags().String("db", defaultDBPath, "path to the run database")

	rootCmd.AddCommand(analyzeCmd)
}

// addAIFlags registers the backend selection flags shared by analyze and run.
func addAIFlags(cmd *cobra.Command) {
	cmd.Flags().String("backend", "", "AI backend: ollama, claude, or gemini (default ollama)")
	cmd.Flags().String("model", "", "model name (default depends on backend)")
	cmd.Flags().String("base-url", "", "backend base URL (ollama only, default http://localhost:11434)")
	cmd.Flags().String("api-key", "", "API key (default from .secrets/)")
	cmd.Flags().Duration("ai-timeout", 0, "per-call timeout for generation requests (default 2m)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	contentDir, _ := cmd.Flags().GetString("content-dir")

	var snapshot string
	if len(args) > 0 {
		snapshot = args[0]
	} else {
		var err error
		snapshot, err = fetch.LatestSnapshot(contentDir)
		if err != nil {
			return err
		}
	}

	items, err := fetch.ReadSnapshot(snapshot)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return fmt.Errorf("snapshot %s contains no items", snapshot)
	}
	fmt.Fprintf(os.Stdout, "Analyzing %d items from %s\n", len(items), snapshot)

	cfg := analyzeConfigFromFlags(cmd)
	gen, err := backend.New(cfg.AIConfig)
	if err != nil {
		return err
	}

	dbPath, _ := cmd.Flags().GetString("db")
	_, _, err = analyzeAndSave(context.Background(), gen, cfg, dbPath, items)
	return err
}

// analyzeAndSave runs the batch and persists it as a run, returning the run ID
// and the records.
func analyzeAndSave(ctx context.Context, gen backend.Generator, cfg types.AnalyzeConfig, dbPath string, items []types.ContentItem) (int64, []types.AnalysisRecord, error) {
	startedAt := time.Now().UTC()

	pipeline := analyze.New(gen, cfg, os.Stderr)
	records, summary := pipeline.AnalyzeBatch(ctx, items, os.Stdout)

	db, err := store.NewStore(dbPath)
	if err != nil {
		return 0, nil, err
	}
	defer db.Close()

	runID, err := db.SaveRun(ctx, gen.Name(), startedAt, records)
	if err != nil {
		return 0, nil, err
	}
	fmt.Fprintf(os.Stdout, "Saved run %d (%d records)\n", runID, len(records))

	if summary.HasFailures() {
		fmt.Fprintf(os.Stderr, "warning: %d item(s) failed extraction; see the run records\n", summary.Failed)
	}
	return runID, records, nil
}

// analyzeConfigFromFlags merges config file settings with flag overrides.
func analyzeConfigFromFlags(cmd *cobra.Command) types.AnalyzeConfig {
	cfg := types.AnalyzeConfig{
		AIConfig: types.AIConfig{
			Backend: types.AIBackendKind(viper.GetString("ai.backend")),
			Model:   viper.GetString("ai.model"),
			BaseURL: viper.GetString("ai.base_url"),
		},
	}

	if v, _ := cmd.Flags().GetString("backend"); v != "" {
		cfg.Backend = types.AIBackendKind(v)
	}
	if v, _ := cmd.Flags().GetString("model"); v != "" {
		cfg.Model = v
	}
	if v, _ := cmd.Flags().GetString("base-url"); v != "" {
		cfg.BaseURL = v
	}
	if v, _ := cmd.Flags().GetDuration("ai-timeout"); v > 0 {
		cfg.AIConfig.Timeout = v
	}

	apiKey, _ := cmd.Flags().GetString("api-key")
	switch cfg.Backend {
	case types.BackendClaude:
		cfg.APIKey = secretDefault("anthropic-api-key", apiKey)
	case types.BackendGemini:
		cfg.APIKey = secretDefault("gemini-api-key", apiKey)
	}

	return cfg
}
