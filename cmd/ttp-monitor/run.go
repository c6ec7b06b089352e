// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/ttp-monitor/internal/backend"
	"github.com/pdiddy/ttp-monitor/internal/fetch"
	"github.com/pdiddy/ttp-monitor/internal/report"
	"github.com/pdiddy/ttp-monitor/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: fetch, analyze, report",
	Long: `Run executes the whole pipeline in one shot: fetch content from the
configured sources, analyze it with the configured backend, and render
the HTML digest. The backend is checked before any fetching starts so an
unreachable backend fails fast.`,
	RunE: runPipeline,
}

func init() {
	addAIFlags(runCmd)
	runCmd.Flags().StringSlice("subreddit", nil, "subreddit to fetch (repeatable)")
	runCmd.Flags().StringSlice("article-url", nil, "news listing page to crawl (repeatable)")
	runCmd.Flags().Int("max-articles", 0, "maximum articles per listing page (default 5)")
	runCmd.Flags().String("content-dir", "", "directory for content snapshots (default content)")
	runCmd.Flags().Duration("timeout", 0, "HTTP request timeout for fetching (default 30s)")
	runCmd.Flags().String("db", defaultDBPath, "path to the run database")
	runCmd.Flags().String("output-dir", "reports", "directory for rendered reports")

	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	fetchCfg, err := fetchConfigFromFlags(cmd)
	if err != nil {
		return err
	}
	if len(fetchCfg.Subreddits) == 0 && len(fetchCfg.ArticleURLs) == 0 {
		return fmt.Errorf("no sources configured: set sources.subreddits or sources.article_urls in the config file, or pass --subreddit / --article-url")
	}

	// Probe the backend before spending time on fetching.
	analyzeCfg := analyzeConfigFromFlags(cmd)
	gen, err := backend.New(analyzeCfg.AIConfig)
	if err != nil {
		return err
	}

	ctx := context.Background()
	client := &http.Client{Timeout: fetchCfg.Timeout}

	result := fetch.FetchAll(ctx, client, fetchCfg, os.Stdout)
	if len(result.Items) == 0 {
		return fmt.Errorf("no content fetched: all %d source(s) failed or returned nothing", result.Failed)
	}
	snapshot, err := fetch.WriteSnapshot(fetchCfg.ContentDir, result.Items)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Wrote %d items to %s\n", len(result.Items), snapshot)

	dbPath, _ := cmd.Flags().GetString("db")
	runID, records, err := analyzeAndSave(ctx, gen, analyzeCfg, dbPath, result.Items)
	if err != nil {
		return err
	}

	db, err := store.NewStore(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	run, err := db.GetRun(ctx, runID)
	if err != nil {
		return err
	}

	outputDir, _ := cmd.Flags().GetString("output-dir")
	meta := report.Meta{
		GeneratedAt:   time.Now(),
		Model:         run.Model,
		Actionable:    run.Actionable,
		Informational: run.Informational,
		Failed:        run.Failed,
	}
	htmlPath, jsonPath, err := report.WriteFiles(outputDir, records, meta)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Report: %s\n", htmlPath)
	fmt.Fprintf(os.Stdout, "Raw data: %s\n", jsonPath)
	return nil
}
