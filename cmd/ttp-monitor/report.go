// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/ttp-monitor/internal/report"
	"github.com/pdiddy/ttp-monitor/internal/store"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render an analysis run as an HTML digest",
	Long: `Report renders a saved analysis run as an HTML digest grouped by content
type, alongside a raw JSON dump of the records. By default the most recent
run is rendered; pass --run to render a specific one.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().Int64("run", 0, "run ID to render (default: latest)")
	reportCmd.Flags().String("db", defaultDBPath, "path to the run database")
	reportCmd.Flags().String("output-dir", "reports", "directory for rendered reports")

	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	dbPath, _ := cmd.Flags().GetString("db")
	outputDir, _ := cmd.Flags().GetString("output-dir")
	runID, _ := cmd.Flags().GetInt64("run")

	db, err := store.NewStore(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()

	var run store.Run
	if runID > 0 {
		run, err = db.GetRun(ctx, runID)
	} else {
		run, err = db.LatestRun(ctx)
	}
	if err != nil {
		return err
	}

	records, err := db.RunRecords(ctx, run.ID)
	if err != nil {
		return err
	}

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

	fmt.Fprintf(os.Stdout, "Report for run %d: %s\n", run.ID, htmlPath)
	fmt.Fprintf(os.Stdout, "Raw data: %s\n", jsonPath)
	return nil
}
