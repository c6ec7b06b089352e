// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pdiddy/ttp-monitor/internal/store"
	"github.com/pdiddy/ttp-monitor/pkg/types"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show content type counts for a saved run",
	Long: `Stats prints a per-content-type breakdown of a saved analysis run.
By default the most recent run is shown; pass --run for a specific one.`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().Int64("run", 0, "run ID to inspect (default: latest)")
	statsCmd.Flags().String("db", defaultDBPath, "path to the run database")

	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	dbPath, _ := cmd.Flags().GetString("db")
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

	counts, err := db.CountByType(ctx, run.ID)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Run %d (%s, model %s): %d records\n",
		run.ID, run.StartedAt.Format("2006-01-02 15:04"), run.Model, run.Total())

	names := make([]string, 0, len(counts))
	for ct := range counts {
		names = append(names, string(ct))
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(os.Stdout, "  %-20s %d\n", name, counts[types.ContentType(name)])
	}
	return nil
}
