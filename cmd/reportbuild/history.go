// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/reportbuild/internal/history"
	"github.com/pdiddy/reportbuild/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent compile and assemble runs",
	Long: `History reads build/history.db and lists the most recent runs with
their outcome, the failing stage (if any) and the final artifact.`,
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	store, err := history.Open(cfg.BuildPath())
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Recent(cmd.Context(), limit)
	if err != nil {
		return err
	}
	return formatHistory(os.Stdout, runs, jsonOutput)
}

func formatHistory(w io.Writer, runs []types.RunRecord, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}

	fmt.Fprintf(w, "%-20s  %-8s  %-7s  %-9s  %-16s  %s\n",
		"Started", "Flow", "Result", "Duration", "Failed stage", "Artifact")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for _, r := range runs {
		result := "ok"
		if !r.Succeeded() {
			result = "FAILED"
		}
		fmt.Fprintf(w, "%-20s  %-8s  %-7s  %-9s  %-16s  %s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Flow, result, r.Duration().Round(10*time.Millisecond),
			r.FailedStage, r.Artifact)
	}
	return nil
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of runs to list")
	historyCmd.Flags().Bool("json", false, "output runs as JSON")

	rootCmd.AddCommand(historyCmd)
}
