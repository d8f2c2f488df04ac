// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/parseyaml/internal/history"
	"github.com/pdiddy/parseyaml/internal/ui"
	"github.com/pdiddy/parseyaml/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded conversion runs",
	Long: `History lists conversion runs recorded by "convert --history" (or with
history.enabled set in the config), newest first.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 0, "maximum runs to list (default: history.max_results)")
	historyCmd.Flags().String("format", "table", "output format: table, json, or yaml")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")

	store, err := history.Open(cfg.History)
	if errors.Is(err, history.ErrNoHistory) {
		return printRuns(cmd.OutOrStdout(), nil, format)
	}
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.Recent(cmd.Context(), limit)
	if err != nil {
		return err
	}
	return printRuns(cmd.OutOrStdout(), runs, format)
}

func printRuns(w io.Writer, runs []types.ConversionRun, format string) error {
	switch format {
	case "json":
		if runs == nil {
			runs = []types.ConversionRun{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	case "yaml":
		data, err := yaml.Marshal(runs)
		if err != nil {
			return fmt.Errorf("marshaling runs: %w", err)
		}
		_, err = w.Write(data)
		return err
	case "table", "":
		printTable(w, runs)
		return nil
	default:
		return fmt.Errorf("unknown format %q (want table, json, or yaml)", format)
	}
}

func printTable(w io.Writer, runs []types.ConversionRun) {
	if len(runs) == 0 {
		ui.Info(w, "No conversion runs recorded.")
		return
	}

	ui.Header(w, "%-5s %-20s %-9s %8s  %s", "ID", "STARTED", "STATUS", "BYTES", "INPUT -> OUTPUT")
	for _, r := range runs {
		line := fmt.Sprintf("%-5d %-20s %-9s %8d  %s -> %s",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.Status, r.Bytes, r.Input, r.Output)
		if r.Status == types.ConversionFailed {
			ui.Failure(w, "%s  [%s] %s", line, r.ErrorKind, r.Error)
			continue
		}
		ui.Plain(w, "%s", line)
	}
}
