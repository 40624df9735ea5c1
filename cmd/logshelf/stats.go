package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print entry counts per level",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd.OutOrStdout(), journalPath(), jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	return cmd
}

func runStats(out io.Writer, path string, jsonOutput bool) error {
	store, err := loadStore(path)
	if err != nil {
		return err
	}

	stats := store.Stats()
	if jsonOutput {
		return json.NewEncoder(out).Encode(struct {
			Total  int            `json:"total"`
			Levels map[string]int `json:"levels"`
		}{
			Total:  store.Total(),
			Levels: stats,
		})
	}

	fmt.Fprintf(out, "Total: %d\n", store.Total())
	levels := make([]string, 0, len(stats))
	for level := range stats {
		levels = append(levels, level)
	}
	sort.Strings(levels)
	for _, level := range levels {
		fmt.Fprintf(out, "  %s: %d\n", level, stats[level])
	}
	return nil
}
