package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/abelbrown/ramah/internal/feed"
	"github.com/abelbrown/ramah/internal/stats"
	"github.com/spf13/cobra"
)

func newStatsCmd(opts *options) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Fetch the feed once and print its statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			store := feed.NewStore()
			snap, err := newFetcher(cfg, store).Fetch(cmd.Context())
			if err != nil {
				return err
			}

			d := stats.Compute(snap.Stories, snap.Metadata, time.Now())
			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(d)
			}
			printStats(cmd.OutOrStdout(), d)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print as JSON")
	return cmd
}

func printStats(w io.Writer, d stats.Derived) {
	fmt.Fprintf(w, "Stories:       %d\n", d.Total)
	fmt.Fprintf(w, "Oldest story:  %s\n", d.OldestDate)
	fmt.Fprintf(w, "Last updated:  %s\n", d.LastUpdated)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Sources:")
	if len(d.Sources) == 0 {
		fmt.Fprintf(w, "  %s\n", stats.NoArticles)
	}
	for _, sc := range d.Sources {
		fmt.Fprintf(w, "  %5d  %s\n", sc.Count, sc.Source)
	}
}
