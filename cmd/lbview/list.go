package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/lbview/internal/listing"
	"github.com/verte-zerg/lbview/internal/model"
	"github.com/verte-zerg/lbview/internal/pipeline"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print a leaderboard page or search results",
		Args:  cobra.NoArgs,
		RunE:  runListCmd,
	}
	cmd.Flags().IntVar(&listPage, "page", 1, "page to print")
	cmd.Flags().BoolVar(&listAll, "all", false, "print every page")
	return cmd
}

func runListCmd(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if listPage < 1 || listPage > s.pages {
		return fmt.Errorf("--page must be between 1 and %d", s.pages)
	}
	agg := newAggregator(s)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var entries []model.Entry
	if listAll || s.selection.Searching() {
		res, err := agg.Fetch(ctx)
		if err != nil {
			return fmt.Errorf("failed to load leaderboard: %w", err)
		}
		if res.Partial() {
			logErrln(res.Warning())
		}
		entries = res.Entries
	} else {
		entries, err = agg.FetchPage(ctx, listPage)
		if err != nil {
			return fmt.Errorf("failed to load page %d: %w", listPage, err)
		}
	}

	rows := pipeline.Apply(entries, s.selection.Query())
	if len(rows) == 0 {
		logErrln("No results to display.")
	}
	pinned := s.viewer.Entry()
	return listing.Write(cmd.OutOrStdout(), rows, &pinned, listing.TerminalWidth(os.Stdout))
}
