package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"gitcohort/internal/engine"
	"gitcohort/internal/render"
)

var (
	reportScope  string
	reportStart  string
	reportEnd    string
	reportWindow int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print cohort reports for a scope and date range",
}

var statesCmd = &cobra.Command{
	Use:   "states",
	Short: "Per-window state census (new/retained/resurrected)",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, start, end, cleanup, err := reportSetup(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		report, err := e.StatesSummary(cmd.Context(), parseScope(reportScope), start, end, reportWindow)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), render.StatesTable(report))
		return nil
	},
}

var transitionsCmd = &cobra.Command{
	Use:   "transitions",
	Short: "Per-window-pair transition matrix",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, start, end, cleanup, err := reportSetup(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		report, err := e.TransitionsReport(cmd.Context(), parseScope(reportScope), start, end, reportWindow)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), render.TransitionsTable(report))
		return nil
	},
}

// reportSetup opens the ledger and cache and parses the shared date flags.
func reportSetup(cmd *cobra.Command) (*engine.Engine, time.Time, time.Time, func(), error) {
	var zero time.Time

	start, err := time.Parse(time.DateOnly, reportStart)
	if err != nil {
		return nil, zero, zero, nil, fmt.Errorf("bad --start: %w", err)
	}
	end, err := time.Parse(time.DateOnly, reportEnd)
	if err != nil {
		return nil, zero, zero, nil, fmt.Errorf("bad --end: %w", err)
	}

	store, closeStore, err := openStore(cmd.Context())
	if err != nil {
		return nil, zero, zero, nil, err
	}
	cache, closeCache, err := openCache()
	if err != nil {
		closeStore()
		return nil, zero, zero, nil, err
	}

	cleanup := func() {
		closeCache()
		closeStore()
	}
	return engine.New(store, cache), start, end, cleanup, nil
}

func init() {
	yesterday := time.Now().UTC().AddDate(0, 0, -1).Format(time.DateOnly)
	yearAgo := time.Now().UTC().AddDate(-1, 0, 0).Format(time.DateOnly)

	reportCmd.PersistentFlags().StringVar(&reportScope, "scope", "combined", "repository (owner/name), org:<login>, or combined")
	reportCmd.PersistentFlags().StringVar(&reportStart, "start", yearAgo, "range start (YYYY-MM-DD)")
	reportCmd.PersistentFlags().StringVar(&reportEnd, "end", yesterday, "range end, exclusive (YYYY-MM-DD)")
	reportCmd.PersistentFlags().IntVar(&reportWindow, "window", 7, "window size in days")

	reportCmd.AddCommand(statesCmd)
	reportCmd.AddCommand(transitionsCmd)
	rootCmd.AddCommand(reportCmd)
}
