package commands

import (
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"gitcohort/internal/engine"
	"gitcohort/internal/metrics"
	"gitcohort/internal/warm"
)

var warmParallelism int

var warmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Precompute and cache reports for every scope and standard window size",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		cache, closeCache, err := openCache()
		if err != nil {
			return err
		}
		defer closeCache()

		if cfg.MetricsAddr != "" {
			go func() {
				log.Info().Str("addr", cfg.MetricsAddr).Msg("Serving metrics")
				if err := http.ListenAndServe(cfg.MetricsAddr, metrics.Handler()); err != nil {
					log.Warn().Err(err).Msg("Metrics listener stopped")
				}
			}()
		}

		job := &warm.Job{
			Engine:       engine.New(store, cache),
			Store:        store,
			WindowSizes:  cfg.WindowSizes,
			LookbackDays: cfg.WarmLookbackDays,
			Parallelism:  warmParallelism,
		}
		if cfg.PrewarmURL != "" {
			job.Notifier = warm.NewNotifier(cfg.PrewarmURL)
		}

		return job.Run(cmd.Context())
	},
}

func init() {
	warmCmd.Flags().IntVar(&warmParallelism, "parallelism", 4, "concurrent scope computations")
	rootCmd.AddCommand(warmCmd)
}
