package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"gitcohort/internal/github"
	"gitcohort/internal/ledger"
)

var ingestMaxPages int

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch recent activity for every tracked repository into the ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(cfg.TrackedRepos) == 0 {
			return fmt.Errorf("no tracked repositories configured (TRACKED_REPOS)")
		}

		// The actor directory is snapshotted once per run; events ingested in
		// this run all see the same bot/core classification.
		dir := ledger.NewActorDirectory(cfg.BotActors, cfg.CoreActors)
		client := github.NewClient(cfg.GitHub)

		if cfg.DatabaseURL != "" {
			return ingestToPostgres(cmd.Context(), client, dir)
		}
		return ingestToFiles(cmd.Context(), client, dir)
	},
}

func ingestToFiles(ctx context.Context, client github.Client, dir *ledger.ActorDirectory) error {
	store := ledger.NewFileStore()
	if err := store.LoadAll(cfg.LedgerDir); err != nil {
		return err
	}

	for _, repo := range cfg.TrackedRepos {
		since := store.LatestTimestamp(repo)
		fetched := 0

		for page := 1; page <= ingestMaxPages; page++ {
			dtos, err := client.ListRepoEvents(ctx, repo, page)
			if err != nil {
				log.Error().Err(err).Str("repo", repo).Msg("Fetch failed, keeping what we have")
				break
			}
			if len(dtos) == 0 {
				break
			}

			events := github.NormalizeAll(dtos, dir)
			if len(events) == 0 {
				continue
			}
			store.Append(repo, events)
			fetched += len(events)

			// Pages are newest-first; once a page dips below the high-water
			// mark the rest is already stored.
			last := events[len(events)-1]
			if !since.IsZero() && last.OccurredAt().Before(since) {
				break
			}
		}

		if err := store.Save(cfg.LedgerDir, repo); err != nil {
			return err
		}
		log.Info().Str("repo", repo).Int("fetched", fetched).Int("total", store.Count(repo)).Msg("Repository ingested")
	}
	return nil
}

func ingestToPostgres(ctx context.Context, client github.Client, dir *ledger.ActorDirectory) error {
	pg, err := ledger.OpenPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pg.Close()

	if err := pg.EnsureSchema(ctx); err != nil {
		return err
	}

	for _, repo := range cfg.TrackedRepos {
		fetched := 0
		for page := 1; page <= ingestMaxPages; page++ {
			dtos, err := client.ListRepoEvents(ctx, repo, page)
			if err != nil {
				log.Error().Err(err).Str("repo", repo).Msg("Fetch failed, keeping what we have")
				break
			}
			if len(dtos) == 0 {
				break
			}

			events := github.NormalizeAll(dtos, dir)
			if err := pg.InsertEvents(ctx, events); err != nil {
				return err
			}
			fetched += len(events)
		}
		log.Info().Str("repo", repo).Int("fetched", fetched).Msg("Repository ingested")
	}
	return nil
}

func init() {
	ingestCmd.Flags().IntVar(&ingestMaxPages, "max-pages", 10, "maximum event pages to fetch per repository")
	rootCmd.AddCommand(ingestCmd)
}
