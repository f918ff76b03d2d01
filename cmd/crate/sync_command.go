package main

import (
	"fmt"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"log/slog"

	"github.com/spf13/cobra"

	"crate/internal/config"
	"crate/internal/images"
	"crate/internal/pipeline"
	"crate/internal/render"
	"crate/internal/sources/applemusic"
	"crate/internal/sources/discogs"
	"crate/internal/sources/spotify"
	"crate/internal/sources/wikipedia"
	"crate/internal/store"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var (
		limit       int
		artistID    int64
		releaseID   int64
		artistsOnly bool
		force       bool
		dryRun      bool
		delay       float64
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch, enrich, and render the collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("delay") {
				if delay < 0 {
					return fmt.Errorf("--delay must not be negative")
				}
				cfg.Discogs.DelaySeconds = delay
			}

			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			release, err := ctx.acquireRunLock()
			if err != nil {
				return err
			}
			defer release()

			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			p, err := buildPipeline(cfg, st, logger)
			if err != nil {
				return err
			}

			summary, err := p.Run(runCtx, pipeline.Scope{
				Limit:       limit,
				ArtistID:    artistID,
				ReleaseID:   releaseID,
				ArtistsOnly: artistsOnly,
				Force:       force,
				DryRun:      dryRun,
			})
			if summary != nil {
				printSummary(cmd, summary)
			}
			return err
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Process at most N releases (0 = all)")
	cmd.Flags().Int64Var(&artistID, "artist", 0, "Process only releases by this Discogs artist id")
	cmd.Flags().Int64Var(&releaseID, "release", 0, "Process a single Discogs release id")
	cmd.Flags().BoolVar(&artistsOnly, "artists-only", false, "Refresh artist records without touching releases")
	cmd.Flags().BoolVar(&force, "force", false, "Re-process releases already marked done")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Walk the collection without writing anything")
	cmd.Flags().Float64Var(&delay, "delay", 0, "Seconds to wait between catalog items")
	return cmd
}

// buildPipeline wires the catalog plus every enabled enrichment source.
func buildPipeline(cfg *config.Config, st *store.Store, logger *slog.Logger) (*pipeline.Pipeline, error) {
	catalog := discogs.NewClient(cfg)
	p := pipeline.New(cfg, st, catalog, logger)

	if cfg.AppleMusic.Enabled {
		tokens, err := applemusic.NewTokenManager(cfg.AppleMusic.KeyID, cfg.AppleMusic.TeamID, cfg.AppleMusic.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("apple music token manager: %w", err)
		}
		p.WithAppleMusic(applemusic.NewClient(cfg, tokens))
	}
	if cfg.Spotify.Enabled {
		p.WithSpotify(spotify.NewClient(cfg))
	}
	if cfg.Wikipedia.Enabled {
		p.WithWikipedia(wikipedia.NewClient(cfg))
	}

	renderer, err := render.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("renderer: %w", err)
	}
	p.WithRenderer(renderer)
	p.WithImages(images.NewFetcher(cfg, logger))
	return p, nil
}

func printSummary(cmd *cobra.Command, summary *pipeline.Summary) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s finished in %s\n", summary.RunID, summary.Duration.Round(time.Millisecond))
	fmt.Fprintln(out, tabulate(
		countColumns("Processed", "Skipped", "Already done", "Failed", "Artists", "Missed fragments"),
		[][]string{{
			strconv.Itoa(summary.Processed),
			strconv.Itoa(summary.Skipped),
			strconv.Itoa(summary.AlreadyDone),
			strconv.Itoa(summary.Failed),
			strconv.Itoa(summary.ArtistsUpdated),
			strconv.Itoa(summary.MissedFragments),
		}},
	))
}
