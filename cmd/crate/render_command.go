package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"crate/internal/render"
	"crate/internal/store"
)

// newRenderCommand regenerates site content from the cache alone, no
// network access. Useful after template changes or manual edits.
func newRenderCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Re-render site content from cached records",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			renderer, err := render.New(cfg)
			if err != nil {
				return err
			}

			releases, err := st.ListReleases(cmd.Context(), store.ReleaseFilter{})
			if err != nil {
				return err
			}
			for _, release := range releases {
				if _, err := renderer.RenderRelease(release); err != nil {
					return fmt.Errorf("render release %d: %w", release.ReleaseID, err)
				}
			}

			artists, err := st.ListArtists(cmd.Context())
			if err != nil {
				return err
			}
			for _, artist := range artists {
				if _, err := renderer.RenderArtist(artist); err != nil {
					return fmt.Errorf("render artist %d: %w", artist.ArtistID, err)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Rendered %d releases and %d artists\n", len(releases), len(artists))
			return nil
		},
	}
	return cmd
}
