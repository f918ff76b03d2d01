package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"crate/internal/store"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var recent int
	var health bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show cache contents and progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			if health {
				return printHealth(cmd, st)
			}

			stats, err := st.Stats(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, tabulate(
				countColumns("Releases", "Artists", "Completed", "Skipped"),
				[][]string{{
					strconv.Itoa(stats.Releases),
					strconv.Itoa(stats.Artists),
					strconv.Itoa(stats.Completed),
					strconv.Itoa(stats.Skipped),
				}},
			))

			if recent <= 0 {
				return nil
			}
			releases, err := st.ListReleases(cmd.Context(), store.ReleaseFilter{SortKey: "added"})
			if err != nil {
				return err
			}
			if len(releases) > recent {
				releases = releases[:recent]
			}
			rows := make([][]string, 0, len(releases))
			for _, release := range releases {
				rows = append(rows, []string{
					strconv.FormatInt(release.ReleaseID, 10),
					release.ArtistName,
					release.AlbumTitle,
					release.DateAdded.Format("2006-01-02"),
				})
			}
			fmt.Fprintln(out, tabulate(
				[]column{
					{title: "ID", numeric: true},
					{title: "Artist"},
					{title: "Album"},
					{title: "Added"},
				},
				rows,
			))
			return nil
		},
	}

	cmd.Flags().IntVar(&recent, "recent", 10, "Also list the N most recently added releases (0 to hide)")
	cmd.Flags().BoolVar(&health, "health", false, "Check cache database health (schema, integrity)")
	return cmd
}

func printHealth(cmd *cobra.Command, st *store.Store) error {
	report, err := st.CheckHealth(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Database path: %s\n", report.DBPath)
	fmt.Fprintf(out, "Database exists: %s\n", yesNo(report.DatabaseExists))
	fmt.Fprintf(out, "Readable: %s\n", yesNo(report.DatabaseReadable))
	if len(report.TablesPresent) > 0 {
		fmt.Fprintf(out, "Tables: %s\n", strings.Join(report.TablesPresent, ", "))
	}
	if len(report.MissingTables) > 0 {
		fmt.Fprintf(out, "Missing tables: %s\n", strings.Join(report.MissingTables, ", "))
	} else {
		fmt.Fprintln(out, "Missing tables: none")
	}
	fmt.Fprintf(out, "Integrity check: %s\n", yesNo(report.IntegrityCheck))
	if report.Error != "" {
		fmt.Fprintf(out, "Error: %s\n", report.Error)
	}
	return nil
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
