package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newSkipCommand(ctx *commandContext) *cobra.Command {
	skipCmd := &cobra.Command{
		Use:   "skip",
		Short: "Manage the release skip list",
	}
	skipCmd.AddCommand(newSkipAddCommand(ctx))
	skipCmd.AddCommand(newSkipRemoveCommand(ctx))
	skipCmd.AddCommand(newSkipListCommand(ctx))
	return skipCmd
}

func parseReleaseArg(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid release id %q", arg)
	}
	return id, nil
}

func newSkipAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <release-id>",
		Short: "Exclude a release from future runs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseReleaseArg(args[0])
			if err != nil {
				return err
			}
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.AddSkip(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Release %d added to the skip list\n", id)
			return nil
		},
	}
}

func newSkipRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <release-id>",
		Short: "Allow a skipped release to be processed again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseReleaseArg(args[0])
			if err != nil {
				return err
			}
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			removed, err := st.RemoveSkip(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("release %d is not on the skip list", id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Release %d removed from the skip list\n", id)
			return nil
		},
	}
}

func newSkipListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the skip list",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			skips, err := st.ListSkips(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(skips) == 0 {
				fmt.Fprintln(out, "Skip list is empty")
				return nil
			}
			rows := make([][]string, 0, len(skips))
			for _, entry := range skips {
				rows = append(rows, []string{
					strconv.FormatInt(entry.ReleaseID, 10),
					entry.AddedAt.Format("2006-01-02 15:04"),
				})
			}
			fmt.Fprintln(out, tabulate(
				[]column{{title: "Release", numeric: true}, {title: "Added"}},
				rows,
			))
			return nil
		},
	}
}
