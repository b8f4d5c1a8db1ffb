package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newCacheCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the credits cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List cached lookups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.openCache()
			entries := c.Entries()
			out := cmd.OutOrStdout()

			size := "empty"
			if fi, err := os.Stat(c.Path()); err == nil {
				size = humanize.Bytes(uint64(fi.Size()))
			}
			fmt.Fprintf(out, "%s (%s, %d entries)\n", c.Path(), size, len(entries))

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, e := range entries {
				count := 0
				if e.Bundle != nil {
					count = e.Bundle.Len()
				}
				fmt.Fprintf(tw, "%s\t%s\t%d credits\tstored %s\texpires %s\n",
					e.Key, e.State, count, humanize.Time(e.StoredAt), humanize.Time(e.ExpiresAt))
			}
			return tw.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached lookup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.openCache()
			n := len(c.Entries())
			if err := c.Purge(); err != nil {
				return err
			}
			a.log.Info("Removed %d cached lookups from %s", n, c.Path())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "prune",
		Short: "Remove expired lookups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.openCache()
			n, err := c.Prune()
			if err != nil {
				return err
			}
			a.log.Info("Removed %d expired lookups", n)
			return nil
		},
	})

	return cmd
}
