package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/parcel/internal/adapters/detector"
	"go.trai.ch/parcel/internal/core/domain"
	"golang.org/x/sync/errgroup"
)

func (c *CLI) newUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update [paths...]",
		Short: "Bring resources and their dependencies up to date",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all, _ := cmd.Flags().GetBool("all")
			group, _ := cmd.Flags().GetString("group")
			if len(args) == 0 && !all {
				// Display command usage help without returning an error
				_ = cmd.Help()
				return nil
			}

			ctx := cmd.Context()
			if err := c.refresh(ctx); err != nil {
				return err
			}

			paths := args
			if all {
				stale, err := c.app.GetRequiredUpdates(ctx, group)
				if err != nil {
					return err
				}
				paths = recordPaths(stale)
			}
			if len(paths) == 0 {
				_, err := c.out.Write([]byte("everything is up to date\n"))
				return err
			}

			flag, _ := cmd.Flags().GetString("progress")
			printer := newProgressPrinter(c.out, detector.ResolveMode(detector.DetectEnvironment(c.out), flag))

			var g errgroup.Group
			for _, path := range paths {
				track := printer.track(path)
				g.Go(func() error {
					err := c.app.RequestUpdate(ctx, path, track.report)
					track.done(err)
					return err
				})
			}
			return g.Wait()
		},
	}
	cmd.Flags().Bool("all", false, "Update every stale resource")
	cmd.Flags().String("group", "", "With --all, only update resources of this group")
	return cmd
}

func recordPaths(records []domain.AssetRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Path
	}
	return out
}
