package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/parcel/internal/core/domain"
	"go.trai.ch/parcel/internal/engine/reclaim"
	"go.trai.ch/zerr"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean [paths...]",
		Short: "Delete cached files",
		Long: "Without arguments, delete files the catalog no longer references.\n" +
			"With paths, delete the files holding those resources.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all, _ := cmd.Flags().GetBool("all")
			force, _ := cmd.Flags().GetBool("force")

			res, err := c.clean(cmd.Context(), args, all, force)
			if err != nil {
				return err
			}
			if res.Skipped {
				_, err = fmt.Fprintln(c.out, "reclaimed recently, use --force to sweep now")
				return err
			}
			_, err = fmt.Fprintln(c.out, reclaim.FormatSummary(res.Deleted))
			if err == nil && len(res.Failed) > 0 {
				err = zerr.With(zerr.Wrap(domain.ErrReclaimFailed, "clean"), "failed", len(res.Failed))
			}
			return err
		},
	}
	cmd.Flags().Bool("all", false, "Delete every cached file")
	cmd.Flags().BoolP("force", "f", false, "Ignore the reclaim cooldown")
	return cmd
}

func (c *CLI) clean(ctx context.Context, paths []string, all, force bool) (reclaim.Result, error) {
	if all {
		return c.app.DeleteAllCache(ctx)
	}

	if err := c.refresh(ctx); err != nil {
		return reclaim.Result{}, err
	}
	if len(paths) == 0 {
		return c.app.ReclaimUnused(ctx, force)
	}

	records := make([]domain.AssetRecord, 0, len(paths))
	for _, path := range paths {
		record, err := c.app.GetRecord(path)
		if err != nil {
			return reclaim.Result{}, err
		}
		records = append(records, record)
	}
	return c.app.DeleteCache(ctx, records)
}
