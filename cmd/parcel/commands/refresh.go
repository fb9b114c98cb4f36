package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Fetch the catalog if it changed and reclaim unreferenced files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.refresh(cmd.Context()); err != nil {
				return err
			}
			info, err := c.app.CatalogInfo()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(c.out, "catalog %s (%s): %d records, %d packages\n",
				info.Version, info.Hash, info.Records, info.Packages)
			return err
		},
	}
}
