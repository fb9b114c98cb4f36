package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.trai.ch/parcel/internal/ui/style"
)

func (c *CLI) newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show which resources are current",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			group, _ := cmd.Flags().GetString("group")
			if err := c.refresh(cmd.Context()); err != nil {
				return err
			}

			info, err := c.app.CatalogInfo()
			if err != nil {
				return err
			}
			for _, cycle := range info.Cycles {
				c.components.Logger.Warn("dependency cycle: " + cycle)
			}

			records, err := c.app.Records()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
			for _, r := range records {
				if group != "" && r.Group.String() != group {
					continue
				}
				current, err := c.app.IsCurrent(r.Path)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", style.Current(current), r.Path, r.Key())
			}
			return tw.Flush()
		},
	}
	cmd.Flags().String("group", "", "Only show resources of this group")
	return cmd
}
