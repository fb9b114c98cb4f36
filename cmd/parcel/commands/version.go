package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/parcel/internal/build"
)

func (c *CLI) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the application version",
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		RunE: func(*cobra.Command, []string) error {
			_, err := fmt.Fprintf(c.out, "parcel version %s (commit %s, built %s)\n", build.Version, build.Commit, build.Date)
			return err
		},
	}
}
