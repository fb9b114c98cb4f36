package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/parcel/internal/adapters/decoder"
	"go.trai.ch/parcel/internal/app"
)

func (c *CLI) newCatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cat <path>",
		Short: "Update a resource if needed and print its file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.refresh(ctx); err != nil {
				return err
			}
			data, err := app.Load[[]byte](ctx, c.app, args[0], decoder.Bytes{})
			if err != nil {
				return err
			}
			_, err = c.out.Write(data)
			return err
		},
	}
}
