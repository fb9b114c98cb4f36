// Package commands implements the CLI commands for parcel.
package commands

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.trai.ch/parcel/internal/app"
	"go.trai.ch/parcel/internal/build"
	"go.trai.ch/parcel/internal/core/domain"
)

// RemoteEnv names the environment variable consulted when --remote is not set.
const RemoteEnv = "PARCEL_REMOTE"

// jsonLogger is implemented by loggers that can switch to JSON output.
type jsonLogger interface {
	SetJSON(enable bool)
}

// CLI represents the command line interface for parcel.
type CLI struct {
	components *app.Components
	app        *app.App
	out        io.Writer
	errOut     io.Writer
	rootCmd    *cobra.Command
}

// New creates a new CLI instance with the given components.
func New(components *app.Components, out, errOut io.Writer) *CLI {
	rootCmd := &cobra.Command{
		Use:           "parcel",
		Short:         "Keep a local content cache in sync with a remote catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "Path to parcel.yaml (default: search upwards from the working directory)")
	flags.String("remote", "", "Remote source URL (https://, file://, s3://); defaults to $"+RemoteEnv)
	flags.String("catalog", "", "Catalog version token")
	flags.String("dir", "", "Install directory")
	flags.String("shared", "", "Shared content directory used in local mode")
	flags.String("mode", "", "Content mode: networked, local or simulated")
	flags.String("progress", "auto", "Progress output: auto, live or linear")
	flags.Bool("metrics", false, "Print Prometheus metrics after the command")
	flags.Bool("log-json", false, "Emit logs as JSON")

	c := &CLI{
		components: components,
		app:        components.App,
		out:        out,
		errOut:     errOut,
		rootCmd:    rootCmd,
	}

	rootCmd.PersistentPreRunE = c.configure
	rootCmd.PersistentPostRunE = c.report

	rootCmd.AddCommand(c.newRefreshCmd())
	rootCmd.AddCommand(c.newUpdateCmd())
	rootCmd.AddCommand(c.newStatusCmd())
	rootCmd.AddCommand(c.newCatCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// configure resolves settings from the config file and flags and applies them.
func (c *CLI) configure(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()

	if asJSON, _ := flags.GetBool("log-json"); asJSON {
		if l, ok := c.components.Logger.(jsonLogger); ok {
			l.SetJSON(true)
		}
	}

	settings, err := c.loadSettings(flags.Lookup("config").Value.String())
	if err != nil {
		return err
	}

	if v, _ := flags.GetString("remote"); v != "" {
		settings.RemoteURL = v
	} else if v := os.Getenv(RemoteEnv); v != "" {
		settings.RemoteURL = v
	}
	if v, _ := flags.GetString("catalog"); v != "" {
		settings.CatalogVersion = v
	}
	if v, _ := flags.GetString("dir"); v != "" {
		settings.LocalDir = v
	}
	if v, _ := flags.GetString("shared"); v != "" {
		settings.SharedDir = v
	}
	if v, _ := flags.GetString("mode"); v != "" {
		mode, err := domain.ParseMode(v)
		if err != nil {
			return err
		}
		settings.Mode = mode
	}

	return c.app.Configure(cmd.Context(), settings)
}

func (c *CLI) loadSettings(configPath string) (domain.Settings, error) {
	if configPath != "" {
		return c.components.ConfigLoader.LoadFile(configPath)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return domain.Settings{}, err
	}
	settings, err := c.components.ConfigLoader.Load(cwd)
	if errors.Is(err, domain.ErrConfigNotFound) {
		return settings, nil
	}
	return settings, err
}

// report prints metrics when requested.
func (c *CLI) report(cmd *cobra.Command, _ []string) error {
	if show, _ := cmd.Flags().GetBool("metrics"); show {
		return c.components.Metrics.WriteText(c.out)
	}
	return nil
}

// refresh loads the catalog, falling back to the installed snapshot when the
// remote is unreachable.
func (c *CLI) refresh(ctx context.Context) error {
	return c.app.RefreshCatalog(ctx)
}
