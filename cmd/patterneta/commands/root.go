// Package commands implements the CLI commands for patterneta.
package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/patterneta/internal/app"
	"go.trai.ch/patterneta/internal/build"
	"go.trai.ch/patterneta/internal/core/domain"
)

// Application is the subset of app.App the commands drive.
type Application interface {
	Serve(ctx context.Context, configPath string) error
	Compute(ctx context.Context, configPath string, opts app.ComputeOptions) (domain.Status, error)
	Duration(ctx context.Context, configPath, pattern string, opts app.DurationOptions) (string, bool, error)
	List(ctx context.Context, configPath string) ([]app.Entry, error)
	Clear(ctx context.Context, configPath string) error
}

// Option configures the CLI.
type Option func(*CLI)

// WithJSONOutput registers fn to be called with the value of --json before any command runs.
func WithJSONOutput(fn func(bool)) Option {
	return func(c *CLI) {
		c.onJSON = fn
	}
}

// CLI represents the command line interface for patterneta.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
	onJSON  func(bool)
}

// New creates a new CLI instance with the given app.
func New(a Application, opts ...Option) *CLI {
	rootCmd := &cobra.Command{
		Use:           "patterneta",
		Short:         "Estimate and cache sand table pattern durations",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate("patterneta version {{.Version}}\n")

	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().StringP("config", "c", domain.DefaultConfigFile, "Path to the configuration file")
	rootCmd.PersistentFlags().Bool("json", false, "Emit logs and results as JSON")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}
	for _, opt := range opts {
		opt(c)
	}

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		if c.onJSON != nil {
			c.onJSON(jsonOutput(cmd))
		}
	}

	rootCmd.AddCommand(c.newServeCmd())
	rootCmd.AddCommand(c.newComputeCmd())
	rootCmd.AddCommand(c.newDurationCmd())
	rootCmd.AddCommand(c.newListCmd())
	rootCmd.AddCommand(c.newClearCmd())
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

// SetOutput sets the output and error writers for the root command.
func (c *CLI) SetOutput(out, errOut io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(errOut)
}

func configPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("config")
	return path
}

func jsonOutput(cmd *cobra.Command) bool {
	enabled, _ := cmd.Flags().GetBool("json")
	return enabled
}
