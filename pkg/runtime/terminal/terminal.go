package terminal

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/de-tools/evidence-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/evidence-atlas/pkg/services/awsclient"
	"github.com/de-tools/evidence-atlas/pkg/services/config"
	"github.com/de-tools/evidence-atlas/pkg/services/controls"
)

// ClientsLoader builds the AWS clients for one run.
type ClientsLoader func(ctx context.Context, s awsclient.Settings) (*awsclient.Clients, error)

// CLI represents the command-line interface
type CLI struct {
	registry     controls.Registry
	loadClients  ClientsLoader
	profilePaths []string
	reporter     *Reporter
	table        *export.Reporter
	rootCmd      *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Registry     controls.Registry
	Output       io.Writer
	LoadClients  ClientsLoader
	ProfilePaths []string
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.LoadClients == nil {
		opts.LoadClients = LoadAWSClients
	}
	if len(opts.ProfilePaths) == 0 {
		opts.ProfilePaths = config.DefaultProfilePaths()
	}

	cli := &CLI{
		registry:     opts.Registry,
		loadClients:  opts.LoadClients,
		profilePaths: opts.ProfilePaths,
		reporter:     NewReporter(opts.Output),
		table:        export.NewReporter(opts.Output),
	}

	cli.rootCmd = cli.newRootCmd()
	cli.rootCmd.SetOut(opts.Output)
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) ExecuteContext(ctx context.Context, args ...string) error {
	if args != nil {
		cli.rootCmd.SetArgs(args)
	}
	return cli.rootCmd.ExecuteContext(ctx)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "evidence",
		Short:        "AWS compliance evidence collector",
		SilenceUsage: true,
	}

	cmd.AddCommand(cli.newRunCmd())
	cmd.AddCommand(cli.newControlsCmd())
	cmd.AddCommand(cli.newProfilesCmd())

	return cmd
}

// LoadAWSClients resolves SDK configuration and credentials and builds every client.
func LoadAWSClients(ctx context.Context, s awsclient.Settings) (*awsclient.Clients, error) {
	cfg, err := awsclient.LoadConfig(ctx, s)
	if err != nil {
		return nil, err
	}
	return awsclient.NewClients(cfg), nil
}
