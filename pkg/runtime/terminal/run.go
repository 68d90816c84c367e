package terminal

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/evidence-atlas/pkg/services/awsclient"
	"github.com/de-tools/evidence-atlas/pkg/services/config"
	"github.com/de-tools/evidence-atlas/pkg/services/controls"
	"github.com/de-tools/evidence-atlas/pkg/services/orchestrator"
	"github.com/de-tools/evidence-atlas/pkg/store/duckdb"
	"github.com/de-tools/evidence-atlas/pkg/store/duckdb/evidence"
	"github.com/de-tools/evidence-atlas/pkg/store/file"
	s3sink "github.com/de-tools/evidence-atlas/pkg/store/s3"
)

type runFlags struct {
	group      string
	configPath string
}

func (cli *CLI) newRunCmd() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate the controls and persist the evidence",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cli.run(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVarP(&flags.group, "group", "g", "", "Run a single group (service or billing)")
	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "Path to an optional YAML settings file")

	return cmd
}

func (cli *CLI) run(ctx context.Context, flags runFlags) error {
	logger := zerolog.Ctx(ctx)

	settings, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	clients, err := cli.loadClients(ctx, settings.AWS())
	if err != nil {
		return fmt.Errorf("failed to create AWS clients: %w", err)
	}

	env := controls.Env{
		Clients:            clients,
		AccountID:          settings.AccountID,
		Region:             settings.Region,
		DailyCostThreshold: settings.DailyCostThreshold,
		RequiredTags:       settings.RequiredTags,
		MonthlyBudgetName:  settings.MonthlyBudgetName,
		DetailConcurrency:  settings.DetailConcurrency,
	}

	groups, err := cli.groups(flags.group, env)
	if err != nil {
		return err
	}

	sinks, closeSinks, err := openSinks(settings, clients)
	if err != nil {
		return err
	}
	defer closeSinks()

	logger.Info().
		Str("account", settings.AccountID).
		Str("region", settings.Region).
		Int("groups", len(groups)).
		Msg("starting evidence collection")

	results, runErr := orchestrator.NewRunner(sinks...).Run(ctx, groups...)
	for _, result := range results {
		if err := cli.table.Handle(result); err != nil {
			return fmt.Errorf("failed to print %s results: %w", result.Group, err)
		}
	}
	if runErr != nil {
		return fmt.Errorf("evidence collection failed: %w", runErr)
	}
	return nil
}

func (cli *CLI) groups(only string, env controls.Env) ([]orchestrator.Group, error) {
	names := cli.registry.ListGroups()
	if only != "" {
		names = []string{only}
	}

	groups := make([]orchestrator.Group, 0, len(names))
	for _, name := range names {
		checks, err := cli.registry.Create(name, env)
		if err != nil {
			return nil, err
		}
		g := orchestrator.Group{Name: name, Checks: make([]orchestrator.Check, 0, len(checks))}
		for _, c := range checks {
			g.Checks = append(g.Checks, c)
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// openSinks returns the file sink plus the DuckDB and S3 sinks when they are configured.
func openSinks(settings *config.Settings, clients *awsclient.Clients) ([]orchestrator.Sink, func(), error) {
	sinks := []orchestrator.Sink{file.NewSink(settings.OutputDir)}
	closer := func() {}

	if settings.DBPath != "" {
		db, err := duckdb.NewDB(duckdb.Settings{DbPath: settings.DBPath})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create DuckDB instance: %w", err)
		}
		store, err := evidence.NewStore(db)
		if err != nil {
			return nil, nil, errors.Join(fmt.Errorf("failed to create evidence store: %w", err), db.Close())
		}
		sinks = append(sinks, store)
		closer = func() { _ = db.Close() }
	}

	if settings.EvidenceBucket != "" {
		sink, err := s3sink.NewSink(clients.EvidenceWriter, settings.EvidenceBucket, settings.EvidencePrefix)
		if err != nil {
			closer()
			return nil, nil, fmt.Errorf("failed to create S3 evidence sink: %w", err)
		}
		sinks = append(sinks, sink)
	}

	return sinks, closer, nil
}
