package terminal

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/de-tools/evidence-atlas/pkg/services/awsclient"
	"github.com/de-tools/evidence-atlas/pkg/services/config"
	"github.com/de-tools/evidence-atlas/pkg/services/controls"
)

func (cli *CLI) newControlsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "controls",
		Short: "List the registered controls per group",
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := config.Load("")
			if err != nil {
				return err
			}
			// Building checks never calls AWS, so empty clients are enough here.
			env := controls.Env{
				Clients:            &awsclient.Clients{},
				DailyCostThreshold: settings.DailyCostThreshold,
				RequiredTags:       settings.RequiredTags,
				MonthlyBudgetName:  settings.MonthlyBudgetName,
			}

			catalog := make([]GroupCatalog, 0)
			for _, group := range cli.registry.ListGroups() {
				checks, err := cli.registry.Create(group, env)
				if err != nil {
					return fmt.Errorf("failed to build group %s: %w", group, err)
				}
				entry := GroupCatalog{Group: group}
				for _, c := range checks {
					meta := c.Meta()
					entry.Checks = append(entry.Checks, CatalogEntry{
						Name:        meta.Name,
						Control:     meta.Control,
						Description: meta.Description,
						Existence:   c.ExistenceRequired(),
					})
				}
				catalog = append(catalog, entry)
			}
			return cli.reporter.Catalog(catalog)
		},
	}
}
