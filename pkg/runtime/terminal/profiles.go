package terminal

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/de-tools/evidence-atlas/pkg/services/config"
)

func (cli *CLI) newProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List the AWS shared-config profiles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			registry, err := config.NewProfileRegistry(cli.profilePaths...)
			if err != nil {
				return err
			}
			names, err := registry.GetProfiles(ctx)
			if err != nil {
				return fmt.Errorf("failed to list profiles: %w", err)
			}

			profiles := make([]*config.Profile, 0, len(names))
			for _, name := range names {
				p, err := registry.GetProfile(ctx, name)
				if err != nil {
					return err
				}
				profiles = append(profiles, p)
			}
			return cli.reporter.Profiles(profiles)
		},
	}
}
