package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/cli/config"
	"github.com/secmon-lab/chronicle/pkg/utils/logging"
	"github.com/secmon-lab/chronicle/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdSeed() *cli.Command {
	var tablesPath string
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "tables",
			Aliases:     []string{"t"},
			Usage:       "Path to the TOML file with lookup tables and characters",
			Required:    true,
			Sources:     cli.EnvVars("CHRONICLE_TABLES"),
			Destination: &tablesPath,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "seed",
		Usage: "Load lookup tables and characters into the repository",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			tables, err := config.LoadTables(tablesPath)
			if err != nil {
				return goerr.Wrap(err, "failed to load tables")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			result, err := tables.Seed(ctx, repo)
			if err != nil {
				return goerr.Wrap(err, "failed to seed repository")
			}

			logger.Info("Repository seeded",
				"repository", repoCfg,
				"effects", result.Effects,
				"classifications", result.Classifications,
				"species_modifiers", result.SpeciesModifiers,
				"archetype_modifiers", result.ArchetypeModifiers,
				"characters", result.Characters,
			)
			return nil
		},
	}
}
