package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/cli/config"
	"github.com/secmon-lab/chronicle/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var tablesPath string

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate a lookup tables file without touching any store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "tables",
				Aliases:     []string{"t"},
				Usage:       "Path to the TOML file with lookup tables and characters",
				Required:    true,
				Sources:     cli.EnvVars("CHRONICLE_TABLES"),
				Destination: &tablesPath,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			tables, err := config.LoadTables(tablesPath)
			if err != nil {
				return goerr.Wrap(err, "tables validation failed")
			}

			logging.Default().Info("Tables validation passed",
				"path", tablesPath,
				"effects", len(tables.Effects),
				"classifications", len(tables.Classifications),
				"species_modifiers", len(tables.SpeciesModifiers),
				"archetype_modifiers", len(tables.ArchetypeModifiers),
				"characters", len(tables.Characters),
			)
			return nil
		},
	}
}
