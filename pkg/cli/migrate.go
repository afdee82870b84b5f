package cli

import (
	"context"

	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/kataribe-dev/kataribe/pkg/utils/logging"
)

func cmdMigrate() *cli.Command {
	var projectID string
	var databaseID string
	var dryRun bool

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Migrate Firestore indexes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "firestore-project-id",
				Usage:       "Firestore Project ID (required)",
				Required:    true,
				Sources:     cli.EnvVars("KATARIBE_FIRESTORE_PROJECT_ID"),
				Destination: &projectID,
			},
			&cli.StringFlag{
				Name:        "firestore-database-id",
				Usage:       "Firestore Database ID",
				Sources:     cli.EnvVars("KATARIBE_FIRESTORE_DATABASE_ID"),
				Destination: &databaseID,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "Preview changes without applying",
				Destination: &dryRun,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			logger.Info("Migrate configuration",
				"projectID", projectID,
				"databaseID", databaseID,
				"dryRun", dryRun)

			client, err := fireconf.New(ctx, projectID, databaseID, getIndexConfig(),
				fireconf.WithLogger(logger),
				fireconf.WithDryRun(dryRun),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create fireconf client")
			}
			defer func() {
				if err := client.Close(); err != nil {
					logger.Error("failed to close fireconf client", "error", err.Error())
				}
			}()

			if dryRun {
				logger.Info("Dry run mode - previewing changes")
			}
			if err := client.Migrate(ctx); err != nil {
				return goerr.Wrap(err, "failed to apply migrations")
			}
			logger.Info("Migration completed")

			return nil
		},
	}
}

// getIndexConfig returns the Firestore index configuration
func getIndexConfig() *fireconf.Config {
	return &fireconf.Config{
		Collections: []fireconf.Collection{
			{
				Name: "knowledges",
				Indexes: []fireconf.Index{
					// ListActiveByKinds: Active == true, Kind in [...]
					{
						Fields: []fireconf.IndexField{
							{Path: "Active", Order: fireconf.OrderAscending},
							{Path: "Kind", Order: fireconf.OrderAscending},
						},
					},
				},
			},
			{
				Name: "personalities",
				Indexes: []fireconf.Index{
					// GetByMode: Mode == x, Active == true
					{
						Fields: []fireconf.IndexField{
							{Path: "Mode", Order: fireconf.OrderAscending},
							{Path: "Active", Order: fireconf.OrderAscending},
						},
					},
					// GetDefault: IsDefault == true, Active == true
					{
						Fields: []fireconf.IndexField{
							{Path: "IsDefault", Order: fireconf.OrderAscending},
							{Path: "Active", Order: fireconf.OrderAscending},
						},
					},
				},
			},
		},
	}
}
