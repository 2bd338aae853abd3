package main

import (
	"context"
	"time"

	"github.com/riskibarqy/fantasy-cycling/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fantasy-cycling/internal/infrastructure/repository/postgres"
	"github.com/spf13/cobra"
)

func seedDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-demo",
		Short: "Insert the demo season into an empty Postgres database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, &globalFlags{}, func(ctx context.Context, e env) error {
				if err := postgres.BootstrapSeed(ctx, e.container.DB(), time.Now().UTC()); err != nil {
					return err
				}
				e.logger.InfoContext(ctx, "demo season ready", "season_id", memory.DemoSeasonID, "race_id", memory.DemoRaceID)
				return nil
			})
		},
	}
}
