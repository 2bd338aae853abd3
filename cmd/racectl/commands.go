package main

import (
	"context"
	"fmt"

	"github.com/riskibarqy/fantasy-cycling/internal/usecase"
	"github.com/spf13/cobra"
)

func lockCmd(flags *globalFlags) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "lock <race-id>",
		Short: "Snapshot every applicable team roster for a race",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, flags, func(ctx context.Context, e env) error {
				res, err := e.container.Locks.LockRace(ctx, args[0], usecase.LockOptions{Force: force})
				if err != nil {
					return err
				}
				return writeJSON(e.out, res)
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Re-snapshot changed rosters and ignore a closed race window")
	return cmd
}

func lockDueCmd(flags *globalFlags) *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "lock-due",
		Short: "Lock every scheduled race whose lock time has passed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, flags, func(ctx context.Context, e env) error {
				if workers <= 0 {
					workers = e.cfg.SettleMaxWorkers
				}
				items, err := e.container.Locks.LockDueRaces(ctx, workers)
				if err != nil {
					return err
				}
				out := make([]sweepLine, 0, len(items))
				for _, item := range items {
					out = append(out, newSweepLine(item.RaceID, item.Result, item.Err))
				}
				return writeJSON(e.out, out)
			})
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 0, "Races locked in parallel (defaults to SETTLE_MAX_WORKERS)")
	return cmd
}

func importCmd(flags *globalFlags) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import <race-id>",
		Short: "Upsert one or more result sets from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := readImportFile(file)
			if err != nil {
				return err
			}
			return run(cmd, flags, func(ctx context.Context, e env) error {
				out := make([]usecase.ImportResult, 0, len(inputs))
				for _, input := range inputs {
					res, err := e.container.Imports.UpsertRaceResults(ctx, args[0], input)
					if err != nil {
						return fmt.Errorf("import %s/%s: %w", input.Category, input.Gender, err)
					}
					out = append(out, res)
				}
				return writeJSON(e.out, out)
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file holding one result set or an array of them")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func settleCmd(flags *globalFlags) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "settle <race-id>",
		Short: "Score snapshots and reprice riders for a race",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, flags, func(ctx context.Context, e env) error {
				res, err := e.container.Settlements.SettleRace(ctx, args[0], usecase.SettleOptions{Force: force})
				if err != nil {
					return err
				}
				return writeJSON(e.out, res)
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Settle even when required result sets are not final")
	return cmd
}

func settlePendingCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "settle-pending",
		Short: "Settle every final race and every race flagged for resettlement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, flags, func(ctx context.Context, e env) error {
				items, err := e.container.Settlements.SettlePending(ctx)
				if err != nil {
					return err
				}
				out := make([]sweepLine, 0, len(items))
				for _, item := range items {
					out = append(out, newSweepLine(item.RaceID, item.Result, item.Err))
				}
				return writeJSON(e.out, out)
			})
		},
	}
}

func deleteRaceCmd(flags *globalFlags) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete-race <race-id>",
		Short: "Delete a race with its dependent rows and reverse its team points and rider costs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete race %s without --yes", args[0])
			}
			return run(cmd, flags, func(ctx context.Context, e env) error {
				res, err := e.container.Races.DeleteRace(ctx, args[0])
				if err != nil {
					return err
				}
				return writeJSON(e.out, res)
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the cascade delete")
	return cmd
}

func leaderboardCmd(flags *globalFlags) *cobra.Command {
	var teamType string
	cmd := &cobra.Command{
		Use:   "leaderboard <season-id>",
		Short: "Rank season teams by total points",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, flags, func(ctx context.Context, e env) error {
				entries, err := e.container.Leaderboard.Build(ctx, args[0], teamType)
				if err != nil {
					return err
				}
				return writeJSON(e.out, entries)
			})
		},
	}
	cmd.Flags().StringVar(&teamType, "team-type", "", "Only rank teams of this type (elite or junior)")
	return cmd
}

func scoresCmd(flags *globalFlags) *cobra.Command {
	var snapshots bool
	cmd := &cobra.Command{
		Use:   "scores <race-id>",
		Short: "Show race scores with their breakdowns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, flags, func(ctx context.Context, e env) error {
				if snapshots {
					items, err := e.container.Races.ListSnapshots(ctx, args[0])
					if err != nil {
						return err
					}
					return writeJSON(e.out, items)
				}
				items, err := e.container.Races.ListScores(ctx, args[0])
				if err != nil {
					return err
				}
				return writeJSON(e.out, items)
			})
		},
	}
	cmd.Flags().BoolVar(&snapshots, "snapshots", false, "Show locked roster snapshots instead of scores")
	return cmd
}

// sweepLine is one race of a lock or settle sweep. Errors are rendered
// as text because the sweep item keeps them out of JSON.
type sweepLine struct {
	RaceID string `json:"raceId"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

func newSweepLine(raceID string, result any, err error) sweepLine {
	line := sweepLine{RaceID: raceID, Result: result}
	if err != nil {
		line.Result = nil
		line.Error = err.Error()
	}
	return line
}
