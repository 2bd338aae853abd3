package main

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/riskibarqy/fantasy-cycling/internal/domain/leaderboard"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-cycling/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fantasy-cycling/internal/usecase"
	"github.com/spf13/cobra"
)

//go:embed demo_results.json
var demoResults []byte

type demoReport struct {
	Lock        usecase.LockResult     `json:"lock"`
	Imports     []usecase.ImportResult `json:"imports"`
	Settle      usecase.SettleResult   `json:"settle"`
	Scores      []scoring.RaceScore    `json:"scores"`
	Leaderboard []leaderboard.Entry    `json:"leaderboard"`
}

func demoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run lock, import, settle and leaderboard on the in-memory demo season",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, &globalFlags{memory: true}, func(ctx context.Context, e env) error {
				report, err := runDemo(ctx, e)
				if err != nil {
					return err
				}
				return writeJSON(e.out, report)
			})
		},
	}
}

func runDemo(ctx context.Context, e env) (demoReport, error) {
	var report demoReport

	lock, err := e.container.Locks.LockRace(ctx, memory.DemoRaceID, usecase.LockOptions{})
	if err != nil {
		return report, fmt.Errorf("lock: %w", err)
	}
	report.Lock = lock

	inputs, err := decodeImportInputs(demoResults)
	if err != nil {
		return report, fmt.Errorf("decode demo results: %w", err)
	}
	for _, input := range inputs {
		res, err := e.container.Imports.UpsertRaceResults(ctx, memory.DemoRaceID, input)
		if err != nil {
			return report, fmt.Errorf("import %s/%s: %w", input.Category, input.Gender, err)
		}
		report.Imports = append(report.Imports, res)
	}

	report.Settle, err = e.container.Settlements.SettleRace(ctx, memory.DemoRaceID, usecase.SettleOptions{})
	if err != nil {
		return report, fmt.Errorf("settle: %w", err)
	}
	report.Scores, err = e.container.Races.ListScores(ctx, memory.DemoRaceID)
	if err != nil {
		return report, fmt.Errorf("list scores: %w", err)
	}
	report.Leaderboard, err = e.container.Leaderboard.Build(ctx, memory.DemoSeasonID, "")
	if err != nil {
		return report, fmt.Errorf("leaderboard: %w", err)
	}
	return report, nil
}
