package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/pricing"
	qb "github.com/riskibarqy/fantasy-cycling/internal/platform/querybuilder"
)

type riderCostUpdateTableModel struct {
	ID           string    `db:"id"`
	RaceID       string    `db:"race_id"`
	RiderID      string    `db:"rider_id"`
	PreviousCost int64     `db:"previous_cost"`
	UpdatedCost  int64     `db:"updated_cost"`
	Delta        int64     `db:"delta"`
	ResultsHash  string    `db:"results_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

type PricingRepository struct {
	db sqlx.ExtContext
}

func NewPricingRepository(db sqlx.ExtContext) *PricingRepository {
	return &PricingRepository{db: db}
}

func (r *PricingRepository) ListByRace(ctx context.Context, raceID string) ([]pricing.RiderCostUpdate, error) {
	query, args, err := qb.Select("*").
		From("rider_cost_updates").
		Where(qb.Eq("race_id", raceID)).
		OrderBy("rider_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list cost updates query: %w", err)
	}

	var rows []riderCostUpdateTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list cost updates: %w", err)
	}

	out := make([]pricing.RiderCostUpdate, 0, len(rows))
	for _, row := range rows {
		out = append(out, pricing.RiderCostUpdate{
			ID:           row.ID,
			RaceID:       row.RaceID,
			RiderID:      row.RiderID,
			PreviousCost: row.PreviousCost,
			UpdatedCost:  row.UpdatedCost,
			Delta:        row.Delta,
			ResultsHash:  row.ResultsHash,
			CreatedAt:    row.CreatedAt,
		})
	}
	return out, nil
}

// Upsert keeps previous_cost from the first update of the race so repricing
// never compounds across resettlements.
func (r *PricingRepository) Upsert(ctx context.Context, update pricing.RiderCostUpdate) error {
	insertModel := riderCostUpdateTableModel{
		ID:           update.ID,
		RaceID:       update.RaceID,
		RiderID:      update.RiderID,
		PreviousCost: update.PreviousCost,
		UpdatedCost:  update.UpdatedCost,
		Delta:        update.Delta,
		ResultsHash:  update.ResultsHash,
		CreatedAt:    update.CreatedAt.UTC(),
	}
	query, args, err := qb.InsertModel("rider_cost_updates", insertModel).
		OnConflict("race_id", "rider_id").
		DoUpdateAllExcept("id", "previous_cost").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert cost update query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert cost update: %w", err)
	}
	return nil
}

func (r *PricingRepository) DeleteByRace(ctx context.Context, raceID string) (int64, error) {
	return deleteByRace(ctx, r.db, "rider_cost_updates", raceID)
}
