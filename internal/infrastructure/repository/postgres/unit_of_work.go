package postgres

import (
	"context"
	"fmt"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/uow"
)

var _ uow.UnitOfWork = (*UnitOfWork)(nil)

// UnitOfWork runs use case callbacks inside one database transaction.
type UnitOfWork struct {
	db *sqlx.DB
}

func NewUnitOfWork(db *sqlx.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos uow.Repositories) error) error {
	return u.run(ctx, "", fn)
}

// WithinRace holds a transaction scoped advisory lock on the race id, so
// concurrent lock, import, settle or delete calls for one race run one at a
// time. Different races never wait on each other.
func (u *UnitOfWork) WithinRace(ctx context.Context, raceID string, fn func(ctx context.Context, repos uow.Repositories) error) error {
	return u.run(ctx, raceID, fn)
}

func (u *UnitOfWork) run(ctx context.Context, raceID string, fn func(ctx context.Context, repos uow.Repositories) error) (err error) {
	tx, err := u.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil {
			err = crerr.CombineErrors(err, crerr.Wrap(rbErr, "rollback tx"))
		}
	}()

	if raceID != "" {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, raceID); err != nil {
			return fmt.Errorf("acquire race lock race=%s: %w", raceID, err)
		}
	}

	if err := fn(ctx, Repositories(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Repositories binds every repository to db, which may be a *sqlx.DB or a
// *sqlx.Tx.
func Repositories(db sqlx.ExtContext) uow.Repositories {
	return uow.Repositories{
		Races:   NewRaceRepository(db),
		Rosters: NewRosterRepository(db),
		Results: NewResultRepository(db),
		Scoring: NewScoringRepository(db),
		Pricing: NewPricingRepository(db),
	}
}
