package repository

import (
	"context"

	db "github.com/azizikri/streak-rewards/db/gen"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the persistence contract behind the reward ledger. InsertPayout must be
// an atomic insert-if-absent keyed by recipient: it reports 0 rows when a payout for
// the recipient already exists.
type Store interface {
	InsertPayout(ctx context.Context, arg db.InsertPayoutParams) (int64, error)
	HasPayout(ctx context.Context, recipientID string) (bool, error)
	GetPayout(ctx context.Context, recipientID string) (db.RewardPayout, error)
	ListPayouts(ctx context.Context) ([]db.RewardPayout, error)
}

type store struct {
	pool    *pgxpool.Pool
	queries *db.Queries
}

func New(pool *pgxpool.Pool) Store {
	return &store{
		pool:    pool,
		queries: db.New(pool),
	}
}

func (s *store) InsertPayout(ctx context.Context, arg db.InsertPayoutParams) (int64, error) {
	return s.queries.InsertPayout(ctx, arg)
}

func (s *store) HasPayout(ctx context.Context, recipientID string) (bool, error) {
	return s.queries.HasPayout(ctx, recipientID)
}

func (s *store) GetPayout(ctx context.Context, recipientID string) (db.RewardPayout, error) {
	return s.queries.GetPayout(ctx, recipientID)
}

func (s *store) ListPayouts(ctx context.Context) ([]db.RewardPayout, error) {
	return s.queries.ListPayouts(ctx)
}
