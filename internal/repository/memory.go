package repository

import (
	"context"
	"sort"
	"sync"

	db "github.com/azizikri/streak-rewards/db/gen"
	"github.com/jackc/pgx/v5"
)

// memoryStore keeps payouts for the lifetime of the process only.
type memoryStore struct {
	mu      sync.RWMutex
	payouts map[string]db.RewardPayout
}

func NewMemoryStore() Store {
	return &memoryStore{payouts: make(map[string]db.RewardPayout)}
}

func (m *memoryStore) InsertPayout(_ context.Context, arg db.InsertPayoutParams) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.payouts[arg.RecipientID]; ok {
		return 0, nil
	}
	m.payouts[arg.RecipientID] = db.RewardPayout{
		RecipientID: arg.RecipientID,
		ReferenceID: arg.ReferenceID,
		AmountMicro: arg.AmountMicro,
		IssuedAt:    arg.IssuedAt,
	}
	return 1, nil
}

func (m *memoryStore) HasPayout(_ context.Context, recipientID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.payouts[recipientID]
	return ok, nil
}

func (m *memoryStore) GetPayout(_ context.Context, recipientID string) (db.RewardPayout, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.payouts[recipientID]
	if !ok {
		return db.RewardPayout{}, pgx.ErrNoRows
	}
	return p, nil
}

func (m *memoryStore) ListPayouts(_ context.Context) ([]db.RewardPayout, error) {
	m.mu.RLock()
	out := make([]db.RewardPayout, 0, len(m.payouts))
	for _, p := range m.payouts {
		out = append(out, p)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		ti, tj := out[i].IssuedAt.Time, out[j].IssuedAt.Time
		if ti.Equal(tj) {
			return out[i].RecipientID < out[j].RecipientID
		}
		return ti.Before(tj)
	})
	return out, nil
}
