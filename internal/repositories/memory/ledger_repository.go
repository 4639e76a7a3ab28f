package memory

import (
	"context"
	"sort"
	"time"

	"github.com/spinpointhq/spinpoint-backend/internal/models"
	"github.com/spinpointhq/spinpoint-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Compile-time check to ensure LedgerRepository implements the interface
var _ repositories.LedgerRepository = (*LedgerRepository)(nil)

// LedgerRepository is the in-memory LedgerRepository implementation
type LedgerRepository struct {
	store *Store
}

// NewLedgerRepository creates a new LedgerRepository
func NewLedgerRepository(store *Store) *LedgerRepository {
	return &LedgerRepository{store: store}
}

// Create appends a new ledger entry
func (r *LedgerRepository) Create(ctx context.Context, entry *models.LedgerEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	r.store.ledger = append(r.store.ledger, *entry)
	return nil
}

// FindByPlayer retrieves a page of a player's entries, newest first
func (r *LedgerRepository) FindByPlayer(ctx context.Context, playerID primitive.ObjectID, page, limit int) ([]*models.LedgerEntry, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}

	r.store.mu.RLock()
	matched := []models.LedgerEntry{}
	for _, entry := range r.store.ledger {
		if entry.PlayerID == playerID {
			matched = append(matched, entry)
		}
	}
	r.store.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	start := (page - 1) * limit
	if start >= len(matched) {
		return []*models.LedgerEntry{}, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}

	out := make([]*models.LedgerEntry, 0, end-start)
	for i := start; i < end; i++ {
		e := matched[i]
		out = append(out, &e)
	}
	return out, nil
}

// SumKindsSince totals the amounts of the given kinds created at or after since
func (r *LedgerRepository) SumKindsSince(ctx context.Context, playerID primitive.ObjectID, kinds []models.EntryKind, since time.Time) (int64, error) {
	wanted := make(map[models.EntryKind]bool, len(kinds))
	for _, k := range kinds {
		wanted[k] = true
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var total int64
	for _, entry := range r.store.ledger {
		if entry.PlayerID != playerID || !wanted[entry.Kind] {
			continue
		}
		if entry.CreatedAt.Before(since) {
			continue
		}
		total += entry.Amount
	}
	return total, nil
}

// SumByPlayer computes the signed balance over every entry of a player
func (r *LedgerRepository) SumByPlayer(ctx context.Context, playerID primitive.ObjectID) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var total int64
	for i := range r.store.ledger {
		if r.store.ledger[i].PlayerID == playerID {
			total += r.store.ledger[i].Signed()
		}
	}
	return total, nil
}
