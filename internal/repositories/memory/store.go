// Package memory provides in-memory repository implementations backed
// by a single shared Store. They mirror the MongoDB implementations'
// contracts, including the conditional-update sentinels, and exist for
// tests and local development.
package memory

import (
	"context"
	"sync"

	"github.com/spinpointhq/spinpoint-backend/internal/models"
	"github.com/spinpointhq/spinpoint-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Compile-time check to ensure Store implements the interface
var _ repositories.TxRunner = (*Store)(nil)

// Store holds all collections behind one mutex. Transactions are
// serialized against each other and roll back by restoring a snapshot,
// so a failed callback leaves no trace.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	players       map[primitive.ObjectID]models.Player
	locations     map[primitive.ObjectID]models.Location
	campaigns     map[primitive.ObjectID]models.Campaign
	prizes        map[primitive.ObjectID]models.Prize
	checkins      map[primitive.ObjectID]models.CheckInSession
	checkinByHash map[string]primitive.ObjectID
	ledger        []models.LedgerEntry
	spins         map[primitive.ObjectID]models.SpinRecord
	spinByIdem    map[string]primitive.ObjectID
	issued        map[primitive.ObjectID]models.IssuedPrize
	issuedByCode  map[string]primitive.ObjectID
	staff         map[primitive.ObjectID]models.StaffUser
	staffByEmail  map[string]primitive.ObjectID
}

// NewStore creates an empty Store
func NewStore() *Store {
	return &Store{
		players:       make(map[primitive.ObjectID]models.Player),
		locations:     make(map[primitive.ObjectID]models.Location),
		campaigns:     make(map[primitive.ObjectID]models.Campaign),
		prizes:        make(map[primitive.ObjectID]models.Prize),
		checkins:      make(map[primitive.ObjectID]models.CheckInSession),
		checkinByHash: make(map[string]primitive.ObjectID),
		spins:         make(map[primitive.ObjectID]models.SpinRecord),
		spinByIdem:    make(map[string]primitive.ObjectID),
		issued:        make(map[primitive.ObjectID]models.IssuedPrize),
		issuedByCode:  make(map[string]primitive.ObjectID),
		staff:         make(map[primitive.ObjectID]models.StaffUser),
		staffByEmail:  make(map[string]primitive.ObjectID),
	}
}

type snapshot struct {
	players       map[primitive.ObjectID]models.Player
	locations     map[primitive.ObjectID]models.Location
	campaigns     map[primitive.ObjectID]models.Campaign
	prizes        map[primitive.ObjectID]models.Prize
	checkins      map[primitive.ObjectID]models.CheckInSession
	checkinByHash map[string]primitive.ObjectID
	ledger        []models.LedgerEntry
	spins         map[primitive.ObjectID]models.SpinRecord
	spinByIdem    map[string]primitive.ObjectID
	issued        map[primitive.ObjectID]models.IssuedPrize
	issuedByCode  map[string]primitive.ObjectID
	staff         map[primitive.ObjectID]models.StaffUser
	staffByEmail  map[string]primitive.ObjectID
}

// WithinTransaction runs fn and restores the pre-transaction state when
// fn returns an error. Concurrent transactions are serialized, matching
// the all-or-nothing visibility the MongoDB runner provides.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	sn := s.takeSnapshot()
	if err := fn(ctx); err != nil {
		s.restore(sn)
		return err
	}
	return nil
}

func (s *Store) takeSnapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return snapshot{
		players:       copyMap(s.players),
		locations:     copyMap(s.locations),
		campaigns:     copyMap(s.campaigns),
		prizes:        copyMap(s.prizes),
		checkins:      copyMap(s.checkins),
		checkinByHash: copyMap(s.checkinByHash),
		ledger:        append([]models.LedgerEntry(nil), s.ledger...),
		spins:         copyMap(s.spins),
		spinByIdem:    copyMap(s.spinByIdem),
		issued:        copyMap(s.issued),
		issuedByCode:  copyMap(s.issuedByCode),
		staff:         copyMap(s.staff),
		staffByEmail:  copyMap(s.staffByEmail),
	}
}

func (s *Store) restore(sn snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.players = sn.players
	s.locations = sn.locations
	s.campaigns = sn.campaigns
	s.prizes = sn.prizes
	s.checkins = sn.checkins
	s.checkinByHash = sn.checkinByHash
	s.ledger = sn.ledger
	s.spins = sn.spins
	s.spinByIdem = sn.spinByIdem
	s.issued = sn.issued
	s.issuedByCode = sn.issuedByCode
	s.staff = sn.staff
	s.staffByEmail = sn.staffByEmail
}

func copyMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func idemKey(playerID primitive.ObjectID, key string) string {
	return playerID.Hex() + "/" + key
}
