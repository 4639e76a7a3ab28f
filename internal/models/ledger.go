package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EntryKind classifies ledger entries. EARNED, BONUS and REFUND add
// credits; SPENT removes them. Amount is always stored positive and the
// kind alone decides the sign.
type EntryKind string

const (
	EntryEarned EntryKind = "EARNED"
	EntrySpent  EntryKind = "SPENT"
	EntryBonus  EntryKind = "BONUS"
	EntryRefund EntryKind = "REFUND"
)

// Sign returns +1 for credit kinds and -1 for debit kinds.
func (k EntryKind) Sign() int64 {
	if k == EntrySpent {
		return -1
	}
	return 1
}

// Valid reports whether k is a known entry kind.
func (k EntryKind) Valid() bool {
	switch k {
	case EntryEarned, EntrySpent, EntryBonus, EntryRefund:
		return true
	}
	return false
}

// LedgerEntry represents one immutable credit movement. Entries are
// append-only; balances are the signed sum over a player's entries.
type LedgerEntry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	PlayerID  primitive.ObjectID `bson:"playerId" json:"playerId"`
	Kind      EntryKind          `bson:"kind" json:"kind"`
	Amount    int64              `bson:"amount" json:"amount"`
	Reason    string             `bson:"reason,omitempty" json:"reason,omitempty"`
	RefType   string             `bson:"refType,omitempty" json:"refType,omitempty"` // "checkin" or "spin"
	RefID     primitive.ObjectID `bson:"refId,omitempty" json:"refId,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Signed returns the entry's contribution to the balance.
func (e *LedgerEntry) Signed() int64 {
	return e.Kind.Sign() * e.Amount
}
