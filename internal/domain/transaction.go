package domain

import "github.com/shopspring/decimal"

type TransactionStatus string

const (
	TxnPending    TransactionStatus = "pending"
	TxnEscrowHeld TransactionStatus = "escrow_held"
	TxnDelivered  TransactionStatus = "delivered"
	TxnCompleted  TransactionStatus = "completed"
	TxnCancelled  TransactionStatus = "cancelled"
	TxnDisputed   TransactionStatus = "disputed"
)

type EscrowStatus string

const (
	EscrowHolding  EscrowStatus = "holding"
	EscrowReleased EscrowStatus = "released"
	EscrowRefunded EscrowStatus = "refunded"
)

// Terminal reports whether no further transition may leave the status.
// Disputed is terminal here; resolution lives outside this service.
func (s TransactionStatus) Terminal() bool {
	return s == TxnCompleted || s == TxnCancelled || s == TxnDisputed
}

var transitions = map[TransactionStatus][]TransactionStatus{
	TxnPending:    {TxnEscrowHeld, TxnCancelled},
	TxnEscrowHeld: {TxnDelivered, TxnCancelled},
	TxnDelivered:  {TxnCompleted, TxnDisputed},
}

// CanTransition reports whether from -> to is a legal state-machine move.
func CanTransition(from, to TransactionStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Transaction struct {
	ID        string
	BuyerID   string
	SellerID  string
	ListingID string
	// Amount is snapshotted from the listing price at initiation and never
	// re-read; later price edits do not touch an open transaction.
	Amount    decimal.Decimal
	Status    TransactionStatus
	Escrow    EscrowStatus
	CreatedAt string
}

// AuditEntry is one append-only record of a state-machine move.
type AuditEntry struct {
	ID         string            `db:"id"`
	TxnID      string            `db:"txn_id"`
	ActorID    string            `db:"actor_id"`
	FromStatus TransactionStatus `db:"from_status"`
	ToStatus   TransactionStatus `db:"to_status"`
	EscrowFrom EscrowStatus      `db:"escrow_from"`
	EscrowTo   EscrowStatus      `db:"escrow_to"`
	At         string            `db:"at"`
}
