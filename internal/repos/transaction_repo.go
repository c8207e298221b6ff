package repos

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"bloxmarket/internal/domain"
	"bloxmarket/internal/ids"
)

type TransactionRepo struct{ db *sqlx.DB }

func NewTransactionRepo(db *sqlx.DB) *TransactionRepo { return &TransactionRepo{db: db} }

type txnRow struct {
	ID        string          `db:"id"`
	BuyerID   string          `db:"buyer_id"`
	SellerID  string          `db:"seller_id"`
	ListingID string          `db:"listing_id"`
	Amount    decimal.Decimal `db:"amount"`
	Status    string          `db:"status"`
	Escrow    string          `db:"escrow_status"`
	CreatedAt string          `db:"created_at"`
}

const txnCols = `id, buyer_id, seller_id, listing_id, amount, status, escrow_status, created_at`

func (r txnRow) toDomain() domain.Transaction {
	return domain.Transaction{
		ID:        r.ID,
		BuyerID:   r.BuyerID,
		SellerID:  r.SellerID,
		ListingID: r.ListingID,
		Amount:    r.Amount,
		Status:    domain.TransactionStatus(r.Status),
		Escrow:    domain.EscrowStatus(r.Escrow),
		CreatedAt: r.CreatedAt,
	}
}

func (r *TransactionRepo) Get(id string) (domain.Transaction, error) {
	var row txnRow
	err := r.db.Get(&row, `SELECT `+txnCols+` FROM transactions WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Transaction{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Transaction{}, err
	}
	return row.toDomain(), nil
}

// ListByParty returns transactions where the user is buyer or seller,
// newest first.
func (r *TransactionRepo) ListByParty(userID string) ([]domain.Transaction, error) {
	var rows []txnRow
	err := r.db.Select(&rows, `
	  SELECT `+txnCols+` FROM transactions
	  WHERE buyer_id = ? OR seller_id = ?
	  ORDER BY created_at DESC, id ASC
	`, userID, userID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Transaction, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// Initiate atomically takes the listing off the market and opens the
// transaction: the compare-and-swap on listings.status means only one buyer
// can move a listing out of active, no matter how many race. The amount
// snapshot is read inside this transaction so a concurrent price edit can
// never slip between the caller's read and the commit.
func (r *TransactionRepo) Initiate(t domain.Transaction) (domain.Transaction, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return domain.Transaction{}, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`
	  UPDATE listings SET status = 'pending_sale', updated_at = CURRENT_TIMESTAMP
	  WHERE id = ? AND status = 'active' AND verification = 'verified'
	`, t.ListingID)
	if err != nil {
		return domain.Transaction{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists int
		if err := tx.Get(&exists, `SELECT COUNT(*) FROM listings WHERE id = ?`, t.ListingID); err != nil {
			return domain.Transaction{}, err
		}
		if exists == 0 {
			return domain.Transaction{}, domain.ErrNotFound
		}
		return domain.Transaction{}, &domain.ConflictError{Resource: "listing", ID: t.ListingID, Expected: "active"}
	}

	var price decimal.Decimal
	if err := tx.Get(&price, `SELECT price FROM listings WHERE id = ?`, t.ListingID); err != nil {
		return domain.Transaction{}, err
	}
	t.Amount = price

	t.Status = domain.TxnPending
	t.Escrow = domain.EscrowHolding
	t.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.Exec(`
	  INSERT INTO transactions(id, buyer_id, seller_id, listing_id, amount, status, escrow_status, created_at)
	  VALUES (?,?,?,?,?,?,?,?)
	`, t.ID, t.BuyerID, t.SellerID, t.ListingID, t.Amount,
		string(t.Status), string(t.Escrow), t.CreatedAt); err != nil {
		return domain.Transaction{}, err
	}

	if err := insertAudit(tx, t.ID, t.BuyerID, "-", string(t.Status), "-", string(t.Escrow)); err != nil {
		return domain.Transaction{}, err
	}

	if err := tx.Commit(); err != nil {
		return domain.Transaction{}, err
	}
	return t, nil
}

// Step is one guarded state-machine move. Status and Escrow on Txn are the
// expected prior values; losing either compare-and-swap yields ConflictError.
type Step struct {
	Txn       domain.Transaction
	ActorID   string
	ToStatus  domain.TransactionStatus
	EscrowTo  domain.EscrowStatus  // "" keeps the current escrow status
	ListingTo domain.ListingStatus // "" leaves the listing untouched
}

// Apply moves the transaction (and, when asked, its listing) in one DB
// transaction and appends the audit record.
func (r *TransactionRepo) Apply(step Step) error {
	escrowTo := step.Txn.Escrow
	if step.EscrowTo != "" {
		escrowTo = step.EscrowTo
	}

	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`
	  UPDATE transactions SET status = ?, escrow_status = ?, updated_at = CURRENT_TIMESTAMP
	  WHERE id = ? AND status = ?
	`, string(step.ToStatus), string(escrowTo), step.Txn.ID, string(step.Txn.Status))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &domain.ConflictError{Resource: "transaction", ID: step.Txn.ID, Expected: string(step.Txn.Status)}
	}

	if step.ListingTo != "" {
		res, err := tx.Exec(`
		  UPDATE listings SET status = ?, updated_at = CURRENT_TIMESTAMP
		  WHERE id = ? AND status = 'pending_sale'
		`, string(step.ListingTo), step.Txn.ListingID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return &domain.ConflictError{Resource: "listing", ID: step.Txn.ListingID, Expected: "pending_sale"}
		}
	}

	if err := insertAudit(tx, step.Txn.ID, step.ActorID,
		string(step.Txn.Status), string(step.ToStatus),
		string(step.Txn.Escrow), string(escrowTo)); err != nil {
		return err
	}

	return tx.Commit()
}

func insertAudit(tx *sqlx.Tx, txnID, actor, from, to, escrowFrom, escrowTo string) error {
	_, err := tx.Exec(`
	  INSERT INTO transaction_audit(id, txn_id, actor_id, from_status, to_status, escrow_from, escrow_to, at)
	  VALUES (?,?,?,?,?,?,?,?)
	`, ids.New("aud"), txnID, actor, from, to, escrowFrom, escrowTo,
		time.Now().UTC().Format(time.RFC3339))
	return err
}

// Audit returns the append-only trail for a transaction, oldest first.
func (r *TransactionRepo) Audit(txnID string) ([]domain.AuditEntry, error) {
	var out []domain.AuditEntry
	err := r.db.Select(&out, `
	  SELECT id, txn_id, actor_id, from_status, to_status, escrow_from, escrow_to, at
	  FROM transaction_audit
	  WHERE txn_id = ?
	  ORDER BY at ASC, id ASC
	`, txnID)
	return out, err
}
