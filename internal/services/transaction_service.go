package services

import (
	"bloxmarket/internal/domain"
	"bloxmarket/internal/ids"
	"bloxmarket/internal/repos"
)

// TransactionService drives the escrow-protected purchase lifecycle. Every
// move is a guarded compare-and-swap in the store plus an audit record;
// nothing here retries a lost race on the caller's behalf.
type TransactionService struct {
	Listings *repos.ListingRepo
	Txns     *repos.TransactionRepo
}

func NewTransactionService(listings *repos.ListingRepo, txns *repos.TransactionRepo) *TransactionService {
	return &TransactionService{Listings: listings, Txns: txns}
}

// Initiate opens a purchase: listing active -> pending_sale and a new
// pending transaction holding escrow, atomically. The store snapshots the
// amount from the listing price inside that same transaction.
func (s *TransactionService) Initiate(buyerID, listingID string) (domain.Transaction, error) {
	l, err := s.Listings.Get(listingID)
	if err != nil {
		return domain.Transaction{}, err
	}
	if l.SellerID == buyerID {
		return domain.Transaction{}, &domain.ValidationError{Field: "listingId", Reason: "cannot buy your own listing"}
	}
	return s.Txns.Initiate(domain.Transaction{
		ID:        ids.New("txn"),
		BuyerID:   buyerID,
		SellerID:  l.SellerID,
		ListingID: listingID,
	})
}

// Capture records a successful payment capture: pending -> escrow_held.
func (s *TransactionService) Capture(actorID, txnID string) error {
	t, err := s.party(actorID, txnID, t2buyer)
	if err != nil {
		return err
	}
	return s.step(t, actorID, domain.TxnEscrowHeld, "", "")
}

// ConfirmDelivery is the seller handing the account over:
// escrow_held -> delivered.
func (s *TransactionService) ConfirmDelivery(actorID, txnID string) error {
	t, err := s.party(actorID, txnID, t2seller)
	if err != nil {
		return err
	}
	return s.step(t, actorID, domain.TxnDelivered, "", "")
}

// ConfirmReceipt settles the sale: delivered -> completed, escrow released,
// listing sold.
func (s *TransactionService) ConfirmReceipt(actorID, txnID string) error {
	t, err := s.party(actorID, txnID, t2buyer)
	if err != nil {
		return err
	}
	return s.step(t, actorID, domain.TxnCompleted, domain.EscrowReleased, domain.ListingSold)
}

// Dispute freezes a delivered transaction for out-of-band resolution.
func (s *TransactionService) Dispute(actorID, txnID string) error {
	t, err := s.party(actorID, txnID, t2buyer)
	if err != nil {
		return err
	}
	return s.step(t, actorID, domain.TxnDisputed, "", "")
}

// Cancel unwinds an undelivered purchase: escrow refunded and the listing
// restored to active. Either party may cancel before delivery.
func (s *TransactionService) Cancel(actorID, txnID string) error {
	t, err := s.party(actorID, txnID, t2either)
	if err != nil {
		return err
	}
	return s.step(t, actorID, domain.TxnCancelled, domain.EscrowRefunded, domain.ListingActive)
}

func (s *TransactionService) Get(actorID, txnID string, admin bool) (domain.Transaction, error) {
	t, err := s.Txns.Get(txnID)
	if err != nil {
		return domain.Transaction{}, err
	}
	if !admin && t.BuyerID != actorID && t.SellerID != actorID {
		return domain.Transaction{}, domain.ErrForbidden
	}
	return t, nil
}

func (s *TransactionService) Audit(actorID, txnID string, admin bool) ([]domain.AuditEntry, error) {
	if _, err := s.Get(actorID, txnID, admin); err != nil {
		return nil, err
	}
	return s.Txns.Audit(txnID)
}

func (s *TransactionService) History(actorID string) ([]domain.Transaction, error) {
	return s.Txns.ListByParty(actorID)
}

type partyRule int

const (
	t2buyer partyRule = iota
	t2seller
	t2either
)

func (s *TransactionService) party(actorID, txnID string, rule partyRule) (domain.Transaction, error) {
	t, err := s.Txns.Get(txnID)
	if err != nil {
		return domain.Transaction{}, err
	}
	switch rule {
	case t2buyer:
		if t.BuyerID != actorID {
			return domain.Transaction{}, domain.ErrForbidden
		}
	case t2seller:
		if t.SellerID != actorID {
			return domain.Transaction{}, domain.ErrForbidden
		}
	case t2either:
		if t.BuyerID != actorID && t.SellerID != actorID {
			return domain.Transaction{}, domain.ErrForbidden
		}
	}
	return t, nil
}

func (s *TransactionService) step(t domain.Transaction, actorID string, to domain.TransactionStatus, escrowTo domain.EscrowStatus, listingTo domain.ListingStatus) error {
	if !domain.CanTransition(t.Status, to) {
		return &domain.ConflictError{Resource: "transaction", ID: t.ID, Expected: "in a state allowing " + string(to)}
	}
	return s.Txns.Apply(repos.Step{
		Txn:       t,
		ActorID:   actorID,
		ToStatus:  to,
		EscrowTo:  escrowTo,
		ListingTo: listingTo,
	})
}
