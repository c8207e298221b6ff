package services

import (
	"errors"

	"github.com/shopspring/decimal"

	"bloxmarket/internal/domain"
	"bloxmarket/internal/repos"
)

// escrowFeeRate is the buyer-side protection fee applied at checkout.
var escrowFeeRate = decimal.RequireFromString("0.05")

type Totals struct {
	Subtotal  decimal.Decimal
	EscrowFee decimal.Decimal
	Total     decimal.Decimal
}

// PriceSelection computes order totals from a cart selection. Pure: it
// never mutates anything and an empty selection is simply zero, not an
// error. Any listing that is no longer purchasable fails the pricing with a
// StaleListingError naming every stale entry, so callers can prune the cart
// instead of discarding it.
func PriceSelection(selection []domain.Listing) (Totals, error) {
	var stale []string
	subtotal := decimal.Zero
	for _, l := range selection {
		if !l.Discoverable() {
			stale = append(stale, l.ID)
			continue
		}
		subtotal = subtotal.Add(l.Price)
	}
	if len(stale) > 0 {
		return Totals{}, &domain.StaleListingError{ListingIDs: stale}
	}
	fee := subtotal.Mul(escrowFeeRate).Round(2)
	return Totals{Subtotal: subtotal, EscrowFee: fee, Total: subtotal.Add(fee)}, nil
}

// CartService resolves a session-scoped selection of listing ids against
// current store state and prices it. The cart itself is an ephemeral value
// the caller holds; nothing here is persisted.
type CartService struct {
	Listings *repos.ListingRepo
}

func NewCartService(listings *repos.ListingRepo) *CartService {
	return &CartService{Listings: listings}
}

func (s *CartService) Price(listingIDs []string) (Totals, error) {
	selection := make([]domain.Listing, 0, len(listingIDs))
	var stale []string
	for _, id := range listingIDs {
		l, err := s.Listings.Get(id)
		if errors.Is(err, domain.ErrNotFound) {
			// A vanished listing is stale from the cart's point of view.
			stale = append(stale, id)
			continue
		}
		if err != nil {
			return Totals{}, err
		}
		selection = append(selection, l)
	}
	totals, err := PriceSelection(selection)
	if err != nil {
		var se *domain.StaleListingError
		if errors.As(err, &se) {
			se.ListingIDs = append(stale, se.ListingIDs...)
		}
		return Totals{}, err
	}
	if len(stale) > 0 {
		return Totals{}, &domain.StaleListingError{ListingIDs: stale}
	}
	return totals, nil
}
