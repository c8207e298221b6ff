package services_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"bloxmarket/internal/domain"
	"bloxmarket/internal/repos"
	"bloxmarket/internal/services"
)

func live(id, price string) domain.Listing {
	return domain.Listing{
		ID:           id,
		Price:        decimal.RequireFromString(price),
		Status:       domain.ListingActive,
		Verification: domain.VerificationVerified,
	}
}

func TestPriceEmptySelectionIsZero(t *testing.T) {
	totals, err := services.PriceSelection(nil)
	if err != nil {
		t.Fatal(err)
	}
	if !totals.Subtotal.IsZero() || !totals.EscrowFee.IsZero() || !totals.Total.IsZero() {
		t.Fatalf("empty cart should price to zero, got %+v", totals)
	}
}

func TestPriceAppliesEscrowFee(t *testing.T) {
	totals, err := services.PriceSelection([]domain.Listing{live("a", "100.00")})
	if err != nil {
		t.Fatal(err)
	}
	if !totals.Subtotal.Equal(decimal.RequireFromString("100.00")) {
		t.Fatalf("subtotal: got %s", totals.Subtotal)
	}
	if !totals.EscrowFee.Equal(decimal.RequireFromString("5.00")) {
		t.Fatalf("fee: got %s", totals.EscrowFee)
	}
	if !totals.Total.Equal(decimal.RequireFromString("105.00")) {
		t.Fatalf("total: got %s", totals.Total)
	}
}

func TestPriceRoundsFeeHalfUp(t *testing.T) {
	cases := []struct{ price, fee string }{
		{"10.10", "0.51"}, // 0.505 rounds up
		{"10.01", "0.50"}, // 0.5005 rounds down to cents
		{"0.10", "0.01"},  // 0.005 rounds up
	}
	for _, tc := range cases {
		totals, err := services.PriceSelection([]domain.Listing{live("a", tc.price)})
		if err != nil {
			t.Fatal(err)
		}
		if !totals.EscrowFee.Equal(decimal.RequireFromString(tc.fee)) {
			t.Fatalf("fee for %s: want %s, got %s", tc.price, tc.fee, totals.EscrowFee)
		}
	}
}

func TestPriceRejectsStaleEntriesByName(t *testing.T) {
	sold := live("gone", "50")
	sold.Status = domain.ListingSold
	_, err := services.PriceSelection([]domain.Listing{live("ok", "10"), sold})
	var se *domain.StaleListingError
	if !errors.As(err, &se) {
		t.Fatalf("want StaleListingError, got %v", err)
	}
	if len(se.ListingIDs) != 1 || se.ListingIDs[0] != "gone" {
		t.Fatalf("stale ids: got %v", se.ListingIDs)
	}
}

func TestCartTreatsVanishedListingAsStale(t *testing.T) {
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	cart := services.NewCartService(repos.NewListingRepo(db))
	_, err = cart.Price([]string{"acc_seed_dragon", "acc_nope"})
	var se *domain.StaleListingError
	if !errors.As(err, &se) {
		t.Fatalf("want StaleListingError, got %v", err)
	}
	if len(se.ListingIDs) != 1 || se.ListingIDs[0] != "acc_nope" {
		t.Fatalf("stale ids: got %v", se.ListingIDs)
	}
}
