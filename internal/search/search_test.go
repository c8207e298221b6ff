package search_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"bloxmarket/internal/domain"
	"bloxmarket/internal/search"
)

func mk(id, title, price, created string, pop int) domain.Listing {
	return domain.Listing{
		ID:           id,
		Title:        title,
		Category:     "Adopt Me!",
		Price:        decimal.RequireFromString(price),
		Status:       domain.ListingActive,
		Verification: domain.VerificationVerified,
		Popularity:   pop,
		CreatedAt:    created,
	}
}

func collect(listings []domain.Listing, q search.Query) []string {
	var ids []string
	for l := range search.Results(listings, q) {
		ids = append(ids, l.ID)
	}
	return ids
}

func TestOnlyDiscoverableListingsAppear(t *testing.T) {
	hidden := mk("a1", "Hidden", "10", "2025-01-01T00:00:00Z", 0)
	hidden.Verification = domain.VerificationPending
	sold := mk("a2", "Sold", "10", "2025-01-01T00:00:00Z", 0)
	sold.Status = domain.ListingSold
	visible := mk("a3", "Visible", "10", "2025-01-01T00:00:00Z", 0)

	ids := collect([]domain.Listing{hidden, sold, visible}, search.Query{})
	if len(ids) != 1 || ids[0] != "a3" {
		t.Fatalf("want only a3, got %v", ids)
	}
}

func TestPriceBucketBoundariesAreExact(t *testing.T) {
	exactly50 := mk("b1", "Fifty", "50.00", "2025-01-01T00:00:00Z", 0)
	exactly200 := mk("b2", "TwoHundred", "200.00", "2025-01-01T00:00:00Z", 0)
	over := mk("b3", "Over", "200.01", "2025-01-01T00:00:00Z", 0)
	all := []domain.Listing{exactly50, exactly200, over}

	if ids := collect(all, search.Query{Bucket: search.BucketUnder50}); len(ids) != 1 || ids[0] != "b1" {
		t.Fatalf("$50.00 must land in 0-50, got %v", ids)
	}
	if ids := collect(all, search.Query{Bucket: search.Bucket50To100}); len(ids) != 0 {
		t.Fatalf("50-100 must exclude $50.00, got %v", ids)
	}
	if ids := collect(all, search.Query{Bucket: search.Bucket100To200}); len(ids) != 1 || ids[0] != "b2" {
		t.Fatalf("$200.00 must land in 100-200, got %v", ids)
	}
	if ids := collect(all, search.Query{Bucket: search.BucketOver200}); len(ids) != 1 || ids[0] != "b3" {
		t.Fatalf("200+ must start above $200.00, got %v", ids)
	}
}

func TestTextMatchesAnyFieldIncludingItems(t *testing.T) {
	withItem := mk("c1", "Godly Collection", "10", "2025-01-01T00:00:00Z", 0)
	withItem.Items = []string{"Chroma Luger", "Elderwood Scythe"}
	other := mk("c2", "Mansion", "10", "2025-01-01T00:00:00Z", 0)
	all := []domain.Listing{withItem, other}

	if ids := collect(all, search.Query{Text: "chroma"}); len(ids) != 1 || ids[0] != "c1" {
		t.Fatalf("items should be searched, got %v", ids)
	}
	if ids := collect(all, search.Query{Text: "MANSION"}); len(ids) != 1 || ids[0] != "c2" {
		t.Fatalf("match should be case-insensitive, got %v", ids)
	}
	// Category is also a searchable field
	if ids := collect(all, search.Query{Text: "adopt"}); len(ids) != 2 {
		t.Fatalf("category text match should hit both, got %v", ids)
	}
}

func TestSortKeysAndTieBreaks(t *testing.T) {
	a := mk("d1", "A", "30", "2025-01-02T00:00:00Z", 5)
	b := mk("d2", "B", "20", "2025-01-03T00:00:00Z", 9)
	c := mk("d3", "C", "20", "2025-01-03T00:00:00Z", 9)
	all := []domain.Listing{c, a, b}

	if ids := collect(all, search.Query{Sort: search.SortNewest}); ids[0] != "d2" || ids[1] != "d3" || ids[2] != "d1" {
		t.Fatalf("newest: want [d2 d3 d1], got %v", ids)
	}
	if ids := collect(all, search.Query{Sort: search.SortPriceAsc}); ids[0] != "d2" || ids[1] != "d3" || ids[2] != "d1" {
		t.Fatalf("price_asc: want [d2 d3 d1], got %v", ids)
	}
	if ids := collect(all, search.Query{Sort: search.SortPriceDesc}); ids[0] != "d1" {
		t.Fatalf("price_desc: want d1 first, got %v", ids)
	}
	if ids := collect(all, search.Query{Sort: search.SortPopularity}); ids[0] != "d2" || ids[1] != "d3" || ids[2] != "d1" {
		t.Fatalf("popularity: want [d2 d3 d1], got %v", ids)
	}
}

func TestResultsAreRestartable(t *testing.T) {
	all := []domain.Listing{
		mk("e1", "One", "10", "2025-01-01T00:00:00Z", 0),
		mk("e2", "Two", "10", "2025-01-02T00:00:00Z", 0),
	}
	seq := search.Results(all, search.Query{})

	first := 0
	for range seq {
		first++
	}
	second := 0
	for range seq {
		second++
	}
	if first != 2 || second != 2 {
		t.Fatalf("sequence should restart: first=%d second=%d", first, second)
	}
}

func TestWindowPaginatesAfterOrdering(t *testing.T) {
	all := []domain.Listing{
		mk("f1", "One", "10", "2025-01-01T00:00:00Z", 0),
		mk("f2", "Two", "10", "2025-01-02T00:00:00Z", 0),
		mk("f3", "Three", "10", "2025-01-03T00:00:00Z", 0),
	}
	page := search.Window(search.Results(all, search.Query{Sort: search.SortNewest}), 1, 1)
	if len(page) != 1 || page[0].ID != "f2" {
		t.Fatalf("want second-newest f2, got %+v", page)
	}
}
