// Package search selects and orders the listings a buyer sees. It is pure:
// callers hand it a snapshot and get back a restartable ordered sequence.
package search

import (
	"iter"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"bloxmarket/internal/domain"
)

type Sort string

const (
	SortNewest     Sort = "newest"
	SortPriceAsc   Sort = "price_asc"
	SortPriceDesc  Sort = "price_desc"
	SortPopularity Sort = "popularity"
)

func ParseSort(s string) (Sort, bool) {
	switch Sort(s) {
	case "":
		return SortNewest, true
	case SortNewest, SortPriceAsc, SortPriceDesc, SortPopularity:
		return Sort(s), true
	}
	return "", false
}

// Bucket is one of the fixed storefront price ranges.
type Bucket string

const (
	BucketAny      Bucket = ""
	BucketUnder50  Bucket = "0-50"
	Bucket50To100  Bucket = "50-100"
	Bucket100To200 Bucket = "100-200"
	BucketOver200  Bucket = "200+"
)

var (
	price50  = decimal.NewFromInt(50)
	price100 = decimal.NewFromInt(100)
	price200 = decimal.NewFromInt(200)
)

// contains applies the exact boundary policy: each bucket is half-open on
// the low side and closed on the high side, so $50.00 lands in 0-50 and
// $200.00 in 100-200.
func (b Bucket) contains(p decimal.Decimal) bool {
	switch b {
	case BucketAny:
		return true
	case BucketUnder50:
		return p.LessThanOrEqual(price50)
	case Bucket50To100:
		return p.GreaterThan(price50) && p.LessThanOrEqual(price100)
	case Bucket100To200:
		return p.GreaterThan(price100) && p.LessThanOrEqual(price200)
	case BucketOver200:
		return p.GreaterThan(price200)
	}
	return false
}

func ParseBucket(s string) (Bucket, bool) {
	switch Bucket(s) {
	case BucketAny, BucketUnder50, Bucket50To100, Bucket100To200, BucketOver200:
		return Bucket(s), true
	}
	return "", false
}

// Query is the buyer-supplied refinement over the eligible collection.
type Query struct {
	Category string
	Bucket   Bucket
	Text     string
	Sort     Sort
}

// Results filters and orders the snapshot. The returned sequence is
// restartable; pagination is the caller's concern.
func Results(listings []domain.Listing, q Query) iter.Seq[domain.Listing] {
	text := strings.ToLower(strings.TrimSpace(q.Text))

	matched := make([]domain.Listing, 0, len(listings))
	for _, l := range listings {
		if !l.Discoverable() {
			continue
		}
		if q.Category != "" && l.Category != q.Category {
			continue
		}
		if !q.Bucket.contains(l.Price) {
			continue
		}
		if text != "" && !matchesText(l, text) {
			continue
		}
		matched = append(matched, l)
	}
	order(matched, q.Sort)

	return func(yield func(domain.Listing) bool) {
		for _, l := range matched {
			if !yield(l) {
				return
			}
		}
	}
}

// matchesText is a case-insensitive substring match: any one field hitting
// is enough.
func matchesText(l domain.Listing, text string) bool {
	if strings.Contains(strings.ToLower(l.Title), text) ||
		strings.Contains(strings.ToLower(l.Description), text) ||
		strings.Contains(strings.ToLower(l.Category), text) {
		return true
	}
	for _, item := range l.Items {
		if strings.Contains(strings.ToLower(item), text) {
			return true
		}
	}
	return false
}

func order(listings []domain.Listing, s Sort) {
	byID := func(a, b domain.Listing) int { return strings.Compare(a.ID, b.ID) }
	switch s {
	case SortPriceAsc:
		slices.SortFunc(listings, func(a, b domain.Listing) int {
			if c := a.Price.Cmp(b.Price); c != 0 {
				return c
			}
			return byID(a, b)
		})
	case SortPriceDesc:
		slices.SortFunc(listings, func(a, b domain.Listing) int {
			if c := b.Price.Cmp(a.Price); c != 0 {
				return c
			}
			return byID(a, b)
		})
	case SortPopularity:
		slices.SortFunc(listings, func(a, b domain.Listing) int {
			if a.Popularity != b.Popularity {
				return b.Popularity - a.Popularity
			}
			return byID(a, b)
		})
	default: // newest
		slices.SortFunc(listings, func(a, b domain.Listing) int {
			if c := strings.Compare(b.CreatedAt, a.CreatedAt); c != 0 {
				return c
			}
			return byID(a, b)
		})
	}
}

// Window applies offset/limit pagination over an ordered sequence.
func Window(seq iter.Seq[domain.Listing], offset, limit int) []domain.Listing {
	out := make([]domain.Listing, 0, limit)
	i := 0
	for l := range seq {
		if i >= offset {
			out = append(out, l)
			if len(out) == limit {
				break
			}
		}
		i++
	}
	return out
}
