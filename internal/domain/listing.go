package domain

import "github.com/shopspring/decimal"

type ListingStatus string

const (
	ListingDraft         ListingStatus = "draft"
	ListingPendingReview ListingStatus = "pending_review"
	ListingActive        ListingStatus = "active"
	ListingPendingSale   ListingStatus = "pending_sale"
	ListingSold          ListingStatus = "sold"
	ListingRemoved       ListingStatus = "removed"
)

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

// Categories is the fixed set of game titles a listing may belong to.
var Categories = []string{
	"Adopt Me!",
	"Bloxburg",
	"Arsenal",
	"Jailbreak",
	"Murder Mystery 2",
	"Royale High",
	"Pet Simulator X",
	"Brookhaven",
	"Tower of Hell",
	"Piggy",
}

func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Attributes describes the account behind a listing.
type Attributes struct {
	Level   int  `json:"level"`
	Robux   int  `json:"robux"`
	Premium bool `json:"premium"`
}

type Listing struct {
	ID           string
	SellerID     string
	Title        string
	Description  string
	Category     string
	Price        decimal.Decimal
	Images       []string // blob store URLs, 1-8, order preserved
	Attributes   Attributes
	Items        []string // free-form inventory descriptors, order preserved
	Status       ListingStatus
	Verification VerificationStatus
	Popularity   int // externally supplied signal, 0-100
	CreatedAt    string
}

// Discoverable reports whether the search engine may ever show the listing.
func (l Listing) Discoverable() bool {
	return l.Status == ListingActive && l.Verification == VerificationVerified
}
