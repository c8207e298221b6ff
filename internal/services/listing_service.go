package services

import (
	"github.com/shopspring/decimal"

	"bloxmarket/internal/domain"
	"bloxmarket/internal/ids"
	"bloxmarket/internal/repos"
	"bloxmarket/internal/search"
)

type ListingService struct {
	Listings *repos.ListingRepo
}

func NewListingService(listings *repos.ListingRepo) *ListingService {
	return &ListingService{Listings: listings}
}

// Draft is the seller-supplied shape of a new listing.
type Draft struct {
	Title       string
	Description string
	Category    string
	Price       decimal.Decimal
	Images      []string
	Attributes  domain.Attributes
	Items       []string
}

// Create persists a new draft listing owned by the seller. Validation lives
// at the store boundary; anything malformed comes back as ValidationError.
func (s *ListingService) Create(sellerID string, d Draft) (domain.Listing, error) {
	items := make([]string, 0, len(d.Items))
	for _, it := range d.Items {
		if it != "" {
			items = append(items, it)
		}
	}
	return s.Listings.Create(domain.Listing{
		ID:          ids.New("acc"),
		SellerID:    sellerID,
		Title:       d.Title,
		Description: d.Description,
		Category:    d.Category,
		Price:       d.Price,
		Images:      d.Images,
		Attributes:  d.Attributes,
		Items:       items,
	})
}

func (s *ListingService) Get(id string) (domain.Listing, error) {
	return s.Listings.Get(id)
}

// Submit sends a draft into the moderation queue. Only the owner may submit.
func (s *ListingService) Submit(actorID, id string) (domain.Listing, error) {
	l, err := s.Listings.Get(id)
	if err != nil {
		return domain.Listing{}, err
	}
	if l.SellerID != actorID {
		return domain.Listing{}, domain.ErrForbidden
	}
	if len(l.Images) == 0 {
		return domain.Listing{}, &domain.ValidationError{Field: "images", Reason: "required before review"}
	}
	return s.Listings.UpdateStatus(id, domain.ListingDraft, domain.ListingPendingReview)
}

// UpdatePrice edits the asking price. Open transactions keep their
// snapshotted amount regardless.
func (s *ListingService) UpdatePrice(actorID, id string, price decimal.Decimal) error {
	l, err := s.Listings.Get(id)
	if err != nil {
		return err
	}
	if l.SellerID != actorID {
		return domain.ErrForbidden
	}
	return s.Listings.UpdatePrice(id, price)
}

// Mine returns every listing a seller owns, drafts included.
func (s *ListingService) Mine(sellerID string) ([]domain.Listing, error) {
	return s.Listings.ListBySeller(sellerID)
}

// Availability reports whether a listing can be bought right now.
func (s *ListingService) Availability(id string) (string, error) {
	l, err := s.Listings.Get(id)
	if err != nil {
		return "", err
	}
	switch {
	case l.Discoverable():
		return "AVAILABLE", nil
	case l.Status == domain.ListingPendingSale:
		return "PENDING_SALE", nil
	case l.Status == domain.ListingSold:
		return "SOLD", nil
	default:
		return "UNAVAILABLE", nil
	}
}

// Search loads the eligible snapshot from the store and refines it with the
// pure engine. Pagination happens here, after ordering.
func (s *ListingService) Search(q search.Query, page, pageSize int) ([]domain.Listing, error) {
	eligible, err := s.Listings.Query(repos.Filter{
		Status:       domain.ListingActive,
		Verification: domain.VerificationVerified,
		Category:     q.Category,
	})
	if err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	results := search.Results(eligible, q)
	return search.Window(results, (page-1)*pageSize, pageSize), nil
}
