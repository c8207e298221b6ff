package repos

import (
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"bloxmarket/internal/domain"
)

type ListingRepo struct{ db *sqlx.DB }

func NewListingRepo(db *sqlx.DB) *ListingRepo { return &ListingRepo{db: db} }

// Filter is a structured query; zero-valued options are unconstrained.
type Filter struct {
	Status       domain.ListingStatus
	Verification domain.VerificationStatus
	Category     string
	PriceMin     *decimal.Decimal
	PriceMax     *decimal.Decimal
	TextQuery    string
}

type listingRow struct {
	ID           string          `db:"id"`
	SellerID     string          `db:"seller_id"`
	Title        string          `db:"title"`
	Description  string          `db:"description"`
	Category     string          `db:"category"`
	Price        decimal.Decimal `db:"price"`
	ImagesJSON   string          `db:"images_json"`
	AttrsJSON    sql.NullString  `db:"attrs_json"`
	ItemsJSON    sql.NullString  `db:"items_json"`
	Status       string          `db:"status"`
	Verification string          `db:"verification"`
	Popularity   int             `db:"popularity"`
	CreatedAt    string          `db:"created_at"`
	UpdatedAt    string          `db:"updated_at"`
}

const listingCols = `
  id, seller_id, title, COALESCE(description,'') AS description, category, price,
  images_json, attrs_json, items_json, status, verification, popularity,
  created_at, COALESCE(updated_at,'') AS updated_at`

func (r listingRow) toDomain() (domain.Listing, error) {
	l := domain.Listing{
		ID:           r.ID,
		SellerID:     r.SellerID,
		Title:        r.Title,
		Description:  r.Description,
		Category:     r.Category,
		Price:        r.Price,
		Status:       domain.ListingStatus(r.Status),
		Verification: domain.VerificationStatus(r.Verification),
		Popularity:   r.Popularity,
		CreatedAt:    r.CreatedAt,
	}
	if err := json.Unmarshal([]byte(r.ImagesJSON), &l.Images); err != nil {
		return domain.Listing{}, err
	}
	if r.AttrsJSON.Valid && r.AttrsJSON.String != "" {
		if err := json.Unmarshal([]byte(r.AttrsJSON.String), &l.Attributes); err != nil {
			return domain.Listing{}, err
		}
	}
	if r.ItemsJSON.Valid && r.ItemsJSON.String != "" {
		if err := json.Unmarshal([]byte(r.ItemsJSON.String), &l.Items); err != nil {
			return domain.Listing{}, err
		}
	}
	return l, nil
}

func validateListing(l domain.Listing) error {
	if strings.TrimSpace(l.Title) == "" || len(l.Title) > 80 {
		return &domain.ValidationError{Field: "title", Reason: "must be 1-80 characters"}
	}
	if !l.Price.IsPositive() {
		return &domain.ValidationError{Field: "price", Reason: "must be greater than zero"}
	}
	if !domain.ValidCategory(l.Category) {
		return &domain.ValidationError{Field: "category", Reason: "unknown game category"}
	}
	if len(l.Images) == 0 {
		return &domain.ValidationError{Field: "images", Reason: "at least one image required"}
	}
	if len(l.Images) > 8 {
		return &domain.ValidationError{Field: "images", Reason: "at most 8 images allowed"}
	}
	return nil
}

// Create validates and inserts a new draft listing.
func (r *ListingRepo) Create(l domain.Listing) (domain.Listing, error) {
	if err := validateListing(l); err != nil {
		return domain.Listing{}, err
	}
	if l.Status == "" {
		l.Status = domain.ListingDraft
	}
	if l.Verification == "" {
		l.Verification = domain.VerificationPending
	}
	if l.CreatedAt == "" {
		l.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	images, err := json.Marshal(l.Images)
	if err != nil {
		return domain.Listing{}, err
	}
	attrs, err := json.Marshal(l.Attributes)
	if err != nil {
		return domain.Listing{}, err
	}
	items, err := json.Marshal(l.Items)
	if err != nil {
		return domain.Listing{}, err
	}

	_, err = r.db.Exec(`
	  INSERT INTO listings
	    (id, seller_id, title, description, category, price, images_json, attrs_json, items_json,
	     status, verification, popularity, created_at)
	  VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)
	`, l.ID, l.SellerID, l.Title, l.Description, l.Category, l.Price,
		string(images), string(attrs), string(items),
		string(l.Status), string(l.Verification), l.Popularity, l.CreatedAt)
	if err != nil {
		return domain.Listing{}, err
	}
	return l, nil
}

func (r *ListingRepo) Get(id string) (domain.Listing, error) {
	var row listingRow
	err := r.db.Get(&row, `SELECT `+listingCols+` FROM listings WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Listing{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Listing{}, err
	}
	return row.toDomain()
}

// UpdateStatus is the compare-and-swap guard: it succeeds only if the
// listing is still in fromStatus, so two racing writers cannot both win.
func (r *ListingRepo) UpdateStatus(id string, from, to domain.ListingStatus) (domain.Listing, error) {
	res, err := r.db.Exec(`
	  UPDATE listings SET status = ?, updated_at = CURRENT_TIMESTAMP
	  WHERE id = ? AND status = ?
	`, string(to), id, string(from))
	if err != nil {
		return domain.Listing{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, gerr := r.Get(id); gerr != nil {
			return domain.Listing{}, gerr
		}
		return domain.Listing{}, &domain.ConflictError{Resource: "listing", ID: id, Expected: string(from)}
	}
	return r.Get(id)
}

// UpdatePrice edits the asking price while the listing is still the
// seller's to mutate. Once a sale is pending the listing is read-only
// outside the state machine.
func (r *ListingRepo) UpdatePrice(id string, price decimal.Decimal) error {
	if !price.IsPositive() {
		return &domain.ValidationError{Field: "price", Reason: "must be greater than zero"}
	}
	res, err := r.db.Exec(`
	  UPDATE listings SET price = ?, updated_at = CURRENT_TIMESTAMP
	  WHERE id = ? AND status IN ('draft','pending_review','active')
	`, price, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, gerr := r.Get(id); gerr != nil {
			return gerr
		}
		return &domain.ConflictError{Resource: "listing", ID: id, Expected: "editable"}
	}
	return nil
}

// Approve moves a reviewed listing live: pending_review -> active, verified.
func (r *ListingRepo) Approve(id string) error {
	return r.review(id, domain.VerificationVerified, domain.ListingActive)
}

// Reject sends the listing back to draft so the seller can amend it.
func (r *ListingRepo) Reject(id string) error {
	return r.review(id, domain.VerificationRejected, domain.ListingDraft)
}

func (r *ListingRepo) review(id string, v domain.VerificationStatus, to domain.ListingStatus) error {
	res, err := r.db.Exec(`
	  UPDATE listings SET verification = ?, status = ?, updated_at = CURRENT_TIMESTAMP
	  WHERE id = ? AND status = 'pending_review'
	`, string(v), string(to), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, gerr := r.Get(id); gerr != nil {
			return gerr
		}
		return &domain.ConflictError{Resource: "listing", ID: id, Expected: string(domain.ListingPendingReview)}
	}
	return nil
}

// Query returns listings matching the filter, newest first.
func (r *ListingRepo) Query(f Filter) ([]domain.Listing, error) {
	where := `1=1`
	args := []any{}
	if f.Status != "" {
		where += ` AND status = ?`
		args = append(args, string(f.Status))
	}
	if f.Verification != "" {
		where += ` AND verification = ?`
		args = append(args, string(f.Verification))
	}
	if f.Category != "" {
		where += ` AND category = ?`
		args = append(args, f.Category)
	}
	if f.PriceMin != nil {
		where += ` AND price > ?`
		args = append(args, *f.PriceMin)
	}
	if f.PriceMax != nil {
		where += ` AND price <= ?`
		args = append(args, *f.PriceMax)
	}
	if f.TextQuery != "" {
		where += ` AND (LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(category) LIKE ? OR LOWER(items_json) LIKE ?)`
		like := "%" + strings.ToLower(f.TextQuery) + "%"
		args = append(args, like, like, like, like)
	}

	var rows []listingRow
	err := r.db.Select(&rows, `
	  SELECT `+listingCols+` FROM listings
	  WHERE `+where+`
	  ORDER BY created_at DESC, id ASC
	`, args...)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Listing, 0, len(rows))
	for _, row := range rows {
		l, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

// ListBySeller returns all of a seller's listings, newest first.
func (r *ListingRepo) ListBySeller(sellerID string) ([]domain.Listing, error) {
	var rows []listingRow
	err := r.db.Select(&rows, `
	  SELECT `+listingCols+` FROM listings
	  WHERE seller_id = ?
	  ORDER BY created_at DESC, id ASC
	`, sellerID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Listing, 0, len(rows))
	for _, row := range rows {
		l, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

// ListPendingReview feeds the moderation queue, oldest first.
func (r *ListingRepo) ListPendingReview() ([]domain.Listing, error) {
	var rows []listingRow
	err := r.db.Select(&rows, `
	  SELECT `+listingCols+` FROM listings
	  WHERE status = 'pending_review'
	  ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Listing, 0, len(rows))
	for _, row := range rows {
		l, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}
