package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"bloxmarket/internal/domain"
	applog "bloxmarket/internal/log"
)

// respondErr maps the core error taxonomy onto HTTP statuses. Nothing is
// swallowed: unknown errors are logged and surface as a generic 500.
func respondErr(c *fiber.Ctx, action string, err error) error {
	var ve *domain.ValidationError
	var se *domain.StaleListingError
	var ce *domain.ConflictError
	var de *domain.DependencyError
	switch {
	case errors.As(err, &ve):
		applog.Security(c, "validation.fail", map[string]any{"field": ve.Field})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "validation_failed", "field": ve.Field, "reason": ve.Reason,
		})
	case errors.As(err, &se):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "stale_listings", "listingIds": se.ListingIDs,
		})
	case errors.As(err, &ce):
		applog.Info(c, action+".conflict", map[string]any{"resource": ce.Resource, "id": ce.ID})
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "conflict", "message": "no longer available",
		})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found"})
	case errors.Is(err, domain.ErrForbidden):
		applog.Security(c, "access.denied", map[string]any{"action": action})
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
	case errors.As(err, &de):
		applog.Error(c, action, err, nil)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "upstream_failure"})
	default:
		applog.Error(c, action, err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_error"})
	}
}

type listingResp struct {
	ID           string            `json:"id"`
	SellerID     string            `json:"sellerId"`
	Title        string            `json:"title"`
	Description  string            `json:"description,omitempty"`
	Category     string            `json:"category"`
	Price        decimal.Decimal   `json:"price"`
	Images       []string          `json:"images"`
	Attributes   domain.Attributes `json:"attributes"`
	Items        []string          `json:"items"`
	Status       string            `json:"status"`
	Verification string            `json:"verificationStatus"`
	Popularity   int               `json:"popularity"`
	CreatedAt    string            `json:"createdAt"`
}

func toListingResp(l domain.Listing) listingResp {
	return listingResp{
		ID:           l.ID,
		SellerID:     l.SellerID,
		Title:        l.Title,
		Description:  l.Description,
		Category:     l.Category,
		Price:        l.Price,
		Images:       l.Images,
		Attributes:   l.Attributes,
		Items:        l.Items,
		Status:       string(l.Status),
		Verification: string(l.Verification),
		Popularity:   l.Popularity,
		CreatedAt:    l.CreatedAt,
	}
}

type txnResp struct {
	ID        string          `json:"id"`
	BuyerID   string          `json:"buyerId"`
	SellerID  string          `json:"sellerId"`
	ListingID string          `json:"listingId"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	Escrow    string          `json:"escrowStatus"`
	CreatedAt string          `json:"createdAt"`
}

func toTxnResp(t domain.Transaction) txnResp {
	return txnResp{
		ID:        t.ID,
		BuyerID:   t.BuyerID,
		SellerID:  t.SellerID,
		ListingID: t.ListingID,
		Amount:    t.Amount,
		Status:    string(t.Status),
		Escrow:    string(t.Escrow),
		CreatedAt: t.CreatedAt,
	}
}
