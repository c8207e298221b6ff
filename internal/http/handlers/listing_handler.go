package handlers

import (
	"github.com/gofiber/fiber/v2"

	"bloxmarket/internal/domain"
	applog "bloxmarket/internal/log"
	"bloxmarket/internal/services"
	"bloxmarket/internal/validate"
)

type ListingHandler struct {
	Listings *services.ListingService
	Auth     *services.AuthService
}

type createListingReq struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Price       string   `json:"price"`
	Images      []string `json:"images"`
	Level       int      `json:"level"`
	Robux       int      `json:"robux"`
	Premium     bool     `json:"premium"`
	Items       []string `json:"items"`
}

func (h *ListingHandler) Create(c *fiber.Ctx) error {
	u := currentUser(c)
	var req createListingReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed body"})
	}
	price, ok := validate.Price(req.Price)
	if !ok {
		return respondErr(c, "listing.create",
			&domain.ValidationError{Field: "price", Reason: "must be a positive amount with at most two decimals"})
	}

	l, err := h.Listings.Create(u.ID, services.Draft{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Price:       price,
		Images:      req.Images,
		Attributes:  domain.Attributes{Level: req.Level, Robux: req.Robux, Premium: req.Premium},
		Items:       req.Items,
	})
	if err != nil {
		return respondErr(c, "listing.create", err)
	}
	applog.Audit(c, "listing.create", map[string]any{"listing_id": l.ID})
	return c.Status(fiber.StatusCreated).JSON(toListingResp(l))
}

func (h *ListingHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found"})
	}
	l, err := h.Listings.Get(id)
	if err != nil {
		return respondErr(c, "listing.get", err)
	}

	// Drafts, queued reviews and removed listings are visible only to the
	// owner and admins; everything that reached the market is public.
	switch l.Status {
	case domain.ListingDraft, domain.ListingPendingReview, domain.ListingRemoved:
		actor := ""
		role := ""
		if sid := c.Cookies("sid"); sid != "" {
			if u, err := h.Auth.CurrentUser(sid); err == nil && u != nil {
				actor, role = u.ID, u.Role
			}
		}
		if actor != l.SellerID && role != "ADMIN" {
			applog.Security(c, "access.denied.listing", map[string]any{"listing_id": id})
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found"})
		}
	}
	return c.JSON(toListingResp(l))
}

func (h *ListingHandler) Submit(c *fiber.Ctx) error {
	u := currentUser(c)
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found"})
	}
	l, err := h.Listings.Submit(u.ID, id)
	if err != nil {
		return respondErr(c, "listing.submit", err)
	}
	applog.Audit(c, "listing.submit", map[string]any{"listing_id": id})
	return c.JSON(toListingResp(l))
}

type priceReq struct {
	Price string `json:"price"`
}

func (h *ListingHandler) UpdatePrice(c *fiber.Ctx) error {
	u := currentUser(c)
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found"})
	}
	var req priceReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed body"})
	}
	price, pok := validate.Price(req.Price)
	if !pok {
		return respondErr(c, "listing.price",
			&domain.ValidationError{Field: "price", Reason: "must be a positive amount with at most two decimals"})
	}
	if err := h.Listings.UpdatePrice(u.ID, id, price); err != nil {
		return respondErr(c, "listing.price", err)
	}
	applog.Audit(c, "listing.price", map[string]any{"listing_id": id, "price": price.String()})
	return c.JSON(fiber.Map{"ok": true})
}

// Mine lists the authenticated seller's own listings, drafts included.
func (h *ListingHandler) Mine(c *fiber.Ctx) error {
	u := currentUser(c)
	listings, err := h.Listings.Mine(u.ID)
	if err != nil {
		return respondErr(c, "listing.mine", err)
	}
	out := make([]listingResp, 0, len(listings))
	for _, l := range listings {
		out = append(out, toListingResp(l))
	}
	return c.JSON(fiber.Map{"count": len(out), "listings": out})
}

// Availability reports whether a listing can still be bought.
func (h *ListingHandler) Availability(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Query("listingId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing or invalid listingId"})
	}
	status, err := h.Listings.Availability(id)
	if err != nil {
		return respondErr(c, "listing.availability", err)
	}
	return c.JSON(fiber.Map{"status": status})
}

// Categories returns the fixed game category set for pickers.
func (h *ListingHandler) Categories(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"categories": domain.Categories})
}
