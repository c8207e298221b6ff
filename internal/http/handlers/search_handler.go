package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"bloxmarket/internal/domain"
	applog "bloxmarket/internal/log"
	"bloxmarket/internal/search"
	"bloxmarket/internal/services"
	"bloxmarket/internal/validate"
)

type SearchHandler struct {
	Listings *services.ListingService
}

func (h *SearchHandler) Search(c *fiber.Ctx) error {
	q := ""
	if rawQ := strings.TrimSpace(c.Query("q")); rawQ != "" {
		var ok bool
		q, ok = validate.Q(rawQ)
		if !ok {
			applog.Security(c, "validation.fail", map[string]any{"field": "q", "value": rawQ})
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid search query"})
		}
	}

	category := strings.TrimSpace(c.Query("category"))
	if category != "" && !domain.ValidCategory(category) {
		applog.Security(c, "validation.fail", map[string]any{"field": "category"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown category"})
	}

	bucket, ok := search.ParseBucket(strings.TrimSpace(c.Query("price")))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown price range"})
	}

	sort, ok := search.ParseSort(strings.TrimSpace(c.Query("sort")))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown sort key"})
	}

	page := validate.Page(c.Query("page"))
	pageSize := validate.PageSize(c.Query("page_size"))

	listings, err := h.Listings.Search(search.Query{
		Category: category,
		Bucket:   bucket,
		Text:     q,
		Sort:     sort,
	}, page, pageSize)
	if err != nil {
		return respondErr(c, "search", err)
	}

	out := make([]listingResp, 0, len(listings))
	for _, l := range listings {
		out = append(out, toListingResp(l))
	}
	return c.JSON(fiber.Map{
		"q": q, "category": category, "price": string(bucket), "sort": string(sort),
		"page": page, "count": len(out), "results": out,
	})
}
