package handlers

import (
	"fmt"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"

	"bloxmarket/internal/blob"
	applog "bloxmarket/internal/log"
)

type MediaHandler struct {
	Blobs blob.Store
}

// Upload stores a listing image and returns its durable URL.
func (h *MediaHandler) Upload(c *fiber.Ctx) error {
	u := currentUser(c)
	fh, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing image"})
	}
	f, err := fh.Open()
	if err != nil {
		return respondErr(c, "media.upload", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return respondErr(c, "media.upload", err)
	}
	if len(data) == 0 {
		applog.Security(c, "media.upload.empty", nil)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": blob.ErrEmpty.Error()})
	}

	hint := fmt.Sprintf("listings/%s/%d-%s", u.ID, time.Now().UnixMilli(), fh.Filename)
	url, err := h.Blobs.Store(data, hint)
	if err != nil {
		return respondErr(c, "media.upload", err)
	}
	applog.Audit(c, "media.upload", map[string]any{"url": url, "bytes": len(data)})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"url": url})
}
