package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "bloxmarket/internal/log"
	"bloxmarket/internal/services"
	"bloxmarket/internal/validate"
)

type TransactionHandler struct {
	Txns *services.TransactionService
}

type initiateReq struct {
	ListingID string `json:"listingId"`
}

// Initiate opens an escrow-protected purchase. A lost race against another
// buyer surfaces as 409 "no longer available"; the client must not retry.
func (h *TransactionHandler) Initiate(c *fiber.Ctx) error {
	u := currentUser(c)
	var req initiateReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed body"})
	}
	id, ok := validate.ID(req.ListingID)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing or invalid listingId"})
	}

	t, err := h.Txns.Initiate(u.ID, id)
	if err != nil {
		return respondErr(c, "txn.initiate", err)
	}
	applog.Transition(c, t.ID, u.ID, "-", string(t.Status))
	return c.Status(fiber.StatusCreated).JSON(toTxnResp(t))
}

func (h *TransactionHandler) act(c *fiber.Ctx, name string, fn func(actorID, txnID string) error) error {
	u := currentUser(c)
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found"})
	}
	prior, err := h.Txns.Get(u.ID, id, false)
	if err != nil {
		return respondErr(c, name, err)
	}
	if err := fn(u.ID, id); err != nil {
		return respondErr(c, name, err)
	}
	t, err := h.Txns.Get(u.ID, id, false)
	if err != nil {
		return respondErr(c, name, err)
	}
	applog.Transition(c, t.ID, u.ID, string(prior.Status), string(t.Status))
	return c.JSON(toTxnResp(t))
}

func (h *TransactionHandler) Capture(c *fiber.Ctx) error {
	return h.act(c, "txn.capture", h.Txns.Capture)
}

func (h *TransactionHandler) Deliver(c *fiber.Ctx) error {
	return h.act(c, "txn.deliver", h.Txns.ConfirmDelivery)
}

func (h *TransactionHandler) Confirm(c *fiber.Ctx) error {
	return h.act(c, "txn.confirm", h.Txns.ConfirmReceipt)
}

func (h *TransactionHandler) Dispute(c *fiber.Ctx) error {
	return h.act(c, "txn.dispute", h.Txns.Dispute)
}

func (h *TransactionHandler) Cancel(c *fiber.Ctx) error {
	return h.act(c, "txn.cancel", h.Txns.Cancel)
}

func (h *TransactionHandler) Get(c *fiber.Ctx) error {
	u := currentUser(c)
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found"})
	}
	t, err := h.Txns.Get(u.ID, id, u.Role == "ADMIN")
	if err != nil {
		return respondErr(c, "txn.get", err)
	}
	return c.JSON(toTxnResp(t))
}

func (h *TransactionHandler) Audit(c *fiber.Ctx) error {
	u := currentUser(c)
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found"})
	}
	trail, err := h.Txns.Audit(u.ID, id, u.Role == "ADMIN")
	if err != nil {
		return respondErr(c, "txn.audit", err)
	}
	return c.JSON(fiber.Map{"txnId": id, "entries": trail})
}

func (h *TransactionHandler) History(c *fiber.Ctx) error {
	u := currentUser(c)
	txns, err := h.Txns.History(u.ID)
	if err != nil {
		return respondErr(c, "txn.history", err)
	}
	out := make([]txnResp, 0, len(txns))
	for _, t := range txns {
		out = append(out, toTxnResp(t))
	}
	return c.JSON(fiber.Map{"count": len(out), "transactions": out})
}
