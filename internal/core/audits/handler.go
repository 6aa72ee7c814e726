package audits

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"seoauditor/internal/storage"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createAuditRequest struct {
	URL    string `json:"url"`
	UserID string `json:"user_id"`
}

// HandleCreateAudit accepts the audit, debits a credit and enqueues the job.
// The response is 202: the audit runs asynchronously and is polled via the
// progress endpoint.
func (h *Handler) HandleCreateAudit(c *fiber.Ctx) error {
	var req createAuditRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "invalid request body"})
	}
	if req.URL == "" || req.UserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "url and user_id are required"})
	}

	rec, err := h.service.Submit(c.Context(), req.UserID, req.URL)
	switch {
	case errors.Is(err, ErrInvalidURL):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "url must be absolute http(s)"})
	case errors.Is(err, ErrInsufficientCredits):
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{"success": false, "error": "insufficient credits"})
	case errors.Is(err, storage.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "unknown user"})
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"success":  true,
		"audit_id": rec.ID,
		"status":   rec.Status,
	})
}

func (h *Handler) HandleGetAudit(c *fiber.Ctx) error {
	rec, err := h.service.Get(c.Context(), c.Params("auditId"))
	if errors.Is(err, storage.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "audit not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
	}
	return c.JSON(fiber.Map{"success": true, "audit": rec})
}

func (h *Handler) HandleGetProgress(c *fiber.Ctx) error {
	p, err := h.service.Progress(c.Context(), c.Params("auditId"))
	if errors.Is(err, storage.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "audit not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"stage":   p.Stage,
		"message": p.Message,
		"percent": p.Percent,
	})
}
