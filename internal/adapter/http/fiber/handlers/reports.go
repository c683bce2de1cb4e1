package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/appinventor-skill/internal/domain"
	"github.com/seu-repo/appinventor-skill/internal/ports"
)

type ReportHandler struct {
	service ports.ReportService
	log     *zap.Logger
}

func NewReportHandler(service ports.ReportService, log *zap.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		log:     log,
	}
}

// List returns the most recent app reports, newest first.
func (h *ReportHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)

	reports, err := h.service.Recent(c.UserContext(), limit)
	if errors.Is(err, domain.ErrNoRepository) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Report audit trail is not enabled"})
	}
	if err != nil {
		h.log.Error("Failed to list reports", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list reports"})
	}
	if reports == nil {
		reports = []domain.AppReport{}
	}

	return c.JSON(fiber.Map{
		"reports": reports,
		"count":   len(reports),
	})
}
