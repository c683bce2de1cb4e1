package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/appinventor-skill/internal/domain"
)

// Turner answers one skill turn.
type Turner interface {
	Handle(ctx context.Context, env *domain.RequestEnvelope) *domain.ResponseEnvelope
}

type SkillHandler struct {
	skill         Turner
	applicationID string
	log           *zap.Logger
}

// NewSkillHandler serves the voice platform endpoint. An empty applicationID
// accepts every application.
func NewSkillHandler(skill Turner, applicationID string, log *zap.Logger) *SkillHandler {
	return &SkillHandler{
		skill:         skill,
		applicationID: applicationID,
		log:           log,
	}
}

func (h *SkillHandler) Handle(c *fiber.Ctx) error {
	var env domain.RequestEnvelope
	if err := c.BodyParser(&env); err != nil {
		h.log.Debug("Rejected malformed skill request", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request envelope"})
	}
	if env.Request.Type == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing request type"})
	}

	if h.applicationID != "" {
		var appID string
		if env.Session != nil {
			appID = env.Session.Application.ApplicationID
		}
		if appID != h.applicationID {
			h.log.Warn("Rejected request from unknown application",
				zap.String("application_id", appID),
				zap.String("session_id", env.SessionID()),
			)
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Unknown application"})
		}
	}

	resp := h.skill.Handle(c.UserContext(), &env)
	return c.JSON(resp)
}
