package skill

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seu-repo/appinventor-skill/internal/domain"
	"github.com/seu-repo/appinventor-skill/internal/service/dialogue"
	"github.com/seu-repo/appinventor-skill/internal/service/i18n"
)

type handler interface {
	CanHandle(env *domain.RequestEnvelope) bool
	Handle(ctx context.Context, env *domain.RequestEnvelope) (*domain.ResponseEnvelope, error)
}

// createAppHandler runs one turn of the name/description dialogue.
type createAppHandler struct{ s *Skill }

func (h *createAppHandler) CanHandle(env *domain.RequestEnvelope) bool {
	return env.Request.Type == domain.RequestTypeLaunch || env.IntentName() == domain.IntentCreateApp
}

func (h *createAppHandler) Handle(ctx context.Context, env *domain.RequestEnvelope) (*domain.ResponseEnvelope, error) {
	s := h.s
	state, err := s.store.Load(ctx, env)
	if err != nil {
		return nil, err
	}

	next, decision := dialogue.Advance(state, dialogue.Input{
		Name:        rawSlot(env, domain.SlotAppName),
		Description: rawSlot(env, domain.SlotAppDescription),
	})

	s.log.Debug("Dialogue advanced",
		zap.String("session_id", env.SessionID()),
		zap.Stringer("action", decision.Action),
		zap.Bool("has_name", next.HasName()),
		zap.Bool("has_description", next.HasDescription()),
	)

	switch decision.Action {
	case dialogue.PromptForName:
		if err := s.store.Save(ctx, env, next); err != nil {
			return nil, err
		}
		key := i18n.KeyNeedName
		if isEntry(env) {
			key = i18n.KeyEntry
		}
		return s.respond(env).speak(key).reprompt(i18n.KeyNeedName).keepOpen().state(next).build(), nil

	case dialogue.PromptForDescription:
		if err := s.store.Save(ctx, env, next); err != nil {
			return nil, err
		}
		return s.respond(env).speak(i18n.KeyNeedDescription).reprompt(i18n.KeyNeedDescription).keepOpen().state(next).build(), nil

	case dialogue.ReportAndEnd:
		if s.opts.ReportOnce && next.Reported {
			s.log.Info("Report already sent for session, skipping",
				zap.String("session_id", env.SessionID()),
			)
		} else {
			h.submit(ctx, env, decision.Report)
			next.Reported = true
		}
		h.finish(ctx, env, next)
		return s.respond(env).speak(i18n.KeyWorking).end().state(next).build(), nil

	default:
		return nil, fmt.Errorf("unknown dialogue action %s", decision.Action)
	}
}

// submit sends the report. The outcome is recorded by the report service and
// never changes what the user hears.
func (h *createAppHandler) submit(ctx context.Context, env *domain.RequestEnvelope, r *dialogue.Report) {
	report := &domain.AppReport{
		ID:          uuid.NewString(),
		SessionID:   env.SessionID(),
		Locale:      env.Request.Locale,
		Name:        r.Name,
		Description: r.Description,
	}
	if env.Session != nil {
		report.UserID = env.Session.User.UserID
	}
	if err := h.s.reports.Submit(ctx, report); err != nil {
		h.s.log.Warn("Confirming app request despite report failure",
			zap.String("session_id", env.SessionID()),
			zap.String("report_id", report.ID),
		)
	}
}

// finish keeps the completed state, flagged as reported, until the session
// ends or the entry expires, so a later rename reports again.
func (h *createAppHandler) finish(ctx context.Context, env *domain.RequestEnvelope, state domain.SessionState) {
	if err := h.s.store.Save(ctx, env, state); err != nil {
		h.s.log.Warn("Failed to update session state after report",
			zap.String("session_id", env.SessionID()),
			zap.Error(err),
		)
	}
}

func isEntry(env *domain.RequestEnvelope) bool {
	return env.Request.Type == domain.RequestTypeLaunch || env.Session == nil || env.Session.New
}

type helpHandler struct{ s *Skill }

func (h *helpHandler) CanHandle(env *domain.RequestEnvelope) bool {
	return env.IntentName() == domain.IntentHelp
}

func (h *helpHandler) Handle(ctx context.Context, env *domain.RequestEnvelope) (*domain.ResponseEnvelope, error) {
	return h.s.respond(env).speak(i18n.KeyHelp).reprompt(i18n.KeyNeedName).keepOpen().echo(env).build(), nil
}

type cancelHandler struct{ s *Skill }

func (h *cancelHandler) CanHandle(env *domain.RequestEnvelope) bool {
	name := env.IntentName()
	return name == domain.IntentCancel || name == domain.IntentStop
}

func (h *cancelHandler) Handle(ctx context.Context, env *domain.RequestEnvelope) (*domain.ResponseEnvelope, error) {
	if err := h.s.store.Delete(ctx, env); err != nil && !errors.Is(err, domain.ErrMissingSession) {
		h.s.log.Warn("Failed to delete session state", zap.String("session_id", env.SessionID()), zap.Error(err))
	}
	return h.s.respond(env).speak(i18n.KeyExit).end().build(), nil
}

type sessionEndedHandler struct{ s *Skill }

func (h *sessionEndedHandler) CanHandle(env *domain.RequestEnvelope) bool {
	return env.Request.Type == domain.RequestTypeSessionEnded
}

func (h *sessionEndedHandler) Handle(ctx context.Context, env *domain.RequestEnvelope) (*domain.ResponseEnvelope, error) {
	h.s.log.Info("Session ended",
		zap.String("session_id", env.SessionID()),
		zap.String("reason", env.Request.Reason),
	)
	if err := h.s.store.Delete(ctx, env); err != nil && !errors.Is(err, domain.ErrMissingSession) {
		h.s.log.Warn("Failed to delete session state", zap.String("session_id", env.SessionID()), zap.Error(err))
	}
	return &domain.ResponseEnvelope{Version: responseVersion}, nil
}

// fallbackHandler answers any other intent by asking for whatever is missing.
type fallbackHandler struct{ s *Skill }

func (h *fallbackHandler) CanHandle(env *domain.RequestEnvelope) bool {
	return env.Request.Type == domain.RequestTypeIntent
}

func (h *fallbackHandler) Handle(ctx context.Context, env *domain.RequestEnvelope) (*domain.ResponseEnvelope, error) {
	state, err := h.s.store.Load(ctx, env)
	if err != nil {
		return nil, err
	}
	key := i18n.KeyNeedName
	if state.HasName() {
		key = i18n.KeyNeedDescription
	}
	return h.s.respond(env).speak(key).reprompt(key).keepOpen().state(state).build(), nil
}
