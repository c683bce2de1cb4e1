// Package skill turns one voice-platform request envelope into a response
// envelope by routing it to the first handler that accepts it.
package skill

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/seu-repo/appinventor-skill/internal/domain"
	"github.com/seu-repo/appinventor-skill/internal/observability/telemetry"
	"github.com/seu-repo/appinventor-skill/internal/ports"
	"github.com/seu-repo/appinventor-skill/internal/service/i18n"
)

const responseVersion = "1.0"

type Options struct {
	// ReportOnce suppresses a second report within the same session.
	ReportOnce bool
}

// Skill is the request router. It is safe for concurrent use.
type Skill struct {
	store    ports.SessionStore
	reports  ports.ReportService
	loc      ports.Localizer
	opts     Options
	handlers []handler
	tracer   trace.Tracer
	log      *zap.Logger
}

func New(store ports.SessionStore, reports ports.ReportService, loc ports.Localizer, opts Options, log *zap.Logger) *Skill {
	s := &Skill{
		store:   store,
		reports: reports,
		loc:     loc,
		opts:    opts,
		tracer:  otel.Tracer("appinventor-skill/skill"),
		log:     log,
	}
	s.handlers = []handler{
		&createAppHandler{s},
		&helpHandler{s},
		&cancelHandler{s},
		&sessionEndedHandler{s},
		&fallbackHandler{s},
	}
	return s
}

// Handle processes one turn. It never fails: handler errors and panics are
// answered with the localized error prompt and the session stays open.
func (s *Skill) Handle(ctx context.Context, env *domain.RequestEnvelope) (resp *domain.ResponseEnvelope) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "skill.turn", trace.WithAttributes(
		attribute.String("skill.request_type", env.Request.Type),
		attribute.String("skill.intent", env.IntentName()),
		attribute.String("skill.session_id", env.SessionID()),
	))
	defer span.End()

	s.logRequest(env)

	outcome := "ok"
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Panic while handling skill turn",
				zap.Any("panic", r),
				zap.String("session_id", env.SessionID()),
				zap.String("request_type", env.Request.Type),
			)
			span.SetStatus(codes.Error, fmt.Sprint(r))
			outcome = "error"
			resp = s.errorResponse(env)
		}
		telemetry.SkillTurnsTotal.WithLabelValues(env.Request.Type, outcome).Inc()
		telemetry.SkillTurnLatency.Observe(time.Since(start).Seconds())
		s.logResponse(env, resp)
	}()

	resp, err := s.route(ctx, env)
	if err != nil {
		s.log.Error("Failed to handle skill turn",
			zap.String("session_id", env.SessionID()),
			zap.String("request_type", env.Request.Type),
			zap.String("intent", env.IntentName()),
			zap.Error(err),
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		outcome = "error"
		resp = s.errorResponse(env)
	}
	return resp
}

func (s *Skill) route(ctx context.Context, env *domain.RequestEnvelope) (*domain.ResponseEnvelope, error) {
	for _, h := range s.handlers {
		if h.CanHandle(env) {
			return h.Handle(ctx, env)
		}
	}
	return nil, fmt.Errorf("%w: type=%s intent=%s", domain.ErrUnhandledRequest, env.Request.Type, env.IntentName())
}

func (s *Skill) errorResponse(env *domain.RequestEnvelope) *domain.ResponseEnvelope {
	telemetry.SkillTurnErrorsTotal.Inc()
	return s.respond(env).
		speak(i18n.KeyError).
		reprompt(i18n.KeyGenericReprompt).
		keepOpen().
		echo(env).
		build()
}

func (s *Skill) logRequest(env *domain.RequestEnvelope) {
	if ce := s.log.Check(zap.DebugLevel, "Skill request"); ce != nil {
		raw, _ := json.Marshal(env)
		ce.Write(zap.ByteString("envelope", raw))
	}
}

func (s *Skill) logResponse(env *domain.RequestEnvelope, resp *domain.ResponseEnvelope) {
	if ce := s.log.Check(zap.DebugLevel, "Skill response"); ce != nil {
		raw, _ := json.Marshal(resp)
		ce.Write(
			zap.String("session_id", env.SessionID()),
			zap.ByteString("envelope", raw),
		)
	}
}
