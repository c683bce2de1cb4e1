package skill

import (
	"github.com/seu-repo/appinventor-skill/internal/domain"
)

// responseBuilder assembles a response envelope from message keys.
type responseBuilder struct {
	loc  func(key string) string
	resp domain.ResponseEnvelope
}

func (s *Skill) respond(env *domain.RequestEnvelope) *responseBuilder {
	locale := env.Request.Locale
	return &responseBuilder{
		loc:  func(key string) string { return s.loc.T(locale, key) },
		resp: domain.ResponseEnvelope{Version: responseVersion},
	}
}

func (b *responseBuilder) speak(key string) *responseBuilder {
	b.resp.Response.OutputSpeech = &domain.OutputSpeech{
		Type: domain.SpeechTypePlainText,
		Text: b.loc(key),
	}
	return b
}

func (b *responseBuilder) reprompt(key string) *responseBuilder {
	b.resp.Response.Reprompt = &domain.Reprompt{
		OutputSpeech: domain.OutputSpeech{
			Type: domain.SpeechTypePlainText,
			Text: b.loc(key),
		},
	}
	return b
}

func (b *responseBuilder) keepOpen() *responseBuilder {
	end := false
	b.resp.Response.ShouldEndSession = &end
	return b
}

func (b *responseBuilder) end() *responseBuilder {
	end := true
	b.resp.Response.ShouldEndSession = &end
	return b
}

func (b *responseBuilder) state(state domain.SessionState) *responseBuilder {
	if attrs := state.Attributes(); len(attrs) > 0 {
		b.resp.SessionAttributes = attrs
	}
	return b
}

// echo returns the request's session attributes untouched.
func (b *responseBuilder) echo(env *domain.RequestEnvelope) *responseBuilder {
	if env.Session == nil || len(env.Session.Attributes) == 0 {
		return b
	}
	attrs := make(map[string]any, len(env.Session.Attributes))
	for k, v := range env.Session.Attributes {
		attrs[k] = v
	}
	b.resp.SessionAttributes = attrs
	return b
}

func (b *responseBuilder) build() *domain.ResponseEnvelope {
	return &b.resp
}
