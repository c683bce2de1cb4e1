// Package session provides the stores that carry dialogue state between turns.
package session

import (
	"context"
	"fmt"

	"github.com/seu-repo/appinventor-skill/internal/domain"
)

// EnvelopeStore reads state from the request's session attributes. The skill
// echoes state back in the response, so Save and Delete have nothing to do.
type EnvelopeStore struct{}

func NewEnvelopeStore() *EnvelopeStore {
	return &EnvelopeStore{}
}

func (s *EnvelopeStore) Load(ctx context.Context, env *domain.RequestEnvelope) (domain.SessionState, error) {
	if env.Session == nil {
		return domain.SessionState{}, nil
	}
	state, err := domain.SessionStateFromAttributes(env.Session.Attributes)
	if err != nil {
		return domain.SessionState{}, fmt.Errorf("decode session attributes: %w", err)
	}
	return state, nil
}

func (s *EnvelopeStore) Save(ctx context.Context, env *domain.RequestEnvelope, state domain.SessionState) error {
	return nil
}

func (s *EnvelopeStore) Delete(ctx context.Context, env *domain.RequestEnvelope) error {
	return nil
}
