package domain

import (
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrUnhandledRequest = errors.New("no handler accepts the request")
	ErrMissingSession   = errors.New("request carries no session")
	ErrNoRepository     = errors.New("report repository not configured")
)

// DescriptionPrefix is prepended to the spoken description before it is stored.
const DescriptionPrefix = "create an app with "

// Session attribute names, kept compatible with the skill's session attributes.
const (
	AttrAppName     = "app_name"
	AttrDescription = "description"
	AttrReported    = "reported"
)

// SessionState is what the skill remembers between turns of one session.
// Empty strings mean "not supplied yet".
type SessionState struct {
	Name        string `json:"app_name,omitempty"`
	Description string `json:"description,omitempty"`
	Reported    bool   `json:"reported,omitempty"`
}

func (s SessionState) HasName() bool        { return s.Name != "" }
func (s SessionState) HasDescription() bool { return s.Description != "" }

// Attributes renders the state as response session attributes.
func (s SessionState) Attributes() map[string]any {
	attrs := make(map[string]any, 3)
	if s.HasName() {
		attrs[AttrAppName] = s.Name
	}
	if s.HasDescription() {
		attrs[AttrDescription] = s.Description
	}
	if s.Reported {
		attrs[AttrReported] = true
	}
	return attrs
}

// SessionStateFromAttributes decodes request session attributes. Unknown
// attributes are ignored and malformed known ones are an error.
func SessionStateFromAttributes(attrs map[string]json.RawMessage) (SessionState, error) {
	var state SessionState
	if raw, ok := attrs[AttrAppName]; ok {
		if err := json.Unmarshal(raw, &state.Name); err != nil {
			return SessionState{}, err
		}
	}
	if raw, ok := attrs[AttrDescription]; ok {
		if err := json.Unmarshal(raw, &state.Description); err != nil {
			return SessionState{}, err
		}
	}
	if raw, ok := attrs[AttrReported]; ok {
		if err := json.Unmarshal(raw, &state.Reported); err != nil {
			return SessionState{}, err
		}
	}
	return state, nil
}

type ReportStatus string

const (
	ReportStatusSent   ReportStatus = "sent"
	ReportStatusFailed ReportStatus = "failed"
)

// AppReport is one completed app request, as sent to the reporting endpoint
// and kept in the audit trail.
type AppReport struct {
	ID          string       `json:"id" gorm:"primaryKey"`
	SessionID   string       `json:"session_id" gorm:"index"`
	UserID      string       `json:"user_id,omitempty"`
	Locale      string       `json:"locale,omitempty"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Status      ReportStatus `json:"status"`
	Error       string       `json:"error,omitempty"`
	CreatedAt   time.Time    `json:"created_at" gorm:"index"`
}

func (AppReport) TableName() string { return "app_reports" }
