package domain

import "encoding/json"

// Request types sent by the voice platform.
const (
	RequestTypeLaunch       = "LaunchRequest"
	RequestTypeIntent       = "IntentRequest"
	RequestTypeSessionEnded = "SessionEndedRequest"
)

// Intent names handled by the skill.
const (
	IntentCreateApp = "CreateAppIntent"
	IntentHelp      = "AMAZON.HelpIntent"
	IntentCancel    = "AMAZON.CancelIntent"
	IntentStop      = "AMAZON.StopIntent"
	IntentFallback  = "AMAZON.FallbackIntent"
)

// Slot names carried by CreateAppIntent.
const (
	SlotAppName        = "appName"
	SlotAppDescription = "appDescription"
)

const (
	SpeechTypePlainText = "PlainText"
	StatusMatch         = "ER_SUCCESS_MATCH"
)

// RequestEnvelope is the per-turn document posted by the voice platform.
type RequestEnvelope struct {
	Version string   `json:"version"`
	Session *Session `json:"session,omitempty"`
	Request Request  `json:"request"`
}

type Session struct {
	New         bool                       `json:"new"`
	SessionID   string                     `json:"sessionId"`
	Application Application                `json:"application"`
	User        SessionUser                `json:"user"`
	Attributes  map[string]json.RawMessage `json:"attributes,omitempty"`
}

type Application struct {
	ApplicationID string `json:"applicationId"`
}

type SessionUser struct {
	UserID string `json:"userId"`
}

type Request struct {
	Type      string  `json:"type"`
	RequestID string  `json:"requestId"`
	Timestamp string  `json:"timestamp,omitempty"`
	Locale    string  `json:"locale,omitempty"`
	Reason    string  `json:"reason,omitempty"`
	Intent    *Intent `json:"intent,omitempty"`
}

type Intent struct {
	Name  string          `json:"name"`
	Slots map[string]Slot `json:"slots,omitempty"`
}

type Slot struct {
	Name        string       `json:"name"`
	Value       string       `json:"value,omitempty"`
	Resolutions *Resolutions `json:"resolutions,omitempty"`
}

type Resolutions struct {
	ResolutionsPerAuthority []Authority `json:"resolutionsPerAuthority"`
}

type Authority struct {
	Authority string            `json:"authority"`
	Status    AuthorityStatus   `json:"status"`
	Values    []ResolutionValue `json:"values"`
}

type AuthorityStatus struct {
	Code string `json:"code"`
}

type ResolutionValue struct {
	Value ResolvedEntity `json:"value"`
}

type ResolvedEntity struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// SessionID returns the envelope's session identifier or "" for session-less requests.
func (e *RequestEnvelope) SessionID() string {
	if e.Session == nil {
		return ""
	}
	return e.Session.SessionID
}

// IntentName returns the intent name of an IntentRequest, "" otherwise.
func (e *RequestEnvelope) IntentName() string {
	if e.Request.Type != RequestTypeIntent || e.Request.Intent == nil {
		return ""
	}
	return e.Request.Intent.Name
}

// Slot returns the named slot of the request's intent.
func (e *RequestEnvelope) Slot(name string) (Slot, bool) {
	if e.Request.Intent == nil {
		return Slot{}, false
	}
	slot, ok := e.Request.Intent.Slots[name]
	return slot, ok
}

// ResponseEnvelope is returned to the voice platform for every turn.
type ResponseEnvelope struct {
	Version           string         `json:"version"`
	SessionAttributes map[string]any `json:"sessionAttributes,omitempty"`
	Response          Response       `json:"response"`
}

type Response struct {
	OutputSpeech     *OutputSpeech `json:"outputSpeech,omitempty"`
	Reprompt         *Reprompt     `json:"reprompt,omitempty"`
	ShouldEndSession *bool         `json:"shouldEndSession,omitempty"`
}

type OutputSpeech struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type Reprompt struct {
	OutputSpeech OutputSpeech `json:"outputSpeech"`
}
