package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/seu-repo/appinventor-skill/internal/domain"
)

// SimulatorConfig holds the simulator configuration
type SimulatorConfig struct {
	ServerURL     string
	ApplicationID string
	Locale        string
	UserID        string
	Timeout       time.Duration
}

// Simulator plays the voice platform: it posts request envelopes for one
// session and carries session attributes between turns.
type Simulator struct {
	config     *SimulatorConfig
	client     *fasthttp.Client
	log        *zap.Logger
	sessionID  string
	newSession bool
	attributes map[string]json.RawMessage
	turn       int
}

func NewSimulator(config *SimulatorConfig, log *zap.Logger) *Simulator {
	s := &Simulator{
		config: config,
		client: &fasthttp.Client{
			Name:         "appinventor-simulator",
			ReadTimeout:  config.Timeout,
			WriteTimeout: config.Timeout,
		},
		log: log,
	}
	s.Reset()
	return s
}

// Reset starts a new session.
func (s *Simulator) Reset() {
	s.sessionID = "amzn1.echo-api.session." + uuid.NewString()
	s.newSession = true
	s.attributes = nil
	s.turn = 0
}

func (s *Simulator) SessionID() string { return s.sessionID }

func (s *Simulator) Launch() (*domain.ResponseEnvelope, error) {
	return s.send(domain.Request{Type: domain.RequestTypeLaunch})
}

// CreateApp sends CreateAppIntent with whichever slots are non-empty.
func (s *Simulator) CreateApp(name, description string) (*domain.ResponseEnvelope, error) {
	slots := map[string]domain.Slot{}
	if name != "" {
		slots[domain.SlotAppName] = domain.Slot{Name: domain.SlotAppName, Value: name}
	}
	if description != "" {
		slots[domain.SlotAppDescription] = domain.Slot{Name: domain.SlotAppDescription, Value: description}
	}
	return s.Intent(domain.IntentCreateApp, slots)
}

func (s *Simulator) Intent(name string, slots map[string]domain.Slot) (*domain.ResponseEnvelope, error) {
	return s.send(domain.Request{
		Type:   domain.RequestTypeIntent,
		Intent: &domain.Intent{Name: name, Slots: slots},
	})
}

func (s *Simulator) EndSession(reason string) (*domain.ResponseEnvelope, error) {
	resp, err := s.send(domain.Request{Type: domain.RequestTypeSessionEnded, Reason: reason})
	s.Reset()
	return resp, err
}

func (s *Simulator) send(req domain.Request) (*domain.ResponseEnvelope, error) {
	s.turn++
	req.RequestID = fmt.Sprintf("amzn1.echo-api.request.%s", uuid.NewString())
	req.Timestamp = time.Now().UTC().Format(time.RFC3339)
	req.Locale = s.config.Locale

	env := domain.RequestEnvelope{
		Version: "1.0",
		Session: &domain.Session{
			New:         s.newSession,
			SessionID:   s.sessionID,
			Application: domain.Application{ApplicationID: s.config.ApplicationID},
			User:        domain.SessionUser{UserID: s.config.UserID},
			Attributes:  s.attributes,
		},
		Request: req,
	}

	body, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	httpReq := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(httpReq)
	httpResp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(httpResp)

	httpReq.SetRequestURI(s.config.ServerURL)
	httpReq.Header.SetMethod(fasthttp.MethodPost)
	httpReq.Header.SetContentType("application/json")
	httpReq.SetBody(body)

	s.log.Debug("Sending turn",
		zap.Int("turn", s.turn),
		zap.String("type", req.Type),
		zap.ByteString("envelope", body),
	)

	if err := s.client.DoTimeout(httpReq, httpResp, s.config.Timeout); err != nil {
		return nil, fmt.Errorf("post %s: %w", s.config.ServerURL, err)
	}
	if code := httpResp.StatusCode(); code != fasthttp.StatusOK {
		return nil, fmt.Errorf("server answered %d: %s", code, httpResp.Body())
	}

	var out domain.ResponseEnvelope
	if err := json.Unmarshal(httpResp.Body(), &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	s.newSession = false
	s.attributes = carryAttributes(out.SessionAttributes)
	if out.Response.ShouldEndSession != nil && *out.Response.ShouldEndSession {
		s.Reset()
	}
	return &out, nil
}

func carryAttributes(attrs map[string]any) map[string]json.RawMessage {
	if len(attrs) == 0 {
		return nil
	}
	out := make(map[string]json.RawMessage, len(attrs))
	for k, v := range attrs {
		raw, err := json.Marshal(v)
		if err != nil {
			continue
		}
		out[k] = raw
	}
	return out
}

// Say renders a response the way a device would speak it.
func Say(w io.Writer, resp *domain.ResponseEnvelope) {
	if resp.Response.OutputSpeech != nil {
		fmt.Fprintf(w, "Alexa: %s\n", resp.Response.OutputSpeech.Text)
	}
	if resp.Response.ShouldEndSession != nil && *resp.Response.ShouldEndSession {
		fmt.Fprintln(w, "(session ended)")
	}
}

// RunInteractive reads commands from in until EOF or quit.
func (s *Simulator) RunInteractive(in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, "> ")

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)

		var (
			resp *domain.ResponseEnvelope
			err  error
		)

		switch cmd {
		case "":
			fmt.Fprint(out, "> ")
			continue
		case "launch":
			resp, err = s.Launch()
		case "name":
			resp, err = s.CreateApp(arg, "")
		case "describe":
			resp, err = s.CreateApp("", arg)
		case "help":
			resp, err = s.Intent(domain.IntentHelp, nil)
		case "stop":
			resp, err = s.Intent(domain.IntentStop, nil)
		case "say":
			resp, err = s.Intent(domain.IntentFallback, nil)
		case "end":
			resp, err = s.EndSession("USER_INITIATED")
		case "new":
			s.Reset()
			fmt.Fprintf(out, "New session %s\n", s.sessionID)
		case "quit", "exit":
			return
		default:
			fmt.Fprintf(out, "Unknown command: %s\n", cmd)
		}

		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
		} else if resp != nil {
			Say(out, resp)
		}
		fmt.Fprint(out, "> ")
	}
}
