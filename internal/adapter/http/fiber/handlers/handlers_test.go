package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/appinventor-skill/internal/domain"
	"github.com/seu-repo/appinventor-skill/internal/mocks"
	"github.com/seu-repo/appinventor-skill/internal/service/report"
)

type stubTurner struct {
	calls int
	last  *domain.RequestEnvelope
}

func (s *stubTurner) Handle(ctx context.Context, env *domain.RequestEnvelope) *domain.ResponseEnvelope {
	s.calls++
	s.last = env
	return &domain.ResponseEnvelope{
		Version: "1.0",
		Response: domain.Response{
			OutputSpeech: &domain.OutputSpeech{Type: domain.SpeechTypePlainText, Text: "hello"},
		},
	}
}

func skillApp(turner *stubTurner, applicationID string) *fiber.App {
	app := fiber.New()
	app.Post("/skill", NewSkillHandler(turner, applicationID, zap.NewNop()).Handle)
	return app
}

func postJSON(t *testing.T, app *fiber.App, body []byte) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/skill", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	return resp
}

func launchBody(applicationID string) []byte {
	body, _ := json.Marshal(domain.RequestEnvelope{
		Version: "1.0",
		Session: &domain.Session{
			New:         true,
			SessionID:   "s-1",
			Application: domain.Application{ApplicationID: applicationID},
		},
		Request: domain.Request{Type: domain.RequestTypeLaunch, Locale: "en-US"},
	})
	return body
}

func TestSkillHandler_Success(t *testing.T) {
	turner := &stubTurner{}
	app := skillApp(turner, "")

	resp := postJSON(t, app, launchBody("amzn1.ask.skill.any"))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	var out domain.ResponseEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if out.Response.OutputSpeech == nil || out.Response.OutputSpeech.Text != "hello" {
		t.Errorf("Unexpected response %+v", out)
	}
	if turner.last.SessionID() != "s-1" {
		t.Errorf("Expected session 's-1', got '%s'", turner.last.SessionID())
	}
}

func TestSkillHandler_MalformedJSON(t *testing.T) {
	turner := &stubTurner{}
	app := skillApp(turner, "")

	resp := postJSON(t, app, []byte(`{"request": `))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.StatusCode)
	}
	if turner.calls != 0 {
		t.Error("Expected skill not to be called")
	}
}

func TestSkillHandler_MissingRequestType(t *testing.T) {
	app := skillApp(&stubTurner{}, "")

	resp := postJSON(t, app, []byte(`{"version":"1.0","request":{}}`))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.StatusCode)
	}
}

func TestSkillHandler_ApplicationCheck(t *testing.T) {
	turner := &stubTurner{}
	app := skillApp(turner, "amzn1.ask.skill.mine")

	t.Run("Rejected", func(t *testing.T) {
		resp := postJSON(t, app, launchBody("amzn1.ask.skill.other"))
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusForbidden {
			t.Errorf("Expected status 403, got %d", resp.StatusCode)
		}
	})

	t.Run("Accepted", func(t *testing.T) {
		resp := postJSON(t, app, launchBody("amzn1.ask.skill.mine"))
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("Expected status 200, got %d", resp.StatusCode)
		}
	})

	if turner.calls != 1 {
		t.Errorf("Expected 1 skill call, got %d", turner.calls)
	}
}

func TestReportHandler_List(t *testing.T) {
	repo := &mocks.MockReportRepository{}
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, name := range []string{"First", "Second", "Third"} {
		repo.Saved = append(repo.Saved, domain.AppReport{
			ID:        name,
			Name:      name,
			Status:    domain.ReportStatusSent,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	svc := report.NewService(&mocks.MockReporter{}, repo, nil, "appinventor.reports", time.Second, zap.NewNop())

	app := fiber.New()
	app.Get("/api/v1/reports", NewReportHandler(svc, zap.NewNop()).List)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports?limit=2", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	var out struct {
		Reports []domain.AppReport `json:"reports"`
		Count   int                `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if out.Count != 2 || out.Reports[0].Name != "Third" {
		t.Errorf("Unexpected reports %+v", out)
	}
}

func TestReportHandler_NoRepository(t *testing.T) {
	svc := report.NewService(&mocks.MockReporter{}, nil, nil, "appinventor.reports", time.Second, zap.NewNop())
	app := fiber.New()
	app.Get("/api/v1/reports", NewReportHandler(svc, zap.NewNop()).List)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/reports", nil))
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", resp.StatusCode)
	}
}
