package dialogue

import (
	"testing"

	"github.com/seu-repo/appinventor-skill/internal/domain"
)

func TestAdvance_FreshSessionPromptsForName(t *testing.T) {
	state, decision := Advance(domain.SessionState{}, Input{})

	if decision.Action != PromptForName {
		t.Fatalf("expected %s, got %s", PromptForName, decision.Action)
	}
	if state.HasName() || state.HasDescription() {
		t.Errorf("expected empty state, got %+v", state)
	}
	if decision.Report != nil {
		t.Error("expected no report")
	}
}

func TestAdvance_NameOnlyPromptsForDescription(t *testing.T) {
	state, decision := Advance(domain.SessionState{}, Input{Name: "Weather Tracker"})

	if decision.Action != PromptForDescription {
		t.Fatalf("expected %s, got %s", PromptForDescription, decision.Action)
	}
	if state.Name != "Weather Tracker" {
		t.Errorf("expected name 'Weather Tracker', got '%s'", state.Name)
	}
	if state.HasDescription() {
		t.Errorf("expected no description, got '%s'", state.Description)
	}
}

func TestAdvance_DescriptionWithoutNameStillNeedsName(t *testing.T) {
	state, decision := Advance(domain.SessionState{}, Input{Description: "an app that shows the weather"})

	if decision.Action != PromptForName {
		t.Fatalf("expected %s, got %s", PromptForName, decision.Action)
	}
	if decision.Report != nil {
		t.Error("description alone must not complete the dialogue")
	}
	if state.HasName() {
		t.Errorf("expected no name, got '%s'", state.Name)
	}
}

func TestAdvance_NameThenDescriptionReports(t *testing.T) {
	state, first := Advance(domain.SessionState{}, Input{Name: "Weather Tracker"})
	if first.Action != PromptForDescription {
		t.Fatalf("expected %s, got %s", PromptForDescription, first.Action)
	}

	state, second := Advance(state, Input{Description: "an app that shows the weather"})

	if second.Action != ReportAndEnd {
		t.Fatalf("expected %s, got %s", ReportAndEnd, second.Action)
	}
	if !second.Action.Terminal() {
		t.Error("expected terminal action")
	}
	if second.Report == nil {
		t.Fatal("expected report")
	}
	if second.Report.Name != "Weather Tracker" {
		t.Errorf("expected report name 'Weather Tracker', got '%s'", second.Report.Name)
	}
	want := "create an app with an app that shows the weather"
	if second.Report.Description != want {
		t.Errorf("expected description '%s', got '%s'", want, second.Report.Description)
	}
	if state.Description != want {
		t.Errorf("expected state description '%s', got '%s'", want, state.Description)
	}
}

func TestAdvance_BothInOneTurnReports(t *testing.T) {
	_, decision := Advance(domain.SessionState{}, Input{Name: "Notes", Description: "a notepad"})

	if decision.Action != ReportAndEnd {
		t.Fatalf("expected %s, got %s", ReportAndEnd, decision.Action)
	}
}

func TestAdvance_RenameAfterCompletionReportsAgain(t *testing.T) {
	state := domain.SessionState{
		Name:        "Weather Tracker",
		Description: "create an app with an app that shows the weather",
	}

	state, decision := Advance(state, Input{Name: "Sky Watch"})

	if decision.Action != ReportAndEnd {
		t.Fatalf("expected %s, got %s", ReportAndEnd, decision.Action)
	}
	if decision.Report.Name != "Sky Watch" {
		t.Errorf("expected new name, got '%s'", decision.Report.Name)
	}
	if decision.Report.Description != state.Description {
		t.Errorf("expected old description to be kept, got '%s'", decision.Report.Description)
	}
}

func TestAdvance_EmptyInputIsIdempotent(t *testing.T) {
	states := []domain.SessionState{
		{},
		{Name: "Weather Tracker"},
		{Name: "Weather Tracker", Description: "create an app with maps"},
		{Description: "create an app with maps"},
	}

	for _, start := range states {
		s1, d1 := Advance(start, Input{})
		s2, d2 := Advance(s1, Input{})

		if s1 != start || s2 != s1 {
			t.Errorf("state changed on empty input: %+v -> %+v -> %+v", start, s1, s2)
		}
		if d1.Action != d2.Action {
			t.Errorf("action changed on empty input: %s -> %s", d1.Action, d2.Action)
		}
	}
}

func TestAdvance_BlankValuesAreIgnored(t *testing.T) {
	state, decision := Advance(domain.SessionState{Name: "Weather Tracker"}, Input{Name: "   ", Description: "\t"})

	if state.Name != "Weather Tracker" {
		t.Errorf("blank name overwrote state: '%s'", state.Name)
	}
	if decision.Action != PromptForDescription {
		t.Errorf("expected %s, got %s", PromptForDescription, decision.Action)
	}
}

func TestAdvance_ReportedFlagIsCarried(t *testing.T) {
	state, _ := Advance(domain.SessionState{Name: "A", Description: "create an app with b", Reported: true}, Input{})

	if !state.Reported {
		t.Error("expected reported flag to be carried through")
	}
}
