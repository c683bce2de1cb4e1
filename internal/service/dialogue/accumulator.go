// Package dialogue holds the slot-collection dialogue that gathers an app name
// and description across turns.
package dialogue

import (
	"strings"

	"github.com/seu-repo/appinventor-skill/internal/domain"
)

// Action is what the skill does after a turn.
type Action int

// Actions, in the order the dialogue reaches them.
const (
	PromptForName Action = iota
	PromptForDescription
	ReportAndEnd
)

func (a Action) String() string {
	switch a {
	case PromptForName:
		return "prompt_for_name"
	case PromptForDescription:
		return "prompt_for_description"
	case ReportAndEnd:
		return "report_and_end"
	default:
		return "unknown"
	}
}

// Terminal reports whether the action ends the session.
func (a Action) Terminal() bool { return a == ReportAndEnd }

// Input carries the slot values spoken in one turn. Blank means not spoken.
type Input struct {
	Name        string
	Description string
}

// Report is the payload due to the reporting endpoint on ReportAndEnd.
type Report struct {
	Name        string
	Description string
}

type Decision struct {
	Action Action
	// Report is set only for ReportAndEnd.
	Report *Report
}

// Advance merges the turn's input into state and decides the next step.
// It has no side effects: sending the report is up to the caller.
func Advance(state domain.SessionState, in Input) (domain.SessionState, Decision) {
	if name := strings.TrimSpace(in.Name); name != "" {
		state.Name = name
	}
	if desc := strings.TrimSpace(in.Description); desc != "" {
		state.Description = domain.DescriptionPrefix + desc
	}

	switch {
	case state.HasName() && state.HasDescription():
		return state, Decision{
			Action: ReportAndEnd,
			Report: &Report{Name: state.Name, Description: state.Description},
		}
	case state.HasName():
		return state, Decision{Action: PromptForDescription}
	default:
		return state, Decision{Action: PromptForName}
	}
}
