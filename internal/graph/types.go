package graph

import "fmt"

// DependencyGraph maps every task id to the ids it depends on.
// A finalized graph is acyclic and has an entry (possibly empty) for every task.
type DependencyGraph map[string][]string

// Suggestion is an untrusted candidate dependency mapping, typically produced
// by an LLM. A nil Suggestion means none was offered.
type Suggestion map[string][]string

// DiagnosticKind classifies a recoverable condition found while resolving.
type DiagnosticKind string

const (
	DiagNoSuggestion      DiagnosticKind = "no_suggestion"
	DiagMalformed         DiagnosticKind = "malformed_suggestion"
	DiagUnknownTask       DiagnosticKind = "unknown_task"
	DiagUnknownDependency DiagnosticKind = "unknown_dependency"
	DiagCycle             DiagnosticKind = "cycle"
)

// Diagnostic describes something the resolver repaired or discarded.
// None of these are errors: the resolver always produces a usable graph.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	TaskID  string         `json:"task_id,omitempty"`
	Cycle   []string       `json:"cycle,omitempty"`
	Message string         `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}

// Resolution is the outcome of validating a suggestion against a task list.
type Resolution struct {
	Graph        DependencyGraph `json:"graph"`
	UsedFallback bool            `json:"used_fallback"`
	Diagnostics  []Diagnostic    `json:"diagnostics,omitempty"`
}

// Phase is the coarse lifecycle bucket used by the fallback heuristic.
type Phase int

const (
	PhaseOther Phase = iota
	PhaseSetup
	PhaseDevelopment
	PhaseTesting
	PhaseDeployment
	PhaseDocumentation
)

func (p Phase) String() string {
	switch p {
	case PhaseSetup:
		return "setup"
	case PhaseDevelopment:
		return "development"
	case PhaseTesting:
		return "testing"
	case PhaseDeployment:
		return "deployment"
	case PhaseDocumentation:
		return "documentation"
	default:
		return "other"
	}
}
