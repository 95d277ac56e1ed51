package graph

import (
	"strings"

	"github.com/joshharrison/loomplan/internal/task"
)

// setupMarkers flag a task as setup work when they appear in its name or category.
var setupMarkers = []string{"setup", "initial"}

// categoryPhases maps a normalised category onto its phase.
var categoryPhases = map[string]Phase{
	"setup":         PhaseSetup,
	"development":   PhaseDevelopment,
	"testing":       PhaseTesting,
	"deployment":    PhaseDeployment,
	"documentation": PhaseDocumentation,
}

// ClassifyPhase assigns a task to exactly one phase. Setup markers in the
// name or category win over the category itself; categories outside the known
// set are PhaseOther.
func ClassifyPhase(t task.Task) Phase {
	name := strings.ToLower(t.Name)
	category := strings.ToLower(strings.TrimSpace(t.Category))
	for _, m := range setupMarkers {
		if strings.Contains(name, m) || strings.Contains(category, m) {
			return PhaseSetup
		}
	}
	if p, ok := categoryPhases[category]; ok {
		return p
	}
	return PhaseOther
}

// Fallback synthesizes a dependency graph from task phases:
//
//	setup         -> nothing
//	development   -> first setup task
//	testing       -> first two development tasks
//	deployment    -> every testing task
//	documentation -> first setup task
//	other         -> nothing
//
// Phases only ever point at earlier phases, so the result is acyclic.
func Fallback(tasks []task.Task) DependencyGraph {
	byPhase := make(map[Phase][]string)
	for _, t := range tasks {
		p := ClassifyPhase(t)
		byPhase[p] = append(byPhase[p], t.ID)
	}

	setup := firstN(byPhase[PhaseSetup], 1)
	dev := firstN(byPhase[PhaseDevelopment], 2)
	tests := byPhase[PhaseTesting]

	g := make(DependencyGraph, len(tasks))
	for _, t := range tasks {
		var deps []string
		switch ClassifyPhase(t) {
		case PhaseDevelopment, PhaseDocumentation:
			deps = setup
		case PhaseTesting:
			deps = dev
		case PhaseDeployment:
			deps = tests
		}
		g[t.ID] = append([]string{}, deps...)
	}
	return g
}

func firstN(ids []string, n int) []string {
	if len(ids) > n {
		return ids[:n]
	}
	return ids
}
