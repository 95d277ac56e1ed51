package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/joshharrison/loomplan/internal/ctxlog"
	"github.com/joshharrison/loomplan/internal/task"
)

// Resolve validates a suggested dependency mapping against tasks.
//
// The suggestion is normalised first: tasks missing from it get an empty
// dependency list, and references to ids outside the task list are dropped.
// If the suggestion is absent or the normalised graph contains a cycle, it is
// discarded wholesale and replaced by Fallback. Resolve never fails.
func Resolve(ctx context.Context, tasks []task.Task, s Suggestion) Resolution {
	logger := ctxlog.FromContext(ctx)

	if s == nil {
		d := Diagnostic{Kind: DiagNoSuggestion, Message: "no dependency suggestion offered, using category heuristic"}
		logger.Warn("dependency suggestion absent", "tasks", len(tasks))
		return fallbackResolution(tasks, d)
	}

	g, diags := Normalize(tasks, s)
	for _, d := range diags {
		logger.Debug("dependency suggestion normalised", "kind", d.Kind, "task", d.TaskID, "detail", d.Message)
	}

	if cycle := DetectCycle(tasks, g); cycle != nil {
		d := Diagnostic{
			Kind:    DiagCycle,
			Cycle:   cycle,
			Message: fmt.Sprintf("dependency cycle detected: %s", strings.Join(cycle, " -> ")),
		}
		logger.Warn("dependency cycle detected, using category heuristic", "cycle", cycle)
		res := fallbackResolution(tasks, d)
		res.Diagnostics = append(diags, res.Diagnostics...)
		return res
	}

	return Resolution{Graph: g, Diagnostics: diags}
}

// ResolveRaw parses raw suggestion JSON and resolves it. A parse failure is
// reported as a malformed suggestion and handled like any other invalid input.
func ResolveRaw(ctx context.Context, tasks []task.Task, raw []byte) Resolution {
	_, res := ParseAndResolve(ctx, tasks, raw)
	return res
}

// ParseAndResolve is ResolveRaw that also returns the parsed suggestion.
// The suggestion is nil when raw is blank or malformed.
func ParseAndResolve(ctx context.Context, tasks []task.Task, raw []byte) (Suggestion, Resolution) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, Resolve(ctx, tasks, nil)
	}
	s, err := ParseSuggestion(raw)
	if err != nil {
		ctxlog.FromContext(ctx).Warn("dependency suggestion malformed, using category heuristic", "error", err)
		return nil, fallbackResolution(tasks, Diagnostic{Kind: DiagMalformed, Message: err.Error()})
	}
	return s, Resolve(ctx, tasks, s)
}

func fallbackResolution(tasks []task.Task, d Diagnostic) Resolution {
	return Resolution{
		Graph:        Fallback(tasks),
		UsedFallback: true,
		Diagnostics:  []Diagnostic{d},
	}
}

// Normalize returns a graph whose key set is exactly the task ids. Dependency
// lists keep suggestion order with duplicates and unknown ids removed.
func Normalize(tasks []task.Task, s Suggestion) (DependencyGraph, []Diagnostic) {
	known := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		known[t.ID] = true
	}

	var diags []Diagnostic
	for id := range s {
		if !known[id] {
			diags = append(diags, Diagnostic{
				Kind:    DiagUnknownTask,
				TaskID:  id,
				Message: fmt.Sprintf("suggestion names unknown task %s", id),
			})
		}
	}
	// map iteration order is random; keep diagnostics stable
	sortDiagnostics(diags)

	g := make(DependencyGraph, len(tasks))
	for _, t := range tasks {
		deps := make([]string, 0, len(s[t.ID]))
		seen := make(map[string]bool, len(s[t.ID]))
		for _, dep := range s[t.ID] {
			if !known[dep] {
				diags = append(diags, Diagnostic{
					Kind:    DiagUnknownDependency,
					TaskID:  t.ID,
					Message: fmt.Sprintf("%s depends on unknown task %s", t.ID, dep),
				})
				continue
			}
			if seen[dep] {
				continue
			}
			seen[dep] = true
			deps = append(deps, dep)
		}
		g[t.ID] = deps
	}
	return g, diags
}

// DetectCycle returns the cycle path if one exists, or nil if the graph is acyclic.
// Uses DFS with coloring: white (unvisited), gray (in progress), black (done).
// Edges run from a task to its dependencies; traversal follows task list order.
func DetectCycle(tasks []task.Task, g DependencyGraph) []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make(map[string]int, len(g))
	parent := make(map[string]string, len(g))

	var dfs func(node string) []string
	dfs = func(node string) []string {
		color[node] = gray
		for _, next := range g[node] {
			if color[next] == gray {
				// Found a cycle, walk parents back to next
				cycle := []string{next, node}
				cur := node
				for cur != next {
					cur = parent[cur]
					cycle = append(cycle, cur)
				}
				for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
					cycle[i], cycle[j] = cycle[j], cycle[i]
				}
				return cycle
			}
			if color[next] == white {
				parent[next] = node
				if cycle := dfs(next); cycle != nil {
					return cycle
				}
			}
		}
		color[node] = black
		return nil
	}

	for _, t := range tasks {
		if color[t.ID] == white {
			if cycle := dfs(t.ID); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// Dependents returns the reverse adjacency: for each task, the tasks that
// depend on it, in task list order.
func Dependents(tasks []task.Task, g DependencyGraph) map[string][]string {
	rev := make(map[string][]string, len(tasks))
	for _, t := range tasks {
		for _, dep := range g[t.ID] {
			rev[dep] = append(rev[dep], t.ID)
		}
	}
	return rev
}

// Edge is a single prerequisite relationship: To depends on From.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Edges flattens g into prerequisite edges in task list order.
func Edges(tasks []task.Task, g DependencyGraph) []Edge {
	var edges []Edge
	for _, t := range tasks {
		for _, dep := range g[t.ID] {
			edges = append(edges, Edge{From: dep, To: t.ID})
		}
	}
	return edges
}

// Apply copies each task's dependency list from g onto tasks.
func Apply(tasks []task.Task, g DependencyGraph) {
	for i := range tasks {
		deps := g[tasks[i].ID]
		tasks[i].Dependencies = append(make([]string, 0, len(deps)), deps...)
	}
}
