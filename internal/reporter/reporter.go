package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/joshharrison/loomplan/internal/graph"
	"github.com/joshharrison/loomplan/internal/planner"
	"github.com/joshharrison/loomplan/internal/task"
	"github.com/joshharrison/loomplan/internal/ui"
)

// Reporter renders a plan for terminals and machines.
type Reporter struct {
	Plan *planner.Plan

	tasks    map[string]task.Task
	critical map[string]bool
}

// New creates a new Reporter.
func New(plan *planner.Plan) *Reporter {
	r := &Reporter{
		Plan:     plan,
		tasks:    make(map[string]task.Task, len(plan.Tasks)),
		critical: make(map[string]bool, len(plan.CriticalPath)),
	}
	for _, t := range plan.Tasks {
		r.tasks[t.ID] = t
	}
	for _, id := range plan.CriticalPath {
		r.critical[id] = true
	}
	return r
}

// PrintPlan writes a terminal-friendly plan: header, waves with dated tasks,
// then any resolver diagnostics.
func (r *Reporter) PrintPlan(w io.Writer) {
	p := r.Plan

	fmt.Fprintf(w, "🎯 %s\n", ui.BoldCyan("Project Plan"))
	fmt.Fprintln(w, ui.Cyan("════════════"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Plan:      %s\n", ui.Dim(p.ID))
	fmt.Fprintf(w, "Tasks:     %s (%s)\n", ui.Bold(p.Stats.TotalTasks), formatCounts(p.Stats.Categories))
	if p.Summary.ProjectStart != nil {
		fmt.Fprintf(w, "Schedule:  %s → %s (%s calendar days)\n",
			ui.Bold(p.Summary.ProjectStart), ui.Bold(p.Summary.ProjectEnd), ui.Bold(p.Summary.TotalDuration))
	}
	if len(p.CriticalPath) > 0 {
		fmt.Fprintf(w, "⚡ Critical path: %s (%d tasks)\n",
			ui.BoldYellow(strings.Join(p.CriticalPath, " → ")), len(p.CriticalPath))
	}
	fmt.Fprintf(w, "Waves:     %s (%d tasks in widest wave)\n", ui.Bold(p.Stats.TotalWaves), p.Stats.MaxParallel)
	source := ui.Green("suggestion")
	if p.UsedFallback {
		source = ui.Yellow("category heuristic")
	}
	fmt.Fprintf(w, "Deps:      %s from %s\n", ui.Bold(p.Stats.DependenciesCount), source)
	fmt.Fprintln(w)

	for _, wave := range p.Waves {
		depStr := ui.Dim("independent")
		if wave.Index > 0 {
			depStr = ui.Dim(fmt.Sprintf("after wave %d", wave.Index))
		}
		fmt.Fprintf(w, "🌊 %s %d (%d tasks, %s, %s → %s):\n",
			ui.BoldWhite("Wave"), wave.Index+1, len(wave.TaskIDs), depStr, wave.Start, wave.End)
		if wave.Forced {
			fmt.Fprintf(w, "  %s\n", ui.BoldRed("forced: dependencies could not be ordered"))
		}
		for _, id := range wave.TaskIDs {
			r.printTask(w, r.tasks[id])
		}
		fmt.Fprintln(w)
	}

	r.PrintDiagnostics(w)
}

func (r *Reporter) printTask(w io.Writer, t task.Task) {
	name := t.Name
	if len(name) > 40 {
		name = name[:37] + "..."
	}
	fmt.Fprintf(w, "  %s %s %-40s %s %s → %s %s\n",
		ui.CriticalMark(r.critical[t.ID]),
		ui.TaskID(fmt.Sprintf("%-8s", t.ID)),
		name,
		ui.Phase(graph.ClassifyPhase(t).String()),
		t.StartDate, t.EndDate,
		ui.Dim(fmt.Sprintf("[%.1fd %s]", t.Duration, t.Complexity)))
	if len(t.Dependencies) > 0 {
		fmt.Fprintf(w, "      %s %s\n", ui.Dim("after"), strings.Join(t.Dependencies, ", "))
	}
}

// PrintDiagnostics lists what the resolver repaired or discarded.
func (r *Reporter) PrintDiagnostics(w io.Writer) {
	if len(r.Plan.Diagnostics) == 0 {
		return
	}
	fmt.Fprintf(w, "%s\n", ui.BoldYellow("Diagnostics:"))
	for _, d := range r.Plan.Diagnostics {
		fmt.Fprintf(w, "  %s %s %s\n", ui.DiagnosticIcon(string(d.Kind)), ui.Bold(string(d.Kind)), d.Message)
	}
	fmt.Fprintln(w)
}

// PrintASCII writes the dependency graph wave by wave, with an arrow to each
// task that waits on the current one.
func (r *Reporter) PrintASCII(w io.Writer) {
	fmt.Fprintf(w, "🔗 %s\n", ui.BoldCyan("Task Dependency Graph"))
	fmt.Fprintln(w, ui.Cyan("═══════════════════════"))
	fmt.Fprintln(w)

	for _, wave := range r.Plan.Waves {
		fmt.Fprintf(w, "%s 🌊 Wave %d %s\n", ui.Cyan("──"), wave.Index+1, ui.Cyan("──────────────────────────────"))
		for _, id := range wave.TaskIDs {
			fmt.Fprintf(w, "  %s [%s] %s\n", ui.CriticalMark(r.critical[id]), ui.TaskID(id), r.tasks[id].Name)

			// Show edges
			for _, next := range r.Plan.Deps.Successors[id] {
				fmt.Fprintf(w, "      %s %s\n", ui.Dim("└──→"), ui.Magenta(next))
			}
		}
		fmt.Fprintln(w)
	}
}

// PrintDOT writes the graph in Graphviz DOT format. Critical tasks and the
// edges between consecutive critical-path tasks are drawn in red.
func (r *Reporter) PrintDOT(w io.Writer) {
	fmt.Fprintln(w, "digraph loomplan {")
	fmt.Fprintln(w, "  rankdir=LR;")
	fmt.Fprintln(w, "  node [shape=box, style=rounded];")
	fmt.Fprintln(w)

	for _, t := range r.Plan.Tasks {
		label := fmt.Sprintf("%s\\n%s\\n%s..%s", t.ID, dotEscape(t.Name), t.StartDate, t.EndDate)
		attrs := fmt.Sprintf(`label="%s"`, label)
		if r.critical[t.ID] {
			attrs += `, style="rounded,bold", color=red`
		}
		fmt.Fprintf(w, "  %q [%s];\n", t.ID, attrs)
	}

	fmt.Fprintln(w)

	onPath := make(map[graph.Edge]bool, len(r.Plan.CriticalPath))
	for i := 1; i < len(r.Plan.CriticalPath); i++ {
		onPath[graph.Edge{From: r.Plan.CriticalPath[i-1], To: r.Plan.CriticalPath[i]}] = true
	}
	for _, e := range graph.Edges(r.Plan.Tasks, r.Plan.Dependencies) {
		style := ""
		if onPath[e] {
			style = ` [color=red, penwidth=2]`
		}
		fmt.Fprintf(w, "  %q -> %q%s;\n", e.From, e.To, style)
	}

	fmt.Fprintln(w, "}")
}

// JSON returns the machine-readable plan.
func (r *Reporter) JSON() ([]byte, error) {
	return json.MarshalIndent(r.Plan, "", "  ")
}

// PrintResolution explains what the resolver made of a raw suggestion, for
// the infer-deps command.
func PrintResolution(w io.Writer, tasks []task.Task, s graph.Suggestion, res graph.Resolution) {
	offered := 0
	for _, deps := range s {
		offered += len(deps)
	}
	kept := 0
	for _, deps := range res.Graph {
		kept += len(deps)
	}

	if res.UsedFallback {
		fmt.Fprintf(w, "\n🔗 %s dependencies from the %s (%d suggested edges discarded):\n\n",
			ui.Bold(kept), ui.Yellow("category heuristic"), offered)
	} else {
		fmt.Fprintf(w, "\n🔗 Accepted %s dependencies (%d suggested):\n\n", ui.Bold(kept), offered)
	}
	for _, e := range graph.Edges(tasks, res.Graph) {
		fmt.Fprintf(w, "  %s %s after %s\n", ui.Cyan("→"), ui.TaskID(e.To), ui.TaskID(e.From))
	}
	fmt.Fprintln(w)
	for _, d := range res.Diagnostics {
		fmt.Fprintf(w, "  %s %s %s\n", ui.DiagnosticIcon(string(d.Kind)), ui.Bold(string(d.Kind)), d.Message)
	}
}

// formatCounts renders a count map in a stable order: largest first, then by name.
func formatCounts(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		if counts[a] != counts[b] {
			return counts[b] - counts[a]
		}
		return strings.Compare(a, b)
	})
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%d %s", counts[k], k)
	}
	return strings.Join(parts, ", ")
}

func dotEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
