package schedule

import (
	"github.com/joshharrison/loomplan/internal/graph"
	"github.com/joshharrison/loomplan/internal/task"
)

// Span is the scheduled interval of one task.
type Span struct {
	TaskID string `json:"task_id"`
	Start  Date   `json:"start_date"`
	End    Date   `json:"end_date"`
}

// Summary aggregates the schedule at project level. The dates are nil when
// there are no tasks.
type Summary struct {
	TotalDuration int   `json:"total_duration"`
	ProjectStart  *Date `json:"project_start,omitempty"`
	ProjectEnd    *Date `json:"project_end,omitempty"`
}

// Result holds the annotated tasks alongside their spans, both in task list order.
type Result struct {
	Tasks   []task.Task `json:"tasks"`
	Spans   []Span      `json:"spans"`
	Summary Summary     `json:"summary"`
}

// Build assigns start and end dates to every task.
//
// The first pass lays tasks out back to back in list order from start. The
// second pass walks order (dependencies before dependents, normally
// cpm.TopoOrder) and restarts every task with dependencies on the first
// weekday after its latest dependency ends. Tasks missing from order are
// corrected afterwards in list order. Durations of zero or less fall back to
// the estimate for the task's complexity.
//
// The input tasks are not modified.
func Build(tasks []task.Task, g graph.DependencyGraph, order []string, start Date) Result {
	out := task.Clone(tasks)
	spans := make([]Span, len(out))
	if len(out) == 0 {
		return Result{Tasks: []task.Task{}, Spans: spans}
	}

	cursor := start
	for i, t := range out {
		end := AddWeekdays(cursor, durationOf(t))
		spans[i] = Span{TaskID: t.ID, Start: cursor, End: end}
		cursor = end.AddDays(1)
	}

	idx := task.Index(out)
	corrected := make(map[string]bool, len(out))
	correct := func(id string) {
		i, ok := idx[id]
		if !ok || corrected[id] {
			return
		}
		corrected[id] = true

		var latest Date
		found := false
		for _, dep := range g[id] {
			j, ok := idx[dep]
			if !ok {
				continue
			}
			if !found || spans[j].End.After(latest) {
				latest = spans[j].End
				found = true
			}
		}
		if !found {
			return
		}
		s := NextWeekday(latest.AddDays(1))
		spans[i].Start = s
		spans[i].End = AddWeekdays(s, durationOf(out[i]))
	}
	for _, id := range order {
		correct(id)
	}
	for _, t := range out {
		correct(t.ID)
	}

	projectStart, projectEnd := spans[0].Start, spans[0].End
	for i := range out {
		out[i].StartDate = spans[i].Start.String()
		out[i].EndDate = spans[i].End.String()
		if spans[i].Start.Before(projectStart) {
			projectStart = spans[i].Start
		}
		if spans[i].End.After(projectEnd) {
			projectEnd = spans[i].End
		}
	}

	return Result{
		Tasks: out,
		Spans: spans,
		Summary: Summary{
			TotalDuration: projectEnd.DaysSince(projectStart),
			ProjectStart:  &projectStart,
			ProjectEnd:    &projectEnd,
		},
	}
}

func durationOf(t task.Task) float64 {
	if task.ValidDuration(t.Duration) {
		return t.Duration
	}
	return task.Estimate(task.ParseComplexity(string(t.Complexity)), task.DefaultBuffer)
}
