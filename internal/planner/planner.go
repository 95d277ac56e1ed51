package planner

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/joshharrison/loomplan/internal/cpm"
	"github.com/joshharrison/loomplan/internal/ctxlog"
	"github.com/joshharrison/loomplan/internal/graph"
	"github.com/joshharrison/loomplan/internal/schedule"
	"github.com/joshharrison/loomplan/internal/task"
)

// planNamespace scopes plan IDs so equal inputs always hash to the same ID.
var planNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/joshharrison/loomplan/plan"))

// Generate runs one planning pass: estimate durations, resolve the suggested
// dependencies, layer and analyze the graph, then lay out the calendar.
//
// The input slice is not modified. Generate never fails; problems with the
// suggestion are reported in Plan.Diagnostics.
func Generate(ctx context.Context, tasks []task.Task, s graph.Suggestion, cfg Config) *Plan {
	cfg = withDefaults(cfg)
	logger := ctxlog.FromContext(ctx)

	id := planID(tasks, s, cfg)

	planned := task.Clone(tasks)
	if planned == nil {
		planned = []task.Task{}
	}
	task.EstimateAll(planned, cfg.Buffer)

	res := graph.Resolve(ctx, planned, s)
	graph.Apply(planned, res.Graph)

	analysis := cpm.Analyze(ctx, planned, res.Graph)
	sched := schedule.Build(planned, res.Graph, analysis.TopoOrder, cfg.Start)

	plan := &Plan{
		ID:           id,
		StartDate:    cfg.Start,
		Tasks:        sched.Tasks,
		Dependencies: res.Graph,
		Deps: TaskDeps{
			Predecessors: res.Graph,
			Successors:   successors(planned, res.Graph),
		},
		ParallelGroups: cpm.Groups(analysis.Waves),
		Waves:          waves(analysis.Waves, sched),
		CriticalPath:   analysis.CriticalPath,
		Summary:        sched.Summary,
		UsedFallback:   res.UsedFallback,
		Diagnostics:    res.Diagnostics,
	}
	plan.Stats = stats(plan)

	logger.Info("plan generated",
		"plan", plan.ID,
		"tasks", plan.Stats.TotalTasks,
		"waves", plan.Stats.TotalWaves,
		"critical_path", len(plan.CriticalPath),
		"total_duration", plan.Summary.TotalDuration,
		"fallback", plan.UsedFallback,
	)
	return plan
}

// GenerateAll plans every input independently and concurrently. Plans are
// returned in input order. The only error is cancellation of ctx.
func GenerateAll(ctx context.Context, inputs []Input, cfg Config) ([]*Plan, error) {
	cfg = withDefaults(cfg)
	plans := make([]*Plan, len(inputs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.MaxConcurrent)
	for i, in := range inputs {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return fmt.Errorf("plan input %d: %w", i, err)
			}
			plans[i] = Generate(gCtx, in.Tasks, in.Suggestion, cfg)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return plans, nil
}

func withDefaults(cfg Config) Config {
	if cfg.Start.IsZero() {
		cfg.Start = schedule.DateOf(time.Unix(0, 0).UTC())
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = task.DefaultBuffer
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 4
	}
	return cfg
}

func successors(tasks []task.Task, g graph.DependencyGraph) map[string][]string {
	rev := graph.Dependents(tasks, g)
	out := make(map[string][]string, len(tasks))
	for _, t := range tasks {
		out[t.ID] = append([]string{}, rev[t.ID]...)
	}
	return out
}

func waves(in []cpm.Wave, sched schedule.Result) []Wave {
	spans := make(map[string]schedule.Span, len(sched.Spans))
	for _, sp := range sched.Spans {
		spans[sp.TaskID] = sp
	}

	out := make([]Wave, len(in))
	for i, w := range in {
		pw := Wave{
			Index:      w.Index,
			TaskIDs:    append([]string{}, w.TaskIDs...),
			IsCritical: w.IsCritical,
			Forced:     w.Forced,
			DependsOn:  []int{},
		}
		// Each wave depends on all previous waves
		if w.Index > 0 {
			pw.DependsOn = []int{w.Index - 1}
		}
		for j, id := range w.TaskIDs {
			sp := spans[id]
			if j == 0 || sp.Start.Before(pw.Start) {
				pw.Start = sp.Start
			}
			if j == 0 || sp.End.After(pw.End) {
				pw.End = sp.End
			}
		}
		out[i] = pw
	}
	return out
}

func stats(p *Plan) Stats {
	st := Stats{
		TotalTasks:             len(p.Tasks),
		TotalWaves:             len(p.Waves),
		Categories:             map[string]int{},
		ComplexityDistribution: map[string]int{},
		CanParallel:            len(p.ParallelGroups) > 1,
		CriticalPathLength:     len(p.CriticalPath),
	}
	for _, t := range p.Tasks {
		cat := t.Category
		if cat == "" {
			cat = "other"
		}
		st.Categories[cat]++
		st.ComplexityDistribution[string(t.Complexity)]++
		st.DependenciesCount += len(t.Dependencies)
	}
	for _, g := range p.ParallelGroups {
		st.MaxParallel = max(st.MaxParallel, len(g))
	}
	return st
}

// planID derives a stable UUID from everything that influences the plan.
func planID(tasks []task.Task, s graph.Suggestion, cfg Config) string {
	var b strings.Builder
	b.WriteString(cfg.Start.String())
	b.WriteByte(0)
	b.WriteString(strconv.FormatFloat(cfg.Buffer, 'f', -1, 64))
	for _, t := range tasks {
		for _, f := range []string{t.ID, t.Name, t.Description, t.Category, string(t.Complexity),
			strconv.FormatFloat(t.Duration, 'f', -1, 64)} {
			b.WriteByte(0)
			b.WriteString(f)
		}
	}
	b.WriteString("\x01")
	if s == nil {
		b.WriteString("nil")
	}
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		b.WriteByte(0)
		b.WriteString(k)
		b.WriteByte(':')
		b.WriteString(strings.Join(s[k], ","))
	}
	return uuid.NewSHA1(planNamespace, []byte(b.String())).String()
}
