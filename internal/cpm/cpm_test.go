package cpm

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/joshharrison/loomplan/internal/ctxlog"
	"github.com/joshharrison/loomplan/internal/graph"
	"github.com/joshharrison/loomplan/internal/task"
)

func tasksFor(ids ...string) []task.Task {
	tasks := make([]task.Task, len(ids))
	for i, id := range ids {
		tasks[i] = task.Task{ID: id, Name: strings.ToUpper(id)}
	}
	return tasks
}

func TestAnalyze_LinearChain(t *testing.T) {
	// A -> B -> C -> D
	tasks := tasksFor("a", "b", "c", "d")
	g := graph.DependencyGraph{"a": {}, "b": {"a"}, "c": {"b"}, "d": {"c"}}

	result := Analyze(context.Background(), tasks, g)

	if diff := cmp.Diff([]string{"a", "b", "c", "d"}, result.CriticalPath); diff != "" {
		t.Errorf("critical path mismatch (-want +got):\n%s", diff)
	}
	// Should be 4 waves (no parallelism in a chain)
	if len(result.Waves) != 4 {
		t.Errorf("expected 4 waves, got %d", len(result.Waves))
	}
	for _, w := range result.Waves {
		if !w.IsCritical {
			t.Errorf("expected wave %d to be critical", w.Index)
		}
	}
	if result.Depths["d"] != 3 {
		t.Errorf("expected depth(d)=3, got %d", result.Depths["d"])
	}
}

func TestAnalyze_DiamondDAG(t *testing.T) {
	// A -> B -> D
	// A -> C -> D
	tasks := tasksFor("a", "b", "c", "d")
	g := graph.DependencyGraph{"a": {}, "b": {"a"}, "c": {"a"}, "d": {"b", "c"}}

	result := Analyze(context.Background(), tasks, g)

	want := [][]string{{"a"}, {"b", "c"}, {"d"}}
	if diff := cmp.Diff(want, Groups(result.Waves)); diff != "" {
		t.Errorf("groups mismatch (-want +got):\n%s", diff)
	}
	// b and c tie at depth 1; b is listed first
	if diff := cmp.Diff([]string{"a", "b", "d"}, result.CriticalPath); diff != "" {
		t.Errorf("critical path mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "b", "c", "d"}, result.TopoOrder); diff != "" {
		t.Errorf("topo order mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyze_WideDAG(t *testing.T) {
	//     A
	//   / | \
	//  B  C  D
	//   \ | /
	//     E
	tasks := tasksFor("a", "b", "c", "d", "e")
	g := graph.DependencyGraph{"a": {}, "b": {"a"}, "c": {"a"}, "d": {"a"}, "e": {"b", "c", "d"}}

	result := Analyze(context.Background(), tasks, g)

	if len(result.Waves) != 3 {
		t.Errorf("expected 3 waves, got %d", len(result.Waves))
	}
	if len(result.Waves) >= 2 && len(result.Waves[1].TaskIDs) != 3 {
		t.Errorf("expected 3 tasks in wave 1, got %d", len(result.Waves[1].TaskIDs))
	}
}

func TestAnalyze_ParallelIndependent(t *testing.T) {
	tasks := tasksFor("a", "b", "c")
	g := graph.DependencyGraph{"a": {}, "b": {}, "c": {}}

	result := Analyze(context.Background(), tasks, g)

	if len(result.Waves) != 1 {
		t.Fatalf("expected 1 wave, got %d", len(result.Waves))
	}
	if len(result.Waves[0].TaskIDs) != 3 {
		t.Errorf("expected 3 tasks in wave 0, got %d", len(result.Waves[0].TaskIDs))
	}
	// all depths are 0: the first task ends the path
	if diff := cmp.Diff([]string{"a"}, result.CriticalPath); diff != "" {
		t.Errorf("critical path mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyze_SingleTask(t *testing.T) {
	tasks := tasksFor("solo")
	result := Analyze(context.Background(), tasks, graph.DependencyGraph{"solo": {}})

	if len(result.CriticalPath) != 1 || result.CriticalPath[0] != "solo" {
		t.Errorf("expected critical path [solo], got %v", result.CriticalPath)
	}
}

func TestAnalyze_Empty(t *testing.T) {
	result := Analyze(context.Background(), nil, graph.DependencyGraph{})
	if len(result.Waves) != 0 {
		t.Errorf("expected no waves, got %v", result.Waves)
	}
	if result.CriticalPath == nil || len(result.CriticalPath) != 0 {
		t.Errorf("expected empty non-nil critical path, got %#v", result.CriticalPath)
	}
	if result.Forced {
		t.Error("empty input must not be flagged as forced")
	}
}

func TestLayers_PreservesListOrder(t *testing.T) {
	tasks := tasksFor("z", "m", "a", "q")
	g := graph.DependencyGraph{"z": {"q"}, "m": {}, "a": {"q"}, "q": {}}

	want := [][]string{{"m", "q"}, {"z", "a"}}
	if diff := cmp.Diff(want, Groups(Layers(context.Background(), tasks, g))); diff != "" {
		t.Errorf("groups mismatch (-want +got):\n%s", diff)
	}
}

func TestLayers_PartitionAndOrdering(t *testing.T) {
	tasks := tasksFor("t1", "t2", "t3", "t4", "t5", "t6")
	g := graph.DependencyGraph{
		"t1": {},
		"t2": {"t1"},
		"t3": {"t1"},
		"t4": {"t2", "t3"},
		"t5": {},
		"t6": {"t5", "t4"},
	}

	waves := Layers(context.Background(), tasks, g)

	layerOf := map[string]int{}
	for _, w := range waves {
		for _, id := range w.TaskIDs {
			if _, dup := layerOf[id]; dup {
				t.Errorf("task %s placed twice", id)
			}
			layerOf[id] = w.Index
		}
	}
	if len(layerOf) != len(tasks) {
		t.Errorf("expected %d placed tasks, got %d", len(tasks), len(layerOf))
	}
	for id, deps := range g {
		for _, dep := range deps {
			if layerOf[dep] >= layerOf[id] {
				t.Errorf("dependency %s of %s not in an earlier layer (%d >= %d)", dep, id, layerOf[dep], layerOf[id])
			}
		}
	}
}

func TestLayers_ForcedOnCycle(t *testing.T) {
	var buf bytes.Buffer
	ctx := ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(&buf, nil)))

	tasks := tasksFor("a", "b", "c")
	// b and c depend on each other; this never comes out of graph.Resolve
	g := graph.DependencyGraph{"a": {}, "b": {"c"}, "c": {"b"}}

	waves := Layers(ctx, tasks, g)

	want := [][]string{{"a"}, {"b", "c"}}
	if diff := cmp.Diff(want, Groups(waves)); diff != "" {
		t.Errorf("groups mismatch (-want +got):\n%s", diff)
	}
	if !waves[1].Forced {
		t.Error("expected final wave to be flagged as forced")
	}
	if !strings.Contains(buf.String(), "level=ERROR") {
		t.Errorf("expected the forced layer to be logged at error level, got %q", buf.String())
	}

	result := Analyze(ctx, tasks, g)
	if !result.Forced {
		t.Error("expected result to be flagged as forced")
	}
}

func TestCriticalPath_DeepestDependencyWins(t *testing.T) {
	// e depends on a shallow root and a deep chain; the walk must follow the chain.
	tasks := tasksFor("r", "a", "b", "c", "e")
	g := graph.DependencyGraph{
		"r": {},
		"a": {},
		"b": {"a"},
		"c": {"b"},
		"e": {"r", "c"},
	}

	if diff := cmp.Diff([]string{"a", "b", "c", "e"}, CriticalPath(tasks, g)); diff != "" {
		t.Errorf("critical path mismatch (-want +got):\n%s", diff)
	}
}

func TestCriticalPath_FirstDeepestTaskEndsPath(t *testing.T) {
	tasks := tasksFor("a", "x", "b", "y")
	g := graph.DependencyGraph{"a": {}, "x": {"a"}, "b": {}, "y": {"b"}}

	if diff := cmp.Diff([]string{"a", "x"}, CriticalPath(tasks, g)); diff != "" {
		t.Errorf("critical path mismatch (-want +got):\n%s", diff)
	}
}

func TestCriticalPath_EmptyID(t *testing.T) {
	tasks := tasksFor("", "b")
	g := graph.DependencyGraph{"": {}, "b": {""}}

	if diff := cmp.Diff([]string{"", "b"}, CriticalPath(tasks, g)); diff != "" {
		t.Errorf("critical path mismatch (-want +got):\n%s", diff)
	}

	solo := tasksFor("")
	if diff := cmp.Diff([]string{""}, CriticalPath(solo, graph.DependencyGraph{"": {}})); diff != "" {
		t.Errorf("critical path mismatch (-want +got):\n%s", diff)
	}
}

func TestDepths_CycleDoesNotRecurseForever(t *testing.T) {
	tasks := tasksFor("a", "b")
	g := graph.DependencyGraph{"a": {"b"}, "b": {"a"}}

	depths := Depths(tasks, g)
	if len(depths) != 2 {
		t.Errorf("expected a depth for both tasks, got %v", depths)
	}
	if path := CriticalPath(tasks, g); len(path) == 0 || len(path) > 2 {
		t.Errorf("expected a bounded path, got %v", path)
	}
}
