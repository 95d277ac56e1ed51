package graph

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/joshharrison/loomplan/internal/task"
)

func tasksFor(ids ...string) []task.Task {
	tasks := make([]task.Task, len(ids))
	for i, id := range ids {
		tasks[i] = task.Task{ID: id, Name: "Task " + id, Category: "development"}
	}
	return tasks
}

func projectTasks() []task.Task {
	return []task.Task{
		{ID: "task_1", Name: "Project Setup", Category: "development"},
		{ID: "task_2", Name: "Build API", Category: "development"},
		{ID: "task_3", Name: "Build UI", Category: "development"},
		{ID: "task_4", Name: "Integration tests", Category: "testing"},
	}
}

func TestResolve_AcyclicSuggestionUnchanged(t *testing.T) {
	// A -> B -> D
	// A -> C -> D
	tasks := tasksFor("a", "b", "c", "d")
	s := Suggestion{
		"a": {},
		"b": {"a"},
		"c": {"a"},
		"d": {"b", "c"},
	}

	res := Resolve(context.Background(), tasks, s)
	if res.UsedFallback {
		t.Fatalf("expected suggestion to be kept, got fallback: %v", res.Diagnostics)
	}
	want := DependencyGraph{"a": {}, "b": {"a"}, "c": {"a"}, "d": {"b", "c"}}
	if diff := cmp.Diff(want, res.Graph); diff != "" {
		t.Errorf("graph mismatch (-want +got):\n%s", diff)
	}
	if len(res.Diagnostics) != 0 {
		t.Errorf("expected no diagnostics, got %v", res.Diagnostics)
	}
}

func TestResolve_NormalizesMissingAndUnknown(t *testing.T) {
	tasks := tasksFor("a", "b", "c")
	s := Suggestion{
		"b":     {"a", "zzz", "a"},
		"ghost": {"a"},
	}

	res := Resolve(context.Background(), tasks, s)
	if res.UsedFallback {
		t.Fatalf("expected no fallback, got %v", res.Diagnostics)
	}
	want := DependencyGraph{"a": {}, "b": {"a"}, "c": {}}
	if diff := cmp.Diff(want, res.Graph); diff != "" {
		t.Errorf("graph mismatch (-want +got):\n%s", diff)
	}

	kinds := map[DiagnosticKind]int{}
	for _, d := range res.Diagnostics {
		kinds[d.Kind]++
	}
	if kinds[DiagUnknownTask] != 1 {
		t.Errorf("expected 1 unknown_task diagnostic, got %d", kinds[DiagUnknownTask])
	}
	if kinds[DiagUnknownDependency] != 1 {
		t.Errorf("expected 1 unknown_dependency diagnostic, got %d", kinds[DiagUnknownDependency])
	}
}

func TestResolve_CycleUsesFallback(t *testing.T) {
	tasks := projectTasks()
	s := Suggestion{
		"task_1": {"task_4"},
		"task_2": {"task_1"},
		"task_3": {"task_1"},
		"task_4": {"task_2", "task_3"},
	}

	res := Resolve(context.Background(), tasks, s)
	if !res.UsedFallback {
		t.Fatal("expected fallback for cyclic suggestion")
	}
	want := DependencyGraph{
		"task_1": {},
		"task_2": {"task_1"},
		"task_3": {"task_1"},
		"task_4": {"task_2", "task_3"},
	}
	if diff := cmp.Diff(want, res.Graph); diff != "" {
		t.Errorf("fallback graph mismatch (-want +got):\n%s", diff)
	}
	if cycle := DetectCycle(tasks, res.Graph); cycle != nil {
		t.Errorf("expected acyclic fallback, found %v", cycle)
	}

	var cycleDiag *Diagnostic
	for i := range res.Diagnostics {
		if res.Diagnostics[i].Kind == DiagCycle {
			cycleDiag = &res.Diagnostics[i]
		}
	}
	if cycleDiag == nil {
		t.Fatalf("expected a cycle diagnostic, got %v", res.Diagnostics)
	}
	wantCycle := []string{"task_1", "task_4", "task_2", "task_1"}
	if diff := cmp.Diff(wantCycle, cycleDiag.Cycle); diff != "" {
		t.Errorf("cycle path mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_CycleKeySetIsFullTaskSet(t *testing.T) {
	tasks := tasksFor("a", "b", "c", "d", "e")
	s := Suggestion{"a": {"b"}, "b": {"c"}, "c": {"a"}}

	res := Resolve(context.Background(), tasks, s)
	if !res.UsedFallback {
		t.Fatal("expected fallback")
	}
	if len(res.Graph) != len(tasks) {
		t.Errorf("expected %d keys, got %d", len(tasks), len(res.Graph))
	}
	for _, tk := range tasks {
		if _, ok := res.Graph[tk.ID]; !ok {
			t.Errorf("expected key %s in fallback graph", tk.ID)
		}
	}
	if cycle := DetectCycle(tasks, res.Graph); cycle != nil {
		t.Errorf("expected acyclic output, found %v", cycle)
	}
}

func TestResolve_SelfDependencyIsCycle(t *testing.T) {
	tasks := tasksFor("a", "b")
	res := Resolve(context.Background(), tasks, Suggestion{"a": {"a"}})
	if !res.UsedFallback {
		t.Error("expected self-dependency to trigger fallback")
	}
}

func TestResolve_AbsentSuggestion(t *testing.T) {
	tasks := projectTasks()
	res := Resolve(context.Background(), tasks, nil)
	if !res.UsedFallback {
		t.Fatal("expected fallback for nil suggestion")
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Kind != DiagNoSuggestion {
		t.Errorf("expected a single no_suggestion diagnostic, got %v", res.Diagnostics)
	}
}

func TestResolve_EmptyTasks(t *testing.T) {
	res := Resolve(context.Background(), nil, Suggestion{"x": {"y"}})
	if len(res.Graph) != 0 {
		t.Errorf("expected empty graph, got %v", res.Graph)
	}
	res = Resolve(context.Background(), nil, nil)
	if len(res.Graph) != 0 {
		t.Errorf("expected empty fallback graph, got %v", res.Graph)
	}
}

func TestResolveRaw_Malformed(t *testing.T) {
	tasks := projectTasks()
	for _, raw := range []string{
		`not json`,
		`["task_1"]`,
		`{"task_2": "task_1"}`,
		`{"dependencies": {"task_2": [{"id": "task_1"}]}}`,
	} {
		res := ResolveRaw(context.Background(), tasks, []byte(raw))
		if !res.UsedFallback {
			t.Errorf("expected fallback for %q", raw)
			continue
		}
		if res.Diagnostics[0].Kind != DiagMalformed {
			t.Errorf("expected malformed diagnostic for %q, got %v", raw, res.Diagnostics)
		}
	}
}

func TestParseAndResolve(t *testing.T) {
	tasks := tasksFor("a", "b")

	s, res := ParseAndResolve(context.Background(), tasks, []byte(`{"b": ["a"]}`))
	if diff := cmp.Diff(Suggestion{"b": {"a"}}, s); diff != "" {
		t.Errorf("suggestion mismatch (-want +got):\n%s", diff)
	}
	if res.UsedFallback {
		t.Errorf("expected suggestion to be kept, got %v", res.Diagnostics)
	}

	s, res = ParseAndResolve(context.Background(), tasks, []byte(`{"b": "a"}`))
	if s != nil {
		t.Errorf("expected no suggestion for malformed input, got %v", s)
	}
	if !res.UsedFallback || res.Diagnostics[0].Kind != DiagMalformed {
		t.Errorf("expected malformed fallback, got %+v", res)
	}
}

func TestResolveRaw_Envelope(t *testing.T) {
	tasks := tasksFor("a", "b")
	raw := `{"dependencies": {"a": [], "b": ["a"]}, "parallel_groups": [["a"], ["b"]]}`
	res := ResolveRaw(context.Background(), tasks, []byte(raw))
	if res.UsedFallback {
		t.Fatalf("expected envelope to parse, got %v", res.Diagnostics)
	}
	if diff := cmp.Diff(DependencyGraph{"a": {}, "b": {"a"}}, res.Graph); diff != "" {
		t.Errorf("graph mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveRaw_Blank(t *testing.T) {
	res := ResolveRaw(context.Background(), tasksFor("a"), []byte("  "))
	if !res.UsedFallback || res.Diagnostics[0].Kind != DiagNoSuggestion {
		t.Errorf("expected blank input to count as no suggestion, got %+v", res)
	}
}

func TestDetectCycle_NoCycle(t *testing.T) {
	tasks := tasksFor("a", "b")
	if cycle := DetectCycle(tasks, DependencyGraph{"a": {}, "b": {"a"}}); cycle != nil {
		t.Errorf("expected no cycle, got %v", cycle)
	}
}

func TestDetectCycle_WithCycle(t *testing.T) {
	tasks := tasksFor("a", "b", "c")
	g := DependencyGraph{"a": {"b"}, "b": {"c"}, "c": {"a"}}

	cycle := DetectCycle(tasks, g)
	if cycle == nil {
		t.Fatal("expected cycle, got nil")
	}
	if len(cycle) < 3 {
		t.Errorf("expected cycle of length >= 3, got %v", cycle)
	}
	if cycle[0] != cycle[len(cycle)-1] {
		t.Errorf("expected cycle to start and end on the same task, got %v", cycle)
	}
}

func TestDependentsAndEdges(t *testing.T) {
	tasks := tasksFor("a", "b", "c")
	g := DependencyGraph{"a": {}, "b": {"a"}, "c": {"a", "b"}}

	rev := Dependents(tasks, g)
	if diff := cmp.Diff([]string{"b", "c"}, rev["a"]); diff != "" {
		t.Errorf("dependents of a (-want +got):\n%s", diff)
	}
	if len(rev["c"]) != 0 {
		t.Errorf("expected c to have no dependents, got %v", rev["c"])
	}

	want := []Edge{{From: "a", To: "b"}, {From: "a", To: "c"}, {From: "b", To: "c"}}
	if diff := cmp.Diff(want, Edges(tasks, g)); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
}

func TestApply(t *testing.T) {
	tasks := tasksFor("a", "b")
	Apply(tasks, DependencyGraph{"a": {}, "b": {"a"}})
	if len(tasks[0].Dependencies) != 0 || tasks[0].Dependencies == nil {
		t.Errorf("expected empty non-nil deps for a, got %#v", tasks[0].Dependencies)
	}
	if diff := cmp.Diff([]string{"a"}, tasks[1].Dependencies); diff != "" {
		t.Errorf("deps of b (-want +got):\n%s", diff)
	}
}
