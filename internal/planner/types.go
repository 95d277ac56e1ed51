package planner

import (
	"github.com/joshharrison/loomplan/internal/graph"
	"github.com/joshharrison/loomplan/internal/schedule"
	"github.com/joshharrison/loomplan/internal/task"
)

// TaskDeps holds per-task predecessor and successor lists for dependency tracking.
type TaskDeps struct {
	Predecessors graph.DependencyGraph `json:"predecessors"`
	Successors   map[string][]string   `json:"successors"`
}

// Plan is the complete output of one planning run.
type Plan struct {
	ID             string                `json:"id"`
	StartDate      schedule.Date         `json:"start_date"`
	Tasks          []task.Task           `json:"tasks"`
	Dependencies   graph.DependencyGraph `json:"dependencies"`
	Deps           TaskDeps              `json:"deps"`
	ParallelGroups [][]string            `json:"parallel_groups"`
	Waves          []Wave                `json:"waves"`
	CriticalPath   []string              `json:"critical_path"`
	Summary        schedule.Summary      `json:"summary"`
	Stats          Stats                 `json:"stats"`
	UsedFallback   bool                  `json:"used_fallback"`
	Diagnostics    []graph.Diagnostic    `json:"diagnostics,omitempty"`
}

// Wave is a group of tasks that can run in parallel, with the calendar window
// its tasks were scheduled into.
type Wave struct {
	Index      int           `json:"index"`
	TaskIDs    []string      `json:"task_ids"`
	IsCritical bool          `json:"is_critical"`
	Forced     bool          `json:"forced,omitempty"`
	DependsOn  []int         `json:"depends_on"`
	Start      schedule.Date `json:"start_date"`
	End        schedule.Date `json:"end_date"`
}

// Stats are headline numbers about a plan.
type Stats struct {
	TotalTasks             int            `json:"total_tasks"`
	TotalWaves             int            `json:"total_waves"`
	Categories             map[string]int `json:"categories"`
	ComplexityDistribution map[string]int `json:"complexity_distribution"`
	CanParallel            bool           `json:"can_parallel"`
	MaxParallel            int            `json:"max_parallel"`
	CriticalPathLength     int            `json:"critical_path_length"`
	DependenciesCount      int            `json:"dependencies_count"`
}

// Config holds the knobs of a planning run.
type Config struct {
	// Start is the first day of the sequential layout. Required for a
	// reproducible plan; the zero value is replaced by 1970-01-01.
	Start schedule.Date
	// Buffer pads complexity estimates; task.DefaultBuffer when zero.
	Buffer float64
	// MaxConcurrent bounds GenerateAll; 4 when zero.
	MaxConcurrent int
}

// Input is one independent planning request for GenerateAll.
type Input struct {
	Tasks      []task.Task
	Suggestion graph.Suggestion
}
