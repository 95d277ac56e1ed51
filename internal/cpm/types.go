package cpm

// Result holds the layering and critical path analysis of a dependency graph.
type Result struct {
	Waves        []Wave         `json:"waves"`
	CriticalPath []string       `json:"critical_path"` // ordered task IDs, dependency-free task first
	Depths       map[string]int `json:"depths"`        // dependency edges to the furthest root
	TopoOrder    []string       `json:"topo_order"`    // waves flattened; dependencies precede dependents
	Forced       bool           `json:"forced,omitempty"`
}

// Wave represents a group of tasks that can execute in parallel.
type Wave struct {
	Index      int      `json:"index"`
	TaskIDs    []string `json:"task_ids"`
	IsCritical bool     `json:"is_critical"` // true if wave contains critical path tasks
	Forced     bool     `json:"forced,omitempty"`
}
