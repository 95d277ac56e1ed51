package cpm

import (
	"context"

	"github.com/joshharrison/loomplan/internal/ctxlog"
	"github.com/joshharrison/loomplan/internal/graph"
	"github.com/joshharrison/loomplan/internal/task"
)

// Analyze layers the graph into parallel waves and extracts the critical path.
// g must come from graph.Resolve, which guarantees it is acyclic.
func Analyze(ctx context.Context, tasks []task.Task, g graph.DependencyGraph) *Result {
	waves := Layers(ctx, tasks, g)
	depths := Depths(tasks, g)
	path := criticalPath(tasks, g, depths)

	onPath := make(map[string]bool, len(path))
	for _, id := range path {
		onPath[id] = true
	}

	result := &Result{
		Waves:        waves,
		CriticalPath: path,
		Depths:       depths,
		TopoOrder:    TopoOrder(waves),
	}
	for i := range result.Waves {
		for _, id := range result.Waves[i].TaskIDs {
			if onPath[id] {
				result.Waves[i].IsCritical = true
				break
			}
		}
		if result.Waves[i].Forced {
			result.Forced = true
		}
	}
	return result
}

// Layers groups tasks into waves by frontier expansion: each wave holds every
// unplaced task whose dependencies were all placed in earlier waves. Within a
// wave, tasks keep their task list order.
//
// If an iteration finds nothing placeable the graph was not acyclic. The
// remaining tasks are then forced into one final wave and the violation is
// logged at error level.
func Layers(ctx context.Context, tasks []task.Task, g graph.DependencyGraph) []Wave {
	placed := make(map[string]bool, len(tasks))
	remaining := task.IDs(tasks)
	waves := []Wave{}

	for len(remaining) > 0 {
		var ready, blocked []string
		for _, id := range remaining {
			if allPlaced(g[id], placed) {
				ready = append(ready, id)
			} else {
				blocked = append(blocked, id)
			}
		}

		wave := Wave{Index: len(waves), TaskIDs: ready}
		if len(ready) == 0 {
			ctxlog.FromContext(ctx).Error("no task eligible for layering; dependency graph is not acyclic",
				"wave", wave.Index, "remaining", remaining)
			wave.TaskIDs = remaining
			wave.Forced = true
			blocked = nil
		}

		for _, id := range wave.TaskIDs {
			placed[id] = true
		}
		waves = append(waves, wave)
		remaining = blocked
	}
	return waves
}

func allPlaced(deps []string, placed map[string]bool) bool {
	for _, dep := range deps {
		if !placed[dep] {
			return false
		}
	}
	return true
}

// Groups returns the task IDs of each wave, in wave order.
func Groups(waves []Wave) [][]string {
	groups := make([][]string, len(waves))
	for i, w := range waves {
		groups[i] = append([]string{}, w.TaskIDs...)
	}
	return groups
}

// TopoOrder flattens waves into a single order where every task follows its
// dependencies.
func TopoOrder(waves []Wave) []string {
	var order []string
	for _, w := range waves {
		order = append(order, w.TaskIDs...)
	}
	return order
}
