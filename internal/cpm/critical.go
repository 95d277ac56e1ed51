package cpm

import (
	"github.com/joshharrison/loomplan/internal/graph"
	"github.com/joshharrison/loomplan/internal/task"
)

// Depths returns, for every task, the number of dependency edges on the
// longest chain back to a dependency-free task. Durations are ignored.
func Depths(tasks []task.Task, g graph.DependencyGraph) map[string]int {
	depths := make(map[string]int, len(tasks))
	visiting := make(map[string]bool)

	var depth func(id string) int
	depth = func(id string) int {
		if d, ok := depths[id]; ok {
			return d
		}
		// a back edge means the graph was never resolved; count it as a root
		if visiting[id] {
			return 0
		}
		visiting[id] = true
		d := 0
		for _, dep := range g[id] {
			if dd := depth(dep) + 1; dd > d {
				d = dd
			}
		}
		visiting[id] = false
		depths[id] = d
		return d
	}

	for _, t := range tasks {
		depth(t.ID)
	}
	return depths
}

// CriticalPath returns the deepest dependency chain, dependency-free task first.
// The end is the first task (in list order) of maximum depth; walking back,
// each step takes the deepest dependency, first listed on ties.
func CriticalPath(tasks []task.Task, g graph.DependencyGraph) []string {
	return criticalPath(tasks, g, Depths(tasks, g))
}

func criticalPath(tasks []task.Task, g graph.DependencyGraph, depths map[string]int) []string {
	path := []string{}
	if len(tasks) == 0 {
		return path
	}

	end := tasks[0].ID
	for _, t := range tasks[1:] {
		if depths[t.ID] > depths[end] {
			end = t.ID
		}
	}

	seen := make(map[string]bool)
	for cur, ok := end, true; ok && !seen[cur]; {
		seen[cur] = true
		path = append(path, cur)

		next, found := "", false
		for _, dep := range g[cur] {
			if !found || depths[dep] > depths[next] {
				next, found = dep, true
			}
		}
		cur, ok = next, found
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
