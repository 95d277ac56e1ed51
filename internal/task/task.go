package task

import (
	"fmt"
	"math"
	"strings"
)

// Complexity is the coarse effort tier assigned to a task.
type Complexity string

const (
	Low    Complexity = "low"
	Medium Complexity = "medium"
	High   Complexity = "high"
)

// DefaultBuffer pads every base estimate by 20%.
const DefaultBuffer = 1.2

// baseDays is the unpadded duration, in working days, for each complexity tier.
var baseDays = map[Complexity]float64{
	Low:    2,
	Medium: 5,
	High:   10,
}

// ParseComplexity maps free text onto a tier. Anything unrecognised is medium.
func ParseComplexity(s string) Complexity {
	switch Complexity(strings.ToLower(strings.TrimSpace(s))) {
	case Low:
		return Low
	case High:
		return High
	default:
		return Medium
	}
}

// Task is a single unit of project work.
type Task struct {
	ID           string     `json:"id" yaml:"id"`
	Name         string     `json:"name" yaml:"name"`
	Description  string     `json:"description" yaml:"description"`
	Category     string     `json:"category" yaml:"category"`
	Complexity   Complexity `json:"complexity" yaml:"complexity"`
	Duration     float64    `json:"duration" yaml:"duration,omitempty"`
	StartDate    string     `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	EndDate      string     `json:"end_date,omitempty" yaml:"end_date,omitempty"`
	Dependencies []string   `json:"dependencies" yaml:"dependencies,omitempty"`
}

// MaxDuration caps a single task at roughly ten years of weekdays.
const MaxDuration = 2600

// ValidDuration reports whether d is a usable explicit duration: positive,
// finite and no larger than MaxDuration.
func ValidDuration(d float64) bool {
	return d > 0 && d <= MaxDuration
}

// Estimate returns the padded duration in days for a complexity tier,
// rounded to one decimal place.
func Estimate(c Complexity, buffer float64) float64 {
	if !(buffer > 0) || math.IsInf(buffer, 0) {
		buffer = DefaultBuffer
	}
	base, ok := baseDays[c]
	if !ok {
		base = baseDays[Medium]
	}
	return math.Round(base*buffer*10) / 10
}

// EstimateAll fills in Duration for every task that does not already carry a
// valid one.
// Complexity is normalised in place so downstream consumers see a known tier.
func EstimateAll(tasks []Task, buffer float64) {
	for i := range tasks {
		tasks[i].Complexity = ParseComplexity(string(tasks[i].Complexity))
		if !ValidDuration(tasks[i].Duration) {
			tasks[i].Duration = Estimate(tasks[i].Complexity, buffer)
		}
		if !ValidDuration(tasks[i].Duration) {
			tasks[i].Duration = Estimate(tasks[i].Complexity, DefaultBuffer)
		}
	}
}

// IDs returns task ids in list order.
func IDs(tasks []Task) []string {
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return ids
}

// Index returns a lookup from id to position in tasks.
func Index(tasks []Task) map[string]int {
	idx := make(map[string]int, len(tasks))
	for i, t := range tasks {
		idx[t.ID] = i
	}
	return idx
}

// Clone returns a deep copy so callers can annotate tasks without touching the input.
func Clone(tasks []Task) []Task {
	if tasks == nil {
		return nil
	}
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t
		if t.Dependencies != nil {
			out[i].Dependencies = append([]string(nil), t.Dependencies...)
		}
	}
	return out
}

// Validate reports empty or duplicate task ids.
func Validate(tasks []Task) error {
	seen := make(map[string]bool, len(tasks))
	for i, t := range tasks {
		if strings.TrimSpace(t.ID) == "" {
			return fmt.Errorf("task %d has an empty id", i)
		}
		if seen[t.ID] {
			return fmt.Errorf("duplicate task id %q", t.ID)
		}
		seen[t.ID] = true
	}
	return nil
}
