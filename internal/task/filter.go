package task

import (
	"fmt"
	"strconv"
	"strings"
)

// Filter returns the tasks matching a simple filter expression. Supported
// forms are "category=X", "complexity=X", "id=X" and "duration<=N",
// "duration>=N", "duration=N". An empty expression keeps every task.
func Filter(tasks []Task, expr string) ([]Task, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return tasks, nil
	}

	var keep func(Task) bool
	switch {
	case strings.HasPrefix(expr, "duration"):
		pred, err := durationFilter(strings.TrimPrefix(expr, "duration"))
		if err != nil {
			return nil, err
		}
		keep = pred
	case strings.HasPrefix(expr, "category="):
		category := strings.TrimPrefix(expr, "category=")
		keep = func(t Task) bool { return strings.EqualFold(strings.TrimSpace(t.Category), category) }
	case strings.HasPrefix(expr, "complexity="):
		c := ParseComplexity(strings.TrimPrefix(expr, "complexity="))
		keep = func(t Task) bool { return ParseComplexity(string(t.Complexity)) == c }
	case strings.HasPrefix(expr, "id="):
		ids := make(map[string]bool)
		for _, id := range strings.Split(strings.TrimPrefix(expr, "id="), ",") {
			ids[strings.TrimSpace(id)] = true
		}
		keep = func(t Task) bool { return ids[t.ID] }
	default:
		return nil, fmt.Errorf("unsupported filter: %s (use category=X, complexity=X, id=A,B or duration<=N)", expr)
	}

	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

func durationFilter(rest string) (func(Task) bool, error) {
	for _, op := range []string{"<=", ">=", "="} {
		if !strings.HasPrefix(rest, op) {
			continue
		}
		n, err := strconv.ParseFloat(strings.TrimPrefix(rest, op), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid duration value: %w", err)
		}
		switch op {
		case "<=":
			return func(t Task) bool { return t.Duration <= n }, nil
		case ">=":
			return func(t Task) bool { return t.Duration >= n }, nil
		default:
			return func(t Task) bool { return t.Duration == n }, nil
		}
	}
	return nil, fmt.Errorf("unsupported duration filter: duration%s", rest)
}
