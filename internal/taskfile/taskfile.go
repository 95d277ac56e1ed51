// Package taskfile loads task lists, with optional dependency suggestions,
// from JSON, YAML or HCL files.
package taskfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joshharrison/loomplan/internal/graph"
	"github.com/joshharrison/loomplan/internal/task"
)

// Format identifies a task file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatHCL  Format = "hcl"
)

// File is the decoded content of one or more task files.
type File struct {
	Tasks []task.Task
	// Suggestion holds the declared dependencies. It is nil when no task
	// declares any, so the planner falls back to the category heuristic.
	Suggestion graph.Suggestion
}

// document is the object form shared by the JSON and YAML encodings. A bare
// list of tasks is accepted too.
type document struct {
	Tasks        []task.Task         `json:"tasks" yaml:"tasks"`
	Dependencies map[string][]string `json:"dependencies" yaml:"dependencies"`
}

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".hcl":
		return FormatHCL, nil
	default:
		return "", fmt.Errorf("unsupported task file extension %q", filepath.Ext(path))
	}
}

// Load reads and decodes a single task file.
func Load(path string) (*File, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read task file: %w", err)
	}
	f, err := Decode(data, format, path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return f, nil
}

// LoadAll loads every path and merges the results in order.
func LoadAll(paths []string) (*File, error) {
	files := make([]*File, 0, len(paths))
	for _, p := range paths {
		f, err := Load(p)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return Merge(files...)
}

// Decode parses data in the given format. name is only used in HCL diagnostics.
func Decode(data []byte, format Format, name string) (*File, error) {
	var (
		f   *File
		err error
	)
	switch format {
	case FormatJSON:
		f, err = decodeJSON(data)
	case FormatYAML:
		f, err = decodeYAML(data)
	case FormatHCL:
		f, err = decodeHCL(data, name)
	default:
		return nil, fmt.Errorf("unsupported task file format %q", format)
	}
	if err != nil {
		return nil, err
	}
	if err := task.Validate(f.Tasks); err != nil {
		return nil, err
	}
	return f, nil
}

// Merge concatenates task lists and unions their suggestions. Task ids must
// stay unique across files.
func Merge(files ...*File) (*File, error) {
	out := &File{Tasks: []task.Task{}}
	for _, f := range files {
		out.Tasks = append(out.Tasks, f.Tasks...)
		out.Suggestion = union(out.Suggestion, f.Suggestion)
	}
	if err := task.Validate(out.Tasks); err != nil {
		return nil, err
	}
	return out, nil
}

// fromDocument moves per-task dependency declarations into the suggestion.
func fromDocument(doc document) *File {
	f := &File{Tasks: doc.Tasks}
	if f.Tasks == nil {
		f.Tasks = []task.Task{}
	}
	if doc.Dependencies != nil {
		f.Suggestion = union(nil, doc.Dependencies)
	}
	for i := range f.Tasks {
		t := &f.Tasks[i]
		if t.Dependencies != nil {
			f.Suggestion = union(f.Suggestion, graph.Suggestion{t.ID: t.Dependencies})
			t.Dependencies = nil
		}
	}
	return f
}

// union merges b into a, keeping first-seen order. nil only when both are nil.
func union(a, b graph.Suggestion) graph.Suggestion {
	if b == nil {
		return a
	}
	if a == nil {
		a = graph.Suggestion{}
	}
	for id, deps := range b {
		have := a[id]
		if have == nil {
			have = []string{}
		}
		for _, dep := range deps {
			found := false
			for _, h := range have {
				if h == dep {
					found = true
					break
				}
			}
			if !found {
				have = append(have, dep)
			}
		}
		a[id] = have
	}
	return a
}
