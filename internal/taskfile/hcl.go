package taskfile

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/joshharrison/loomplan/internal/graph"
	"github.com/joshharrison/loomplan/internal/task"
)

// hclFile is the top-level structure of an HCL task file:
//
//	task "api" {
//	  name       = "Build API"
//	  category   = category.development
//	  complexity = complexity.high
//	  depends_on = ["setup"]
//	}
type hclFile struct {
	Tasks []*hclTask `hcl:"task,block"`
}

type hclTask struct {
	ID          string         `hcl:"id,label"`
	Name        string         `hcl:"name,optional"`
	Description string         `hcl:"description,optional"`
	Category    string         `hcl:"category,optional"`
	Complexity  string         `hcl:"complexity,optional"`
	Duration    float64        `hcl:"duration,optional"`
	DependsOn   hcl.Expression `hcl:"depends_on,optional"`
}

// evalContext exposes the known complexity tiers and categories as symbols.
func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"complexity": cty.ObjectVal(map[string]cty.Value{
				"low":    cty.StringVal(string(task.Low)),
				"medium": cty.StringVal(string(task.Medium)),
				"high":   cty.StringVal(string(task.High)),
			}),
			"category": cty.ObjectVal(map[string]cty.Value{
				"setup":         cty.StringVal("setup"),
				"development":   cty.StringVal("development"),
				"testing":       cty.StringVal("testing"),
				"deployment":    cty.StringVal("deployment"),
				"documentation": cty.StringVal("documentation"),
			}),
		},
	}
}

func decodeHCL(data []byte, name string) (*File, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, name)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse hcl tasks: %w", diags)
	}

	ctx := evalContext()
	var parsed hclFile
	if diags := gohcl.DecodeBody(file.Body, ctx, &parsed); diags.HasErrors() {
		return nil, fmt.Errorf("decode hcl tasks: %w", diags)
	}

	f := &File{Tasks: make([]task.Task, 0, len(parsed.Tasks))}
	for _, ht := range parsed.Tasks {
		f.Tasks = append(f.Tasks, task.Task{
			ID:          ht.ID,
			Name:        ht.Name,
			Description: ht.Description,
			Category:    ht.Category,
			Complexity:  task.Complexity(ht.Complexity),
			Duration:    ht.Duration,
		})

		deps, declared, err := dependsOn(ht.DependsOn, ctx)
		if err != nil {
			return nil, fmt.Errorf("decode depends_on for task %s: %w", ht.ID, err)
		}
		if declared {
			f.Suggestion = union(f.Suggestion, graph.Suggestion{ht.ID: deps})
		}
	}
	return f, nil
}

// dependsOn evaluates an optional depends_on attribute. An absent attribute
// evaluates to null and is reported as undeclared.
func dependsOn(expr hcl.Expression, ctx *hcl.EvalContext) ([]string, bool, error) {
	if expr == nil {
		return nil, false, nil
	}
	val, diags := expr.Value(ctx)
	if diags.HasErrors() {
		return nil, false, diags
	}
	if val.IsNull() {
		return nil, false, nil
	}
	deps := []string{}
	if diags := gohcl.DecodeExpression(expr, ctx, &deps); diags.HasErrors() {
		return nil, false, diags
	}
	return deps, true, nil
}
