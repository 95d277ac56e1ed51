package claude

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"text/template"

	"github.com/joshharrison/loomplan/internal/task"
)

const systemPrompt = `You are an expert software project manager. You answer with a single JSON value and nothing else.`

const defaultDependencyTemplate = `Analyze these project tasks and identify dependencies between them.

Rules for dependencies:
1. Setup/initialization tasks usually have no dependencies.
2. Core development tasks depend on setup tasks.
3. Testing tasks depend on development tasks.
4. Deployment depends on testing.
5. Documentation can often be done in parallel with development.
6. Tasks in the same category may depend on each other if one builds on another.
- Only use task IDs from the provided list.
- A task cannot depend on itself, and there must be no cycles.

Return a JSON object with this exact structure, listing every task id as a key:
{
  "dependencies": {
    "<task id>": ["<ids of tasks that must finish first>"]
  }
}

Example:
{"dependencies": {"task_1": [], "task_2": ["task_1"], "task_3": ["task_1"], "task_4": ["task_2", "task_3"]}}

Return ONLY the JSON object. No markdown fences, no commentary outside the JSON.

Here are the {{len .Tasks}} tasks:
{{.TasksJSON}}
`

const defaultDecomposeTemplate = `Break down this project into {{.MinTasks}}-{{.MaxTasks}} specific tasks:
"{{.Description}}"

Return a JSON array of tasks, each having:
- id: task_1, task_2, etc.
- name: short descriptive name
- description: 1-2 sentences
- category: one of {{.Categories}}
- complexity: low, medium or high

Example:
[{"id": "task_1", "name": "Setup Environment", "description": "Initialize project", "category": "development", "complexity": "low"}]

Return ONLY the JSON array, no other text.
`

// TaskSummary is the minimal task info sent to Claude for dependency inference.
type TaskSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

type dependencyPromptData struct {
	Tasks     []TaskSummary
	TasksJSON string
}

type decomposePromptData struct {
	Description string
	MinTasks    int
	MaxTasks    int
	Categories  string
}

func buildDependencyPrompt(tasks []task.Task, templatePath string) (string, error) {
	summaries := make([]TaskSummary, len(tasks))
	for i, t := range tasks {
		summaries[i] = TaskSummary{ID: t.ID, Name: t.Name, Category: t.Category, Description: t.Description}
	}
	data, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal tasks: %w", err)
	}
	return renderPrompt(defaultDependencyTemplate, templatePath, dependencyPromptData{
		Tasks:     summaries,
		TasksJSON: string(data),
	})
}

func buildDecomposePrompt(description string, maxTasks int, templatePath string) (string, error) {
	return renderPrompt(defaultDecomposeTemplate, templatePath, decomposePromptData{
		Description: description,
		MinTasks:    min(5, maxTasks),
		MaxTasks:    maxTasks,
		Categories:  "setup, development, testing, deployment, documentation",
	})
}

// renderPrompt renders data using either a custom template file or the default.
func renderPrompt(defaultTmpl, templatePath string, data any) (string, error) {
	tmplStr := defaultTmpl
	if templatePath != "" {
		content, err := os.ReadFile(templatePath)
		if err != nil {
			return "", fmt.Errorf("read prompt template: %w", err)
		}
		tmplStr = string(content)
	}

	tmpl, err := template.New("prompt").Parse(tmplStr)
	if err != nil {
		return "", fmt.Errorf("parse prompt template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt template: %w", err)
	}
	return buf.String(), nil
}
