package claude

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/joshharrison/loomplan/internal/ctxlog"
	"github.com/joshharrison/loomplan/internal/graph"
	"github.com/joshharrison/loomplan/internal/task"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "claude-sonnet-4-5"

// Suggester proposes dependencies between tasks. The result is untrusted and
// goes through graph.Resolve before use.
type Suggester interface {
	SuggestDependencies(ctx context.Context, tasks []task.Task) (graph.Suggestion, error)
}

// Decomposer breaks a free-text project description into tasks.
type Decomposer interface {
	Decompose(ctx context.Context, description string) ([]task.Task, error)
}

// Config controls the Claude client.
type Config struct {
	APIKey    string
	Model     string
	MaxTokens int64
	MaxTasks  int
	Timeout   time.Duration
	// Optional text/template files that replace the built-in prompts.
	DependencyTemplate string
	DecomposeTemplate  string
}

// Client wraps the Anthropic SDK for Claude API calls.
type Client struct {
	inner anthropic.Client
	model anthropic.Model
	cfg   Config
}

var (
	_ Suggester  = (*Client)(nil)
	_ Decomposer = (*Client)(nil)
)

// NewClient creates a Claude client. The API key defaults to ANTHROPIC_API_KEY.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	if cfg.MaxTasks <= 0 {
		cfg.MaxTasks = 8
	}

	inner := anthropic.NewClient(
		option.WithAPIKey(cfg.APIKey),
	)
	return &Client{inner: inner, model: anthropic.Model(cfg.Model), cfg: cfg}, nil
}

// SuggestDependencies asks Claude for a dependency mapping over tasks.
func (c *Client) SuggestDependencies(ctx context.Context, tasks []task.Task) (graph.Suggestion, error) {
	prompt, err := buildDependencyPrompt(tasks, c.cfg.DependencyTemplate)
	if err != nil {
		return nil, err
	}
	text, err := c.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	s, err := graph.ParseSuggestion([]byte(stripJSONFences(text)))
	if err != nil {
		return nil, fmt.Errorf("parse claude response: %w\nraw: %s", err, text)
	}
	return s, nil
}

// Decompose asks Claude to break description into tasks. At most
// Config.MaxTasks tasks are returned; durations are left for the estimator.
func (c *Client) Decompose(ctx context.Context, description string) ([]task.Task, error) {
	prompt, err := buildDecomposePrompt(description, c.cfg.MaxTasks, c.cfg.DecomposeTemplate)
	if err != nil {
		return nil, err
	}
	text, err := c.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	tasks, err := parseTasks(stripJSONFences(text), c.cfg.MaxTasks)
	if err != nil {
		return nil, fmt.Errorf("parse claude response: %w\nraw: %s", err, text)
	}
	return tasks, nil
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.inner.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.cfg.MaxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("claude API call: %w", err)
	}

	// Extract text from response
	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	ctxlog.FromContext(ctx).Debug("claude call finished",
		"model", c.model, "elapsed", time.Since(start), "chars", text.Len())
	return text.String(), nil
}

// rawTask mirrors the decomposition response. Complexity is free text so an
// unknown tier does not fail the whole response.
type rawTask struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Complexity  string `json:"complexity"`
}

func parseTasks(text string, limit int) ([]task.Task, error) {
	var raw []rawTask
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("no tasks in response")
	}
	if limit > 0 && len(raw) > limit {
		raw = raw[:limit]
	}

	tasks := make([]task.Task, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, r := range raw {
		id := strings.TrimSpace(r.ID)
		if id == "" || seen[id] {
			id = fmt.Sprintf("task_%d", i+1)
		}
		seen[id] = true
		category := strings.ToLower(strings.TrimSpace(r.Category))
		if category == "" {
			category = "development"
		}
		tasks = append(tasks, task.Task{
			ID:          id,
			Name:        strings.TrimSpace(r.Name),
			Description: strings.TrimSpace(r.Description),
			Category:    category,
			Complexity:  task.ParseComplexity(r.Complexity),
		})
	}
	return tasks, nil
}

// FallbackTasks is the minimal plan used when decomposition fails.
func FallbackTasks() []task.Task {
	return []task.Task{
		{ID: "task_1", Name: "Project Setup", Description: "Initialize project structure", Category: "development", Complexity: task.Medium},
		{ID: "task_2", Name: "Core Development", Description: "Build main features", Category: "development", Complexity: task.Medium},
		{ID: "task_3", Name: "Testing", Description: "Test the application", Category: "testing", Complexity: task.Medium},
	}
}

// stripJSONFences removes markdown code fences that Claude sometimes adds.
func stripJSONFences(s string) string {
	s = strings.TrimSpace(s)
	// Remove ```json ... ``` or ``` ... ```
	if strings.HasPrefix(s, "```") {
		// Strip opening fence line
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		}
		// Strip closing fence
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	return s
}
