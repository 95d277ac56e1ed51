package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joshharrison/loomplan/internal/claude"
	"github.com/joshharrison/loomplan/internal/config"
	"github.com/joshharrison/loomplan/internal/ctxlog"
	"github.com/joshharrison/loomplan/internal/graph"
	"github.com/joshharrison/loomplan/internal/logging"
	"github.com/joshharrison/loomplan/internal/schedule"
	"github.com/joshharrison/loomplan/internal/task"
	"github.com/joshharrison/loomplan/internal/taskfile"
	"github.com/joshharrison/loomplan/internal/ui"
)

var (
	flagConfig     string
	flagDescribe   string
	flagSuggestion string
	flagInfer      bool
	flagFilter     string
	flagStart      string
	flagJSON       bool
	flagOutput     string
	flagFormat     string
	flagEach       bool

	v   *viper.Viper
	cfg *config.Config
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "loomplan",
		Short: "Turn a task list into a dependency-aware, dated project plan",
		Long: `Loomplan reads project tasks from JSON, YAML or HCL files (or asks Claude to
break a description down), validates the suggested dependencies, groups the
tasks into parallel waves, finds the critical path and lays the work out on a
weekday calendar.`,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default: $XDG_CONFIG_HOME/loomplan/loomplan.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format (text, json)")
	rootCmd.PersistentFlags().String("color", "", "Color output (auto, always, never)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Machine-readable JSON output")

	v = config.New("")
	_ = v.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = v.BindPFlag("output.color", rootCmd.PersistentFlags().Lookup("color"))

	rootCmd.AddCommand(planCmd())
	rootCmd.AddCommand(vizCmd())
	rootCmd.AddCommand(inferDepsCmd())
	rootCmd.AddCommand(decomposeCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// initConfig loads configuration and installs the logger on the command context.
func initConfig(cmd *cobra.Command, _ []string) error {
	if flagConfig != "" {
		v.SetConfigFile(flagConfig)
	}
	if err := config.Read(v); err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	loaded, err := config.Load(v)
	if err != nil {
		return err
	}
	cfg = loaded

	ui.SetColorMode(cfg.Output.Color)
	logger := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))
	return nil
}

// --- Input helpers ---

// loadTasks reads tasks from files, or from Claude when --describe is set.
// Declared dependencies in the files become the suggestion.
func loadTasks(ctx context.Context, paths []string) ([]task.Task, graph.Suggestion, error) {
	var (
		tasks []task.Task
		s     graph.Suggestion
	)
	switch {
	case flagDescribe != "":
		tasks = decompose(ctx, flagDescribe)
	case len(paths) > 0:
		f, err := taskfile.LoadAll(paths)
		if err != nil {
			return nil, nil, err
		}
		tasks, s = f.Tasks, f.Suggestion
	default:
		return nil, nil, fmt.Errorf("no tasks: pass task files or --describe")
	}

	if flagFilter != "" {
		task.EstimateAll(tasks, cfg.Estimate.Buffer)
		filtered, err := task.Filter(tasks, flagFilter)
		if err != nil {
			return nil, nil, fmt.Errorf("apply filter: %w", err)
		}
		tasks = filtered
	}
	return tasks, s, nil
}

// suggestionFor picks the dependency suggestion: an explicit file wins, then
// Claude inference, then whatever the task files declared. Failures degrade
// to no suggestion so the resolver falls back to the category heuristic.
func suggestionFor(ctx context.Context, tasks []task.Task, declared graph.Suggestion) graph.Suggestion {
	logger := ctxlog.FromContext(ctx)

	if flagSuggestion != "" {
		data, err := os.ReadFile(flagSuggestion)
		if err != nil {
			logger.Warn("cannot read suggestion file, ignoring it", "path", flagSuggestion, "error", err)
			return nil
		}
		s, err := graph.ParseSuggestion(data)
		if err != nil {
			logger.Warn("suggestion file is malformed, ignoring it", "path", flagSuggestion, "error", err)
			return nil
		}
		return s
	}

	if flagInfer {
		client, err := newClaude()
		if err != nil {
			logger.Warn("dependency inference unavailable", "error", err)
			return nil
		}
		s, err := client.SuggestDependencies(ctx, tasks)
		if err != nil {
			logger.Warn("dependency inference failed", "error", err)
			return nil
		}
		return s
	}

	return declared
}

func decompose(ctx context.Context, description string) []task.Task {
	logger := ctxlog.FromContext(ctx)
	client, err := newClaude()
	if err != nil {
		logger.Warn("task decomposition unavailable, using fallback tasks", "error", err)
		return claude.FallbackTasks()
	}
	tasks, err := client.Decompose(ctx, description)
	if err != nil {
		logger.Warn("task decomposition failed, using fallback tasks", "error", err)
		return claude.FallbackTasks()
	}
	return tasks
}

func newClaude() (*claude.Client, error) {
	return claude.NewClient(claude.Config{
		APIKey:             cfg.LLM.APIKey,
		Model:              cfg.LLM.Model,
		MaxTokens:          int64(cfg.LLM.MaxTokens),
		MaxTasks:           cfg.LLM.MaxTasks,
		Timeout:            cfg.LLM.Timeout,
		DependencyTemplate: cfg.LLM.DependencyTemplate,
		DecomposeTemplate:  cfg.LLM.DecomposeTemplate,
	})
}

// startDate resolves the calendar cursor: --start, then schedule.start_date,
// then today.
func startDate() (schedule.Date, error) {
	raw := flagStart
	if raw == "" {
		raw = cfg.Schedule.StartDate
	}
	if raw == "" {
		return schedule.DateOf(time.Now()), nil
	}
	return schedule.ParseDate(raw)
}

// --- Output helpers ---

func outputJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return writeOutput(data)
}

// writeOutput prints data, or saves it when --output is set.
func writeOutput(data []byte) error {
	if flagOutput != "" {
		if err := os.WriteFile(flagOutput, data, 0644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Wrote %s\n", ui.Dim(flagOutput))
		return nil
	}
	fmt.Println(string(data))
	return nil
}
