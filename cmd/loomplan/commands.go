package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/joshharrison/loomplan/internal/graph"
	"github.com/joshharrison/loomplan/internal/planner"
	"github.com/joshharrison/loomplan/internal/reporter"
	"github.com/joshharrison/loomplan/internal/taskfile"
	"github.com/joshharrison/loomplan/internal/ui"
)

// buildPlan is shared logic for plan and viz commands.
func buildPlan(cmd *cobra.Command, args []string) (*planner.Plan, error) {
	ctx := cmd.Context()

	tasks, declared, err := loadTasks(ctx, args)
	if err != nil {
		return nil, err
	}
	start, err := startDate()
	if err != nil {
		return nil, err
	}

	s := suggestionFor(ctx, tasks, declared)
	return planner.Generate(ctx, tasks, s, planner.Config{
		Start:  start,
		Buffer: cfg.Estimate.Buffer,
	}), nil
}

func planCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan [task files...]",
		Short: "Resolve dependencies and compute a dated execution plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagEach {
				return planEach(cmd, args)
			}

			plan, err := buildPlan(cmd, args)
			if err != nil {
				return err
			}

			format := cfg.Output.Format
			if flagJSON {
				format = "json"
			}
			rpt := reporter.New(plan)

			switch format {
			case "json":
				return outputJSON(plan)
			case "dot":
				var buf bytes.Buffer
				rpt.PrintDOT(&buf)
				return writeOutput(buf.Bytes())
			}

			if flagOutput != "" {
				return outputJSON(plan)
			}
			ui.PrintBanner(os.Stderr)
			rpt.PrintPlan(os.Stdout)
			return nil
		},
	}

	cmd.Flags().StringVar(&flagDescribe, "describe", "", "Ask Claude to break this project description into tasks")
	cmd.Flags().StringVar(&flagSuggestion, "suggestion", "", "Dependency suggestion JSON file")
	cmd.Flags().BoolVar(&flagInfer, "infer", false, "Ask Claude to suggest dependencies")
	cmd.Flags().StringVar(&flagFilter, "filter", "", "Filter tasks (e.g., category=testing, complexity=high, duration<=5)")
	cmd.Flags().StringVar(&flagStart, "start", "", "First day of the schedule, YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&flagOutput, "output", "", "Save plan to file")
	cmd.Flags().BoolVar(&flagEach, "each", false, "Plan every task file independently")

	return cmd
}

// planEach plans each task file on its own, concurrently, and prints a JSON array.
func planEach(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("--each needs at least one task file")
	}
	start, err := startDate()
	if err != nil {
		return err
	}

	inputs := make([]planner.Input, len(args))
	for i, path := range args {
		f, err := taskfile.Load(path)
		if err != nil {
			return err
		}
		inputs[i] = planner.Input{Tasks: f.Tasks, Suggestion: f.Suggestion}
	}

	plans, err := planner.GenerateAll(cmd.Context(), inputs, planner.Config{
		Start:  start,
		Buffer: cfg.Estimate.Buffer,
	})
	if err != nil {
		return fmt.Errorf("generate plans: %w", err)
	}
	return outputJSON(plans)
}

func vizCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "viz [task files...]",
		Short: "Print the dependency graph as ASCII waves or Graphviz DOT",
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := buildPlan(cmd, args)
			if err != nil {
				return err
			}

			rpt := reporter.New(plan)
			if flagFormat == "dot" {
				rpt.PrintDOT(os.Stdout)
				return nil
			}
			rpt.PrintASCII(os.Stdout)
			return nil
		},
	}

	cmd.Flags().StringVar(&flagFormat, "format", "ascii", "Output format (ascii, dot)")
	cmd.Flags().StringVar(&flagSuggestion, "suggestion", "", "Dependency suggestion JSON file")
	cmd.Flags().BoolVar(&flagInfer, "infer", false, "Ask Claude to suggest dependencies")
	cmd.Flags().StringVar(&flagFilter, "filter", "", "Filter tasks")
	cmd.Flags().StringVar(&flagStart, "start", "", "First day of the schedule, YYYY-MM-DD (default: today)")

	return cmd
}

func inferDepsCmd() *cobra.Command {
	var flagFromFile string

	cmd := &cobra.Command{
		Use:   "infer-deps [task files...]",
		Short: "Use Claude to suggest task dependencies and show what survives validation",
		Long: `Sends the tasks to Claude for a dependency suggestion, then runs it through
the resolver: unknown ids are dropped and a cyclic suggestion is replaced by
the category heuristic. Use --from-file to check a saved suggestion instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			tasks, _, err := loadTasks(ctx, args)
			if err != nil {
				return err
			}
			if len(tasks) == 0 {
				return fmt.Errorf("no tasks found")
			}

			var res graph.Resolution
			var s graph.Suggestion
			if flagFromFile != "" {
				data, err := os.ReadFile(flagFromFile)
				if err != nil {
					return fmt.Errorf("read from-file: %w", err)
				}
				fmt.Fprintf(os.Stderr, "📂 Loaded suggestion from %s\n", ui.Dim(flagFromFile))
				s, res = graph.ParseAndResolve(ctx, tasks, data)
			} else {
				fmt.Fprintf(os.Stderr, "🔍 Sending %s tasks to Claude for dependency inference...\n", ui.Bold(len(tasks)))
				client, err := newClaude()
				if err != nil {
					return err
				}
				s, err = client.SuggestDependencies(ctx, tasks)
				if err != nil {
					return fmt.Errorf("infer deps: %w", err)
				}
				res = graph.Resolve(ctx, tasks, s)
			}

			if flagJSON || flagOutput != "" {
				return outputJSON(res)
			}
			reporter.PrintResolution(os.Stdout, tasks, s, res)
			return nil
		},
	}

	cmd.Flags().StringVar(&flagDescribe, "describe", "", "Ask Claude to break this project description into tasks first")
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Save JSON output to file")
	cmd.Flags().StringVar(&flagFromFile, "from-file", "", "Load a suggestion from a JSON file instead of calling Claude")

	return cmd
}

func decomposeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decompose <description>",
		Short: "Ask Claude to break a project description into tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks := decompose(cmd.Context(), args[0])

			if flagFormat == "yaml" {
				data, err := yaml.Marshal(map[string]any{"tasks": tasks})
				if err != nil {
					return fmt.Errorf("encode tasks: %w", err)
				}
				return writeOutput(data)
			}
			return outputJSON(map[string]any{"tasks": tasks})
		},
	}

	cmd.Flags().StringVar(&flagFormat, "format", "json", "Output format (json, yaml)")
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Save tasks to file (reload with plan)")

	return cmd
}
