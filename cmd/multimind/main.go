// Command multimind runs the multi-agent orchestration engine from the
// terminal: `multimind run "task"` answers a task with parallel agents and
// consensus synthesis, `multimind agent "task"` drives a single tool-use loop.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hupe1980/multimind"
	"github.com/hupe1980/multimind/config"
	"github.com/hupe1980/multimind/orchestrator"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgPath string
		verbose bool
	)

	root := &cobra.Command{
		Use:           "multimind",
		Short:         "Parallel multi-agent orchestration with consensus synthesis",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to YAML config file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	loadConfig := func() (*config.Config, error) {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return nil, err
		}
		if verbose {
			cfg.Log.Level = "debug"
		}
		return cfg, nil
	}

	root.AddCommand(newRunCmd(loadConfig))
	root.AddCommand(newAgentCmd(loadConfig))
	root.AddCommand(newVersionCmd())
	return root
}

func newRunCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	var agents int

	cmd := &cobra.Command{
		Use:   "run [task]",
		Short: "Answer a task with parallel agents and consensus synthesis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if agents > 0 {
				cfg.Orchestrator.ParallelAgents = agents
			}

			orch, err := multimind.New(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			stopRender := renderProgress(orch.Progress())
			answer, err := orch.Orchestrate(ctx, args[0])
			stopRender()
			if err != nil {
				return err
			}

			fmt.Println()
			fmt.Println(answer)
			return nil
		},
	}
	cmd.Flags().IntVarP(&agents, "agents", "n", 0, "number of parallel agents (overrides config)")
	return cmd
}

func newAgentCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "agent [task]",
		Short: "Run a single agent tool-use loop on a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ag, err := multimind.NewAgent(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			answer, err := ag.Run(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Println(answer)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the multimind version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Println("multimind", version)
		},
	}
}

// renderProgress polls the tracker and reprints the status lines whenever
// they change. It returns a stop function that ends the polling goroutine
// and prints the final state.
func renderProgress(progress *orchestrator.Progress) func() {
	done := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		defer close(finished)
		ticker := time.NewTicker(250 * time.Millisecond)
		defer ticker.Stop()

		var last string
		for {
			select {
			case <-done:
				if line := formatProgress(progress.Snapshot()); line != "" && line != last {
					fmt.Fprintln(os.Stderr, line)
				}
				return
			case <-ticker.C:
				if line := formatProgress(progress.Snapshot()); line != "" && line != last {
					fmt.Fprintln(os.Stderr, line)
					last = line
				}
			}
		}
	}()

	return func() {
		close(done)
		<-finished
	}
}

func formatProgress(snapshot map[int]orchestrator.Status) string {
	if len(snapshot) == 0 {
		return ""
	}
	indices := make([]int, 0, len(snapshot))
	for i := range snapshot {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	parts := make([]string, 0, len(indices))
	for _, i := range indices {
		parts = append(parts, fmt.Sprintf("agent %d: %s", i, colorize(snapshot[i])))
	}
	return strings.Join(parts, " | ")
}

func colorize(status orchestrator.Status) string {
	switch status.State {
	case orchestrator.StateCompleted:
		return color.GreenString(status.String())
	case orchestrator.StateFailed:
		return color.RedString(status.String())
	case orchestrator.StateProcessing, orchestrator.StateInitializing:
		return color.YellowString(status.String())
	default:
		return status.String()
	}
}
