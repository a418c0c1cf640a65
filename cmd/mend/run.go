package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mendworks/mend/internal/analyze"
	"github.com/mendworks/mend/internal/config"
	"github.com/mendworks/mend/internal/exec"
	"github.com/mendworks/mend/internal/oracle"
	"github.com/mendworks/mend/internal/pipeline"
	"github.com/mendworks/mend/internal/report"
	"github.com/mendworks/mend/internal/sandbox"
	"github.com/mendworks/mend/internal/stages"
	"github.com/mendworks/mend/internal/state"
	"github.com/mendworks/mend/internal/testrun"
	"github.com/mendworks/mend/internal/watch"
)

var (
	runMaxIterations int
	runDryRun        bool
	runVerbose       bool
	runConfigPath    string
	runOutputPath    string
	runHeadless      bool
	runWatch         bool
)

var runCmd = &cobra.Command{
	Use:   "run <target-dir>",
	Short: "Repair a directory of source code",
	Long: `Run the analyze, correct, validate pipeline against a target
directory until the code is clean or the retry budget is exhausted.

The target's test suite is the arbiter: corrections that fail it are
retried with the failure logs fed back to the corrector, bounded by
--max-iterations. Use --dry-run to analyze without changing anything.`,
	Args: cobra.ExactArgs(1),
	RunE: runPipeline,
}

func init() {
	runCmd.Flags().IntVar(&runMaxIterations, "max-iterations", 0, "Retry budget (default from config, 3)")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Analyze only, change nothing")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Log pipeline steps")
	runCmd.Flags().StringVar(&runConfigPath, "config", "", "Config file path")
	runCmd.Flags().StringVarP(&runOutputPath, "output", "o", "", "Write the execution report to a file (.json or .yaml)")
	runCmd.Flags().BoolVar(&runHeadless, "headless", false, "Print events instead of the TUI")
	runCmd.Flags().BoolVar(&runWatch, "watch", false, "Rerun on file changes (implies --headless)")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	targetDir, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolving target directory: %w", err)
	}
	info, err := os.Stat(targetDir)
	if err != nil {
		return fmt.Errorf("target directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("target %s is not a directory", targetDir)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if runMaxIterations != 0 {
		cfg.Pipeline.MaxIterations = runMaxIterations
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if runWatch {
		return runWatchMode(ctx, cfg, targetDir)
	}
	_, err = runOnce(ctx, cfg, targetDir)
	return err
}

func loadConfig() (*config.Config, error) {
	if runConfigPath != "" {
		return config.LoadFromPath(runConfigPath)
	}
	return config.Load()
}

// runOnce executes one full pipeline run and reports it. The error return
// covers construction failures only; pipeline outcomes are reported
// through the final context.
func runOnce(ctx context.Context, cfg *config.Config, targetDir string) (*pipeline.Context, error) {
	sb, err := sandbox.New(targetDir)
	if err != nil {
		return nil, err
	}
	runner := exec.NewRunner()

	lint := analyze.NewRunner(cfg.Commands.Lint, runner, sb)
	lint.Verbose = runVerbose

	var orc oracle.Oracle
	if !runDryRun {
		client, err := oracle.NewClient(oracle.ClientConfig{
			Model:         anthropic.Model(cfg.Anthropic.Model),
			APIKey:        cfg.Anthropic.APIKey,
			UseAWSBedrock: cfg.Anthropic.UseBedrock,
			AWSRegion:     cfg.Anthropic.AWSRegion,
			AWSProfile:    cfg.Anthropic.AWSProfile,
		})
		if err != nil {
			return nil, fmt.Errorf("constructing oracle: %w", err)
		}
		orc = oracle.NewClaudeOracle(client)
	}

	relayOpts := []pipeline.RelayOption{pipeline.WithEventBuffer(256)}
	if runVerbose {
		relayOpts = append(relayOpts, pipeline.WithVerbose())
	}
	relay := pipeline.NewRelay(relayOpts...)

	relay.RegisterStage(&stages.Analyzer{Linter: lint, Oracle: orc, Sandbox: sb, Verbose: runVerbose})
	if !runDryRun {
		tests := testrun.NewRunner(cfg.Commands.Test, targetDir, runner)
		tests.Timeout = cfg.Pipeline.TestTimeout
		tests.Verbose = runVerbose

		relay.RegisterStage(&stages.Corrector{Oracle: orc, Sandbox: sb, Verbose: runVerbose})
		relay.RegisterStage(&stages.Validator{Tests: tests, Verbose: runVerbose})
	}

	maxIterations := cfg.Pipeline.MaxIterations
	if runDryRun {
		// The analyzer pass is the whole run.
		maxIterations = 1
	}
	pc := pipeline.NewContext(targetDir, maxIterations)

	final := driveRun(ctx, relay, pc, targetDir)

	persistRun(final, cfg)
	rep := report.FromContext(final)
	rep.Render(os.Stdout)
	if runOutputPath != "" {
		if err := rep.WriteFile(runOutputPath); err != nil {
			return final, err
		}
	}
	return final, nil
}

// driveRun starts the relay and feeds its events to either the TUI or the
// headless printer.
func driveRun(ctx context.Context, relay *pipeline.Relay, pc *pipeline.Context, targetDir string) *pipeline.Context {
	if runHeadless || runWatch {
		done := make(chan struct{})
		go func() {
			defer close(done)
			printEvents(relay.Events())
		}()
		final := relay.Run(ctx, pc)
		<-done
		return final
	}
	return runWithTUI(ctx, relay, pc, targetDir)
}

// printEvents renders relay events as log lines for headless runs.
func printEvents(events <-chan pipeline.Event) {
	yellow := color.New(color.FgYellow).SprintFunc()
	for ev := range events {
		switch ev.Type {
		case pipeline.EventRunStarted:
			log.Printf("[run] %s started", ev.RunID)
		case pipeline.EventHandover:
			log.Printf("[run] iteration %d: %s takes over", ev.Iteration, ev.Stage)
		case pipeline.EventStageDone:
			if ev.Message != "" {
				log.Printf("[run] %s failed: %s", ev.Stage, ev.Message)
			} else {
				log.Printf("[run] %s done, state %s", ev.Stage, ev.State)
			}
		case pipeline.EventHealing:
			log.Printf("[run] %s", yellow(ev.Message))
		case pipeline.EventRunFinished:
			log.Printf("[run] %s finished: %s (%s)", ev.RunID, ev.State, ev.Message)
		}
	}
}

// persistRun saves the run to the target's history database. History is
// best effort; failures are logged, not fatal.
func persistRun(pc *pipeline.Context, cfg *config.Config) {
	db, err := state.OpenProject(pc.TargetDir)
	if err != nil {
		log.Printf("[history] open: %v", err)
		return
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		log.Printf("[history] migrate: %v", err)
		return
	}
	if err := db.SaveRun(pc); err != nil {
		log.Printf("[history] save: %v", err)
	}
	if cfg.History.Keep > 0 {
		if _, err := db.PurgeOldRuns(cfg.History.Keep); err != nil {
			log.Printf("[history] purge: %v", err)
		}
	}
}

// runWatchMode runs the pipeline once, then again after every settled
// change to the target.
func runWatchMode(ctx context.Context, cfg *config.Config, targetDir string) error {
	if _, err := runOnce(ctx, cfg, targetDir); err != nil {
		return err
	}

	fmt.Println()
	color.Cyan("watching %s for changes (ctrl-c to stop)", targetDir)

	w, err := watch.New(targetDir, watch.DefaultDebounce, func(ctx context.Context) {
		color.Cyan("change detected, rerunning")
		if _, err := runOnce(ctx, cfg, targetDir); err != nil {
			log.Printf("[watch] run failed: %v", err)
		}
	})
	if err != nil {
		return err
	}
	if err := w.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
