package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"hygieia-reporter/src/notify"
	"hygieia-reporter/src/provider"
	"hygieia-reporter/src/report"
)

// jobFlags select the build a lifecycle command reports on.
type jobFlags struct {
	snapshot  string
	workspace string
	fromDB    bool
	project   string
	number    int
	quiet     bool
}

func (f *jobFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.snapshot, "snapshot", "", "YAML or JSON build snapshot file")
	cmd.Flags().StringVar(&f.workspace, "workspace", ".", "workspace root for artifact, test, sonar and deploy paths")
	cmd.Flags().BoolVar(&f.fromDB, "from-db", false, "read the build and its history from the ledger database")
	cmd.Flags().StringVar(&f.project, "project", "", "project name (with --from-db)")
	cmd.Flags().IntVar(&f.number, "number", 0, "build number (with --from-db)")
	cmd.Flags().BoolVar(&f.quiet, "quiet", false, "do not print the summary table")
}

var (
	startedFlags   jobFlags
	completedFlags jobFlags
)

var startedCmd = &cobra.Command{
	Use:   "started",
	Short: "Report that a build has started",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLifecycle(cmd.Context(), &startedFlags, notify.PhaseStarted)
	},
}

var completedCmd = &cobra.Command{
	Use:   "completed",
	Short: "Report that a build has completed",
	Long: `Publish the build record and, for successful or unstable builds, the
configured artifact, test, static analysis and deploy data.

Failed collector requests are logged and never fail the command; the CI
build must not be affected by the dashboard being unavailable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLifecycle(cmd.Context(), &completedFlags, notify.PhaseCompleted)
	},
}

func init() {
	startedFlags.register(startedCmd)
	completedFlags.register(completedCmd)
}

func runLifecycle(ctx context.Context, flags *jobFlags, phase string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	snap, err := flags.loadSnapshot()
	if err != nil {
		return err
	}
	env := environ()
	if snap != nil {
		for k, v := range snap.Env {
			env[k] = v
		}
	}

	rep, err := newReporter(ctx, appConfig.Expand(env))
	if err != nil {
		return err
	}
	defer rep.Close(ctx)

	job, src, err := resolveJob(ctx, flags, snap, rep, env)
	if err != nil {
		return err
	}

	n, err := rep.notifier(src)
	if err != nil {
		return err
	}

	var result *notify.Report
	if phase == notify.PhaseStarted {
		result = n.Started(ctx, job)
	} else {
		result = n.Completed(ctx, job)
	}

	if !flags.quiet {
		fmt.Print(report.NewRenderer(0).Report(result))
	}
	return nil
}

func (f *jobFlags) loadSnapshot() (*provider.Snapshot, error) {
	if f.fromDB {
		if f.project == "" || f.number <= 0 {
			return nil, fmt.Errorf("--from-db needs --project and --number")
		}
		return nil, nil
	}
	if f.snapshot == "" {
		return nil, fmt.Errorf("one of --snapshot or --from-db is required")
	}
	return provider.LoadSnapshot(f.snapshot)
}

// resolveJob returns the job and the source its history is read from. Builds
// from a snapshot are saved to the ledger database, when there is one, so
// later runs can use --from-db.
func resolveJob(ctx context.Context, flags *jobFlags, snap *provider.Snapshot, rep *reporter, env map[string]string) (notify.Job, provider.Source, error) {
	job := notify.Job{Workspace: flags.workspace, Env: env}

	if snap == nil {
		if rep.ledger == nil {
			return job, nil, fmt.Errorf("--from-db needs ledger.dsn (HYGIEIA_LEDGER_DSN)")
		}
		src := rep.ledger.Source()
		build, err := src.LookupBuild(ctx, flags.project, flags.number)
		if err != nil {
			return job, nil, err
		}
		job.Build = build
		return job, src, nil
	}

	build, err := snap.CurrentBuild()
	if err != nil {
		return job, nil, err
	}
	job.Build = build

	if rep.ledger != nil {
		src := rep.ledger.Source()
		for _, b := range snap.Builds {
			if err := src.SaveBuild(ctx, b); err != nil {
				log.Warn("Failed saving build %s: %v", b.Key(), err)
			}
		}
	}
	return job, snap.Source(), nil
}

func environ() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}
