package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"hygieia-reporter/src/artifact"
	"hygieia-reporter/src/collector"
	"hygieia-reporter/src/provider"
	"hygieia-reporter/src/report"
	"hygieia-reporter/src/status"
	"hygieia-reporter/src/store"
)

func newClient() (*collector.Client, error) {
	cfg := appConfig.Expand(environ())
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newCollectorClient(cfg), nil
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the collector API is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		if err := client.Ping(context.Background()); err != nil {
			return err
		}
		log.Info("Collector reachable at %s", client.BaseURL())
		return nil
	},
}

var itemsCmd = &cobra.Command{
	Use:   "items [type]",
	Short: "List the options of the collector items of a type, e.g. Build",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		options, err := client.CollectorItemOptions(context.Background(), args[0])
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(options, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal item options: %w", err)
		}
		fmt.Println(string(data))
		return nil
	},
}

var classifyFlags struct {
	snapshot string
	result   string
	history  []string
}

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Print the status label and message of a build",
	Long: `Classify a build against its history. Either read the current build and
its history from a snapshot, or pass results directly:

  hygieia classify --result FAILURE --history ABORTED,FAILURE`,
	RunE: func(cmd *cobra.Command, args []string) error {
		build, previous, err := classifyInput(cmd.Context())
		if err != nil {
			return err
		}

		label := status.Classify(build, previous)
		styles := report.DefaultStyles()
		fmt.Println(styles.LabelStyle(label).Render(label.Display()))
		if build.Project != "" {
			fmt.Println(status.Message(label, build, status.LastSuccessful(previous)))
		}
		return nil
	},
}

var recordsFlags struct {
	project string
	number  int
}

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "List the collector requests recorded in the ledger for one build",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateRecordsFlags(appConfig.Ledger.DSN); err != nil {
			return err
		}

		ctx := context.Background()
		ledger, err := store.NewPostgresStore(ctx, appConfig.Ledger.DSN)
		if err != nil {
			return err
		}
		defer ledger.Close()

		recs, err := ledger.Records(ctx, recordsFlags.project, recordsFlags.number)
		if err != nil {
			return err
		}
		fmt.Print(report.NewRenderer(0).Records(recs))
		return nil
	},
}

func validateRecordsFlags(dsn string) error {
	if dsn == "" {
		return fmt.Errorf("records needs ledger.dsn (HYGIEIA_LEDGER_DSN)")
	}
	if recordsFlags.project == "" || recordsFlags.number <= 0 {
		return fmt.Errorf("--project and a positive --number are required")
	}
	return nil
}

func init() {
	recordsCmd.Flags().StringVar(&recordsFlags.project, "project", "", "job name")
	recordsCmd.Flags().IntVar(&recordsFlags.number, "number", 0, "build number")

	classifyCmd.Flags().StringVar(&classifyFlags.snapshot, "snapshot", "", "YAML or JSON build snapshot file")
	classifyCmd.Flags().StringVar(&classifyFlags.result, "result", "", "result of the build")
	classifyCmd.Flags().StringSliceVar(&classifyFlags.history, "history", nil, "earlier results, most recent first")

	artifactsCmd.Flags().StringVar(&artifactsFlags.workspace, "workspace", ".", "workspace root")
	artifactsCmd.Flags().StringVar(&artifactsFlags.buildID, "build-id", "", "build id to attach to the descriptors")
}

func classifyInput(ctx context.Context) (*provider.Build, []*provider.Build, error) {
	if classifyFlags.snapshot == "" {
		if classifyFlags.result == "" {
			return nil, nil, fmt.Errorf("one of --snapshot or --result is required")
		}
		build := &provider.Build{Result: provider.ParseResult(classifyFlags.result)}
		var previous []*provider.Build
		for _, r := range classifyFlags.history {
			previous = append(previous, &provider.Build{Result: provider.ParseResult(strings.TrimSpace(r))})
		}
		return build, previous, nil
	}

	if ctx == nil {
		ctx = context.Background()
	}
	snap, err := provider.LoadSnapshot(classifyFlags.snapshot)
	if err != nil {
		return nil, nil, err
	}
	build, err := snap.CurrentBuild()
	if err != nil {
		return nil, nil, err
	}
	previous, err := snap.Source().PreviousBuilds(ctx, build.Project, build.Number)
	if err != nil {
		return nil, nil, err
	}
	return build, previous, nil
}

var artifactsFlags struct {
	workspace string
	buildID   string
}

var artifactsCmd = &cobra.Command{
	Use:   "artifacts",
	Short: "List the artifacts the configured artifact spec resolves to",
	RunE: func(cmd *cobra.Command, args []string) error {
		if appConfig.Artifact == nil {
			return fmt.Errorf("no artifact spec configured (artifact.directory and artifact.name_pattern)")
		}
		descriptors := artifact.Resolve(*appConfig.Artifact, artifactsFlags.workspace, artifactsFlags.buildID, log)
		fmt.Print(report.NewRenderer(0).Artifacts(descriptors))
		return nil
	},
}
