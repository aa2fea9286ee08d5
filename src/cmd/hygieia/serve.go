package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"hygieia-reporter/src/broker"
	"hygieia-reporter/src/collectorstub"
	"hygieia-reporter/src/contracts"
	"hygieia-reporter/src/logger"
	"hygieia-reporter/src/mcp"
	"hygieia-reporter/src/metrics"
	"hygieia-reporter/src/tui"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var collectorFlags struct {
	addr  string
	token string
}

var collectorCmd = &cobra.Command{
	Use:   "collector",
	Short: "Run a stub collector API for local testing",
	Long: `Run an HTTP server that accepts the collector API requests under /api,
answers 201 with a generated id and logs every payload.

Point a reporter at it with HYGIEIA_API_URL=http://localhost:8080/api.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		opts := []collectorstub.Option{collectorstub.WithLogger(log)}
		if collectorFlags.token != "" {
			opts = append(opts, collectorstub.WithToken(collectorFlags.token))
		}

		var metricsServer *http.Server
		if appConfig.Metrics.Enabled {
			rec := metrics.NewPrometheusRecorder(prom.NewRegistry())
			opts = append(opts, collectorstub.WithMetrics(rec))

			mux := http.NewServeMux()
			mux.Handle("/metrics", rec.HTTPHandler())
			metricsServer = &http.Server{Addr: appConfig.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
			go func() {
				if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("Metrics server failed: %v", err)
				}
			}()
			log.Info("Serving metrics on %s/metrics", appConfig.Metrics.Addr)
		}

		stub := collectorstub.New(collectorFlags.addr, opts...)
		errCh := make(chan error, 1)
		go func() { errCh <- stub.Start() }()
		log.Info("Stub collector listening on %s/api", collectorFlags.addr)

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		log.Info("Shutdown signal received, stopping collector...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if metricsServer != nil {
			_ = metricsServer.Shutdown(shutdownCtx)
		}
		return stub.Shutdown(shutdownCtx)
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the reporter's preview tools over MCP (stdio)",
	RunE: func(cmd *cobra.Command, args []string) error {
		// stdout carries the protocol.
		log = logger.NewSilentLogger()

		var pinger mcp.Pinger
		if client, err := newClient(); err == nil {
			pinger = client
		}
		return mcp.NewServer(appConfig, pinger, version).Run()
	},
}

var watchFlags struct {
	group string
	plain bool
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow build events mirrored onto the broker",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(appConfig.Mirror.Brokers) == 0 {
			return fmt.Errorf("watch needs mirror.brokers (HYGIEIA_MIRROR_BROKERS)")
		}
		topic := appConfig.Mirror.Topic
		if topic == "" {
			topic = contracts.TopicBuilds
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if !watchFlags.plain {
			// the screen belongs to the TUI.
			log = logger.NewSilentLogger()
		}

		brk, err := broker.NewRedpandaBroker(appConfig.Mirror.Brokers, log)
		if err != nil {
			return fmt.Errorf("failed to create broker: %w", err)
		}
		defer brk.Close()

		messages, err := brk.Subscribe(ctx, topic, watchFlags.group)
		if err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
		}
		if !watchFlags.plain {
			_, err := tea.NewProgram(tui.NewModel(topic, messages), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			if errors.Is(err, tea.ErrProgramKilled) {
				return nil
			}
			return err
		}

		log.Info("Watching %s", topic)
		for {
			select {
			case <-ctx.Done():
				return nil
			case msg, ok := <-messages:
				if !ok {
					return nil
				}
				fmt.Println(describeEvent(msg))
			}
		}
	},
}

func init() {
	collectorCmd.Flags().StringVar(&collectorFlags.addr, "addr", ":8080", "listen address")
	collectorCmd.Flags().StringVar(&collectorFlags.token, "token", "", "require this API token")

	watchCmd.Flags().StringVar(&watchFlags.group, "group", "hygieia-watch", "consumer group")
	watchCmd.Flags().BoolVar(&watchFlags.plain, "plain", false, "print one line per event instead of the interactive view")
}

// describeEvent renders one mirrored build event as a single line.
func describeEvent(msg broker.Message) string {
	var event contracts.BuildEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Sprintf("%s: undecodable message at offset %d: %v", msg.Topic, msg.Offset, err)
	}
	return fmt.Sprintf("%s #%s %s (%d commits) %s", event.JobName, event.Number, event.BuildStatus, len(event.SourceChangeSet), event.BuildURL)
}
