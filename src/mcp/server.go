package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"hygieia-reporter/src/artifact"
	"hygieia-reporter/src/config"
	"hygieia-reporter/src/logger"
	"hygieia-reporter/src/notify"
	"hygieia-reporter/src/provider"
	"hygieia-reporter/src/scm"
	"hygieia-reporter/src/status"
)

// Pinger checks collector connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the MCP server for the reporter.
type Server struct {
	mcpServer *server.MCPServer
	store     PreviewStore
	cfg       *config.Config
	collector Pinger
	log       logger.Logger
}

// NewServer creates a new MCP server. collector may be nil, in which case
// ping_collector reports that no collector is configured.
func NewServer(cfg *config.Config, collector Pinger, version string) *Server {
	s := server.NewMCPServer(
		"hygieia-reporter",
		version,
		server.WithToolCapabilities(true),
	)

	srv := &Server{
		mcpServer: s,
		store:     NewInMemoryStore(50),
		cfg:       cfg,
		collector: collector,
		log:       logger.NewSilentLogger(),
	}
	srv.registerTools()

	return srv
}

// registerTools registers all available tools.
func (s *Server) registerTools() {
	previewTool := mcp.NewTool("preview_build_event",
		mcp.WithDescription("Compute the build record, commit list, status message and artifacts that would be published for a build, without contacting the collector. Returns a compact manifest; use get_preview_details for the full payloads."),
		mcp.WithString("snapshot",
			mcp.Required(),
			mcp.Description("Path to a YAML or JSON build snapshot file"),
		),
		mcp.WithString("workspace",
			mcp.Description("Workspace root for artifact resolution (default: current directory)"),
		),
		mcp.WithBoolean("complete",
			mcp.Description("Preview the completion event instead of the start event (default: true)"),
		),
	)

	detailsTool := mcp.NewTool("get_preview_details",
		mcp.WithDescription("Get one section of a preview produced by preview_build_event."),
		mcp.WithString("preview_id",
			mcp.Required(),
			mcp.Description("Preview ID from preview_build_event"),
		),
		mcp.WithString("section",
			mcp.Description("event, commits or artifacts (default: event)"),
			mcp.Enum("event", "commits", "artifacts"),
		),
	)

	classifyTool := mcp.NewTool("classify_build",
		mcp.WithDescription("Classify a build result against earlier results, e.g. FAILURE after FAILURE is 'Still Failing'. Aborted builds in the history are skipped."),
		mcp.WithString("result",
			mcp.Required(),
			mcp.Description("Result of the build: SUCCESS, UNSTABLE, FAILURE, ABORTED or NOT_BUILT"),
		),
		mcp.WithArray("history",
			mcp.Description("Results of earlier builds, most recent first"),
			mcp.WithStringItems(),
		),
		mcp.WithBoolean("building",
			mcp.Description("Whether the build is still running"),
		),
	)

	pingTool := mcp.NewTool("ping_collector",
		mcp.WithDescription("Check that the configured collector API answers GET /ping."),
	)

	s.mcpServer.AddTool(previewTool, s.handlePreviewBuildEvent)
	s.mcpServer.AddTool(detailsTool, s.handleGetPreviewDetails)
	s.mcpServer.AddTool(classifyTool, s.handleClassifyBuild)
	s.mcpServer.AddTool(pingTool, s.handlePingCollector)
}

// Run starts the MCP server on stdio.
func (s *Server) Run() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) handlePreviewBuildEvent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := request.GetString("snapshot", "")
	if path == "" {
		return mcp.NewToolResultError("snapshot parameter is required"), nil
	}
	workspace := request.GetString("workspace", ".")
	complete := request.GetBool("complete", true)

	snap, err := provider.LoadSnapshot(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load snapshot: %v", err)), nil
	}

	preview, err := s.buildPreview(ctx, snap, workspace, complete)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.store.Store(preview)

	return jsonResult(ToManifest(preview))
}

func (s *Server) handleGetPreviewDetails(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetString("preview_id", "")
	if id == "" {
		return mcp.NewToolResultError("preview_id parameter is required"), nil
	}

	preview, found := s.store.Get(id)
	if !found {
		return mcp.NewToolResultError(fmt.Sprintf("preview not found: %s", id)), nil
	}

	switch section := request.GetString("section", "event"); section {
	case "event":
		return jsonResult(preview.Event)
	case "commits":
		return jsonResult(preview.Event.SourceChangeSet)
	case "artifacts":
		return jsonResult(preview.Artifacts)
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown section %q", section)), nil
	}
}

func (s *Server) handleClassifyBuild(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result := request.GetString("result", "")
	if result == "" {
		return mcp.NewToolResultError("result parameter is required"), nil
	}

	build := &provider.Build{
		Result:   provider.ParseResult(result),
		Building: request.GetBool("building", false),
	}
	var previous []*provider.Build
	for _, r := range request.GetStringSlice("history", nil) {
		previous = append(previous, &provider.Build{Result: provider.ParseResult(r)})
	}

	label := status.Classify(build, previous)
	return jsonResult(map[string]string{
		"label":              string(label),
		"display":            label.Display(),
		"effective_previous": status.EffectivePrevious(previous).String(),
	})
}

func (s *Server) handlePingCollector(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.collector == nil {
		return mcp.NewToolResultError(provider.WrapError(provider.ErrNoCollectorEndpoint).Error()), nil
	}
	if err := s.collector.Ping(ctx); err != nil {
		return mcp.NewToolResultError(provider.WrapError(err).Error()), nil
	}
	return mcp.NewToolResultText("collector is reachable"), nil
}

// buildPreview runs the notifier's computations for the snapshot's current
// build without publishing anything.
func (s *Server) buildPreview(ctx context.Context, snap *provider.Snapshot, workspace string, complete bool) (*Preview, error) {
	build, err := snap.CurrentBuild()
	if err != nil {
		return nil, err
	}
	src := snap.Source()

	commits := scm.CommitsFor(ctx, src, build, s.log)
	var niceName string
	if s.cfg != nil {
		niceName = s.cfg.NiceName
	}
	event := notify.NewBuildEvent(build, commits, niceName, notify.InstanceURL(build, snap.Env), complete)

	label := status.Starting
	var lastSuccess *provider.Build
	if complete {
		previous, err := src.PreviousBuilds(ctx, build.Project, build.Number)
		if err != nil {
			return nil, fmt.Errorf("failed to load history: %w", err)
		}
		label = status.Classify(build, previous)
		lastSuccess = status.LastSuccessful(previous)
	}

	preview := &Preview{
		ID:            uuid.NewString(),
		Event:         event,
		Status:        string(label),
		StatusMessage: status.Message(label, build, lastSuccess),
		Artifacts:     []artifact.Descriptor{},
	}
	if complete && s.cfg != nil && s.cfg.Artifact != nil && build.Result.Publishable() {
		preview.Artifacts = artifact.Resolve(*s.cfg.Artifact, workspace, "<build id>", s.log)
	}
	return preview, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
