package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/reductor/reductor/internal/adapters/outbound/clusterproc"
	configloader "github.com/reductor/reductor/internal/adapters/outbound/config"
	"github.com/reductor/reductor/internal/adapters/outbound/gitinfo"
	"github.com/reductor/reductor/internal/adapters/outbound/history"
	"github.com/reductor/reductor/internal/adapters/outbound/store"
	"github.com/reductor/reductor/internal/application"
	"github.com/reductor/reductor/internal/domain"
)

// registerTools registers all Reductor MCP tools on the given server.
func registerTools(s *server.MCPServer, opts Options) {
	// 1. reductor_analyze
	s.AddTool(
		mcplib.NewTool("reductor_analyze",
			mcplib.WithDescription("Run the full redundancy analysis for a test run and return findings as JSON"),
			mcplib.WithString("run_id",
				mcplib.Required(),
				mcplib.Description("Identifier of the test run in the store"),
			),
			mcplib.WithString("algorithm",
				mcplib.Description("Clustering algorithm: kmeans, dbscan, hierarchical (default dbscan)"),
			),
		),
		handleAnalyze(opts),
	)

	// 2. reductor_run_info
	s.AddTool(
		mcplib.NewTool("reductor_run_info",
			mcplib.WithDescription("Return the stored counts for a test run without analyzing it"),
			mcplib.WithString("run_id",
				mcplib.Required(),
				mcplib.Description("Identifier of the test run in the store"),
			),
		),
		handleRunInfo(opts),
	)

	// 3. reductor_history
	s.AddTool(
		mcplib.NewTool("reductor_history",
			mcplib.WithDescription("Return past run metrics for this project"),
		),
		handleHistory(opts),
	)
}

// newService wires the standard adapter set for one tool call.
func newService(opts Options) (*application.RunService, *store.SQLiteReader, error) {
	reader, err := store.Open(opts.DBPath)
	if err != nil {
		return nil, nil, err
	}
	svc := application.NewRunService(
		reader,
		clusterproc.New(strings.Fields(opts.ClusterCmd)),
		gitinfo.New(),
		history.New(),
		zerolog.Nop(),
	)
	return svc, reader, nil
}

func handleAnalyze(opts Options) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		runID, err := request.RequireString("run_id")
		if err != nil {
			return errorResult(err.Error()), nil
		}

		algorithm := domain.AlgorithmDBSCAN
		if alg := request.GetString("algorithm", ""); alg != "" {
			algorithm = domain.Algorithm(alg)
		}

		cfg, err := configloader.New().Load(opts.ProjectPath, domain.DefaultEngineConfig(algorithm))
		if err != nil {
			return errorResult(fmt.Sprintf("loading config: %v", err)), nil
		}

		svc, reader, err := newService(opts)
		if err != nil {
			return errorResult(fmt.Sprintf("opening store: %v", err)), nil
		}
		defer reader.Close()

		result := svc.AnalyzeRun(ctx, runID, opts.ProjectPath, cfg)
		if !result.Success {
			return errorResult(fmt.Sprintf("analysis failed: %s", strings.Join(result.Errors, "; "))), nil
		}
		return jsonResult(result)
	}
}

func handleRunInfo(opts Options) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		runID, err := request.RequireString("run_id")
		if err != nil {
			return errorResult(err.Error()), nil
		}

		reader, err := store.Open(opts.DBPath)
		if err != nil {
			return errorResult(fmt.Sprintf("opening store: %v", err)), nil
		}
		defer reader.Close()

		info, err := reader.Info(ctx, runID)
		if err != nil {
			return errorResult(fmt.Sprintf("reading run: %v", err)), nil
		}
		return jsonResult(info)
	}
}

func handleHistory(opts Options) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		entries, err := history.New().Load(opts.ProjectPath)
		if err != nil {
			return errorResult(fmt.Sprintf("loading history: %v", err)), nil
		}
		if entries == nil {
			entries = []domain.RunEntry{}
		}
		return jsonResult(entries)
	}
}

// jsonResult marshals v to JSON and returns it as a text content result.
func jsonResult(v interface{}) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
