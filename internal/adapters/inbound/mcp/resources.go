package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/reductor/reductor/internal/adapters/outbound/history"
	"github.com/reductor/reductor/internal/adapters/outbound/store"
	"github.com/reductor/reductor/internal/domain"
)

// registerResources registers all Reductor MCP resources on the given server.
func registerResources(s *server.MCPServer, opts Options) {
	// 1. reductor://history - past run metrics
	s.AddResource(
		mcplib.NewResource(
			"reductor://history",
			"Run History",
			mcplib.WithResourceDescription("Metrics of past redundancy analyses for this project"),
			mcplib.WithMIMEType("application/json"),
		),
		handleHistoryResource(opts),
	)

	// 2. reductor://runs/{id} - stored counts for a run (resource template)
	s.AddResourceTemplate(
		mcplib.NewResourceTemplate(
			"reductor://runs/{id}",
			"Run Info",
			mcplib.WithTemplateDescription("Stored test and coverage counts for a specific run"),
			mcplib.WithTemplateMIMEType("application/json"),
		),
		handleRunResource(opts),
	)
}

func handleHistoryResource(opts Options) server.ResourceHandlerFunc {
	return func(_ context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		entries, err := history.New().Load(opts.ProjectPath)
		if err != nil {
			return nil, fmt.Errorf("loading history: %w", err)
		}
		if entries == nil {
			entries = []domain.RunEntry{}
		}
		return jsonResourceContents(request.Params.URI, entries)
	}
}

func handleRunResource(opts Options) server.ResourceTemplateHandlerFunc {
	return func(ctx context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		runID := request.Params.URI[len("reductor://runs/"):]

		reader, err := store.Open(opts.DBPath)
		if err != nil {
			return nil, fmt.Errorf("opening store: %w", err)
		}
		defer reader.Close()

		info, err := reader.Info(ctx, runID)
		if err != nil {
			return nil, fmt.Errorf("reading run: %w", err)
		}
		return jsonResourceContents(request.Params.URI, info)
	}
}

func jsonResourceContents(uri string, v interface{}) ([]mcplib.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling resource: %w", err)
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
