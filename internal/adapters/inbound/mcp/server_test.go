package mcp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mcpadapter "github.com/reductor/reductor/internal/adapters/inbound/mcp"
)

func TestNewReductorMCPServer(t *testing.T) {
	s := mcpadapter.NewReductorMCPServer(mcpadapter.Options{
		DBPath:      ".reductor/runs.db",
		ProjectPath: ".",
	})
	require.NotNil(t, s)
}

func TestMCPServerHasTools(t *testing.T) {
	s := mcpadapter.NewReductorMCPServer(mcpadapter.Options{ProjectPath: "."})
	require.NotNil(t, s)

	tools := s.ListTools()
	require.NotNil(t, tools)

	expectedTools := []string{
		"reductor_analyze",
		"reductor_run_info",
		"reductor_history",
	}

	for _, name := range expectedTools {
		_, exists := tools[name]
		assert.True(t, exists, "tool %q should be registered", name)
	}

	assert.Len(t, tools, len(expectedTools), "should have exactly %d tools", len(expectedTools))
}
