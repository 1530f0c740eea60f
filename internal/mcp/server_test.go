package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/tdkit/tdselect/internal/rank"
	"github.com/tdkit/tdselect/internal/report"
)

const bankRoot = "../scan/testdata/bank"

func newServer(t *testing.T) *Server {
	t.Helper()
	s, err := New(Config{Logger: slog.New(slog.NewTextHandler(io.Discard, nil)), Version: "test"})
	require.NoError(t, err)
	return s
}

func TestToolSchemaRegistry(t *testing.T) {
	for _, name := range AllTools {
		schema, ok := toolSchemaRegistry[name]
		require.True(t, ok, name)
		assert.Equal(t, name, schema.Name)
		assert.NotEmpty(t, schema.Description)
	}
	assert.Len(t, toolSchemaRegistry, len(AllTools))

	var required []string
	for _, p := range toolSchemaRegistry[ToolAnalyze].Parameters {
		if p.Required {
			required = append(required, p.Name)
		}
	}
	assert.Equal(t, []string{"input"}, required)
}

func TestListTools(t *testing.T) {
	s := newServer(t)
	want := append([]string(nil), AllTools...)
	sort.Strings(want)
	assert.Equal(t, want, s.ListTools())
	assert.Len(t, s.GetToolSchemas(), 2)
}

func TestCallToolModes(t *testing.T) {
	s := newServer(t)
	out, err := s.CallTool(context.Background(), ToolModes, nil)
	require.NoError(t, err)

	var doc struct {
		Modes []rank.Info `yaml:"modes"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Modes, 4)
	assert.Equal(t, "business", doc.Modes[0].Name)
	assert.Equal(t, 0.35, doc.Modes[0].Weights.TestSignal)
	assert.True(t, doc.Modes[0].ExcludesAccessors)
}

func TestCallToolAnalyze(t *testing.T) {
	s := newServer(t)
	out, err := s.CallTool(context.Background(), ToolAnalyze, map[string]interface{}{
		"input":  bankRoot,
		"top":    float64(3),
		"mode":   "algorithmic",
		"format": "json",
	})
	require.NoError(t, err)

	var rep report.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, "algorithmic", rep.Mode)
	assert.LessOrEqual(t, len(rep.Methods), 3)
	assert.NotEmpty(t, rep.Methods)
}

func TestCallToolErrors(t *testing.T) {
	s := newServer(t)

	_, err := s.CallTool(context.Background(), ToolAnalyze, map[string]interface{}{})
	assert.Error(t, err)

	_, err = s.CallTool(context.Background(), ToolAnalyze, map[string]interface{}{"input": bankRoot, "mode": "bogus"})
	assert.Error(t, err)

	_, err = s.CallTool(context.Background(), "cx_show", nil)
	assert.Error(t, err)
}
