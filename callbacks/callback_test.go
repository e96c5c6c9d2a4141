package callbacks_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tessellate-ai/agentools/agent"
	"github.com/tessellate-ai/agentools/callbacks"
	"github.com/tessellate-ai/agentools/mocks/mockllms"
	"github.com/tessellate-ai/agentools/pkg/llms"
	"github.com/tessellate-ai/agentools/pkg/schema"
	"github.com/tessellate-ai/agentools/tools"
	"go.uber.org/mock/gomock"
)

type recorder struct {
	callbacks.Noop
	runStarts  int
	runEnds    int
	toolStarts int
}

func (r *recorder) OnRunStart(ctx context.Context, a *agent.Agent, task string) {
	r.runStarts++
}

func (r *recorder) OnRunEnd(ctx context.Context, a *agent.Agent, task string, res *agent.RunResult) {
	r.runEnds++
}

func (r *recorder) OnToolStart(ctx context.Context, tool *tools.Tool, agentName, input string) {
	r.toolStarts++
}

func testAgent(t *testing.T) *agent.Agent {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockLLM := mockllms.NewMockModel(ctrl)
	mockLLM.EXPECT().GetName().Return("test-model").AnyTimes()
	mockLLM.EXPECT().GetProviderType().Return(llms.ProviderOpenAI).AnyTimes()

	registry, err := tools.NewRegistry()
	require.NoError(t, err)
	a, err := agent.New(mockLLM, registry, agent.WithName("tester"))
	require.NoError(t, err)
	return a
}

func testTool(t *testing.T) *tools.Tool {
	t.Helper()
	def := schema.MustDefinition(schema.Field{Name: "x", Type: schema.String})
	tool, err := tools.New(tools.Spec{
		Name:        "echo",
		Description: "Echoes.",
		Input:       def,
		Output:      def,
	}, tools.HandlerFunc(func(ctx context.Context, args map[string]any) (map[string]any, error) {
		return map[string]any{}, nil
	}))
	require.NoError(t, err)
	return tool
}

func TestFanout(t *testing.T) {
	ctx := context.Background()
	a := testAgent(t)
	tool := testTool(t)

	first := &recorder{}
	second := &recorder{}
	fanout := callbacks.NewFanout(first)
	fanout.Add(second)

	fanout.OnRunStart(ctx, a, "task")
	fanout.OnRunEnd(ctx, a, "task", &agent.RunResult{State: agent.StateTerminatedSuccess})
	fanout.OnToolStart(ctx, tool, a.Name(), `{}`)
	fanout.OnToolEnd(ctx, tool, a.Name(), `{}`, `{}`)
	fanout.OnToolError(ctx, tool, a.Name(), `{}`, errors.New("boom"))
	fanout.OnToolNotFound(ctx, a, "missing")

	for _, r := range []*recorder{first, second} {
		assert.Equal(t, 1, r.runStarts)
		assert.Equal(t, 1, r.runEnds)
		assert.Equal(t, 1, r.toolStarts)
	}
}

func TestPrinter(t *testing.T) {
	ctx := context.Background()
	a := testAgent(t)
	tool := testTool(t)

	var buf bytes.Buffer
	p := callbacks.NewPrinter(&buf)

	p.OnRunStart(ctx, a, "research the company")
	p.OnToolStart(ctx, tool, a.Name(), `{"x":"1"}`)
	p.OnToolEnd(ctx, tool, a.Name(), `{"x":"1"}`, `{"value":{}}`)
	p.OnToolError(ctx, tool, a.Name(), `{"x":"1"}`, errors.New("boom"))
	p.OnToolNotFound(ctx, a, "missing")
	p.OnRunEnd(ctx, a, "research the company", &agent.RunResult{
		State: agent.StateTerminatedSuccess,
		Turns: 2,
	})
	p.OnRunError(ctx, a, "research the company", errors.New("model unavailable"))

	out := buf.String()
	assert.Contains(t, out, "[tester] run started: research the company")
	assert.Contains(t, out, "tool echo invoked")
	assert.Contains(t, out, "tool echo failed: boom")
	assert.Contains(t, out, "tool not found: missing")
	assert.Contains(t, out, "state=terminated_success turns=2")
	assert.Contains(t, out, "run failed: model unavailable")
}

func TestNoop(t *testing.T) {
	// Noop satisfies the full interface and does nothing
	var cb agent.Callback = callbacks.NewNoop()
	cb.OnRunStart(context.Background(), nil, "task")
	cb.OnToolNotFound(context.Background(), nil, "missing")
}
