package agent

import (
	"context"

	"github.com/tessellate-ai/agentools/pkg/llms"
	"github.com/tessellate-ai/agentools/tools"
)

// Callback observes loop progress. Implementations must not block: the
// notifications are informational and never affect control flow.
type Callback interface {
	OnRunStart(ctx context.Context, agent *Agent, task string)
	OnRunEnd(ctx context.Context, agent *Agent, task string, res *RunResult)
	OnRunError(ctx context.Context, agent *Agent, task string, err error)

	OnModelCallStart(ctx context.Context, agent *Agent, model llms.Model, payload []llms.Message)
	OnModelCallEnd(ctx context.Context, agent *Agent, model llms.Model, resp *llms.ContentResponse)

	OnToolStart(ctx context.Context, tool *tools.Tool, agentName, input string)
	OnToolEnd(ctx context.Context, tool *tools.Tool, agentName, input, output string)
	OnToolError(ctx context.Context, tool *tools.Tool, agentName, input string, err error)
	OnToolNotFound(ctx context.Context, agent *Agent, name string)
}
