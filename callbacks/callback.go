// Package callbacks provides ready-made progress observers for the agent loop.
package callbacks

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/effective-security/x/slices"
	"github.com/effective-security/xlog"
	"github.com/tessellate-ai/agentools/agent"
	"github.com/tessellate-ai/agentools/pkg/llms"
	"github.com/tessellate-ai/agentools/pkg/llmutils"
	"github.com/tessellate-ai/agentools/tools"
)

var logger = xlog.NewPackageLogger("github.com/tessellate-ai/agentools", "callbacks")

// ensure that the callbacks implement the correct interface
var (
	_ agent.Callback = (*Noop)(nil)
	_ agent.Callback = (*Printer)(nil)
	_ agent.Callback = (*Logger)(nil)
	_ agent.Callback = (*Fanout)(nil)
)

// Fanout forwards events to multiple callbacks.
type Fanout struct {
	callbacks []agent.Callback
}

func NewFanout(callbacks ...agent.Callback) *Fanout {
	return &Fanout{callbacks: callbacks}
}

func (l *Fanout) Add(callback agent.Callback) {
	l.callbacks = append(l.callbacks, callback)
}

func (l *Fanout) OnRunStart(ctx context.Context, a *agent.Agent, task string) {
	for _, cb := range l.callbacks {
		cb.OnRunStart(ctx, a, task)
	}
}

func (l *Fanout) OnRunEnd(ctx context.Context, a *agent.Agent, task string, res *agent.RunResult) {
	for _, cb := range l.callbacks {
		cb.OnRunEnd(ctx, a, task, res)
	}
}

func (l *Fanout) OnRunError(ctx context.Context, a *agent.Agent, task string, err error) {
	for _, cb := range l.callbacks {
		cb.OnRunError(ctx, a, task, err)
	}
}

func (l *Fanout) OnModelCallStart(ctx context.Context, a *agent.Agent, model llms.Model, payload []llms.Message) {
	for _, cb := range l.callbacks {
		cb.OnModelCallStart(ctx, a, model, payload)
	}
}

func (l *Fanout) OnModelCallEnd(ctx context.Context, a *agent.Agent, model llms.Model, resp *llms.ContentResponse) {
	for _, cb := range l.callbacks {
		cb.OnModelCallEnd(ctx, a, model, resp)
	}
}

func (l *Fanout) OnToolStart(ctx context.Context, tool *tools.Tool, agentName, input string) {
	for _, cb := range l.callbacks {
		cb.OnToolStart(ctx, tool, agentName, input)
	}
}

func (l *Fanout) OnToolEnd(ctx context.Context, tool *tools.Tool, agentName, input, output string) {
	for _, cb := range l.callbacks {
		cb.OnToolEnd(ctx, tool, agentName, input, output)
	}
}

func (l *Fanout) OnToolError(ctx context.Context, tool *tools.Tool, agentName, input string, err error) {
	for _, cb := range l.callbacks {
		cb.OnToolError(ctx, tool, agentName, input, err)
	}
}

func (l *Fanout) OnToolNotFound(ctx context.Context, a *agent.Agent, name string) {
	for _, cb := range l.callbacks {
		cb.OnToolNotFound(ctx, a, name)
	}
}

// Noop does nothing.
type Noop struct{}

func NewNoop() *Noop {
	return &Noop{}
}

func (l *Noop) OnRunStart(ctx context.Context, a *agent.Agent, task string)                      {}
func (l *Noop) OnRunEnd(ctx context.Context, a *agent.Agent, task string, res *agent.RunResult) {}
func (l *Noop) OnRunError(ctx context.Context, a *agent.Agent, task string, err error)          {}
func (l *Noop) OnModelCallStart(ctx context.Context, a *agent.Agent, model llms.Model, payload []llms.Message) {
}
func (l *Noop) OnModelCallEnd(ctx context.Context, a *agent.Agent, model llms.Model, resp *llms.ContentResponse) {
}
func (l *Noop) OnToolStart(ctx context.Context, tool *tools.Tool, agentName, input string) {}
func (l *Noop) OnToolEnd(ctx context.Context, tool *tools.Tool, agentName, input, output string) {
}
func (l *Noop) OnToolError(ctx context.Context, tool *tools.Tool, agentName, input string, err error) {
}
func (l *Noop) OnToolNotFound(ctx context.Context, a *agent.Agent, name string) {}

// Printer writes human-readable progress lines to a writer. Useful for
// CLI entry points.
type Printer struct {
	mu  sync.Mutex
	out io.Writer
}

func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

func (l *Printer) printf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, format+"\n", args...)
}

func (l *Printer) OnRunStart(ctx context.Context, a *agent.Agent, task string) {
	l.printf("[%s] run started: %s", a.Name(), slices.StringUpto(task, 120))
}

func (l *Printer) OnRunEnd(ctx context.Context, a *agent.Agent, task string, res *agent.RunResult) {
	l.printf("[%s] run finished: state=%s turns=%d", a.Name(), res.State, res.Turns)
}

func (l *Printer) OnRunError(ctx context.Context, a *agent.Agent, task string, err error) {
	l.printf("[%s] run failed: %s", a.Name(), err.Error())
}

func (l *Printer) OnModelCallStart(ctx context.Context, a *agent.Agent, model llms.Model, payload []llms.Message) {
	l.printf("[%s] model call: %s, %d messages", a.Name(), model.GetName(), len(payload))
}

func (l *Printer) OnModelCallEnd(ctx context.Context, a *agent.Agent, model llms.Model, resp *llms.ContentResponse) {
}

func (l *Printer) OnToolStart(ctx context.Context, tool *tools.Tool, agentName, input string) {
	l.printf("[%s] tool %s invoked with %s", agentName, tool.Name(), slices.StringUpto(input, 120))
}

func (l *Printer) OnToolEnd(ctx context.Context, tool *tools.Tool, agentName, input, output string) {
	l.printf("[%s] tool %s returned %d bytes", agentName, tool.Name(), len(output))
}

func (l *Printer) OnToolError(ctx context.Context, tool *tools.Tool, agentName, input string, err error) {
	l.printf("[%s] tool %s failed: %s", agentName, tool.Name(), err.Error())
}

func (l *Printer) OnToolNotFound(ctx context.Context, a *agent.Agent, name string) {
	l.printf("[%s] tool not found: %s", a.Name(), name)
}

// Logger emits progress through the package logger.
type Logger struct{}

func NewLogger() *Logger {
	return &Logger{}
}

func (l *Logger) OnRunStart(ctx context.Context, a *agent.Agent, task string) {
	logger.ContextKV(ctx, xlog.DEBUG,
		"agent", a.Name(),
		"status", "run_start",
		"task", slices.StringUpto(task, 64),
	)
}

func (l *Logger) OnRunEnd(ctx context.Context, a *agent.Agent, task string, res *agent.RunResult) {
	logger.ContextKV(ctx, xlog.INFO,
		"agent", a.Name(),
		"status", "run_end",
		"state", res.State.String(),
		"turns", res.Turns,
	)
}

func (l *Logger) OnRunError(ctx context.Context, a *agent.Agent, task string, err error) {
	logger.ContextKV(ctx, xlog.ERROR,
		"agent", a.Name(),
		"status", "run_error",
		"err", err.Error(),
	)
}

func (l *Logger) OnModelCallStart(ctx context.Context, a *agent.Agent, model llms.Model, payload []llms.Message) {
	logger.ContextKV(ctx, xlog.DEBUG,
		"agent", a.Name(),
		"status", "model_call",
		"model", model.GetName(),
		"messages", len(payload),
		"question", slices.StringUpto(llmutils.FindLastUserQuestion(payload), 64),
	)
}

func (l *Logger) OnModelCallEnd(ctx context.Context, a *agent.Agent, model llms.Model, resp *llms.ContentResponse) {
	logger.ContextKV(ctx, xlog.DEBUG,
		"agent", a.Name(),
		"status", "model_response",
		"model", model.GetName(),
		"choices", len(resp.Choices),
	)
}

func (l *Logger) OnToolStart(ctx context.Context, tool *tools.Tool, agentName, input string) {
	logger.ContextKV(ctx, xlog.DEBUG,
		"agent", agentName,
		"status", "tool_start",
		"tool", tool.Name(),
		"input", slices.StringUpto(input, 64),
	)
}

func (l *Logger) OnToolEnd(ctx context.Context, tool *tools.Tool, agentName, input, output string) {
	logger.ContextKV(ctx, xlog.DEBUG,
		"agent", agentName,
		"status", "tool_end",
		"tool", tool.Name(),
		"output_size", len(output),
	)
}

func (l *Logger) OnToolError(ctx context.Context, tool *tools.Tool, agentName, input string, err error) {
	logger.ContextKV(ctx, xlog.WARNING,
		"agent", agentName,
		"status", "tool_error",
		"tool", tool.Name(),
		"err", err.Error(),
	)
}

func (l *Logger) OnToolNotFound(ctx context.Context, a *agent.Agent, name string) {
	logger.ContextKV(ctx, xlog.WARNING,
		"agent", a.Name(),
		"status", "tool_not_found",
		"tool", name,
	)
}
