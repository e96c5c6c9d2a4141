// Package agent implements the bounded tool-use loop: it owns a transcript
// and a tool registry, alternates model calls with tool dispatch, and
// terminates on a final answer or the configured turn bound.
package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/slices"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
	"github.com/google/uuid"
	"github.com/tessellate-ai/agentools/chatmodel"
	"github.com/tessellate-ai/agentools/pkg/llms"
	"github.com/tessellate-ai/agentools/pkg/llmutils"
	"github.com/tessellate-ai/agentools/pkg/metricskey"
	"github.com/tessellate-ai/agentools/tools"
)

var logger = xlog.NewPackageLogger("github.com/tessellate-ai/agentools", "agent")

// State is the loop controller state.
type State int

const (
	// StateAwaitingModel means the controller is about to issue a model call.
	StateAwaitingModel State = iota
	// StateDispatchingTools means tool calls from the last model turn are being resolved.
	StateDispatchingTools
	// StateTerminatedSuccess means the model produced a final answer.
	StateTerminatedSuccess
	// StateTerminatedLimit means the turn bound was reached without a final answer.
	StateTerminatedLimit
)

func (s State) String() string {
	switch s {
	case StateAwaitingModel:
		return "awaiting_model"
	case StateDispatchingTools:
		return "dispatching_tools"
	case StateTerminatedSuccess:
		return "terminated_success"
	case StateTerminatedLimit:
		return "terminated_limit"
	default:
		return "unknown"
	}
}

// RunResult is the outcome of one agent run. On the turn bound FinalText
// carries a best-effort answer annotated as incomplete; on success it is the
// final answer text, which may be empty if the model returned no content.
type RunResult struct {
	State     State
	FinalText string
	// Turns is the number of model calls issued.
	Turns      int
	Transcript []llms.Message
}

// Agent drives a bounded multi-turn tool-use conversation. One Agent may
// serve concurrent runs: the registry is read-only and each run owns its
// own transcript.
type Agent struct {
	llm      llms.Model
	registry *tools.Registry
	cfg      *Config
	name     string
}

// New creates an Agent. Configuration is validated eagerly: a non-positive
// turn bound, a nil model or a nil registry are construction errors, not
// run-time surprises.
func New(model llms.Model, registry *tools.Registry, opts ...Option) (*Agent, error) {
	if model == nil {
		return nil, errors.New("agent: model is required")
	}
	if registry == nil {
		return nil, errors.New("agent: registry is required")
	}
	cfg := NewConfig(opts...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if registry.Len() > 0 && !model.GetProviderType().Supports(llms.CapabilityFunctionCalling) {
		return nil, errors.Newf("agent: provider %s does not support function calling", model.GetProviderType())
	}
	return &Agent{
		llm:      model,
		registry: registry,
		cfg:      cfg,
		name:     cfg.Name,
	}, nil
}

// Name returns the agent name used in logs and metrics.
func (a *Agent) Name() string {
	return a.name
}

// Tools returns the registry the agent dispatches to.
func (a *Agent) Tools() *tools.Registry {
	return a.registry
}

// Run executes the loop for one task and returns the final answer. It is
// synchronous; the two suspension points are the model call and tool
// executions, both governed by ctx. Tool failures never escape: they are
// normalized into transcript content. The only propagating failure is the
// model channel itself.
func (a *Agent) Run(ctx context.Context, task string) (*RunResult, error) {
	if task == "" {
		return nil, errors.New("agent: task is required")
	}
	if chatmodel.GetRunID(ctx) == "" {
		ctx = chatmodel.WithRunID(ctx, "")
	}

	started := time.Now()
	defer metricskey.PerfAgentRun.MeasureSince(started, a.name)

	cb := a.cfg.Callback
	if cb != nil {
		cb.OnRunStart(ctx, a, task)
	}

	res, err := a.run(ctx, task)
	if err != nil {
		metricskey.StatsRunsFailed.IncrCounter(1, a.name)
		if cb != nil {
			cb.OnRunError(ctx, a, task, err)
		}
		return nil, err
	}

	switch res.State {
	case StateTerminatedLimit:
		metricskey.StatsRunsLimited.IncrCounter(1, a.name)
	default:
		metricskey.StatsRunsSucceeded.IncrCounter(1, a.name)
	}
	if cb != nil {
		cb.OnRunEnd(ctx, a, task, res)
	}
	return res, nil
}

func (a *Agent) run(ctx context.Context, task string) (*RunResult, error) {
	transcript := []llms.Message{
		llms.MessageFromTextParts(llms.RoleSystem, a.cfg.SystemPrompt),
	}
	if a.cfg.Store != nil {
		prev := a.cfg.Store.Messages(ctx)
		if len(prev) > 0 {
			logger.ContextKV(ctx, xlog.DEBUG,
				"agent", a.name,
				"run_id", chatmodel.GetRunID(ctx),
				"message_history", len(prev),
			)
			transcript = append(transcript, prev...)
		}
	}
	userMessage := llms.MessageFromTextParts(llms.RoleHuman, task)
	transcript = append(transcript, userMessage)

	// messages produced by this run, persisted at the end
	runMessages := []llms.Message{userMessage}

	callOpts := a.callOptions()

	state := StateAwaitingModel
	var lastText, finalText string
	turns := 0
	for {
		if turns >= a.cfg.MaxTurns {
			state = StateTerminatedLimit
			finalText = a.incompleteAnswer(lastText)
			logger.ContextKV(ctx, xlog.WARNING,
				"agent", a.name,
				"status", "turn_limit_reached",
				"turns", turns,
			)
			break
		}
		if size := llmutils.CountMessagesContentSize(transcript); size > a.cfg.MaxContentSize {
			return nil, errors.Newf("agent %s: the content size exceeded limit", a.name)
		}

		resp, err := a.generate(ctx, transcript, callOpts)
		if err != nil {
			return nil, err
		}
		turns++

		text, calls := collectChoices(resp)
		if text != "" {
			lastText = text
		}

		if len(calls) == 0 {
			state = StateTerminatedSuccess
			finalText = text
			aiMessage := llms.MessageFromTextParts(llms.RoleAI, text)
			transcript = append(transcript, aiMessage)
			runMessages = append(runMessages, aiMessage)
			break
		}

		state = StateDispatchingTools
		callMessage := llms.MessageFromToolCalls(llms.RoleAI, calls...)
		transcript = append(transcript, callMessage)
		runMessages = append(runMessages, callMessage)

		for _, tr := range a.dispatch(ctx, calls) {
			msg := llms.MessageFromToolResponse(llms.RoleTool, tr)
			transcript = append(transcript, msg)
			runMessages = append(runMessages, msg)
		}
		state = StateAwaitingModel
	}

	if a.cfg.Store != nil {
		if err := a.cfg.Store.Add(ctx, runMessages...); err != nil {
			logger.ContextKV(ctx, xlog.WARNING,
				"agent", a.name,
				"status", "failed_to_persist_run",
				"err", err.Error(),
			)
		}
	}

	return &RunResult{
		State:      state,
		FinalText:  finalText,
		Turns:      turns,
		Transcript: transcript,
	}, nil
}

// generate issues one model call, retrying channel failures and empty
// responses a bounded number of times before propagating.
func (a *Agent) generate(ctx context.Context, messages []llms.Message, callOpts []llms.CallOption) (*llms.ContentResponse, error) {
	modelName := a.llm.GetName()
	cb := a.cfg.Callback
	if cb != nil {
		cb.OnModelCallStart(ctx, a, a.llm, messages)
	}

	started := time.Now()
	var resp *llms.ContentResponse
	var err error
	for attempt := 0; ; attempt++ {
		resp, err = a.llm.GenerateContent(ctx, messages, callOpts...)
		if err == nil && len(resp.Choices) > 0 {
			break
		}
		if attempt >= a.cfg.LLMRetries {
			metricskey.StatsModelCallsFailed.IncrCounter(1, a.name, modelName)
			if err == nil {
				err = errors.Newf("LLM returned empty response after %d attempts", attempt+1)
			}
			return nil, errors.Wrapf(err, "agent %s: failed to generate content from LLM", a.name)
		}
		metricskey.StatsModelCallsRetried.IncrCounter(1, a.name, modelName)
		logger.ContextKV(ctx, xlog.WARNING,
			"agent", a.name,
			"status", "retrying_model_call",
			"attempt", attempt+1,
		)
	}
	metricskey.PerfModelCall.MeasureSince(started, a.name, modelName)
	metricskey.StatsModelCallsSucceeded.IncrCounter(1, a.name, modelName)
	logger.ContextKV(ctx, xlog.DEBUG,
		"agent", a.name,
		"model", modelName,
		"content_size", llmutils.CountResponseContentSize(resp),
	)

	if cb != nil {
		cb.OnModelCallEnd(ctx, a, a.llm, resp)
	}
	return resp, nil
}

// collectChoices extracts the textual content and the tool calls of a model
// response. Tool calls missing an ID get one assigned so results can be
// tagged with the originating request.
func collectChoices(resp *llms.ContentResponse) (string, []llms.ToolCall) {
	var texts []string
	var calls []llms.ToolCall
	for _, choice := range resp.Choices {
		if choice.Content != "" {
			texts = append(texts, choice.Content)
		}
		for _, tc := range choice.ToolCalls {
			tc.ID = values.StringsCoalesce(tc.ID, uuid.NewString())
			tc.Type = values.StringsCoalesce(tc.Type, "function")
			calls = append(calls, tc)
		}
	}
	return strings.Join(texts, "\n\n"), calls
}

// dispatch resolves all tool calls of one model turn. Calls run
// concurrently; results are merged in request order so downstream model
// calls see a reproducible transcript. One failing tool never aborts the
// others.
func (a *Agent) dispatch(ctx context.Context, calls []llms.ToolCall) []llms.ToolCallResponse {
	results := make([]llms.ToolCallResponse, len(calls))

	var wg sync.WaitGroup
	wg.Add(len(calls))
	for i, call := range calls {
		go func(index int, tc llms.ToolCall) {
			defer wg.Done()
			results[index] = a.dispatchOne(ctx, tc)
		}(i, call)
	}
	wg.Wait()

	return results
}

func (a *Agent) dispatchOne(ctx context.Context, tc llms.ToolCall) llms.ToolCallResponse {
	name := tc.FunctionCall.Name
	args := tc.FunctionCall.Arguments
	cb := a.cfg.Callback

	tool, ok := a.registry.Lookup(name)
	if !ok {
		metricskey.StatsToolCallsNotFound.IncrCounter(1, name)
		if cb != nil {
			cb.OnToolNotFound(ctx, a, name)
		}
		available := strings.Join(a.registry.Names(), ", ")
		logger.ContextKV(ctx, xlog.WARNING,
			"agent", a.name,
			"status", "tool_not_found",
			"tool", name,
			"available_tools", available,
		)
		res := tools.Err(tools.KindExecution,
			fmt.Sprintf("tool %q not found, check the tool name and try again with exact match; available tools: %s", name, available))
		return llms.ToolCallResponse{ToolCallID: tc.ID, Name: name, Content: res.Content()}
	}

	if cb != nil {
		cb.OnToolStart(ctx, tool, a.name, args)
	}

	started := time.Now()
	res := tool.Call(ctx, args)
	metricskey.PerfToolCall.MeasureSince(started, name)

	if res.OK() {
		metricskey.StatsToolCallsSucceeded.IncrCounter(1, name)
		if cb != nil {
			cb.OnToolEnd(ctx, tool, a.name, args, res.Content())
		}
	} else {
		if res.Error.Kind == tools.KindValidation {
			metricskey.StatsToolCallsRejected.IncrCounter(1, name)
		} else {
			metricskey.StatsToolCallsFailed.IncrCounter(1, name)
		}
		if cb != nil {
			cb.OnToolError(ctx, tool, a.name, args, errors.New(res.Error.Message))
		}
		logger.ContextKV(ctx, xlog.WARNING,
			"agent", a.name,
			"status", "tool_call_failed",
			"tool", name,
			"kind", string(res.Error.Kind),
			"args", slices.StringUpto(args, 64),
			"err", res.Error.Message,
		)
	}

	return llms.ToolCallResponse{ToolCallID: tc.ID, Name: name, Content: res.Content()}
}

func (a *Agent) callOptions() []llms.CallOption {
	var opts []llms.CallOption
	if a.cfg.Model != "" {
		opts = append(opts, llms.WithModel(a.cfg.Model))
	}
	if a.cfg.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(a.cfg.MaxTokens))
	}
	if a.cfg.Temperature > 0 {
		opts = append(opts, llms.WithTemperature(a.cfg.Temperature))
	}
	if a.registry.Len() > 0 {
		opts = append(opts, llms.WithTools(a.registry.Definitions()))
	}
	return opts
}

func (a *Agent) incompleteAnswer(lastText string) string {
	notice := fmt.Sprintf("Task incomplete: reached the maximum of %d turns without a final answer.", a.cfg.MaxTurns)
	if lastText == "" {
		return notice
	}
	return lastText + "\n\n" + notice
}
