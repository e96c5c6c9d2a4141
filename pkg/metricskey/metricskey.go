// Package metricskey describes the metrics emitted by the agent loop and
// the tool dispatch layer.
package metricskey

import "github.com/effective-security/metrics"

// Stats
var (
	// StatsModelCallsSucceeded is a counter of completed model calls.
	StatsModelCallsSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_model_calls_succeeded",
		Help:         "stats_model_calls_succeeded provides total model calls succeeded",
		RequiredTags: []string{"agent", "model"},
	}

	// StatsModelCallsFailed is a counter of model calls that failed after retries.
	StatsModelCallsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_model_calls_failed",
		Help:         "stats_model_calls_failed provides total model calls failed",
		RequiredTags: []string{"agent", "model"},
	}

	// StatsModelCallsRetried is a counter of model call retries.
	StatsModelCallsRetried = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_model_calls_retried",
		Help:         "stats_model_calls_retried provides total model calls retried",
		RequiredTags: []string{"agent", "model"},
	}

	StatsRunsSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_runs_succeeded",
		Help:         "stats_runs_succeeded provides total runs terminated with a final answer",
		RequiredTags: []string{"agent"},
	}

	StatsRunsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_runs_failed",
		Help:         "stats_runs_failed provides total runs failed on the model channel",
		RequiredTags: []string{"agent"},
	}

	StatsRunsLimited = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_runs_limited",
		Help:         "stats_runs_limited provides total runs terminated by the turn bound",
		RequiredTags: []string{"agent"},
	}

	StatsToolCallsSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_succeeded",
		Help:         "stats_tool_calls_succeeded provides total tool calls succeeded",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_failed",
		Help:         "stats_tool_calls_failed provides total tool calls failed",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsRejected = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_rejected",
		Help:         "stats_tool_calls_rejected provides total tool calls rejected on argument validation",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsNotFound = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_not_found",
		Help:         "stats_tool_calls_not_found provides total tool calls to unknown tools",
		RequiredTags: []string{"tool"},
	}
)

// Perf
var (
	PerfAgentRun = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_agent_run",
		Help:         "perf_agent_run provides duration of an agent run",
		RequiredTags: []string{"agent"},
	}

	PerfModelCall = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_model_call",
		Help:         "perf_model_call provides duration of a model call",
		RequiredTags: []string{"agent", "model"},
	}

	PerfToolCall = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_tool_call",
		Help:         "perf_tool_call provides duration of a tool call",
		RequiredTags: []string{"tool"},
	}
)

// Metrics returns the descriptions of all metrics in this package.
var Metrics = []*metrics.Describe{
	&PerfAgentRun,
	&PerfModelCall,
	&PerfToolCall,
	&StatsModelCallsFailed,
	&StatsModelCallsRetried,
	&StatsModelCallsSucceeded,
	&StatsRunsFailed,
	&StatsRunsLimited,
	&StatsRunsSucceeded,
	&StatsToolCallsFailed,
	&StatsToolCallsNotFound,
	&StatsToolCallsRejected,
	&StatsToolCallsSucceeded,
}
