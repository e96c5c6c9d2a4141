// Package store persists transcripts across agent runs, keyed by the run ID
// carried in the context.
package store

import (
	"context"

	"github.com/tessellate-ai/agentools/pkg/llms"
)

// MessageStore keeps transcript messages per run.
type MessageStore interface {
	// Messages returns the stored messages of the run in append order.
	Messages(ctx context.Context) []llms.Message
	// Add appends messages to the run transcript.
	Add(ctx context.Context, msgs ...llms.Message) error
	// Reset removes the run transcript.
	Reset(ctx context.Context) error
}
