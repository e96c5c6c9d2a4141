// Package chatmodel carries per-run context and shared sentinels for the
// agent loop and its collaborators.
package chatmodel

import (
	"context"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xdb/pkg/flake"
)

// ErrFailedUnmarshalInput is returned when tool input cannot be parsed.
var ErrFailedUnmarshalInput = errors.New("failed to unmarshal input: check the schema and try again")

type contextKey int

const (
	keyRunID contextKey = iota
)

// WithRunID returns a new context carrying the run ID. An empty id is
// replaced with a freshly generated one.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyRunID, values.StringsCoalesce(id, NewRunID()))
}

// GetRunID retrieves the run ID from the context, or empty string if unset.
func GetRunID(ctx context.Context) string {
	if v, ok := ctx.Value(keyRunID).(string); ok {
		return v
	}
	return ""
}

// NewRunID generates a new run ID using the flake ID generator.
func NewRunID() string {
	return strconv.FormatUint(flake.DefaultIDGenerator.NextID(), 10)
}
