package store

import (
	"context"
	"encoding/json"
	"path"

	"github.com/effective-security/xlog"
	"github.com/redis/go-redis/v9"
	"github.com/tessellate-ai/agentools/chatmodel"
	"github.com/tessellate-ai/agentools/pkg/llms"
)

var logger = xlog.NewPackageLogger("github.com/tessellate-ai/agentools", "store")

// The redis store implements the MessageStore interface using Redis as the
// backend. Messages are kept in a list per run, so transcripts survive
// process restarts and can be shared between workers. The keys namespace is
// organized as `<prefix>/runstore/messages/<runID>`.
type redisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore returns a Redis-backed MessageStore.
func NewRedisStore(client *redis.Client, prefix string) MessageStore {
	return &redisStore{
		client: client,
		prefix: prefix,
	}
}

func (m *redisStore) messagesKey(runID string) string {
	return path.Join(m.prefix, "runstore", "messages", runID)
}

func (m *redisStore) Messages(ctx context.Context) []llms.Message {
	runID := chatmodel.GetRunID(ctx)
	if runID == "" {
		return nil
	}

	data, err := m.client.LRange(ctx, m.messagesKey(runID), 0, -1).Result()
	if err != nil {
		logger.ContextKV(ctx, xlog.ERROR, "reason", "lrange", "run_id", runID, "err", err.Error())
		return nil
	}

	var messages []llms.Message
	for _, item := range data {
		var msg llms.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			logger.ContextKV(ctx, xlog.ERROR, "reason", "unmarshal_message", "run_id", runID, "err", err.Error())
			continue
		}
		messages = append(messages, msg)
	}
	return messages
}

func (m *redisStore) Add(ctx context.Context, msgs ...llms.Message) error {
	runID := chatmodel.GetRunID(ctx)
	if runID == "" {
		return nil
	}

	key := m.messagesKey(runID)
	for _, msg := range msgs {
		bs, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		if err := m.client.RPush(ctx, key, string(bs)).Err(); err != nil {
			return err
		}
	}
	return nil
}

func (m *redisStore) Reset(ctx context.Context) error {
	runID := chatmodel.GetRunID(ctx)
	if runID == "" {
		return nil
	}
	return m.client.Del(ctx, m.messagesKey(runID)).Err()
}
