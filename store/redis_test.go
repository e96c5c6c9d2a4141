package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tessellate-ai/agentools/chatmodel"
	"github.com/tessellate-ai/agentools/pkg/llms"
	"github.com/tessellate-ai/agentools/store"
	"github.com/testcontainers/testcontainers-go"
	rediscon "github.com/testcontainers/testcontainers-go/modules/redis"
)

func Test_RedisStore(t *testing.T) {
	ctx := context.Background()
	redisContainer, err := rediscon.Run(ctx, "redis:7",
		testcontainers.WithConfigModifier(func(config *container.Config) {
			config.Env = []string{
				"ALLOW_EMPTY_PASSWORD=yes",
			}
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, redisContainer.Terminate(ctx))
	})

	state, err := redisContainer.State(ctx)
	require.NoError(t, err)
	require.True(t, state.Running)

	root := fmt.Sprintf("test-%d", time.Now().Unix())

	host, err := redisContainer.ConnectionString(ctx)
	require.NoError(t, err)

	options, err := redis.ParseURL(host)
	require.NoError(t, err)

	client := redis.NewClient(options)

	rs := client.Ping(ctx)
	require.NoError(t, rs.Err(), "failed to connect to Redis")

	st := store.NewRedisStore(client, root)

	msg1 := llms.MessageFromTextParts(llms.RoleHuman, "Hello")
	msg2 := llms.MessageFromToolCalls(llms.RoleAI, llms.ToolCall{
		ID:   "call_1",
		Type: "function",
		FunctionCall: &llms.FunctionCall{
			Name:      "web_search",
			Arguments: `{"query":"hello"}`,
		},
	})

	// without a run ID the store is a no-op
	assert.Empty(t, st.Messages(ctx))
	require.NoError(t, st.Add(ctx, msg1))
	require.NoError(t, st.Reset(ctx))
	assert.Empty(t, st.Messages(ctx))

	runCtx := chatmodel.WithRunID(ctx, "run-1")

	require.NoError(t, st.Add(runCtx, msg1))
	require.NoError(t, st.Add(runCtx, msg2))

	messages := st.Messages(runCtx)
	require.Len(t, messages, 2)
	assert.Equal(t, msg1, messages[0])
	assert.Equal(t, msg2, messages[1])

	// other runs are isolated
	otherCtx := chatmodel.WithRunID(ctx, "run-2")
	assert.Empty(t, st.Messages(otherCtx))

	require.NoError(t, st.Reset(runCtx))
	assert.Empty(t, st.Messages(runCtx))
}
