package store_test

import (
	"context"
	"sync"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tessellate-ai/agentools/chatmodel"
	"github.com/tessellate-ai/agentools/pkg/llms"
	"github.com/tessellate-ai/agentools/store"
)

func TestMemoryStore(t *testing.T) {
	st := store.NewMemoryStore()

	// without a run ID the store is a no-op
	ctx := context.Background()
	assert.Empty(t, st.Messages(ctx))
	require.NoError(t, st.Add(ctx, llms.MessageFromTextParts(llms.RoleHuman, "hello")))
	assert.Empty(t, st.Messages(context.Background()))

	ctx1 := chatmodel.WithRunID(context.Background(), "run-1")
	ctx2 := chatmodel.WithRunID(context.Background(), "run-2")

	msg1 := llms.MessageFromTextParts(llms.RoleHuman, gofakeit.Question())
	msg2 := llms.MessageFromTextParts(llms.RoleAI, gofakeit.Sentence(8))

	require.NoError(t, st.Add(ctx1, msg1))
	require.NoError(t, st.Add(ctx1, msg2))
	require.NoError(t, st.Add(ctx2, llms.MessageFromTextParts(llms.RoleHuman, "other run")))

	got := st.Messages(ctx1)
	require.Len(t, got, 2)
	assert.Equal(t, msg1, got[0])
	assert.Equal(t, msg2, got[1])

	// runs are isolated
	require.Len(t, st.Messages(ctx2), 1)

	require.NoError(t, st.Reset(ctx1))
	assert.Empty(t, st.Messages(ctx1))
	assert.Len(t, st.Messages(ctx2), 1)
}

func TestMemoryStore_Concurrent(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := chatmodel.WithRunID(context.Background(), "run-1")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = st.Add(ctx, llms.MessageFromTextParts(llms.RoleHuman, "m"))
			_ = st.Messages(ctx)
		}()
	}
	wg.Wait()

	assert.Len(t, st.Messages(ctx), 16)
}
