package memory_test

import (
	"context"
	"testing"

	"github.com/hazriqpedia/waybill/pkg/adapters/memory"
	"github.com/hazriqpedia/waybill/pkg/domain"
	"github.com/hazriqpedia/waybill/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunHistoryStoreContract(t, store)
}

func TestMemoryStore_LoadReturnsCopy(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.Append(ctx, "c1", domain.UserMessage("hello")))

	turns, err := store.Load(ctx, "c1", 0)
	require.NoError(t, err)
	turns[0].Text = "mutated"

	again, err := store.Load(ctx, "c1", 0)
	require.NoError(t, err)
	assert.Equal(t, "hello", again[0].Text)
}

func TestMemoryStore_MaxTurns(t *testing.T) {
	store := memory.NewStore(memory.WithMaxTurns(2))
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "c1", domain.UserMessage("one"), domain.FinalAnswer("two")))
	require.NoError(t, store.Append(ctx, "c1", domain.UserMessage("three")))

	turns, err := store.Load(ctx, "c1", 0)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "two", turns[0].Text)
	assert.Equal(t, "three", turns[1].Text)
}
