package ports

import (
	"context"
	"testing"
	"time"

	"github.com/hazriqpedia/waybill/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunHistoryStoreContract runs a suite of tests to verify that a HistoryStore implementation
// adheres to the defined interface contract.
func RunHistoryStoreContract(t *testing.T, store HistoryStore) {
	ctx := context.Background()
	conversationID := "contract-test-conversation-" + time.Now().Format("20060102150405")

	t.Run("Append and Load", func(t *testing.T) {
		defer func() { _ = store.Delete(ctx, conversationID) }()

		err := store.Append(ctx, conversationID,
			domain.UserMessage("where is AWB-12345?"),
			domain.FinalAnswer(`{"response":"En Route","tools_used":["track_shipment"]}`),
		)
		require.NoError(t, err, "Append should not return error")

		turns, err := store.Load(ctx, conversationID, 0)
		require.NoError(t, err, "Load should not return error")
		require.Len(t, turns, 2)
		assert.Equal(t, domain.TurnUser, turns[0].Kind)
		assert.Equal(t, "where is AWB-12345?", turns[0].Text)
		assert.Equal(t, domain.TurnFinal, turns[1].Kind)
	})

	t.Run("Load With Limit Keeps Tail", func(t *testing.T) {
		id := conversationID + "-limit"
		defer func() { _ = store.Delete(ctx, id) }()

		for _, text := range []string{"one", "two", "three", "four"} {
			require.NoError(t, store.Append(ctx, id, domain.UserMessage(text)))
		}

		turns, err := store.Load(ctx, id, 2)
		require.NoError(t, err)
		require.Len(t, turns, 2)
		assert.Equal(t, "three", turns[0].Text)
		assert.Equal(t, "four", turns[1].Text)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		turns, err := store.Load(ctx, "non-existent-"+conversationID, 10)
		require.NoError(t, err)
		assert.Empty(t, turns)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Append(ctx, conversationID, domain.UserMessage("hello")))

		err := store.Delete(ctx, conversationID)
		require.NoError(t, err, "Delete should not return error")

		turns, err := store.Load(ctx, conversationID, 0)
		require.NoError(t, err)
		assert.Empty(t, turns, "Load after Delete should return an empty history")
	})

	t.Run("List", func(t *testing.T) {
		id1 := conversationID + "-1"
		id2 := conversationID + "-2"
		require.NoError(t, store.Append(ctx, id1, domain.UserMessage("a")))
		require.NoError(t, store.Append(ctx, id2, domain.UserMessage("b")))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
