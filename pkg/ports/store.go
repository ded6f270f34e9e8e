package ports

import (
	"context"

	"github.com/hazriqpedia/waybill/pkg/domain"
)

// HistoryStore defines the interface for persisting conversation memory.
type HistoryStore interface {
	// Append adds turns to the end of the conversation.
	Append(ctx context.Context, conversationID string, turns ...domain.Turn) error

	// Load returns the last limit turns, oldest first. A limit <= 0 returns all turns.
	// An unknown conversation yields an empty history and no error.
	Load(ctx context.Context, conversationID string, limit int) ([]domain.Turn, error)

	// Delete removes the conversation.
	Delete(ctx context.Context, conversationID string) error

	// List returns the known conversation IDs.
	List(ctx context.Context) ([]string, error)
}
