package ports

import (
	"context"

	"github.com/hazriqpedia/waybill/pkg/domain"
)

// CompletionClient asks the hosted model for the next step of a conversation.
// Implementations return either final text or exactly one tool call.
type CompletionClient interface {
	Complete(ctx context.Context, req domain.CompletionRequest) (domain.Completion, error)
}

// CompletionFunc adapts a function to CompletionClient.
type CompletionFunc func(ctx context.Context, req domain.CompletionRequest) (domain.Completion, error)

// Complete calls f.
func (f CompletionFunc) Complete(ctx context.Context, req domain.CompletionRequest) (domain.Completion, error) {
	return f(ctx, req)
}
