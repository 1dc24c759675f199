package conversation

import (
	"context"

	domconv "github.com/kailas-cloud/hoplite/internal/domain/conversation"
)

// Repository defines the storage contract for conversations.
type Repository interface {
	Create(ctx context.Context, conv domconv.Conversation) error
	Get(ctx context.Context, id string) (domconv.Conversation, error)
	List(ctx context.Context) ([]domconv.Conversation, error)
	AppendMessage(ctx context.Context, id string, msg domconv.Message) error
	Messages(ctx context.Context, id string) ([]domconv.Message, error)
}
