package conversation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	domconv "github.com/kailas-cloud/hoplite/internal/domain/conversation"
)

// Service handles conversation CRUD and message history.
type Service struct {
	repo Repository
	now  func() time.Time
}

// New creates a conversation service.
func New(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Create stores a new conversation with a generated identifier.
func (s *Service) Create(ctx context.Context, title string) (domconv.Conversation, error) {
	conv, err := domconv.New(uuid.NewString(), title, s.now().UnixMilli())
	if err != nil {
		return domconv.Conversation{}, fmt.Errorf("validate conversation: %w", err)
	}

	if err := s.repo.Create(ctx, conv); err != nil {
		return domconv.Conversation{}, fmt.Errorf("create conversation: %w", err)
	}
	return conv, nil
}

// Get retrieves a conversation by ID.
func (s *Service) Get(ctx context.Context, id string) (domconv.Conversation, error) {
	conv, err := s.repo.Get(ctx, id)
	if err != nil {
		return domconv.Conversation{}, fmt.Errorf("get conversation: %w", err)
	}
	return conv, nil
}

// List returns all conversations.
func (s *Service) List(ctx context.Context) ([]domconv.Conversation, error) {
	convs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return convs, nil
}

// Messages returns a conversation's message history in order.
func (s *Service) Messages(ctx context.Context, id string) ([]domconv.Message, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	msgs, err := s.repo.Messages(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}

// AppendUserMessage records the user's question.
func (s *Service) AppendUserMessage(ctx context.Context, id, content string) (domconv.Message, error) {
	msg, err := domconv.NewMessage(domconv.RoleUser, content, s.now().UnixMilli())
	if err != nil {
		return domconv.Message{}, fmt.Errorf("validate message: %w", err)
	}
	if err := s.repo.AppendMessage(ctx, id, msg); err != nil {
		return domconv.Message{}, fmt.Errorf("append message: %w", err)
	}
	return msg, nil
}

// AppendAssistantMessage records an answer with its research metadata.
func (s *Service) AppendAssistantMessage(
	ctx context.Context, id, content string, hops int, reasoning string,
) (domconv.Message, error) {
	msg, err := domconv.NewMessage(domconv.RoleAssistant, content, s.now().UnixMilli())
	if err != nil {
		return domconv.Message{}, fmt.Errorf("validate message: %w", err)
	}
	msg = msg.WithResearch(hops, reasoning)

	if err := s.repo.AppendMessage(ctx, id, msg); err != nil {
		return domconv.Message{}, fmt.Errorf("append message: %w", err)
	}
	return msg, nil
}
