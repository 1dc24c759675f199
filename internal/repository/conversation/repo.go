// Package conversation persists conversations as redis hashes plus one list
// of JSON-encoded messages per conversation.
package conversation

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kailas-cloud/hoplite/internal/domain"
	domconv "github.com/kailas-cloud/hoplite/internal/domain/conversation"
)

const (
	metaPrefix    = "conv:"
	messageSuffix = ":messages"
)

// store is the consumer interface for conversation persistence (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	RPush(ctx context.Context, key string, values ...string) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo implements usecase/conversation.Repository.
type Repo struct {
	store store
}

// New creates a conversation repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

func metaKey(id string) string     { return metaPrefix + id }
func messagesKey(id string) string { return metaPrefix + id + messageSuffix }

// Create stores conversation metadata.
func (r *Repo) Create(ctx context.Context, conv domconv.Conversation) error {
	if err := r.store.HSet(ctx, metaKey(conv.ID()), conversationToHash(conv)); err != nil {
		return fmt.Errorf("hset conversation %s: %w", conv.ID(), err)
	}
	return nil
}

// Get hydrates one conversation with its message count.
func (r *Repo) Get(ctx context.Context, id string) (domconv.Conversation, error) {
	m, err := r.store.HGetAll(ctx, metaKey(id))
	if err != nil {
		return domconv.Conversation{}, fmt.Errorf("hgetall conversation %s: %w", id, err)
	}
	if len(m) == 0 {
		return domconv.Conversation{}, domain.ErrConversationNotFound
	}

	msgs, err := r.store.LRange(ctx, messagesKey(id), 0, -1)
	if err != nil {
		return domconv.Conversation{}, fmt.Errorf("lrange messages %s: %w", id, err)
	}

	conv, err := conversationFromHash(m, len(msgs))
	if err != nil {
		return domconv.Conversation{}, fmt.Errorf("hydrate conversation %s: %w", id, err)
	}
	return conv, nil
}

// List returns all conversations, newest first.
func (r *Repo) List(ctx context.Context) ([]domconv.Conversation, error) {
	keys, err := r.store.Scan(ctx, metaPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan conversations: %w", err)
	}

	metaKeys := keys[:0]
	for _, k := range keys {
		if !strings.HasSuffix(k, messageSuffix) {
			metaKeys = append(metaKeys, k)
		}
	}
	if len(metaKeys) == 0 {
		return nil, nil
	}

	maps, err := r.store.HGetAllMulti(ctx, metaKeys)
	if err != nil {
		return nil, fmt.Errorf("hgetall conversations: %w", err)
	}

	out := make([]domconv.Conversation, 0, len(maps))
	for i, m := range maps {
		if len(m) == 0 {
			continue
		}
		conv, err := conversationFromHash(m, 0)
		if err != nil {
			return nil, fmt.Errorf("hydrate conversation %s: %w", metaKeys[i], err)
		}
		out = append(out, conv)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt() > out[j].CreatedAt() })
	return out, nil
}

// AppendMessage pushes one message onto the conversation's list.
func (r *Repo) AppendMessage(ctx context.Context, id string, msg domconv.Message) error {
	exists, err := r.store.Exists(ctx, metaKey(id))
	if err != nil {
		return fmt.Errorf("check conversation %s: %w", id, err)
	}
	if !exists {
		return domain.ErrConversationNotFound
	}

	raw, err := messageToJSON(msg)
	if err != nil {
		return err
	}
	if err := r.store.RPush(ctx, messagesKey(id), raw); err != nil {
		return fmt.Errorf("rpush message %s: %w", id, err)
	}
	return nil
}

// Messages returns the conversation's messages in append order.
func (r *Repo) Messages(ctx context.Context, id string) ([]domconv.Message, error) {
	raws, err := r.store.LRange(ctx, messagesKey(id), 0, -1)
	if err != nil {
		return nil, fmt.Errorf("lrange messages %s: %w", id, err)
	}

	out := make([]domconv.Message, 0, len(raws))
	for _, raw := range raws {
		msg, err := messageFromJSON(raw)
		if err != nil {
			return nil, fmt.Errorf("hydrate message in %s: %w", id, err)
		}
		out = append(out, msg)
	}
	return out, nil
}
