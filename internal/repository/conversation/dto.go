package conversation

import (
	"encoding/json"
	"fmt"
	"strconv"

	domconv "github.com/kailas-cloud/hoplite/internal/domain/conversation"
)

// messageRow is the JSON-serializable representation of a message for RPUSH.
type messageRow struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Hops      int    `json:"hops,omitempty"`
	Reasoning string `json:"reasoning,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

// conversationToHash converts a domain Conversation to a map for HSET.
func conversationToHash(conv domconv.Conversation) map[string]string {
	return map[string]string{
		"id":         conv.ID(),
		"title":      conv.Title(),
		"created_at": strconv.FormatInt(conv.CreatedAt(), 10),
	}
}

// conversationFromHash hydrates a domain Conversation from an HGETALL result map.
func conversationFromHash(m map[string]string, messages int) (domconv.Conversation, error) {
	id := m["id"]
	if id == "" {
		return domconv.Conversation{}, fmt.Errorf("missing id")
	}

	createdAt, err := strconv.ParseInt(m["created_at"], 10, 64)
	if err != nil {
		return domconv.Conversation{}, fmt.Errorf("invalid created_at: %w", err)
	}

	return domconv.Reconstruct(id, m["title"], createdAt, messages), nil
}

// messageToJSON serializes a message for the conversation's message list.
func messageToJSON(msg domconv.Message) (string, error) {
	row := messageRow{
		Role:      string(msg.Role()),
		Content:   msg.Content(),
		Hops:      msg.Hops(),
		Reasoning: msg.Reasoning(),
		CreatedAt: msg.CreatedAt(),
	}
	b, err := json.Marshal(row)
	if err != nil {
		return "", fmt.Errorf("marshal message: %w", err)
	}
	return string(b), nil
}

// messageFromJSON hydrates a message from its list entry.
func messageFromJSON(raw string) (domconv.Message, error) {
	var row messageRow
	if err := json.Unmarshal([]byte(raw), &row); err != nil {
		return domconv.Message{}, fmt.Errorf("unmarshal message: %w", err)
	}
	return domconv.ReconstructMessage(
		domconv.Role(row.Role), row.Content, row.Hops, row.Reasoning, row.CreatedAt,
	), nil
}
