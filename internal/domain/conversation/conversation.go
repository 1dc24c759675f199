// Package conversation holds the conversation and message aggregates.
package conversation

import (
	"fmt"
	"regexp"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// MaxTitleLen is the maximum conversation title length in bytes.
const MaxTitleLen = 512

// Role identifies the author of a message.
type Role string

const (
	// RoleUser marks a question from the user.
	RoleUser Role = "user"
	// RoleAssistant marks an answer produced by the service.
	RoleAssistant Role = "assistant"
)

// Validate checks that r is a known role.
func (r Role) Validate() error {
	switch r {
	case RoleUser, RoleAssistant:
		return nil
	default:
		return fmt.Errorf("unknown role %q", string(r))
	}
}

// Conversation is the conversation aggregate (immutable value object).
type Conversation struct {
	id        string
	title     string
	createdAt int64
	messages  int
}

// New validates and creates a Conversation.
func New(id, title string, createdAt int64) (Conversation, error) {
	if id == "" {
		return Conversation{}, fmt.Errorf("conversation ID is required")
	}
	if !idRegex.MatchString(id) {
		return Conversation{}, fmt.Errorf("conversation ID must be alphanumeric with underscores and hyphens")
	}
	if len(title) > MaxTitleLen {
		return Conversation{}, fmt.Errorf("title too long (max %d)", MaxTitleLen)
	}
	return Conversation{id: id, title: title, createdAt: createdAt}, nil
}

// Reconstruct creates a Conversation without validation (storage hydration).
func Reconstruct(id, title string, createdAt int64, messages int) Conversation {
	return Conversation{id: id, title: title, createdAt: createdAt, messages: messages}
}

// ID returns the conversation identifier.
func (c *Conversation) ID() string { return c.id }

// Title returns the conversation title.
func (c *Conversation) Title() string { return c.title }

// CreatedAt returns the creation time in unix milliseconds.
func (c *Conversation) CreatedAt() int64 { return c.createdAt }

// Messages returns the number of messages in the conversation.
func (c *Conversation) Messages() int { return c.messages }

// Message is a single turn in a conversation. Assistant turns carry the hop
// count and stop reasoning of the research session that produced them.
type Message struct {
	role      Role
	content   string
	hops      int
	reasoning string
	createdAt int64
}

// NewMessage validates and creates a Message.
func NewMessage(role Role, content string, createdAt int64) (Message, error) {
	if err := role.Validate(); err != nil {
		return Message{}, err
	}
	if content == "" {
		return Message{}, fmt.Errorf("message content is required")
	}
	return Message{role: role, content: content, createdAt: createdAt}, nil
}

// WithResearch returns a copy annotated with research session metadata.
func (m *Message) WithResearch(hops int, reasoning string) Message {
	c := *m
	c.hops = hops
	c.reasoning = reasoning
	return c
}

// ReconstructMessage creates a Message without validation (storage hydration).
func ReconstructMessage(role Role, content string, hops int, reasoning string, createdAt int64) Message {
	return Message{role: role, content: content, hops: hops, reasoning: reasoning, createdAt: createdAt}
}

// Role returns the message author role.
func (m *Message) Role() Role { return m.role }

// Content returns the message text.
func (m *Message) Content() string { return m.content }

// Hops returns the number of retrieval hops behind an assistant message.
func (m *Message) Hops() int { return m.hops }

// Reasoning returns the stop reasoning behind an assistant message.
func (m *Message) Reasoning() string { return m.reasoning }

// CreatedAt returns the message time in unix milliseconds.
func (m *Message) CreatedAt() int64 { return m.createdAt }
