package core

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Role classifies the author of a Message.
type Role string

const (
	// RoleUser marks the initiating caller's request.
	RoleUser Role = "user"
	// RoleWorker marks a worker contribution.
	RoleWorker Role = "worker"
	// RoleRouter marks a routing decision recorded in the transcript.
	RoleRouter Role = "router"
)

// Well-known author identifiers.
const (
	AuthorUser   = "user"
	AuthorRouter = "supervisor"
)

// ActionCall describes a tool invocation requested by the model instead of a
// final answer.
type ActionCall struct {
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"` // JSON object
}

// ActionResult is the outcome of executing an ActionCall. Failed results carry
// the failure description in Output so the next reasoning step can react.
type ActionResult struct {
	CallID string `json:"call_id,omitempty"`
	Name   string `json:"name"`
	Output string `json:"output"`
	Failed bool   `json:"failed,omitempty"`
}

// Message is one transcript entry. After creation it should be treated as
// immutable; Merge never modifies messages it receives.
type Message struct {
	ID        string       `json:"id"`
	Author    string       `json:"author"`
	Role      Role         `json:"role"`
	Content   string       `json:"content"`
	Calls     []ActionCall `json:"calls,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

func newMessage(author string, role Role, content string) Message {
	return Message{
		ID:        NewID(),
		Author:    author,
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

// NewUserMessage creates the seed message for a request.
func NewUserMessage(content string) Message {
	return newMessage(AuthorUser, RoleUser, content)
}

// NewWorkerMessage wraps a worker's final answer as its contribution.
func NewWorkerMessage(worker, content string) Message {
	return newMessage(worker, RoleWorker, content)
}

// NewRouterMessage records a routing decision. The decision is carried both as
// the single "route" call and as the message content.
func NewRouterMessage(d Decision) Message {
	m := newMessage(AuthorRouter, RoleRouter, d.Next)
	args, _ := json.Marshal(map[string]string{"next": d.Next})
	m.Calls = []ActionCall{{Name: RouteActionName, Arguments: args}}
	return m
}

// IsRouting reports whether the message is a router decision.
func (m Message) IsRouting() bool { return m.Role == RoleRouter }

// NewID generates a new unique identifier for messages and requests.
func NewID() string { return uuid.NewString() }
