// Package agent orchestrates a conversation turn: model call,
// classification, dispatch, composition, and memory.
package agent

import "context"

// Role marks who produced a turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Media is one binary attachment travelling with a turn.
type Media struct {
	MIME string
	Data []byte
}

// Turn is one message of the running conversation. Media is only set
// on the live user turn; the stored history is text-only.
type Turn struct {
	Role  Role
	Text  string
	Media []Media
}

// Provider generates a model reply from the conversation so far.
// Implementations wrap one hosted model API.
type Provider interface {
	Generate(ctx context.Context, system string, turns []Turn) (string, error)
}
