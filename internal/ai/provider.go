package ai

import "context"

// Message is one role-tagged unit of conversational context sent to a
// provider, oldest first.
type Message struct {
	Role    string
	Content string
}

// Provider answers a full ordered conversation with a single assistant
// reply. Any failure is opaque to callers and recoverable: nothing about
// the conversation may be persisted on error.
type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}
