// Package ai defines the capabilities the interview core needs from a remote
// generative model, so the controller and evaluator can be tested against
// deterministic stubs.
package ai

import "context"

// Conversation is a live handle to an ongoing model chat. One message in,
// one reply out.
type Conversation interface {
	SendMessage(ctx context.Context, message string) (string, error)
}

// Generator produces one text blob from a one-shot prompt, outside of any
// conversation.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// ChatStarter opens a new conversation seeded with a system instruction.
type ChatStarter interface {
	StartConversation(ctx context.Context, systemInstruction string) (Conversation, error)
}
