// Package llm defines the Provider interface for text-completion backends.
//
// Phonaid uses an LLM in exactly two places: generating a phonemic (IPA)
// transcription when no lexicon entry exists, and producing the qualitative
// pronunciation critique during deep analysis. Both are single-shot
// completions, so the contract is deliberately narrow — one Complete method,
// no streaming and no tool calling.
//
// Implementations must be safe for concurrent use and must propagate context
// cancellation promptly.
package llm

import "context"

// Message represents a single message in an LLM conversation.
type Message struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the text content of the message.
	Content string
}

// Audio is an optional audio attachment for multimodal completion requests.
// Providers without audio-input support must return ErrAudioNotSupported
// when a request carries one.
type Audio struct {
	// Data is the raw audio payload.
	Data []byte

	// Format is the container format of Data (e.g., "wav", "mp3").
	Format string
}

// CompletionRequest carries everything the LLM needs to produce a response.
// At minimum Messages must be non-empty.
type CompletionRequest struct {
	// SystemPrompt is an optional high-priority instruction injected before
	// the conversation. Providers without a dedicated system slot prepend it
	// as a "system"-role message.
	SystemPrompt string

	// Messages is the ordered conversation. The last message is typically
	// from the "user" role and drives the response.
	Messages []Message

	// Audio optionally attaches a recording to the final user message for
	// audio-capable models. Used by the deep-analysis critique path.
	Audio *Audio

	// Temperature controls output randomness in [0.0, 2.0]. A value of 0.0
	// requests greedy decoding; phonaid's prompts run at or near zero.
	Temperature float64

	// MaxTokens caps the number of completion tokens. Zero means the
	// provider default.
	MaxTokens int
}

// Usage holds token accounting information returned by the backend.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// CompletionResponse is returned by Complete.
type CompletionResponse struct {
	// Content is the full text of the model's reply.
	Content string

	// Usage contains token accounting for this request/response pair.
	Usage Usage
}

// Provider is the abstraction over any text-completion backend.
//
// Implementations must be safe for concurrent use from multiple goroutines.
type Provider interface {
	// Complete sends req to the model and waits for the full response.
	// Returns an error if the request fails or ctx is cancelled before the
	// completion arrives.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}
