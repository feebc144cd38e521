// Package provider implements the LLM completion and embedding capabilities.
package provider

import "context"

// Completer is the interface for chat completion clients.
type Completer interface {
	// Chat sends a completion request and returns the response.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
	// Configured reports whether credentials are available.
	Configured() bool
}

// Embedder is the interface for embedding clients. The same embedding model
// must be used at ingestion and query time.
type Embedder interface {
	// Embed generates one embedding vector per input, in input order.
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
	// Configured reports whether credentials are available.
	Configured() bool
}

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest contains the parameters for a chat completion request.
type ChatRequest struct {
	Messages []Message
	Model    string
}

// ChatResponse contains the response from a chat completion request.
type ChatResponse struct {
	Content      string
	FinishReason string
	Usage        Usage
}

// Usage contains token usage information.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
