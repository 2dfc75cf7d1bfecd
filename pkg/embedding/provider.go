package embedding

import "context"

// EmbeddingProvider defines the interface for generating text embeddings.
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error)
	// ModelVersion identifies the embedding model; cached vectors are keyed
	// by it and invalidated only when it changes.
	ModelVersion() string
}
