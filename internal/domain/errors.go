package domain

import "errors"

var (
	// ErrSessionNotFound signals a missing conversation session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrLLMUnavailable signals that the language model collaborator is down or unconfigured.
	ErrLLMUnavailable = errors.New("language model unavailable")
	// ErrMalformedExtraction signals unparseable structured output from the language model.
	ErrMalformedExtraction = errors.New("malformed extraction output")
	// ErrLLMProviderError signals a chat completion provider failure.
	ErrLLMProviderError = errors.New("llm provider error")
	// ErrSearchUnavailable signals that the retrieval collaborator is down or unconfigured.
	ErrSearchUnavailable = errors.New("search unavailable")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)
