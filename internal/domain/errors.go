package domain

import "fmt"

// ValidationError indicates bad caller input. It is surfaced directly and
// never retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

// IngestionError indicates a document could not be ingested (corrupt PDF,
// no extractable text). The document is marked error and the reason kept.
type IngestionError struct {
	Filename string
	Reason   string
	Err      error
}

func (e *IngestionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ingestion of %s failed: %s: %v", e.Filename, e.Reason, e.Err)
	}
	return fmt.Sprintf("ingestion of %s failed: %s", e.Filename, e.Reason)
}

func (e *IngestionError) Unwrap() error { return e.Err }

// ProviderError indicates an embedding or generation backend failure.
// Ingestion-side callers retry these with bounded backoff; query-side
// callers surface them without retrying.
type ProviderError struct {
	Provider string // "embedding" or "generation"
	Op       string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider: %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// ConfigurationError indicates an invalid setup (dimension mismatch,
// missing credentials in production mode). Fatal at startup, never
// per-request.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Reason)
}
