package ports

import (
	"context"

	"github.com/McSavage/edgar-rag/internal/core/domain"
)

// FactQuery bounds a structured-facts lookup. Empty filter slices mean no
// restriction on that axis.
type FactQuery struct {
	Tickers   []string
	Concepts  []string
	DateRange domain.DateRange
	// Limit caps returned rows; the store may fetch Limit+1 so callers can
	// detect truncation.
	Limit int
}

// FactStore reads standardized numeric facts from the relational store.
// Results are ordered (ticker, period end desc, concept) and include filing
// provenance. The second return reports whether the row ceiling was hit.
type FactStore interface {
	Query(ctx context.Context, q FactQuery) ([]domain.FactRecord, bool, error)
}

// ChunkFilter restricts a nearest-neighbor search by ingestion metadata.
type ChunkFilter struct {
	Tickers   []string
	Sections  []domain.SectionType
	DateRange domain.DateRange
}

// VectorSearcher performs similarity search over narrative chunk embeddings.
// Implementations must reject a query vector whose dimensionality differs
// from the store's configured dimensionality.
type VectorSearcher interface {
	Search(ctx context.Context, queryVector []float32, limit int, filter ChunkFilter) ([]domain.ChunkRecord, error)
}

// Embedder computes the query embedding for semantic retrieval.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	// Dimension is the vector size the embedding model produces; it must
	// match the vector store's configured dimensionality.
	Dimension() int
}

// IntentModel is the narrow model capability behind the intent classifier.
// Implementations return the raw structured decision; enum validation and
// the hybrid fallback live in the use case layer.
type IntentModel interface {
	ClassifyIntent(ctx context.Context, question string) (domain.RoutingDecision, error)
}

// SynthesisModel produces the final grounded answer text from a prompt that
// already embeds the evidence.
type SynthesisModel interface {
	GenerateAnswer(ctx context.Context, prompt string) (string, error)
}
