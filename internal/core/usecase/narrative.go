package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/McSavage/edgar-rag/internal/core/domain"
	"github.com/McSavage/edgar-rag/internal/core/ports"
)

// defaultTopK balances synthesis context size against noise.
const defaultTopK = 8

// SemanticRetrieverUseCase translates a qualitative intent into an embedding
// query and ranks narrative chunks by similarity, with metadata filters.
type SemanticRetrieverUseCase struct {
	embedder ports.Embedder
	vector   ports.VectorSearcher
	// storeDimension is the embedding dimensionality agreed at ingestion
	// time; a query vector of any other size never reaches the store.
	storeDimension int
	topK           int
}

func NewSemanticRetrieverUseCase(embedder ports.Embedder, vector ports.VectorSearcher, storeDimension, topK int) *SemanticRetrieverUseCase {
	if topK <= 0 {
		topK = defaultTopK
	}
	return &SemanticRetrieverUseCase{
		embedder:       embedder,
		vector:         vector,
		storeDimension: storeDimension,
		topK:           topK,
	}
}

// Search embeds the question (plus topic hints) and returns the topK chunks
// by similarity, ties broken by more recent filing date first.
func (uc *SemanticRetrieverUseCase) Search(ctx context.Context, question domain.Question, decision domain.RoutingDecision, topK int) ([]domain.ChunkRecord, error) {
	if topK <= 0 {
		topK = uc.topK
	}

	queryVector, err := uc.embedder.EmbedQuery(ctx, buildQueryText(question, decision))
	if err != nil {
		return nil, domain.WrapError(domain.ErrQualitativeRetrieval, "embed query", err)
	}
	if uc.storeDimension > 0 && len(queryVector) != uc.storeDimension {
		return nil, domain.WrapError(
			domain.ErrInvalidInput,
			"embed query",
			fmt.Errorf("embedding dimension %d does not match store dimension %d", len(queryVector), uc.storeDimension),
		)
	}

	chunks, err := uc.vector.Search(ctx, queryVector, topK, ports.ChunkFilter{
		Tickers:   decision.Tickers,
		Sections:  decision.Sections,
		DateRange: decision.DateRange,
	})
	if err != nil {
		return nil, domain.WrapError(domain.ErrQualitativeRetrieval, "vector search", err)
	}

	orderChunks(chunks)
	if len(chunks) > topK {
		chunks = chunks[:topK]
	}
	return chunks, nil
}

func buildQueryText(question domain.Question, decision domain.RoutingDecision) string {
	if len(decision.TopicHints) == 0 {
		return question.Text
	}
	return question.Text + "\nTopics: " + strings.Join(decision.TopicHints, ", ")
}

// orderChunks sorts by descending score, recency-first on ties, then stable
// provenance fields so identical searches present identically.
func orderChunks(chunks []domain.ChunkRecord) {
	sort.SliceStable(chunks, func(i, j int) bool {
		if chunks[i].Score != chunks[j].Score {
			return chunks[i].Score > chunks[j].Score
		}
		if !chunks[i].Filing.FilingDate.Equal(chunks[j].Filing.FilingDate) {
			return chunks[i].Filing.FilingDate.After(chunks[j].Filing.FilingDate)
		}
		if chunks[i].Ticker != chunks[j].Ticker {
			return chunks[i].Ticker < chunks[j].Ticker
		}
		return chunks[i].ChunkIndex < chunks[j].ChunkIndex
	})
}
