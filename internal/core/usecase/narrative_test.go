package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/McSavage/edgar-rag/internal/core/domain"
	"github.com/McSavage/edgar-rag/internal/core/ports"
)

type embedderFake struct {
	text   string
	vector []float32
	err    error
}

func (f *embedderFake) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	f.text = text
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

func (f *embedderFake) Dimension() int { return len(f.vector) }

type vectorSearcherFake struct {
	limit  int
	filter ports.ChunkFilter
	chunks []domain.ChunkRecord
	err    error
	calls  int
}

func (f *vectorSearcherFake) Search(_ context.Context, _ []float32, limit int, filter ports.ChunkFilter) ([]domain.ChunkRecord, error) {
	f.calls++
	f.limit = limit
	f.filter = filter
	if f.err != nil {
		return nil, f.err
	}
	return f.chunks, nil
}

func TestSearchUsesDefaultTopK(t *testing.T) {
	embedder := &embedderFake{vector: make([]float32, 4)}
	vector := &vectorSearcherFake{}
	uc := NewSemanticRetrieverUseCase(embedder, vector, 4, 0)

	_, err := uc.Search(context.Background(), domain.Question{Text: "risks"}, domain.RoutingDecision{}, 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if vector.limit != defaultTopK {
		t.Fatalf("expected default top-k %d, got %d", defaultTopK, vector.limit)
	}
}

func TestSearchAppendsTopicHintsToQueryText(t *testing.T) {
	embedder := &embedderFake{vector: make([]float32, 4)}
	uc := NewSemanticRetrieverUseCase(embedder, &vectorSearcherFake{}, 4, 8)

	_, err := uc.Search(context.Background(),
		domain.Question{Text: "what risks does oracle mention"},
		domain.RoutingDecision{TopicHints: []string{"cloud infrastructure"}}, 8)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if !strings.Contains(embedder.text, "cloud infrastructure") {
		t.Fatalf("expected topic hints in embedded query, got %q", embedder.text)
	}
}

func TestSearchRejectsDimensionMismatchBeforeStore(t *testing.T) {
	embedder := &embedderFake{vector: make([]float32, 8)}
	vector := &vectorSearcherFake{}
	uc := NewSemanticRetrieverUseCase(embedder, vector, 512, 8)

	_, err := uc.Search(context.Background(), domain.Question{Text: "q"}, domain.RoutingDecision{}, 8)
	if err == nil {
		t.Fatalf("expected dimension mismatch error")
	}
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if vector.calls != 0 {
		t.Fatalf("mismatched vector must never reach the store")
	}
}

func TestSearchBreaksScoreTiesByFilingRecency(t *testing.T) {
	older := domain.FilingRef{Accession: "a-1", Ticker: "ORCL", FilingType: "10-K", FilingDate: day("2024-06-20")}
	newer := domain.FilingRef{Accession: "a-2", Ticker: "ORCL", FilingType: "10-Q", FilingDate: day("2025-03-10")}
	vector := &vectorSearcherFake{chunks: []domain.ChunkRecord{
		{Ticker: "ORCL", Section: domain.SectionRiskFactors, Score: 0.8, Filing: older},
		{Ticker: "ORCL", Section: domain.SectionRiskFactors, Score: 0.8, Filing: newer},
		{Ticker: "ORCL", Section: domain.SectionRiskFactors, Score: 0.9, Filing: older},
	}}
	uc := NewSemanticRetrieverUseCase(&embedderFake{vector: make([]float32, 4)}, vector, 4, 8)

	chunks, err := uc.Search(context.Background(), domain.Question{Text: "q"}, domain.RoutingDecision{}, 8)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if chunks[0].Score != 0.9 {
		t.Fatalf("expected highest score first, got %f", chunks[0].Score)
	}
	if chunks[1].Filing.Accession != "a-2" {
		t.Fatalf("expected tie broken by more recent filing, got %s", chunks[1].Filing.Accession)
	}
}

func TestSearchPassesMetadataFilters(t *testing.T) {
	vector := &vectorSearcherFake{}
	uc := NewSemanticRetrieverUseCase(&embedderFake{vector: make([]float32, 4)}, vector, 4, 8)

	decision := domain.RoutingDecision{
		Tickers:  []string{"ORCL"},
		Sections: []domain.SectionType{domain.SectionRiskFactors},
	}
	if _, err := uc.Search(context.Background(), domain.Question{Text: "q"}, decision, 8); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(vector.filter.Tickers) != 1 || vector.filter.Tickers[0] != "ORCL" {
		t.Fatalf("expected ticker filter forwarded, got %v", vector.filter.Tickers)
	}
	if len(vector.filter.Sections) != 1 || vector.filter.Sections[0] != domain.SectionRiskFactors {
		t.Fatalf("expected section filter forwarded, got %v", vector.filter.Sections)
	}
}

func TestSearchWrapsStoreErrorAsQualitativeFailure(t *testing.T) {
	vector := &vectorSearcherFake{err: errors.New("qdrant down")}
	uc := NewSemanticRetrieverUseCase(&embedderFake{vector: make([]float32, 4)}, vector, 4, 8)

	_, err := uc.Search(context.Background(), domain.Question{Text: "q"}, domain.RoutingDecision{}, 8)
	if !domain.IsKind(err, domain.ErrQualitativeRetrieval) {
		t.Fatalf("expected ErrQualitativeRetrieval, got %v", err)
	}
}
