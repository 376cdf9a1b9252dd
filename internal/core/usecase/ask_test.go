package usecase

import (
	"context"
	"testing"

	"github.com/McSavage/edgar-rag/internal/core/domain"
	"github.com/McSavage/edgar-rag/internal/core/ports"
)

type classifierFake struct {
	decision domain.RoutingDecision
}

func (f *classifierFake) Classify(context.Context, domain.Question) domain.RoutingDecision {
	return f.decision
}

type resolverFake struct {
	decision domain.RoutingDecision
	topK     int
	evidence domain.Evidence
	err      error
}

func (f *resolverFake) Resolve(_ context.Context, _ domain.Question, decision domain.RoutingDecision, topK int) (domain.Evidence, error) {
	f.decision = decision
	f.topK = topK
	if f.err != nil {
		return domain.Evidence{}, f.err
	}
	return f.evidence, nil
}

type synthesizerFake struct {
	evidence domain.Evidence
	answer   domain.Answer
}

func (f *synthesizerFake) Synthesize(_ context.Context, _ domain.Question, evidence domain.Evidence) (domain.Answer, error) {
	f.evidence = evidence
	return f.answer, nil
}

func TestAskRejectsEmptyQuestion(t *testing.T) {
	uc := NewAskUseCase(&classifierFake{}, &resolverFake{}, &synthesizerFake{}, trackedTickers)

	_, err := uc.Ask(context.Background(), domain.Question{Text: "   "}, ports.AskOptions{})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAskRunsFullPipeline(t *testing.T) {
	classifier := &classifierFake{decision: domain.RoutingDecision{
		Strategy: domain.StrategyHybrid,
		Tickers:  []string{"MSFT"},
	}}
	resolver := &resolverFake{evidence: domain.Evidence{Facts: []domain.FactRecord{someFact()}}}
	synthesizer := &synthesizerFake{answer: domain.Answer{Text: "grounded answer"}}
	uc := NewAskUseCase(classifier, resolver, synthesizer, trackedTickers)

	answer, err := uc.Ask(context.Background(), domain.Question{ID: "q1", Text: "revenue?"}, ports.AskOptions{TopK: 5})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if answer.Text != "grounded answer" {
		t.Fatalf("unexpected answer: %+v", answer)
	}
	if resolver.topK != 5 {
		t.Fatalf("expected top-k override forwarded, got %d", resolver.topK)
	}
	if len(synthesizer.evidence.Facts) != 1 {
		t.Fatalf("expected resolved evidence handed to synthesizer")
	}
}

func TestAskCallerTickersOverrideExtractedHints(t *testing.T) {
	classifier := &classifierFake{decision: domain.RoutingDecision{
		Strategy: domain.StrategyQualitative,
		Tickers:  []string{"MSFT"},
	}}
	resolver := &resolverFake{}
	uc := NewAskUseCase(classifier, resolver, &synthesizerFake{}, trackedTickers)

	_, err := uc.Ask(context.Background(), domain.Question{ID: "q1", Text: "risks?"}, ports.AskOptions{
		Tickers: []string{"orcl", "IBM"},
	})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if len(resolver.decision.Tickers) != 1 || resolver.decision.Tickers[0] != "ORCL" {
		t.Fatalf("expected caller override normalized to [ORCL], got %v", resolver.decision.Tickers)
	}
}
