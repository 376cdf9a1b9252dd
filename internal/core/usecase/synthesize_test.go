package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/McSavage/edgar-rag/internal/core/domain"
)

type synthesisModelFake struct {
	prompt string
	answer string
	err    error
	calls  int
}

func (f *synthesisModelFake) GenerateAnswer(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.prompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func TestSynthesizeEmptyEvidenceSkipsModel(t *testing.T) {
	model := &synthesisModelFake{}
	uc := NewAnswerSynthesizerUseCase(model)

	answer, err := uc.Synthesize(context.Background(), domain.Question{Text: "q"}, domain.Evidence{})
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if model.calls != 0 {
		t.Fatalf("no-evidence answer must not invoke the model")
	}
	if !answer.NoEvidence || answer.Text != domain.NoEvidenceAnswerText {
		t.Fatalf("expected fixed no-evidence answer, got %+v", answer)
	}
}

func TestSynthesizePromptCarriesFactsAndExcerpts(t *testing.T) {
	model := &synthesisModelFake{answer: "Revenue was $64727 million. [F1]"}
	uc := NewAnswerSynthesizerUseCase(model)

	evidence := domain.Evidence{
		Facts:  []domain.FactRecord{someFact()},
		Chunks: []domain.ChunkRecord{someChunk()},
	}
	_, err := uc.Synthesize(context.Background(), domain.Question{Text: "revenue?"}, evidence)
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if !strings.Contains(model.prompt, "[F1]") || !strings.Contains(model.prompt, "Revenues") {
		t.Fatalf("expected fact row with tag in prompt:\n%s", model.prompt)
	}
	if !strings.Contains(model.prompt, "[N1]") || !strings.Contains(model.prompt, "cloud infrastructure") {
		t.Fatalf("expected labeled excerpt in prompt:\n%s", model.prompt)
	}
	if !strings.Contains(model.prompt, "Do not state any number") {
		t.Fatalf("expected grounding instruction in prompt")
	}
}

func TestSynthesizeCitationsResolveToEvidenceFilings(t *testing.T) {
	model := &synthesisModelFake{answer: "Revenue grew [F1] while risks persist [N1]."}
	uc := NewAnswerSynthesizerUseCase(model)

	evidence := domain.Evidence{
		Facts:  []domain.FactRecord{someFact()},
		Chunks: []domain.ChunkRecord{someChunk()},
	}
	answer, err := uc.Synthesize(context.Background(), domain.Question{Text: "q"}, evidence)
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if len(answer.Citations) != 2 {
		t.Fatalf("expected 2 citations, got %v", answer.Citations)
	}
	if answer.Citations[0].Accession != "msft-q2" || answer.Citations[1].Accession != "orcl-10k" {
		t.Fatalf("unexpected citation order: %v", answer.Citations)
	}
	if answer.ReducedCitation {
		t.Fatalf("all citations valid, reduced flag must be clear")
	}
}

func TestSynthesizeStripsFabricatedCitations(t *testing.T) {
	model := &synthesisModelFake{answer: "Supported claim [F1]. Fabricated claim [N7]."}
	uc := NewAnswerSynthesizerUseCase(model)

	evidence := domain.Evidence{Facts: []domain.FactRecord{someFact()}}
	answer, err := uc.Synthesize(context.Background(), domain.Question{Text: "q"}, evidence)
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if !answer.ReducedCitation {
		t.Fatalf("expected reduced-citation flag")
	}
	if strings.Contains(answer.Text, "[N7]") {
		t.Fatalf("fabricated tag must be stripped from the text: %q", answer.Text)
	}
	if len(answer.Citations) != 1 || answer.Citations[0].Accession != "msft-q2" {
		t.Fatalf("expected only the supported citation, got %v", answer.Citations)
	}
}

func TestSynthesizeUntaggedAnswerCitesAllEvidence(t *testing.T) {
	model := &synthesisModelFake{answer: "A plain answer with no tags."}
	uc := NewAnswerSynthesizerUseCase(model)

	evidence := domain.Evidence{
		Facts:  []domain.FactRecord{someFact()},
		Chunks: []domain.ChunkRecord{someChunk()},
	}
	answer, err := uc.Synthesize(context.Background(), domain.Question{Text: "q"}, evidence)
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if len(answer.Citations) != 2 {
		t.Fatalf("expected fallback to all evidence filings, got %v", answer.Citations)
	}
}

func TestSynthesizeDisclosesTruncationAndPartialEvidence(t *testing.T) {
	model := &synthesisModelFake{answer: "Some answer [F1]."}
	uc := NewAnswerSynthesizerUseCase(model)

	evidence := domain.Evidence{
		Facts:          []domain.FactRecord{someFact()},
		Truncated:      true,
		Partial:        true,
		FailedBranches: []domain.Strategy{domain.StrategyQualitative},
	}
	answer, err := uc.Synthesize(context.Background(), domain.Question{Text: "q"}, evidence)
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if !answer.Truncated || !answer.Partial {
		t.Fatalf("expected flags carried onto answer, got %+v", answer)
	}
	if !strings.Contains(answer.Text, "row cap") {
		t.Fatalf("expected truncation disclosure in text: %q", answer.Text)
	}
	if !strings.Contains(answer.Text, "qualitative") {
		t.Fatalf("expected partial-evidence disclosure naming the failed branch: %q", answer.Text)
	}
}

func TestSynthesizeModelFailureIsSynthesisError(t *testing.T) {
	model := &synthesisModelFake{err: errors.New("model unreachable")}
	uc := NewAnswerSynthesizerUseCase(model)

	_, err := uc.Synthesize(context.Background(), domain.Question{Text: "q"}, domain.Evidence{Facts: []domain.FactRecord{someFact()}})
	if !domain.IsKind(err, domain.ErrSynthesis) {
		t.Fatalf("expected ErrSynthesis, got %v", err)
	}
}
