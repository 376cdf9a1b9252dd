package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/McSavage/edgar-rag/internal/core/domain"
	"github.com/McSavage/edgar-rag/internal/core/ports"
)

var errEmptyQuestion = errors.New("question text is empty")

type evidenceResolver interface {
	Resolve(ctx context.Context, question domain.Question, decision domain.RoutingDecision, topK int) (domain.Evidence, error)
}

// AskUseCase is the full pipeline: classify the question, resolve evidence,
// synthesize a grounded answer.
type AskUseCase struct {
	classifier  ports.IntentClassifier
	resolver    evidenceResolver
	synthesizer ports.AnswerSynthesizer
	tracked     []string
}

func NewAskUseCase(
	classifier ports.IntentClassifier,
	resolver evidenceResolver,
	synthesizer ports.AnswerSynthesizer,
	trackedTickers []string,
) *AskUseCase {
	return &AskUseCase{
		classifier:  classifier,
		resolver:    resolver,
		synthesizer: synthesizer,
		tracked:     trackedTickers,
	}
}

func (uc *AskUseCase) Ask(ctx context.Context, question domain.Question, opts ports.AskOptions) (domain.Answer, error) {
	if strings.TrimSpace(question.Text) == "" {
		return domain.Answer{}, domain.WrapError(domain.ErrInvalidInput, "ask", errEmptyQuestion)
	}

	start := time.Now()
	decision := uc.classifier.Classify(ctx, question)
	if len(opts.Tickers) > 0 {
		// Explicit caller filters beat extracted hints.
		decision.Tickers = opts.Tickers
		decision.NormalizeTickers(uc.tracked)
	}
	slog.Info("question_routed",
		"question_id", question.ID,
		"strategy", string(decision.Strategy),
		"tickers", decision.Tickers,
		"metric_hints", decision.MetricHints,
	)

	evidence, err := uc.resolver.Resolve(ctx, question, decision, opts.TopK)
	if err != nil {
		return domain.Answer{}, err
	}

	answer, err := uc.synthesizer.Synthesize(ctx, question, evidence)
	if err != nil {
		return domain.Answer{}, err
	}
	answer.Strategy = decision.Strategy
	answer.FactCount = len(evidence.Facts)
	answer.ChunkCount = len(evidence.Chunks)

	slog.Info("question_answered",
		"question_id", question.ID,
		"strategy", string(decision.Strategy),
		"facts", len(evidence.Facts),
		"chunks", len(evidence.Chunks),
		"partial", evidence.Partial,
		"no_evidence", answer.NoEvidence,
		"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
	)
	return answer, nil
}
