package ports

import (
	"context"

	"github.com/McSavage/edgar-rag/internal/core/domain"
)

// AskOptions are caller-supplied overrides applied on top of the classifier's
// extracted filters.
type AskOptions struct {
	Tickers []string
	TopK    int
}

// QuestionAnswerer is the inbound contract for the full ask pipeline:
// classify, retrieve, synthesize.
type QuestionAnswerer interface {
	Ask(ctx context.Context, question domain.Question, opts AskOptions) (domain.Answer, error)
}

// IntentClassifier routes a raw question to a retrieval strategy. It never
// fails: classification errors degrade to the hybrid/unrestricted default.
type IntentClassifier interface {
	Classify(ctx context.Context, question domain.Question) domain.RoutingDecision
}

// EvidenceResolver drives the retrieval branches selected by a decision and
// merges whatever succeeded.
type EvidenceResolver interface {
	Resolve(ctx context.Context, question domain.Question, decision domain.RoutingDecision) (domain.Evidence, error)
}

// AnswerSynthesizer grounds the final answer in collected evidence.
type AnswerSynthesizer interface {
	Synthesize(ctx context.Context, question domain.Question, evidence domain.Evidence) (domain.Answer, error)
}
