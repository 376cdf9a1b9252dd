package usecase

import (
	"context"
	"log/slog"

	"github.com/McSavage/edgar-rag/internal/core/domain"
	"github.com/McSavage/edgar-rag/internal/core/ports"
)

// IntentClassifierUseCase routes a question to a retrieval strategy using a
// model call with a constrained output schema. The model's output is
// validated at this boundary: anything outside the strategy enum, and any
// transport or parse failure, degrades to the hybrid/unrestricted default so
// downstream code only ever sees a closed type. Classification failures are
// never surfaced to the user.
type IntentClassifierUseCase struct {
	model   ports.IntentModel
	tracked []string
}

func NewIntentClassifierUseCase(model ports.IntentModel, trackedTickers []string) *IntentClassifierUseCase {
	return &IntentClassifierUseCase{
		model:   model,
		tracked: trackedTickers,
	}
}

func (uc *IntentClassifierUseCase) Classify(ctx context.Context, question domain.Question) domain.RoutingDecision {
	decision, err := uc.model.ClassifyIntent(ctx, question.Text)
	if err != nil {
		slog.Warn("intent_classification_failed",
			"question_id", question.ID,
			"error", err,
		)
		return domain.DefaultDecision()
	}

	if !decision.Strategy.Valid() {
		slog.Warn("intent_classification_out_of_enum",
			"question_id", question.ID,
			"strategy", string(decision.Strategy),
		)
		return domain.DefaultDecision()
	}

	decision.NormalizeTickers(uc.tracked)
	return decision
}
