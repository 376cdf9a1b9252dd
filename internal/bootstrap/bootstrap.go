package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/McSavage/edgar-rag/internal/config"
	"github.com/McSavage/edgar-rag/internal/core/ports"
	"github.com/McSavage/edgar-rag/internal/core/usecase"
	"github.com/McSavage/edgar-rag/internal/infrastructure/embedding/voyage"
	"github.com/McSavage/edgar-rag/internal/infrastructure/llm/anthropic"
	"github.com/McSavage/edgar-rag/internal/infrastructure/repository/postgres"
	"github.com/McSavage/edgar-rag/internal/infrastructure/resilience"
	"github.com/McSavage/edgar-rag/internal/infrastructure/vector/qdrant"
)

type App struct {
	Config config.Config

	AskUC ports.QuestionAnswerer

	closeFn func()
}

func New(_ context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	factStore := postgres.NewFactRepository(db)

	executor := resilience.NewExecutor(resilience.Config{
		MaxAttempts:         cfg.RetryMaxAttempts,
		InitialBackoff:      time.Duration(cfg.RetryInitialBackoffMS) * time.Millisecond,
		MaxBackoff:          time.Duration(cfg.RetryMaxBackoffMS) * time.Millisecond,
		BackoffFactor:       cfg.RetryBackoffFactor,
		CallsPerSecond:      cfg.LLMCallsPerSecond,
		BreakerEnabled:      cfg.BreakerEnabled,
		BreakerMinRequests:  uint32(cfg.BreakerMinRequests),
		BreakerFailureRatio: cfg.BreakerFailureRatio,
		BreakerOpenTimeout:  time.Duration(cfg.BreakerOpenTimeoutSecs) * time.Second,
	})

	anthropicClient := anthropic.New(cfg.AnthropicURL, cfg.AnthropicAPIKey, cfg.AnthropicModel).WithExecutor(executor)
	intentModel := anthropic.NewClassifier(anthropicClient)
	synthesisModel := anthropic.NewGenerator(anthropicClient)

	embedder := voyage.New(cfg.VoyageURL, cfg.VoyageAPIKey, cfg.VoyageModel, cfg.EmbeddingDimension).WithExecutor(executor)
	vectorDB := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection)

	classifier := usecase.NewIntentClassifierUseCase(intentModel, cfg.TrackedTickers)
	planner := usecase.NewFactPlannerUseCase(factStore, usecase.NewConceptCatalog(), cfg.FactRowCap)
	retriever := usecase.NewSemanticRetrieverUseCase(embedder, vectorDB, cfg.EmbeddingDimension, cfg.TopK)
	orchestrator := usecase.NewHybridOrchestratorUseCase(planner, retriever,
		time.Duration(cfg.BranchTimeoutSeconds)*time.Second)
	synthesizer := usecase.NewAnswerSynthesizerUseCase(synthesisModel)

	askUC := usecase.NewAskUseCase(classifier, orchestrator, synthesizer, cfg.TrackedTickers)

	return &App{
		Config: cfg,
		AskUC:  askUC,

		closeFn: func() {
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
