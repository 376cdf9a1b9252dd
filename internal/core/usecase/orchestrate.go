package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/McSavage/edgar-rag/internal/core/domain"
)

// factPlanner and chunkRetriever are the orchestrator-side views of the two
// retrieval branches, narrow so tests can substitute deterministic stubs.
type factPlanner interface {
	PlanAndExecute(ctx context.Context, decision domain.RoutingDecision) ([]domain.FactRecord, bool, error)
}

type chunkRetriever interface {
	Search(ctx context.Context, question domain.Question, decision domain.RoutingDecision, topK int) ([]domain.ChunkRecord, error)
}

// HybridOrchestratorUseCase drives the retrieval branches a routing decision
// selects and merges whatever succeeded. Policy: prefer a partially-grounded
// answer with a disclosed gap over a hard failure, except when no branch
// produced evidence at all.
type HybridOrchestratorUseCase struct {
	planner   factPlanner
	retriever chunkRetriever
	// branchTimeout bounds each retrieval branch independently.
	branchTimeout time.Duration
}

func NewHybridOrchestratorUseCase(planner factPlanner, retriever chunkRetriever, branchTimeout time.Duration) *HybridOrchestratorUseCase {
	if branchTimeout <= 0 {
		branchTimeout = 5 * time.Second
	}
	return &HybridOrchestratorUseCase{
		planner:       planner,
		retriever:     retriever,
		branchTimeout: branchTimeout,
	}
}

type branchResult struct {
	facts     []domain.FactRecord
	chunks    []domain.ChunkRecord
	truncated bool
	err       error
}

// Resolve collects evidence for one question. In hybrid mode both branches
// run concurrently; the join below is the only synchronization point, and
// results never outlive this call, so evidence cannot leak across requests.
func (uc *HybridOrchestratorUseCase) Resolve(ctx context.Context, question domain.Question, decision domain.RoutingDecision, topK int) (domain.Evidence, error) {
	switch decision.Strategy {
	case domain.StrategyQuantitative:
		res := uc.runFacts(ctx, decision)
		if res.err != nil {
			return domain.Evidence{}, res.err
		}
		return domain.Evidence{Facts: res.facts, Truncated: res.truncated}, nil

	case domain.StrategyQualitative:
		res := uc.runChunks(ctx, question, decision, topK)
		if res.err != nil {
			return domain.Evidence{}, res.err
		}
		return domain.Evidence{Chunks: res.chunks}, nil

	default:
		return uc.resolveHybrid(ctx, question, decision, topK)
	}
}

func (uc *HybridOrchestratorUseCase) resolveHybrid(ctx context.Context, question domain.Question, decision domain.RoutingDecision, topK int) (domain.Evidence, error) {
	var (
		wg        sync.WaitGroup
		factsRes  branchResult
		chunksRes branchResult
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		factsRes = uc.runFacts(ctx, decision)
	}()
	go func() {
		defer wg.Done()
		chunksRes = uc.runChunks(ctx, question, decision, topK)
	}()
	wg.Wait()

	if factsRes.err != nil && chunksRes.err != nil {
		return domain.Evidence{}, errors.Join(factsRes.err, chunksRes.err)
	}

	evidence := domain.Evidence{
		Facts:     factsRes.facts,
		Chunks:    chunksRes.chunks,
		Truncated: factsRes.truncated,
	}
	if factsRes.err != nil {
		evidence.Partial = true
		evidence.FailedBranches = append(evidence.FailedBranches, domain.StrategyQuantitative)
		slog.Warn("hybrid_branch_failed", "question_id", question.ID, "branch", "quantitative", "error", factsRes.err)
	}
	if chunksRes.err != nil {
		evidence.Partial = true
		evidence.FailedBranches = append(evidence.FailedBranches, domain.StrategyQualitative)
		slog.Warn("hybrid_branch_failed", "question_id", question.ID, "branch", "qualitative", "error", chunksRes.err)
	}
	return evidence, nil
}

func (uc *HybridOrchestratorUseCase) runFacts(ctx context.Context, decision domain.RoutingDecision) branchResult {
	branchCtx, cancel := context.WithTimeout(ctx, uc.branchTimeout)
	defer cancel()

	facts, truncated, err := uc.planner.PlanAndExecute(branchCtx, decision)
	return branchResult{facts: facts, truncated: truncated, err: err}
}

func (uc *HybridOrchestratorUseCase) runChunks(ctx context.Context, question domain.Question, decision domain.RoutingDecision, topK int) branchResult {
	branchCtx, cancel := context.WithTimeout(ctx, uc.branchTimeout)
	defer cancel()

	chunks, err := uc.retriever.Search(branchCtx, question, decision, topK)
	return branchResult{chunks: chunks, err: err}
}
