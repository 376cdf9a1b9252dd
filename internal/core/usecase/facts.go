package usecase

import (
	"context"
	"sort"

	"github.com/McSavage/edgar-rag/internal/core/domain"
	"github.com/McSavage/edgar-rag/internal/core/ports"
)

// defaultFactRowCap bounds the rows handed to synthesis when config does not
// override it.
const defaultFactRowCap = 500

// FactPlannerUseCase translates a quantitative intent into a bounded
// structured-data query. Metric hints resolve through the concept catalog;
// the row count is capped and truncation is reported so the synthesizer can
// disclose it.
type FactPlannerUseCase struct {
	store   ports.FactStore
	catalog *ConceptCatalog
	rowCap  int
}

func NewFactPlannerUseCase(store ports.FactStore, catalog *ConceptCatalog, rowCap int) *FactPlannerUseCase {
	if rowCap <= 0 {
		rowCap = defaultFactRowCap
	}
	return &FactPlannerUseCase{
		store:   store,
		catalog: catalog,
		rowCap:  rowCap,
	}
}

// PlanAndExecute runs the facts query for a routing decision. The second
// return reports that the row ceiling was hit.
func (uc *FactPlannerUseCase) PlanAndExecute(ctx context.Context, decision domain.RoutingDecision) ([]domain.FactRecord, bool, error) {
	query := ports.FactQuery{
		Tickers:   decision.Tickers,
		Concepts:  uc.catalog.Resolve(decision.MetricHints),
		DateRange: decision.DateRange,
		Limit:     uc.rowCap,
	}

	facts, truncated, err := uc.store.Query(ctx, query)
	if err != nil {
		return nil, false, domain.WrapError(domain.ErrQuantitativeRetrieval, "facts query", err)
	}

	orderFacts(facts)
	return facts, truncated, nil
}

// orderFacts enforces the presentation order (ticker, period end desc,
// concept) regardless of how the store returned rows, so repeated identical
// queries present identically.
func orderFacts(facts []domain.FactRecord) {
	sort.SliceStable(facts, func(i, j int) bool {
		if facts[i].Ticker != facts[j].Ticker {
			return facts[i].Ticker < facts[j].Ticker
		}
		if !facts[i].PeriodEnd.Equal(facts[j].PeriodEnd) {
			return facts[i].PeriodEnd.After(facts[j].PeriodEnd)
		}
		return facts[i].Concept < facts[j].Concept
	})
}
