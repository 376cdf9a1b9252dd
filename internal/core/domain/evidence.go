package domain

import (
	"fmt"
	"time"
)

// FilingRef is the provenance unit every evidence item carries. It is enough
// for the synthesizer to cite the source filing.
type FilingRef struct {
	Accession  string    `json:"accession"`
	Ticker     string    `json:"ticker"`
	FilingType string    `json:"filing_type"`
	FilingDate time.Time `json:"filing_date"`
}

func (r FilingRef) Label() string {
	return fmt.Sprintf("%s %s %s (%s)", r.Ticker, r.FilingType, r.FilingDate.Format("2006-01-02"), r.Accession)
}

// Key identifies a filing independent of how it was retrieved. Accession
// numbers are unique per filing; fall back to the tuple when the ingestion
// pipeline did not record one.
func (r FilingRef) Key() string {
	if r.Accession != "" {
		return r.Accession
	}
	return fmt.Sprintf("%s|%s|%s", r.Ticker, r.FilingType, r.FilingDate.Format("2006-01-02"))
}

// FactRecord is a standardized numeric data point read verbatim from the
// facts store. The core filters and orders facts but never mutates them.
type FactRecord struct {
	Ticker        string    `json:"ticker"`
	Concept       string    `json:"concept"`
	Label         string    `json:"label"`
	Value         float64   `json:"value"`
	Unit          string    `json:"unit"`
	StatementType string    `json:"statement_type"`
	PeriodEnd     time.Time `json:"period_end"`
	Filing        FilingRef `json:"filing"`
}

// ChunkRecord is a narrative excerpt ranked by the vector store. Score is a
// relevance signal only, never a probability.
type ChunkRecord struct {
	Ticker     string      `json:"ticker"`
	Section    SectionType `json:"section"`
	Text       string      `json:"text"`
	ChunkIndex int         `json:"chunk_index"`
	Score      float64     `json:"score"`
	Filing     FilingRef   `json:"filing"`
}

// Evidence is everything gathered for one question. Facts are ordered
// (ticker, period end desc, concept); chunks by descending relevance.
type Evidence struct {
	Facts  []FactRecord  `json:"facts"`
	Chunks []ChunkRecord `json:"chunks"`

	// Truncated reports that the facts query hit its row ceiling.
	Truncated bool `json:"truncated"`
	// Partial reports that one retrieval branch of a hybrid question failed
	// and the evidence covers only the surviving branch.
	Partial        bool       `json:"partial"`
	FailedBranches []Strategy `json:"failed_branches,omitempty"`
}

func (e Evidence) Empty() bool {
	return len(e.Facts) == 0 && len(e.Chunks) == 0
}

// Filings returns the distinct filing references backing this evidence,
// facts first, in evidence order.
func (e Evidence) Filings() []FilingRef {
	seen := make(map[string]struct{}, len(e.Facts)+len(e.Chunks))
	out := make([]FilingRef, 0, len(e.Facts)+len(e.Chunks))
	add := func(ref FilingRef) {
		if _, ok := seen[ref.Key()]; ok {
			return
		}
		seen[ref.Key()] = struct{}{}
		out = append(out, ref)
	}
	for _, f := range e.Facts {
		add(f.Filing)
	}
	for _, c := range e.Chunks {
		add(c.Filing)
	}
	return out
}
