package domain

// Question is the immutable input for one request. Created per request and
// discarded after the response; no history is persisted by the core.
type Question struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	SessionID string `json:"session_id,omitempty"`
}

// Answer is the grounded response returned to the caller. Citations are
// validated against the Evidence the synthesizer received; it never cites a
// filing that was not in evidence.
type Answer struct {
	Text      string      `json:"text"`
	Citations []FilingRef `json:"citations"`

	// Strategy and the evidence counts describe how the answer was produced.
	Strategy   Strategy `json:"strategy,omitempty"`
	FactCount  int      `json:"fact_count"`
	ChunkCount int      `json:"chunk_count"`

	Partial        bool       `json:"partial,omitempty"`
	FailedBranches []Strategy `json:"failed_branches,omitempty"`
	Truncated      bool       `json:"truncated,omitempty"`
	// ReducedCitation reports that the model cited sources outside the
	// evidence and those citations were stripped.
	ReducedCitation bool `json:"reduced_citation,omitempty"`
	NoEvidence      bool `json:"no_evidence,omitempty"`
}

// NoEvidenceAnswerText is the fixed terminal answer when neither store
// returned anything relevant. No model call is made in that case.
const NoEvidenceAnswerText = "No relevant evidence was found in the indexed filings for this question. " +
	"Try naming one of the tracked companies or widening the date range."

func NoEvidenceAnswer() Answer {
	return Answer{
		Text:       NoEvidenceAnswerText,
		Citations:  []FilingRef{},
		NoEvidence: true,
	}
}
