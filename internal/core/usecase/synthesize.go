package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/McSavage/edgar-rag/internal/core/domain"
	"github.com/McSavage/edgar-rag/internal/core/ports"
)

// AnswerSynthesizerUseCase grounds the final answer in collected evidence.
// Facts are presented as a compact table and chunks as labeled excerpts;
// every citation in the returned answer is validated against the evidence,
// so the synthesizer cannot fabricate provenance.
type AnswerSynthesizerUseCase struct {
	model ports.SynthesisModel
}

func NewAnswerSynthesizerUseCase(model ports.SynthesisModel) *AnswerSynthesizerUseCase {
	return &AnswerSynthesizerUseCase{model: model}
}

func (uc *AnswerSynthesizerUseCase) Synthesize(ctx context.Context, question domain.Question, evidence domain.Evidence) (domain.Answer, error) {
	if evidence.Empty() {
		return domain.NoEvidenceAnswer(), nil
	}

	prompt, sources := buildSynthesisPrompt(question, evidence)
	text, err := uc.model.GenerateAnswer(ctx, prompt)
	if err != nil {
		return domain.Answer{}, domain.WrapError(domain.ErrSynthesis, "generate answer", err)
	}

	text, citations, reduced := resolveCitations(text, sources, evidence)
	text = appendDisclosures(text, evidence)

	return domain.Answer{
		Text:            text,
		Citations:       citations,
		Partial:         evidence.Partial,
		FailedBranches:  evidence.FailedBranches,
		Truncated:       evidence.Truncated,
		ReducedCitation: reduced,
	}, nil
}

// buildSynthesisPrompt renders the evidence with stable source tags ([F1],
// [N1], ...) and returns the tag-to-filing mapping used to validate the
// model's citations afterwards.
func buildSynthesisPrompt(question domain.Question, evidence domain.Evidence) (string, map[string]domain.FilingRef) {
	sources := make(map[string]domain.FilingRef, len(evidence.Facts)+len(evidence.Chunks))
	var b strings.Builder

	b.WriteString("You are a financial research assistant answering strictly from SEC filing evidence.\n")
	b.WriteString("Rules:\n")
	b.WriteString("- Use only the evidence below. Do not state any number that is not in the FACTS table.\n")
	b.WriteString("- Do not assert any claim that is not supported by an EXCERPT.\n")
	b.WriteString("- Cite evidence inline with its source tag, e.g. [F1] or [N2].\n")
	b.WriteString("- If the evidence does not answer the question, say so.\n")

	if len(evidence.Facts) > 0 {
		b.WriteString("\nFACTS (value in " + factUnit(evidence.Facts) + "):\n")
		b.WriteString("tag | ticker | concept | period end | value | filing\n")
		for i, fact := range evidence.Facts {
			tag := fmt.Sprintf("F%d", i+1)
			sources[tag] = fact.Filing
			fmt.Fprintf(&b, "[%s] | %s | %s | %s | %.2f | %s\n",
				tag, fact.Ticker, fact.Concept, fact.PeriodEnd.Format("2006-01-02"), fact.Value, fact.Filing.Label())
		}
	}

	if len(evidence.Chunks) > 0 {
		b.WriteString("\nEXCERPTS:\n")
		for i, chunk := range evidence.Chunks {
			tag := fmt.Sprintf("N%d", i+1)
			sources[tag] = chunk.Filing
			fmt.Fprintf(&b, "[%s] %s section=%s\n%s\n\n", tag, chunk.Filing.Label(), chunk.Section, chunk.Text)
		}
	}

	if evidence.Partial {
		b.WriteString("\nNote: one retrieval source was unavailable; the evidence above is incomplete. Disclose this.\n")
	}
	if evidence.Truncated {
		b.WriteString("\nNote: the structured results were capped; totals may be incomplete. Disclose this.\n")
	}

	b.WriteString("\nQuestion:\n")
	b.WriteString(question.Text)
	b.WriteString("\n")
	return b.String(), sources
}

func factUnit(facts []domain.FactRecord) string {
	unit := facts[0].Unit
	for _, f := range facts[1:] {
		if f.Unit != unit {
			return "mixed units, see rows"
		}
	}
	if unit == "" {
		return "USD"
	}
	return unit
}

var citationTagPattern = regexp.MustCompile(`\[([FN]\d+)\]`)

// resolveCitations maps the source tags the model cited back to filing
// references. Tags that do not correspond to supplied evidence are stripped
// from the text and the answer is flagged reduced-citation. A model response
// with no tags at all falls back to citing every filing in evidence, which
// keeps the provenance postcondition trivially true.
func resolveCitations(text string, sources map[string]domain.FilingRef, evidence domain.Evidence) (string, []domain.FilingRef, bool) {
	matches := citationTagPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return text, evidence.Filings(), false
	}

	reduced := false
	seen := make(map[string]struct{})
	citations := make([]domain.FilingRef, 0, len(matches))
	for _, m := range matches {
		tag := m[1]
		ref, ok := sources[tag]
		if !ok {
			reduced = true
			text = strings.ReplaceAll(text, "["+tag+"]", "")
			continue
		}
		if _, dup := seen[ref.Key()]; dup {
			continue
		}
		seen[ref.Key()] = struct{}{}
		citations = append(citations, ref)
	}
	return strings.TrimSpace(text), citations, reduced
}

func appendDisclosures(text string, evidence domain.Evidence) string {
	var notes []string
	if evidence.Partial {
		branches := make([]string, 0, len(evidence.FailedBranches))
		for _, b := range evidence.FailedBranches {
			branches = append(branches, string(b))
		}
		notes = append(notes, "Note: the "+strings.Join(branches, " and ")+" retrieval source was unavailable, so this answer is based on partial evidence.")
	}
	if evidence.Truncated {
		notes = append(notes, "Note: structured results were limited by the row cap and may be incomplete.")
	}
	if len(notes) == 0 {
		return text
	}
	return strings.TrimSpace(text) + "\n\n" + strings.Join(notes, "\n")
}
