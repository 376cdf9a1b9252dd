package usecase

import (
	"sort"
	"strings"
)

// ConceptCatalog maps user-facing metric language to the standardized XBRL
// concept identifiers the facts store is keyed by. Standard identifiers are
// opaque to end users, so resolution is exact-first with a fuzzy fallback
// that surfaces the lexically closest concepts instead of returning nothing.
type ConceptCatalog struct {
	aliases  map[string]string // normalized alias -> concept id
	concepts []conceptEntry    // stable iteration order for fuzzy scoring
}

type conceptEntry struct {
	id     string
	tokens map[string]struct{}
}

// fuzzyTopK concepts are surfaced when no alias matches a hint exactly.
const fuzzyTopK = 3

// NewConceptCatalog builds the controlled vocabulary for the standardized
// concepts the ingestion pipeline emits.
func NewConceptCatalog() *ConceptCatalog {
	vocabulary := map[string][]string{
		"Revenues":                                      {"revenue", "revenues", "total revenue", "net sales", "sales", "top line"},
		"CostOfRevenue":                                 {"cost of revenue", "cost of sales", "cogs"},
		"GrossProfit":                                   {"gross profit", "gross margin"},
		"OperatingIncomeLoss":                           {"operating income", "operating profit", "income from operations"},
		"NetIncomeLoss":                                 {"net income", "net profit", "earnings", "profit", "bottom line"},
		"EarningsPerShareDiluted":                       {"eps", "earnings per share", "diluted eps"},
		"ResearchAndDevelopmentExpense":                 {"research and development", "r and d", "rd expense"},
		"SellingGeneralAndAdministrativeExpense":        {"sga", "selling general and administrative", "overhead"},
		"Assets":                                        {"total assets", "assets"},
		"Liabilities":                                   {"total liabilities", "liabilities"},
		"StockholdersEquity":                            {"stockholders equity", "shareholders equity", "book value"},
		"CashAndCashEquivalentsAtCarryingValue":         {"cash", "cash and equivalents", "cash position"},
		"LongTermDebtNoncurrent":                        {"long term debt", "debt"},
		"NetCashProvidedByUsedInOperatingActivities":    {"operating cash flow", "cash from operations", "cash flow"},
		"PaymentsToAcquirePropertyPlantAndEquipment":    {"capital expenditures", "capex"},
		"PaymentsOfDividends":                           {"dividends", "dividends paid"},
	}

	catalog := &ConceptCatalog{aliases: make(map[string]string)}
	ids := make([]string, 0, len(vocabulary))
	for id := range vocabulary {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		tokens := toTokenSet(id)
		catalog.aliases[normalizeAlias(id)] = id
		for _, alias := range vocabulary[id] {
			catalog.aliases[normalizeAlias(alias)] = id
			for _, token := range splitAlphaNumLower(alias) {
				tokens[token] = struct{}{}
			}
		}
		catalog.concepts = append(catalog.concepts, conceptEntry{id: id, tokens: tokens})
	}
	return catalog
}

// Resolve translates metric hints to concept identifiers. Exact alias hits
// win; a hint with no exact match contributes the fuzzyTopK closest concepts
// by token overlap, tie-broken lexicographically so resolution stays
// deterministic. No hints means no concept restriction.
func (c *ConceptCatalog) Resolve(hints []string) []string {
	if len(hints) == 0 {
		return nil
	}

	seen := make(map[string]struct{})
	out := make([]string, 0, len(hints))
	add := func(id string) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	for _, hint := range hints {
		if strings.TrimSpace(hint) == "" {
			continue
		}
		if id, ok := c.aliases[normalizeAlias(hint)]; ok {
			add(id)
			continue
		}
		for _, id := range c.closest(hint, fuzzyTopK) {
			add(id)
		}
	}
	return out
}

func (c *ConceptCatalog) closest(hint string, k int) []string {
	hintTokens := toTokenSet(hint)

	type scored struct {
		id    string
		score float64
	}
	candidates := make([]scored, 0, len(c.concepts))
	for _, entry := range c.concepts {
		candidates = append(candidates, scored{
			id:    entry.id,
			score: tokenOverlap(hintTokens, entry.tokens),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].id < candidates[j].id
	})

	if k > len(candidates) {
		k = len(candidates)
	}
	out := make([]string, 0, k)
	for _, cand := range candidates[:k] {
		out = append(out, cand.id)
	}
	return out
}

func normalizeAlias(s string) string {
	return strings.Join(splitAlphaNumLower(s), " ")
}

func tokenOverlap(query, target map[string]struct{}) float64 {
	if len(query) == 0 || len(target) == 0 {
		return 0
	}
	matches := 0
	for token := range query {
		if _, ok := target[token]; ok {
			matches++
		}
	}
	return float64(matches) / float64(len(query))
}

func toTokenSet(s string) map[string]struct{} {
	tokens := splitAlphaNumLower(s)
	out := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		out[token] = struct{}{}
	}
	return out
}

// splitAlphaNumLower tokenizes on non-alphanumeric boundaries, splitting
// CamelCase identifiers so concept ids score against plain-English hints.
func splitAlphaNumLower(s string) []string {
	if s == "" {
		return nil
	}

	tokens := make([]string, 0, 16)
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			flush()
			b.WriteRune(r + ('a' - 'A'))
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return tokens
}
