package domain

import (
	"sort"
	"strings"
	"time"
)

// Strategy selects which retrieval branches serve a question.
type Strategy string

const (
	StrategyQuantitative Strategy = "quantitative"
	StrategyQualitative  Strategy = "qualitative"
	StrategyHybrid       Strategy = "hybrid"
)

func (s Strategy) Valid() bool {
	switch s {
	case StrategyQuantitative, StrategyQualitative, StrategyHybrid:
		return true
	}
	return false
}

// SectionType labels the narrative section a chunk was cut from.
type SectionType string

const (
	SectionRiskFactors SectionType = "risk_factors"
	SectionMDA         SectionType = "mda"
	SectionBusiness    SectionType = "business"
	SectionOther       SectionType = "other"
)

func ParseSectionType(raw string) SectionType {
	switch SectionType(strings.ToLower(strings.TrimSpace(raw))) {
	case SectionRiskFactors:
		return SectionRiskFactors
	case SectionMDA:
		return SectionMDA
	case SectionBusiness:
		return SectionBusiness
	default:
		return SectionOther
	}
}

// DateRange bounds filing periods. A nil endpoint means unbounded on that side.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

func (r DateRange) IsZero() bool {
	return r.Start == nil && r.End == nil
}

// RoutingDecision is produced once per question by the intent classifier and
// consumed read-only downstream. Empty filter slices mean "no restriction".
type RoutingDecision struct {
	Strategy    Strategy
	Tickers     []string
	DateRange   DateRange
	MetricHints []string
	TopicHints  []string
	Sections    []SectionType
}

// DefaultDecision is the recovery routing when classification fails or
// returns a strategy outside the enum: hybrid with unrestricted filters is
// the most inclusive choice, so no evidence branch is silently skipped.
func DefaultDecision() RoutingDecision {
	return RoutingDecision{Strategy: StrategyHybrid}
}

// NormalizeTickers uppercases ticker hints and drops any symbol not in the
// tracked set. An unknown ticker degrades to a broader search rather than
// guaranteeing zero results.
func (d *RoutingDecision) NormalizeTickers(tracked []string) {
	if len(d.Tickers) == 0 {
		return
	}
	known := make(map[string]struct{}, len(tracked))
	for _, t := range tracked {
		known[strings.ToUpper(strings.TrimSpace(t))] = struct{}{}
	}

	kept := make([]string, 0, len(d.Tickers))
	seen := make(map[string]struct{}, len(d.Tickers))
	for _, t := range d.Tickers {
		symbol := strings.ToUpper(strings.TrimSpace(t))
		if symbol == "" {
			continue
		}
		if _, ok := known[symbol]; !ok {
			continue
		}
		if _, dup := seen[symbol]; dup {
			continue
		}
		seen[symbol] = struct{}{}
		kept = append(kept, symbol)
	}
	sort.Strings(kept)
	d.Tickers = kept
}
