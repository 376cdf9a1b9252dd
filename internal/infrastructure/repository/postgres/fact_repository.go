package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/McSavage/edgar-rag/internal/core/domain"
	"github.com/McSavage/edgar-rag/internal/core/ports"
)

// FactRepository reads standardized facts from the financial_facts_clean
// view, which the ingestion pipeline keeps deduplicated per
// (ticker, period, concept). Values are in millions of USD.
type FactRepository struct {
	db *sql.DB
}

func NewFactRepository(db *sql.DB) *FactRepository {
	return &FactRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

const factSelect = `
SELECT f.ticker, f.standard_concept, f.label, f.value, f.unit, f.statement_type,
       f.period_date, fi.accession_number, f.filing_type, f.filing_date
FROM financial_facts_clean f
JOIN filings fi
  ON fi.ticker = f.ticker AND fi.filing_type = f.filing_type AND fi.filing_date = f.filing_date
`

// Query returns facts ordered (ticker, period end desc, concept). It fetches
// one row beyond the limit so the caller learns whether the cap was hit
// without a second round trip.
func (r *FactRepository) Query(ctx context.Context, q ports.FactQuery) ([]domain.FactRecord, bool, error) {
	if q.Limit <= 0 {
		return nil, false, fmt.Errorf("fact query limit must be positive, got %d", q.Limit)
	}

	var sb strings.Builder
	sb.WriteString(factSelect)

	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(q.Tickers) > 0 {
		placeholders := make([]string, len(q.Tickers))
		for i, t := range q.Tickers {
			placeholders[i] = arg(t)
		}
		conds = append(conds, fmt.Sprintf("f.ticker IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(q.Concepts) > 0 {
		placeholders := make([]string, len(q.Concepts))
		for i, c := range q.Concepts {
			placeholders[i] = arg(c)
		}
		conds = append(conds, fmt.Sprintf("f.standard_concept IN (%s)", strings.Join(placeholders, ",")))
	}
	if q.DateRange.Start != nil {
		conds = append(conds, fmt.Sprintf("f.period_date >= %s", arg(*q.DateRange.Start)))
	}
	if q.DateRange.End != nil {
		conds = append(conds, fmt.Sprintf("f.period_date <= %s", arg(*q.DateRange.End)))
	}

	if len(conds) > 0 {
		sb.WriteString("WHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
		sb.WriteString("\n")
	}
	sb.WriteString("ORDER BY f.ticker ASC, f.period_date DESC, f.standard_concept ASC\n")
	sb.WriteString(fmt.Sprintf("LIMIT %s", arg(q.Limit+1)))

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, false, fmt.Errorf("query facts: %w", err)
	}
	defer rows.Close()

	var facts []domain.FactRecord
	for rows.Next() {
		var f domain.FactRecord
		if err := rows.Scan(
			&f.Ticker, &f.Concept, &f.Label, &f.Value, &f.Unit, &f.StatementType,
			&f.PeriodEnd, &f.Filing.Accession, &f.Filing.FilingType, &f.Filing.FilingDate,
		); err != nil {
			return nil, false, fmt.Errorf("scan fact row: %w", err)
		}
		f.Filing.Ticker = f.Ticker
		facts = append(facts, f)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate fact rows: %w", err)
	}

	truncated := len(facts) > q.Limit
	if truncated {
		facts = facts[:q.Limit]
	}
	return facts, truncated, nil
}
