package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/McSavage/edgar-rag/internal/core/domain"
	"github.com/McSavage/edgar-rag/internal/core/ports"
)

// Client is a read-only search client over the narrative chunk collection.
// The ingestion pipeline owns collection creation and upserts; this service
// only queries it.
type Client struct {
	baseURL    string
	collection string
	httpClient *http.Client
}

func New(baseURL, collection string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		collection: collection,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Client) Search(
	ctx context.Context,
	queryVector []float32,
	limit int,
	filter ports.ChunkFilter,
) ([]domain.ChunkRecord, error) {
	reqBody := map[string]any{
		"vector":       queryVector,
		"limit":        limit,
		"with_payload": true,
	}
	if must := buildFilter(filter); len(must) > 0 {
		reqBody["filter"] = map[string]any{"must": must}
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal search body: %w", err)
	}

	url := fmt.Sprintf("%s/collections/%s/points/search", c.baseURL, c.collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("qdrant search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if trimmed := strings.TrimSpace(string(msg)); trimmed != "" {
			return nil, fmt.Errorf("qdrant search status: %s: %s", resp.Status, trimmed)
		}
		return nil, fmt.Errorf("qdrant search status: %s", resp.Status)
	}

	var searchResp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	out := make([]domain.ChunkRecord, 0, len(searchResp.Result))
	for _, r := range searchResp.Result {
		chunk := domain.ChunkRecord{
			Ticker:     getStringPayload(r.Payload, "ticker"),
			Section:    domain.ParseSectionType(getStringPayload(r.Payload, "section")),
			Text:       getStringPayload(r.Payload, "text"),
			ChunkIndex: getIntPayload(r.Payload, "chunk_index"),
			Score:      r.Score,
			Filing: domain.FilingRef{
				Accession:  getStringPayload(r.Payload, "accession_number"),
				Ticker:     getStringPayload(r.Payload, "ticker"),
				FilingType: getStringPayload(r.Payload, "filing_type"),
				FilingDate: getDatePayload(r.Payload, "filing_date"),
			},
		}
		out = append(out, chunk)
	}
	return out, nil
}

func buildFilter(filter ports.ChunkFilter) []map[string]any {
	var must []map[string]any
	if len(filter.Tickers) > 0 {
		must = append(must, map[string]any{
			"key":   "ticker",
			"match": map[string]any{"any": filter.Tickers},
		})
	}
	if len(filter.Sections) > 0 {
		sections := make([]string, 0, len(filter.Sections))
		for _, s := range filter.Sections {
			sections = append(sections, string(s))
		}
		must = append(must, map[string]any{
			"key":   "section",
			"match": map[string]any{"any": sections},
		})
	}
	dateRange := map[string]any{}
	if filter.DateRange.Start != nil {
		dateRange["gte"] = filter.DateRange.Start.Format("2006-01-02")
	}
	if filter.DateRange.End != nil {
		dateRange["lte"] = filter.DateRange.End.Format("2006-01-02")
	}
	if len(dateRange) > 0 {
		must = append(must, map[string]any{
			"key":   "filing_date",
			"range": dateRange,
		})
	}
	return must
}

func getStringPayload(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func getIntPayload(payload map[string]any, key string) int {
	v, ok := payload[key]
	if !ok {
		return 0
	}
	// JSON numbers decode as float64.
	if f, ok := v.(float64); ok {
		return int(f)
	}
	return 0
}

func getDatePayload(payload map[string]any, key string) time.Time {
	raw := getStringPayload(payload, key)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts
		}
	}
	return time.Time{}
}
