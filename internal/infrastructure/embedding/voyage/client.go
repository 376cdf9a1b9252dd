package voyage

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
	"github.com/McSavage/edgar-rag/internal/infrastructure/resilience"
)

// Client embeds query text with the same model the ingestion pipeline used
// for the chunk collection, so query and stored vectors share a space.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	dimension  int
	executor   *resilience.Executor
	httpClient *http.Client
}

func New(baseURL, apiKey, model string, dimension int) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		dimension:  dimension,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Client) WithExecutor(executor *resilience.Executor) *Client {
	c.executor = executor
	return c
}

// Dimension is the configured vector size of the embedding model.
func (c *Client) Dimension() int {
	return c.dimension
}

func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	reqBody := map[string]any{
		"model":      c.model,
		"input":      []string{text},
		"input_type": "query",
	}

	var response struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}

	call := func(ctx context.Context) error {
		return c.postJSON(ctx, "/v1/embeddings", reqBody, &response)
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "voyage.embed_query", call, classifyVoyageError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, wrapTemporaryIfNeeded("embed_query", err)
	}

	if len(response.Data) == 0 {
		return nil, fmt.Errorf("voyage embed_query: empty embedding result")
	}
	vector := response.Data[0].Embedding
	if len(vector) != c.dimension {
		return nil, domain.WrapError(domain.ErrInvalidInput, "embed_query",
			fmt.Errorf("model returned %d dimensions, configured for %d", len(vector), c.dimension))
	}
	return vector, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("voyage embed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &HTTPStatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(raw),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode embed response: %w", err)
	}
	return nil
}
