package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/McSavage/edgar-rag/internal/core/domain"
	"github.com/McSavage/edgar-rag/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	apiKey     string
	model      string
	executor   *resilience.Executor
	httpClient *http.Client
}

func New(baseURL, apiKey, model string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// WithExecutor routes every model call through the resilience executor
// (retries, rate limit, circuit breaker).
func (c *Client) WithExecutor(executor *resilience.Executor) *Client {
	c.executor = executor
	return c
}

// Classifier turns a question into a routing decision. Enum validation and
// the hybrid fallback live in the use case layer; this type only speaks the
// wire protocol.
type Classifier struct {
	client *Client
}

func NewClassifier(client *Client) *Classifier {
	return &Classifier{client: client}
}

// intentWire is the JSON shape the model is instructed to return.
type intentWire struct {
	Strategy  string   `json:"strategy"`
	Tickers   []string `json:"tickers"`
	DateRange *struct {
		Start string `json:"start"`
		End   string `json:"end"`
	} `json:"date_range"`
	Metrics  []string `json:"metrics"`
	Topics   []string `json:"topics"`
	Sections []string `json:"sections"`
}

func (c *Classifier) ClassifyIntent(ctx context.Context, question string) (domain.RoutingDecision, error) {
	respText, err := c.client.createMessage(ctx, "classify_intent", intentSystemPrompt, question)
	if err != nil {
		return domain.RoutingDecision{}, err
	}

	var wire intentWire
	if err := json.Unmarshal([]byte(extractJSONObject(respText)), &wire); err != nil {
		return domain.RoutingDecision{}, fmt.Errorf("parse intent json: %w", err)
	}

	decision := domain.RoutingDecision{
		Strategy:    domain.Strategy(strings.ToLower(strings.TrimSpace(wire.Strategy))),
		Tickers:     wire.Tickers,
		MetricHints: wire.Metrics,
		TopicHints:  wire.Topics,
	}
	for _, s := range wire.Sections {
		if section := domain.ParseSectionType(s); section != domain.SectionOther {
			decision.Sections = append(decision.Sections, section)
		}
	}
	if wire.DateRange != nil {
		decision.DateRange.Start = parseWireDate(wire.DateRange.Start)
		decision.DateRange.End = parseWireDate(wire.DateRange.End)
	}
	return decision, nil
}

// Generator produces the final answer text from a fully rendered evidence
// prompt.
type Generator struct {
	client *Client
}

func NewGenerator(client *Client) *Generator {
	return &Generator{client: client}
}

func (g *Generator) GenerateAnswer(ctx context.Context, prompt string) (string, error) {
	return g.client.createMessage(ctx, "generate_answer", synthesisSystemPrompt, prompt)
}

func (c *Client) createMessage(ctx context.Context, operation, system, userContent string) (string, error) {
	reqBody := map[string]any{
		"model":      c.model,
		"max_tokens": 2048,
		"system":     system,
		"messages": []map[string]any{
			{"role": "user", "content": userContent},
		},
	}

	var response struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}

	call := func(ctx context.Context) error {
		return c.postJSON(ctx, "/v1/messages", reqBody, &response, operation)
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "anthropic."+operation, call, classifyAnthropicError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", wrapTemporaryIfNeeded(operation, err)
	}

	var sb strings.Builder
	for _, block := range response.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("anthropic %s: empty completion", operation)
	}
	return text, nil
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}

func parseWireDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	ts, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil
	}
	return &ts
}
