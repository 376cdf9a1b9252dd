package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/McSavage/edgar-rag/internal/core/domain"
	"github.com/McSavage/edgar-rag/internal/core/ports"
	"github.com/McSavage/edgar-rag/internal/observability/metrics"
)

type Router struct {
	askUC   ports.QuestionAnswerer
	metrics *metrics.HTTPServerMetrics
	service string
}

func NewRouter(askUC ports.QuestionAnswerer, serverMetrics *metrics.HTTPServerMetrics, service string) *Router {
	return &Router{
		askUC:   askUC,
		metrics: serverMetrics,
		service: service,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/ask", rt.ask)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.service, handler)
	}
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type askRequest struct {
	Question  string   `json:"question"`
	SessionID string   `json:"session_id"`
	Tickers   []string `json:"tickers"`
	TopK      int      `json:"top_k"`
}

type askResponse struct {
	QuestionID string        `json:"question_id"`
	Answer     domain.Answer `json:"answer"`
}

func (rt *Router) ask(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is required"})
		return
	}

	question := domain.Question{
		ID:        uuid.NewString(),
		Text:      req.Question,
		SessionID: req.SessionID,
	}

	start := time.Now()
	answer, err := rt.askUC.Ask(r.Context(), question, ports.AskOptions{
		Tickers: req.Tickers,
		TopK:    req.TopK,
	})
	if err != nil {
		rt.recordAnswer("error", domain.Answer{}, start)
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	rt.recordAnswer(answerOutcome(answer), answer, start)
	writeJSON(w, http.StatusOK, askResponse{
		QuestionID: question.ID,
		Answer:     answer,
	})
}

func answerOutcome(answer domain.Answer) string {
	switch {
	case answer.NoEvidence:
		return "no_evidence"
	case answer.Partial:
		return "partial"
	default:
		return "answered"
	}
}

func (rt *Router) recordAnswer(outcome string, answer domain.Answer, start time.Time) {
	if rt.metrics == nil {
		return
	}
	rt.metrics.RecordRoute(rt.service, string(answer.Strategy))
	for _, branch := range answer.FailedBranches {
		rt.metrics.RecordBranchFailure(rt.service, string(branch))
	}
	rt.metrics.RecordAnswer(rt.service, outcome, answer.FactCount, answer.ChunkCount, answer.Truncated, time.Since(start))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
