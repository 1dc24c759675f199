// Package chi implements the HTTP transport: routing, request decoding,
// domain error mapping and JSON responses.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/hoplite/internal/domain"
	domconv "github.com/kailas-cloud/hoplite/internal/domain/conversation"
	"github.com/kailas-cloud/hoplite/internal/domain/retrieval"
	convuc "github.com/kailas-cloud/hoplite/internal/usecase/conversation"
	healthuc "github.com/kailas-cloud/hoplite/internal/usecase/health"
	researchuc "github.com/kailas-cloud/hoplite/internal/usecase/research"
)

const maxQuestionLen = 2000

// errorCode is the machine-readable code in JSON error envelopes.
type errorCode string

const (
	codeBadRequest           errorCode = "bad_request"
	codeValidationFailed     errorCode = "validation_failed"
	codeNotFound             errorCode = "not_found"
	codeConversationNotFound errorCode = "conversation_not_found"
	codeRateLimited          errorCode = "rate_limited"
	codeRetrievalFailed      errorCode = "retrieval_failed"
	codeGeneratorError       errorCode = "generator_error"
	codeGeneratorUnavailable errorCode = "generator_unavailable"
	codeEmbeddingProviderErr errorCode = "embedding_provider_error"
	codeInternalError        errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server is the HTTP API server.
type Server struct {
	research      *researchuc.Service
	conversations *convuc.Service
	health        *healthuc.Service
	askOptions    researchuc.Options
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	research *researchuc.Service,
	conversations *convuc.Service,
	health *healthuc.Service,
	askOptions researchuc.Options,
	logger *zap.Logger,
) *Server {
	s := &Server{
		research:      research,
		conversations: conversations,
		health:        health,
		askOptions:    askOptions,
		logger:        logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrEmptyQuestion, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrConversationNotFound, http.StatusNotFound, codeConversationNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, codeRateLimited),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingProviderErr),
		sentinelHandler(domain.ErrRetrievalFailed, http.StatusBadGateway, codeRetrievalFailed),
		sentinelHandler(domain.ErrGeneratorError, http.StatusBadGateway, codeGeneratorError),
		sentinelHandler(domain.ErrGeneratorUnavailable, http.StatusServiceUnavailable, codeGeneratorUnavailable),
	}
	return s
}

// Mount registers all routes on the router.
func (s *Server) Mount(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/ask", s.Ask)
		r.Route("/conversations", func(r chi.Router) {
			r.Post("/", s.CreateConversation)
			r.Get("/", s.ListConversations)
			r.Get("/{id}", s.GetConversation)
			r.Post("/{id}/messages", s.AskInConversation)
		})
	})
}

// --- DTOs ---

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Answer         string        `json:"answer"`
	StopReason     string        `json:"stop_reason"`
	Complexity     complexityDTO `json:"complexity"`
	Hops           []hopDTO      `json:"hops"`
	Documents      []documentDTO `json:"documents"`
	ConversationID string        `json:"conversation_id,omitempty"`
}

type complexityDTO struct {
	Score         float64 `json:"score"`
	EstimatedHops int     `json:"estimated_hops"`
	Confidence    float64 `json:"confidence"`
	Reasoning     string  `json:"reasoning"`
}

type hopDTO struct {
	Hop        int               `json:"hop"`
	Continued  bool              `json:"continued"`
	Reasoning  string            `json:"reasoning"`
	Subqueries []subqueryItemDTO `json:"subqueries"`
}

type subqueryItemDTO struct {
	Subquery      string `json:"subquery"`
	Aspect        string `json:"aspect,omitempty"`
	DocumentCount int    `json:"document_count"`
	Failed        bool   `json:"failed,omitempty"`
	Error         string `json:"error,omitempty"`
}

type documentDTO struct {
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

type createConversationRequest struct {
	Title string `json:"title"`
}

type conversationDTO struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CreatedAt int64  `json:"created_at"`
	Messages  int    `json:"messages"`
}

type messageDTO struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Hops      int    `json:"hops,omitempty"`
	Reasoning string `json:"reasoning,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

type conversationDetailResponse struct {
	conversationDTO
	History []messageDTO `json:"history"`
}

type conversationListResponse struct {
	Items []conversationDTO `json:"items"`
}

// --- Handlers ---

// Ask handles POST /api/v1/ask.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "Question is required")
		return
	}
	if len(req.Question) > maxQuestionLen {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "Question is too long")
		return
	}

	res, err := s.research.Ask(r.Context(), req.Question, s.askOptions)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resultToDTO(res, ""))
}

// CreateConversation handles POST /api/v1/conversations.
func (s *Server) CreateConversation(w http.ResponseWriter, r *http.Request) {
	var req createConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if len(req.Title) > domconv.MaxTitleLen {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "Conversation title is too long")
		return
	}

	conv, err := s.conversations.Create(r.Context(), req.Title)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, conversationToDTO(conv))
}

// ListConversations handles GET /api/v1/conversations.
func (s *Server) ListConversations(w http.ResponseWriter, r *http.Request) {
	convs, err := s.conversations.List(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]conversationDTO, len(convs))
	for i, c := range convs {
		items[i] = conversationToDTO(c)
	}
	writeJSON(w, http.StatusOK, conversationListResponse{Items: items})
}

// GetConversation handles GET /api/v1/conversations/{id}.
func (s *Server) GetConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	conv, err := s.conversations.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	msgs, err := s.conversations.Messages(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	history := make([]messageDTO, len(msgs))
	for i := range msgs {
		history[i] = messageToDTO(&msgs[i])
	}
	writeJSON(w, http.StatusOK, conversationDetailResponse{
		conversationDTO: conversationToDTO(conv),
		History:         history,
	})
}

// AskInConversation handles POST /api/v1/conversations/{id}/messages.
// The question is researched and both the user question and the assistant
// answer are appended to the conversation history.
func (s *Server) AskInConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "Question is required")
		return
	}
	if len(req.Question) > maxQuestionLen {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "Question is too long")
		return
	}

	if _, err := s.conversations.AppendUserMessage(r.Context(), id, req.Question); err != nil {
		s.handleDomainError(w, err)
		return
	}

	res, err := s.research.Ask(r.Context(), req.Question, s.askOptions)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	if _, err := s.conversations.AppendAssistantMessage(
		r.Context(), id, res.Answer, len(res.Hops), res.StopReason,
	); err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resultToDTO(res, id))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// --- Mapping ---

func resultToDTO(res *researchuc.Result, conversationID string) askResponse {
	hops := make([]hopDTO, len(res.Hops))
	for i := range res.Hops {
		hops[i] = hopToDTO(&res.Hops[i])
	}

	docs := make([]documentDTO, len(res.Documents))
	for i := range res.Documents {
		docs[i] = documentDTO{
			Title:   res.Documents[i].Title(),
			Content: res.Documents[i].Content(),
			Score:   res.Documents[i].Score(),
		}
	}

	return askResponse{
		Answer:     res.Answer,
		StopReason: res.StopReason,
		Complexity: complexityDTO{
			Score:         res.Complexity.Score(),
			EstimatedHops: res.Complexity.EstimatedHops(),
			Confidence:    res.Complexity.Confidence(),
			Reasoning:     res.Complexity.Reasoning(),
		},
		Hops:           hops,
		Documents:      docs,
		ConversationID: conversationID,
	}
}

func hopToDTO(h *retrieval.HopRecord) hopDTO {
	subs := make([]subqueryItemDTO, len(h.Subqueries))
	for i, sq := range h.Subqueries {
		subs[i] = subqueryItemDTO{
			Subquery:      sq.Subquery,
			Aspect:        sq.Aspect,
			DocumentCount: len(sq.Documents),
			Failed:        sq.Failed,
			Error:         sq.Error,
		}
	}
	return hopDTO{
		Hop:        h.Hop,
		Continued:  h.Continued,
		Reasoning:  h.Reasoning,
		Subqueries: subs,
	}
}

func conversationToDTO(c domconv.Conversation) conversationDTO {
	return conversationDTO{
		ID:        c.ID(),
		Title:     c.Title(),
		CreatedAt: c.CreatedAt(),
		Messages:  c.Messages(),
	}
}

func messageToDTO(m *domconv.Message) messageDTO {
	return messageDTO{
		Role:      string(m.Role()),
		Content:   m.Content(),
		Hops:      m.Hops(),
		Reasoning: m.Reasoning(),
		CreatedAt: m.CreatedAt(),
	}
}

// --- Error helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrEmptyQuestion,
		domain.ErrConversationNotFound,
		domain.ErrNotFound,
		domain.ErrRateLimited,
		domain.ErrEmbeddingProviderError,
		domain.ErrRetrievalFailed,
		domain.ErrGeneratorError,
		domain.ErrGeneratorUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
