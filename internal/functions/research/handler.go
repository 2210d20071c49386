// internal/functions/research/handler.go
package research

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	apperrors "research-assistant/internal/common/errors"
	"research-assistant/internal/common/gemini"
	"research-assistant/internal/common/logger"
	"research-assistant/internal/common/validation"
	"research-assistant/internal/function"
	"research-assistant/internal/models"
)

// Generator is the slice of the Gemini client the handler depends on.
type Generator interface {
	GenerateContent(ctx context.Context, req *gemini.GenerateContentRequest) (*gemini.GenerateContentResponse, error)
}

type Handler struct {
	config *Config
	client Generator
	logger logger.Logger
}

func NewHandler(config *Config, client Generator, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		client: client,
		logger: log.WithFields(map[string]interface{}{"function": FunctionID}),
	}
}

// Handle runs one research invocation end to end. Every outcome is a
// complete Response; errors never propagate past this method.
func (h *Handler) Handle(ctx context.Context, evt function.Event) function.Response {
	log := h.logger
	if evt.RequestID != "" {
		log = log.WithFields(map[string]interface{}{"requestId": evt.RequestID})
	}

	// The credential check runs before anything else. Without a key no
	// request body is inspected and no upstream call is attempted.
	if strings.TrimSpace(h.config.APIKey) == "" {
		log.Error("gemini api key is not configured", nil)
		return function.ErrorResponse(apperrors.NewMissingAPIKeyError())
	}

	prompt, stdErr := parsePrompt(evt.Body)
	if stdErr != nil {
		log.Warn("rejected request", map[string]interface{}{"details": stdErr.Details})
		return function.ErrorResponse(stdErr)
	}

	log.Info("starting research", map[string]interface{}{"promptChars": len(prompt)})

	result, err := h.client.GenerateContent(ctx, buildGenerateRequest(prompt))
	if err != nil {
		stdErr := classifyUpstreamError(err)
		log.Error("gemini call failed", map[string]interface{}{
			"code":  string(stdErr.Code),
			"error": err.Error(),
		})
		return function.ErrorResponse(stdErr)
	}

	payload, stdErr := h.unwrap(log, result)
	if stdErr != nil {
		log.Error("unusable gemini response", map[string]interface{}{
			"code":    string(stdErr.Code),
			"details": stdErr.Details,
		})
		return function.ErrorResponse(stdErr)
	}

	log.Info("research completed", map[string]interface{}{
		"designPrinciples": len(payload.Research.DesignPrinciples),
		"uiFrameworks":     len(payload.Research.UIFrameworks),
		"aiApiConcepts":    len(payload.Research.AIAPIConcepts),
		"sources":          len(payload.Sources),
	})

	return function.JSONResponse(http.StatusOK, payload)
}

// parsePrompt decodes the request body and extracts a usable prompt. A body
// that is absent, undecodable, or whose prompt is empty after trimming is an
// invalid request.
func parsePrompt(body string) (string, *apperrors.StandardError) {
	if strings.TrimSpace(body) == "" {
		return "", apperrors.NewInvalidRequestError("request body is empty")
	}

	var req Request
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return "", apperrors.NewInvalidRequestError(fmt.Sprintf("invalid JSON body: %v", err))
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return "", apperrors.NewInvalidRequestError("prompt field is missing or empty")
	}

	return req.Prompt, nil
}

// classifyUpstreamError maps the client's sentinel errors onto the response
// taxonomy. Anything unrecognized becomes an internal error.
func classifyUpstreamError(err error) *apperrors.StandardError {
	switch {
	case errors.Is(err, gemini.ErrTimeout):
		return apperrors.NewUpstreamTimeoutError(err)
	case errors.Is(err, gemini.ErrDecodeFailed):
		return apperrors.NewUpstreamDecodeError(err)
	case errors.Is(err, gemini.ErrRequestFailed):
		return apperrors.NewUpstreamRequestError(err)
	default:
		return apperrors.Normalize(err)
	}
}

// unwrap digs the structured research data and grounding sources out of a
// generateContent response. It distinguishes an empty candidate list, a
// candidate without text content, and text that is not valid research JSON.
func (h *Handler) unwrap(log logger.Logger, result *gemini.GenerateContentResponse) (*Response, *apperrors.StandardError) {
	if len(result.Candidates) == 0 {
		return nil, apperrors.NewEmptyCandidatesError()
	}
	candidate := result.Candidates[0]
	if candidate.IsEmpty() {
		return nil, apperrors.NewEmptyCandidatesError()
	}

	text, ok := candidate.Text()
	if !ok {
		return nil, apperrors.NewMissingContentError()
	}

	if h.config.OutputSchema != nil {
		if err := validation.ValidateJSON(h.config.OutputSchema, []byte(text)); err != nil {
			return nil, apperrors.NewMalformedOutputError(err)
		}
	}

	var research models.ResearchData
	if err := json.Unmarshal([]byte(text), &research); err != nil {
		return nil, apperrors.NewMalformedOutputError(err)
	}

	// The wire contract promises three arrays, never null.
	if research.DesignPrinciples == nil {
		research.DesignPrinciples = []models.ResearchEntry{}
	}
	if research.UIFrameworks == nil {
		research.UIFrameworks = []models.ResearchEntry{}
	}
	if research.AIAPIConcepts == nil {
		research.AIAPIConcepts = []models.ResearchEntry{}
	}

	return &Response{
		Research: research,
		Sources:  extractSources(log, candidate.Attributions()),
	}, nil
}

// extractSources keeps grounding attributions that point at a real web URI,
// in their original order. Attributions without a URI are dropped; a missing
// title gets the placeholder.
func extractSources(log logger.Logger, attributions []gemini.GroundingAttribution) []models.Source {
	sources := make([]models.Source, 0, len(attributions))
	dropped := 0
	for _, attribution := range attributions {
		web := attribution.Web
		if web == nil || web.URI == "" {
			dropped++
			continue
		}
		title := web.Title
		if title == "" {
			title = defaultSourceTitle
		}
		sources = append(sources, models.Source{URI: web.URI, Title: title})
	}
	if dropped > 0 {
		log.Debug("dropped grounding attributions without a web uri", map[string]interface{}{
			"dropped": dropped,
		})
	}
	return sources
}
