// internal/functions/research/handler_test.go
package research

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"research-assistant/internal/common/gemini"
	"research-assistant/internal/common/logger"
	"research-assistant/internal/function"
	"research-assistant/internal/models"
	"research-assistant/pkg/registry"
)

// ==========================
// Test Helper Functions
// ==========================

// stubGenerator satisfies Generator without any network round-trip.
type stubGenerator struct {
	resp    *gemini.GenerateContentResponse
	err     error
	calls   int
	lastReq *gemini.GenerateContentRequest
}

func (s *stubGenerator) GenerateContent(ctx context.Context, req *gemini.GenerateContentRequest) (*gemini.GenerateContentResponse, error) {
	s.calls++
	s.lastReq = req
	return s.resp, s.err
}

func testSchema() map[string]interface{} {
	entrySchema := func(required bool) map[string]interface{} {
		items := map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"name":    map[string]interface{}{"type": "string"},
				"summary": map[string]interface{}{"type": "string"},
			},
		}
		if required {
			items["required"] = []string{"name", "summary"}
		}
		return map[string]interface{}{"type": "array", "items": items}
	}
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"designPrinciples": entrySchema(true),
			"uiFrameworks":     entrySchema(true),
			"aiApiConcepts":    entrySchema(false),
		},
		"required": []string{"designPrinciples", "uiFrameworks", "aiApiConcepts"},
	}
}

func newTestHandler(t *testing.T, stub *stubGenerator) *Handler {
	return NewHandler(
		&Config{APIKey: "test-key", OutputSchema: testSchema()},
		stub,
		logger.NewTestLogger(t),
	)
}

func postEvent(body string) function.Event {
	return function.Event{
		HTTPMethod: http.MethodPost,
		Path:       "/api/research",
		Body:       body,
		RequestID:  "req-123",
	}
}

const researchJSON = `{` +
	`"designPrinciples":[{"name":"Atomic Design","summary":"Compose UIs from small reusable units."}],` +
	`"uiFrameworks":[{"name":"React","summary":"Component model with a huge ecosystem."}],` +
	`"aiApiConcepts":[{"name":"Structured Output","summary":"Schema-constrained JSON generation."}]` +
	`}`

// candidateResponse builds an upstream response with the given inner text
// and grounding attributions.
func candidateResponse(text string, attributions ...gemini.GroundingAttribution) *gemini.GenerateContentResponse {
	candidate := gemini.Candidate{
		Content: gemini.Content{
			Role:  "model",
			Parts: []gemini.Part{{Text: text}},
		},
		FinishReason: "STOP",
	}
	if len(attributions) > 0 {
		candidate.GroundingMetadata = &gemini.GroundingMetadata{GroundingAttributions: attributions}
	}
	return &gemini.GenerateContentResponse{Candidates: []gemini.Candidate{candidate}}
}

func webAttribution(uri, title string) gemini.GroundingAttribution {
	return gemini.GroundingAttribution{Web: &gemini.WebSource{URI: uri, Title: title}}
}

type envelope struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

func decodeEnvelope(t *testing.T, resp function.Response) envelope {
	var env envelope
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &env))
	return env
}

// ==========================
// Success Path
// ==========================

func TestHandler_Handle_Success(t *testing.T) {
	stub := &stubGenerator{
		resp: candidateResponse(researchJSON,
			webAttribution("https://react.dev", "React"),
			webAttribution("https://tailwindcss.com", ""),
		),
	}
	handler := newTestHandler(t, stub)

	resp := handler.Handle(context.Background(), postEvent(`{"prompt":"modern UI stack"}`))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])
	assert.Equal(t, 1, stub.calls)

	var out Response
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &out))

	require.Len(t, out.Research.DesignPrinciples, 1)
	assert.Equal(t, "Atomic Design", out.Research.DesignPrinciples[0].Name)
	require.Len(t, out.Research.UIFrameworks, 1)
	assert.Equal(t, "React", out.Research.UIFrameworks[0].Name)
	require.Len(t, out.Research.AIAPIConcepts, 1)

	require.Len(t, out.Sources, 2)
	assert.Equal(t, models.Source{URI: "https://react.dev", Title: "React"}, out.Sources[0])
	assert.Equal(t, models.Source{URI: "https://tailwindcss.com", Title: "No Title Available"}, out.Sources[1])
}

func TestHandler_Handle_UpstreamRequestShape(t *testing.T) {
	stub := &stubGenerator{resp: candidateResponse(researchJSON)}
	handler := newTestHandler(t, stub)

	resp := handler.Handle(context.Background(), postEvent(`{"prompt":"  padded prompt  "}`))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req := stub.lastReq
	require.NotNil(t, req)

	require.Len(t, req.Contents, 1)
	require.Len(t, req.Contents[0].Parts, 1)
	assert.Equal(t, "  padded prompt  ", req.Contents[0].Parts[0].Text)

	require.Len(t, req.Tools, 1)
	assert.NotNil(t, req.Tools[0].GoogleSearch)

	require.NotNil(t, req.SystemInstruction)
	require.Len(t, req.SystemInstruction.Parts, 1)
	assert.Contains(t, req.SystemInstruction.Parts[0].Text, "Senior UI/UX and AI Research Analyst")

	require.NotNil(t, req.GenerationConfig)
	assert.Equal(t, "application/json", req.GenerationConfig.ResponseMIMEType)
	assert.NotNil(t, req.GenerationConfig.ResponseSchema)
}

func TestHandler_Handle_Idempotent(t *testing.T) {
	stub := &stubGenerator{
		resp: candidateResponse(researchJSON, webAttribution("https://react.dev", "React")),
	}
	handler := newTestHandler(t, stub)

	first := handler.Handle(context.Background(), postEvent(`{"prompt":"stack"}`))
	second := handler.Handle(context.Background(), postEvent(`{"prompt":"stack"}`))

	assert.Equal(t, http.StatusOK, first.StatusCode)
	assert.Equal(t, first.StatusCode, second.StatusCode)
	assert.Equal(t, first.Body, second.Body, "identical upstream responses must render identical bodies")
	assert.Equal(t, 2, stub.calls)
}

func TestHandler_Handle_EmptyCategories(t *testing.T) {
	inner := `{"designPrinciples":[],"uiFrameworks":[],"aiApiConcepts":[]}`
	stub := &stubGenerator{resp: candidateResponse(inner)}
	handler := newTestHandler(t, stub)

	resp := handler.Handle(context.Background(), postEvent(`{"prompt":"stack"}`))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"research":`+inner+`,"sources":[]}`, resp.Body,
		"empty categories round-trip exactly, sources empty without grounding")
}

func TestHandler_Handle_NoAttributions(t *testing.T) {
	stub := &stubGenerator{resp: candidateResponse(researchJSON)}
	handler := newTestHandler(t, stub)

	resp := handler.Handle(context.Background(), postEvent(`{"prompt":"stack"}`))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Sources must be an empty array on the wire, never null.
	assert.Contains(t, resp.Body, `"sources":[]`)
}

func TestHandler_Handle_DropsAttributionsWithoutURI(t *testing.T) {
	stub := &stubGenerator{
		resp: candidateResponse(researchJSON,
			webAttribution("https://first.dev", "First"),
			gemini.GroundingAttribution{},
			gemini.GroundingAttribution{Web: &gemini.WebSource{Title: "no uri"}},
			webAttribution("https://second.dev", "Second"),
		),
	}
	handler := newTestHandler(t, stub)

	resp := handler.Handle(context.Background(), postEvent(`{"prompt":"stack"}`))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out Response
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &out))

	require.Len(t, out.Sources, 2)
	assert.Equal(t, "https://first.dev", out.Sources[0].URI)
	assert.Equal(t, "https://second.dev", out.Sources[1].URI, "surviving sources keep their order")
}

// ==========================
// Missing API Key
// ==========================

func TestHandler_Handle_MissingAPIKey(t *testing.T) {
	tests := []struct {
		name   string
		apiKey string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubGenerator{resp: candidateResponse(researchJSON)}
			handler := NewHandler(
				&Config{APIKey: tt.apiKey, OutputSchema: testSchema()},
				stub,
				logger.NewTestLogger(t),
			)

			resp := handler.Handle(context.Background(), postEvent(`{"prompt":"stack"}`))

			assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
			env := decodeEnvelope(t, resp)
			assert.Equal(t, "Server API Key is missing. Set GEMINI_API_KEY environment variable.", env.Error)
			assert.Equal(t, 0, stub.calls, "no upstream call may happen without a key")
		})
	}
}

// ==========================
// Invalid Request
// ==========================

func TestHandler_Handle_InvalidRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"whitespace body", "   \n "},
		{"not json", "prompt=hello"},
		{"missing prompt field", `{"question":"hello"}`},
		{"null prompt", `{"prompt":null}`},
		{"empty prompt", `{"prompt":""}`},
		{"whitespace prompt", `{"prompt":"   "}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubGenerator{resp: candidateResponse(researchJSON)}
			handler := newTestHandler(t, stub)

			resp := handler.Handle(context.Background(), postEvent(tt.body))

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			env := decodeEnvelope(t, resp)
			assert.Equal(t, "Missing prompt in request data.", env.Error)
			assert.Equal(t, 0, stub.calls, "invalid requests must not reach the upstream")
		})
	}
}

// ==========================
// Upstream Failure Classification
// ==========================

func TestHandler_Handle_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name        string
		stubErr     error
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "timeout",
			stubErr:     fmt.Errorf("%w: context deadline exceeded", gemini.ErrTimeout),
			wantStatus:  http.StatusGatewayTimeout,
			wantMessage: "Gemini API request timed out.",
		},
		{
			name:        "request failed",
			stubErr:     fmt.Errorf("%w: status 503: overloaded", gemini.ErrRequestFailed),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Gemini API request failed.",
		},
		{
			name:        "undecodable body",
			stubErr:     fmt.Errorf("%w: invalid character '<'", gemini.ErrDecodeFailed),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Gemini API returned an unparseable response body.",
		},
		{
			name:        "unclassified",
			stubErr:     fmt.Errorf("connection reset by peer"),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "An unexpected server error occurred: connection reset by peer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubGenerator{err: tt.stubErr}
			handler := newTestHandler(t, stub)

			resp := handler.Handle(context.Background(), postEvent(`{"prompt":"stack"}`))

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			env := decodeEnvelope(t, resp)
			assert.Equal(t, tt.wantMessage, env.Error)
			assert.Equal(t, 1, stub.calls)
		})
	}
}

// ==========================
// Response Unwrapping
// ==========================

func TestHandler_Handle_EmptyCandidates(t *testing.T) {
	tests := []struct {
		name string
		resp *gemini.GenerateContentResponse
	}{
		{
			name: "no candidates",
			resp: &gemini.GenerateContentResponse{},
		},
		{
			name: "bare object candidate",
			resp: &gemini.GenerateContentResponse{Candidates: []gemini.Candidate{{}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestHandler(t, &stubGenerator{resp: tt.resp})

			resp := handler.Handle(context.Background(), postEvent(`{"prompt":"stack"}`))

			assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
			env := decodeEnvelope(t, resp)
			assert.Equal(t, "Gemini API returned an empty candidate list.", env.Error)
		})
	}
}

func TestHandler_Handle_MissingContent(t *testing.T) {
	tests := []struct {
		name      string
		candidate gemini.Candidate
	}{
		{
			name:      "finish reason only",
			candidate: gemini.Candidate{FinishReason: "SAFETY"},
		},
		{
			name: "empty text part",
			candidate: gemini.Candidate{
				Content:      gemini.Content{Role: "model", Parts: []gemini.Part{{Text: ""}}},
				FinishReason: "STOP",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestHandler(t, &stubGenerator{
				resp: &gemini.GenerateContentResponse{Candidates: []gemini.Candidate{tt.candidate}},
			})

			resp := handler.Handle(context.Background(), postEvent(`{"prompt":"stack"}`))

			assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
			env := decodeEnvelope(t, resp)
			assert.Equal(t, "Gemini API failed to return structured JSON content.", env.Error)
		})
	}
}

func TestHandler_Handle_MalformedStructuredOutput(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"not json", "I could not produce JSON, sorry."},
		{"truncated json", `{"designPrinciples":[{"name":"Atomic`},
		{"missing required category", `{"designPrinciples":[],"uiFrameworks":[]}`},
		{"entry missing summary", `{"designPrinciples":[{"name":"Atomic Design"}],"uiFrameworks":[],"aiApiConcepts":[]}`},
		{"wrong category type", `{"designPrinciples":"none","uiFrameworks":[],"aiApiConcepts":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestHandler(t, &stubGenerator{resp: candidateResponse(tt.text)})

			resp := handler.Handle(context.Background(), postEvent(`{"prompt":"stack"}`))

			assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
			env := decodeEnvelope(t, resp)
			assert.Equal(t, "Gemini API returned malformed structured content.", env.Error,
				"inner decode failures must stay distinct from outer ones")
		})
	}
}

func TestHandler_Handle_SchemaSkippedWithoutConfig(t *testing.T) {
	// Without an output schema only JSON decoding gates the payload.
	handler := NewHandler(
		&Config{APIKey: "test-key"},
		&stubGenerator{resp: candidateResponse(`{"designPrinciples":[]}`)},
		logger.NewTestLogger(t),
	)

	resp := handler.Handle(context.Background(), postEvent(`{"prompt":"stack"}`))

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out Response
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &out))
	assert.NotNil(t, out.Research.UIFrameworks)
	assert.Contains(t, resp.Body, `"uiFrameworks":[]`, "absent categories render as empty arrays")
}

// ==========================
// Registry Integration
// ==========================

func TestHandler_Handle_RegistrySchema(t *testing.T) {
	reg, err := registry.LoadRegistry("../../../configs/function-registry.json")
	require.NoError(t, err)

	entry, ok := reg.FindByID(FunctionID)
	require.True(t, ok, "registry must contain the research function")
	require.Equal(t, http.MethodPost, entry.HTTPMethod)
	require.Equal(t, "/api/research", entry.Path)

	handler := NewHandler(
		&Config{APIKey: "test-key", OutputSchema: entry.OutputSchema},
		&stubGenerator{resp: candidateResponse(researchJSON)},
		logger.NewTestLogger(t),
	)
	resp := handler.Handle(context.Background(), postEvent(`{"prompt":"stack"}`))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	bad := NewHandler(
		&Config{APIKey: "test-key", OutputSchema: entry.OutputSchema},
		&stubGenerator{resp: candidateResponse(`{"uiFrameworks":[]}`)},
		logger.NewTestLogger(t),
	)
	resp = bad.Handle(context.Background(), postEvent(`{"prompt":"stack"}`))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Gemini API returned malformed structured content.", decodeEnvelope(t, resp).Error)
}
