// internal/function/function.go

// Package function defines the contract between the hosting runtime and the
// functions it mounts: an invocation event in, an HTTP-shaped result out.
// Every Response carries an explicit status code and a JSON body; no partial
// or ambiguous states cross this boundary.
package function

import (
	"context"
	"encoding/json"
	"net/http"

	"research-assistant/internal/common/errors"
)

// Event is one inbound invocation as seen by a function.
type Event struct {
	HTTPMethod string
	Path       string
	Headers    map[string]string
	Body       string
	RequestID  string
}

// Response is the HTTP-shaped result a function returns to the runtime.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       string
}

// Handler is the function-shaped entry point invoked per inbound request.
type Handler interface {
	Handle(ctx context.Context, evt Event) Response
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx context.Context, evt Event) Response

func (f HandlerFunc) Handle(ctx context.Context, evt Event) Response {
	return f(ctx, evt)
}

// JSONResponse marshals v into a Response with the given status code.
func JSONResponse(statusCode int, v interface{}) Response {
	body, err := json.Marshal(v)
	if err != nil {
		return ErrorResponse(errors.NewInternalError(err))
	}
	return Response{
		StatusCode: statusCode,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}

// ErrorResponse renders a classified error into its wire envelope with the
// status code the taxonomy assigns.
func ErrorResponse(stdErr *errors.StandardError) Response {
	body, err := json.Marshal(stdErr.Envelope())
	if err != nil {
		// Every outgoing body is valid JSON, including this last resort.
		return Response{
			StatusCode: http.StatusInternalServerError,
			Headers:    map[string]string{"Content-Type": "application/json"},
			Body:       `{"error":"An unexpected server error occurred."}`,
		}
	}
	return Response{
		StatusCode: stdErr.HTTPStatus(),
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}
