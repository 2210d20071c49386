// internal/server/middleware.go
package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	apperrors "research-assistant/internal/common/errors"
	"research-assistant/internal/common/logger"
	"research-assistant/internal/common/metrics"
	"research-assistant/internal/function"
)

const requestIDHeader = "X-Request-Id"

// pipeline adapts a function.Handler to net/http. Each request gets a
// request ID (an inbound one is reused), the function's Response is written
// verbatim, and the invocation is counted, timed, and logged.
func (s *Server) pipeline(name, method string, h function.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		log := s.logger.WithFields(map[string]interface{}{
			"function":  name,
			"requestId": requestID,
			"method":    r.Method,
			"path":      r.URL.Path,
		})

		resp := s.invoke(r.Context(), log, method, h, r, requestID)

		for k, v := range resp.Headers {
			w.Header().Set(k, v)
		}
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "application/json")
		}
		w.WriteHeader(resp.StatusCode)
		_, _ = io.WriteString(w, resp.Body)

		duration := time.Since(start)
		status := strconv.Itoa(resp.StatusCode)
		metrics.FunctionRequestsTotal.WithLabelValues(name, status).Inc()
		metrics.FunctionRequestDuration.WithLabelValues(name).Observe(duration.Seconds())
		s.obs.RecordRequestProcessed(r.Context(), status)
		s.obs.RecordRequestDuration(r.Context(), duration, status)

		log.Info("request completed", map[string]interface{}{
			"status":     resp.StatusCode,
			"durationMs": duration.Milliseconds(),
		})
	})
}

// invoke produces the function response for one request. Method mismatches
// and unreadable bodies are rejected before the function runs; a panicking
// function becomes the internal-error envelope instead of a dropped
// connection.
func (s *Server) invoke(ctx context.Context, log logger.Logger, method string, h function.Handler, r *http.Request, requestID string) (resp function.Response) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("function panicked", map[string]interface{}{
				"panic": fmt.Sprintf("%v", rec),
			})
			resp = function.ErrorResponse(apperrors.NewInternalError(fmt.Errorf("%v", rec)))
		}
	}()

	if method != "" && r.Method != method {
		return function.ErrorResponse(apperrors.NewMethodNotAllowedError(r.Method, method))
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return function.ErrorResponse(apperrors.NewInvalidRequestError(fmt.Sprintf("read body: %v", err)))
	}

	return h.Handle(ctx, function.Event{
		HTTPMethod: r.Method,
		Path:       r.URL.Path,
		Headers:    flattenHeaders(r.Header),
		Body:       string(body),
		RequestID:  requestID,
	})
}

func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k := range h {
		out[k] = h.Get(k)
	}
	return out
}
