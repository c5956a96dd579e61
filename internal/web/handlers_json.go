package web

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/url"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

type errorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Address   string `json:"address,omitempty"`
	Details   string `json:"details,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// classifyUpstreamError maps a failed upstream call to the coarse
// user-readable message set. Raw details travel separately.
func classifyUpstreamError(err error) string {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return "Request timed out. Please try again."
	case errors.Is(err, syscall.ECONNREFUSED):
		return "Connection refused. Service may be temporarily unavailable."
	case errors.As(err, new(*net.OpError)), errors.As(err, new(*url.Error)):
		return "Network error. Please check your connection."
	default:
		return "Failed to fetch coins"
	}
}
