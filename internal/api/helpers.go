package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/TimurManjosov/flagdemo/internal/correlation"
	"github.com/TimurManjosov/flagdemo/internal/features"
)

// ===== HTTP Helpers =====

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{
		"error":   http.StatusText(code),
		"message": msg,
	})
}

// ===== Response metadata =====

// responseMetadata is the shared metadata block both endpoints return.
// The evaluation list key matches the flag provider's wire name so dashboards
// built against the provider's tooling pick it up unchanged.
type responseMetadata struct {
	CorrelationID string                `json:"correlationId"`
	Timestamp     time.Time             `json:"timestamp"`
	Evaluations   []features.Evaluation `json:"configcat_evaluations"`
}

// metadataFrom assembles the metadata block from the request-scoped
// correlation id and evaluation recorder.
func metadataFrom(r *http.Request, rec *features.Recorder) responseMetadata {
	return responseMetadata{
		CorrelationID: correlation.FromContext(r.Context()),
		Timestamp:     time.Now().UTC(),
		Evaluations:   rec.Evaluations(),
	}
}

// last4 returns the trailing four characters of a card reference, or a mask
// when none was supplied.
func last4(cardNumber string) string {
	if len(cardNumber) < 4 {
		return "****"
	}
	return cardNumber[len(cardNumber)-4:]
}
