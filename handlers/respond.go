package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BinSight-Labs/binsight-go-sdk/models"
)

// NewRequestID generates a request id in the req_<12 hex chars> form that is
// echoed in every response and error body.
func NewRequestID() string {
	return "req_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Error("Failed to encode response body", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, requestID string, status int, errType, message string) {
	writeJSON(w, status, models.ErrorBody{
		RequestID: requestID,
		Error: models.ErrorDetail{
			Message: message,
			Code:    status,
			Type:    errType,
		},
	})
}
