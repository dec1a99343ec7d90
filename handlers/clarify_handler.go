package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/BinSight-Labs/binsight-go-sdk/utils"
)

// ClarifyRequest is the body of POST /v1/clarify. Answer is a pointer so a
// missing answer is distinguishable from false.
type ClarifyRequest struct {
	RequestID  string `json:"request_id"`
	QuestionID string `json:"question_id"`
	Answer     *bool  `json:"answer"`
}

// ClarifyHandler serves POST /v1/clarify and POST /v1/clarify/voice,
// resuming a classify call that asked a follow-up question.
type ClarifyHandler struct {
	Classifier  *Classifier
	Transcriber *utils.Transcriber
}

func (h *ClarifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := NewRequestID()

	if r.Method != http.MethodPost {
		writeError(w, requestID, http.StatusMethodNotAllowed, "method_not_allowed", "Use POST")
		return
	}

	var payload ClarifyRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, requestID, http.StatusBadRequest, "validation_error", fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	if payload.RequestID == "" || payload.QuestionID == "" || payload.Answer == nil {
		writeError(w, requestID, http.StatusBadRequest, "validation_error", "request_id, question_id and answer are required")
		return
	}

	resp, apiErr := h.Classifier.Resolve(r.Context(), payload.RequestID, payload.QuestionID, *payload.Answer)
	if apiErr != nil {
		writeError(w, payload.RequestID, apiErr.Status, apiErr.Type, apiErr.Message)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// ServeVoice handles POST /v1/clarify/voice: multipart with request_id and
// question_id fields plus a short audio clip of the spoken answer.
func (h *ClarifyHandler) ServeVoice(w http.ResponseWriter, r *http.Request) {
	requestID := NewRequestID()

	if r.Method != http.MethodPost {
		writeError(w, requestID, http.StatusMethodNotAllowed, "method_not_allowed", "Use POST")
		return
	}
	if h.Transcriber == nil {
		writeError(w, requestID, http.StatusServiceUnavailable, "not_configured", "Voice clarification is not configured")
		return
	}

	file, _, err := r.FormFile("audio")
	if err != nil {
		writeError(w, requestID, http.StatusBadRequest, "validation_error", "Missing or unreadable audio field")
		return
	}
	defer file.Close()

	audioData, err := io.ReadAll(file)
	if err != nil {
		writeError(w, requestID, http.StatusBadRequest, "validation_error", fmt.Sprintf("Failed to read audio: %v", err))
		return
	}

	classifyRequestID := r.FormValue("request_id")
	questionID := r.FormValue("question_id")
	if classifyRequestID == "" || questionID == "" {
		writeError(w, requestID, http.StatusBadRequest, "validation_error", "request_id and question_id are required")
		return
	}

	transcript, err := h.Transcriber.TranscribeAnswer(r.Context(), audioData)
	if err != nil {
		zap.L().Error("Failed to transcribe clarification answer", zap.Error(err))
		writeError(w, classifyRequestID, http.StatusBadGateway, "transcription_error", "Could not transcribe the answer")
		return
	}

	answer, err := utils.ParseBooleanAnswer(transcript)
	if errors.Is(err, utils.ErrUnclearAnswer) {
		// Never guess a branch from an unclear answer; the caller retries.
		writeError(w, classifyRequestID, http.StatusUnprocessableEntity, "unclear_answer", err.Error())
		return
	}
	if err != nil {
		writeError(w, classifyRequestID, http.StatusInternalServerError, "internal_error", "Failed to interpret the answer")
		return
	}

	zap.L().Info("Voice answer parsed",
		zap.String("request_id", classifyRequestID),
		zap.String("transcript", transcript),
		zap.Bool("answer", answer))

	resp, apiErr := h.Classifier.Resolve(r.Context(), classifyRequestID, questionID, answer)
	if apiErr != nil {
		writeError(w, classifyRequestID, apiErr.Status, apiErr.Type, apiErr.Message)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
