package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// ClassifyHandler serves POST /v1/classify: a multipart image upload with an
// optional jurisdiction_id form field.
type ClassifyHandler struct {
	Classifier *Classifier
}

func (h *ClassifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := NewRequestID()
	logger := zap.L().With(zap.String("request_id", requestID))

	if r.Method != http.MethodPost {
		writeError(w, requestID, http.StatusMethodNotAllowed, "method_not_allowed", "Use POST")
		return
	}

	// Bound the read before buffering. The headroom covers multipart framing
	// and form fields so a max-size image still parses; the exact image cap
	// is enforced by ValidateImage.
	r.Body = http.MaxBytesReader(w, r.Body, h.Classifier.MaxUploadBytes+1<<20)

	file, _, err := r.FormFile("image")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, requestID, http.StatusRequestEntityTooLarge, "payload_too_large",
				fmt.Sprintf("File too large. Max %d MB.", h.Classifier.MaxUploadBytes/(1024*1024)))
			return
		}
		writeError(w, requestID, http.StatusBadRequest, "validation_error", "Missing or unreadable image field")
		return
	}
	defer file.Close()

	imageData, err := io.ReadAll(file)
	if err != nil {
		writeError(w, requestID, http.StatusBadRequest, "validation_error", fmt.Sprintf("Failed to read image: %v", err))
		return
	}

	mimeType, apiErr := h.Classifier.ValidateImage(imageData)
	if apiErr != nil {
		writeError(w, requestID, apiErr.Status, apiErr.Type, apiErr.Message)
		return
	}

	jurisdictionID := r.FormValue("jurisdiction_id")
	logger.Info("Classifying image",
		zap.Int("bytes", len(imageData)),
		zap.String("mime_type", mimeType),
		zap.String("jurisdiction_id", jurisdictionID))

	resp, apiErr := h.Classifier.Classify(r.Context(), requestID, imageData, mimeType, jurisdictionID)
	if apiErr != nil {
		writeError(w, requestID, apiErr.Status, apiErr.Type, apiErr.Message)
		return
	}

	logger.Info("Classification complete",
		zap.String("bin", string(resp.Result.Bin)),
		zap.Bool("needs_clarification", resp.NeedsClarification))

	writeJSON(w, http.StatusOK, resp)
}
