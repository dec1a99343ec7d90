package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/BinSight-Labs/binsight-go-sdk/models"
	"github.com/BinSight-Labs/binsight-go-sdk/rules"
	"github.com/BinSight-Labs/binsight-go-sdk/utils"
)

// apiError is an error already mapped to a client-facing status and type.
type apiError struct {
	Status  int
	Type    string
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Type, e.Status, e.Message)
}

// Classifier is the request orchestration shared by the HTTP endpoints and
// the websocket session: vision call, decision engine, pending-clarification
// persistence and optional guidance lookup.
type Classifier struct {
	Provider            utils.VisionProvider
	Store               ClarificationStore
	Guidance            *utils.GuidanceClient
	DefaultJurisdiction string
	MaxUploadBytes      int64
}

// ValidateImage enforces the upload contract: size cap and sniffed content
// type. The declared Content-Type header is never trusted. It returns the
// detected mime type for the vision call.
func (c *Classifier) ValidateImage(imageData []byte) (string, *apiError) {
	if int64(len(imageData)) > c.MaxUploadBytes {
		return "", &apiError{
			Status:  http.StatusRequestEntityTooLarge,
			Type:    "payload_too_large",
			Message: fmt.Sprintf("File too large. Max %d MB.", c.MaxUploadBytes/(1024*1024)),
		}
	}

	mtype := mimetype.Detect(imageData)
	if !mtype.Is("image/jpeg") && !mtype.Is("image/png") {
		return "", &apiError{
			Status:  http.StatusUnsupportedMediaType,
			Type:    "unsupported_media_type",
			Message: fmt.Sprintf("Unsupported media type: %s. Use JPG or PNG.", mtype.String()),
		}
	}

	return mtype.String(), nil
}

// Classify runs the full pipeline for one image and builds the wire
// response. When the outcome needs clarification, the original profile is
// persisted under the request id so the answer can be resumed later.
func (c *Classifier) Classify(ctx context.Context, requestID string, imageData []byte, mimeType, jurisdictionID string) (models.ClassifyResponse, *apiError) {
	if jurisdictionID == "" {
		jurisdictionID = c.DefaultJurisdiction
	}
	logger := zap.L().With(zap.String("request_id", requestID))

	profile, err := c.Provider.DetectItemProfile(ctx, imageData, mimeType)
	if err != nil {
		logger.Error("Vision provider failed", zap.Error(err))
		return models.ClassifyResponse{}, &apiError{
			Status:  http.StatusBadGateway,
			Type:    "vision_error",
			Message: fmt.Sprintf("Vision provider error: %v", err),
		}
	}

	outcome, err := rules.Decide(profile, jurisdictionID)
	if err != nil {
		// Only an invalid profile reaches here; the producer is upstream of
		// us, so it maps to the same status as any other vision failure.
		logger.Error("Vision provider produced an invalid profile", zap.Error(err))
		return models.ClassifyResponse{}, &apiError{
			Status:  http.StatusBadGateway,
			Type:    "vision_error",
			Message: fmt.Sprintf("Vision provider error: %v", err),
		}
	}

	if outcome.NeedsClarification() {
		pending := PendingClarification{
			Profile:        profile,
			JurisdictionID: jurisdictionID,
			QuestionID:     outcome.Clarification.QuestionID,
		}
		if err := c.Store.Put(ctx, requestID, pending); err != nil {
			logger.Error("Failed to persist pending clarification", zap.Error(err))
			return models.ClassifyResponse{}, &apiError{
				Status:  http.StatusInternalServerError,
				Type:    "internal_error",
				Message: "Failed to persist clarification state",
			}
		}
		logger.Info("Clarification required",
			zap.String("question_id", outcome.Clarification.QuestionID))
	}

	return c.buildResponse(ctx, requestID, jurisdictionID, outcome), nil
}

// Resolve resumes a pending clarification. The stored state is consumed
// exactly once; a question mismatch puts it back so the outstanding question
// can still be answered.
func (c *Classifier) Resolve(ctx context.Context, requestID, questionID string, answer bool) (models.ClassifyResponse, *apiError) {
	logger := zap.L().With(zap.String("request_id", requestID))

	pending, err := c.Store.Take(ctx, requestID)
	if errors.Is(err, ErrPendingNotFound) {
		return models.ClassifyResponse{}, &apiError{
			Status:  http.StatusNotFound,
			Type:    "not_found",
			Message: "No pending clarification for this request id",
		}
	}
	if err != nil {
		logger.Error("Failed to fetch pending clarification", zap.Error(err))
		return models.ClassifyResponse{}, &apiError{
			Status:  http.StatusInternalServerError,
			Type:    "internal_error",
			Message: "Failed to fetch clarification state",
		}
	}

	if pending.QuestionID != questionID {
		if putErr := c.Store.Put(ctx, requestID, pending); putErr != nil {
			logger.Error("Failed to restore pending clarification", zap.Error(putErr))
		}
		return models.ClassifyResponse{}, &apiError{
			Status:  http.StatusBadRequest,
			Type:    "invalid_clarification",
			Message: fmt.Sprintf("Question %q was not asked for this request", questionID),
		}
	}

	outcome, err := rules.ApplyClarification(pending.Profile, pending.JurisdictionID, questionID, answer)
	if errors.Is(err, rules.ErrInvalidClarification) {
		return models.ClassifyResponse{}, &apiError{
			Status:  http.StatusBadRequest,
			Type:    "invalid_clarification",
			Message: err.Error(),
		}
	}
	if err != nil {
		logger.Error("Failed to resolve clarification", zap.Error(err))
		return models.ClassifyResponse{}, &apiError{
			Status:  http.StatusInternalServerError,
			Type:    "internal_error",
			Message: "Failed to resolve clarification",
		}
	}

	logger.Info("Clarification resolved",
		zap.String("question_id", questionID),
		zap.Bool("answer", answer),
		zap.String("bin", string(outcome.Result.Bin)))

	return c.buildResponse(ctx, requestID, pending.JurisdictionID, outcome), nil
}

func (c *Classifier) buildResponse(ctx context.Context, requestID, jurisdictionID string, outcome models.Outcome) models.ClassifyResponse {
	resp := models.ClassifyResponse{
		RequestID:          requestID,
		JurisdictionID:     jurisdictionID,
		Result:             outcome.Result,
		NeedsClarification: outcome.NeedsClarification(),
		Clarification:      outcome.Clarification,
		SpecialHandling:    outcome.SpecialHandling,
	}

	// Guidance is best effort and only for committed answers; a retrieval
	// failure never blocks the classification.
	if c.Guidance != nil && !outcome.NeedsClarification() && len(outcome.Result.TopLabels) > 0 {
		tips, err := c.Guidance.DisposalTips(ctx, jurisdictionID, outcome.Result.TopLabels[0].Label)
		if err != nil {
			zap.L().Warn("Failed to fetch disposal tips",
				zap.String("request_id", requestID),
				zap.Error(err))
		} else {
			resp.Tips = tips
		}
	}

	return resp
}
