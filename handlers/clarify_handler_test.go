package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/BinSight-Labs/binsight-go-sdk/models"
	"github.com/BinSight-Labs/binsight-go-sdk/rules"
)

func seedPending(t *testing.T, store ClarificationStore, requestID string) {
	t.Helper()
	err := store.Put(context.Background(), requestID, PendingClarification{
		Profile:        soiledBoxProfile(),
		JurisdictionID: rules.DefaultJurisdiction,
		QuestionID:     rules.QuestionFoodSoiled,
	})
	require.NoError(t, err)
}

func doClarify(t *testing.T, handler *ClarifyHandler, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/clarify", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func boolPtr(b bool) *bool { return &b }

func TestClarifyHandler_ResolvesToCommittedResult(t *testing.T) {
	classifier, store := newTestClassifier(soiledBoxProfile())
	handler := &ClarifyHandler{Classifier: classifier}
	seedPending(t, store, "req_abc123def456")

	rec := doClarify(t, handler, ClarifyRequest{
		RequestID:  "req_abc123def456",
		QuestionID: rules.QuestionFoodSoiled,
		Answer:     boolPtr(false),
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.ClassifyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "req_abc123def456", resp.RequestID)
	require.Equal(t, models.BinBlue, resp.Result.Bin)
	require.Equal(t, models.ConfidenceMedium, resp.Result.Confidence)
	require.False(t, resp.NeedsClarification)
	require.Nil(t, resp.Clarification)
}

func TestClarifyHandler_SecondSubmissionFails(t *testing.T) {
	classifier, store := newTestClassifier(soiledBoxProfile())
	handler := &ClarifyHandler{Classifier: classifier}
	seedPending(t, store, "req_abc123def456")

	payload := ClarifyRequest{
		RequestID:  "req_abc123def456",
		QuestionID: rules.QuestionFoodSoiled,
		Answer:     boolPtr(true),
	}

	first := doClarify(t, handler, payload)
	require.Equal(t, http.StatusOK, first.Code)

	// The pending state was consumed; replays must not reuse it.
	second := doClarify(t, handler, payload)
	require.Equal(t, http.StatusNotFound, second.Code)
}

func TestClarifyHandler_UnknownRequestID(t *testing.T) {
	classifier, _ := newTestClassifier(soiledBoxProfile())
	handler := &ClarifyHandler{Classifier: classifier}

	rec := doClarify(t, handler, ClarifyRequest{
		RequestID:  "req_never_issued",
		QuestionID: rules.QuestionFoodSoiled,
		Answer:     boolPtr(true),
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestClarifyHandler_QuestionMismatchKeepsStatePending(t *testing.T) {
	classifier, store := newTestClassifier(soiledBoxProfile())
	handler := &ClarifyHandler{Classifier: classifier}
	seedPending(t, store, "req_abc123def456")

	mismatch := doClarify(t, handler, ClarifyRequest{
		RequestID:  "req_abc123def456",
		QuestionID: rules.QuestionUnknownMaterial,
		Answer:     boolPtr(true),
	})
	require.Equal(t, http.StatusBadRequest, mismatch.Code)

	var errBody models.ErrorBody
	require.NoError(t, json.Unmarshal(mismatch.Body.Bytes(), &errBody))
	require.Equal(t, "invalid_clarification", errBody.Error.Type)

	// The outstanding question can still be answered afterwards.
	retry := doClarify(t, handler, ClarifyRequest{
		RequestID:  "req_abc123def456",
		QuestionID: rules.QuestionFoodSoiled,
		Answer:     boolPtr(false),
	})
	require.Equal(t, http.StatusOK, retry.Code)
}

func TestClarifyHandler_BogusQuestionRejected(t *testing.T) {
	classifier, store := newTestClassifier(soiledBoxProfile())
	handler := &ClarifyHandler{Classifier: classifier}
	seedPending(t, store, "req_abc123def456")

	rec := doClarify(t, handler, ClarifyRequest{
		RequestID:  "req_abc123def456",
		QuestionID: "q_bogus",
		Answer:     boolPtr(true),
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClarifyHandler_MissingFields(t *testing.T) {
	classifier, _ := newTestClassifier(soiledBoxProfile())
	handler := &ClarifyHandler{Classifier: classifier}

	cases := map[string]interface{}{
		"missing answer":     map[string]string{"request_id": "req_x", "question_id": rules.QuestionFoodSoiled},
		"missing request id": map[string]interface{}{"question_id": rules.QuestionFoodSoiled, "answer": true},
		"non-boolean answer": map[string]interface{}{"request_id": "req_x", "question_id": rules.QuestionFoodSoiled, "answer": "yes"},
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			rec := doClarify(t, handler, payload)
			require.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestClarifyHandler_VoiceUnavailableWithoutTranscriber(t *testing.T) {
	classifier, _ := newTestClassifier(soiledBoxProfile())
	handler := &ClarifyHandler{Classifier: classifier, Transcriber: nil}

	req := httptest.NewRequest(http.MethodPost, "/v1/clarify/voice", nil)
	rec := httptest.NewRecorder()
	handler.ServeVoice(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
