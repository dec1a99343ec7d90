package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/BinSight-Labs/binsight-go-sdk/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow connections from any origin
	},
}

// SessionMessage is the envelope for every frame in both directions.
type SessionMessage struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

type imagePayload struct {
	ImageB64       string `json:"image_b64"`
	JurisdictionID string `json:"jurisdiction_id"`
}

type clarifyPayload struct {
	RequestID  string `json:"request_id"`
	QuestionID string `json:"question_id"`
	Answer     *bool  `json:"answer"`
}

// SessionHandler serves /v1/session: one websocket over which a client
// streams images and clarification answers and receives classifications,
// for kiosk-style clients that classify many items in a row.
type SessionHandler struct {
	Classifier *Classifier
}

// classifySession is the per-connection state.
type classifySession struct {
	ID         string
	Conn       *websocket.Conn
	Logger     *zap.Logger
	classifier *Classifier
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.L().Error("Failed to upgrade to websocket", zap.Error(err))
		return
	}
	defer conn.Close()

	sessionID := uuid.New().String()
	session := &classifySession{
		ID:         sessionID,
		Conn:       conn,
		Logger:     zap.L().With(zap.String("session_id", sessionID)),
		classifier: h.Classifier,
	}

	session.Logger.Info("New classify session started")
	session.listen()
	session.Logger.Info("Classify session ended")
}

func (s *classifySession) listen() {
	for {
		var msg SessionMessage
		err := s.Conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.Logger.Error("WebSocket error", zap.Error(err))
			}
			return
		}

		switch msg.Type {
		case "image":
			s.handleImage(msg.Data)
		case "clarify":
			s.handleClarify(msg.Data)
		case "ping":
			s.send("pong", nil)
		case "stop":
			s.Logger.Info("Received stop command from client")
			s.send("stop_confirmation", map[string]interface{}{
				"session_id": s.ID,
				"message":    "Session stopped",
			})
			return
		default:
			s.Logger.Warn("Unknown message type", zap.String("type", msg.Type))
			s.sendError("", http.StatusBadRequest, "validation_error", "Unknown message type: "+msg.Type)
		}
	}
}

func (s *classifySession) handleImage(data json.RawMessage) {
	requestID := NewRequestID()

	var payload imagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		s.sendError(requestID, http.StatusBadRequest, "validation_error", "Invalid image payload")
		return
	}

	imageData, err := base64.StdEncoding.DecodeString(payload.ImageB64)
	if err != nil {
		s.sendError(requestID, http.StatusBadRequest, "validation_error", "image_b64 is not valid base64")
		return
	}

	mimeType, apiErr := s.classifier.ValidateImage(imageData)
	if apiErr != nil {
		s.sendError(requestID, apiErr.Status, apiErr.Type, apiErr.Message)
		return
	}

	ctx := context.Background()
	resp, apiErr := s.classifier.Classify(ctx, requestID, imageData, mimeType, payload.JurisdictionID)
	if apiErr != nil {
		s.sendError(requestID, apiErr.Status, apiErr.Type, apiErr.Message)
		return
	}

	s.send("classification", resp)
}

func (s *classifySession) handleClarify(data json.RawMessage) {
	var payload clarifyPayload
	if err := json.Unmarshal(data, &payload); err != nil ||
		payload.RequestID == "" || payload.QuestionID == "" || payload.Answer == nil {
		s.sendError("", http.StatusBadRequest, "validation_error", "request_id, question_id and answer are required")
		return
	}

	resp, apiErr := s.classifier.Resolve(context.Background(), payload.RequestID, payload.QuestionID, *payload.Answer)
	if apiErr != nil {
		s.sendError(payload.RequestID, apiErr.Status, apiErr.Type, apiErr.Message)
		return
	}

	s.send("classification", resp)
}

func (s *classifySession) send(msgType string, body interface{}) {
	data, err := json.Marshal(body)
	if err != nil {
		s.Logger.Error("Failed to marshal outbound message", zap.Error(err))
		return
	}

	msg := SessionMessage{
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now(),
	}
	if err := s.Conn.WriteJSON(msg); err != nil {
		s.Logger.Error("Failed to write websocket message", zap.Error(err))
	}
}

func (s *classifySession) sendError(requestID string, status int, errType, message string) {
	s.send("error", models.ErrorBody{
		RequestID: requestID,
		Error: models.ErrorDetail{
			Message: message,
			Code:    status,
			Type:    errType,
		},
	})
}
