package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/BinSight-Labs/binsight-go-sdk/models"
)

// ErrPendingNotFound is returned for request ids with no outstanding
// clarification: unknown ids, expired ids, and ids already resolved.
var ErrPendingNotFound = errors.New("no pending clarification for request id")

// PendingClarification is the cross-request state needed to resume a
// clarification: the original profile (never the provisional result), the
// jurisdiction of the classify call, and the question that was asked.
type PendingClarification struct {
	Profile        models.ItemProfile `json:"profile"`
	JurisdictionID string             `json:"jurisdiction_id"`
	QuestionID     string             `json:"question_id"`
}

// ClarificationStore persists pending clarifications keyed by request id.
// Take removes the entry it returns, so each outstanding clarification can
// be resumed exactly once; repeat submissions fail with ErrPendingNotFound.
type ClarificationStore interface {
	Put(ctx context.Context, requestID string, pending PendingClarification) error
	Take(ctx context.Context, requestID string) (PendingClarification, error)
}

const redisKeyPrefix = "pending_clarification:"

// RedisClarificationStore is the production store. Entries expire after TTL
// so abandoned clarifications do not accumulate.
type RedisClarificationStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func (s *RedisClarificationStore) Put(ctx context.Context, requestID string, pending PendingClarification) error {
	payload, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("failed to marshal pending clarification: %w", err)
	}

	if err := s.Client.Set(ctx, redisKeyPrefix+requestID, payload, s.TTL).Err(); err != nil {
		return fmt.Errorf("failed to store pending clarification: %w", err)
	}
	return nil
}

func (s *RedisClarificationStore) Take(ctx context.Context, requestID string) (PendingClarification, error) {
	// GETDEL keeps take-once atomic under concurrent submissions.
	val, err := s.Client.GetDel(ctx, redisKeyPrefix+requestID).Result()
	if errors.Is(err, redis.Nil) {
		return PendingClarification{}, ErrPendingNotFound
	}
	if err != nil {
		return PendingClarification{}, fmt.Errorf("failed to fetch pending clarification: %w", err)
	}

	var pending PendingClarification
	if err := json.Unmarshal([]byte(val), &pending); err != nil {
		return PendingClarification{}, fmt.Errorf("failed to unmarshal pending clarification: %w", err)
	}
	return pending, nil
}

// MemoryClarificationStore backs tests and Redis-less development.
type MemoryClarificationStore struct {
	mu      sync.Mutex
	pending map[string]PendingClarification
}

func NewMemoryClarificationStore() *MemoryClarificationStore {
	return &MemoryClarificationStore{pending: make(map[string]PendingClarification)}
}

func (s *MemoryClarificationStore) Put(_ context.Context, requestID string, pending PendingClarification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[requestID] = pending
	return nil
}

func (s *MemoryClarificationStore) Take(_ context.Context, requestID string) (PendingClarification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, ok := s.pending[requestID]
	if !ok {
		return PendingClarification{}, ErrPendingNotFound
	}
	delete(s.pending, requestID)
	return pending, nil
}
