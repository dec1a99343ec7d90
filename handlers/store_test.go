package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/BinSight-Labs/binsight-go-sdk/models"
	"github.com/BinSight-Labs/binsight-go-sdk/rules"
)

func TestMemoryStore_TakeIsExactlyOnce(t *testing.T) {
	store := NewMemoryClarificationStore()
	ctx := context.Background()

	pending := PendingClarification{
		Profile: models.ItemProfile{
			Material:          models.MaterialPaperCardboard,
			FormFactor:        models.FormBox,
			ContaminationRisk: models.ContaminationUnknown,
			SpecialHandling:   models.SpecialNone,
			Confidence:        0.7,
		},
		JurisdictionID: rules.DefaultJurisdiction,
		QuestionID:     rules.QuestionFoodSoiled,
	}

	require.NoError(t, store.Put(ctx, "req_1", pending))

	got, err := store.Take(ctx, "req_1")
	require.NoError(t, err)
	require.Equal(t, pending, got)

	_, err = store.Take(ctx, "req_1")
	require.ErrorIs(t, err, ErrPendingNotFound)
}

func TestMemoryStore_UnknownID(t *testing.T) {
	store := NewMemoryClarificationStore()

	_, err := store.Take(context.Background(), "req_missing")
	require.ErrorIs(t, err, ErrPendingNotFound)
}

func TestMemoryStore_PutOverwrites(t *testing.T) {
	store := NewMemoryClarificationStore()
	ctx := context.Background()

	first := PendingClarification{QuestionID: rules.QuestionFoodSoiled}
	second := PendingClarification{QuestionID: rules.QuestionUnknownMaterial}

	require.NoError(t, store.Put(ctx, "req_1", first))
	require.NoError(t, store.Put(ctx, "req_1", second))

	got, err := store.Take(ctx, "req_1")
	require.NoError(t, err)
	require.Equal(t, rules.QuestionUnknownMaterial, got.QuestionID)
}
