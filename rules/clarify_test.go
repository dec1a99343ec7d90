package rules

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/BinSight-Labs/binsight-go-sdk/models"
)

func soiledPaperProfile() models.ItemProfile {
	return models.ItemProfile{
		Material:          models.MaterialPaperCardboard,
		FormFactor:        models.FormBox,
		ContaminationRisk: models.ContaminationUnknown,
		SpecialHandling:   models.SpecialNone,
		Confidence:        0.9,
		RawLabels:         []models.LabelScore{{Label: "paper box", Score: 0.9}},
	}
}

func TestApplyClarification_FoodSoiledRoundTrip(t *testing.T) {
	p := soiledPaperProfile()

	// First pass asks the food-soiled question.
	out, err := Decide(p, DefaultJurisdiction)
	require.NoError(t, err)
	require.True(t, out.NeedsClarification())
	require.Equal(t, QuestionFoodSoiled, out.Clarification.QuestionID)

	// Clean answer resolves to recycling, capped below HIGH.
	resolved, err := ApplyClarification(p, DefaultJurisdiction, QuestionFoodSoiled, false)
	require.NoError(t, err)
	require.False(t, resolved.NeedsClarification())
	require.Equal(t, models.BinBlue, resolved.Result.Bin)
	require.Equal(t, models.ConfidenceMedium, resolved.Result.Confidence,
		"self-reported cleanliness never yields HIGH even with score 0.9")
	require.InDelta(t, 0.9, resolved.Result.ConfidenceScore, 1e-9)
}

func TestApplyClarification_FoodSoiledYesGoesToLandfill(t *testing.T) {
	resolved, err := ApplyClarification(soiledPaperProfile(), DefaultJurisdiction, QuestionFoodSoiled, true)
	require.NoError(t, err)
	require.Equal(t, models.BinGray, resolved.Result.Bin)
}

func TestApplyClarification_UnknownMaterial(t *testing.T) {
	p := models.ItemProfile{
		Material:          models.MaterialUnknown,
		FormFactor:        models.FormUnknown,
		ContaminationRisk: models.ContaminationUnknown,
		SpecialHandling:   models.SpecialNone,
		Confidence:        0.95,
	}

	confirmed, err := ApplyClarification(p, DefaultJurisdiction, QuestionUnknownMaterial, true)
	require.NoError(t, err)
	require.Equal(t, models.BinBlue, confirmed.Result.Bin)
	require.Equal(t, models.ConfidenceMedium, confirmed.Result.Confidence)

	denied, err := ApplyClarification(p, DefaultJurisdiction, QuestionUnknownMaterial, false)
	require.NoError(t, err)
	require.Equal(t, models.BinGray, denied.Result.Bin)
}

func TestApplyClarification_UnknownQuestionRejected(t *testing.T) {
	_, err := ApplyClarification(soiledPaperProfile(), DefaultJurisdiction, "q_bogus", true)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidClarification)
}

func TestApplyClarification_InvalidProfileRejected(t *testing.T) {
	p := soiledPaperProfile()
	p.Confidence = 7

	_, err := ApplyClarification(p, DefaultJurisdiction, QuestionFoodSoiled, true)
	require.Error(t, err)

	var invalid *models.InvalidProfileError
	require.ErrorAs(t, err, &invalid)
}

func TestApplyClarification_UserInputRationaleComesLast(t *testing.T) {
	resolved, err := ApplyClarification(soiledPaperProfile(), DefaultJurisdiction, QuestionFoodSoiled, false)
	require.NoError(t, err)

	rationale := resolved.Result.Rationale
	require.NotEmpty(t, rationale)
	require.Equal(t, models.RationaleUserInput, rationale[len(rationale)-1].Type)

	// Everything before the user-input entry fired during rule evaluation.
	for _, item := range rationale[:len(rationale)-1] {
		require.NotEqual(t, models.RationaleUserInput, item.Type)
	}
}

func TestApplyClarification_OriginalProfileUntouched(t *testing.T) {
	p := soiledPaperProfile()

	_, err := ApplyClarification(p, DefaultJurisdiction, QuestionFoodSoiled, true)
	require.NoError(t, err)
	require.Equal(t, models.ContaminationUnknown, p.ContaminationRisk)
}

func TestApplyClarification_NeverAsksAgain(t *testing.T) {
	for _, questionID := range []string{QuestionFoodSoiled, QuestionUnknownMaterial} {
		for _, answer := range []bool{true, false} {
			resolved, err := ApplyClarification(soiledPaperProfile(), DefaultJurisdiction, questionID, answer)
			require.NoError(t, err)
			require.Nil(t, resolved.Clarification)
		}
	}
}

func TestQuestion_KnownVocabulary(t *testing.T) {
	for _, questionID := range []string{QuestionFoodSoiled, QuestionUnknownMaterial} {
		q := Question(questionID)
		require.Equal(t, questionID, q.QuestionID)
		require.NotEmpty(t, q.QuestionText)
		require.Equal(t, "BOOLEAN", q.AnswerType)
		require.Len(t, q.Options, 2)
	}
}

func TestQuestion_PanicsOutsideVocabulary(t *testing.T) {
	require.Panics(t, func() { Question("q_bogus") })
}
