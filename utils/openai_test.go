package utils

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/BinSight-Labs/binsight-go-sdk/models"
)

func TestNormalizeProfile(t *testing.T) {
	payload := itemProfilePayload{
		Material:          " Rigid Plastic ",
		FormFactor:        "bottle",
		ContaminationRisk: "something sticky",
		SpecialHandling:   "glitter bomb",
		Confidence:        1.7,
	}
	payload.Labels = []struct {
		Label string  `json:"label"`
		Score float64 `json:"score"`
	}{
		{Label: "  Plastic Bottle ", Score: 0.4},
		{Label: "water bottle", Score: 1.3},
		{Label: "a", Score: 0.1},
		{Label: "b", Score: 0.2},
		{Label: "c", Score: 0.3},
		{Label: "d", Score: 0.25},
	}

	profile := normalizeProfile(payload)

	require.Equal(t, models.MaterialRigidPlastic, profile.Material)
	require.Equal(t, models.FormBottle, profile.FormFactor)
	require.Equal(t, models.ContaminationUnknown, profile.ContaminationRisk, "unrecognized risk degrades to unknown")
	require.Equal(t, models.SpecialNone, profile.SpecialHandling, "unrecognized flag degrades to none")
	require.Equal(t, 1.0, profile.Confidence, "confidence clamped into range")

	require.NoError(t, profile.Validate(), "normalized profiles always pass engine validation")

	require.Len(t, profile.RawLabels, 5)
	require.Equal(t, "water bottle", profile.RawLabels[0].Label)
	require.Equal(t, 1.0, profile.RawLabels[0].Score, "label scores clamped too")
	require.Equal(t, "plastic bottle", profile.RawLabels[1].Label)
}

func TestStripCodeFence(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"{\"a\":1}", "{\"a\":1}"},
		{"```json\n{\"a\":1}\n```", "{\"a\":1}"},
		{"```\n{\"a\":1}\n```", "{\"a\":1}"},
		{"  ```json\n{\"a\":1}\n```\n  ", "{\"a\":1}"},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, stripCodeFence(tc.in))
	}
}
