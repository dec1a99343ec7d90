package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseBooleanAnswer(t *testing.T) {
	cases := []struct {
		transcript string
		want       bool
	}{
		{"Yes", true},
		{"yeah, it is.", true},
		{"Yep!", true},
		{"definitely", true},
		{"No", false},
		{"Nope.", false},
		{"nah", false},
		{"it's not soiled", false},
	}

	for _, tc := range cases {
		t.Run(tc.transcript, func(t *testing.T) {
			got, err := ParseBooleanAnswer(tc.transcript)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestParseBooleanAnswer_Unclear(t *testing.T) {
	for _, transcript := range []string{
		"",
		"maybe",
		"yes, no, wait",
		"the weather is nice",
	} {
		t.Run(transcript, func(t *testing.T) {
			_, err := ParseBooleanAnswer(transcript)
			require.ErrorIs(t, err, ErrUnclearAnswer)
		})
	}
}
