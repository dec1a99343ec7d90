package utils

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	listenapi "github.com/deepgram/deepgram-go-sdk/pkg/api/listen/v1/rest"
	"github.com/deepgram/deepgram-go-sdk/pkg/client/interfaces"
	"github.com/deepgram/deepgram-go-sdk/pkg/client/listen"
	"go.uber.org/zap"
)

// ErrUnclearAnswer is returned when a transcript contains neither a clear
// yes nor a clear no. Callers must surface it instead of guessing a branch.
var ErrUnclearAnswer = errors.New("could not hear a clear yes or no in the answer")

// Transcriber converts a short spoken clarification answer into text.
type Transcriber struct {
	dgClient *listenapi.Client
	model    string
}

// NewTranscriberFromEnv builds a Transcriber from DEEPGRAM_API_KEY, or
// returns nil when the key is absent so voice clarification stays optional.
func NewTranscriberFromEnv() *Transcriber {
	apiKey := os.Getenv("DEEPGRAM_API_KEY")
	if apiKey == "" {
		zap.L().Info("DEEPGRAM_API_KEY not set, voice clarification disabled")
		return nil
	}

	restClient := listen.NewREST(apiKey, &interfaces.ClientOptions{})
	return &Transcriber{
		dgClient: listenapi.New(restClient),
		model:    "nova-3",
	}
}

// TranscribeAnswer runs prerecorded transcription over an uploaded audio
// clip and returns the raw transcript of the first alternative.
func (t *Transcriber) TranscribeAnswer(ctx context.Context, audioData []byte) (string, error) {
	options := &interfaces.PreRecordedTranscriptionOptions{
		Model:       t.model,
		SmartFormat: true,
		Language:    "en",
	}

	res, err := t.dgClient.FromStream(ctx, bytes.NewReader(audioData), options)
	if err != nil {
		return "", fmt.Errorf("failed to transcribe answer: %w", err)
	}

	if res == nil || len(res.Results.Channels) == 0 || len(res.Results.Channels[0].Alternatives) == 0 {
		return "", fmt.Errorf("no transcription alternatives returned")
	}

	transcript := res.Results.Channels[0].Alternatives[0].Transcript
	zap.L().Debug("Transcribed clarification answer", zap.String("transcript", transcript))
	return transcript, nil
}

var yesWords = map[string]bool{
	"yes": true, "yeah": true, "yep": true, "yup": true,
	"correct": true, "affirmative": true, "sure": true, "definitely": true,
}

var noWords = map[string]bool{
	"no": true, "nope": true, "nah": true, "negative": true, "not": true,
}

// ParseBooleanAnswer maps a transcript onto a yes/no answer. A transcript
// containing both polarities ("yes, no wait") is unclear, not a guess.
func ParseBooleanAnswer(transcript string) (bool, error) {
	sawYes := false
	sawNo := false

	for _, word := range strings.Fields(strings.ToLower(transcript)) {
		word = strings.Trim(word, ".,!?;:'\"")
		if yesWords[word] {
			sawYes = true
		}
		if noWords[word] {
			sawNo = true
		}
	}

	switch {
	case sawYes && !sawNo:
		return true, nil
	case sawNo && !sawYes:
		return false, nil
	}
	return false, fmt.Errorf("%w: %q", ErrUnclearAnswer, transcript)
}
