package rules

import (
	"errors"
	"fmt"

	"github.com/BinSight-Labs/binsight-go-sdk/models"
)

// Clarification vocabulary. Every question id the engine can emit has a
// resolver branch below; the resolver rejects anything outside this set.
const (
	// QuestionFoodSoiled asks whether a recyclable item carries food residue.
	QuestionFoodSoiled = "q_food_soiled_01"
	// QuestionUnknownMaterial asks the user to identify an item the vision
	// provider could not.
	QuestionUnknownMaterial = "q_unknown_material_01"
)

var questionTexts = map[string]string{
	QuestionFoodSoiled:      "Is this item soiled with food residue?",
	QuestionUnknownMaterial: "I couldn't identify this item. Is it clean and made of paper, rigid plastic, metal or glass?",
}

// ErrInvalidClarification is returned for a question id outside the
// vocabulary. The resolver never silently defaults: guessing the wrong
// branch of a disposal decision has real-world consequences.
var ErrInvalidClarification = errors.New("clarification question not in vocabulary")

// Question builds the wire form of a vocabulary question. It panics on ids
// outside the vocabulary, which can only happen through a programming error
// in the rule table itself.
func Question(questionID string) models.Clarification {
	text, ok := questionTexts[questionID]
	if !ok {
		panic(fmt.Sprintf("rules: question %q not in clarification vocabulary", questionID))
	}
	return models.Clarification{
		QuestionID:   questionID,
		QuestionText: text,
		AnswerType:   "BOOLEAN",
		Options: []models.AnswerOption{
			{Value: true, Label: "Yes"},
			{Value: false, Label: "No"},
		},
	}
}

// capAtMedium enforces the post-clarification confidence ceiling: the added
// certainty is an unverified self-report, not a vision signal, so it never
// reaches HIGH.
func capAtMedium(level models.ConfidenceLevel) models.ConfidenceLevel {
	if level == models.ConfidenceHigh {
		return models.ConfidenceMedium
	}
	return level
}

func userAnswerItem(questionID string, answer bool) models.RationaleItem {
	return models.RationaleItem{
		Type: models.RationaleUserInput,
		Text: fmt.Sprintf("Answered %s = %t", questionID, answer),
	}
}

// ApplyClarification resolves a previously asked question against the
// original (pre-clarification) profile and returns the final committed
// outcome. It never asks a second question for the same profile: one round
// trip per question. The returned outcome's Clarification is always nil.
func ApplyClarification(profile models.ItemProfile, jurisdictionID, questionID string, answer bool) (models.Outcome, error) {
	if err := profile.Validate(); err != nil {
		return models.Outcome{}, err
	}

	switch questionID {
	case QuestionFoodSoiled:
		risk := models.ContaminationLow
		if answer {
			risk = models.ContaminationHigh
		}
		out, err := Decide(profile.WithContaminationRisk(risk), jurisdictionID)
		if err != nil {
			return models.Outcome{}, err
		}
		if out.NeedsClarification() {
			// Cannot happen while the rule table resolves every known
			// contamination level, but the one-round-trip contract must hold
			// even if the table changes.
			out = conservativeCommit(profile)
		}
		out.Result.Rationale = append(out.Result.Rationale, userAnswerItem(questionID, answer))
		out.Result.Confidence = capAtMedium(out.Result.Confidence)
		return out, nil

	case QuestionUnknownMaterial:
		bin := models.BinGray
		text := "Unidentified items go in the landfill bin to keep recycling streams clean"
		if answer {
			bin = models.BinBlue
			text = "Accepted as recycling on your confirmation that the item is clean and recyclable"
		}
		rationale := append(baseRationale(profile), models.RationaleItem{
			Type: models.RationaleRule,
			Text: text,
		})
		rationale = append(rationale, userAnswerItem(questionID, answer))
		res := committed(profile, bin, rationale)
		res.Confidence = capAtMedium(res.Confidence)
		return models.Outcome{Result: res}, nil
	}

	return models.Outcome{}, fmt.Errorf("%w: %q", ErrInvalidClarification, questionID)
}

// conservativeCommit is the landfill default used when a clarification
// answer still leaves the rule table undecided.
func conservativeCommit(p models.ItemProfile) models.Outcome {
	rationale := append(baseRationale(p), models.RationaleItem{
		Type: models.RationaleSystem,
		Text: "Could not commit after clarification; defaulting to landfill",
	})
	res := committed(p, models.BinGray, rationale)
	res.Confidence = models.ConfidenceLow
	return models.Outcome{Result: res}
}
