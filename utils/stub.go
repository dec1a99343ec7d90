package utils

import (
	"context"
	"math/rand"

	"github.com/BinSight-Labs/binsight-go-sdk/models"
)

// StubProvider produces deterministic-ish profiles without any API keys:
// the same image bytes always yield the same profile, so local runs and
// tests are repeatable.
type StubProvider struct{}

func NewStubProvider() *StubProvider {
	return &StubProvider{}
}

type stubItem struct {
	label           string
	material        models.Material
	formFactor      models.FormFactor
	contamination   models.ContaminationRisk
	specialHandling models.SpecialHandlingFlag
	minScore        float64
	maxScore        float64
}

var stubPool = []stubItem{
	{"plastic bottle", models.MaterialRigidPlastic, models.FormBottle, models.ContaminationLow, models.SpecialNone, 0.70, 0.95},
	{"paper box", models.MaterialPaperCardboard, models.FormBox, models.ContaminationUnknown, models.SpecialNone, 0.55, 0.90},
	{"food scraps", models.MaterialOrganic, models.FormMixed, models.ContaminationHigh, models.SpecialNone, 0.40, 0.85},
	{"banana peel", models.MaterialOrganic, models.FormMixed, models.ContaminationLow, models.SpecialNone, 0.55, 0.95},
	{"battery", models.MaterialMetal, models.FormMixed, models.ContaminationLow, models.SpecialBattery, 0.60, 0.98},
	{"aluminum can", models.MaterialMetal, models.FormCan, models.ContaminationLow, models.SpecialNone, 0.65, 0.95},
	{"plastic bag", models.MaterialFilmPlastic, models.FormBagFilm, models.ContaminationLow, models.SpecialNone, 0.55, 0.90},
	{"glass bottle", models.MaterialGlass, models.FormBottle, models.ContaminationLow, models.SpecialNone, 0.60, 0.95},
	{"crumpled object", models.MaterialUnknown, models.FormUnknown, models.ContaminationUnknown, models.SpecialNone, 0.20, 0.55},
}

// DetectItemProfile seeds a generator from the leading image bytes and picks
// an item from the pool, mirroring how a vision call would behave without
// leaving the process.
func (s *StubProvider) DetectItemProfile(_ context.Context, imageData []byte, _ string) (models.ItemProfile, error) {
	var seed int64
	for i := 0; i < len(imageData) && i < 2048; i++ {
		seed += int64(imageData[i])
	}
	rng := rand.New(rand.NewSource(seed % 10_000))

	item := stubPool[rng.Intn(len(stubPool))]
	score := item.minScore + rng.Float64()*(item.maxScore-item.minScore)

	labels := []models.LabelScore{{Label: item.label, Score: score}}
	if secondary := stubPool[rng.Intn(len(stubPool))]; secondary.label != item.label {
		labels = append(labels, models.LabelScore{Label: secondary.label, Score: score * 0.6})
	}

	return models.ItemProfile{
		Material:          item.material,
		FormFactor:        item.formFactor,
		ContaminationRisk: item.contamination,
		SpecialHandling:   item.specialHandling,
		Confidence:        score,
		RawLabels:         labels,
	}, nil
}
