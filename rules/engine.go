// Package rules holds the decision engine and clarification resolver: pure,
// deterministic functions that map a vision-derived item profile to a bin
// assignment. No I/O, no logging, safe for concurrent use.
package rules

import (
	"fmt"

	"github.com/BinSight-Labs/binsight-go-sdk/models"
)

// DefaultJurisdiction is applied for any jurisdiction id without a
// registered rule set. Unrecognized jurisdictions are never an error.
const DefaultJurisdiction = "CA_DEFAULT"

const maxTopLabels = 5

// recyclableMaterials are the curbside-recyclable materials when clean.
// Film plastic is deliberately excluded: it jams sorting machinery and is
// handled by its own rule.
var recyclableMaterials = map[models.Material]bool{
	models.MaterialPaperCardboard: true,
	models.MaterialRigidPlastic:   true,
	models.MaterialMetal:          true,
	models.MaterialGlass:          true,
}

// specialInstructions maps each special-handling flag to its instruction
// template and wire category.
var specialInstructions = map[models.SpecialHandlingFlag]models.SpecialHandling{
	models.SpecialBattery: {
		Category:     "BATTERY",
		Instructions: "Do not place in curbside bins. Take to a household hazardous waste drop-off or a retailer collection point.",
	},
	models.SpecialEWaste: {
		Category:     "E_WASTE",
		Instructions: "Do not place in curbside bins. Take to an e-waste recycler or a retailer take-back program.",
	},
	models.SpecialHHW: {
		Category:     "HHW",
		Instructions: "Household hazardous waste must go to a designated HHW collection facility. Keep it sealed in its original container.",
	},
	models.SpecialSharps: {
		Category:     "SHARPS",
		Instructions: "Place in an approved sharps container and take to a collection site. Never place loose sharps in any bin.",
	},
}

// rule is one row of the priority-ordered table. The first rule whose
// matches predicate holds wins; later rules are never consulted.
type rule struct {
	name    string
	matches func(p models.ItemProfile) bool
	apply   func(p models.ItemProfile) models.Outcome
}

// confidenceBucket maps a numeric score to a display level. Boundaries are
// inclusive on the lower edge: 0.85 is HIGH, 0.65 is MEDIUM.
func confidenceBucket(score float64) models.ConfidenceLevel {
	if score >= 0.85 {
		return models.ConfidenceHigh
	}
	if score >= 0.65 {
		return models.ConfidenceMedium
	}
	return models.ConfidenceLow
}

func topLabels(p models.ItemProfile) []models.LabelScore {
	if len(p.RawLabels) <= maxTopLabels {
		return p.RawLabels
	}
	return p.RawLabels[:maxTopLabels]
}

// baseRationale seeds the audit trail. The top raw label is echoed for
// diagnostics only; it never influences which rule fires.
func baseRationale(p models.ItemProfile) []models.RationaleItem {
	if len(p.RawLabels) == 0 {
		return nil
	}
	return []models.RationaleItem{{
		Type: models.RationaleDetectedItem,
		Text: fmt.Sprintf("Top match: %s", p.RawLabels[0].Label),
	}}
}

// committed builds a Result whose score is the profile's own confidence.
// The engine never invents a score.
func committed(p models.ItemProfile, bin models.Bin, rationale []models.RationaleItem) models.Result {
	return models.Result{
		Bin:             bin,
		BinLabel:        models.BinLabel(bin),
		Confidence:      confidenceBucket(p.Confidence),
		ConfidenceScore: p.Confidence,
		Rationale:       rationale,
		TopLabels:       topLabels(p),
	}
}

// provisional builds the GRAY/LOW best guess returned alongside a
// clarification. It echoes the profile's score but forces the LOW bucket so
// clients cannot mistake the guess for a committed answer.
func provisional(p models.ItemProfile, rationale []models.RationaleItem) models.Result {
	return models.Result{
		Bin:             models.BinGray,
		BinLabel:        models.BinLabel(models.BinGray),
		Confidence:      models.ConfidenceLow,
		ConfidenceScore: p.Confidence,
		Rationale:       rationale,
		TopLabels:       topLabels(p),
	}
}

// defaultRules is the CA_DEFAULT table, highest priority first.
var defaultRules = []rule{
	{
		name: "special_handling",
		matches: func(p models.ItemProfile) bool {
			return p.SpecialHandling != models.SpecialNone
		},
		apply: func(p models.ItemProfile) models.Outcome {
			special := specialInstructions[p.SpecialHandling]
			rationale := append(baseRationale(p), models.RationaleItem{
				Type: models.RationaleSafety,
				Text: special.Instructions,
			})
			res := committed(p, models.BinSpecial, rationale)
			// The safety signal is authoritative; it is never second-guessed
			// by the upstream score and never deferred to a clarification.
			res.Confidence = models.ConfidenceHigh
			return models.Outcome{Result: res, SpecialHandling: &special}
		},
	},
	{
		name: "organic",
		matches: func(p models.ItemProfile) bool {
			return p.Material == models.MaterialOrganic
		},
		apply: func(p models.ItemProfile) models.Outcome {
			rationale := append(baseRationale(p), models.RationaleItem{
				Type: models.RationaleRule,
				Text: "Organic/compostable material",
			})
			return models.Outcome{Result: committed(p, models.BinGreen, rationale)}
		},
	},
	{
		name: "clean_recyclable",
		matches: func(p models.ItemProfile) bool {
			return recyclableMaterials[p.Material] && p.ContaminationRisk == models.ContaminationLow
		},
		apply: func(p models.ItemProfile) models.Outcome {
			rationale := append(baseRationale(p), models.RationaleItem{
				Type: models.RationaleRule,
				Text: "Clean paper, rigid plastic, metal and glass go in curbside recycling",
			})
			return models.Outcome{Result: committed(p, models.BinBlue, rationale)}
		},
	},
	{
		name: "film_plastic",
		matches: func(p models.ItemProfile) bool {
			return p.Material == models.MaterialFilmPlastic
		},
		apply: func(p models.ItemProfile) models.Outcome {
			rationale := append(baseRationale(p), models.RationaleItem{
				Type: models.RationaleRule,
				Text: "Plastic film and bags are not accepted in curbside recycling streams",
			})
			return models.Outcome{Result: committed(p, models.BinGray, rationale)}
		},
	},
	{
		name: "contaminated_recyclable",
		matches: func(p models.ItemProfile) bool {
			if !recyclableMaterials[p.Material] {
				return false
			}
			switch p.ContaminationRisk {
			case models.ContaminationMedium, models.ContaminationHigh, models.ContaminationUnknown:
				return true
			}
			return false
		},
		apply: func(p models.ItemProfile) models.Outcome {
			if p.ContaminationRisk == models.ContaminationUnknown {
				rationale := append(baseRationale(p), models.RationaleItem{
					Type: models.RationaleRule,
					Text: "Recyclable material is accepted only when clean; soiling status is unclear",
				})
				q := Question(QuestionFoodSoiled)
				return models.Outcome{Result: provisional(p, rationale), Clarification: &q}
			}
			rationale := append(baseRationale(p), models.RationaleItem{
				Type: models.RationaleRule,
				Text: "Food or residue contamination makes this item unsuitable for recycling",
			})
			return models.Outcome{Result: committed(p, models.BinGray, rationale)}
		},
	},
	{
		name: "unknown_item",
		matches: func(p models.ItemProfile) bool {
			return p.Material == models.MaterialUnknown || p.FormFactor == models.FormUnknown
		},
		apply: func(p models.ItemProfile) models.Outcome {
			rationale := append(baseRationale(p), models.RationaleItem{
				Type: models.RationaleSystem,
				Text: "Could not identify the item from the photo; asking for help",
			})
			q := Question(QuestionUnknownMaterial)
			return models.Outcome{Result: provisional(p, rationale), Clarification: &q}
		},
	},
}

// jurisdictionRules maps a jurisdiction id to its rule table. Only
// CA_DEFAULT is registered today; the lookup keeps the door open for
// per-jurisdiction overrides without breaking callers that pass ids the
// engine has never seen.
var jurisdictionRules = map[string][]rule{
	DefaultJurisdiction: defaultRules,
}

func rulesFor(jurisdictionID string) []rule {
	if table, ok := jurisdictionRules[jurisdictionID]; ok {
		return table
	}
	return defaultRules
}

// Decide maps an item profile to a bin assignment under the priority-ordered
// rule table for the given jurisdiction. It returns either a committed
// outcome or a provisional one carrying the clarification needed to commit.
// Decide is total over valid profiles: when no rule matches it falls back to
// GRAY/LOW rather than failing.
func Decide(profile models.ItemProfile, jurisdictionID string) (models.Outcome, error) {
	if err := profile.Validate(); err != nil {
		return models.Outcome{}, err
	}

	for _, r := range rulesFor(jurisdictionID) {
		if r.matches(profile) {
			return r.apply(profile), nil
		}
	}

	// Conservative default for the enum combinations no rule claims, e.g. a
	// known textile with a known form factor.
	rationale := append(baseRationale(profile), models.RationaleItem{
		Type: models.RationaleSystem,
		Text: "No disposal rule matched; defaulting to landfill to keep recycling streams clean",
	})
	res := committed(profile, models.BinGray, rationale)
	res.Confidence = models.ConfidenceLow
	return models.Outcome{Result: res}, nil
}
