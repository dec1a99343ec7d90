package models

import (
	"fmt"
	"strings"
)

// Material is the dominant material of the photographed item.
type Material string

const (
	MaterialPaperCardboard Material = "paper_cardboard"
	MaterialRigidPlastic   Material = "rigid_plastic"
	MaterialFilmPlastic    Material = "film_plastic"
	MaterialMetal          Material = "metal"
	MaterialGlass          Material = "glass"
	MaterialOrganic        Material = "organic"
	MaterialTextile        Material = "textile"
	MaterialUnknown        Material = "unknown"
)

// FormFactor is the physical shape of the item.
type FormFactor string

const (
	FormBottle  FormFactor = "bottle"
	FormCan     FormFactor = "can"
	FormBox     FormFactor = "box"
	FormBagFilm FormFactor = "bag_film"
	FormCup     FormFactor = "cup"
	FormTray    FormFactor = "tray"
	FormUtensil FormFactor = "utensil"
	FormSheet   FormFactor = "sheet"
	FormMixed   FormFactor = "mixed"
	FormUnknown FormFactor = "unknown"
)

// ContaminationRisk is the degree of food/residue soiling.
type ContaminationRisk string

const (
	ContaminationLow     ContaminationRisk = "low"
	ContaminationMedium  ContaminationRisk = "medium"
	ContaminationHigh    ContaminationRisk = "high"
	ContaminationUnknown ContaminationRisk = "unknown"
)

// SpecialHandlingFlag marks waste that must never go in a curbside bin.
type SpecialHandlingFlag string

const (
	SpecialBattery SpecialHandlingFlag = "battery"
	SpecialEWaste  SpecialHandlingFlag = "e_waste"
	SpecialHHW     SpecialHandlingFlag = "hhw"
	SpecialSharps  SpecialHandlingFlag = "sharps"
	SpecialNone    SpecialHandlingFlag = "none"
)

// LabelScore is one raw vision label with its score. Raw labels are kept for
// diagnostics and client display only; rule logic never reads them.
type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// ItemProfile is the normalized output of vision inference for one image.
// Profiles are immutable once produced; clarification answers derive a new
// profile via the With* copy helpers instead of mutating the original.
type ItemProfile struct {
	Material          Material            `json:"material"`
	FormFactor        FormFactor          `json:"form_factor"`
	ContaminationRisk ContaminationRisk   `json:"contamination_risk"`
	SpecialHandling   SpecialHandlingFlag `json:"special_handling"`
	Confidence        float64             `json:"confidence"`
	RawLabels         []LabelScore        `json:"raw_labels"`
}

// InvalidProfileError reports a profile field outside its declared enum or
// range. The engine fails fast on these instead of coercing: a silently
// coerced profile could route hazardous waste into a curbside bin.
type InvalidProfileError struct {
	Field string
	Value string
}

func (e *InvalidProfileError) Error() string {
	return fmt.Sprintf("invalid item profile: field %q has value %q", e.Field, e.Value)
}

var validMaterials = map[Material]bool{
	MaterialPaperCardboard: true,
	MaterialRigidPlastic:   true,
	MaterialFilmPlastic:    true,
	MaterialMetal:          true,
	MaterialGlass:          true,
	MaterialOrganic:        true,
	MaterialTextile:        true,
	MaterialUnknown:        true,
}

var validFormFactors = map[FormFactor]bool{
	FormBottle:  true,
	FormCan:     true,
	FormBox:     true,
	FormBagFilm: true,
	FormCup:     true,
	FormTray:    true,
	FormUtensil: true,
	FormSheet:   true,
	FormMixed:   true,
	FormUnknown: true,
}

var validContaminationRisks = map[ContaminationRisk]bool{
	ContaminationLow:     true,
	ContaminationMedium:  true,
	ContaminationHigh:    true,
	ContaminationUnknown: true,
}

var validSpecialHandling = map[SpecialHandlingFlag]bool{
	SpecialBattery: true,
	SpecialEWaste:  true,
	SpecialHHW:     true,
	SpecialSharps:  true,
	SpecialNone:    true,
}

// Validate checks every field against its declared enum/range.
func (p ItemProfile) Validate() error {
	if !validMaterials[p.Material] {
		return &InvalidProfileError{Field: "material", Value: string(p.Material)}
	}
	if !validFormFactors[p.FormFactor] {
		return &InvalidProfileError{Field: "form_factor", Value: string(p.FormFactor)}
	}
	if !validContaminationRisks[p.ContaminationRisk] {
		return &InvalidProfileError{Field: "contamination_risk", Value: string(p.ContaminationRisk)}
	}
	if !validSpecialHandling[p.SpecialHandling] {
		return &InvalidProfileError{Field: "special_handling", Value: string(p.SpecialHandling)}
	}
	if p.Confidence < 0.0 || p.Confidence > 1.0 {
		return &InvalidProfileError{Field: "confidence", Value: fmt.Sprintf("%v", p.Confidence)}
	}
	return nil
}

// WithContaminationRisk returns a copy of the profile with the contamination
// risk replaced. The receiver is left untouched.
func (p ItemProfile) WithContaminationRisk(risk ContaminationRisk) ItemProfile {
	p.ContaminationRisk = risk
	return p
}

// The Parse helpers below are for profile producers (vision providers): they
// normalize free-form model output onto the declared enums. Unrecognized
// values fall back to the producer-safe default. The engine itself never
// coerces; anything that slips past a producer fails Validate.

func ParseMaterial(s string) Material {
	m := Material(normalizeEnumToken(s))
	if validMaterials[m] {
		return m
	}
	return MaterialUnknown
}

func ParseFormFactor(s string) FormFactor {
	f := FormFactor(normalizeEnumToken(s))
	if validFormFactors[f] {
		return f
	}
	return FormUnknown
}

func ParseContaminationRisk(s string) ContaminationRisk {
	c := ContaminationRisk(normalizeEnumToken(s))
	if validContaminationRisks[c] {
		return c
	}
	return ContaminationUnknown
}

func ParseSpecialHandling(s string) SpecialHandlingFlag {
	f := SpecialHandlingFlag(normalizeEnumToken(s))
	if validSpecialHandling[f] {
		return f
	}
	return SpecialNone
}

func normalizeEnumToken(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
}
