package models

// Bin is the disposal category the item is routed to.
type Bin string

const (
	BinBlue    Bin = "BLUE"
	BinGreen   Bin = "GREEN"
	BinGray    Bin = "GRAY"
	BinSpecial Bin = "SPECIAL"
)

// BinLabel returns the human-facing name of a bin.
func BinLabel(b Bin) string {
	switch b {
	case BinBlue:
		return "Recycling"
	case BinGreen:
		return "Organics"
	case BinGray:
		return "Landfill (Trash)"
	case BinSpecial:
		return "Special handling"
	}
	return "Not sure yet"
}

// ConfidenceLevel buckets a numeric confidence score for display.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "HIGH"
	ConfidenceMedium ConfidenceLevel = "MEDIUM"
	ConfidenceLow    ConfidenceLevel = "LOW"
)

// RationaleType tags one entry of the decision audit trail.
type RationaleType string

const (
	RationaleDetectedItem RationaleType = "DETECTED_ITEM"
	RationaleRule         RationaleType = "RULE"
	RationaleUserInput    RationaleType = "USER_INPUT"
	RationaleSafety       RationaleType = "SAFETY"
	RationaleSystem       RationaleType = "SYSTEM"
)

// RationaleItem is one step of the audit trail explaining a decision.
// Entries are ordered oldest first, in the order rules fired.
type RationaleItem struct {
	Type RationaleType `json:"type"`
	Text string        `json:"text"`
}

// Result is a bin assignment with its confidence and audit trail.
type Result struct {
	Bin             Bin             `json:"bin"`
	BinLabel        string          `json:"bin_label"`
	Confidence      ConfidenceLevel `json:"confidence"`
	ConfidenceScore float64         `json:"confidence_score"`
	Rationale       []RationaleItem `json:"rationale"`
	TopLabels       []LabelScore    `json:"top_labels"`
}

// AnswerOption is one selectable answer for a clarification question.
type AnswerOption struct {
	Value bool   `json:"value"`
	Label string `json:"label"`
}

// Clarification is a single yes/no follow-up question. QuestionID is stable
// within the clarification vocabulary, not per request.
type Clarification struct {
	QuestionID   string         `json:"question_id"`
	QuestionText string         `json:"question_text"`
	AnswerType   string         `json:"answer_type"`
	Options      []AnswerOption `json:"options"`
}

// SpecialHandling carries disposal instructions for waste that must not go
// in any curbside bin. Present only when the bin is SPECIAL.
type SpecialHandling struct {
	Category     string `json:"category"`
	Instructions string `json:"instructions"`
}

// Outcome is the engine's dual return: a committed Result, or a provisional
// Result paired with the Clarification needed to commit. The provisional
// Result is advisory display content only and must never be persisted as the
// final answer.
type Outcome struct {
	Result          Result
	Clarification   *Clarification
	SpecialHandling *SpecialHandling
}

// NeedsClarification reports whether the outcome is provisional.
func (o Outcome) NeedsClarification() bool {
	return o.Clarification != nil
}

// ClassifyResponse is the wire shape produced from an Outcome.
type ClassifyResponse struct {
	RequestID          string           `json:"request_id"`
	JurisdictionID     string           `json:"jurisdiction_id"`
	Result             Result           `json:"result"`
	NeedsClarification bool             `json:"needs_clarification"`
	Clarification      *Clarification   `json:"clarification"`
	SpecialHandling    *SpecialHandling `json:"special_handling"`
	Tips               []string         `json:"tips,omitempty"`
}

// ErrorDetail is the error object embedded in every error response.
type ErrorDetail struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
	Type    string `json:"type"`
}

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	RequestID string      `json:"request_id"`
	Error     ErrorDetail `json:"error"`
}
