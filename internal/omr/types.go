package omr

import "omr-decoder/pkg/geometry"

// BubbleState classifies how strongly a single bubble is marked.
type BubbleState int

const (
	BubbleBlank BubbleState = iota
	BubbleFilled
	BubblePartial
	BubbleInvalid
)

func (s BubbleState) String() string {
	switch s {
	case BubbleFilled:
		return "FILLED"
	case BubblePartial:
		return "PARTIAL"
	case BubbleInvalid:
		return "INVALID"
	default:
		return "BLANK"
	}
}

// FillResult is a bubble's classification plus its estimated fill ratio.
type FillResult struct {
	State     BubbleState
	FillRatio float64
}

// Candidate is a detected bubble contour with its bounding box, produced
// by BubbleDetector and consumed by Grouper.
type Candidate struct {
	Contour Contour
	Box     geometry.RectInt
}

// CenterX returns the horizontal center of the candidate's bounding box.
func (c Candidate) CenterX() float64 {
	return c.Box.ToFloat().Center().X
}

// CenterY returns the vertical center of the candidate's bounding box.
func (c Candidate) CenterY() float64 {
	return c.Box.ToFloat().Center().Y
}

// column is a phase-1 spatial cluster of candidates sharing a similar
// center-x. It mutates as bubbles are assigned during Grouper.
type column struct {
	centerX float64
	bubbles []Candidate
}

// row is a phase-2 cluster within a column sharing a similar center-y.
// After Phase 4 its bubbles are sorted by x, and a row with more than
// NumChoices bubbles is trimmed by overlap filtering; missing bubbles
// are left absent.
type row struct {
	centerY     float64
	bubbles     []Candidate
	columnIndex int
}

// MarkOutcomeKind tags the kind of MarkOutcome a row resolved to.
// OutcomeBlank is the zero value, so an unset MarkOutcome is blank.
type MarkOutcomeKind int

const (
	OutcomeBlank MarkOutcomeKind = iota
	OutcomeChoice
	OutcomeMultiple
	OutcomeAmbiguousPartial
)

// MarkOutcome is the result of resolving one row of bubble fills into a
// single answer, per §4.5.
type MarkOutcome struct {
	Kind  MarkOutcomeKind
	Index int // valid only when Kind == OutcomeChoice
}

// ResponseStatus is the per-question status exposed in a ScoreReport.
type ResponseStatus string

const (
	StatusCorrect  ResponseStatus = "correct"
	StatusWrong    ResponseStatus = "wrong"
	StatusBlank    ResponseStatus = "blank"
	StatusMultiple ResponseStatus = "multiple"
	StatusPartial  ResponseStatus = "partial"
	StatusInvalid  ResponseStatus = "invalid"
)

// ScoredResponse is one question's graded outcome.
type ScoredResponse struct {
	Question      int
	Marked        *rune // nil means no single letter was recorded
	CorrectLetter rune
	Status        ResponseStatus
	IsCorrect     bool
}

// ProcessingMetadata carries heuristic, non-authoritative signals about
// the decode, mirroring the external schema in §6.
type ProcessingMetadata struct {
	Confidence      float64
	BubblesDetected bool
	ImageQuality    string
}

// ScoreReport is the only value the decoding core returns to a caller.
type ScoreReport struct {
	Score             int
	TotalQuestions    int
	Attempted         int
	CorrectAnswers    int
	IncorrectAnswers  int
	BlankAnswers      int
	MultipleMarks     int
	PartialMarks      int
	InvalidAnswers    int
	Accuracy          float64
	Responses         []*rune
	DetailedResponses []ScoredResponse
	ProcessingMeta    ProcessingMetadata
}
