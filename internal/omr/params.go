package omr

// Params holds the tunable constants that govern bubble detection,
// grouping, and fill classification. DefaultParams returns the values
// fixed by the sheet format this decoder targets; callers processing a
// differently laid-out sheet can derive a modified copy with the With*
// methods instead of touching pipeline code.
type Params struct {
	NumChoices int
	NumColumns int

	MinBubbleArea float64
	MaxBubbleArea float64

	AspectRatioMin float64
	AspectRatioMax float64

	CircularityThreshold float64

	FillThreshold        float64
	PartialFillThreshold float64

	RowTolerance    float64
	ColumnTolerance float64

	MinContourPoints int

	GaussianBlurSize int
	MorphKernelSize  int
}

// DefaultParams returns the contract constants from the specification.
// Changing them changes observable output, so callers should only
// override them deliberately via the With* helpers below.
func DefaultParams() Params {
	return Params{
		NumChoices: 5,
		NumColumns: 4,

		MinBubbleArea: 80,
		MaxBubbleArea: 1600,

		AspectRatioMin: 0.5,
		AspectRatioMax: 2.0,

		CircularityThreshold: 0.8,

		FillThreshold:        0.60,
		PartialFillThreshold: 0.25,

		RowTolerance:    50,
		ColumnTolerance: 150,

		MinContourPoints: 5,

		GaussianBlurSize: 5,
		MorphKernelSize:  3,
	}
}

// WithChoiceLayout returns a copy of p with the number of choices per
// question and the number of columns on the sheet overridden.
func (p Params) WithChoiceLayout(numChoices, numColumns int) Params {
	p.NumChoices = numChoices
	p.NumColumns = numColumns
	return p
}

// WithFillThresholds returns a copy of p with the fill/partial-fill
// classification cutoffs overridden.
func (p Params) WithFillThresholds(fill, partial float64) Params {
	p.FillThreshold = fill
	p.PartialFillThreshold = partial
	return p
}

// WithTolerances returns a copy of p with the row/column clustering
// tolerances overridden, in pixels.
func (p Params) WithTolerances(row, column float64) Params {
	p.RowTolerance = row
	p.ColumnTolerance = column
	return p
}
