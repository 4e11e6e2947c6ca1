package omr

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// sheetLayout describes where sheetBuilder places bubbles, matching the
// NUM_COLUMNS x questions-per-column lattice the Grouper expects.
type sheetLayout struct {
	width, height int
	colX          [4]int
	rowY0, rowDY  int
	choiceDX      int
	radius        int
}

func defaultLayout() sheetLayout {
	return sheetLayout{
		width: 1200, height: 1800,
		colX:     [4]int{200, 450, 700, 950},
		rowY0:    750,
		rowDY:    80,
		choiceDX: 35,
		radius:   13,
	}
}

// mark describes one filled or partially-filled choice to render.
type mark struct {
	question int // 1-based
	choice   int // 0-based index into A..E
	gray     uint8
}

// buildSheet renders a synthetic answer sheet for numQuestions (laid
// out NUM_COLUMNS-wide per §4.3) with every bubble outline drawn, plus
// the given marks filled at the given gray level (0 = solid black).
// It returns an encoded PNG so callers can exercise the full Decoder.
func buildSheet(t testingT, numQuestions int, marks []mark) []byte {
	t.Helper()

	layout := defaultLayout()
	p := DefaultParams()
	questionsPerColumn := ceilDiv(numQuestions, p.NumColumns)

	mat := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0), layout.height, layout.width, gocv.MatTypeCV8UC3)
	defer mat.Close()

	markByQC := make(map[[2]int]mark)
	for _, m := range marks {
		markByQC[[2]int{m.question, m.choice}] = m
	}

	for q := 1; q <= numQuestions; q++ {
		col := (q - 1) / questionsPerColumn
		rowInCol := (q - 1) % questionsPerColumn
		cy := layout.rowY0 + rowInCol*layout.rowDY

		for choice := 0; choice < p.NumChoices; choice++ {
			cx := layout.colX[col] + (choice-2)*layout.choiceDX

			black := color.RGBA{R: 0, G: 0, B: 0, A: 255}
			gocv.Circle(&mat, image.Pt(cx, cy), layout.radius, black, 2)

			if m, ok := markByQC[[2]int{q, choice}]; ok {
				shade := color.RGBA{R: m.gray, G: m.gray, B: m.gray, A: 255}
				gocv.Circle(&mat, image.Pt(cx, cy), layout.radius-2, shade, -1)
			}
		}
	}

	buf, err := gocv.IMEncode(gocv.PNGFileExt, mat)
	if err != nil {
		t.Fatalf("failed to encode synthetic sheet: %v", err)
	}
	defer buf.Close()

	return append([]byte(nil), buf.GetBytes()...)
}

// testingT is the subset of *testing.T used above, so this file only
// needs the "testing" import in _test.go files that call it.
type testingT interface {
	Helper()
	Fatalf(format string, args ...interface{})
}
