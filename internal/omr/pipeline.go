package omr

import (
	"fmt"

	"omr-decoder/internal/omrlog"

	"gocv.io/x/gocv"
)

// DecodeSheet is the external entry point described in §6: it takes a
// raw scanned image, an answer key, and the number of questions on the
// sheet, and runs the full Decoder → Preprocessor → BubbleDetector →
// Grouper → FillAnalyzer → MarkResolver → Scorer pipeline. Student
// credential fields are an external collaborator's concern (§9) and
// are never synthesized here.
//
// log may be nil, in which case pipeline stages log nothing.
func DecodeSheet(imageBytes []byte, answerKey []rune, numQuestions int, p Params, log omrlog.Logger) (ScoreReport, error) {
	if log == nil {
		log = omrlog.Nop{}
	}

	if len(answerKey) != numQuestions {
		return ScoreReport{}, internalErr(
			fmt.Sprintf("answer key length %d does not match num_questions %d", len(answerKey), numQuestions), nil)
	}

	color, err := decodeImage(imageBytes)
	if err != nil {
		return ScoreReport{}, err
	}
	defer color.Close()

	pre, err := preprocess(color, p, log)
	if err != nil {
		return ScoreReport{}, err
	}
	defer pre.Close()

	candidates := detectBubbles(pre.Mask, pre.Gray, p, log)
	if len(candidates) == 0 {
		return ScoreReport{}, noBubblesErr("no candidate bubble contours survived detection")
	}

	rows := group(candidates, numQuestions, p, log)
	if len(rows) == 0 {
		return ScoreReport{}, noRowsErr("grouper produced zero question rows")
	}

	outcomes := resolveRows(pre.Gray, rows, numQuestions, p)

	report := score(outcomes, answerKey)
	report.ProcessingMeta.ImageQuality = imageQuality(pre.Gray)
	log.Info("pipeline", "decode complete", omrlog.Fields{
		"score": report.Score, "total": report.TotalQuestions, "attempted": report.Attempted,
	})
	return report, nil
}

// resolveRows runs FillAnalyzer over every bubble in every row and
// resolves each row to a MarkOutcome. Rows are already ordered by
// (column, center_y), so rows[i] is question i+1; a short row list
// (which group() should never produce, but defensively) pads with
// BLANK rather than panicking.
func resolveRows(gray gocv.Mat, rows []row, numQuestions int, p Params) []MarkOutcome {
	outcomes := make([]MarkOutcome, numQuestions)
	for i := 0; i < numQuestions; i++ {
		if i >= len(rows) {
			outcomes[i] = MarkOutcome{Kind: OutcomeBlank}
			continue
		}
		outcomes[i] = resolveMark(padFillResults(analyzeRowFills(gray, rows[i], p), p.NumChoices))
	}
	return outcomes
}

// analyzeRowFills runs FillAnalyzer over each bubble in a single row.
func analyzeRowFills(gray gocv.Mat, r row, p Params) []FillResult {
	results := make([]FillResult, len(r.bubbles))
	for i, b := range r.bubbles {
		results[i] = analyzeFill(gray, b.Contour, p)
	}
	return results
}
