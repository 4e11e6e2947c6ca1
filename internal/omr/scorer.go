package omr

// score grades each resolved MarkOutcome against the answer key and
// aggregates the results into a ScoreReport, per §4.6.
func score(outcomes []MarkOutcome, answerKey []rune) ScoreReport {
	n := len(outcomes)
	responses := make([]ScoredResponse, n)
	reportResponses := make([]*rune, n)

	var correct, wrong, blank, multiple, partial int

	for i, outcome := range outcomes {
		correctLetter := answerKey[i]
		correctIndex := int(correctLetter - 'A')

		resp := ScoredResponse{Question: i + 1, CorrectLetter: correctLetter}

		switch outcome.Kind {
		case OutcomeChoice:
			letter := rune('A' + outcome.Index)
			resp.Marked = &letter
			reportResponses[i] = &letter
			if outcome.Index == correctIndex {
				correct++
				resp.Status = StatusCorrect
				resp.IsCorrect = true
			} else {
				wrong++
				resp.Status = StatusWrong
			}
		case OutcomeMultiple:
			multiple++
			resp.Status = StatusMultiple
		case OutcomeAmbiguousPartial:
			partial++
			resp.Status = StatusPartial
		default: // OutcomeBlank
			blank++
			resp.Status = StatusBlank
		}

		responses[i] = resp
	}

	invalid := multiple + partial
	attempted := n - blank

	var accuracy float64
	if attempted > 0 {
		accuracy = float64(correct) / float64(attempted) * 100
	}

	confidence := confidenceScore(accuracy, multiple, partial, n)

	return ScoreReport{
		Score:             correct,
		TotalQuestions:    n,
		Attempted:         attempted,
		CorrectAnswers:    correct,
		IncorrectAnswers:  wrong,
		BlankAnswers:      blank,
		MultipleMarks:     multiple,
		PartialMarks:      partial,
		InvalidAnswers:    invalid,
		Accuracy:          accuracy,
		Responses:         reportResponses,
		DetailedResponses: responses,
		ProcessingMeta: ProcessingMetadata{
			Confidence:      confidence,
			BubblesDetected: true,
			ImageQuality:    "good",
		},
	}
}

// confidenceScore is the heuristic of §4.6, exposed verbatim for
// compatibility with the source system it was distilled from.
func confidenceScore(accuracy float64, multiple, partial, total int) float64 {
	base := clamp(70+(accuracy-50)*0.3, 50, 95)
	if total == 0 {
		return base
	}
	penalty := float64(multiple+partial) / float64(total) * 20
	return maxFloat(30, base-penalty)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
