package omr

// padFillResults pads a row's per-choice fill results with BLANK up to
// numChoices, since missing bubbles are represented by absence rather
// than explicit entries (§3 invariants).
func padFillResults(results []FillResult, numChoices int) []FillResult {
	if len(results) >= numChoices {
		return results[:numChoices]
	}
	padded := append([]FillResult(nil), results...)
	for len(padded) < numChoices {
		padded = append(padded, FillResult{State: BubbleBlank, FillRatio: 0})
	}
	return padded
}

// resolveMark turns one row's per-choice fill results into a single
// MarkOutcome, per §4.5. A lone PARTIAL resolves to that choice index
// (scored as if it were a normal answer); only two-or-more PARTIAL
// fills with no FILLED bubble count as the ambiguous case.
func resolveMark(results []FillResult) MarkOutcome {
	var filled, partial []int
	for i, r := range results {
		switch r.State {
		case BubbleFilled:
			filled = append(filled, i)
		case BubblePartial:
			partial = append(partial, i)
		}
	}

	switch {
	case len(filled) == 1:
		return MarkOutcome{Kind: OutcomeChoice, Index: filled[0]}
	case len(filled) >= 2:
		return MarkOutcome{Kind: OutcomeMultiple}
	case len(filled) == 0 && len(partial) == 1:
		return MarkOutcome{Kind: OutcomeChoice, Index: partial[0]}
	case len(partial) >= 2:
		return MarkOutcome{Kind: OutcomeAmbiguousPartial}
	default:
		return MarkOutcome{Kind: OutcomeBlank}
	}
}
