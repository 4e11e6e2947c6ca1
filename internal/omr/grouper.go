package omr

import (
	"math"
	"sort"

	"omr-decoder/internal/omrlog"
)

// group arranges detected candidates into question rows ordered by
// (column, center_y), per §4.3. Each detected column contributes its
// Phase 3 row budget, so the result has exactly numQuestions rows when
// all NumColumns columns are found and the last one's share is at least
// one row; with fewer columns found, or too few questions to give the
// last column a row, the count differs from numQuestions. It returns an empty slice
// (not an error) when there is nothing to group; the caller decides
// whether that is fatal.
func group(candidates []Candidate, numQuestions int, p Params, log omrlog.Logger) []row {
	if len(candidates) == 0 {
		return nil
	}

	questionsPerColumn := ceilDiv(numQuestions, p.NumColumns)

	columns := clusterColumns(candidates, p)
	log.Info("grouper", "column clustering complete", omrlog.Fields{
		"columns_found": len(columns),
	})

	var allRows []row
	for colIdx, col := range columns {
		target := questionsPerColumn
		if colIdx == p.NumColumns-1 {
			target = maxInt(1, numQuestions-colIdx*questionsPerColumn)
		}

		rows := clusterRows(col, colIdx, questionsPerColumn, p)
		rows = applyRowBudget(rows, colIdx, target, log)

		for i := range rows {
			rows[i].bubbles = normalizeRowBubbles(rows[i].bubbles, p, log, colIdx, i)
		}

		allRows = append(allRows, rows...)
	}

	sort.SliceStable(allRows, func(i, j int) bool {
		if allRows[i].columnIndex != allRows[j].columnIndex {
			return allRows[i].columnIndex < allRows[j].columnIndex
		}
		return allRows[i].centerY < allRows[j].centerY
	})

	log.Info("grouper", "grouping complete", omrlog.Fields{"rows": len(allRows)})
	return allRows
}

// clusterColumns is Phase 1: sort by x, greedily assign each candidate
// to the nearest column center within ColumnTolerance, keep the
// NUM_COLUMNS columns with the most bubbles, re-sort by center_x.
func clusterColumns(candidates []Candidate, p Params) []column {
	sorted := append([]Candidate(nil), candidates...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CenterX() < sorted[j].CenterX()
	})

	var columns []column
	for _, cand := range sorted {
		cx := cand.CenterX()

		best := -1
		minDist := math.Inf(1)
		for i, col := range columns {
			dist := math.Abs(cx - col.centerX)
			if dist < p.ColumnTolerance && dist < minDist {
				minDist = dist
				best = i
			}
		}

		if best >= 0 {
			columns[best].bubbles = append(columns[best].bubbles, cand)
			columns[best].centerX = meanCenterX(columns[best].bubbles)
		} else {
			columns = append(columns, column{centerX: cx, bubbles: []Candidate{cand}})
		}
	}

	sort.SliceStable(columns, func(i, j int) bool {
		return len(columns[i].bubbles) > len(columns[j].bubbles)
	})
	if len(columns) > p.NumColumns {
		columns = columns[:p.NumColumns]
	}
	sort.SliceStable(columns, func(i, j int) bool {
		return columns[i].centerX < columns[j].centerX
	})

	return columns
}

// clusterRows is Phase 2: within one column, sort by y and greedily
// assign to the nearest row center within an adaptive tolerance that
// grows as more rows accumulate.
func clusterRows(col column, colIdx, questionsPerColumn int, p Params) []row {
	sorted := append([]Candidate(nil), col.bubbles...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CenterY() < sorted[j].CenterY()
	})

	var rows []row
	for _, cand := range sorted {
		cy := cand.CenterY()

		tolerance := p.RowTolerance * (1 + 0.1*float64(len(rows))/float64(questionsPerColumn))

		best := -1
		minDist := math.Inf(1)
		for i, r := range rows {
			dist := math.Abs(cy - r.centerY)
			if dist < tolerance && dist < minDist {
				minDist = dist
				best = i
			}
		}

		if best >= 0 {
			rows[best].bubbles = append(rows[best].bubbles, cand)
			rows[best].centerY = meanCenterY(rows[best].bubbles)
		} else {
			rows = append(rows, row{centerY: cy, bubbles: []Candidate{cand}, columnIndex: colIdx})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].centerY < rows[j].centerY })
	return rows
}

// applyRowBudget is Phase 3: trim a column's rows down to target by
// bubble count if it has too many, or pad with placeholder rows if it
// has too few.
func applyRowBudget(rows []row, colIdx, target int, log omrlog.Logger) []row {
	if len(rows) > target {
		sort.SliceStable(rows, func(i, j int) bool {
			return len(rows[i].bubbles) > len(rows[j].bubbles)
		})
		rows = rows[:target]
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].centerY < rows[j].centerY })
		return rows
	}

	for len(rows) < target {
		var estimatedY float64
		if len(rows) > 0 {
			gap := 100.0
			if len(rows) > 1 {
				gap = (rows[len(rows)-1].centerY - rows[0].centerY) / float64(len(rows)-1)
			}
			estimatedY = rows[len(rows)-1].centerY + gap
		} else {
			estimatedY = 100
		}

		log.Warn("grouper", "inserting placeholder row for missing bubbles", omrlog.Fields{
			"column": colIdx,
			"row":    len(rows),
		})
		rows = append(rows, row{centerY: estimatedY, columnIndex: colIdx})
	}
	return rows
}

// normalizeRowBubbles is Phase 4: sort a row's bubbles left-to-right
// and, if there are more than NumChoices, filter overlapping overflow.
func normalizeRowBubbles(bubbles []Candidate, p Params, log omrlog.Logger, colIdx, rowIdx int) []Candidate {
	sorted := append([]Candidate(nil), bubbles...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CenterX() < sorted[j].CenterX() })

	if len(sorted) != p.NumChoices {
		log.Warn("grouper", "row bubble count does not match expected choices", omrlog.Fields{
			"column": colIdx, "row": rowIdx, "found": len(sorted), "expected": p.NumChoices,
		})
	}

	if len(sorted) > p.NumChoices {
		sorted = filterOverlappingBubbles(sorted, p)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CenterX() < sorted[j].CenterX() })
		log.Warn("grouper", "trimmed overflow row via overlap filtering", omrlog.Fields{
			"column": colIdx, "row": rowIdx, "kept": len(sorted),
		})
	}

	return sorted
}

// filterOverlappingBubbles scores bubbles by circularity weighted
// against how far their aspect ratio is from 1, then greedily keeps
// the highest scoring non-overlapping bubbles up to NumChoices.
func filterOverlappingBubbles(bubbles []Candidate, p Params) []Candidate {
	type scored struct {
		c     Candidate
		score float64
	}

	scoredBubbles := make([]scored, len(bubbles))
	for i, b := range bubbles {
		ar := b.Contour.AspectRatio()
		scoredBubbles[i] = scored{
			c:     b,
			score: b.Contour.Circularity() * (1.0 / (math.Abs(ar-1.0) + 0.1)),
		}
	}

	sort.SliceStable(scoredBubbles, func(i, j int) bool { return scoredBubbles[i].score > scoredBubbles[j].score })

	var kept []Candidate
	for _, sb := range scoredBubbles {
		if len(kept) >= p.NumChoices {
			break
		}

		overlaps := false
		for _, k := range kept {
			if overlapFraction(sb.c.Box, k.Box) > 0.3 {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, sb.c)
		}
	}

	return kept
}

func meanCenterX(cands []Candidate) float64 {
	var sum float64
	for _, c := range cands {
		sum += c.CenterX()
	}
	return sum / float64(len(cands))
}

func meanCenterY(cands []Candidate) float64 {
	var sum float64
	for _, c := range cands {
		sum += c.CenterY()
	}
	return sum / float64(len(cands))
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
