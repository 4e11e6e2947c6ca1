package omr

import (
	"testing"

	"omr-decoder/internal/omrlog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSheetAllCorrect(t *testing.T) {
	const n = 8
	key := make([]rune, n)
	marks := make([]mark, n)
	for i := 0; i < n; i++ {
		choice := i % 5
		key[i] = rune('A' + choice)
		marks[i] = mark{question: i + 1, choice: choice, gray: 10}
	}

	png := buildSheet(t, n, marks)
	report, err := DecodeSheet(png, key, n, DefaultParams(), omrlog.Nop{})
	require.NoError(t, err)

	assert.Equal(t, n, report.TotalQuestions)
	assert.Equal(t, n, report.Attempted)
	assert.Equal(t, n, report.CorrectAnswers)
	assert.Equal(t, float64(100), report.Accuracy)
}

func TestDecodeSheetAllBlank(t *testing.T) {
	const n = 6
	key := make([]rune, n)
	for i := range key {
		key[i] = rune('A' + i%5)
	}

	png := buildSheet(t, n, nil)
	report, err := DecodeSheet(png, key, n, DefaultParams(), omrlog.Nop{})
	require.NoError(t, err)

	assert.Equal(t, 0, report.Attempted)
	assert.Equal(t, n, report.BlankAnswers)
}

func TestDecodeSheetAllMultiple(t *testing.T) {
	const n = 6
	key := make([]rune, n)
	var marks []mark
	for i := 0; i < n; i++ {
		key[i] = rune('A' + i%5)
		marks = append(marks, mark{question: i + 1, choice: 0, gray: 10}, mark{question: i + 1, choice: 3, gray: 10})
	}

	png := buildSheet(t, n, marks)
	report, err := DecodeSheet(png, key, n, DefaultParams(), omrlog.Nop{})
	require.NoError(t, err)

	assert.Equal(t, n, report.Attempted)
	assert.Equal(t, n, report.MultipleMarks)
}

func TestDecodeSheetRejectsMismatchedKeyLength(t *testing.T) {
	png := buildSheet(t, 4, nil)
	_, err := DecodeSheet(png, []rune{'A', 'B'}, 4, DefaultParams(), omrlog.Nop{})
	require.Error(t, err)

	var omrErr *Error
	require.ErrorAs(t, err, &omrErr)
	assert.Equal(t, ErrInternal, omrErr.Kind)
}

func TestDecodeSheetRejectsGarbageBytes(t *testing.T) {
	_, err := DecodeSheet([]byte("not an image"), []rune{'A'}, 1, DefaultParams(), omrlog.Nop{})
	require.Error(t, err)

	var omrErr *Error
	require.ErrorAs(t, err, &omrErr)
	assert.Equal(t, ErrInvalidImage, omrErr.Kind)
}

func TestDecodeSheetNilLoggerDefaultsToNop(t *testing.T) {
	const n = 4
	key := make([]rune, n)
	for i := range key {
		key[i] = rune('A' + i%5)
	}

	png := buildSheet(t, n, nil)
	assert.NotPanics(t, func() {
		_, err := DecodeSheet(png, key, n, DefaultParams(), nil)
		assert.NoError(t, err)
	})
}
