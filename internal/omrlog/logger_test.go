package omrlog

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestAdapterWritesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, zerolog.InfoLevel)

	log.Info("bubbles", "bubble detection complete", Fields{"candidates": 42})

	var decoded map[string]interface{}
	assert.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "bubbles", decoded["stage"])
	assert.Equal(t, "bubble detection complete", decoded["message"])
	assert.Equal(t, float64(42), decoded["candidates"])
}

func TestAdapterRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, zerolog.WarnLevel)

	log.Info("grouper", "should be suppressed", nil)
	assert.Empty(t, buf.Bytes())

	log.Warn("grouper", "should appear", nil)
	assert.NotEmpty(t, buf.Bytes())
}

func TestNopDiscardsEverything(t *testing.T) {
	var log Logger = Nop{}
	assert.NotPanics(t, func() {
		log.Info("x", "y", Fields{"a": 1})
		log.Warn("x", "y", nil)
		log.Debug("x", "y", nil)
	})
}
