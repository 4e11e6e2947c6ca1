// Command omrdecode runs the OMR decoding core against a scanned
// answer sheet and prints the resulting score report as JSON. It is a
// stand-in for the HTTP/persistence collaborators that own the image
// upload and answer-key lookup in a real deployment (§1 of the spec
// this core implements) -- not part of the core itself.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"omr-decoder/internal/omr"
	"omr-decoder/internal/omrlog"
	"omr-decoder/internal/version"

	"github.com/rs/zerolog"
)

func main() {
	imagePath := flag.String("image", "", "Path to the scanned answer sheet (PNG, JPEG, BMP, or TIFF)")
	answerKey := flag.String("key", "", "Answer key, one letter A-E per question, e.g. ABCDE...")
	numQuestions := flag.Int("questions", 0, "Number of questions on the sheet")
	verbose := flag.Bool("v", false, "Log pipeline progress to stderr")
	showVersion := flag.Bool("version", false, "Print the build version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("omrdecode %s (commit %s, built %s)\n", version.Version, version.GitCommit, version.BuildTime)
		return
	}

	if *imagePath == "" || *answerKey == "" || *numQuestions <= 0 {
		fmt.Fprintln(os.Stderr, "Usage: omrdecode -image <path> -key <letters> -questions <n> [-v]")
		os.Exit(1)
	}

	data, err := os.ReadFile(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read image: %v\n", err)
		os.Exit(1)
	}

	key := []rune(strings.ToUpper(*answerKey))
	if len(key) != *numQuestions {
		fmt.Fprintf(os.Stderr, "answer key length (%d) does not match -questions (%d)\n", len(key), *numQuestions)
		os.Exit(1)
	}

	var log omrlog.Logger = omrlog.Nop{}
	if *verbose {
		log = omrlog.NewConsole(zerolog.InfoLevel)
	}

	report, err := omr.DecodeSheet(data, key, *numQuestions, omr.DefaultParams(), log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "decode failed: %v\n", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(externalReport(report)); err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode report: %v\n", err)
		os.Exit(1)
	}
}

// externalReport reshapes an omr.ScoreReport into the JSON schema §6
// promises external callers, converting rune letters to strings and
// status enums to their wire names.
func externalReport(r omr.ScoreReport) map[string]interface{} {
	responses := make([]interface{}, len(r.Responses))
	for i, letter := range r.Responses {
		if letter == nil {
			responses[i] = nil
		} else {
			responses[i] = string(*letter)
		}
	}

	detailed := make([]map[string]interface{}, len(r.DetailedResponses))
	for i, d := range r.DetailedResponses {
		var marked interface{}
		if d.Marked != nil {
			marked = string(*d.Marked)
		}
		detailed[i] = map[string]interface{}{
			"question":   d.Question,
			"marked":     marked,
			"correct":    string(d.CorrectLetter),
			"is_correct": d.IsCorrect,
			"status":     string(d.Status),
		}
	}

	return map[string]interface{}{
		"score":              r.Score,
		"total_questions":    r.TotalQuestions,
		"attempted":          r.Attempted,
		"correct_answers":    r.CorrectAnswers,
		"incorrect_answers":  r.IncorrectAnswers,
		"blank_answers":      r.BlankAnswers,
		"multiple_marks":     r.MultipleMarks,
		"partial_marks":      r.PartialMarks,
		"invalid_answers":    r.InvalidAnswers,
		"accuracy":           r.Accuracy,
		"responses":          responses,
		"detailed_responses": detailed,
		"processing_metadata": map[string]interface{}{
			"confidence":       r.ProcessingMeta.Confidence,
			"bubbles_detected": r.ProcessingMeta.BubblesDetected,
			"image_quality":    r.ProcessingMeta.ImageQuality,
		},
	}
}
