package models

import (
	"math"
	"testing"
)

func TestComputeScore(t *testing.T) {
	correctSet := func(ids ...string) map[string]struct{} {
		set := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			set[id] = struct{}{}
		}
		return set
	}

	testCases := []struct {
		name            string
		answers         []string
		correctIDs      map[string]struct{}
		totalQuestions  int
		expectedCorrect int
		expectedScore   float64
	}{
		{"all correct", []string{"a", "b", "c"}, correctSet("a", "b", "c"), 3, 3, 100.0},
		{"none correct", []string{"x", "y", "z"}, correctSet("a", "b", "c"), 3, 0, 0.0},
		{"partial", []string{"a", "x", "c"}, correctSet("a", "b", "c"), 3, 2, 66.67},
		{"one of three", []string{"a"}, correctSet("a", "b", "c"), 3, 1, 33.33},
		{"empty answers", []string{}, correctSet("a", "b"), 2, 0, 0.0},
		{"nil answers", nil, correctSet("a"), 1, 0, 0.0},
		{"empty quiz scores zero", []string{"a"}, correctSet(), 0, 0, 0.0},
		{"unknown ids never match", []string{"ghost", "phantom"}, correctSet("a"), 1, 0, 0.0},
		{"duplicate correct id counts each time", []string{"a", "a", "a"}, correctSet("a", "b", "c"), 3, 3, 100.0},
		{"duplicates capped at question count", []string{"a", "a"}, correctSet("a"), 1, 1, 100.0},
		{"one of six rounds down", []string{"a"}, correctSet("a", "b", "c", "d", "e", "f"), 6, 1, 16.67},
		{"one of seven", []string{"a"}, correctSet("a", "b", "c", "d", "e", "f", "g"), 7, 1, 14.29},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			correct, score := ComputeScore(tc.answers, tc.correctIDs, tc.totalQuestions)
			if correct != tc.expectedCorrect {
				t.Errorf("Expected %d correct, got %d", tc.expectedCorrect, correct)
			}
			if math.Abs(score-tc.expectedScore) > 0.001 {
				t.Errorf("Expected score %.2f, got %.2f", tc.expectedScore, score)
			}
			if correct > tc.totalQuestions {
				t.Errorf("Correct count %d exceeds question count %d", correct, tc.totalQuestions)
			}
		})
	}
}

func TestRoundScore(t *testing.T) {
	testCases := []struct {
		in       float64
		expected float64
	}{
		{66.666666, 66.67},
		{33.333333, 33.33},
		{100.0, 100.0},
		{0.0, 0.0},
		{14.285714, 14.29},
		{87.5, 87.5},
	}

	for _, tc := range testCases {
		if got := RoundScore(tc.in); got != tc.expected {
			t.Errorf("RoundScore(%f) = %f, expected %f", tc.in, got, tc.expected)
		}
	}
}

func TestCorrectChoiceIDs(t *testing.T) {
	quiz := &Quiz{
		Questions: []Question{
			{ID: "q1", Choices: []Choice{
				{ID: "c1", IsCorrect: true},
				{ID: "c2"},
			}},
			{ID: "q2", Choices: []Choice{
				{ID: "c3"},
				{ID: "c4", IsCorrect: true},
			}},
		},
	}

	ids := quiz.CorrectChoiceIDs()
	if len(ids) != 2 {
		t.Fatalf("Expected 2 correct choice ids, got %d", len(ids))
	}
	for _, want := range []string{"c1", "c4"} {
		if _, ok := ids[want]; !ok {
			t.Errorf("Expected %s in correct set", want)
		}
	}
	if _, ok := ids["c2"]; ok {
		t.Error("Incorrect choice c2 must not be in the correct set")
	}
}

func TestAttemptIsClosed(t *testing.T) {
	open := &QuizAttempt{}
	if open.IsClosed() {
		t.Error("Attempt without result must be open")
	}

	closed := &QuizAttempt{Result: &AttemptResult{Score: 50}}
	if !closed.IsClosed() {
		t.Error("Attempt with result must be closed")
	}
}
