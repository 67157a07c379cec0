package models

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// AttemptResult holds everything that only exists once an attempt is
// closed. An open attempt has no result; a closed one has all of it.
// Keeping these fields together makes the half-scored state
// unrepresentable.
type AttemptResult struct {
	CompletedAt    time.Time     `bson:"completed_at" json:"completed_at"`
	Duration       time.Duration `bson:"duration" json:"duration"`
	Score          float64       `bson:"score" json:"score"`
	CorrectAnswers int           `bson:"correct_answers" json:"correct_answers"`
	TotalQuestions int           `bson:"total_questions" json:"total_questions"`
	CategoryName   string        `bson:"category_name,omitempty" json:"category_name,omitempty"`
}

// QuizAttempt is one user's timed engagement with one quiz.
// Result == nil means the attempt is still open.
type QuizAttempt struct {
	ID        bson.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID    string         `bson:"user_id" json:"user_id"`
	QuizID    string         `bson:"quiz_id" json:"quiz_id"`
	QuizTitle string         `bson:"quiz_title,omitempty" json:"quiz_title,omitempty"`
	StartedAt time.Time      `bson:"started_at" json:"started_at"`
	Result    *AttemptResult `bson:"result,omitempty" json:"result,omitempty"`
}

func (a *QuizAttempt) IsClosed() bool {
	return a.Result != nil
}

// ScoreResult is what Submit returns to the client.
type ScoreResult struct {
	ID             string  `json:"id"`
	Score          float64 `json:"score"`
	CorrectAnswers int     `json:"correct_answers"`
	TotalQuestions int     `json:"total_questions"`
}

// ComputeScore counts submitted choice ids against the quiz's correct
// set and converts the count into a percentage. Duplicate submitted ids
// each count on their own; ids outside the quiz never match. The count
// is capped at totalQuestions so a closed attempt always satisfies
// correct_answers <= total_questions. An empty quiz scores 0, never a
// division by zero.
func ComputeScore(answerIDs []string, correctIDs map[string]struct{}, totalQuestions int) (correct int, score float64) {
	for _, id := range answerIDs {
		if _, ok := correctIDs[id]; ok {
			correct++
		}
	}
	if correct > totalQuestions {
		correct = totalQuestions
	}
	if totalQuestions > 0 {
		score = RoundScore(float64(correct) / float64(totalQuestions) * 100)
	}
	return correct, score
}

// RoundScore rounds a percentage to 2 decimal places.
func RoundScore(score float64) float64 {
	return math.Round(score*100) / 100
}
