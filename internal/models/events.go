package models

import (
	"time"
)

type EventType string

const (
	EventTypeAttemptStarted   EventType = "attempt.started"
	EventTypeAttemptCompleted EventType = "attempt.completed"
)

// AttemptEvent is published on the quiz events exchange whenever an
// attempt changes state.
type AttemptEvent struct {
	EventType EventType `json:"eventType"`
	AttemptID string    `json:"attemptId"`
	UserID    string    `json:"userId"`
	QuizID    string    `json:"quizId"`
	Score     float64   `json:"score,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// UserRegisterEvent arrives from the user directory service; it is the
// trigger for creating the user's profile row.
type UserRegisterEvent struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
