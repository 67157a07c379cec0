package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"quizhub-service/internal/event"
	"quizhub-service/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// AttemptStore is the durable attempt table. Close must be a guarded
// write: of two concurrent calls on the same open attempt exactly one
// reports true.
type AttemptStore interface {
	Create(ctx context.Context, attempt *models.QuizAttempt) error
	FindByIDForUser(ctx context.Context, id, userID string) (*models.QuizAttempt, error)
	Close(ctx context.Context, id bson.ObjectID, userID string, result *models.AttemptResult) (bool, error)
	FindByUser(ctx context.Context, userID string) ([]models.QuizAttempt, error)
}

// CatalogReader supplies quiz definitions with correctness flags intact.
type CatalogReader interface {
	GetQuiz(ctx context.Context, id string) (*models.Quiz, error)
}

// StatsRecomputer rebuilds a user's profile statistics from their
// attempt history.
type StatsRecomputer interface {
	RecomputeForUser(ctx context.Context, userID string) error
}

type AttemptService struct {
	attempts  AttemptStore
	catalog   CatalogReader
	stats     StatsRecomputer
	publisher event.Publisher
	grace     time.Duration
	now       func() time.Time
}

func NewAttemptService(attempts AttemptStore, catalog CatalogReader, stats StatsRecomputer, publisher event.Publisher, grace time.Duration) *AttemptService {
	return &AttemptService{
		attempts:  attempts,
		catalog:   catalog,
		stats:     stats,
		publisher: publisher,
		grace:     grace,
		now:       time.Now,
	}
}

// StartResult is what Start hands back for the client-side countdown.
type StartResult struct {
	AttemptID        string `json:"attempt_id"`
	QuizID           string `json:"quiz_id"`
	QuizTitle        string `json:"quiz_title"`
	TimeLimitMinutes int    `json:"time_limit"`
}

// Start opens a new attempt against an active quiz. A user may hold any
// number of concurrently open attempts, including on the same quiz.
func (s *AttemptService) Start(ctx context.Context, userID, quizID string) (*StartResult, error) {
	quiz, err := s.catalog.GetQuiz(ctx, quizID)
	if err == mongo.ErrNoDocuments {
		return nil, ErrQuizNotFound
	}
	if err != nil {
		return nil, err
	}
	if !quiz.IsActive() {
		return nil, ErrQuizNotFound
	}

	attempt := &models.QuizAttempt{
		UserID:    userID,
		QuizID:    quiz.ID.Hex(),
		QuizTitle: quiz.Title,
		StartedAt: s.now(),
	}
	if err := s.attempts.Create(ctx, attempt); err != nil {
		return nil, err
	}

	s.publishEvent(&models.AttemptEvent{
		EventType: models.EventTypeAttemptStarted,
		AttemptID: attempt.ID.Hex(),
		UserID:    userID,
		QuizID:    attempt.QuizID,
		Timestamp: attempt.StartedAt,
	})

	return &StartResult{
		AttemptID:        attempt.ID.Hex(),
		QuizID:           attempt.QuizID,
		QuizTitle:        quiz.Title,
		TimeLimitMinutes: quiz.TimeLimitMinutes,
	}, nil
}

// Submit validates and finalizes a submission. The checks run in a fixed
// order, each with its own failure mode: ownership, open state, payload
// shape, then the time window. A time-barred attempt stays open and
// untouched; it can never be resubmitted successfully since its window
// only recedes further.
func (s *AttemptService) Submit(ctx context.Context, userID, attemptID string, rawAnswers json.RawMessage) (*models.ScoreResult, error) {
	attempt, err := s.attempts.FindByIDForUser(ctx, attemptID, userID)
	if err == mongo.ErrNoDocuments {
		return nil, ErrAttemptNotFound
	}
	if err != nil {
		return nil, err
	}

	if attempt.IsClosed() {
		return nil, ErrAlreadySubmitted
	}

	answerIDs, err := decodeAnswerIDs(rawAnswers)
	if err != nil {
		return nil, ErrInvalidAnswers
	}

	quiz, err := s.catalog.GetQuiz(ctx, attempt.QuizID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	elapsed := now.Sub(attempt.StartedAt)
	limit := quiz.TimeLimit()
	if elapsed > limit+s.grace {
		return nil, &TimeLimitError{Elapsed: elapsed, Limit: limit}
	}

	// total_questions and the correct-choice set are read at submit
	// time; catalog edits mid-attempt show up in the score.
	total := quiz.QuestionCount()
	correct, score := models.ComputeScore(answerIDs, quiz.CorrectChoiceIDs(), total)

	result := &models.AttemptResult{
		CompletedAt:    now,
		Duration:       elapsed,
		Score:          score,
		CorrectAnswers: correct,
		TotalQuestions: total,
		CategoryName:   quiz.CategoryName,
	}

	closed, err := s.attempts.Close(ctx, attempt.ID, userID, result)
	if err != nil {
		return nil, err
	}
	if !closed {
		// A concurrent submission won the guarded write.
		return nil, ErrAlreadySubmitted
	}

	// The attempt is durably closed; statistics are a derived
	// projection and the consumer path re-converges them if this
	// fails, so the submission does not.
	if err := s.stats.RecomputeForUser(ctx, userID); err != nil {
		log.Printf("Failed to recompute stats for user %s: %v", userID, err)
	}

	s.publishEvent(&models.AttemptEvent{
		EventType: models.EventTypeAttemptCompleted,
		AttemptID: attempt.ID.Hex(),
		UserID:    userID,
		QuizID:    attempt.QuizID,
		Score:     score,
		Timestamp: now,
	})

	return &models.ScoreResult{
		ID:             attempt.ID.Hex(),
		Score:          score,
		CorrectAnswers: correct,
		TotalQuestions: total,
	}, nil
}

// History returns the caller's attempts, newest first.
func (s *AttemptService) History(ctx context.Context, userID string) ([]models.QuizAttempt, error) {
	return s.attempts.FindByUser(ctx, userID)
}

func (s *AttemptService) publishEvent(e *models.AttemptEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishAttemptEvent(e); err != nil {
		log.Printf("Failed to publish %s event for attempt %s: %v", e.EventType, e.AttemptID, err)
	}
}

// decodeAnswerIDs accepts the raw answers payload, which must be a JSON
// array of choice ids. A missing or null field counts as the empty list.
func decodeAnswerIDs(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return []string{}, nil
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}
