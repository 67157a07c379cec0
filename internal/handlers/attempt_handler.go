package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"quizhub-service/internal/middleware"
	"quizhub-service/internal/service"

	"github.com/gin-gonic/gin"
)

type AttemptHandler struct {
	service *service.AttemptService
}

func NewAttemptHandler(attemptService *service.AttemptService) *AttemptHandler {
	return &AttemptHandler{service: attemptService}
}

// SubmitRequest carries the answers payload raw so the service decides
// whether it is a valid list.
type SubmitRequest struct {
	AttemptID string          `json:"attempt_id" binding:"required"`
	Answers   json.RawMessage `json:"answers"`
}

// StartAttempt opens a new attempt on an active quiz.
// POST /protected/quiz/list/:id/start
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	userID := middleware.UserID(c)
	quizID := c.Param("id")

	result, err := h.service.Start(c.Request.Context(), userID, quizID)
	if err != nil {
		if errors.Is(err, service.ErrQuizNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Quiz not found."})
			return
		}
		log.Printf("Failed to start attempt on quiz %s: %v", quizID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start quiz attempt"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Quiz attempt started",
		"attempt_id": result.AttemptID,
		"quiz_id":    result.QuizID,
		"quiz_title": result.QuizTitle,
		"time_limit": result.TimeLimitMinutes,
	})
}

// SubmitAttempt finalizes an open attempt with the caller's answers.
// POST /protected/quiz/submit
func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	userID := middleware.UserID(c)

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "attempt_id is required"})
		return
	}

	result, err := h.service.Submit(c.Request.Context(), userID, req.AttemptID, req.Answers)
	if err != nil {
		var tle *service.TimeLimitError
		switch {
		case errors.Is(err, service.ErrAttemptNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Attempt not found."})
		case errors.Is(err, service.ErrAlreadySubmitted):
			c.JSON(http.StatusBadRequest, gin.H{"error": "This attempt has already been submitted."})
		case errors.Is(err, service.ErrInvalidAnswers):
			c.JSON(http.StatusBadRequest, gin.H{"error": "answers must be a list"})
		case errors.As(err, &tle):
			c.JSON(http.StatusForbidden, gin.H{
				"error":           "Time limit exceeded.",
				"elapsed_seconds": tle.Elapsed.Seconds(),
				"limit_seconds":   tle.Limit.Seconds(),
			})
		default:
			log.Printf("Failed to submit attempt %s: %v", req.AttemptID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit quiz attempt"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":              result.ID,
		"score":           result.Score,
		"correct_answers": result.CorrectAnswers,
		"total_questions": result.TotalQuestions,
		"message":         "Quiz submitted successfully",
	})
}

// History lists the caller's attempts, newest first.
// GET /protected/quiz/history
func (h *AttemptHandler) History(c *gin.Context) {
	userID := middleware.UserID(c)

	attempts, err := h.service.History(c.Request.Context(), userID)
	if err != nil {
		log.Printf("Failed to load history for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load attempt history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"attempts": attempts,
		"count":    len(attempts),
	})
}
