package handlers

import (
	"errors"
	"log"
	"net/http"

	"quizhub-service/internal/models"
	"quizhub-service/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type QuizHandler struct {
	service *service.QuizService
}

func NewQuizHandler(quizService *service.QuizService) *QuizHandler {
	return &QuizHandler{service: quizService}
}

// ListQuizzes returns active quiz summaries, optionally filtered by
// category slug and a title search.
// GET /public/quiz/list
func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	categorySlug := c.Query("category")
	search := c.Query("search")

	quizzes, err := h.service.ListActive(c.Request.Context(), categorySlug, search)
	if err != nil {
		log.Printf("Failed to list quizzes: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load quizzes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"quizzes": quizzes,
		"count":   len(quizzes),
	})
}

// GetQuiz returns one active quiz with its questions. Choice
// correctness never leaves the service; the json view drops it.
// GET /public/quiz/list/:id
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	quiz, err := h.service.GetActiveQuiz(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrQuizNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Quiz not found."})
			return
		}
		log.Printf("Failed to load quiz %s: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load quiz"})
		return
	}

	c.JSON(http.StatusOK, quiz)
}

// CreateQuizRequest is the admin-facing quiz definition, correctness
// flags included.
type CreateQuizRequest struct {
	Title            string            `json:"title" binding:"required"`
	Description      string            `json:"description"`
	CategorySlug     string            `json:"category_slug"`
	Difficulty       models.Difficulty `json:"difficulty"`
	TimeLimitMinutes int               `json:"time_limit_minutes"`
	Questions        []questionInput   `json:"questions"`
}

type questionInput struct {
	Text    string        `json:"text" binding:"required"`
	Choices []choiceInput `json:"choices"`
}

type choiceInput struct {
	Text      string `json:"text" binding:"required"`
	IsCorrect bool   `json:"is_correct"`
}

// CreateQuiz stores a new quiz definition.
// POST /protected/quiz/list
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	var req CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quiz := &models.Quiz{
		Title:            req.Title,
		Description:      req.Description,
		Difficulty:       req.Difficulty,
		TimeLimitMinutes: req.TimeLimitMinutes,
		Questions:        toQuestions(req.Questions),
	}

	if err := service.ValidateQuiz(quiz); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.CreateQuiz(c.Request.Context(), quiz, req.CategorySlug); err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Category not found."})
			return
		}
		log.Printf("Failed to create quiz: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create quiz"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Quiz created",
		"id":      quiz.ID.Hex(),
	})
}

// UpdateQuizRequest updates the mutable quiz fields; nil fields are
// left untouched.
type UpdateQuizRequest struct {
	Title            *string            `json:"title"`
	Description      *string            `json:"description"`
	Difficulty       *models.Difficulty `json:"difficulty"`
	TimeLimitMinutes *int               `json:"time_limit_minutes"`
	Status           *string            `json:"status"`
	Questions        []questionInput    `json:"questions"`
}

// UpdateQuiz edits a quiz definition in place.
// PUT /protected/quiz/list/:id
func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	var req UpdateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update := bson.M{}
	if req.Title != nil {
		update["title"] = *req.Title
	}
	if req.Description != nil {
		update["description"] = *req.Description
	}
	if req.Difficulty != nil {
		update["difficulty"] = *req.Difficulty
	}
	if req.TimeLimitMinutes != nil {
		update["time_limit_minutes"] = *req.TimeLimitMinutes
	}
	if req.Status != nil {
		update["status"] = *req.Status
	}

	var questions []models.Question
	if req.Questions != nil {
		questions = toQuestions(req.Questions)
	}

	if err := h.service.UpdateQuiz(c.Request.Context(), c.Param("id"), update, questions); err != nil {
		if errors.Is(err, service.ErrQuizNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Quiz not found."})
			return
		}
		log.Printf("Failed to update quiz %s: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update quiz"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Quiz updated"})
}

// DeleteQuiz soft-deletes a quiz; attempts already open against it keep
// working.
// DELETE /protected/quiz/list/:id
func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	if err := h.service.DeleteQuiz(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, service.ErrQuizNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Quiz not found."})
			return
		}
		log.Printf("Failed to delete quiz %s: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete quiz"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Quiz deleted"})
}

func toQuestions(inputs []questionInput) []models.Question {
	questions := make([]models.Question, 0, len(inputs))
	for _, q := range inputs {
		choices := make([]models.Choice, 0, len(q.Choices))
		for _, ch := range q.Choices {
			choices = append(choices, models.Choice{Text: ch.Text, IsCorrect: ch.IsCorrect})
		}
		questions = append(questions, models.Question{Text: q.Text, Choices: choices})
	}
	return questions
}
