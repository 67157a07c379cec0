package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quizhub-service/internal/event"
	"quizhub-service/internal/middleware"
	"quizhub-service/internal/models"
	"quizhub-service/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type memAttemptStore struct {
	attempts map[string]*models.QuizAttempt
}

func (m *memAttemptStore) Create(ctx context.Context, attempt *models.QuizAttempt) error {
	if attempt.ID.IsZero() {
		attempt.ID = bson.NewObjectID()
	}
	copied := *attempt
	m.attempts[attempt.ID.Hex()] = &copied
	return nil
}

func (m *memAttemptStore) FindByIDForUser(ctx context.Context, id, userID string) (*models.QuizAttempt, error) {
	attempt, ok := m.attempts[id]
	if !ok || attempt.UserID != userID {
		return nil, mongo.ErrNoDocuments
	}
	copied := *attempt
	return &copied, nil
}

func (m *memAttemptStore) Close(ctx context.Context, id bson.ObjectID, userID string, result *models.AttemptResult) (bool, error) {
	attempt, ok := m.attempts[id.Hex()]
	if !ok || attempt.UserID != userID || attempt.Result != nil {
		return false, nil
	}
	attempt.Result = result
	return true, nil
}

func (m *memAttemptStore) FindByUser(ctx context.Context, userID string) ([]models.QuizAttempt, error) {
	var out []models.QuizAttempt
	for _, attempt := range m.attempts {
		if attempt.UserID == userID {
			out = append(out, *attempt)
		}
	}
	return out, nil
}

type memCatalog struct {
	quizzes map[string]*models.Quiz
}

func (m *memCatalog) GetQuiz(ctx context.Context, id string) (*models.Quiz, error) {
	quiz, ok := m.quizzes[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return quiz, nil
}

type noopRecomputer struct{}

func (noopRecomputer) RecomputeForUser(ctx context.Context, userID string) error { return nil }

type attemptRouter struct {
	router *gin.Engine
	quizID string
	store  *memAttemptStore
}

func newAttemptRouter(t *testing.T) *attemptRouter {
	t.Helper()
	gin.SetMode(gin.TestMode)

	quizID := bson.NewObjectID()
	quiz := &models.Quiz{
		ID:               quizID,
		Title:            "Rivers of Asia",
		Status:           models.QuizStatusActive,
		TimeLimitMinutes: 10,
		Questions: []models.Question{
			{ID: "q1", Choices: []models.Choice{
				{ID: "c1", IsCorrect: true},
				{ID: "c2"},
			}},
		},
	}

	store := &memAttemptStore{attempts: make(map[string]*models.QuizAttempt)}
	svc := service.NewAttemptService(store, &memCatalog{quizzes: map[string]*models.Quiz{quizID.Hex(): quiz}}, noopRecomputer{}, event.NewMockPublisher(), 30*time.Second)
	handler := NewAttemptHandler(svc)

	router := gin.New()
	protected := router.Group("/protected/quiz")
	protected.Use(middleware.RequireUser())
	{
		protected.POST("/list/:id/start", handler.StartAttempt)
		protected.POST("/submit", handler.SubmitAttempt)
		protected.GET("/history", handler.History)
	}

	return &attemptRouter{router: router, quizID: quizID.Hex(), store: store}
}

func (ar *attemptRouter) do(t *testing.T, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	w := httptest.NewRecorder()
	ar.router.ServeHTTP(w, req)
	return w
}

func (ar *attemptRouter) start(t *testing.T, userID string) string {
	t.Helper()
	w := ar.do(t, http.MethodPost, "/protected/quiz/list/"+ar.quizID+"/start", userID, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		AttemptID string `json:"attempt_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode start response: %v", err)
	}
	return resp.AttemptID
}

func TestStartAttemptEndpoint(t *testing.T) {
	ar := newAttemptRouter(t)

	w := ar.do(t, http.MethodPost, "/protected/quiz/list/"+ar.quizID+"/start", "user-1", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp["attempt_id"] == "" {
		t.Error("Expected attempt_id in response")
	}
	if resp["time_limit"] != float64(10) {
		t.Errorf("Expected time_limit 10, got %v", resp["time_limit"])
	}
}

func TestStartAttemptRequiresAuth(t *testing.T) {
	ar := newAttemptRouter(t)

	w := ar.do(t, http.MethodPost, "/protected/quiz/list/"+ar.quizID+"/start", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", w.Code)
	}

	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["code"] != "MISSING_USER_ID" {
		t.Errorf("Expected MISSING_USER_ID code, got %q", resp["code"])
	}
}

func TestStartAttemptUnknownQuizEndpoint(t *testing.T) {
	ar := newAttemptRouter(t)

	w := ar.do(t, http.MethodPost, "/protected/quiz/list/"+bson.NewObjectID().Hex()+"/start", "user-1", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestSubmitEndpoint(t *testing.T) {
	ar := newAttemptRouter(t)
	attemptID := ar.start(t, "user-1")

	w := ar.do(t, http.MethodPost, "/protected/quiz/submit", "user-1", gin.H{
		"attempt_id": attemptID,
		"answers":    []string{"c1"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp["score"] != float64(100) {
		t.Errorf("Expected score 100, got %v", resp["score"])
	}
	if resp["correct_answers"] != float64(1) {
		t.Errorf("Expected 1 correct answer, got %v", resp["correct_answers"])
	}
	if resp["total_questions"] != float64(1) {
		t.Errorf("Expected 1 total question, got %v", resp["total_questions"])
	}
}

func TestSubmitEndpointErrorResponses(t *testing.T) {
	testCases := []struct {
		name          string
		setup         func(t *testing.T, ar *attemptRouter) gin.H
		expectedCode  int
		expectedError string
	}{
		{
			name: "unknown attempt",
			setup: func(t *testing.T, ar *attemptRouter) gin.H {
				return gin.H{"attempt_id": bson.NewObjectID().Hex(), "answers": []string{}}
			},
			expectedCode:  http.StatusNotFound,
			expectedError: "Attempt not found.",
		},
		{
			name: "another user's attempt",
			setup: func(t *testing.T, ar *attemptRouter) gin.H {
				attemptID := ar.start(t, "user-2")
				return gin.H{"attempt_id": attemptID, "answers": []string{}}
			},
			expectedCode:  http.StatusNotFound,
			expectedError: "Attempt not found.",
		},
		{
			name: "already submitted",
			setup: func(t *testing.T, ar *attemptRouter) gin.H {
				attemptID := ar.start(t, "user-1")
				w := ar.do(t, http.MethodPost, "/protected/quiz/submit", "user-1", gin.H{"attempt_id": attemptID, "answers": []string{"c1"}})
				if w.Code != http.StatusOK {
					t.Fatalf("Priming submission failed: %d", w.Code)
				}
				return gin.H{"attempt_id": attemptID, "answers": []string{"c1"}}
			},
			expectedCode:  http.StatusBadRequest,
			expectedError: "This attempt has already been submitted.",
		},
		{
			name: "answers not a list",
			setup: func(t *testing.T, ar *attemptRouter) gin.H {
				attemptID := ar.start(t, "user-1")
				return gin.H{"attempt_id": attemptID, "answers": "c1"}
			},
			expectedCode:  http.StatusBadRequest,
			expectedError: "answers must be a list",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ar := newAttemptRouter(t)
			body := tc.setup(t, ar)

			w := ar.do(t, http.MethodPost, "/protected/quiz/submit", "user-1", body)
			if w.Code != tc.expectedCode {
				t.Fatalf("Expected %d, got %d: %s", tc.expectedCode, w.Code, w.Body.String())
			}

			var resp map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if resp["error"] != tc.expectedError {
				t.Errorf("Expected error %q, got %q", tc.expectedError, resp["error"])
			}
		})
	}
}

func TestHistoryEndpoint(t *testing.T) {
	ar := newAttemptRouter(t)
	ar.start(t, "user-1")
	ar.start(t, "user-1")

	w := ar.do(t, http.MethodGet, "/protected/quiz/history", "user-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var resp struct {
		Count    int                  `json:"count"`
		Attempts []models.QuizAttempt `json:"attempts"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Count != 2 || len(resp.Attempts) != 2 {
		t.Errorf("Expected 2 attempts, got count=%d len=%d", resp.Count, len(resp.Attempts))
	}
}
