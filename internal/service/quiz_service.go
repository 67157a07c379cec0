package service

import (
	"context"
	"fmt"
	"log"

	"quizhub-service/internal/models"
	"quizhub-service/internal/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// QuizService is the catalog: it owns quiz definitions and hands them
// out with correctness flags intact. It satisfies CatalogReader for the
// attempt lifecycle.
type QuizService struct {
	Repo         *repository.QuizRepository
	CategoryRepo *repository.CategoryRepository
	Cache        *repository.CacheRepository
}

func NewQuizService(repo *repository.QuizRepository, categoryRepo *repository.CategoryRepository, cache *repository.CacheRepository) *QuizService {
	return &QuizService{Repo: repo, CategoryRepo: categoryRepo, Cache: cache}
}

// GetQuiz reads a quiz definition, cache first. Cache misses and cache
// errors both fall through to the store.
func (s *QuizService) GetQuiz(ctx context.Context, id string) (*models.Quiz, error) {
	if s.Cache != nil {
		if quiz, err := s.Cache.GetQuiz(ctx, id); err == nil {
			return quiz, nil
		}
	}

	quiz, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.Cache != nil {
		if err := s.Cache.SaveQuiz(ctx, quiz); err != nil {
			log.Printf("Failed to cache quiz %s: %v", id, err)
		}
	}
	return quiz, nil
}

// GetActiveQuiz is the public detail view: inactive and deleted quizzes
// are indistinguishable from missing ones.
func (s *QuizService) GetActiveQuiz(ctx context.Context, id string) (*models.Quiz, error) {
	quiz, err := s.GetQuiz(ctx, id)
	if err == mongo.ErrNoDocuments {
		return nil, ErrQuizNotFound
	}
	if err != nil {
		return nil, err
	}
	if !quiz.IsActive() {
		return nil, ErrQuizNotFound
	}
	return quiz, nil
}

func (s *QuizService) ListActive(ctx context.Context, categorySlug, search string) ([]models.QuizSummary, error) {
	quizzes, err := s.Repo.FindActive(ctx, repository.QuizFilter{CategorySlug: categorySlug, Search: search})
	if err != nil {
		return nil, err
	}
	summaries := make([]models.QuizSummary, 0, len(quizzes))
	for i := range quizzes {
		summaries = append(summaries, quizzes[i].Summary())
	}
	return summaries, nil
}

// CreateQuiz stores a new quiz, stamping ids onto its questions and
// choices and snapshotting the category's name and slug.
func (s *QuizService) CreateQuiz(ctx context.Context, quiz *models.Quiz, categorySlug string) error {
	if categorySlug != "" {
		category, err := s.CategoryRepo.FindBySlug(ctx, categorySlug)
		if err == mongo.ErrNoDocuments {
			return ErrCategoryNotFound
		}
		if err != nil {
			return err
		}
		quiz.CategoryName = category.Name
		quiz.CategorySlug = category.Slug
	}

	if quiz.Status == "" {
		quiz.Status = models.QuizStatusActive
	}
	if quiz.Difficulty == "" {
		quiz.Difficulty = models.DifficultyEasy
	}
	if quiz.TimeLimitMinutes == 0 {
		quiz.TimeLimitMinutes = 10
	}
	assignQuestionIDs(quiz.Questions)

	return s.Repo.Create(ctx, quiz)
}

func (s *QuizService) UpdateQuiz(ctx context.Context, id string, update bson.M, questions []models.Question) error {
	if questions != nil {
		assignQuestionIDs(questions)
		update["questions"] = questions
	}
	err := s.Repo.Update(ctx, id, update)
	if err == mongo.ErrNoDocuments {
		return ErrQuizNotFound
	}
	if err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *QuizService) DeleteQuiz(ctx context.Context, id string) error {
	err := s.Repo.Delete(ctx, id)
	if err == mongo.ErrNoDocuments {
		return ErrQuizNotFound
	}
	if err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *QuizService) invalidate(ctx context.Context, id string) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.InvalidateQuiz(ctx, id); err != nil {
		log.Printf("Failed to invalidate cached quiz %s: %v", id, err)
	}
}

// assignQuestionIDs gives every question and choice a stable id when it
// does not already have one.
func assignQuestionIDs(questions []models.Question) {
	for qi := range questions {
		if questions[qi].ID == "" {
			questions[qi].ID = bson.NewObjectID().Hex()
		}
		if questions[qi].Order == 0 {
			questions[qi].Order = qi + 1
		}
		for ci := range questions[qi].Choices {
			if questions[qi].Choices[ci].ID == "" {
				questions[qi].Choices[ci].ID = bson.NewObjectID().Hex()
			}
		}
	}
}

// ValidateQuiz rejects structurally broken definitions before they reach
// the store.
func ValidateQuiz(quiz *models.Quiz) error {
	if quiz.Title == "" {
		return fmt.Errorf("title is required")
	}
	for _, question := range quiz.Questions {
		if question.Text == "" {
			return fmt.Errorf("question text is required")
		}
		correct := 0
		for _, choice := range question.Choices {
			if choice.IsCorrect {
				correct++
			}
		}
		if len(question.Choices) > 0 && correct == 0 {
			return fmt.Errorf("question %q has no correct choice", question.Text)
		}
	}
	return nil
}
