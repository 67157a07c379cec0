package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"quizhub-service/internal/models"
	"quizhub-service/internal/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type CategoryService struct {
	Repo     *repository.CategoryRepository
	QuizRepo *repository.QuizRepository
}

func NewCategoryService(repo *repository.CategoryRepository, quizRepo *repository.QuizRepository) *CategoryService {
	return &CategoryService{Repo: repo, QuizRepo: quizRepo}
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	categories, err := s.Repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range categories {
		count, err := s.QuizRepo.CountByCategorySlug(ctx, categories[i].Slug)
		if err != nil {
			log.Printf("Failed to count quizzes for category %s: %v", categories[i].Slug, err)
			continue
		}
		categories[i].QuizCount = int(count)
	}
	return categories, nil
}

func (s *CategoryService) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	category, err := s.Repo.FindBySlug(ctx, slug)
	if err == mongo.ErrNoDocuments {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}
	count, err := s.QuizRepo.CountByCategorySlug(ctx, category.Slug)
	if err == nil {
		category.QuizCount = int(count)
	}
	return category, nil
}

func (s *CategoryService) Create(ctx context.Context, category *models.Category) error {
	if category.Name == "" {
		return fmt.Errorf("name is required")
	}
	if category.Slug == "" {
		category.Slug = Slugify(category.Name)
	}
	return s.Repo.Create(ctx, category)
}

func (s *CategoryService) Update(ctx context.Context, slug string, update bson.M) error {
	err := s.Repo.Update(ctx, slug, update)
	if err == mongo.ErrNoDocuments {
		return ErrCategoryNotFound
	}
	return err
}

func (s *CategoryService) Delete(ctx context.Context, slug string) error {
	err := s.Repo.Delete(ctx, slug)
	if err == mongo.ErrNoDocuments {
		return ErrCategoryNotFound
	}
	return err
}

// Slugify turns a display name into a URL-safe slug.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Join(strings.Fields(slug), "-")
	var b strings.Builder
	for _, r := range slug {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
