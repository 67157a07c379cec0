package repository

import (
	"context"
	"time"

	"quizhub-service/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type QuizRepository struct {
	Col *mongo.Collection
}

func NewQuizRepository(db *mongo.Database) *QuizRepository {
	return &QuizRepository{Col: db.Collection("quizzes")}
}

type QuizFilter struct {
	CategorySlug string
	Search       string
}

func (r *QuizRepository) Create(ctx context.Context, quiz *models.Quiz) error {
	if quiz.ID.IsZero() {
		quiz.ID = bson.NewObjectID()
	}
	now := time.Now()
	quiz.CreatedAt = now
	quiz.UpdatedAt = now
	_, err := r.Col.InsertOne(ctx, quiz)
	return err
}

func (r *QuizRepository) FindByID(ctx context.Context, id string) (*models.Quiz, error) {
	objID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	var quiz models.Quiz
	err = r.Col.FindOne(ctx, bson.M{"_id": objID}).Decode(&quiz)
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

// FindActive lists active quizzes, optionally narrowed by category slug
// and a case-insensitive title search.
func (r *QuizRepository) FindActive(ctx context.Context, filter QuizFilter) ([]models.Quiz, error) {
	query := bson.M{"status": models.QuizStatusActive}
	if filter.CategorySlug != "" {
		query["category_slug"] = filter.CategorySlug
	}
	if filter.Search != "" {
		query["title"] = bson.M{"$regex": filter.Search, "$options": "i"}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.Col.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var quizzes []models.Quiz
	if err := cur.All(ctx, &quizzes); err != nil {
		return nil, err
	}
	return quizzes, nil
}

func (r *QuizRepository) Update(ctx context.Context, id string, update bson.M) error {
	objID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}
	update["updated_at"] = time.Now()
	res, err := r.Col.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": update})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete retires a quiz without dropping its document; closed attempts
// keep referring to it.
func (r *QuizRepository) Delete(ctx context.Context, id string) error {
	return r.Update(ctx, id, bson.M{"status": models.QuizStatusDeleted})
}

func (r *QuizRepository) CountByCategorySlug(ctx context.Context, slug string) (int64, error) {
	return r.Col.CountDocuments(ctx, bson.M{"category_slug": slug, "status": models.QuizStatusActive})
}

func (r *QuizRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "category_slug", Value: 1}}},
		{Keys: bson.D{{Key: "title", Value: 1}}},
	}
	_, err := r.Col.Indexes().CreateMany(ctx, indexes)
	return err
}
