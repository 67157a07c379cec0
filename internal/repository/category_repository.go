package repository

import (
	"context"

	"quizhub-service/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type CategoryRepository struct {
	Col *mongo.Collection
}

func NewCategoryRepository(db *mongo.Database) *CategoryRepository {
	return &CategoryRepository{Col: db.Collection("categories")}
}

func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if category.ID.IsZero() {
		category.ID = bson.NewObjectID()
	}
	_, err := r.Col.InsertOne(ctx, category)
	return err
}

func (r *CategoryRepository) FindAll(ctx context.Context) ([]models.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cur, err := r.Col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var categories []models.Category
	if err := cur.All(ctx, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *CategoryRepository) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	err := r.Col.FindOne(ctx, bson.M{"slug": slug}).Decode(&category)
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *CategoryRepository) Update(ctx context.Context, slug string, update bson.M) error {
	res, err := r.Col.UpdateOne(ctx, bson.M{"slug": slug}, bson.M{"$set": update})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, slug string) error {
	res, err := r.Col.DeleteOne(ctx, bson.M{"slug": slug})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *CategoryRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := r.Col.Indexes().CreateMany(ctx, indexes)
	return err
}
