package repository

import (
	"context"
	"fmt"

	"quizhub-service/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type AttemptRepository struct {
	Col *mongo.Collection
}

func NewAttemptRepository(db *mongo.Database) *AttemptRepository {
	return &AttemptRepository{Col: db.Collection("attempts")}
}

func (r *AttemptRepository) Create(ctx context.Context, attempt *models.QuizAttempt) error {
	if attempt.ID.IsZero() {
		attempt.ID = bson.NewObjectID()
	}
	_, err := r.Col.InsertOne(ctx, attempt)
	if err != nil {
		return fmt.Errorf("failed to insert attempt: %w", err)
	}
	return nil
}

// FindByIDForUser fetches an attempt only when it belongs to userID, so
// a foreign attempt id is indistinguishable from a missing one.
func (r *AttemptRepository) FindByIDForUser(ctx context.Context, id, userID string) (*models.QuizAttempt, error) {
	objID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	var attempt models.QuizAttempt
	err = r.Col.FindOne(ctx, bson.M{"_id": objID, "user_id": userID}).Decode(&attempt)
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

// Close flips an open attempt to closed in a single guarded write. The
// filter requires the result field to still be unset, so of two racing
// submissions exactly one observes a match; the other gets false.
func (r *AttemptRepository) Close(ctx context.Context, id bson.ObjectID, userID string, result *models.AttemptResult) (bool, error) {
	filter := bson.M{
		"_id":     id,
		"user_id": userID,
		"result":  bson.M{"$exists": false},
	}
	res, err := r.Col.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"result": result}})
	if err != nil {
		return false, fmt.Errorf("failed to close attempt: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

// FindByUser returns the user's full attempt history, most recently
// started first.
func (r *AttemptRepository) FindByUser(ctx context.Context, userID string) ([]models.QuizAttempt, error) {
	opts := options.Find().SetSort(bson.D{{Key: "started_at", Value: -1}})
	cur, err := r.Col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var attempts []models.QuizAttempt
	if err := cur.All(ctx, &attempts); err != nil {
		return nil, err
	}
	return attempts, nil
}

// FindClosedByUser returns every closed attempt for the user in
// completion order. The ordering is what makes the aggregator's
// first-encountered tie-break deterministic.
func (r *AttemptRepository) FindClosedByUser(ctx context.Context, userID string) ([]models.QuizAttempt, error) {
	filter := bson.M{"user_id": userID, "result": bson.M{"$exists": true}}
	opts := options.Find().SetSort(bson.D{{Key: "result.completed_at", Value: 1}})
	cur, err := r.Col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var attempts []models.QuizAttempt
	if err := cur.All(ctx, &attempts); err != nil {
		return nil, err
	}
	return attempts, nil
}

func (r *AttemptRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "result.completed_at", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "started_at", Value: -1}}},
	}
	_, err := r.Col.Indexes().CreateMany(ctx, indexes)
	return err
}
