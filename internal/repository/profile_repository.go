package repository

import (
	"context"
	"fmt"
	"time"

	"quizhub-service/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type ProfileRepository struct {
	collection *mongo.Collection
}

func NewProfileRepository(db *mongo.Database) *ProfileRepository {
	return &ProfileRepository{
		collection: db.Collection("profiles"),
	}
}

func (r *ProfileRepository) New(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	if profile.ID.IsZero() {
		profile.ID = bson.NewObjectID()
	}

	currentTime := int(time.Now().Unix())
	if profile.Metadata.CreatedAt == 0 {
		profile.Metadata.CreatedAt = currentTime
	}
	profile.Metadata.UpdatedAt = currentTime

	_, err := r.collection.InsertOne(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to insert profile: %w", err)
	}
	return profile, nil
}

func (r *ProfileRepository) FindByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	var profile models.Profile
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&profile)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpsertStats writes a full recomputed snapshot in one update. The
// profile row normally exists before the first attempt closes; upsert
// covers the rare gap where the registration event was missed.
func (r *ProfileRepository) UpsertStats(ctx context.Context, userID string, stats models.ProfileStats) (*models.Profile, error) {
	filter := bson.M{"userId": userID}
	update := bson.M{
		"$set": bson.M{
			"stats":              stats,
			"metadata.updatedAt": int(time.Now().Unix()),
		},
		"$setOnInsert": bson.M{
			"userId":             userID,
			"metadata.createdAt": int(time.Now().Unix()),
		},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var updated models.Profile
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert profile stats: %w", err)
	}
	return &updated, nil
}

func (r *ProfileRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}
