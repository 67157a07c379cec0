package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"quizhub-service/internal/models"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// ClosedAttemptLister supplies a user's closed attempts in completion
// order.
type ClosedAttemptLister interface {
	FindClosedByUser(ctx context.Context, userID string) ([]models.QuizAttempt, error)
}

// ProfileStore is the one-row-per-user statistics record.
type ProfileStore interface {
	New(ctx context.Context, profile *models.Profile) (*models.Profile, error)
	FindByUserID(ctx context.Context, userID string) (*models.Profile, error)
	UpsertStats(ctx context.Context, userID string, stats models.ProfileStats) (*models.Profile, error)
}

// StatsService rebuilds profile statistics from attempt history. Every
// run is a full rescan, so any ordering of concurrent recomputes for
// the same user converges once the last one commits.
type StatsService struct {
	attempts ClosedAttemptLister
	profiles ProfileStore
}

func NewStatsService(attempts ClosedAttemptLister, profiles ProfileStore) *StatsService {
	return &StatsService{attempts: attempts, profiles: profiles}
}

// winThreshold is the score at and above which an attempt counts as a
// win.
const winThreshold = 50.0

// pointsPerLevel: one level per 500 accumulated score points.
const pointsPerLevel = 500.0

// ComputeStats derives a statistics snapshot from a user's closed
// attempts. It is pure and total: the same inputs always yield the same
// snapshot, which is what makes recomputation idempotent.
//
// prev carries forward the fields the aggregator does not maintain
// (streaks, completion rate, weakest category) and the previous best
// category when the attempt set is empty.
func ComputeStats(prev models.ProfileStats, attempts []models.QuizAttempt) models.ProfileStats {
	next := prev

	var (
		totalScore float64
		wins       int
		timePlayed time.Duration
		closed     int
	)

	// Category means, tracked in first-encounter order so a tie keeps
	// the earlier-seen category.
	type categoryAgg struct {
		name  string
		sum   float64
		count int
	}
	var categories []*categoryAgg
	categoryIndex := map[string]*categoryAgg{}

	for i := range attempts {
		r := attempts[i].Result
		if r == nil {
			continue
		}
		closed++
		totalScore += r.Score
		if r.Score >= winThreshold {
			wins++
		}
		timePlayed += r.Duration

		if r.CategoryName != "" {
			agg, ok := categoryIndex[r.CategoryName]
			if !ok {
				agg = &categoryAgg{name: r.CategoryName}
				categoryIndex[r.CategoryName] = agg
				categories = append(categories, agg)
			}
			agg.sum += r.Score
			agg.count++
		}
	}

	next.QuizzesTaken = closed
	next.TotalScore = totalScore
	if closed > 0 {
		next.WinRate = float64(wins) / float64(closed) * 100
	}
	next.Level = int(math.Floor(totalScore/pointsPerLevel)) + 1
	next.TimePlayed = timePlayed

	var best *categoryAgg
	for _, agg := range categories {
		if best == nil || agg.sum/float64(agg.count) > best.sum/float64(best.count) {
			best = agg
		}
	}
	if best != nil {
		next.BestCategory = best.name
	}

	return next
}

// RecomputeForUser loads the user's full closed-attempt history,
// derives a fresh snapshot and writes it back in one update.
func (s *StatsService) RecomputeForUser(ctx context.Context, userID string) error {
	attempts, err := s.attempts.FindClosedByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load attempts for user %s: %w", userID, err)
	}

	var prev models.ProfileStats
	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil && err != mongo.ErrNoDocuments {
		return fmt.Errorf("failed to load profile for user %s: %w", userID, err)
	}
	if profile != nil {
		prev = profile.Stats
	}

	next := ComputeStats(prev, attempts)
	if _, err := s.profiles.UpsertStats(ctx, userID, next); err != nil {
		return err
	}
	return nil
}

// GetProfile returns the stored statistics row for a user.
func (s *StatsService) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err == mongo.ErrNoDocuments {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// EnsureProfile creates the initial profile row for a newly registered
// user. Creation is driven by the user directory's registration event;
// an existing row is left alone.
func (s *StatsService) EnsureProfile(ctx context.Context, userID, username string) error {
	_, err := s.profiles.FindByUserID(ctx, userID)
	if err == nil {
		return nil
	}
	if err != mongo.ErrNoDocuments {
		return fmt.Errorf("failed to check profile for user %s: %w", userID, err)
	}
	_, err = s.profiles.New(ctx, models.NewProfile(userID, username))
	return err
}
