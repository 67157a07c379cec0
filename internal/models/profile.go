package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ProfileStats is the derived statistics snapshot, a pure function of
// the user's closed attempts at the moment of the last recompute.
// CurrentStreak, HighestStreak, CompletionRate and WeakestCategory are
// stored but not maintained by the aggregator.
type ProfileStats struct {
	Level           int           `bson:"level" json:"level"`
	QuizzesTaken    int           `bson:"quizzes_taken" json:"quizzes_taken"`
	TotalScore      float64       `bson:"total_score" json:"total_score"`
	WinRate         float64       `bson:"win_rate" json:"win_rate"`
	CurrentStreak   int           `bson:"current_streak" json:"current_streak"`
	HighestStreak   int           `bson:"highest_streak" json:"highest_streak"`
	CompletionRate  float64       `bson:"completion_rate" json:"completion_rate"`
	TimePlayed      time.Duration `bson:"time_played" json:"time_played"`
	BestCategory    string        `bson:"best_category,omitempty" json:"best_category,omitempty"`
	WeakestCategory string        `bson:"weakest_category,omitempty" json:"weakest_category,omitempty"`
}

// TimePlayedDisplay formats total play time as "2h 30m".
func (s ProfileStats) TimePlayedDisplay() string {
	hours := int(s.TimePlayed.Hours())
	minutes := int(s.TimePlayed.Minutes()) % 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

type Metadata struct {
	CreatedAt int `bson:"createdAt" json:"createdAt"`
	UpdatedAt int `bson:"updatedAt" json:"updatedAt"`
}

// Profile is the one-per-user statistics row. It is created when the
// user registers and only ever updated in place.
type Profile struct {
	ID       bson.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID   string        `bson:"userId" json:"userId"`
	Username string        `bson:"username,omitempty" json:"username,omitempty"`
	Stats    ProfileStats  `bson:"stats" json:"stats"`
	Metadata Metadata      `bson:"metadata" json:"metadata"`
}

// NewProfile builds the initial row for a freshly registered user.
func NewProfile(userID, username string) *Profile {
	now := int(time.Now().Unix())
	return &Profile{
		UserID:   userID,
		Username: username,
		Stats:    ProfileStats{Level: 1},
		Metadata: Metadata{CreatedAt: now, UpdatedAt: now},
	}
}
