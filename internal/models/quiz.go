package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

const (
	QuizStatusActive   = "active"
	QuizStatusInactive = "inactive"
	QuizStatusDeleted  = "deleted"
)

type Category struct {
	ID          bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string        `bson:"name" json:"name"`
	Slug        string        `bson:"slug" json:"slug"`
	Icon        string        `bson:"icon,omitempty" json:"icon,omitempty"`
	Description string        `bson:"description,omitempty" json:"description,omitempty"`
	QuizCount   int           `bson:"-" json:"quiz_count"`
}

type Choice struct {
	ID        string `bson:"id" json:"id"`
	Text      string `bson:"text" json:"text"`
	IsCorrect bool   `bson:"is_correct" json:"-"`
}

type Question struct {
	ID      string   `bson:"id" json:"id"`
	Text    string   `bson:"text" json:"text"`
	Order   int      `bson:"order" json:"order"`
	Choices []Choice `bson:"choices" json:"choices"`
}

// Quiz embeds its questions and choices; the catalog hands out the whole
// definition in one read.
type Quiz struct {
	ID               bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Title            string        `bson:"title" json:"title"`
	Description      string        `bson:"description" json:"description"`
	CategoryName     string        `bson:"category_name,omitempty" json:"category_name,omitempty"`
	CategorySlug     string        `bson:"category_slug,omitempty" json:"category_slug,omitempty"`
	Difficulty       Difficulty    `bson:"difficulty" json:"difficulty"`
	TimeLimitMinutes int           `bson:"time_limit_minutes" json:"time_limit_minutes"`
	Status           string        `bson:"status" json:"status"`
	Questions        []Question    `bson:"questions,omitempty" json:"questions,omitempty"`
	CreatedAt        time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time     `bson:"updated_at" json:"updated_at"`
}

func (q *Quiz) IsActive() bool {
	return q.Status == QuizStatusActive
}

// TimeLimit is the quiz's time limit as a duration.
func (q *Quiz) TimeLimit() time.Duration {
	return time.Duration(q.TimeLimitMinutes) * time.Minute
}

// QuestionCount is the quiz's current question count, read at call time.
func (q *Quiz) QuestionCount() int {
	return len(q.Questions)
}

// CorrectChoiceIDs collects the ids of every correct choice across the
// quiz's questions.
func (q *Quiz) CorrectChoiceIDs() map[string]struct{} {
	ids := make(map[string]struct{})
	for _, question := range q.Questions {
		for _, choice := range question.Choices {
			if choice.IsCorrect {
				ids[choice.ID] = struct{}{}
			}
		}
	}
	return ids
}

// QuizSummary is the list-view shape; it never carries questions.
type QuizSummary struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	CategoryName     string     `json:"category_name,omitempty"`
	CategorySlug     string     `json:"category_slug,omitempty"`
	Difficulty       Difficulty `json:"difficulty"`
	TimeLimitMinutes int        `json:"time_limit_minutes"`
	QuestionCount    int        `json:"question_count"`
	CreatedAt        time.Time  `json:"created_at"`
}

func (q *Quiz) Summary() QuizSummary {
	return QuizSummary{
		ID:               q.ID.Hex(),
		Title:            q.Title,
		Description:      q.Description,
		CategoryName:     q.CategoryName,
		CategorySlug:     q.CategorySlug,
		Difficulty:       q.Difficulty,
		TimeLimitMinutes: q.TimeLimitMinutes,
		QuestionCount:    q.QuestionCount(),
		CreatedAt:        q.CreatedAt,
	}
}
