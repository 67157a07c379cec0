package service

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrQuizNotFound     = errors.New("quiz not found")
	ErrAttemptNotFound  = errors.New("attempt not found")
	ErrAlreadySubmitted = errors.New("attempt has already been submitted")
	ErrInvalidAnswers   = errors.New("answers must be a list")
	ErrProfileNotFound  = errors.New("profile not found")
	ErrCategoryNotFound = errors.New("category not found")
)

// TimeLimitError reports a submission that arrived past the quiz's time
// limit plus the grace period. Limit is the bare time limit; the grace
// period is not included in what the client sees.
type TimeLimitError struct {
	Elapsed time.Duration
	Limit   time.Duration
}

func (e *TimeLimitError) Error() string {
	return fmt.Sprintf("time limit exceeded: elapsed %.0fs, limit %.0fs", e.Elapsed.Seconds(), e.Limit.Seconds())
}
