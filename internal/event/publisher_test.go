package event

import (
	"testing"
	"time"

	"quizhub-service/internal/models"
)

func TestDisabledPublisherIsNoop(t *testing.T) {
	publisher, err := NewEventPublisher("", "quiz.events")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	err = publisher.PublishAttemptEvent(&models.AttemptEvent{
		EventType: models.EventTypeAttemptCompleted,
		AttemptID: "a1",
		UserID:    "user-1",
		Timestamp: time.Now(),
	})
	if err != nil {
		t.Fatalf("Disabled publisher must swallow events: %v", err)
	}
	if err := publisher.Close(); err != nil {
		t.Fatalf("Disabled publisher must close cleanly: %v", err)
	}
}
