package notify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/yardops/compliance-worker/internal/db"
	"github.com/yardops/compliance-worker/internal/mq"
	"github.com/yardops/compliance-worker/internal/notify"
	"go.uber.org/zap"
)

func TestCreate_PublishesEvent(t *testing.T) {
	user := newTestUser("reader@yardops.com")
	store := &fakeStore{users: map[uuid.UUID]*db.User{user.ID: user}}
	publisher := &fakePublisher{}
	svc := notify.NewService(store, &fakeMailer{}, publisher, "notification.created", zap.NewNop()).WithClock(fixedClock)

	created, err := svc.Create(context.Background(), notify.CreateNotification{
		UserID:  user.ID,
		Type:    db.NotificationNewAssignment,
		Title:   "New Meter Assignment",
		Message: "You have been assigned to meter WTR-001.",
		Metadata: map[string]any{
			"meterNumber": "WTR-001",
			"location":    "Dock A",
		},
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if len(publisher.events) != 1 {
		t.Fatalf("Expected 1 published event, got %d", len(publisher.events))
	}
	event, ok := publisher.events[0].(mq.NotificationCreatedEvent)
	if !ok {
		t.Fatalf("Unexpected event type %T", publisher.events[0])
	}
	if event.NotificationID != created.ID.String() {
		t.Errorf("Event notification id %s does not match created %s", event.NotificationID, created.ID)
	}
	if event.Type != db.NotificationNewAssignment {
		t.Errorf("Unexpected event type %s", event.Type)
	}
}

func TestCreate_PublishFailureIsSwallowed(t *testing.T) {
	user := newTestUser("reader@yardops.com")
	store := &fakeStore{users: map[uuid.UUID]*db.User{user.ID: user}}
	publisher := &fakePublisher{err: errors.New("broker unavailable")}
	svc := notify.NewService(store, &fakeMailer{}, publisher, "notification.created", zap.NewNop()).WithClock(fixedClock)

	created, err := svc.Create(context.Background(), notify.CreateNotification{
		UserID: user.ID,
		Type:   db.NotificationReadingDue,
		Title:  "Reading Due: WTR-001",
		Metadata: map[string]any{
			"meterNumber": "WTR-001",
			"dueDate":     "2025-06-15T00:00:00.000Z",
		},
	})
	if err != nil {
		t.Fatalf("Expected creation to succeed despite publish failure, got %v", err)
	}
	if len(store.notifications) != 1 || store.notifications[0].ID != created.ID {
		t.Errorf("Expected notification persisted, got %d", len(store.notifications))
	}
}

func TestCreate_StoreFailurePropagates(t *testing.T) {
	user := newTestUser("reader@yardops.com")
	store := &fakeStore{
		users:       map[uuid.UUID]*db.User{user.ID: user},
		failForUser: &user.ID,
	}
	svc := notify.NewService(store, &fakeMailer{}, &fakePublisher{}, "notification.created", zap.NewNop())

	if _, err := svc.Create(context.Background(), notify.CreateNotification{
		UserID: user.ID,
		Type:   db.NotificationReadingDue,
		Title:  "Reading Due: WTR-001",
	}); err == nil {
		t.Fatal("Expected error when store rejects the notification")
	}
}
