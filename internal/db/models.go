package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/yardops/compliance-worker/internal/compliance"
)

// User roles.
const (
	RoleAdmin  = "ADMIN"
	RoleReader = "READER"
)

// Notification types.
const (
	NotificationNewAssignment = "NEW_ASSIGNMENT"
	NotificationReadingDue    = "READING_DUE"
	NotificationReadingMissed = "READING_MISSED"
)

// Notification statuses.
const (
	NotificationUnread = "UNREAD"
	NotificationRead   = "READ"
)

// User is an administrator or meter reader account.
type User struct {
	ID        uuid.UUID
	Email     string
	FirstName string
	LastName  string
	Role      string
	CreatedAt time.Time
}

// FullName returns the display name used in reports and notifications.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Location is a physical site holding meters.
type Location struct {
	ID          uuid.UUID
	Name        string
	Description *string
	CreatedAt   time.Time
}

// MeterType is an administrator-defined meter category (water, electric, ...).
type MeterType struct {
	ID        uuid.UUID
	Name      string
	Unit      *string
	CreatedAt time.Time
}

// Meter is a single metering point with an assigned reading cadence.
type Meter struct {
	ID          uuid.UUID
	MeterNumber string
	MeterTypeID uuid.UUID
	LocationID  uuid.UUID
	Frequency   compliance.Frequency
	CreatedAt   time.Time
}

// Reading is one recorded meter value.
type Reading struct {
	ID          uuid.UUID
	MeterID     uuid.UUID
	UserID      uuid.UUID
	Value       float64
	ReadingDate time.Time
	Comment     *string
	CreatedAt   time.Time
}

// MeterAssignment links a reader to a meter they are responsible for.
type MeterAssignment struct {
	ID         uuid.UUID
	MeterID    uuid.UUID
	UserID     uuid.UUID
	AssignedAt time.Time
	AssignedBy *uuid.UUID
}

// Notification is an alert targeted at one user. Metadata is an opaque bag
// carrying meterId, meterNumber, dueDate or daysOverdue depending on type.
type Notification struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Type      string
	Title     string
	Message   string
	Status    string
	Metadata  map[string]any
	CreatedAt time.Time
	ReadAt    *time.Time
}

// ScheduledReading is an administrator-created expectation that a reading
// will occur by DueDate.
type ScheduledReading struct {
	ID            uuid.UUID
	MeterID       uuid.UUID
	ScheduledDate time.Time
	DueDate       time.Time
	CreatedAt     time.Time
}
