package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/domain/shared"
)

// Kind identifies the template of a notification
type Kind string

const (
	KindWelcome            Kind = "WELCOME"
	KindPaymentReceived    Kind = "PAYMENT_RECEIVED"
	KindRentDue            Kind = "RENT_DUE"
	KindPropertyCreated    Kind = "PROPERTY_CREATED"
	KindMaintenanceCreated Kind = "MAINTENANCE_CREATED"
)

// RecipientType says whether a notification targets a renter or a staff user
type RecipientType string

const (
	RecipientTenant RecipientType = "TENANT"
	RecipientUser   RecipientType = "USER"
)

// Notification is an in-app message. External delivery channels consume the
// published copy and are outside this service.
type Notification struct {
	ID            uuid.UUID
	OrgID         uuid.UUID
	EventID       uuid.UUID
	Kind          Kind
	RecipientType RecipientType
	RecipientID   uuid.UUID
	Title         string
	Body          string
	ReadAt        *time.Time
	CreatedAt     time.Time
}

// New creates a notification triggered by eventID
func New(orgID, eventID uuid.UUID, kind Kind, recipientType RecipientType, recipientID uuid.UUID, title, body string) *Notification {
	return &Notification{
		ID:            uuid.New(),
		OrgID:         orgID,
		EventID:       eventID,
		Kind:          kind,
		RecipientType: recipientType,
		RecipientID:   recipientID,
		Title:         title,
		Body:          body,
		CreatedAt:     shared.Now(),
	}
}

// MarkRead flags the notification as read
func (n *Notification) MarkRead(at time.Time) {
	if n.ReadAt == nil {
		n.ReadAt = &at
	}
}

// Repository persists notifications
type Repository interface {
	// Create inserts a notification. A second notification of the same kind for the
	// same event and recipient is ignored and reported as created=false.
	Create(ctx context.Context, n *Notification) (bool, error)
	// ListByRecipient lists a recipient's notifications, newest first
	ListByRecipient(ctx context.Context, orgID, recipientID uuid.UUID, filter shared.Filter) ([]Notification, int64, error)
	// MarkRead flags a notification as read
	MarkRead(ctx context.Context, orgID, id uuid.UUID, at time.Time) error
}

// Publisher pushes notifications to delivery channels
type Publisher interface {
	Publish(ctx context.Context, n *Notification) error
}
