package provider

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/entity"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/model"
)

// ProofStorage stores proof-of-payment files in object storage
type ProofStorage interface {
	// Upload stores the object and returns its key and public reference URL.
	Upload(ctx context.Context, req *ProofUpload) (*StoredProof, error)

	// PresignGet returns a short-lived download URL for key.
	PresignGet(ctx context.Context, key string) (string, error)

	// Delete removes the object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// ProofUpload is one proof file bound to a pre-allocated payment id
type ProofUpload struct {
	PaymentID   uuid.UUID
	MerchantID  uuid.UUID
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// StoredProof describes an uploaded proof object
type StoredProof struct {
	Key string
	URL string
}

// EventPublisher publishes payment lifecycle events to downstream consumers
type EventPublisher interface {
	Publish(ctx context.Context, event *PaymentEvent) error
}

// Payment event types
const (
	EventPaymentSubmitted = "payment.submitted"
	EventPaymentVerified  = "payment.verified"
)

// PaymentEvent is the payload sent to the events topic
type PaymentEvent struct {
	Type       string               `json:"type"`
	PaymentID  uuid.UUID            `json:"payment_id"`
	MerchantID uuid.UUID            `json:"merchant_id"`
	LinkID     uuid.UUID            `json:"checkout_link_id"`
	Status     entity.PaymentStatus `json:"status"`
	Amount     decimal.Decimal      `json:"amount"`
	Currency   string               `json:"currency"`
	OccurredAt time.Time            `json:"occurred_at"`
}

// Mailer sends transactional email
type Mailer interface {
	Send(ctx context.Context, msg *EmailMessage) error
}

type EmailMessage struct {
	To       string
	Subject  string
	HTMLBody string
}

// PaymentMailer tells a customer the merchant's decision on their payment.
// Rendering the message is left to the implementation.
type PaymentMailer interface {
	SendPaymentDecision(ctx context.Context, p *model.Payment) error
}

// GeoLocator resolves a client IP to an ISO 3166-1 alpha-2 country code.
// An empty code means unknown.
type GeoLocator interface {
	CountryCode(ip string) (string, error)
}

// PermissionChecker delegates relationship checks to an external authorizer
type PermissionChecker interface {
	CheckPermission(ctx context.Context, actor entity.Actor, action entity.Action, resource entity.Resource) (bool, error)
}

// NotificationBroker fans notification events out to live subscribers
type NotificationBroker interface {
	Publish(ctx context.Context, event entity.NotificationEvent) error
	Subscribe(userID uuid.UUID, onEvent func(entity.NotificationEvent)) (Unsubscribe, error)
}

// Unsubscribe detaches a subscription. Calling it more than once is a no-op.
type Unsubscribe func()
