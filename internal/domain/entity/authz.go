package entity

import "github.com/google/uuid"

type Action string

const (
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionVerify Action = "verify"
	ActionAdmin  Action = "admin"
)

type Role string

const (
	RoleSuperAdmin     Role = "super_admin"
	RoleMerchant       Role = "merchant"
	RoleRegisteredUser Role = "registered_user"
)

type ResourceType string

const (
	ResourcePayment       ResourceType = "payment"
	ResourceCheckoutLink  ResourceType = "checkout_link"
	ResourcePaymentMethod ResourceType = "payment_method"
	ResourceNotification  ResourceType = "notification"
	ResourcePlatform      ResourceType = "platform"
)

// Resource identifies what an action targets. OwnerID is uuid.Nil for platform-wide resources.
type Resource struct {
	Type    ResourceType
	ID      string
	OwnerID uuid.UUID
}

// Actor is the authenticated user performing an action.
type Actor struct {
	UserID uuid.UUID
	Email  string
}
