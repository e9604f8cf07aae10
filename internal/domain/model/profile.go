package model

import (
	"github.com/google/uuid"

	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/entity"
)

// Profile is a row of the hosted profiles table, read through its REST API
type Profile struct {
	ID    uuid.UUID   `json:"id"`
	Email string      `json:"email"`
	Role  entity.Role `json:"role"`
}
