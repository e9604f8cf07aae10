package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/model"
)

// ProfileRepository reads user profiles from the hosted platform.
type ProfileRepository interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*model.Profile, error)
}
