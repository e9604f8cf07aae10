package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/entity"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/provider"
	domainRepo "github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/repository"
)

// Authorizer is the single permission check used by every use case
type Authorizer interface {
	CurrentUserCan(ctx context.Context, actor entity.Actor, action entity.Action, resource entity.Resource) bool
}

type roleEntry struct {
	role    entity.Role
	expires time.Time
}

// AuthorizationService decides permissions from resource ownership and the
// role stored on the user's profile. Owners always act on their own
// resources. Every other decision goes to the external checker when one is
// configured, otherwise to the profile role.
type AuthorizationService struct {
	profiles domainRepo.ProfileRepository
	checker  provider.PermissionChecker
	cacheTTL time.Duration
	now      func() time.Time
	logger   *zap.Logger

	mu    sync.Mutex
	roles map[uuid.UUID]roleEntry
}

// NewAuthorizationService creates the service. checker may be nil.
func NewAuthorizationService(
	profiles domainRepo.ProfileRepository,
	checker provider.PermissionChecker,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *AuthorizationService {
	return &AuthorizationService{
		profiles: profiles,
		checker:  checker,
		cacheTTL: cacheTTL,
		now:      time.Now,
		logger:   logger,
		roles:    make(map[uuid.UUID]roleEntry),
	}
}

// CurrentUserCan reports whether actor may perform action on resource.
// Any lookup failure denies.
func (s *AuthorizationService) CurrentUserCan(ctx context.Context, actor entity.Actor, action entity.Action, resource entity.Resource) bool {
	if actor.UserID == uuid.Nil {
		return false
	}

	if action != entity.ActionAdmin && resource.OwnerID != uuid.Nil && resource.OwnerID == actor.UserID {
		return true
	}

	if s.checker != nil {
		allowed, err := s.checker.CheckPermission(ctx, actor, action, resource)
		if err != nil {
			s.logger.Warn("AuthorizationService: External permission check failed, denying",
				zap.String("user_id", actor.UserID.String()),
				zap.String("action", string(action)),
				zap.String("resource_type", string(resource.Type)),
				zap.Error(err))
			return false
		}
		return allowed
	}

	role, err := s.Role(ctx, actor.UserID)
	if err != nil {
		s.logger.Warn("AuthorizationService: Role lookup failed, denying",
			zap.String("user_id", actor.UserID.String()),
			zap.String("action", string(action)),
			zap.Error(err))
		return false
	}

	allowed := role == entity.RoleSuperAdmin
	s.logger.Debug("AuthorizationService: Role based decision",
		zap.String("user_id", actor.UserID.String()),
		zap.String("role", string(role)),
		zap.String("action", string(action)),
		zap.String("resource_type", string(resource.Type)),
		zap.String("resource_id", resource.ID),
		zap.Bool("allowed", allowed))
	return allowed
}

// Role returns the user's profile role, cached for cacheTTL.
func (s *AuthorizationService) Role(ctx context.Context, userID uuid.UUID) (entity.Role, error) {
	if s.profiles == nil {
		return entity.RoleRegisteredUser, nil
	}
	now := s.now()

	s.mu.Lock()
	if entry, ok := s.roles[userID]; ok && now.Before(entry.expires) {
		s.mu.Unlock()
		return entry.role, nil
	}
	s.mu.Unlock()

	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, domainRepo.ErrNotFound) {
			return entity.RoleRegisteredUser, nil
		}
		return "", err
	}

	role := profile.Role
	switch role {
	case entity.RoleSuperAdmin, entity.RoleMerchant, entity.RoleRegisteredUser:
	default:
		role = entity.RoleRegisteredUser
	}

	if s.cacheTTL > 0 {
		s.mu.Lock()
		s.roles[userID] = roleEntry{role: role, expires: now.Add(s.cacheTTL)}
		s.mu.Unlock()
	}
	return role, nil
}
