package repository

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	domainErrors "github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/errors"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/model"
	domainRepo "github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/repository"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/infrastructure/resilience"
)

// SupabaseProfileRepository reads profiles through the Supabase REST API
type SupabaseProfileRepository struct {
	client  *resty.Client
	table   string
	breaker *resilience.CircuitBreaker
	logger  *zap.Logger
}

// NewSupabaseProfileRepository creates a profile repository. The service role
// key is required because profiles are protected by row level security.
func NewSupabaseProfileRepository(
	baseURL string,
	serviceRoleKey string,
	table string,
	breaker *resilience.CircuitBreaker,
	logger *zap.Logger,
) domainRepo.ProfileRepository {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10*time.Second).
		SetRetryCount(0).
		SetHeader("apikey", serviceRoleKey).
		SetHeader("Authorization", "Bearer "+serviceRoleKey).
		SetHeader("Accept", "application/json")

	if table == "" {
		table = "profiles"
	}

	return &SupabaseProfileRepository{
		client:  client,
		table:   table,
		breaker: breaker,
		logger:  logger,
	}
}

// GetProfile fetches the profile row for userID.
func (r *SupabaseProfileRepository) GetProfile(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	startTime := time.Now()

	r.logger.Debug("SupabaseProfileRepository: Fetching profile",
		zap.String("user_id", userID.String()),
		zap.String("table", r.table),
		zap.String("step", "repository_entry"))

	profiles, err := resilience.Execute(r.breaker, func() ([]model.Profile, error) {
		var rows []model.Profile
		resp, err := r.client.R().
			SetContext(ctx).
			SetQueryParam("id", "eq."+userID.String()).
			SetQueryParam("select", "id,email,role").
			SetResult(&rows).
			Get("/rest/v1/" + r.table)
		if err != nil {
			return nil, fmt.Errorf("http request failed: %w", err)
		}
		if resp.StatusCode() != http.StatusOK {
			return nil, fmt.Errorf("supabase API returned status %d: %s", resp.StatusCode(), resp.String())
		}
		return rows, nil
	})
	if err != nil {
		r.logger.Error("SupabaseProfileRepository: Profile lookup failed",
			zap.String("user_id", userID.String()),
			zap.String("step", "execute_http_request"),
			zap.String("status", "failed"),
			zap.Duration("duration", time.Since(startTime)),
			zap.Error(err))
		return nil, domainErrors.NewUpstreamUnavailableError("profile", err)
	}

	if len(profiles) == 0 {
		r.logger.Warn("SupabaseProfileRepository: Profile not found",
			zap.String("user_id", userID.String()),
			zap.String("step", "validate_results"))
		return nil, domainRepo.ErrNotFound
	}

	profile := &profiles[0]
	r.logger.Debug("SupabaseProfileRepository: Profile fetched",
		zap.String("user_id", userID.String()),
		zap.String("role", string(profile.Role)),
		zap.String("status", "success"),
		zap.Duration("duration", time.Since(startTime)))

	return profile, nil
}
