package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/entity"
	apperrors "github.com/ptiporki19/pxv-pay-app-sub003/pkg/errors"
)

// contextKey is used for storing the actor in context
type contextKey string

const (
	actorContextKey contextKey = "authenticated_actor"
)

// JWTConfig holds the configuration for JWT middleware
type JWTConfig struct {
	Secret string
	Logger *zap.Logger
	// Audience, when set, must match the aud claim ("authenticated" for hosted auth).
	Audience string
	// QueryTokenPaths accept ?access_token= for clients that cannot set headers (EventSource).
	QueryTokenPaths []string
}

// accessClaims is the subset of the hosted auth provider's access token we read.
type accessClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// authError is returned to the client as a 401 ErrorBody.
type authError struct {
	code string
	msg  string
}

var (
	errMissingHeader = authError{"MISSING_AUTH_HEADER", "Authorization header required"}
	errBadFormat     = authError{"INVALID_AUTH_FORMAT", "Invalid authorization header format. Expected: Bearer <token>"}
	errBadToken      = authError{"INVALID_TOKEN", "Invalid or expired token"}
	errBadClaims     = authError{"INVALID_CLAIMS", "Invalid token claims"}
)

func (e authError) httpError() *echo.HTTPError {
	return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorBody{Error: e.msg, Code: e.code})
}

// JWTMiddleware validates HS256 access tokens issued by the hosted auth
// provider and stores the actor (sub, email) in the request context.
func JWTMiddleware(config JWTConfig) echo.MiddlewareFunc {
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if config.Audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(config.Audience))
	}
	parser := jwt.NewParser(parserOpts...)
	keyFunc := func(*jwt.Token) (interface{}, error) { return []byte(config.Secret), nil }

	queryPaths := make(map[string]struct{}, len(config.QueryTokenPaths))
	for _, p := range config.QueryTokenPaths {
		queryPaths[p] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			reject := func(e authError, fields ...zap.Field) error {
				config.Logger.Warn("Request not authenticated", append(fields,
					zap.String("code", e.code),
					zap.String("method", req.Method),
					zap.String("path", req.URL.Path))...)
				return e.httpError()
			}

			raw, authErr := bearerToken(c, queryPaths)
			if authErr != nil {
				return reject(*authErr)
			}

			var claims accessClaims
			if _, err := parser.ParseWithClaims(raw, &claims, keyFunc); err != nil {
				return reject(errBadToken, zap.Error(err))
			}

			userID, err := uuid.Parse(claims.Subject)
			if err != nil {
				return reject(errBadClaims, zap.String("sub", claims.Subject))
			}

			actor := entity.Actor{UserID: userID, Email: claims.Email}
			c.SetRequest(req.WithContext(WithActor(req.Context(), actor)))
			c.Set("user_id", userID.String())

			config.Logger.Debug("Request authenticated",
				zap.String("user_id", userID.String()),
				zap.String("path", req.URL.Path))
			return next(c)
		}
	}
}

// bearerToken reads the Authorization header, falling back to ?access_token=
// only on queryPaths.
func bearerToken(c echo.Context, queryPaths map[string]struct{}) (string, *authError) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		if _, ok := queryPaths[c.Request().URL.Path]; ok {
			if q := c.QueryParam("access_token"); q != "" {
				return q, nil
			}
		}
		return "", &errMissingHeader
	}

	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", &errBadFormat
	}
	return token, nil
}

// WithActor stores actor in ctx.
func WithActor(ctx context.Context, actor entity.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}

// ActorFromContext extracts the authenticated actor from ctx
func ActorFromContext(ctx context.Context) (entity.Actor, error) {
	actor, ok := ctx.Value(actorContextKey).(entity.Actor)
	if !ok || actor.UserID == uuid.Nil {
		return entity.Actor{}, fmt.Errorf("no authenticated user found in context")
	}
	return actor, nil
}

// RequireActor returns the actor or a 401 error for the echo error handler
func RequireActor(c echo.Context) (entity.Actor, error) {
	actor, err := ActorFromContext(c.Request().Context())
	if err != nil {
		return entity.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorBody{
			Error: "Authentication required",
			Code:  "AUTH_REQUIRED",
		})
	}
	return actor, nil
}
