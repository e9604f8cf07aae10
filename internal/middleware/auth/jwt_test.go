package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testSecret = "test-secret"
	testUserID = "550e8400-e29b-41d4-a716-446655440000"
)

func signToken(t *testing.T, claims jwt.MapClaims, method jwt.SigningMethod, key interface{}) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":   testUserID,
		"email": "merchant@example.com",
		"role":  "authenticated",
		"aud":   "authenticated",
		"exp":   time.Now().Add(time.Hour).Unix(),
		"iat":   time.Now().Unix(),
	}
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	mw := JWTMiddleware(JWTConfig{
		Secret:          testSecret,
		Logger:          zap.NewNop(),
		Audience:        "authenticated",
		QueryTokenPaths: []string{"/api/v1/notifications/stream"},
	})
	handler := func(c echo.Context) error {
		actor, err := RequireActor(c)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, echo.Map{"user_id": actor.UserID.String(), "email": actor.Email})
	}
	e.GET("/api/v1/payments", handler, mw)
	e.GET("/api/v1/notifications/stream", handler, mw)
	return e
}

func TestJWTMiddleware(t *testing.T) {
	expired := validClaims()
	expired["exp"] = time.Now().Add(-time.Minute).Unix()

	wrongAud := validClaims()
	wrongAud["aud"] = "anon"

	badSub := validClaims()
	badSub["sub"] = "not-a-uuid"

	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
		wantCode   string
	}{
		{"valid token", "/api/v1/payments", "Bearer " + signToken(t, validClaims(), jwt.SigningMethodHS256, []byte(testSecret)), http.StatusOK, ""},
		{"missing header", "/api/v1/payments", "", http.StatusUnauthorized, "MISSING_AUTH_HEADER"},
		{"no bearer prefix", "/api/v1/payments", "Token abc", http.StatusUnauthorized, "INVALID_AUTH_FORMAT"},
		{"wrong secret", "/api/v1/payments", "Bearer " + signToken(t, validClaims(), jwt.SigningMethodHS256, []byte("other")), http.StatusUnauthorized, "INVALID_TOKEN"},
		{"expired", "/api/v1/payments", "Bearer " + signToken(t, expired, jwt.SigningMethodHS256, []byte(testSecret)), http.StatusUnauthorized, "INVALID_TOKEN"},
		{"wrong audience", "/api/v1/payments", "Bearer " + signToken(t, wrongAud, jwt.SigningMethodHS256, []byte(testSecret)), http.StatusUnauthorized, "INVALID_TOKEN"},
		{"none algorithm", "/api/v1/payments", "Bearer " + signToken(t, validClaims(), jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType), http.StatusUnauthorized, "INVALID_TOKEN"},
		{"subject not uuid", "/api/v1/payments", "Bearer " + signToken(t, badSub, jwt.SigningMethodHS256, []byte(testSecret)), http.StatusUnauthorized, "INVALID_CLAIMS"},
	}

	e := newTestEcho()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				assert.Contains(t, rec.Body.String(), tt.wantCode)
			} else {
				assert.Contains(t, rec.Body.String(), testUserID)
			}
		})
	}
}

func TestJWTMiddleware_QueryTokenOnlyOnStream(t *testing.T) {
	e := newTestEcho()
	token := signToken(t, validClaims(), jwt.SigningMethodHS256, []byte(testSecret))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/notifications/stream?access_token="+token, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/payments?access_token="+token, nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
