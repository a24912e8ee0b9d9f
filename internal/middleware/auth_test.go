package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func adminChain(handler http.Handler) http.Handler {
	logger := zap.NewNop()
	return AuthMiddleware(testSecret, logger)(RequireAdmin(logger)(handler))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func serveWithToken(handler http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/product", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

// Feature: storefront, Property: catalog mutations reject missing tokens
func TestProperty_ProtectedEndpointsRejectMissingTokens(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("requests without a bearer token are rejected", prop.ForAll(
		func(header string, method string) bool {
			req := httptest.NewRequest(method, "/product", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			w := httptest.NewRecorder()
			adminChain(okHandler()).ServeHTTP(w, req)
			return w.Code == http.StatusUnauthorized
		},
		gen.OneConstOf("", "Bearer", "Bearer ", "Basic abc", "token"),
		gen.OneConstOf("POST", "PUT", "DELETE"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Feature: storefront, Property: expired tokens are rejected
func TestProperty_ExpiredTokensAreRejected(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("expired tokens are rejected with 401", prop.ForAll(
		func(subject string) bool {
			token, err := IssueToken(testSecret, subject, RoleAdmin, -time.Hour)
			if err != nil {
				return false
			}
			w := serveWithToken(adminChain(okHandler()), token)
			return w.Code == http.StatusUnauthorized
		},
		gen.Identifier(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestAuth_AdminTokenIsAccepted(t *testing.T) {
	var seenUser, seenRole string
	handler := adminChain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUser, _ = GetUserID(r.Context())
		seenRole, _ = GetUserRole(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	token, err := IssueToken(testSecret, "ops-1", RoleAdmin, time.Hour)
	require.NoError(t, err)

	w := serveWithToken(handler, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ops-1", seenUser)
	assert.Equal(t, RoleAdmin, seenRole)
}

func TestAuth_LegacyUserIDClaim(t *testing.T) {
	claims := jwt.MapClaims{
		"user_id": "legacy-7",
		"role":    RoleAdmin,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, serveWithToken(adminChain(okHandler()), token).Code)
}

func TestAuth_NonAdminIsForbidden(t *testing.T) {
	token, err := IssueToken(testSecret, "shopper", "user", time.Hour)
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, serveWithToken(adminChain(okHandler()), token).Code)
}

func TestAuth_RejectsForeignSignatures(t *testing.T) {
	token, err := IssueToken("some-other-secret", "ops-1", RoleAdmin, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, serveWithToken(adminChain(okHandler()), token).Code)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "x", "role": RoleAdmin}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, serveWithToken(adminChain(okHandler()), unsigned).Code)
}

func TestAuth_MissingRoleClaim(t *testing.T) {
	claims := jwt.MapClaims{"sub": "ops-1", "exp": time.Now().Add(time.Hour).Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, serveWithToken(adminChain(okHandler()), token).Code)
}

func TestRequireRole_WithoutAuthIsForbidden(t *testing.T) {
	w := httptest.NewRecorder()
	RequireRole([]string{"staff"}, zap.NewNop())(okHandler()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}
