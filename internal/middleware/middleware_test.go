package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cmh-events/backend/internal/auth"
	"github.com/cmh-events/backend/pkg/response"
)

type memSessions struct {
	revoked map[string]bool
}

func newMemSessions() *memSessions {
	return &memSessions{revoked: make(map[string]bool)}
}

func (m *memSessions) Revoke(_ context.Context, sessionID string, _ time.Duration) error {
	m.revoked[sessionID] = true
	return nil
}

func (m *memSessions) IsRevoked(_ context.Context, sessionID string) (bool, error) {
	return m.revoked[sessionID], nil
}

type memFlags struct {
	admins map[uuid.UUID]bool
	err    error
}

func (m *memFlags) IsAdmin(_ context.Context, id uuid.UUID) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.admins[id], nil
}

func protectedRouter(jwtSvc *auth.JWTService, sessions auth.SessionStore, hits *int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me/events", RequireSession(jwtSvc, sessions), func(c *gin.Context) {
		*hits++
		response.OK(c, gin.H{"user_id": c.MustGet(auth.ContextUserID)})
	})
	return r
}

func get(router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRequireSessionBlocksBeforeAnyDataAccess(t *testing.T) {
	jwtSvc := auth.NewJWTService("test-secret", 1)
	hits := 0
	router := protectedRouter(jwtSvc, newMemSessions(), &hits)

	tests := []struct {
		name  string
		token string
	}{
		{name: "no token", token: ""},
		{name: "garbage token", token: "not.a.token"},
		{name: "wrong secret", token: mustToken(t, auth.NewJWTService("other-secret", 1))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(router, "/me/events", tt.token)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
	assert.Zero(t, hits, "the view must never run without a session")
}

func TestRequireSessionPassesIdentityThrough(t *testing.T) {
	jwtSvc := auth.NewJWTService("test-secret", 1)
	hits := 0
	router := protectedRouter(jwtSvc, newMemSessions(), &hits)

	rec := get(router, "/me/events", mustToken(t, jwtSvc))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, hits)
}

func TestRequireSessionRejectsRevoked(t *testing.T) {
	jwtSvc := auth.NewJWTService("test-secret", 1)
	sessions := newMemSessions()
	hits := 0
	router := protectedRouter(jwtSvc, sessions, &hits)

	token := mustToken(t, jwtSvc)
	claims, err := jwtSvc.Validate(token)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, get(router, "/me/events", token).Code)

	require.NoError(t, sessions.Revoke(context.Background(), claims.ID, time.Hour))
	assert.Equal(t, http.StatusUnauthorized, get(router, "/me/events", token).Code,
		"a signed-out session is dead even before the token expires")
}

func TestLogoutEndsTheSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	jwtSvc := auth.NewJWTService("test-secret", 1)
	sessions := newMemSessions()

	h := auth.NewHandler(nil, jwtSvc, sessions, nil, nil, "", zap.NewNop())
	r := gin.New()
	guarded := r.Group("", RequireSession(jwtSvc, sessions))
	guarded.POST("/auth/logout", h.Logout)
	guarded.GET("/me/events", func(c *gin.Context) { response.OK(c, nil) })

	token := mustToken(t, jwtSvc)
	assert.Equal(t, http.StatusOK, get(r, "/me/events", token).Code)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	assert.Equal(t, http.StatusUnauthorized, get(r, "/me/events", token).Code)
}

func TestRequireAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	adminID := uuid.New()
	organizerID := uuid.New()

	newRouter := func(flags AdminFlagSource, as uuid.UUID) *gin.Engine {
		r := gin.New()
		r.GET("/admin/events", func(c *gin.Context) {
			c.Set(auth.ContextUserID, as)
			c.Next()
		}, RequireAdmin(flags), func(c *gin.Context) {
			response.OK(c, nil)
		})
		return r
	}

	flags := &memFlags{admins: map[uuid.UUID]bool{adminID: true}}

	rec := get(newRouter(flags, adminID), "/admin/events", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = get(newRouter(flags, organizerID), "/admin/events", "")
	assert.Equal(t, http.StatusForbidden, rec.Code, "authenticated but not an administrator")

	broken := &memFlags{err: errors.New("db down")}
	rec = get(newRouter(broken, adminID), "/admin/events", "")
	assert.Equal(t, http.StatusForbidden, rec.Code, "a failed flag fetch is treated as not-admin")
}

func mustToken(t *testing.T, svc *auth.JWTService) string {
	t.Helper()
	token, err := svc.Generate(uuid.New(), "organizer@example.com")
	require.NoError(t, err)
	return token
}
