package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/staffdesk/staff-console/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCurrentUser_ReturnsMinimalProjection(t *testing.T) {
	store := newMemStore()
	seedDirectory(store)
	h, _ := newTestHandler(t, store)
	cookie := authCookie(t, h, 7, domain.RoleOwner)

	rec := doRequest(h, http.MethodGet, "/api/auth/me", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.Equal(t, float64(7), raw["id"])
	assert.Equal(t, "owner", raw["role"])
	// nothing beyond the projection needed for authorization decisions
	assert.Len(t, raw, 2)
}

func TestGetCurrentUser_WithoutSession(t *testing.T) {
	store := newMemStore()
	seedDirectory(store)
	h, _ := newTestHandler(t, store)

	rec := doRequest(h, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetCurrentUser_WithGarbageToken(t *testing.T) {
	store := newMemStore()
	seedDirectory(store)
	h, _ := newTestHandler(t, store)

	rec := doRequest(h, http.MethodGet, "/api/auth/me", "", &http.Cookie{Name: authCookieName, Value: "not-a-jwt"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetCurrentUser_DeletedAccountBehindSession(t *testing.T) {
	store := newMemStore()
	seedDirectory(store)
	h, _ := newTestHandler(t, store)
	cookie := authCookie(t, h, 99, domain.RoleMember)

	rec := doRequest(h, http.MethodGet, "/api/auth/me", "", cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
