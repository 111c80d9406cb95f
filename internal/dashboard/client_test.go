package dashboard

import (
	"context"
	"net/http"
	"testing"

	"github.com/staffdesk/staff-console/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_CurrentUserErrorKind(t *testing.T) {
	api := &fakeAPI{meStatus: http.StatusUnauthorized}
	srv := api.server(t)
	client := NewClient(srv.URL, srv.Client())

	_, err := client.CurrentUser(context.Background())
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestClient_ListUsersErrorKind(t *testing.T) {
	api := &fakeAPI{listFails: true}
	srv := api.server(t)
	client := NewClient(srv.URL, srv.Client())

	_, err := client.ListUsers(context.Background())
	assert.ErrorIs(t, err, ErrDirectoryUnavailable)
}

func TestClient_UpdateUserFieldErrorKind(t *testing.T) {
	api := &fakeAPI{patchStatus: http.StatusForbidden}
	srv := api.server(t)
	client := NewClient(srv.URL, srv.Client())

	err := client.UpdateUserField(context.Background(), 42, FieldRole, "owner")
	assert.ErrorIs(t, err, ErrUpdateFailed)
}

func TestClient_ListUsersKeepsServerOrder(t *testing.T) {
	api := &fakeAPI{users: directoryUsers()}
	srv := api.server(t)
	client := NewClient(srv.URL, srv.Client())

	users, err := client.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, int64(7), users[0].ID)
	assert.Equal(t, int64(42), users[1].ID)
	assert.Equal(t, int64(1), users[2].ID)
	assert.Equal(t, domain.RoleMember, users[1].Role)
}
