package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleValid(t *testing.T) {
	for _, role := range Roles() {
		assert.True(t, role.Valid())
	}
	assert.False(t, Role("superuser").Valid())
	assert.False(t, Role("").Valid())
}

func TestDepartmentValid(t *testing.T) {
	for _, department := range Departments() {
		assert.True(t, department.Valid())
	}
	assert.False(t, Department("Finance").Valid())
	assert.False(t, Department("").Valid())
}

func TestUserJSONHidesPasswordHash(t *testing.T) {
	user := User{ID: 1, Email: "ada@staffdesk.example", PasswordHash: "secret", Role: RoleAdmin}

	data, err := json.Marshal(user)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.NotContains(t, raw, "passwordHash")
	assert.NotContains(t, raw, "PasswordHash")
}
