package sochx_test

import (
	"testing"

	sochx "github.com/sochx/platform"
	"github.com/stretchr/testify/assert"
)

func TestUserRole_IsValid(t *testing.T) {
	t.Run("accepts every defined role", func(t *testing.T) {
		for _, role := range sochx.AllRoles() {
			assert.True(t, role.IsValid(), "role %s should be valid", role)
		}
	})

	t.Run("rejects unknown and empty roles", func(t *testing.T) {
		assert.False(t, sochx.UserRole("SUPERUSER").IsValid())
		assert.False(t, sochx.UserRole("student_researcher").IsValid())
		assert.False(t, sochx.UserRole("").IsValid())
	})
}

func TestUserRole_In(t *testing.T) {
	assert.True(t, sochx.RoleAdmin.In(sochx.RoleMentor, sochx.RoleAdmin))
	assert.False(t, sochx.RoleStudentResearcher.In(sochx.RoleMentor, sochx.RoleAdmin))
	assert.False(t, sochx.RoleStudentResearcher.In())
}

func TestParseRole(t *testing.T) {
	role, ok := sochx.ParseRole("MENTOR")
	assert.True(t, ok)
	assert.Equal(t, sochx.RoleMentor, role)

	_, ok = sochx.ParseRole("mentor")
	assert.False(t, ok)
}
