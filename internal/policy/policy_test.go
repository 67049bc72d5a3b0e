package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/model"
)

func TestCanLogin(t *testing.T) {
	cases := []struct {
		endpoint, role model.Role
		want           bool
	}{
		{model.RoleSuperadmin, model.RoleSuperadmin, true},
		{model.RoleSuperadmin, model.RoleAdmin, false},
		{model.RoleAdmin, model.RoleAdmin, true},
		{model.RoleAdmin, model.RoleKasir, false},
		{model.RoleGudang, model.RoleGudang, true},
		{model.RoleGudang, model.RoleAdmin, true},
		{model.RoleGudang, model.RoleKasir, false},
		{model.RoleKasir, model.RoleKasir, true},
		{model.RoleKasir, model.RoleAdmin, true},
		{model.RoleKasir, model.RoleSuperadmin, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanLogin(tc.endpoint, tc.role), "%s endpoint, %s account", tc.endpoint, tc.role)
	}
}

func TestManagedRoles(t *testing.T) {
	assert.ElementsMatch(t, []model.Role{model.RoleAdmin, model.RoleGudang, model.RoleKasir}, ManagedRoles(model.RoleSuperadmin))
	assert.ElementsMatch(t, []model.Role{model.RoleGudang, model.RoleKasir}, ManagedRoles(model.RoleAdmin))
	assert.Empty(t, ManagedRoles(model.RoleKasir))
	assert.False(t, CanManage(model.RoleAdmin, model.RoleAdmin))
	assert.True(t, CanManage(model.RoleSuperadmin, model.RoleAdmin))
}

func TestAllows(t *testing.T) {
	assert.True(t, Allows(model.RoleKasir, Sell))
	assert.False(t, Allows(model.RoleGudang, Sell))
	assert.True(t, Allows(model.RoleGudang, ReceiveStock))
	assert.False(t, Allows(model.RoleAdmin, TransferAdmin))
	assert.True(t, Allows(model.RoleSuperadmin, TransferAdmin))
	assert.False(t, Allows(model.Role("owner"), ViewCatalog))
}

func TestSessionReuseWindow(t *testing.T) {
	assert.Equal(t, 30*time.Minute, SessionReuseWindow(model.RoleSuperadmin, 30*time.Minute))
	assert.Zero(t, SessionReuseWindow(model.RoleKasir, 30*time.Minute))
}
