package access_test

import (
	"testing"

	"github.com/medistock/medistock-backend/pkg/access"
	"github.com/stretchr/testify/assert"
)

func TestCanAccess(t *testing.T) {
	tests := []struct {
		name       string
		userRoles  []access.Role
		required   []access.Role
		requireAny bool
		want       bool
	}{
		{
			name:       "pharmacist denied admin or store_manager route",
			userRoles:  []access.Role{access.RolePharmacist},
			required:   []access.Role{access.RoleAdmin, access.RoleStoreManager},
			requireAny: true,
			want:       false,
		},
		{
			name:       "pharmacist allowed pharmacist route",
			userRoles:  []access.Role{access.RolePharmacist},
			required:   []access.Role{access.RolePharmacist},
			requireAny: true,
			want:       true,
		},
		{
			name:       "zero roles always rejected",
			userRoles:  nil,
			required:   []access.Role{access.RolePharmacist},
			requireAny: true,
			want:       false,
		},
		{
			name:       "zero roles rejected even with no requirements",
			userRoles:  []access.Role{},
			required:   nil,
			requireAny: true,
			want:       false,
		},
		{
			name:       "empty requirements grant any staff user",
			userRoles:  []access.Role{access.RoleDoctor},
			required:   nil,
			requireAny: true,
			want:       true,
		},
		{
			name:       "require all needs full superset",
			userRoles:  []access.Role{access.RoleAdmin},
			required:   []access.Role{access.RoleAdmin, access.RoleStoreManager},
			requireAny: false,
			want:       false,
		},
		{
			name:       "require all satisfied by superset",
			userRoles:  []access.Role{access.RoleAdmin, access.RoleStoreManager, access.RolePharmacist},
			required:   []access.Role{access.RoleAdmin, access.RoleStoreManager},
			requireAny: false,
			want:       true,
		},
		{
			name:       "require any satisfied by single intersection",
			userRoles:  []access.Role{access.RoleStoreManager},
			required:   []access.Role{access.RoleAdmin, access.RoleStoreManager},
			requireAny: true,
			want:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := access.CanAccess(tt.userRoles, tt.required, tt.requireAny)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsStaff(t *testing.T) {
	assert.False(t, access.IsStaff(nil))
	assert.False(t, access.IsStaff([]access.Role{}))
	assert.True(t, access.IsStaff([]access.Role{access.RoleDoctor}))
}

func TestFromStrings_DropsUnknownRoles(t *testing.T) {
	roles := access.FromStrings([]string{"admin", "superuser", "pharmacist", ""})
	assert.Equal(t, []access.Role{access.RoleAdmin, access.RolePharmacist}, roles)
}

func TestIsValidRole(t *testing.T) {
	assert.True(t, access.IsValidRole(access.RoleStoreManager))
	assert.False(t, access.IsValidRole(access.Role("manager")))
}
