// Package authroles assigns roles to new accounts.
package authroles

import (
	domainauth "github.com/jerseyretro/storefront/internal/domain/auth"
	"github.com/jerseyretro/storefront/internal/domain/model"
)

// StaticRoleMapper grants the admin role to a fixed set of email addresses.
type StaticRoleMapper struct {
	admins map[string]struct{}
}

// NewStaticRoleMapper builds a mapper from adminEmails. Blank entries are ignored.
func NewStaticRoleMapper(adminEmails []string) StaticRoleMapper {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		if e = model.NormalizeEmail(e); e != "" {
			admins[e] = struct{}{}
		}
	}
	return StaticRoleMapper{admins: admins}
}

// RoleFor compares case-insensitively after trimming.
func (m StaticRoleMapper) RoleFor(email string) domainauth.Role {
	_, ok := m.admins[model.NormalizeEmail(email)]
	return domainauth.RoleFromAdmin(ok)
}
