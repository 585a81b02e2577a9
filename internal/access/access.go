// Package access decides who may change a record.
package access

import (
	"strings"

	"github.com/Veraticus/homehub/internal/common"
)

// Built-in admin aliases accepted alongside the configured admin name.
var builtinAdmins = []string{"Administrator", "admin"}

// Policy implements creator-or-admin authorization.
type Policy struct {
	adminName string
}

// NewPolicy returns a policy for the configured admin name.
func NewPolicy(adminName string) Policy {
	return Policy{adminName: strings.TrimSpace(adminName)}
}

// AdminName is the configured admin identity.
func (p Policy) AdminName() string {
	return p.adminName
}

// IsAdmin reports whether user is the configured admin or a built-in alias.
func (p Policy) IsAdmin(user string) bool {
	user = strings.TrimSpace(user)
	if user == "" {
		return false
	}
	if p.adminName != "" && user == p.adminName {
		return true
	}
	for _, alias := range builtinAdmins {
		if user == alias {
			return true
		}
	}
	return false
}

// IsOwnerAdmin reports whether user is exactly the configured admin. Settings
// changes require this stricter check.
func (p Policy) IsOwnerAdmin(user string) bool {
	user = strings.TrimSpace(user)
	return user != "" && user == p.adminName
}

// CanModify reports whether user may change a record created by owner.
// Anonymous users may never modify anything.
func (p Policy) CanModify(user, owner string) bool {
	user = strings.TrimSpace(user)
	if user == "" {
		return false
	}
	return user == strings.TrimSpace(owner) || p.IsAdmin(user)
}

// Authorize returns a wrapped common.ErrForbidden when user may not modify a
// record created by owner.
func (p Policy) Authorize(user, owner, action string) error {
	if p.CanModify(user, owner) {
		return nil
	}
	return common.Forbidden(action)
}
