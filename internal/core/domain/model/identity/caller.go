// Package identity describes who is calling the ordering core.
// Authentication itself happens outside; this package only models its result.
package identity

import (
	"fmt"
	"strings"

	"tableorder/internal/pkg/errs"
)

// Role is the capability level granted by the authentication layer.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
	RoleAdmin    Role = "admin"
)

// ParseRole accepts a role name in any letter case.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleCustomer, RoleStaff, RoleAdmin:
		return r, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a known role", s))
	}
}

func (r Role) String() string {
	return string(r)
}

// Caller is the authenticated identity attached to a request.
type Caller struct {
	UserID string
	Role   Role
}

// NewCaller validates the role; userID may be empty for anonymous table devices.
func NewCaller(userID string, role string) (Caller, error) {
	r, err := ParseRole(role)
	if err != nil {
		return Caller{}, err
	}
	return Caller{UserID: userID, Role: r}, nil
}

// CanManageOrders reports whether the caller may move orders through their lifecycle
// and watch every order. Only staff and admins can.
func (c Caller) CanManageOrders() bool {
	return c.Role == RoleStaff || c.Role == RoleAdmin
}
