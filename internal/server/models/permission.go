package models

import (
	"fmt"

	"github.com/dmitrijs2005/docvault/internal/common"
)

// Permission is the level a ShareGrant confers. Levels are ordered
// read < write < admin and each implies the ones below it.
type Permission string

const (
	PermissionRead  Permission = "read"
	PermissionWrite Permission = "write"
	PermissionAdmin Permission = "admin"
)

// ParsePermission validates a wire value.
func ParsePermission(s string) (Permission, error) {
	p := Permission(s)
	if !p.Valid() {
		return "", fmt.Errorf("%w: unknown permission %q", common.ErrorValidation, s)
	}
	return p, nil
}

// Rank returns the position of p in the ordering, 0 for unknown values.
func (p Permission) Rank() int {
	switch p {
	case PermissionRead:
		return 1
	case PermissionWrite:
		return 2
	case PermissionAdmin:
		return 3
	default:
		return 0
	}
}

func (p Permission) Valid() bool { return p.Rank() > 0 }

// Implies reports whether holding p is enough for other.
func (p Permission) Implies(other Permission) bool {
	return p.Valid() && other.Valid() && p.Rank() >= other.Rank()
}
