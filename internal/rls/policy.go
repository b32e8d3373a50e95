// Package rls defines the row-level security policy for the sales table.
// Every query path that touches sales must obtain its predicate here; the
// sale repository refuses to run without one.
package rls

import (
	"time"

	"github.com/tirs/dashboard/internal/models"
)

// ManagerWindow is the rolling visibility window granted to managers.
const ManagerWindow = 90 * 24 * time.Hour

// Predicate is a SQL restriction over the sales table. Where is a fragment
// over sales columns with ? placeholders, rebound to the driver's bindvar
// style by the repository; an empty Where means unrestricted access.
type Predicate struct {
	Where string
	Args  []interface{}
}

// Unrestricted reports whether the predicate imposes no filter.
func (p Predicate) Unrestricted() bool {
	return p.Where == ""
}

// Scope maps (role, principal) to the caller's visibility predicate.
// The manager window is recomputed from now on every call, not snapshotted.
// Each tier gets exactly one restriction; predicates are never combined.
// An unknown role sees nothing.
func Scope(role models.Role, principalID int64, now time.Time) Predicate {
	switch role {
	case models.RoleAdmin:
		return Predicate{}
	case models.RoleManager:
		cutoff := now.UTC().Add(-ManagerWindow)
		return Predicate{Where: "date >= ?", Args: []interface{}{cutoff}}
	case models.RoleUser:
		return Predicate{Where: "user_id = ?", Args: []interface{}{principalID}}
	default:
		return Predicate{Where: "1 = 0"}
	}
}
