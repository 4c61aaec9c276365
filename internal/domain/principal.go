package domain

import "github.com/google/uuid"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type Principal struct {
	ID   uuid.UUID
	Role string
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// CartEligible reports whether the principal owns a cart. Admins do not.
func (p Principal) CartEligible() bool { return !p.IsAdmin() }
