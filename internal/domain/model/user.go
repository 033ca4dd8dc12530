package model

import (
	"time"
)

const (
	RoleLearner    = "learner"
	RoleInstructor = "instructor"
	RoleAdmin      = "administrator"
)

// ValidRole reports whether role is one of the closed enumeration. Role is
// identity metadata only; review eligibility never depends on it.
func ValidRole(role string) bool {
	switch role {
	case RoleLearner, RoleInstructor, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"` // Not exposed
	Role           string    `json:"role"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
