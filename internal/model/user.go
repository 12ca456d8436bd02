package model

import "time"

// User roles.
const (
	RoleEngineer   = "engineer"
	RoleSupervisor = "supervisor"
	RoleAdmin      = "admin"
)

// User is a subject on whose behalf time is tracked.
type User struct {
	ID             int64     `json:"id" db:"id"`
	Handle         string    `json:"handle" db:"handle"`
	DisplayName    string    `json:"display_name" db:"display_name"`
	CredentialHash string    `json:"-" db:"credential_hash"`
	Role           string    `json:"role" db:"role"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// NewUser carries the fields for registering a subject.
type NewUser struct {
	Handle         string `json:"handle" validate:"required,max=80"`
	DisplayName    string `json:"display_name" validate:"max=120"`
	CredentialHash string `json:"-"`
	Role           string `json:"role" validate:"omitempty,oneof=engineer supervisor admin"`
}
