package entity

import "time"

// Roles de usuario dentro de una agencia.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// User representa un usuario de una agencia.
type User struct {
	ID           string
	AgencyID     string
	Email        string
	PasswordHash string
	Name         string
	Role         string // admin | member
	Status       string // active | disabled
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
