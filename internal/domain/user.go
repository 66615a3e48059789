package domain

import "time"

// Role define el rol de un usuario dentro del marketplace.
type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleCustomer Role = "Customer"
)

type User struct {
	ID               int64     `json:"id"`
	Email            string    `json:"email"`
	Username         string    `json:"username"`
	PasswordHash     string    `json:"-"`
	Fullname         string    `json:"fullname,omitempty"`
	Photo            string    `json:"photo,omitempty"`
	Role             Role      `json:"role"`
	IsVerified       bool      `json:"is_verified"`
	RefreshTokenHash *string   `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
}
