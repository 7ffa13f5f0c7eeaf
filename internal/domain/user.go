package domain

import "time"

// UserRole gates moderation commands at the transport boundary.
type UserRole string

const (
	RoleUser  UserRole = "USER"
	RoleAdmin UserRole = "ADMIN"
)

// User is a chat user known to the service.
type User struct {
	ID            string
	ChatID        int64
	Role          UserRole
	SupportedGeos []Geo
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
