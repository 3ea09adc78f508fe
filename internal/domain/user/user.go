package user

import (
	"errors"
	"time"
)

// Role is a closed set: authorization checks switch on it exhaustively and
// adding a role is an explicit code change, not a new string in the DB.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CanAccess is the ownership rule for every resource operation: admins may
// act on anything, everyone else only on their own records.
func (u User) CanAccess(ownerID string) bool {
	return u.Role == RoleAdmin || u.ID == ownerID
}

type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=128"`
	Role     Role   `json:"role" binding:"omitempty,oneof=user admin"`
}
