package domain

import "time"

// Role represents a user's permission level.
type Role string

// User roles.
const (
	RoleViewer Role = "viewer"
	RoleAdmin  Role = "admin"
)

// roleLevels maps roles to numeric permission levels for comparison.
var roleLevels = map[Role]int{
	RoleViewer: 1,
	RoleAdmin:  2,
}

// HasPermission returns true if the role grants at least the given role's level.
func (r Role) HasPermission(required Role) bool {
	return roleLevels[r] >= roleLevels[required]
}

// IsValid checks if the role is valid.
func (r Role) IsValid() bool {
	_, ok := roleLevels[r]
	return ok
}

// User represents an admin panel account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RefreshToken represents a stored refresh token.
type RefreshToken struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TokenHash string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
