package session

import (
	"github.com/labstack/echo/v4"

	"tourdesk/internal/model"
)

// User is an immutable snapshot of the authenticated account, built by
// the auth middleware from the token claims. Consumers read it; only
// login produces one.
type User struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// IsAdmin reports whether the session belongs to an admin account.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == model.RoleAdmin
}

const contextKey = "session_user"

// Attach stores the session snapshot on the request context.
func Attach(c echo.Context, u *User) {
	c.Set(contextKey, u)
}

// FromContext retrieves the session snapshot, nil when unauthenticated.
func FromContext(c echo.Context) *User {
	if u, ok := c.Get(contextKey).(*User); ok {
		return u
	}
	return nil
}
