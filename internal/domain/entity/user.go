package entity

import "time"

// User is an account able to create travel requests. Users with the
// admin role additionally approve requests and decide cancellation
// handshakes. Account management itself lives outside this service;
// users are provisioned by seed migrations.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	APIToken  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
