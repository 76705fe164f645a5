package domain

import "time"

// User is an account that owns orbs. Authentication is handled by the auth
// service; the orb domain only ever sees the user ID.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"displayName"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// InitTimestamps sets CreatedAt and UpdatedAt to now for a new user.
func (u *User) InitTimestamps() {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
}
