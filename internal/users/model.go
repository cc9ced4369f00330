package users

import "time"

// User is a registered account. PasswordHash is a bcrypt hash.
type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
