package entity

import "time"

// User is the aggregate root for user accounts.
// Passwords are stored as bcrypt hashes in PasswordHash.
// Email doubles as the soft foreign key posts reference via AuthorID.
type User struct {
	Email        string
	PasswordHash string
	Name         string
	Role         Role
	CreatedAt    time.Time
}
