package domain

import "time"

// User is an agent account belonging to one company.
type User struct {
	ID           int64
	CompanyID    int64
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}
