package entity

import (
	"database/sql"
	"strings"
	"time"
)

type Account struct {
	ID                     uint64
	Email                  string
	Username               string
	PasswordDigest         string
	FirstName              string
	LastName               string
	Phone                  string
	Confirmed              bool
	Active                 bool
	HasAdminRight          bool
	FailedPasswordAttempts int
	AccessedAt             sql.NullTime
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// FullName joins first and last name, skipping whichever is empty.
// Derived, never persisted.
func (a *Account) FullName() string {
	if a.FirstName == "" && a.LastName == "" {
		return ""
	}
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}
