// Package model defines domain entities for the application.
package model

import "time"

// Account represents a registered user credential record.
// PasswordHash never leaves the repository/service boundary.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
