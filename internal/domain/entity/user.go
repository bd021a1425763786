// Package entity contains the core business objects of the shop,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is a shop customer or staff member. Customers usually arrive through
// the Telegram bot; staff log in with email and password.
type User struct {
	ID           uuid.UUID // The Global Unique Identifier (GUID) for the user.
	TelegramID   *int64    // Telegram user id, also the private chat id used for newsletters.
	Username     string    // Telegram @username, may be empty.
	FirstName    string
	LastName     string
	Phone        string
	Email        *string // Login identifier for staff accounts.
	PasswordHash string  // Empty for Telegram-only customers.
	IsVerified   bool    // Contact data confirmed by an operator.
	AgeVerified  bool    // Customer confirmed to be of legal age for pyrotechnics.
	IsAdmin      bool
	IsSuperuser  bool
	CreatedAt    time.Time // Used for newsletter account-age targeting.
	UpdatedAt    time.Time
}

// FullName joins first and last name.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	if u.FirstName == "" {
		return u.LastName
	}

	return u.FirstName + " " + u.LastName
}

// Roles derives the authorization roles carried in access tokens.
func (u *User) Roles() Roles {
	roles := Roles{RoleUser}
	if u.IsAdmin || u.IsSuperuser {
		roles = append(roles, RoleAdmin)
	}
	if u.IsSuperuser {
		roles = append(roles, RoleSuperuser)
	}

	return roles
}

// IsStaff reports whether the user may log in to the back office.
func (u *User) IsStaff() bool {
	return u.IsAdmin || u.IsSuperuser
}

// TelegramProfile is the identity the bot or the login widget reports for a Telegram user.
type TelegramProfile struct {
	TelegramID int64
	Username   string
	FirstName  string
	LastName   string
}
