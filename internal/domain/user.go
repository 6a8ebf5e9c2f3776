package domain

import (
	"strings"
	"time"
)

// User represents a registered marketplace user
type User struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	WalletAddress string    `json:"wallet_address,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Validate validates all user fields
func (u *User) Validate() error {
	if err := u.ValidateName(); err != nil {
		return err
	}
	if err := u.ValidateEmail(); err != nil {
		return err
	}
	return nil
}

// ValidateName validates the user name
func (u *User) ValidateName() error {
	if strings.TrimSpace(u.Name) == "" {
		return ErrInvalidName
	}
	return nil
}

// ValidateEmail validates the email address
func (u *User) ValidateEmail() error {
	email := strings.TrimSpace(u.Email)
	if email == "" {
		return ErrInvalidEmail
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 || !strings.Contains(email[at:], ".") {
		return ErrInvalidEmail
	}
	return nil
}

// HasWallet reports whether the user has a wallet address on file
func (u *User) HasWallet() bool {
	return strings.TrimSpace(u.WalletAddress) != ""
}
