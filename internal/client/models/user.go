// Package models defines client-side data models for the AlphaWave dashboard.
package models

import "time"

// User is a registry record and the system of record for one account.
// The registry (users table) is authoritative; Session is always a derived,
// disposable view over one registry entry.
type User struct {
	// ID is an opaque unique identifier assigned at creation.
	ID string

	// Email is stored lowercased; uniqueness is enforced case-insensitively.
	Email string

	// PasswordDigest is the one-way digest of the password. It never leaves
	// the registry: Session carries a redacted copy without it.
	PasswordDigest string

	FullName    string
	Phone       string
	Gender      string
	DateOfBirth string

	CreatedAt time.Time

	// LastLogin is nil until the first successful login.
	LastLogin *time.Time
}

// Session is a redacted snapshot of exactly one User record, with the
// password digest stripped. At most one session exists per store at a time.
type Session struct {
	UserID      string
	Email       string
	FullName    string
	Phone       string
	Gender      string
	DateOfBirth string
	CreatedAt   time.Time
	LastLogin   *time.Time
}

// RegisterInput carries the fields of the sign-up form.
type RegisterInput struct {
	Email           string
	Password        string
	ConfirmPassword string
	FullName        string
	Phone           string
	Gender          string
	DateOfBirth     string
}

// ProfilePatch enumerates the updatable profile fields. A nil field means
// "leave unchanged"; fields are validated before the merge.
type ProfilePatch struct {
	FullName    *string
	Phone       *string
	Gender      *string
	DateOfBirth *string
}
