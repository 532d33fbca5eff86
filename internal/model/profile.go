package model

import "time"

// RoleAdmin is the only privileged role.
const RoleAdmin = "admin"

// Profile is a user record in the users collection.  The document id is
// the actor id carried by access tokens.
//
// Fields:
//
//	ID           – actor id.
//	Email        – unique, stored lower-cased.
//	Role         – "admin" or empty.
//	PasswordHash – bcrypt hash; never serialized to clients.
type Profile struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"passwordHash,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// IsAdmin reports whether the profile carries the admin role.
func (p Profile) IsAdmin() bool { return p.Role == RoleAdmin }
