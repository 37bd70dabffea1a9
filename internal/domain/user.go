package domain

import (
	"strings"
	"time"
)

// DefaultAvatar is assigned to every user created through login or signup.
const DefaultAvatar = "https://images.unsplash.com/photo-1535713875002-d1d0cf377fde?w=200&auto=format&fit=crop"

// DefaultCity is the home city given to new users.
const DefaultCity = "New York"

// User is the simulated account attached to a browser profile.
type User struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Avatar     string    `json:"avatar"`
	JoinedDate time.Time `json:"joined_date"`
	City       string    `json:"city"`
}

// ProfileUpdate carries the fields a user may change about themselves.
// Nil fields are left untouched.
type ProfileUpdate struct {
	Name   *string `json:"name,omitempty"`
	Email  *string `json:"email,omitempty"`
	Avatar *string `json:"avatar,omitempty"`
	City   *string `json:"city,omitempty"`
}

// IsEmpty reports whether the update carries no fields.
func (p ProfileUpdate) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Avatar == nil && p.City == nil
}

// Apply merges the non-nil fields of p into a copy of u and returns it.
func (p ProfileUpdate) Apply(u User) User {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
	if p.City != nil {
		u.City = *p.City
	}
	return u
}

// NameFromEmail returns the local part of an email address.
// Strings without "@" are returned whole.
func NameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}
