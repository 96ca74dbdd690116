package domain

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// maxInitials caps how many letters Initials returns.
const maxInitials = 3

// Customer is the trainer-facing view of a customer account.
type Customer struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Initials   string    `json:"initials"`
	AssignedAt time.Time `json:"assignedAt"`
}

// NewCustomer builds the trainer-facing view of a customer user.
func NewCustomer(u *User) Customer {
	c := Customer{
		ID:       u.ID.Hex(),
		Email:    u.Email,
		Name:     u.Name,
		Initials: Initials(u.Email),
	}
	if u.TrainerAssignedAt != nil {
		c.AssignedAt = *u.TrainerAssignedAt
	}
	return c
}

// Initials derives avatar initials from an email address: the first letter of
// each dot-separated part of the local part, upper-cased, at most three.
//
//	john.doe@example.com -> "JD"
//	single@example.com   -> "S"
func Initials(email string) string {
	local, _, _ := strings.Cut(strings.TrimSpace(email), "@")

	var b strings.Builder
	n := 0
	for _, part := range strings.Split(local, ".") {
		if part == "" {
			continue
		}
		r, _ := utf8.DecodeRuneInString(part)
		b.WriteRune(unicode.ToUpper(r))
		n++
		if n == maxInitials {
			break
		}
	}
	if n == 0 {
		return "?"
	}
	return b.String()
}
