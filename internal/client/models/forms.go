package models

import "strings"

type ChangePasswordForm struct {
	OldPassword     string `json:"oldPassword" validate:"required" label:"Old password"`
	NewPassword     string `json:"newPassword" validate:"required,password" label:"New password"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword" label:"Confirmation"`
}

type ResetPasswordForm struct {
	Username string `json:"username" validate:"required,email" label:"Email"`
}

// SignupForm creates a console account.
type SignupForm struct {
	Email     string `json:"email" validate:"required,email" label:"Email"`
	FirstName string `json:"firstName" validate:"required" label:"First name"`
	LastName  string `json:"lastName" validate:"required" label:"Last name"`
	Role      string `json:"role" validate:"required,oneof=member admin super-admin" label:"Role"`
}

type DeclineForm struct {
	Reason string `json:"reason" validate:"required" label:"Reason"`
}

type Newsletter struct {
	Title   string   `json:"title" validate:"required" label:"Title"`
	Content string   `json:"content" validate:"required" label:"Content"`
	Sources []string `json:"sources"`
}

// ParseSources splits a comma separated list, dropping blanks.
func ParseSources(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
