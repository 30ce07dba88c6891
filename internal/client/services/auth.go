package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/arkadconsole/internal/client/client"
	"github.com/dmitrijs2005/arkadconsole/internal/client/models"
)

// Accounts covers the password and signup screens. Every body is sealed.
type Accounts struct {
	api API
}

func NewAccounts(api API) *Accounts {
	return &Accounts{api: api}
}

// ChangePassword changes username's password and returns the server message.
func (a *Accounts) ChangePassword(ctx context.Context, username string, f models.ChangePasswordForm) (string, error) {
	reply, err := a.api.SendEncrypted(ctx, http.MethodPut, client.PathChangePassword, map[string]string{
		"username":    username,
		"oldPassword": f.OldPassword,
		"newPassword": f.NewPassword,
	})
	if err != nil {
		return "", fmt.Errorf("change password: %w", err)
	}
	return reply.Message, nil
}

// ResetPassword asks the server to mail a new password to username.
func (a *Accounts) ResetPassword(ctx context.Context, f models.ResetPasswordForm) (string, error) {
	reply, err := a.api.SendEncrypted(ctx, http.MethodPut, client.PathResetPassword, map[string]string{
		"username": f.Username,
	})
	if err != nil {
		return "", fmt.Errorf("reset password: %w", err)
	}
	return reply.Message, nil
}

// Signup creates a console account.
func (a *Accounts) Signup(ctx context.Context, f models.SignupForm) (string, error) {
	reply, err := a.api.SendEncrypted(ctx, http.MethodPost, client.PathSignup, f)
	if err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}
	return reply.Message, nil
}
