package cli

import (
	"context"
	"time"

	"github.com/dmitrijs2005/arkadconsole/internal/client/controller"
	"github.com/dmitrijs2005/arkadconsole/internal/client/models"
	"github.com/dmitrijs2005/arkadconsole/internal/client/session"
	"github.com/dmitrijs2005/arkadconsole/internal/common"
)

// resetSuccessTTL keeps the reset confirmation up long enough to read.
const resetSuccessTTL = 15 * time.Second

// getPassword is an indirection used to facilitate testing.
var getPassword = GetPassword

// Login prompts for credentials and opens a session. The password is wiped
// before returning.
func (a *App) Login(ctx context.Context) error {
	username, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	s, err := a.session.Login(ctx, session.Credentials{Username: username, Password: string(password)})
	if err != nil {
		a.log.Warn(ctx, "login failed", "username", username, "error", err)
		return a.fail(err, "Login failed. Please check your credentials and try again.")
	}

	a.expired.Store(false)
	a.idle.Touch()
	a.show(controller.KindSuccess, "Welcome, "+displayName(s.Identity), 0)
	return nil
}

// Logout ends the session and removes the stored credentials.
func (a *App) Logout(ctx context.Context, _ []string) error {
	if err := a.session.Logout(ctx); err != nil {
		return a.fail(err, "Logout failed.")
	}
	a.println("Logged out.")
	return nil
}

func (a *App) whoami(_ context.Context, _ []string) error {
	s, ok := a.session.Current()
	if !ok {
		return common.ErrNoSession
	}
	a.printf("%s <%s> role: %s\n", displayName(s.Identity), s.Identity.Username, s.Identity.Role)
	return nil
}

func (a *App) changePassword(ctx context.Context, _ []string) error {
	s, ok := a.session.Current()
	if !ok {
		return common.ErrNoSession
	}

	var form models.ChangePasswordForm
	for _, p := range []struct {
		prompt string
		dst    *string
	}{
		{"Current password", &form.OldPassword},
		{"New password", &form.NewPassword},
		{"Confirm new password", &form.ConfirmPassword},
	} {
		pw, err := getPassword(a.out, p.prompt)
		if err != nil {
			return err
		}
		*p.dst = string(pw)
		common.WipeByteArray(pw)
	}

	return runForm(ctx, a, controller.Config[models.ChangePasswordForm]{
		Name: "account.password",
		Submit: func(ctx context.Context, f *models.ChangePasswordForm) error {
			_, err := a.accounts.ChangePassword(ctx, s.Identity.Username, *f)
			return err
		},
		SuccessMessage:  "Password changed successfully",
		FailureFallback: "Failed to change password.",
	}, &form)
}

func (a *App) resetPassword(ctx context.Context, _ []string) error {
	email, err := GetSimpleText(a.reader, "Account email", a.out)
	if err != nil {
		return err
	}

	form := models.ResetPasswordForm{Username: email}
	return runForm(ctx, a, controller.Config[models.ResetPasswordForm]{
		Name: "account.reset",
		Submit: func(ctx context.Context, f *models.ResetPasswordForm) error {
			_, err := a.accounts.ResetPassword(ctx, *f)
			return err
		},
		SuccessMessage:  "A new password has been sent to your email",
		SuccessTTL:      resetSuccessTTL,
		FailureFallback: "Failed to reset password.",
	}, &form)
}
