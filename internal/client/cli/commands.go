package cli

import (
	"github.com/dmitrijs2005/arkadconsole/internal/client/session"
)

func (a *App) commandTable() []command {
	cmds := []command{
		{name: "reset-password", help: "send a new password to an account email", public: true, run: a.resetPassword},
		{name: "whoami", help: "show the signed-in user", run: a.whoami},
		{name: "passwd", help: "change your password", cap: session.CapChangePassword, run: a.changePassword},
		{name: "logout", help: "sign out", run: a.Logout},
	}
	cmds = append(cmds, a.achievements.commands(a)...)
	cmds = append(cmds, a.activities.commands(a)...)
	cmds = append(cmds, a.leaders.commands(a)...)
	cmds = append(cmds, a.media.commands(a)...)
	cmds = append(cmds, a.peopleCommands()...)
	cmds = append(cmds, a.donationCommands()...)
	return append(cmds,
		command{name: "newsletter", sub: "send", help: "send a newsletter", cap: session.CapManageNewsletter, run: a.sendNewsletter},
	)
}
