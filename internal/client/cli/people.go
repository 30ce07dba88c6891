package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/arkadconsole/internal/client/controller"
	"github.com/dmitrijs2005/arkadconsole/internal/client/liststore"
	"github.com/dmitrijs2005/arkadconsole/internal/client/models"
	"github.com/dmitrijs2005/arkadconsole/internal/client/report"
	"github.com/dmitrijs2005/arkadconsole/internal/client/session"
)

var memberColumns = []string{"ID", "Member No", "Name", "Email", "Gender", "Location", "Age", "Nationality"}

func memberRow(m models.Member) []string {
	return []string{string(m.ID), m.MemberNumber, m.FullName(), m.Email, m.Gender, m.Location, strconv.Itoa(m.Age), m.Nationality}
}

func (a *App) peopleCommands() []command {
	return []command{
		{name: "requests", sub: "list", args: "[page]", help: "list pending membership requests", cap: session.CapManageMembership, run: a.listRequests},
		{name: "requests", sub: "approve", args: "<id>", help: "approve a membership request", cap: session.CapManageMembership, run: a.approveRequest},
		{name: "requests", sub: "decline", args: "<id>", help: "decline a membership request", cap: session.CapManageMembership, run: a.declineRequest},
		{name: "members", sub: "list", args: "[page]", help: "list members", cap: session.CapManageMembership, run: a.listMembers},

		{name: "volunteers", sub: "list", args: "[page]", help: "list volunteers for the selected event", cap: session.CapManageVolunteers, run: a.listVolunteers},
		{name: "volunteers", sub: "events", help: "list events with volunteers", cap: session.CapManageVolunteers, run: a.listEvents},
		{name: "volunteers", sub: "filter", help: "select an event (empty for all)", cap: session.CapManageVolunteers, run: a.filterVolunteers},
		{name: "volunteers", sub: "export", help: "save the volunteer list as PDF", cap: session.CapManageVolunteers, run: a.exportVolunteers},

		{name: "partners", sub: "list", args: "[page]", help: "list partnership requests", cap: session.CapManagePartners, run: a.listPartners},
		{name: "partners", sub: "export", help: "save partnership requests as PDF", cap: session.CapManagePartners, run: a.exportPartners},

		{name: "users", sub: "list", args: "[page]", help: "list other console users", cap: session.CapManageUsers, run: a.listUsers},
		{name: "users", sub: "add", help: "create a console user", cap: session.CapManageUsers, run: a.addUser},
		{name: "users", sub: "delete", args: "<id>", help: "delete a console user", cap: session.CapManageUsers, run: a.deleteUser},
	}
}

func (a *App) listRequests(ctx context.Context, args []string) error {
	page, err := pageArg(args, 0)
	if err != nil {
		return usageError{"requests list [page]"}
	}
	if err := a.requests.Fetch(ctx); err != nil {
		return a.fail(err, "Failed to load membership requests.")
	}
	printPage(a.out, a.requests.Store().Page(page, a.config.PageSize), memberColumns, memberRow)
	return nil
}

func (a *App) ensureRequests(ctx context.Context) error {
	if a.requests.Store().Len() > 0 {
		return nil
	}
	if err := a.requests.Fetch(ctx); err != nil {
		return a.fail(err, "Failed to load membership requests.")
	}
	return nil
}

func (a *App) approveRequest(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError{"requests approve <id>"}
	}
	if err := a.ensureRequests(ctx); err != nil {
		return err
	}
	if err := a.requests.Approve(ctx, args[0]); err != nil {
		return a.fail(err, "Failed to approve membership request.")
	}
	a.show(controller.KindSuccess, "Membership request approved", 0)
	return nil
}

func (a *App) declineRequest(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError{"requests decline <id>"}
	}
	id := args[0]
	if err := a.ensureRequests(ctx); err != nil {
		return err
	}

	reason, err := GetSimpleText(a.reader, "Reason for declining", a.out)
	if err != nil {
		return err
	}

	form := models.DeclineForm{Reason: reason}
	return runForm(ctx, a, controller.Config[models.DeclineForm]{
		Name: "requests.decline",
		Submit: func(ctx context.Context, f *models.DeclineForm) error {
			return a.requests.Decline(ctx, id, f.Reason)
		},
		SuccessMessage:  "Membership request declined",
		FailureFallback: "Failed to decline membership request.",
	}, &form)
}

func (a *App) listMembers(ctx context.Context, args []string) error {
	page, err := pageArg(args, 0)
	if err != nil {
		return usageError{"members list [page]"}
	}
	if err := a.members.Fetch(ctx); err != nil {
		return a.fail(err, "Failed to load members.")
	}
	printPage(a.out, a.members.Store().Page(page, a.config.PageSize), memberColumns, memberRow)
	return nil
}

var volunteerColumns = []string{"Full Name", "Phone", "Email", "Location", "Event"}

func (a *App) ensureVolunteers(ctx context.Context) error {
	if a.volunteers.Store().Len() > 0 {
		return nil
	}
	if err := a.volunteers.Fetch(ctx); err != nil {
		return a.fail(err, "Failed to load volunteers.")
	}
	return nil
}

func (a *App) listVolunteers(ctx context.Context, args []string) error {
	page, err := pageArg(args, 0)
	if err != nil {
		return usageError{"volunteers list [page]"}
	}
	if err := a.volunteers.Fetch(ctx); err != nil {
		return a.fail(err, "Failed to load volunteers.")
	}
	if a.event != "" {
		a.printf("Event: %s\n", a.event)
	}
	p := liststore.Paginate(a.volunteers.ByEvent(a.event), page, a.config.PageSize)
	printPage(a.out, p, volunteerColumns, func(v models.Volunteer) []string {
		return []string{v.FullName, v.PhoneNumber, v.Email, v.Location, v.Event}
	})
	return nil
}

func (a *App) listEvents(ctx context.Context, _ []string) error {
	if err := a.ensureVolunteers(ctx); err != nil {
		return err
	}
	events := a.volunteers.Events()
	if len(events) == 0 {
		a.println("No events found.")
		return nil
	}
	for _, e := range events {
		a.printf("  %s (%d)\n", e, len(a.volunteers.ByEvent(e)))
	}
	return nil
}

func (a *App) filterVolunteers(ctx context.Context, _ []string) error {
	if err := a.ensureVolunteers(ctx); err != nil {
		return err
	}
	event, err := GetSimpleText(a.reader, "Event name (Enter for all events)", a.out)
	if err != nil {
		return err
	}
	if event != "" {
		found := false
		for _, e := range a.volunteers.Events() {
			if strings.EqualFold(e, event) {
				event, found = e, true
				break
			}
		}
		if !found {
			a.show(controller.KindError, fmt.Sprintf("No volunteers registered for %q.", event), 0)
			return nil
		}
	}
	a.event = event
	a.printf("%d volunteer(s) selected.\n", len(a.volunteers.ByEvent(event)))
	return nil
}

func (a *App) exportVolunteers(ctx context.Context, _ []string) error {
	if err := a.ensureVolunteers(ctx); err != nil {
		return err
	}
	t := report.Volunteers(a.event, a.volunteers.ByEvent(a.event), a.now())
	return a.export(report.VolunteersFileName(a.event), t)
}

var partnerColumns = []string{"Organization Name", "Email", "Website", "Contact Number", "Location", "Type", "Reason"}

func (a *App) listPartners(ctx context.Context, args []string) error {
	page, err := pageArg(args, 0)
	if err != nil {
		return usageError{"partners list [page]"}
	}
	if err := a.partners.Fetch(ctx); err != nil {
		return a.fail(err, "Failed to load partnership requests.")
	}
	printPage(a.out, a.partners.Store().Page(page, a.config.PageSize), partnerColumns, func(p models.Partner) []string {
		return []string{p.OrganizationName, p.Email, p.Website, p.ContactNumber, p.Location, p.OrganizationType, p.ReasonForPartnership}
	})
	return nil
}

func (a *App) exportPartners(ctx context.Context, _ []string) error {
	if err := a.partners.Fetch(ctx); err != nil {
		return a.fail(err, "Failed to load partnership requests.")
	}
	return a.export(report.PartnersFileName, report.Partners(a.partners.Store().Items(), a.now()))
}

// export saves t under the configured export directory.
func (a *App) export(name string, t report.Table) error {
	path, err := a.report.Save(a.config.ExportDir, name, t)
	if err != nil {
		a.log.Error(context.Background(), "export failed", "file", name, "error", err)
		return a.fail(err, "Failed to export PDF.")
	}
	a.show(controller.KindSuccess, "Saved "+path, 0)
	return nil
}

func (a *App) listUsers(ctx context.Context, args []string) error {
	page, err := pageArg(args, 0)
	if err != nil {
		return usageError{"users list [page]"}
	}
	if err := a.users.Fetch(ctx); err != nil {
		return a.fail(err, "Failed to load users.")
	}
	printPage(a.out, a.users.Store().Page(page, a.config.PageSize),
		[]string{"ID", "Name", "Username", "Role", "Status", "Created"},
		func(u models.User) []string {
			var created string
			if !u.CreatedAt.IsZero() {
				created = u.CreatedAt.Format("2006-01-02")
			}
			return []string{string(u.ID), strings.TrimSpace(u.FirstName + " " + u.LastName), u.Username, u.Role, u.Status, created}
		})
	return nil
}

func (a *App) addUser(ctx context.Context, _ []string) error {
	var form models.SignupForm
	for _, p := range []struct {
		label string
		dst   *string
	}{
		{"Email", &form.Email},
		{"First name", &form.FirstName},
		{"Last name", &form.LastName},
		{"Role (member, admin, super-admin)", &form.Role},
	} {
		v, err := GetSimpleText(a.reader, p.label, a.out)
		if err != nil {
			return err
		}
		*p.dst = v
	}
	form.Role = strings.ToLower(form.Role)

	return runForm(ctx, a, controller.Config[models.SignupForm]{
		Name: "users.add",
		Submit: func(ctx context.Context, f *models.SignupForm) error {
			_, err := a.accounts.Signup(ctx, *f)
			return err
		},
		Refresh:         a.users.Fetch,
		SuccessMessage:  "User created successfully",
		FailureFallback: "Failed to create user.",
	}, &form)
}

func (a *App) deleteUser(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError{"users delete <id>"}
	}
	if a.users.Store().Len() == 0 {
		if err := a.users.Fetch(ctx); err != nil {
			return a.fail(err, "Failed to load users.")
		}
	}

	ok, err := Confirm(a.reader, fmt.Sprintf("Delete user %s?", args[0]), a.out)
	if err != nil || !ok {
		return err
	}
	if err := a.users.Delete(ctx, args[0]); err != nil {
		return a.fail(err, "Failed to delete user.")
	}
	a.show(controller.KindSuccess, "User deleted successfully", 0)
	return nil
}
