package cli

import (
	"context"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/arkadconsole/internal/client/controller"
	"github.com/dmitrijs2005/arkadconsole/internal/client/liststore"
	"github.com/dmitrijs2005/arkadconsole/internal/client/models"
	"github.com/dmitrijs2005/arkadconsole/internal/client/report"
	"github.com/dmitrijs2005/arkadconsole/internal/client/services"
	"github.com/dmitrijs2005/arkadconsole/internal/client/session"
)

func (a *App) donationCommands() []command {
	return []command{
		{name: "donations", sub: "add", help: "record a donation", cap: session.CapManageDonations, run: a.addDonation},
		{name: "donations", sub: "list", args: "<start> <end> [page]", help: "list donations between two YYYY-MM-DD dates", cap: session.CapManageDonations, run: a.listDonations},
		{name: "donations", sub: "export", args: "[<start> <end>]", help: "save donations as PDF", cap: session.CapManageDonations, run: a.exportDonations},
	}
}

func (a *App) addDonation(ctx context.Context, _ []string) error {
	form := models.NewDonationForm()

	name, err := GetSimpleText(a.reader, "Full name", a.out)
	if err != nil {
		return err
	}
	phone, _, err := GetDefaultText(a.reader, "Phone number", form.PhoneNumber, a.out)
	if err != nil {
		return err
	}
	amount, err := GetSimpleText(a.reader, "Amount (KES)", a.out)
	if err != nil {
		return err
	}
	receipt, err := GetSimpleText(a.reader, "Mpesa receipt number", a.out)
	if err != nil {
		return err
	}

	form.FullName = name
	form.PhoneNumber = phone
	form.MpesaReceiptNumber = strings.ToUpper(receipt)
	// An unparsable amount stays zero and fails validation.
	form.Amount, _ = strconv.ParseFloat(strings.ReplaceAll(amount, ",", ""), 64)

	return runForm(ctx, a, controller.Config[models.DonationForm]{
		Name: "donations.add",
		Submit: func(ctx context.Context, f *models.DonationForm) error {
			return a.donations.Submit(ctx, *f)
		},
		Reset:           func(f *models.DonationForm) { *f = models.NewDonationForm() },
		SuccessMessage:  "Donation recorded successfully",
		FailureFallback: "Failed to record donation.",
	}, &form)
}

func (a *App) fetchDonations(ctx context.Context, r models.DonationRange) error {
	if err := a.valid.Struct(&r); err != nil {
		return a.fail(err, "Invalid date range.")
	}
	ds, err := a.donations.Range(ctx, r)
	if err != nil {
		return a.fail(err, "Failed to load donations.")
	}
	a.lastRange, a.lastDonations = r, ds
	return nil
}

func (a *App) listDonations(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usageError{"donations list <start> <end> [page]"}
	}
	page, err := pageArg(args, 2)
	if err != nil {
		return usageError{"donations list <start> <end> [page]"}
	}
	if err := a.fetchDonations(ctx, models.DonationRange{StartDate: args[0], EndDate: args[1]}); err != nil {
		return err
	}

	p := liststore.Paginate(a.lastDonations, page, a.config.PageSize)
	printPage(a.out, p, []string{"ID", "Full Name", "Phone", "Amount", "Receipt", "Date"}, func(d models.Donation) []string {
		var when string
		if !d.CreatedAt.IsZero() {
			when = d.CreatedAt.Format("2006-01-02")
		}
		return []string{string(d.TransactionID), d.FullName, d.PhoneNumber, report.Amount(d.Amount), d.MpesaReceiptNumber, when}
	})
	if len(a.lastDonations) > 0 {
		a.printf("Total: KES %s\n", report.Amount(services.Total(a.lastDonations)))
	}
	return nil
}

func (a *App) exportDonations(ctx context.Context, args []string) error {
	switch len(args) {
	case 2:
		if err := a.fetchDonations(ctx, models.DonationRange{StartDate: args[0], EndDate: args[1]}); err != nil {
			return err
		}
	case 0:
		if a.lastRange.StartDate == "" {
			return usageError{"donations export <start> <end>"}
		}
	default:
		return usageError{"donations export [<start> <end>]"}
	}

	t := report.Donations(a.lastRange, a.lastDonations, a.now())
	return a.export(report.DonationsFileName(a.lastRange.StartDate, a.lastRange.EndDate), t)
}
