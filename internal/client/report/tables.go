package report

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/arkadconsole/internal/client/models"
	"github.com/dmitrijs2005/arkadconsole/internal/filex"
)

const PartnersFileName = "Partnership_Requests.pdf"

// VolunteersFileName names the export for event; an empty event means all
// volunteers.
func VolunteersFileName(event string) string {
	if event == "" {
		event = "All"
	}
	return filex.SafeName(event) + "_Volunteers.pdf"
}

func DonationsFileName(start, end string) string {
	return filex.SafeName(fmt.Sprintf("Donations_%s_%s", start, end)) + ".pdf"
}

func Volunteers(event string, vs []models.Volunteer, now time.Time) Table {
	title := "Volunteers"
	if event != "" {
		title = event + " Volunteers"
	}
	t := Table{
		Title:   title,
		Date:    now,
		Columns: []string{"Full Name", "Phone", "Email", "Location"},
	}
	for _, v := range vs {
		t.Rows = append(t.Rows, []string{v.FullName, v.PhoneNumber, v.Email, v.Location})
	}
	return t
}

func Partners(ps []models.Partner, now time.Time) Table {
	t := Table{
		Title:   "Partnership Requests",
		Date:    now,
		Columns: []string{"Organization Name", "Email", "Website", "Contact Number", "Location", "Type", "Reason"},
	}
	for _, p := range ps {
		t.Rows = append(t.Rows, []string{
			p.OrganizationName, p.Email, p.Website, p.ContactNumber,
			p.Location, p.OrganizationType, p.ReasonForPartnership,
		})
	}
	return t
}

// Donations lists ds for the given range with a total line.
func Donations(r models.DonationRange, ds []models.Donation, now time.Time) Table {
	t := Table{
		Title:   fmt.Sprintf("Donations %s to %s", r.StartDate, r.EndDate),
		Date:    now,
		Columns: []string{"Full Name", "Phone", "Amount", "Receipt", "Date"},
	}
	var total float64
	for _, d := range ds {
		var when string
		if !d.CreatedAt.IsZero() {
			when = d.CreatedAt.Format(dateLayout)
		}
		t.Rows = append(t.Rows, []string{d.FullName, d.PhoneNumber, Amount(d.Amount), d.MpesaReceiptNumber, when})
		total += d.Amount
	}
	t.Summary = []string{
		fmt.Sprintf("Donations: %d", len(ds)),
		"Total: KES " + Amount(total),
	}
	return t
}

// Amount formats a shilling amount with two decimals.
func Amount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
