package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/arkadconsole/internal/client/client"
	"github.com/dmitrijs2005/arkadconsole/internal/client/models"
	"github.com/dmitrijs2005/arkadconsole/internal/common"
)

type Donations struct {
	api API
}

func NewDonations(api API) *Donations {
	return &Donations{api: api}
}

// Submit records a donation. The receipt number is sent uppercase.
func (d *Donations) Submit(ctx context.Context, f models.DonationForm) error {
	f.MpesaReceiptNumber = strings.ToUpper(f.MpesaReceiptNumber)
	if _, err := d.api.SendJSON(ctx, http.MethodPost, client.PathDonations, f); err != nil {
		return fmt.Errorf("submit donation: %w", err)
	}
	return nil
}

// Range fetches donations between two YYYY-MM-DD dates inclusive.
func (d *Donations) Range(ctx context.Context, r models.DonationRange) ([]models.Donation, error) {
	if r.StartDate == "" || r.EndDate == "" {
		return nil, common.NewValidationError("range", "Please select both start and end dates.")
	}
	if r.EndDate < r.StartDate {
		return nil, common.NewValidationError("range", "End date must not be before start date.")
	}

	q := url.Values{"startDate": {r.StartDate}, "endDate": {r.EndDate}}
	reply, err := d.api.Do(ctx, http.MethodGet, client.PathDonations, q, "", nil)
	if err != nil {
		return nil, fmt.Errorf("fetch donations: %w", err)
	}

	raw := reply.Transactions
	if len(raw) == 0 {
		raw = reply.Data
	}
	var out []models.Donation
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("%w: donations: %w", common.ErrRequestFailed, err)
		}
	}
	return out, nil
}

// Total sums the amounts of ds.
func Total(ds []models.Donation) float64 {
	var sum float64
	for _, d := range ds {
		sum += d.Amount
	}
	return sum
}
