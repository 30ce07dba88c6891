package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/arkadconsole/internal/client/client"
	"github.com/dmitrijs2005/arkadconsole/internal/client/liststore"
	"github.com/dmitrijs2005/arkadconsole/internal/client/models"
)

type Volunteers struct {
	api   API
	store *liststore.Store[models.Volunteer]
}

func NewVolunteers(api API) *Volunteers {
	return &Volunteers{api: api, store: liststore.New(models.Volunteer.Key)}
}

func (v *Volunteers) Store() *liststore.Store[models.Volunteer] { return v.store }

func (v *Volunteers) Fetch(ctx context.Context) error {
	var items []models.Volunteer
	if err := v.api.GetJSON(ctx, client.PathVolunteers, nil, &items); err != nil {
		return fmt.Errorf("fetch volunteers: %w", err)
	}
	v.store.Replace(items)
	return nil
}

// Events lists distinct events in order of first appearance.
func (v *Volunteers) Events() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, it := range v.store.Items() {
		if _, ok := seen[it.Event]; ok || it.Event == "" {
			continue
		}
		seen[it.Event] = struct{}{}
		out = append(out, it.Event)
	}
	return out
}

// ByEvent returns volunteers for event; "" returns everyone.
func (v *Volunteers) ByEvent(event string) []models.Volunteer {
	items := v.store.Items()
	if event == "" {
		return items
	}
	var out []models.Volunteer
	for _, it := range items {
		if it.Event == event {
			out = append(out, it)
		}
	}
	return out
}

type Partners struct {
	api   API
	store *liststore.Store[models.Partner]
}

func NewPartners(api API) *Partners {
	return &Partners{api: api, store: liststore.New(models.Partner.Key)}
}

func (p *Partners) Store() *liststore.Store[models.Partner] { return p.store }

func (p *Partners) Fetch(ctx context.Context) error {
	var items []models.Partner
	if err := p.api.GetJSON(ctx, client.PathPartners, nil, &items); err != nil {
		return fmt.Errorf("fetch partners: %w", err)
	}
	p.store.Replace(items)
	return nil
}
