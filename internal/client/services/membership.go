package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/arkadconsole/internal/client/client"
	"github.com/dmitrijs2005/arkadconsole/internal/client/liststore"
	"github.com/dmitrijs2005/arkadconsole/internal/client/models"
	"github.com/dmitrijs2005/arkadconsole/internal/common"
	"github.com/dmitrijs2005/arkadconsole/internal/logging"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusDeclined = "declined"
)

// Membership reviews pending membership requests.
type Membership struct {
	api   API
	store *liststore.Store[models.Member]
	log   logging.Logger
}

func NewMembership(api API, log logging.Logger) *Membership {
	if log == nil {
		log = logging.Nop()
	}
	return &Membership{
		api:   api,
		store: liststore.New(models.Member.Key),
		log:   log.With("screen", "membership"),
	}
}

func (m *Membership) Store() *liststore.Store[models.Member] { return m.store }

func (m *Membership) Fetch(ctx context.Context) error {
	var pending []models.Member
	q := url.Values{"status": {StatusPending}}
	if err := m.api.GetJSON(ctx, client.PathMembership, q, &pending); err != nil {
		return fmt.Errorf("fetch membership requests: %w", err)
	}
	m.store.Replace(pending)
	return nil
}

// Approve removes id from the pending list and confirms it with the server.
func (m *Membership) Approve(ctx context.Context, id string) error {
	return m.decide(ctx, id, map[string]string{"status": StatusApproved})
}

// Decline removes id from the pending list with a reason. An empty reason is
// rejected before anything changes.
func (m *Membership) Decline(ctx context.Context, id, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return common.NewValidationError("reason", "Please provide a reason for declining.")
	}
	return m.decide(ctx, id, map[string]string{"status": StatusDeclined, "reason": reason})
}

func (m *Membership) decide(ctx context.Context, id string, body map[string]string) error {
	err := m.store.RemoveWith(ctx, id, func(ctx context.Context) error {
		_, err := m.api.SendJSON(ctx, http.MethodPut, itemPath(client.PathMembership, id), body)
		return err
	})
	if err != nil {
		m.log.Warn(ctx, "membership decision failed", "id", id, "status", body["status"], "error", err)
		return fmt.Errorf("%s membership %s: %w", body["status"], id, err)
	}
	m.log.Info(ctx, "membership decided", "id", id, "status", body["status"])
	return nil
}

// Members lists registered members.
type Members struct {
	api   API
	store *liststore.Store[models.Member]
}

func NewMembers(api API) *Members {
	return &Members{api: api, store: liststore.New(models.Member.Key)}
}

func (m *Members) Store() *liststore.Store[models.Member] { return m.store }

func (m *Members) Fetch(ctx context.Context) error {
	var members []models.Member
	if err := m.api.GetJSON(ctx, client.PathMembers, nil, &members); err != nil {
		return fmt.Errorf("fetch members: %w", err)
	}
	m.store.Replace(members)
	return nil
}
