package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/arkadconsole/internal/client/client"
	"github.com/dmitrijs2005/arkadconsole/internal/client/liststore"
	"github.com/dmitrijs2005/arkadconsole/internal/client/models"
	"github.com/dmitrijs2005/arkadconsole/internal/common"
)

// Users manages console accounts other than the signed-in one.
type Users struct {
	api   API
	self  func() string
	store *liststore.Store[models.User]
}

// NewUsers takes a function returning the signed-in user's id.
func NewUsers(api API, self func() string) *Users {
	return &Users{api: api, self: self, store: liststore.New(models.User.Key)}
}

func (u *Users) Store() *liststore.Store[models.User] { return u.store }

func (u *Users) Fetch(ctx context.Context) error {
	var all []models.User
	if err := u.api.GetJSON(ctx, client.PathUsers, nil, &all); err != nil {
		return fmt.Errorf("fetch users: %w", err)
	}

	me := u.self()
	others := all[:0]
	for _, usr := range all {
		if usr.Key() != me {
			others = append(others, usr)
		}
	}
	u.store.Replace(others)
	return nil
}

// Delete removes id optimistically. Deleting yourself is refused.
func (u *Users) Delete(ctx context.Context, id string) error {
	if id == u.self() {
		return fmt.Errorf("%w: you cannot delete your own account", common.ErrForbidden)
	}
	return u.store.RemoveWith(ctx, id, func(ctx context.Context) error {
		if _, err := u.api.Delete(ctx, itemPath(client.PathUsers, id)); err != nil {
			return fmt.Errorf("delete user %s: %w", id, err)
		}
		return nil
	})
}
