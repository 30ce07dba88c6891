package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/arkadconsole/internal/client/client"
	"github.com/dmitrijs2005/arkadconsole/internal/client/models"
)

type Newsletters struct {
	api API
}

func NewNewsletters(api API) *Newsletters {
	return &Newsletters{api: api}
}

func (n *Newsletters) Send(ctx context.Context, nl models.Newsletter) error {
	if nl.Sources == nil {
		nl.Sources = []string{}
	}
	if _, err := n.api.SendJSON(ctx, http.MethodPost, client.PathNewsletter, nl); err != nil {
		return fmt.Errorf("send newsletter: %w", err)
	}
	return nil
}
