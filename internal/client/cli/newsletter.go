package cli

import (
	"context"

	"github.com/dmitrijs2005/arkadconsole/internal/client/controller"
	"github.com/dmitrijs2005/arkadconsole/internal/client/models"
)

func (a *App) sendNewsletter(ctx context.Context, _ []string) error {
	title, err := GetSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return err
	}
	content, err := GetMultiline(a.reader, "Content", a.out)
	if err != nil {
		return err
	}
	sources, err := GetSimpleText(a.reader, "Sources (comma separated, optional)", a.out)
	if err != nil {
		return err
	}

	form := models.Newsletter{Title: title, Content: content, Sources: models.ParseSources(sources)}
	return runForm(ctx, a, controller.Config[models.Newsletter]{
		Name:            "newsletter.send",
		Submit:          func(ctx context.Context, f *models.Newsletter) error { return a.newsletters.Send(ctx, *f) },
		SuccessMessage:  "Newsletter sent successfully",
		FailureFallback: "Failed to send newsletter.",
	}, &form)
}
