package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/arkadconsole/internal/client/client"
	"github.com/dmitrijs2005/arkadconsole/internal/client/liststore"
	"github.com/dmitrijs2005/arkadconsole/internal/client/models"
	"github.com/dmitrijs2005/arkadconsole/internal/client/upload"
	"github.com/dmitrijs2005/arkadconsole/internal/cryptox"
	"github.com/dmitrijs2005/arkadconsole/internal/logging"
)

// Record is anything a list screen can key.
type Record interface {
	Key() string
}

// Screen configures a content screen.
type Screen struct {
	Name string
	Path string
	// Sealed lists the JSON fields that travel inside the envelope.
	Sealed []string
	// ImageField is the multipart field carrying images.
	ImageField string
	// MaxImages bounds how many images one record takes.
	MaxImages int
}

var (
	AchievementsScreen = Screen{
		Name: "achievements", Path: client.PathAchievements,
		Sealed: []string{"description", "venue", "date"}, ImageField: "image", MaxImages: 1,
	}
	ActivitiesScreen = Screen{
		Name: "activities", Path: client.PathActivities,
		Sealed: []string{"description", "location", "date"}, ImageField: "image", MaxImages: 1,
	}
	LeadersScreen = Screen{
		Name: "leadership", Path: client.PathLeaders,
		Sealed: []string{"name", "role", "description"}, ImageField: "image", MaxImages: 1,
	}
	MediaScreen = Screen{
		Name: "media", Path: client.PathMedia,
		Sealed: []string{"description"}, ImageField: "media", MaxImages: 10,
	}
)

// Content lists, adds, edits and deletes the records of one screen.
type Content[T Record] struct {
	api    API
	screen Screen
	limits upload.Limits
	store  *liststore.Store[T]
	log    logging.Logger
}

func NewContent[T Record](api API, screen Screen, limits upload.Limits, log logging.Logger) *Content[T] {
	if log == nil {
		log = logging.Nop()
	}
	return &Content[T]{
		api:    api,
		screen: screen,
		limits: limits,
		store:  liststore.New(func(v T) string { return v.Key() }),
		log:    log.With("screen", screen.Name),
	}
}

func NewAchievements(api API, l upload.Limits, log logging.Logger) *Content[models.Achievement] {
	return NewContent[models.Achievement](api, AchievementsScreen, l, log)
}

func NewActivities(api API, l upload.Limits, log logging.Logger) *Content[models.Activity] {
	return NewContent[models.Activity](api, ActivitiesScreen, l, log)
}

func NewLeaders(api API, l upload.Limits, log logging.Logger) *Content[models.Leader] {
	return NewContent[models.Leader](api, LeadersScreen, l, log)
}

func NewMedia(api API, l upload.Limits, log logging.Logger) *Content[models.MediaItem] {
	return NewContent[models.MediaItem](api, MediaScreen, l, log)
}

func (c *Content[T]) Screen() Screen { return c.screen }

func (c *Content[T]) Store() *liststore.Store[T] { return c.store }

// Fetch replaces the list with the server's; the reply data is an envelope.
func (c *Content[T]) Fetch(ctx context.Context) error {
	var items []T
	if err := c.api.GetEncrypted(ctx, c.screen.Path, nil, &items); err != nil {
		return fmt.Errorf("fetch %s: %w", c.screen.Name, err)
	}
	c.store.Replace(items)
	c.log.Debug(ctx, "list fetched", "count", len(items))
	return nil
}

// Add seals fields, prepares images and posts a new record, then refreshes.
// Nothing is sent when image preparation fails.
func (c *Content[T]) Add(ctx context.Context, fields any, images []upload.File) error {
	if len(images) == 0 {
		return fmt.Errorf("add %s: %w", c.screen.Name, errNoImage)
	}
	prepared, err := upload.PrepareMany(ctx, images, c.limits, c.screen.MaxImages)
	if err != nil {
		return err
	}

	env, err := cryptox.Encrypt(fields, c.api.Key())
	if err != nil {
		return fmt.Errorf("add %s: %w", c.screen.Name, err)
	}

	ct, body, err := upload.NewForm().Envelope(env).Files(c.screen.ImageField, prepared).Encode()
	if err != nil {
		return err
	}
	if _, err := c.api.SendMultipart(ctx, http.MethodPost, c.screen.Path, ct, body); err != nil {
		return fmt.Errorf("add %s: %w", c.screen.Name, err)
	}

	return c.Fetch(ctx)
}

// Edit stores a draft for id; see liststore.Store.Edit.
func (c *Content[T]) Edit(id string, patch liststore.Patch) error {
	return c.store.Edit(id, patch)
}

// SubmitEdit sends the merged record of id with its sealed fields in an
// envelope, the draft fields in the clear and an optional replacement image.
func (c *Content[T]) SubmitEdit(ctx context.Context, id string, image *upload.File) error {
	var prepared []upload.File
	if image != nil {
		p, err := upload.Prepare(ctx, *image, c.limits)
		if err != nil {
			return err
		}
		prepared = append(prepared, p)
	}

	return c.store.SubmitEdit(ctx, id, func(ctx context.Context, merged T, draft liststore.Patch) (T, error) {
		sealed, err := pick(merged, c.screen.Sealed)
		if err != nil {
			return merged, err
		}
		env, err := cryptox.Encrypt(sealed, c.api.Key())
		if err != nil {
			return merged, err
		}

		form := upload.NewForm()
		for k, v := range draft {
			form.Field(k, fmt.Sprint(v))
		}
		ct, body, err := form.Envelope(env).Files(c.screen.ImageField, prepared).Encode()
		if err != nil {
			return merged, err
		}

		if _, err := c.api.SendMultipart(ctx, http.MethodPut, itemPath(c.screen.Path, id), ct, body); err != nil {
			return merged, fmt.Errorf("update %s %s: %w", c.screen.Name, id, err)
		}
		return merged, nil
	})
}

// Delete removes id optimistically; a rejected delete puts it back.
func (c *Content[T]) Delete(ctx context.Context, id string) error {
	return c.store.RemoveWith(ctx, id, func(ctx context.Context) error {
		if _, err := c.api.Delete(ctx, itemPath(c.screen.Path, id)); err != nil {
			return fmt.Errorf("delete %s %s: %w", c.screen.Name, id, err)
		}
		return nil
	})
}

// pick returns the named JSON fields of v.
func pick(v any, fields []string) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	all := map[string]any{}
	if err := json.Unmarshal(raw, &all); err != nil {
		return nil, err
	}
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		out[f] = all[f]
	}
	return out, nil
}
