package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/arkadconsole/internal/client/controller"
	"github.com/dmitrijs2005/arkadconsole/internal/client/liststore"
	"github.com/dmitrijs2005/arkadconsole/internal/client/models"
	"github.com/dmitrijs2005/arkadconsole/internal/client/services"
	"github.com/dmitrijs2005/arkadconsole/internal/client/session"
	"github.com/dmitrijs2005/arkadconsole/internal/client/upload"
	"github.com/dmitrijs2005/arkadconsole/internal/common"
)

// field is one editable JSON field of a record.
type field struct {
	key   string
	label string
}

// view describes how a screen lists and prompts for its records.
type view[T any] struct {
	// noun is the singular used in banners.
	noun    string
	columns []string
	row     func(T) []string
	fields  []field
}

var achievementView = view[models.Achievement]{
	noun:    "Achievement",
	columns: []string{"ID", "Date", "Venue", "Description", "Image"},
	row: func(a models.Achievement) []string {
		return []string{string(a.ID), a.Date, a.Venue, a.Description, a.Image}
	},
	fields: []field{{"description", "Description"}, {"venue", "Venue"}, {"date", "Date (YYYY-MM-DD)"}},
}

var activityView = view[models.Activity]{
	noun:    "Activity",
	columns: []string{"ID", "Date", "Location", "Description", "Image"},
	row: func(a models.Activity) []string {
		return []string{string(a.ID), a.Date, a.Location, a.Description, a.Image}
	},
	fields: []field{{"description", "Description"}, {"location", "Location"}, {"date", "Date (YYYY-MM-DD)"}},
}

var leaderView = view[models.Leader]{
	noun:    "Leader",
	columns: []string{"ID", "Name", "Role", "Description", "Image"},
	row: func(l models.Leader) []string {
		return []string{string(l.ID), l.Name, l.Role, l.Description, l.Image}
	},
	fields: []field{{"name", "Name"}, {"role", "Role"}, {"description", "Description"}},
}

var mediaView = view[models.MediaItem]{
	noun:    "Media",
	columns: []string{"ID", "Description", "Images"},
	row: func(m models.MediaItem) []string {
		return []string{string(m.ID), m.Description, strconv.Itoa(len(m.Media))}
	},
	fields: []field{{"description", "Description"}},
}

// contentScreen adapts a services.Content to REPL commands. F is the set of
// sealed fields a new or edited record must satisfy.
type contentScreen[T services.Record, F any] struct {
	svc  *services.Content[T]
	view view[T]
}

func newContentScreen[T services.Record, F any](svc *services.Content[T], v view[T]) *contentScreen[T, F] {
	return &contentScreen[T, F]{svc: svc, view: v}
}

func (s *contentScreen[T, F]) name() string { return s.svc.Screen().Name }

func (s *contentScreen[T, F]) commands(a *App) []command {
	n := s.name()
	return []command{
		{name: n, sub: "list", args: "[page]", help: "list " + n, cap: session.CapViewContent,
			run: func(ctx context.Context, args []string) error { return s.list(ctx, a, args) }},
		{name: n, sub: "add", help: "add a record with images", cap: session.CapManageContent,
			run: func(ctx context.Context, args []string) error { return s.add(ctx, a) }},
		{name: n, sub: "edit", args: "<id>", help: "edit a record in place", cap: session.CapManageContent,
			run: func(ctx context.Context, args []string) error { return s.edit(ctx, a, args) }},
		{name: n, sub: "discard", help: "drop unsaved edits", cap: session.CapManageContent,
			run: func(ctx context.Context, args []string) error { return s.discard(a) }},
		{name: n, sub: "delete", args: "<id>", help: "delete a record", cap: session.CapManageContent,
			run: func(ctx context.Context, args []string) error { return s.delete(ctx, a, args) }},
	}
}

func (s *contentScreen[T, F]) ensureLoaded(ctx context.Context, a *App) error {
	if s.svc.Store().Len() > 0 {
		return nil
	}
	if err := s.svc.Fetch(ctx); err != nil {
		return a.fail(err, fmt.Sprintf("Failed to load %s.", s.name()))
	}
	return nil
}

func (s *contentScreen[T, F]) list(ctx context.Context, a *App, args []string) error {
	page, err := pageArg(args, 0)
	if err != nil {
		return usageError{s.name() + " list [page]"}
	}
	if err := s.svc.Fetch(ctx); err != nil {
		return a.fail(err, fmt.Sprintf("Failed to load %s.", s.name()))
	}

	store := s.svc.Store()
	printPage(a.out, store.Page(page, a.config.PageSize), s.view.columns, func(it T) []string {
		shown := it
		if _, dirty := store.Draft(it.Key()); dirty {
			if m, err := store.Merged(it.Key()); err == nil {
				shown = m
			}
		}
		row := s.view.row(shown)
		if id, ok := store.Editing(); ok && id == it.Key() {
			row[0] += "*"
		}
		return row
	})
	return nil
}

// addForm is what the add command submits.
type addForm[F any] struct {
	Fields F
	Images []upload.File
}

func (s *contentScreen[T, F]) add(ctx context.Context, a *App) error {
	values := map[string]string{}
	for _, f := range s.view.fields {
		v, err := GetSimpleText(a.reader, f.label, a.out)
		if err != nil {
			return err
		}
		values[f.key] = v
	}
	fields, err := decodeFields[F](values)
	if err != nil {
		return err
	}

	prompt := "Image path"
	if n := s.svc.Screen().MaxImages; n > 1 {
		prompt = fmt.Sprintf("Image paths, one per line (up to %d)", n)
	}
	images, err := readImages(a, prompt)
	if err != nil {
		return a.fail(err, "Could not read the image.")
	}

	form := addForm[F]{Fields: fields, Images: images}
	return runForm(ctx, a, controller.Config[addForm[F]]{
		Name: s.name() + ".add",
		Validate: func(f *addForm[F]) error {
			if err := a.valid.Struct(&f.Fields); err != nil {
				return err
			}
			if len(f.Images) == 0 {
				return common.NewValidationError("image", "Please select an image to upload.")
			}
			return nil
		},
		Submit: func(ctx context.Context, f *addForm[F]) error {
			return s.svc.Add(ctx, f.Fields, f.Images)
		},
		SuccessMessage:  s.view.noun + " added successfully",
		FailureFallback: fmt.Sprintf("Failed to add %s. Please try again.", strings.ToLower(s.view.noun)),
	}, &form)
}

// editForm is what the edit command submits; the fields travel in the
// store's draft.
type editForm struct {
	ID    string
	Image *upload.File
}

func (s *contentScreen[T, F]) edit(ctx context.Context, a *App, args []string) error {
	if len(args) != 1 {
		return usageError{s.name() + " edit <id>"}
	}
	id := args[0]
	if err := s.ensureLoaded(ctx, a); err != nil {
		return err
	}

	store := s.svc.Store()
	if err := store.BeginEdit(id); err != nil {
		if !errors.Is(err, common.ErrEditInProgress) {
			return a.fail(err, "Record not found.")
		}
		other, _ := store.Editing()
		discard, cerr := Confirm(a.reader, fmt.Sprintf("Record %s has unsaved changes. Discard them?", other), a.out)
		if cerr != nil {
			return cerr
		}
		if !discard {
			a.printf("Still editing %s.\n", other)
			return nil
		}
		store.DiscardEdit()
		if err := store.BeginEdit(id); err != nil {
			return a.fail(err, "Record not found.")
		}
	}

	current, err := store.Merged(id)
	if err != nil {
		return a.fail(err, "Record not found.")
	}
	values, err := fieldValues(current)
	if err != nil {
		return err
	}

	patch := liststore.Patch{}
	for _, f := range s.view.fields {
		v, changed, err := GetDefaultText(a.reader, f.label, values[f.key], a.out)
		if err != nil {
			return err
		}
		if changed {
			patch[f.key] = v
		}
	}
	if len(patch) > 0 {
		if err := store.Edit(id, patch); err != nil {
			return a.fail(err, "Record not found.")
		}
	}

	var image *upload.File
	path, err := GetSimpleText(a.reader, "New image path (Enter to keep the current one)", a.out)
	if err != nil {
		return err
	}
	if path != "" {
		f, err := upload.ReadFile(path)
		if err != nil {
			return a.fail(err, "Could not read the image.")
		}
		image = &f
	}

	if _, dirty := store.Draft(id); !dirty && image == nil {
		store.DiscardEdit()
		a.println("Nothing to update.")
		return nil
	}

	form := editForm{ID: id, Image: image}
	err = runForm(ctx, a, controller.Config[editForm]{
		Name: s.name() + ".edit",
		Validate: func(f *editForm) error {
			merged, err := store.Merged(f.ID)
			if err != nil {
				return err
			}
			values, err := fieldValues(merged)
			if err != nil {
				return err
			}
			fields, err := decodeFields[F](values)
			if err != nil {
				return err
			}
			return a.valid.Struct(&fields)
		},
		Submit: func(ctx context.Context, f *editForm) error {
			return s.svc.SubmitEdit(ctx, f.ID, f.Image)
		},
		Reset:           func(*editForm) {},
		SuccessMessage:  s.view.noun + " updated successfully",
		FailureFallback: fmt.Sprintf("Failed to update %s. Please try again.", strings.ToLower(s.view.noun)),
	}, &form)
	if err != nil {
		a.printf("Your changes are kept. Run '%s edit %s' to retry or '%s discard' to drop them.\n", s.name(), id, s.name())
	}
	return err
}

func (s *contentScreen[T, F]) discard(a *App) error {
	id, ok := s.svc.Store().Editing()
	if !ok {
		a.println("Nothing is being edited.")
		return nil
	}
	s.svc.Store().DiscardEdit()
	a.printf("Discarded changes to %s.\n", id)
	return nil
}

func (s *contentScreen[T, F]) delete(ctx context.Context, a *App, args []string) error {
	if len(args) != 1 {
		return usageError{s.name() + " delete <id>"}
	}
	id := args[0]
	if err := s.ensureLoaded(ctx, a); err != nil {
		return err
	}

	ok, err := Confirm(a.reader, fmt.Sprintf("Delete %s %s?", strings.ToLower(s.view.noun), id), a.out)
	if err != nil || !ok {
		return err
	}

	if err := s.svc.Delete(ctx, id); err != nil {
		return a.fail(err, fmt.Sprintf("Failed to delete %s.", strings.ToLower(s.view.noun)))
	}
	a.show(controller.KindSuccess, s.view.noun+" deleted successfully", 0)
	return nil
}

func readImages(a *App, prompt string) ([]upload.File, error) {
	paths, err := GetLines(a.reader, prompt, a.out)
	if err != nil {
		return nil, err
	}
	files := make([]upload.File, 0, len(paths))
	for _, p := range paths {
		f, err := upload.ReadFile(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// fieldValues flattens a record's string fields by JSON name.
func fieldValues(v any) (map[string]string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	all := map[string]any{}
	if err := json.Unmarshal(raw, &all); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(all))
	for k, v := range all {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out, nil
}

func decodeFields[F any](values map[string]string) (F, error) {
	var f F
	raw, err := json.Marshal(values)
	if err != nil {
		return f, err
	}
	err = json.Unmarshal(raw, &f)
	return f, err
}
