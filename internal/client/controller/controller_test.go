package controller

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/dmitrijs2005/arkadconsole/internal/client/client"
	"github.com/dmitrijs2005/arkadconsole/internal/client/upload"
	"github.com/dmitrijs2005/arkadconsole/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type achievementForm struct {
	Description string
	Venue       string
	Date        string
	Image       upload.File
}

func filledForm() *achievementForm {
	return &achievementForm{
		Description: "Annual Gala",
		Venue:       "City Hall",
		Date:        "2024-05-01",
		Image:       upload.File{Name: "gala.jpg", MIMEType: "image/jpeg", Data: make([]byte, 200<<10)},
	}
}

func requireFields(f *achievementForm) error {
	if f.Description == "" || f.Venue == "" || f.Date == "" || f.Image.Data == nil {
		return &common.ValidationError{Fields: map[string]string{"form": "Please fill in all fields."}}
	}
	return nil
}

type recorder struct{ states []State }

func (r *recorder) hook(_, to State) { r.states = append(r.states, to) }

func TestSubmit_AchievementSuccess(t *testing.T) {
	var rec recorder
	var calls, refreshes int
	var sent upload.File

	c := New(Config[achievementForm]{
		Validate: requireFields,
		Submit: func(ctx context.Context, f *achievementForm) error {
			calls++
			p, err := upload.Prepare(ctx, f.Image, upload.DefaultLimits())
			if err != nil {
				return err
			}
			sent = p
			return nil
		},
		Refresh:        func(context.Context) error { refreshes++; return nil },
		SuccessMessage: "Achievement added successfully!",
		OnTransition:   rec.hook,
	})
	defer c.Close()

	form := filledForm()
	orig := form.Image
	require.NoError(t, c.Submit(context.Background(), form))

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, refreshes)
	assert.Equal(t, orig, sent, "200KB image passes through untouched")
	assert.Equal(t, achievementForm{}, *form)
	assert.Equal(t, []State{StateValidating, StateSubmitting, StateSuccess, StateIdle}, rec.states)

	b, ok := c.Banner()
	require.True(t, ok)
	assert.Equal(t, KindSuccess, b.Kind)
	assert.Equal(t, StateIdle, c.State())
}

func TestSubmit_ValidationNeverSubmits(t *testing.T) {
	var rec recorder
	c := New(Config[achievementForm]{
		Validate: requireFields,
		Submit: func(context.Context, *achievementForm) error {
			t.Fatal("submitted invalid form")
			return nil
		},
		OnTransition: rec.hook,
	})
	defer c.Close()

	form := &achievementForm{Venue: "City Hall"}
	err := c.Submit(context.Background(), form)
	require.ErrorIs(t, err, common.ErrValidation)

	assert.Equal(t, []State{StateValidating, StateIdle}, rec.states)
	assert.Equal(t, "City Hall", form.Venue)

	b, ok := c.Banner()
	require.True(t, ok)
	assert.Equal(t, KindError, b.Kind)
	assert.Equal(t, "Please fill in all fields.", b.Text)
}

func TestSubmit_FailureKeepsInputAndShowsServerMessage(t *testing.T) {
	var rec recorder
	c := New(Config[achievementForm]{
		Submit: func(context.Context, *achievementForm) error {
			return &client.APIError{Status: http.StatusBadRequest, Message: "Venue is required"}
		},
		Refresh:      func(context.Context) error { t.Fatal("refresh after failure"); return nil },
		OnTransition: rec.hook,
	})
	defer c.Close()

	form := filledForm()
	err := c.Submit(context.Background(), form)
	require.ErrorIs(t, err, common.ErrRequestFailed)

	assert.Equal(t, "Annual Gala", form.Description)
	assert.Equal(t, []State{StateValidating, StateSubmitting, StateFailed, StateIdle}, rec.states)

	b, _ := c.Banner()
	assert.Equal(t, "Venue is required", b.Text)
}

func TestSubmit_FailureFallback(t *testing.T) {
	c := New(Config[achievementForm]{
		Submit: func(context.Context, *achievementForm) error {
			return errors.Join(common.ErrRequestFailed, errors.New("dial tcp: refused"))
		},
		FailureFallback: "There was an error adding the achievement",
	})
	defer c.Close()

	require.Error(t, c.Submit(context.Background(), filledForm()))
	b, _ := c.Banner()
	assert.Equal(t, "There was an error adding the achievement", b.Text)
}

func TestSubmit_BusyWhileSubmitting(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})

	c := New(Config[achievementForm]{
		Submit: func(context.Context, *achievementForm) error {
			close(entered)
			<-release
			return nil
		},
	})
	defer c.Close()

	done := make(chan error, 1)
	go func() { done <- c.Submit(context.Background(), filledForm()) }()

	<-entered
	assert.Equal(t, StateSubmitting, c.State())
	require.ErrorIs(t, c.Submit(context.Background(), filledForm()), common.ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, StateIdle, c.State())
}

func TestSubmit_RefreshFailureStillSucceeds(t *testing.T) {
	c := New(Config[achievementForm]{
		Submit:  func(context.Context, *achievementForm) error { return nil },
		Refresh: func(context.Context) error { return common.ErrRequestFailed },
	})
	defer c.Close()

	require.NoError(t, c.Submit(context.Background(), filledForm()))
}

func TestBanner_Expires(t *testing.T) {
	c := New(Config[achievementForm]{
		Submit:     func(context.Context, *achievementForm) error { return common.ErrRequestFailed },
		MessageTTL: 30 * time.Millisecond,
	})
	defer c.Close()

	_ = c.Submit(context.Background(), filledForm())
	_, ok := c.Banner()
	require.True(t, ok)

	require.Eventually(t, func() bool {
		_, ok := c.Banner()
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestFailureText(t *testing.T) {
	assert.Equal(t, "Invalid credentials", FailureText(&client.APIError{Status: 401, Message: "Invalid credentials"}, "x"))
	assert.Equal(t, "x", FailureText(common.ErrDecryptionFailed, "x"))

	_, err := upload.PrepareMany(context.Background(), make([]upload.File, 2), upload.DefaultLimits(), 1)
	assert.Equal(t, err.Error(), FailureText(err, "x"))
}
