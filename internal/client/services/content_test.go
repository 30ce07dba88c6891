package services

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	mrand "math/rand/v2"
	"net/http"
	"testing"

	"github.com/dmitrijs2005/arkadconsole/internal/client/client"
	"github.com/dmitrijs2005/arkadconsole/internal/client/liststore"
	"github.com/dmitrijs2005/arkadconsole/internal/client/models"
	"github.com/dmitrijs2005/arkadconsole/internal/client/upload"
	"github.com/dmitrijs2005/arkadconsole/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var gala = []models.Achievement{
	{ID: "1", Description: "Annual Gala", Venue: "City Hall", Date: "2024-05-01", Image: "https://cdn/1.jpg"},
	{ID: "2", Description: "Fun Run", Venue: "Uhuru Park", Date: "2024-03-10"},
}

func bigPNG(t *testing.T) upload.File {
	t.Helper()
	r := mrand.New(mrand.NewPCG(3, 4))
	img := image.NewNRGBA(image.Rect(0, 0, 550, 550))
	for y := 0; y < 550; y++ {
		for x := 0; x < 550; x++ {
			img.Set(x, y, color.NRGBA{uint8(r.UintN(256)), uint8(r.UintN(256)), uint8(r.UintN(256)), 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return upload.File{Name: "poster.png", MIMEType: "image/png", Data: buf.Bytes()}
}

func TestContent_Fetch(t *testing.T) {
	api, c := newFakeAPI(t)
	api.on(http.MethodGet, client.PathAchievements, sealedReply(t, gala))

	svc := NewAchievements(c, upload.DefaultLimits(), nil)
	require.NoError(t, svc.Fetch(context.Background()))
	assert.Equal(t, gala, svc.Store().Items())
}

func TestContent_AddSmallImage(t *testing.T) {
	api, c := newFakeAPI(t)
	api.on(http.MethodGet, client.PathAchievements, sealedReply(t, gala))

	img := upload.File{Name: "gala.jpg", MIMEType: "image/jpeg", Data: bytes.Repeat([]byte{0xAB}, 200<<10)}
	api.on(http.MethodPost, client.PathAchievements, func(w http.ResponseWriter, r *http.Request) {
		var fields models.AchievementFields
		openEnvelope(t, r, &fields)
		assert.Equal(t, models.AchievementFields{Description: "Annual Gala", Venue: "City Hall", Date: "2024-05-01"}, fields)

		f, fh, err := r.FormFile("image")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "gala.jpg", fh.Filename)
		assert.Equal(t, img.Data, data)
		ok(w, r)
	})

	svc := NewAchievements(c, upload.DefaultLimits(), nil)
	err := svc.Add(context.Background(),
		models.AchievementFields{Description: "Annual Gala", Venue: "City Hall", Date: "2024-05-01"},
		[]upload.File{img})
	require.NoError(t, err)

	assert.Equal(t, 1, api.count(http.MethodPost, client.PathAchievements))
	assert.Equal(t, 1, api.count(http.MethodGet, client.PathAchievements), "success refreshes the list")
}

func TestContent_AddCompressesLargeImage(t *testing.T) {
	api, c := newFakeAPI(t)
	api.on(http.MethodGet, client.PathActivities, sealedReply(t, []models.Activity{}))

	big := bigPNG(t)
	api.on(http.MethodPost, client.PathActivities, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(8<<20))
		fh := r.MultipartForm.File["image"][0]
		assert.Equal(t, "poster.png", fh.Filename)
		assert.Equal(t, "image/png", fh.Header.Get("Content-Type"))
		assert.LessOrEqual(t, fh.Size, upload.DefaultLimits().TargetBytes())
		ok(w, r)
	})

	svc := NewActivities(c, upload.DefaultLimits(), nil)
	require.NoError(t, svc.Add(context.Background(),
		models.ActivityFields{Description: "Tree planting", Location: "Karura", Date: "2024-07-01"},
		[]upload.File{big}))
}

func TestContent_AddRejectsTooManyImages(t *testing.T) {
	api, c := newFakeAPI(t)
	svc := NewLeaders(c, upload.DefaultLimits(), nil)

	imgs := []upload.File{{Name: "a.png", Data: []byte("a")}, {Name: "b.png", Data: []byte("b")}}
	err := svc.Add(context.Background(), models.LeaderFields{Name: "Grace"}, imgs)
	require.ErrorIs(t, err, common.ErrTooManyFiles)

	err = svc.Add(context.Background(), models.LeaderFields{Name: "Grace"}, nil)
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Zero(t, api.total())
}

func TestContent_MediaTakesTenImages(t *testing.T) {
	api, c := newFakeAPI(t)
	api.on(http.MethodGet, client.PathMedia, sealedReply(t, []models.MediaItem{}))
	api.on(http.MethodPost, client.PathMedia, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(8<<20))
		assert.Len(t, r.MultipartForm.File["media"], 10)
		ok(w, r)
	})

	imgs := make([]upload.File, 10)
	for i := range imgs {
		imgs[i] = upload.File{Name: "p.jpg", MIMEType: "image/jpeg", Data: []byte{byte(i)}}
	}

	svc := NewMedia(c, upload.DefaultLimits(), nil)
	require.NoError(t, svc.Add(context.Background(), models.MediaFields{Description: "Gala night"}, imgs))

	err := svc.Add(context.Background(), models.MediaFields{Description: "Gala night"}, append(imgs, imgs[0]))
	require.ErrorIs(t, err, common.ErrTooManyFiles)
	assert.Equal(t, 1, api.count(http.MethodPost, client.PathMedia))
}

func TestContent_SubmitEdit(t *testing.T) {
	api, c := newFakeAPI(t)
	api.on(http.MethodGet, client.PathAchievements, sealedReply(t, gala))
	api.on(http.MethodPut, client.PathAchievements+"/1", func(w http.ResponseWriter, r *http.Request) {
		var fields map[string]string
		openEnvelope(t, r, &fields)
		assert.Equal(t, map[string]string{"description": "Annual Gala", "venue": "KICC", "date": "2024-05-01"}, fields)
		assert.Equal(t, "KICC", r.FormValue("venue"))
		ok(w, r)
	})

	svc := NewAchievements(c, upload.DefaultLimits(), nil)
	ctx := context.Background()
	require.NoError(t, svc.Fetch(ctx))
	require.NoError(t, svc.Edit("1", liststore.Patch{"venue": "KICC"}))
	require.NoError(t, svc.SubmitEdit(ctx, "1", nil))

	got, _ := svc.Store().Get("1")
	assert.Equal(t, "KICC", got.Venue)
	_, editing := svc.Store().Editing()
	assert.False(t, editing)
}

func TestContent_SubmitEditFailureKeepsDraft(t *testing.T) {
	api, c := newFakeAPI(t)
	api.on(http.MethodGet, client.PathAchievements, sealedReply(t, gala))
	api.on(http.MethodPut, client.PathAchievements+"/1", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusInternalServerError, map[string]any{"message": "db down"})
	})

	svc := NewAchievements(c, upload.DefaultLimits(), nil)
	ctx := context.Background()
	require.NoError(t, svc.Fetch(ctx))
	require.NoError(t, svc.Edit("1", liststore.Patch{"venue": "KICC"}))

	err := svc.SubmitEdit(ctx, "1", nil)
	require.ErrorIs(t, err, common.ErrRequestFailed)

	d, ok := svc.Store().Draft("1")
	require.True(t, ok)
	assert.Equal(t, "KICC", d["venue"])
	got, _ := svc.Store().Get("1")
	assert.Equal(t, "City Hall", got.Venue)
}

func TestContent_DeleteRollsBackOnFailure(t *testing.T) {
	api, c := newFakeAPI(t)
	api.on(http.MethodGet, client.PathAchievements, sealedReply(t, gala))
	api.on(http.MethodDelete, client.PathAchievements+"/2", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusForbidden, map[string]any{"success": false, "message": "not allowed"})
	})
	api.on(http.MethodDelete, client.PathAchievements+"/1", ok)

	svc := NewAchievements(c, upload.DefaultLimits(), nil)
	ctx := context.Background()
	require.NoError(t, svc.Fetch(ctx))

	err := svc.Delete(ctx, "2")
	require.ErrorIs(t, err, common.ErrRequestFailed)
	assert.Equal(t, gala, svc.Store().Items())

	require.NoError(t, svc.Delete(ctx, "1"))
	assert.Equal(t, gala[1:], svc.Store().Items())
}
