package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/arkadconsole/internal/client/client"
	"github.com/dmitrijs2005/arkadconsole/internal/client/config"
	"github.com/dmitrijs2005/arkadconsole/internal/client/session"
	"github.com/dmitrijs2005/arkadconsole/internal/cryptox"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("0123456789abcdef")

// harness runs an App against an httptest server routing by "METHOD /path".
type harness struct {
	t      *testing.T
	app    *App
	out    *bytes.Buffer
	cfg    *config.Config
	routes map[string]http.HandlerFunc

	mu    sync.Mutex
	calls map[string]int
}

func newHarness(t *testing.T, role string, input ...string) *harness {
	t.Helper()

	h := &harness{t: t, out: &bytes.Buffer{}, routes: map[string]http.HandlerFunc{}, calls: map[string]int{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		h.mu.Lock()
		h.calls[key]++
		route, ok := h.routes[key]
		h.mu.Unlock()
		if !ok {
			reply(w, http.StatusNotFound, map[string]any{"success": false, "message": "no route " + key})
			return
		}
		route(w, r)
	}))
	t.Cleanup(srv.Close)

	h.on(http.MethodPost, client.PathLogin, func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, map[string]any{"success": true, "accessToken": token(t, role)})
	})

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.ExportDir = t.TempDir()
	cfg.MessageTTL = time.Minute
	cfg.IdleTimeout = 0
	h.cfg = cfg

	db, err := client.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var mgr *session.Manager
	api := client.NewHTTPClient(srv.URL, testKey,
		client.WithTokenSource(client.TokenFunc(func() string { return mgr.Token() })))
	mgr = session.NewManager(api, db, nil)

	h.app = newApp(cfg, nil, api, mgr, strings.NewReader(strings.Join(input, "\n")+"\n"), h.out)
	h.app.db = db
	h.app.now = func() time.Time { return time.Date(2024, 6, 14, 9, 0, 0, 0, time.UTC) }

	orig := getPassword
	getPassword = func(io.Writer, string) ([]byte, error) { return []byte("Secret1!"), nil }
	t.Cleanup(func() { getPassword = orig })

	return h
}

func (h *harness) on(method, path string, fn http.HandlerFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.routes[method+" "+path] = fn
}

func (h *harness) count(method, path string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls[method+" "+path]
}

func (h *harness) run() string {
	h.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	h.app.Run(ctx)
	return h.out.String()
}

func token(t *testing.T, role string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":       "1",
		"username": "jane@arkad.org",
		"role":     role,
		"name":     "Jane",
		"exp":      time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("server-secret"))
	require.NoError(t, err)
	return tok
}

func reply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func sealed(t *testing.T, v any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		env, err := cryptox.Encrypt(v, testKey)
		require.NoError(t, err)
		reply(w, http.StatusOK, map[string]any{"success": true, "data": env})
	}
}

func writePNG(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := range 16 {
		for x := range 16 {
			img.Set(x, y, color.RGBA{R: uint8(x * 16), G: uint8(y * 16), B: 90, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "photo.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}
