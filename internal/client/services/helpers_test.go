package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/dmitrijs2005/arkadconsole/internal/client/client"
	"github.com/dmitrijs2005/arkadconsole/internal/cryptox"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

// fakeAPI is an httptest server routing by "METHOD /path".
type fakeAPI struct {
	t      *testing.T
	routes map[string]http.HandlerFunc

	mu    sync.Mutex
	calls map[string]int
}

func (f *fakeAPI) count(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method+" "+path]
}

func (f *fakeAPI) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func newFakeAPI(t *testing.T) (*fakeAPI, *client.HTTPClient) {
	t.Helper()
	f := &fakeAPI{t: t, routes: map[string]http.HandlerFunc{}, calls: map[string]int{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		f.mu.Lock()
		f.calls[key]++
		f.mu.Unlock()
		h, ok := f.routes[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"success":false,"message":"no route ` + key + `"}`))
			return
		}
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return f, client.NewHTTPClient(srv.URL, testKey)
}

func (f *fakeAPI) on(method, path string, h http.HandlerFunc) {
	f.routes[method+" "+path] = h
}

func reply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func sealedReply(t *testing.T, v any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		env, err := cryptox.Encrypt(v, testKey)
		require.NoError(t, err)
		reply(w, http.StatusOK, map[string]any{"success": true, "data": env})
	}
}

func ok(w http.ResponseWriter, _ *http.Request) {
	reply(w, http.StatusOK, map[string]any{"success": true, "message": "done"})
}

func openEnvelope(t *testing.T, r *http.Request, out any) {
	t.Helper()
	var env cryptox.Envelope
	if ct := r.Header.Get("Content-Type"); ct == "application/json" {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&env))
	} else {
		require.NoError(t, r.ParseMultipartForm(8<<20))
		env = cryptox.Envelope{IV: r.FormValue("iv"), Ciphertext: r.FormValue("ciphertext")}
	}
	require.NoError(t, cryptox.Decrypt(env, testKey, out))
}
