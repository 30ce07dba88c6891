package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/arkadconsole/internal/common"
	"github.com/dmitrijs2005/arkadconsole/internal/cryptox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("0123456789abcdef")

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewHTTPClient(srv.URL+"/", testKey, opts...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestDo_SetsHeaders(t *testing.T) {
	var got http.Header
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}, WithTokenSource(TokenFunc(func() string { return "tok" })))

	_, err := c.Do(context.Background(), http.MethodGet, PathUsers, nil, "", nil)
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok", got.Get(common.AuthorizationHeaderName))
	assert.Len(t, got.Get(common.RequestIDHeaderName), 36)
}

func TestDo_NoTokenNoAuthorizationHeader(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get(common.AuthorizationHeaderName))
		writeJSON(w, http.StatusOK, map[string]any{})
	})

	_, err := c.Do(context.Background(), http.MethodGet, "/x", nil, "", nil)
	require.NoError(t, err)
}

func TestDo_ErrorMapping(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMsg     string
		authExpired bool
	}{
		{"server message", http.StatusBadRequest, `{"message":"Receipt already used"}`, "Receipt already used", false},
		{"no body", http.StatusInternalServerError, ``, "request failed with status 500", false},
		{"unauthorized", http.StatusUnauthorized, `{"message":"jwt expired"}`, "jwt expired", true},
		{"explicit failure on 200", http.StatusOK, `{"success":false,"message":"Invalid credentials"}`, "Invalid credentials", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := c.Do(context.Background(), http.MethodGet, "/x", nil, "", nil)
			require.ErrorIs(t, err, common.ErrRequestFailed)
			assert.Equal(t, tt.wantMsg, err.Error())
			assert.Equal(t, tt.authExpired, errors.Is(err, common.ErrAuthExpired))

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
		})
	}
}

func TestDo_MalformedReply(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<html>")
	})

	_, err := c.Do(context.Background(), http.MethodGet, "/x", nil, "", nil)
	require.ErrorIs(t, err, common.ErrRequestFailed)
}

func TestDo_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c := NewHTTPClient(srv.URL, testKey)
	_, err := c.Do(context.Background(), http.MethodGet, "/x", nil, "", nil)
	require.ErrorIs(t, err, common.ErrRequestFailed)
}

func TestDo_CancelAbortsRequest(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := c.Do(ctx, http.MethodGet, "/slow", nil, "", nil)
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, err, common.ErrRequestFailed)
}

func TestSendEncrypted_BodyIsEnvelope(t *testing.T) {
	var env cryptox.Envelope
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&env))
		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "message": "ok"})
	})

	reply, err := c.SendEncrypted(context.Background(), http.MethodPost, PathSignup, map[string]string{"email": "a@b.org"})
	require.NoError(t, err)
	assert.Equal(t, "ok", reply.Message)

	var got map[string]string
	require.NoError(t, cryptox.Decrypt(env, testKey, &got))
	assert.Equal(t, "a@b.org", got["email"])
}

func TestGetEncrypted_OpensData(t *testing.T) {
	type item struct {
		ID    string `json:"id"`
		Venue string `json:"venue"`
	}
	want := []item{{ID: "1", Venue: "City Hall"}}

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		env, err := cryptox.Encrypt(want, testKey)
		require.NoError(t, err)
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": env})
	})

	var got []item
	require.NoError(t, c.GetEncrypted(context.Background(), PathAchievements, nil, &got))
	assert.Equal(t, want, got)
}

func TestGetEncrypted_PlainDataIsDecryptionFailed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": []string{"a"}})
	})

	var got []string
	err := c.GetEncrypted(context.Background(), PathAchievements, nil, &got)
	require.ErrorIs(t, err, common.ErrDecryptionFailed)
}

func TestGetJSON_QueryAndData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2024-01-01", r.URL.Query().Get("startDate"))
		writeJSON(w, http.StatusOK, map[string]any{"data": []int{1, 2}})
	})

	var got []int
	err := c.GetJSON(context.Background(), PathDonations, url.Values{"startDate": {"2024-01-01"}}, &got)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, got)
}

func TestSendMultipart_PassesContentType(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	})

	_, err := c.SendMultipart(context.Background(), http.MethodPut, PathAchievements+"/1",
		"multipart/form-data; boundary=x", strings.NewReader("--x--\r\n"))
	require.NoError(t, err)
}

func TestLogin(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, PathLogin, r.URL.Path)

		var env cryptox.Envelope
		require.NoError(t, json.NewDecoder(r.Body).Decode(&env))
		var creds map[string]string
		require.NoError(t, cryptox.Decrypt(env, testKey, &creds))

		if creds["password"] != "S3cret!" {
			writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "accessToken": "jwt"})
	})

	tok, err := c.Login(context.Background(), "admin", "S3cret!")
	require.NoError(t, err)
	assert.Equal(t, "jwt", tok)

	_, err = c.Login(context.Background(), "admin", "wrong")
	require.ErrorIs(t, err, common.ErrRequestFailed)
	assert.Equal(t, "Invalid credentials", Message(err, "fallback"))
	assert.EqualValues(t, 2, calls.Load())
}

func TestLogin_MissingToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	})

	_, err := c.Login(context.Background(), "admin", "x")
	require.ErrorIs(t, err, common.ErrRequestFailed)
}

func TestMessage_Fallback(t *testing.T) {
	assert.Equal(t, "fallback", Message(io.EOF, "fallback"))
	assert.Equal(t, "fallback", Message(&APIError{Status: 500}, "fallback"))
}
