package session

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/arkadconsole/internal/client/client"
	"github.com/dmitrijs2005/arkadconsole/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/arkadconsole/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	token string
	err   error

	calls    int
	lastUser string
}

func (f *fakeAuth) Login(_ context.Context, username, _ string) (string, error) {
	f.calls++
	f.lastUser = username
	return f.token, f.err
}

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func makeToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("server-secret"))
	require.NoError(t, err)
	return tok
}

func adminToken(t *testing.T) string {
	return makeToken(t, jwt.MapClaims{
		"id":       float64(42),
		"username": "admin@arkad.org",
		"role":     "admin",
		"name":     "Grace",
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
}

func TestLogin_PersistsBothEntries(t *testing.T) {
	db := setupDB(t)
	auth := &fakeAuth{token: adminToken(t)}
	m := NewManager(auth, db, nil)
	ctx := context.Background()

	s, err := m.Login(ctx, Credentials{Username: "admin@arkad.org", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, Identity{ID: "42", Username: "admin@arkad.org", Role: RoleAdmin, Name: "Grace"}, s.Identity)
	assert.Equal(t, auth.token, m.Token())

	repo := metadata.NewSQLiteRepository(db)
	tok, err := repo.Get(ctx, common.StorageKeyAccessToken)
	require.NoError(t, err)
	assert.JSONEq(t, `"`+auth.token+`"`, string(tok))

	user, err := repo.Get(ctx, common.StorageKeyUserData)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"42","username":"admin@arkad.org","role":"admin","name":"Grace"}`, string(user))
}

func TestLogin_EmptyCredentialsNeverReachServer(t *testing.T) {
	auth := &fakeAuth{}
	m := NewManager(auth, setupDB(t), nil)

	_, err := m.Login(context.Background(), Credentials{Username: " ", Password: "x"})
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Zero(t, auth.calls)
}

func TestLogin_ServerErrorKeepsSignedOut(t *testing.T) {
	auth := &fakeAuth{err: &client.APIError{Status: 200, Message: "Invalid credentials"}}
	m := NewManager(auth, setupDB(t), nil)

	_, err := m.Login(context.Background(), Credentials{Username: "a", Password: "b"})
	require.ErrorIs(t, err, common.ErrRequestFailed)
	_, ok := m.Current()
	assert.False(t, ok)
}

func TestLogin_BadTokens(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"not a jwt", "abc", common.ErrRequestFailed},
		{"unknown role", makeToken(t, jwt.MapClaims{"id": "1", "role": "owner"}), common.ErrForbidden},
		{"no id", makeToken(t, jwt.MapClaims{"role": "member"}), common.ErrRequestFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(&fakeAuth{token: tt.token}, setupDB(t), nil)
			_, err := m.Login(context.Background(), Credentials{Username: "a", Password: "b"})
			require.ErrorIs(t, err, tt.want)
			assert.Empty(t, m.Token())
		})
	}
}

func TestRestore_AfterLogin(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	first := NewManager(&fakeAuth{token: adminToken(t)}, db, nil)
	want, err := first.Login(ctx, Credentials{Username: "a", Password: "b"})
	require.NoError(t, err)

	second := NewManager(&fakeAuth{}, db, nil)
	got, err := second.Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, *want, *got)

	cur, ok := second.Current()
	require.True(t, ok)
	assert.Equal(t, RoleAdmin, cur.Identity.Role)
}

func TestRestore_AbsentOrMalformed(t *testing.T) {
	tests := []struct {
		name    string
		entries map[string]string
	}{
		{"empty storage", nil},
		{"token only", map[string]string{common.StorageKeyAccessToken: `"tok"`}},
		{"user only", map[string]string{common.StorageKeyUserData: `{"id":"1","role":"admin"}`}},
		{"token not json", map[string]string{
			common.StorageKeyAccessToken: `tok`,
			common.StorageKeyUserData:    `{"id":"1","role":"admin"}`,
		}},
		{"user not json", map[string]string{
			common.StorageKeyAccessToken: `"tok"`,
			common.StorageKeyUserData:    `{`,
		}},
		{"unknown role", map[string]string{
			common.StorageKeyAccessToken: `"tok"`,
			common.StorageKeyUserData:    `{"id":"1","role":"owner"}`,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupDB(t)
			ctx := context.Background()
			repo := metadata.NewSQLiteRepository(db)
			for k, v := range tt.entries {
				require.NoError(t, repo.Set(ctx, k, []byte(v)))
			}

			m := NewManager(&fakeAuth{}, db, nil)
			s, err := m.Restore(ctx)
			require.ErrorIs(t, err, common.ErrNoSession)
			assert.Nil(t, s)
			assert.Empty(t, m.Token())
		})
	}
}

func TestRestore_ExpiredToken(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	tok := makeToken(t, jwt.MapClaims{"id": "1", "role": "member", "exp": time.Now().Add(-time.Minute).Unix()})
	m := NewManager(&fakeAuth{token: tok}, db, nil)
	_, err := m.Login(ctx, Credentials{Username: "a", Password: "b"})
	require.NoError(t, err)

	_, err = NewManager(&fakeAuth{}, db, nil).Restore(ctx)
	require.ErrorIs(t, err, common.ErrNoSession)
	require.ErrorIs(t, err, common.ErrAuthExpired)
}

func TestLogout_ClearsBothEntries(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	m := NewManager(&fakeAuth{token: adminToken(t)}, db, nil)

	_, err := m.Login(ctx, Credentials{Username: "a", Password: "b"})
	require.NoError(t, err)
	require.NoError(t, m.Logout(ctx))

	assert.Empty(t, m.Token())
	repo := metadata.NewSQLiteRepository(db)
	for _, k := range []string{common.StorageKeyAccessToken, common.StorageKeyUserData} {
		_, err := repo.Get(ctx, k)
		require.ErrorIs(t, err, common.ErrNotFound, k)
	}

	_, err = m.Restore(ctx)
	require.ErrorIs(t, err, common.ErrNoSession)
}

func TestLogout_StorageFailureStillSignsOut(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	m := NewManager(&fakeAuth{token: adminToken(t)}, db, nil)
	_, err := m.Login(ctx, Credentials{Username: "a", Password: "b"})
	require.NoError(t, err)

	require.NoError(t, db.Close())
	require.Error(t, m.Logout(ctx))
	assert.Empty(t, m.Token())
}

func TestAuthorize(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	m := NewManager(&fakeAuth{token: adminToken(t)}, db, nil)
	require.ErrorIs(t, m.Authorize(CapViewContent), common.ErrNoSession)

	_, err := m.Login(ctx, Credentials{Username: "a", Password: "b"})
	require.NoError(t, err)

	require.NoError(t, m.Authorize(CapManageContent))
	err = m.Authorize(CapManageUsers)
	require.ErrorIs(t, err, common.ErrForbidden)
	assert.False(t, errors.Is(err, common.ErrNoSession))
}
