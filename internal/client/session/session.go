// Package session holds who is signed in to the console.
//
// A Session is built from the bearer credential returned by login and the
// identity claims inside it. Both are kept in host storage as two JSON
// entries, "accessToken" and "userData", so Restore can rebuild the session
// when the console starts. Logout removes both entries together.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/arkadconsole/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/arkadconsole/internal/common"
	"github.com/dmitrijs2005/arkadconsole/internal/dbx"
	"github.com/dmitrijs2005/arkadconsole/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

// Identity is the user described by the token claims. It is stored as the
// "userData" entry.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Name     string `json:"name"`
}

type Session struct {
	Token    string
	Identity Identity
}

type Credentials struct {
	Username string
	Password string
}

// Authenticator exchanges credentials for a bearer token.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// Manager owns the current session. It is safe for concurrent use.
type Manager struct {
	auth Authenticator
	db   *sql.DB
	log  logging.Logger
	now  func() time.Time

	mu      sync.RWMutex
	current *Session
}

func NewManager(auth Authenticator, db *sql.DB, log logging.Logger) *Manager {
	if log == nil {
		log = logging.Nop()
	}
	return &Manager{auth: auth, db: db, log: log, now: time.Now}
}

func (m *Manager) repo(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(db)
}

// Login authenticates and persists the new session.
func (m *Manager) Login(ctx context.Context, c Credentials) (*Session, error) {
	if strings.TrimSpace(c.Username) == "" || c.Password == "" {
		return nil, &common.ValidationError{Fields: map[string]string{
			"username": "Please enter both email and password.",
		}}
	}

	token, err := m.auth.Login(ctx, c.Username, c.Password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	id, err := IdentityFromToken(token)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s := &Session{Token: token, Identity: id}
	if err := m.persist(ctx, s); err != nil {
		return nil, fmt.Errorf("login: save session: %w", err)
	}

	m.mu.Lock()
	m.current = s
	m.mu.Unlock()

	m.log.Info(ctx, "signed in", "user_id", id.ID, "role", string(id.Role))
	return s, nil
}

func (m *Manager) persist(ctx context.Context, s *Session) error {
	tok, err := json.Marshal(s.Token)
	if err != nil {
		return err
	}
	user, err := json.Marshal(s.Identity)
	if err != nil {
		return err
	}

	return dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := m.repo(tx)
		if err := repo.Set(ctx, common.StorageKeyAccessToken, tok); err != nil {
			return err
		}
		return repo.Set(ctx, common.StorageKeyUserData, user)
	})
}

// Logout forgets the session and removes both storage entries. The in-memory
// session is cleared even when storage fails.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()

	err := dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return m.repo(tx).Delete(ctx, common.StorageKeyAccessToken, common.StorageKeyUserData)
	})
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	m.log.Info(ctx, "signed out")
	return nil
}

// Restore rebuilds the session from host storage. It returns
// common.ErrNoSession when either entry is absent or malformed; an expired
// token additionally matches common.ErrAuthExpired.
func (m *Manager) Restore(ctx context.Context) (*Session, error) {
	s, err := m.load(ctx)

	m.mu.Lock()
	m.current = s
	m.mu.Unlock()

	return s, err
}

func (m *Manager) load(ctx context.Context) (*Session, error) {
	repo := m.repo(m.db)

	rawTok, err := repo.Get(ctx, common.StorageKeyAccessToken)
	if err != nil {
		return nil, noSession(err)
	}
	rawUser, err := repo.Get(ctx, common.StorageKeyUserData)
	if err != nil {
		return nil, noSession(err)
	}

	var s Session
	if err := json.Unmarshal(rawTok, &s.Token); err != nil || s.Token == "" {
		return nil, fmt.Errorf("%w: malformed %s", common.ErrNoSession, common.StorageKeyAccessToken)
	}
	if err := json.Unmarshal(rawUser, &s.Identity); err != nil || s.Identity.ID == "" {
		return nil, fmt.Errorf("%w: malformed %s", common.ErrNoSession, common.StorageKeyUserData)
	}
	if _, err := ParseRole(string(s.Identity.Role)); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrNoSession, err)
	}

	if exp, ok := tokenExpiry(s.Token); ok && !exp.After(m.now()) {
		return nil, fmt.Errorf("%w: %w", common.ErrNoSession, common.ErrAuthExpired)
	}
	return &s, nil
}

func noSession(err error) error {
	if errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("%w: %v", common.ErrNoSession, err)
	}
	return fmt.Errorf("%w: %w", common.ErrNoSession, err)
}

// Current returns a copy of the active session.
func (m *Manager) Current() (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return Session{}, false
	}
	return *m.current, true
}

// Token returns the bearer credential, or "" when signed out.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return ""
	}
	return m.current.Token
}

// Authorize checks the permission table for the signed-in role.
func (m *Manager) Authorize(c Capability) error {
	s, ok := m.Current()
	if !ok {
		return common.ErrNoSession
	}
	if !Can(s.Identity.Role, c) {
		return fmt.Errorf("%w: %s may not %s", common.ErrForbidden, s.Identity.Role, c)
	}
	return nil
}

// IdentityFromToken reads the id, username, role and name claims. The
// signature is not checked; the server verifies tokens it receives.
func IdentityFromToken(token string) (Identity, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Identity{}, fmt.Errorf("%w: decode token: %w", common.ErrRequestFailed, err)
	}

	role, err := ParseRole(claimString(claims, "role"))
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", common.ErrForbidden, err)
	}

	id := Identity{
		ID:       claimString(claims, "id"),
		Username: claimString(claims, "username"),
		Role:     role,
		Name:     claimString(claims, "name"),
	}
	if id.ID == "" {
		return Identity{}, fmt.Errorf("%w: token has no id claim", common.ErrRequestFailed)
	}
	return id, nil
}

func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// claimString renders string and numeric claims; numeric ids arrive as float64.
func claimString(claims jwt.MapClaims, name string) string {
	switch v := claims[name].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}
