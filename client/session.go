package client

import (
	"context"
	"encoding/json"
	"sync"
)

// sessionRecord is the durable session payload persisted between runs.
type sessionRecord struct {
	User struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
	AccessToken string `json:"accessToken,omitempty"`
}

// SessionStore is the single source of truth for who is logged in. State
// transitions run to completion under the store lock; network calls happen
// outside it, so unrelated reads stay consistent while a request is in flight.
type SessionStore struct {
	gw       *Gateway
	storage  SessionStorage
	projects *ProjectStore

	mu          sync.Mutex
	user        *User
	accessToken string
	status      OpStatus
	errMsg      string
}

// NewSessionStore creates a session store. projects, when non-nil, is reset on
// logout so one user's cached view never leaks into the next session.
func NewSessionStore(gw *Gateway, storage SessionStorage, projects *ProjectStore) *SessionStore {
	return &SessionStore{
		gw:       gw,
		storage:  storage,
		projects: projects,
		status:   StatusIdle,
	}
}

// Restore initializes the session from the durable record, if a well-formed
// one exists. Missing or malformed data leaves the session anonymous; Restore
// never fails.
func (s *SessionStore) Restore() {
	if s.storage == nil {
		return
	}
	data, err := s.storage.Load()
	if err != nil || len(data) == 0 {
		return
	}

	var rec sessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return
	}
	if rec.User.ID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &User{ID: rec.User.ID, Name: rec.User.Name, Email: rec.User.Email}
	s.accessToken = rec.AccessToken
	s.status = StatusIdle
	s.errMsg = ""
}

// Login authenticates with the server. On success the session becomes
// authenticated and the record is persisted. On failure only status and error
// change: an already-authenticated session stays logged in.
func (s *SessionStore) Login(ctx context.Context, creds Credentials) (User, error) {
	s.setLoading()

	user, token, err := s.gw.Login(ctx, creds)
	if err != nil {
		s.setFailed(err)
		return User{}, err
	}

	s.mu.Lock()
	u := user
	s.user = &u
	s.accessToken = token
	s.status = StatusSucceeded
	s.errMsg = ""
	s.mu.Unlock()

	s.persist(user, token)
	return user, nil
}

// Signup creates an account. The session is left as it was: a new user
// authenticates through an explicit Login.
func (s *SessionStore) Signup(ctx context.Context, profile Profile) (User, error) {
	s.setLoading()

	user, err := s.gw.Signup(ctx, profile)
	if err != nil {
		s.setFailed(err)
		return User{}, err
	}

	s.mu.Lock()
	s.status = StatusSucceeded
	s.errMsg = ""
	s.mu.Unlock()

	return user, nil
}

// Logout tears the session down: server-side revocation is attempted
// best-effort, then local state, the durable record, and the bound project
// store are all cleared regardless.
func (s *SessionStore) Logout(ctx context.Context) {
	_ = s.gw.Logout(ctx)

	s.mu.Lock()
	s.user = nil
	s.accessToken = ""
	s.status = StatusIdle
	s.errMsg = ""
	s.mu.Unlock()

	if s.storage != nil {
		_ = s.storage.Clear()
	}
	if s.projects != nil {
		s.projects.Reset()
	}
}

// User returns the current user, if authenticated.
func (s *SessionStore) User() (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// IsAuthenticated reports whether a user is present.
func (s *SessionStore) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil
}

// AccessToken returns the session's bearer token, empty when anonymous or on
// cookie-transport deployments. Suitable as a Gateway token source.
func (s *SessionStore) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken
}

// Status returns the status of the most recent operation.
func (s *SessionStore) Status() OpStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Err returns the last failure message, empty if none.
func (s *SessionStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

func (s *SessionStore) setLoading() {
	s.mu.Lock()
	s.status = StatusLoading
	s.errMsg = ""
	s.mu.Unlock()
}

func (s *SessionStore) setFailed(err error) {
	s.mu.Lock()
	s.status = StatusFailed
	s.errMsg = err.Error()
	s.mu.Unlock()
}

// persist writes the durable record. The in-memory session is already
// authoritative, so persistence trouble is swallowed rather than undoing a
// successful login.
func (s *SessionStore) persist(user User, token string) {
	if s.storage == nil {
		return
	}
	var rec sessionRecord
	rec.User.ID = user.ID
	rec.User.Name = user.Name
	rec.User.Email = user.Email
	rec.AccessToken = token

	if data, err := json.Marshal(rec); err == nil {
		_ = s.storage.Save(data)
	}
}
