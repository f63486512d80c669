package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestoreWithNoRecordIsAnonymous(t *testing.T) {
	sess := NewSessionStore(NewGateway("http://unused"), NewMemoryStorage(), nil)

	sess.Restore()

	assert.False(t, sess.IsAuthenticated())
	_, ok := sess.User()
	assert.False(t, ok)
	assert.Equal(t, StatusIdle, sess.Status())
}

func TestRestoreWithMalformedRecordIsAnonymous(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `}{garbage`},
		{"wrong shape", `["a","b"]`},
		{"missing user id", `{"user":{"name":"Ada"},"accessToken":"tok"}`},
		{"empty object", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := NewMemoryStorage()
			require.NoError(t, storage.Save([]byte(tt.data)))

			sess := NewSessionStore(NewGateway("http://unused"), storage, nil)
			sess.Restore()

			assert.False(t, sess.IsAuthenticated())
		})
	}
}

func TestRestoreWithWellFormedRecordAuthenticates(t *testing.T) {
	storage := NewMemoryStorage()
	require.NoError(t, storage.Save([]byte(`{"user":{"id":"u1","name":"Ada","email":"ada@example.com"},"accessToken":"tok-1"}`)))

	sess := NewSessionStore(NewGateway("http://unused"), storage, nil)
	sess.Restore()

	assert.True(t, sess.IsAuthenticated())
	user, ok := sess.User()
	require.True(t, ok)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "Ada", user.Name)
	assert.Equal(t, "tok-1", sess.AccessToken())
}

func TestLoginPersistsSessionRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"access_token":"tok-9","user":{"id":"u1","name":"Ada","email":"ada@example.com"}}`)
	}))
	defer server.Close()

	storage := NewMemoryStorage()
	sess := NewSessionStore(NewGateway(server.URL), storage, nil)

	user, err := sess.Login(context.Background(), Credentials{Email: "ada@example.com", Password: "pw"})

	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.True(t, sess.IsAuthenticated())
	assert.Equal(t, "tok-9", sess.AccessToken())
	assert.Equal(t, StatusSucceeded, sess.Status())

	data, err := storage.Load()
	require.NoError(t, err)
	var rec struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(data, &rec))
	assert.Equal(t, "u1", rec.User.ID)
	assert.Equal(t, "tok-9", rec.AccessToken)
}

func TestFailedLoginKeepsExistingSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"detail":"invalid email or password"}`)
	}))
	defer server.Close()

	storage := NewMemoryStorage()
	require.NoError(t, storage.Save([]byte(`{"user":{"id":"u1","name":"Ada","email":"ada@example.com"},"accessToken":"tok-1"}`)))

	sess := NewSessionStore(NewGateway(server.URL), storage, nil)
	sess.Restore()
	require.True(t, sess.IsAuthenticated())

	_, err := sess.Login(context.Background(), Credentials{Email: "ada@example.com", Password: "wrong"})

	require.Error(t, err)
	assert.Equal(t, StatusFailed, sess.Status())
	assert.Equal(t, "invalid email or password", sess.Err())
	// failure must not log out the already-authenticated session
	assert.True(t, sess.IsAuthenticated())
	user, ok := sess.User()
	require.True(t, ok)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "tok-1", sess.AccessToken())
}

func TestSignupDoesNotAuthenticate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"message":"user created successfully","user":{"id":"u2","name":"Grace","email":"grace@example.com"}}`)
	}))
	defer server.Close()

	sess := NewSessionStore(NewGateway(server.URL), NewMemoryStorage(), nil)

	user, err := sess.Signup(context.Background(), Profile{Name: "Grace", Email: "grace@example.com", Password: "pw"})

	require.NoError(t, err)
	assert.Equal(t, "u2", user.ID)
	assert.False(t, sess.IsAuthenticated())
	assert.Equal(t, StatusSucceeded, sess.Status())
}

func TestSignupFailureSurfacesServerDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, `{"detail":"user with this email already exists"}`)
	}))
	defer server.Close()

	sess := NewSessionStore(NewGateway(server.URL), NewMemoryStorage(), nil)

	_, err := sess.Signup(context.Background(), Profile{Name: "Ada", Email: "ada@example.com", Password: "pw"})

	require.Error(t, err)
	assert.Equal(t, StatusFailed, sess.Status())
	assert.Equal(t, "user with this email already exists", sess.Err())
}

func TestLogoutClearsSessionStorageAndProjects(t *testing.T) {
	var logoutCalled bool
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		logoutCalled = true
		fmt.Fprint(w, `{"message":"logged out successfully"}`)
	})
	mux.HandleFunc("/projects", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id":"p1","status":"OPEN"}]`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	gw := NewGateway(server.URL)
	projects := NewProjectStore(gw)
	storage := NewMemoryStorage()
	require.NoError(t, storage.Save([]byte(`{"user":{"id":"u1","name":"Ada","email":"a@b.c"},"accessToken":"tok"}`)))

	sess := NewSessionStore(gw, storage, projects)
	sess.Restore()
	require.True(t, sess.IsAuthenticated())

	_, err := projects.FetchAll(context.Background())
	require.NoError(t, err)
	projects.SelectCurrent(projects.Projects()[0])

	sess.Logout(context.Background())

	assert.True(t, logoutCalled)
	assert.False(t, sess.IsAuthenticated())
	_, ok := sess.User()
	assert.False(t, ok)
	assert.Empty(t, sess.AccessToken())
	assert.Equal(t, StatusIdle, sess.Status())

	// no per-user state leaks into the next session
	assert.Empty(t, projects.Projects())
	_, ok = projects.Current()
	assert.False(t, ok)

	data, err := storage.Load()
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestLogoutClearsEvenWhenServerUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	storage := NewMemoryStorage()
	require.NoError(t, storage.Save([]byte(`{"user":{"id":"u1"},"accessToken":"tok"}`)))

	sess := NewSessionStore(NewGateway(server.URL), storage, nil)
	sess.Restore()
	require.True(t, sess.IsAuthenticated())

	sess.Logout(context.Background())

	assert.False(t, sess.IsAuthenticated())
	data, _ := storage.Load()
	assert.Nil(t, data)
}

func TestSessionStoreAsGatewayTokenSource(t *testing.T) {
	var gotAuth string
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"access_token":"tok-5","user":{"id":"u1","name":"Ada","email":"a@b.c"}}`)
	})
	mux.HandleFunc("/projects", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"id":"p1","status":"OPEN"}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	gw := NewGateway(server.URL)
	projects := NewProjectStore(gw)
	sess := NewSessionStore(gw, NewMemoryStorage(), projects)
	gw.UseTokenSource(sess.AccessToken)

	_, err := sess.Login(context.Background(), Credentials{Email: "a@b.c", Password: "pw"})
	require.NoError(t, err)

	_, err = projects.Create(context.Background(), ProjectDraft{Title: "X", Budget: 1})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-5", gotAuth)
}
