package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rryowa/fitness_session/internal/client"
	"github.com/rryowa/fitness_session/internal/models"
	"github.com/rryowa/fitness_session/internal/storage"
	"github.com/rryowa/fitness_session/internal/storage/memory"
	"github.com/rryowa/fitness_session/internal/util"
)

const (
	testUser     = "alice"
	testPassword = "correct-horse"
)

// fakeBackend speaks the remote API contract for a single account.
type fakeBackend struct {
	mu         sync.Mutex
	access     string
	refresh    string
	issued     int
	activities map[int64]models.Activity
	nextID     int64

	failLogout  bool
	failProfile bool
	logoutCalls int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{activities: make(map[int64]models.Activity)}
}

func (f *fakeBackend) profile() models.User {
	return models.User{Username: testUser, Email: "alice@example.com", FirstName: "Alice", LastName: "Doe"}
}

// expireAccess makes the current access token stale, as if its TTL elapsed.
func (f *fakeBackend) expireAccess() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.access = "expired"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeBackend) authorized(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get("Authorization") == "Bearer "+f.access && f.access != "" {
		return true
	}
	writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{
		Detail: "Given token not valid for any token type",
		Code:   "token_not_valid",
	})
	return false
}

func (f *fakeBackend) newAccess() string {
	f.issued++
	f.access = "access-" + strconv.Itoa(f.issued)
	return f.access
}

func (f *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	lock := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			f.mu.Lock()
			defer f.mu.Unlock()
			h(w, r)
		}
	}

	mux.HandleFunc("POST /auth/register/", lock(func(w http.ResponseWriter, r *http.Request) {
		var req models.RegisterRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Username == testUser {
			writeJSON(w, http.StatusBadRequest, map[string][]string{
				"username": {"A user with that username already exists."},
			})
			return
		}
		writeJSON(w, http.StatusCreated, models.User{Username: req.Username, Email: req.Email})
	}))
	mux.HandleFunc("POST /token/", lock(func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Username != testUser || req.Password != testPassword {
			writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{
				Detail: "No active account found with the given credentials",
			})
			return
		}
		f.refresh = "refresh-1"
		writeJSON(w, http.StatusOK, models.TokenPair{Access: f.newAccess(), Refresh: f.refresh})
	}))
	mux.HandleFunc("POST /token/refresh/", lock(func(w http.ResponseWriter, r *http.Request) {
		var req models.RefreshRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Refresh == "" || req.Refresh != f.refresh {
			writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Detail: "Token is invalid or expired"})
			return
		}
		writeJSON(w, http.StatusOK, models.RefreshResponse{Access: f.newAccess()})
	}))
	mux.HandleFunc("POST /auth/logout/", lock(func(w http.ResponseWriter, r *http.Request) {
		f.logoutCalls++
		if f.failLogout {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if !f.authorized(w, r) {
			return
		}
		f.access, f.refresh = "", ""
		w.WriteHeader(http.StatusResetContent)
	}))
	mux.HandleFunc("GET /auth/me/", lock(func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(w, r) {
			return
		}
		if f.failProfile {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, f.profile())
	}))
	mux.HandleFunc("GET /activities/", lock(func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(w, r) {
			return
		}
		out := make([]models.Activity, 0, len(f.activities))
		for id := int64(1); id <= f.nextID; id++ {
			if a, ok := f.activities[id]; ok {
				out = append(out, a)
			}
		}
		writeJSON(w, http.StatusOK, out)
	}))
	mux.HandleFunc("POST /activities/", lock(func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(w, r) {
			return
		}
		var req models.CreateActivityRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Title == "" {
			writeJSON(w, http.StatusBadRequest, map[string][]string{"title": {"This field is required."}})
			return
		}
		f.nextID++
		a := models.Activity{ID: f.nextID, Title: req.Title, Description: req.Description, Status: req.Status}
		f.activities[a.ID] = a
		writeJSON(w, http.StatusCreated, a)
	}))
	mux.HandleFunc("PATCH /activities/{id}/", lock(func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(w, r) {
			return
		}
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		a, ok := f.activities[id]
		if !ok {
			writeJSON(w, http.StatusNotFound, models.ErrorResponse{Detail: "Not found."})
			return
		}
		var req models.UpdateActivityRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		a.Status = req.Status
		f.activities[id] = a
		writeJSON(w, http.StatusOK, a)
	}))
	mux.HandleFunc("DELETE /activities/{id}/", lock(func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(w, r) {
			return
		}
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if _, ok := f.activities[id]; !ok {
			writeJSON(w, http.StatusNotFound, models.ErrorResponse{Detail: "Not found."})
			return
		}
		delete(f.activities, id)
		w.WriteHeader(http.StatusNoContent)
	}))
	return mux
}

func newTestSession(t *testing.T, f *fakeBackend) (*SessionService, *memory.CredentialStore) {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)

	log := zaptest.NewLogger(t).Sugar()
	store := memory.NewCredentialStore()
	p := client.NewPipeline(srv.URL, store, log)
	return NewSessionService(p, store, log), store
}

// requireConsistent asserts the store holds both tokens or neither.
func requireConsistent(t *testing.T, store *memory.CredentialStore) {
	t.Helper()
	n := store.Len()
	require.True(t, n == 0 || n == 2, "store holds %d tokens", n)
}

func TestStart_WithoutCredentials(t *testing.T) {
	s, store := newTestSession(t, newFakeBackend())
	assert.True(t, s.State().Loading)

	st := s.Start(context.Background())
	assert.False(t, st.Loading)
	assert.False(t, st.Authenticated())
	assert.Equal(t, 0, store.Len())
}

func TestStart_WithValidCredentials(t *testing.T) {
	f := newFakeBackend()
	s, store := newTestSession(t, f)
	f.refresh = "refresh-1"
	f.access = "access-0"
	require.NoError(t, storage.SavePair(context.Background(), store, "access-0", "refresh-1"))

	st := s.Start(context.Background())
	require.True(t, st.Authenticated())
	assert.Equal(t, testUser, st.User.Username)
}

func TestStart_StaleCredentialsAreCleared(t *testing.T) {
	s, store := newTestSession(t, newFakeBackend())
	require.NoError(t, storage.SavePair(context.Background(), store, "bogus", "bogus"))

	st := s.Start(context.Background())
	assert.False(t, st.Authenticated())
	assert.Equal(t, 0, store.Len())
}

func TestLogin_LoadsProfile(t *testing.T) {
	ctx := context.Background()
	s, store := newTestSession(t, newFakeBackend())

	require.NoError(t, s.Login(ctx, testUser, testPassword))
	requireConsistent(t, store)
	assert.Equal(t, 2, store.Len())

	st := s.State()
	require.True(t, st.Authenticated())
	assert.Equal(t, "alice@example.com", st.User.Email)

	user, err := s.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.FirstName)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	s, store := newTestSession(t, newFakeBackend())

	err := s.Login(context.Background(), testUser, "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	var respErr util.ResponseError
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, http.StatusUnauthorized, respErr.Status)
	assert.Equal(t, "No active account found with the given credentials", respErr.Msg)
	assert.Equal(t, 0, store.Len())
	assert.False(t, s.State().Authenticated())
}

func TestLogin_ProfileFailureIsNotReturned(t *testing.T) {
	f := newFakeBackend()
	f.failProfile = true
	s, store := newTestSession(t, f)

	require.NoError(t, s.Login(context.Background(), testUser, testPassword))
	assert.False(t, s.State().Authenticated())
	assert.Equal(t, 0, store.Len())
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	s, store := newTestSession(t, newFakeBackend())

	user, err := s.Register(ctx, models.RegisterRequest{Username: "bob", Email: "bob@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "bob", user.Username)
	assert.Equal(t, 0, store.Len(), "registration must not log in")

	_, err = s.Register(ctx, models.RegisterRequest{Username: testUser})
	require.ErrorIs(t, err, ErrValidationFailed)

	var respErr util.ResponseError
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, "username: A user with that username already exists.", respErr.Msg)
}

func TestLogout_ClearsAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFakeBackend()
	s, store := newTestSession(t, f)
	require.NoError(t, s.Login(ctx, testUser, testPassword))

	s.Logout(ctx)
	assert.Equal(t, 0, store.Len())
	assert.False(t, s.State().Authenticated())

	s.Logout(ctx)
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, 1, f.logoutCalls)
}

func TestLogout_ServerFailureStillClears(t *testing.T) {
	ctx := context.Background()
	f := newFakeBackend()
	s, store := newTestSession(t, f)
	require.NoError(t, s.Login(ctx, testUser, testPassword))

	f.mu.Lock()
	f.failLogout = true
	f.mu.Unlock()

	s.Logout(ctx)
	assert.Equal(t, 0, store.Len())
	assert.False(t, s.State().Authenticated())
}

func TestActivities_CRUD(t *testing.T) {
	ctx := context.Background()
	s, store := newTestSession(t, newFakeBackend())
	require.NoError(t, s.Login(ctx, testUser, testPassword))

	list, err := s.ListActivities(ctx)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	created, err := s.CreateActivity(ctx, models.CreateActivityRequest{
		Title:       "Run",
		Description: "5k",
		Status:      models.StatusPlanned,
	})
	require.NoError(t, err)

	updated, err := s.UpdateActivity(ctx, created.ID, models.UpdateActivityRequest{Status: models.StatusInProgress})
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, updated.Status)

	list, err = s.ListActivities(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Run", list[0].Title)

	require.NoError(t, s.DeleteActivity(ctx, created.ID))

	err = s.DeleteActivity(ctx, created.ID)
	require.ErrorIs(t, err, ErrDeleteFailed)
	var respErr util.ResponseError
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, http.StatusNotFound, respErr.Status)

	_, err = s.UpdateActivity(ctx, 99, models.UpdateActivityRequest{Status: models.StatusCompleted})
	require.ErrorIs(t, err, ErrUpdateFailed)

	_, err = s.CreateActivity(ctx, models.CreateActivityRequest{Status: models.StatusPlanned})
	require.ErrorIs(t, err, ErrCreateFailed)
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, "title: This field is required.", respErr.Msg)

	requireConsistent(t, store)
}

func TestCreateActivity_RefreshesExpiredAccess(t *testing.T) {
	ctx := context.Background()
	f := newFakeBackend()
	s, store := newTestSession(t, f)
	require.NoError(t, s.Login(ctx, testUser, testPassword))
	f.expireAccess()

	created, err := s.CreateActivity(ctx, models.CreateActivityRequest{Title: "Run", Status: models.StatusPlanned})
	require.NoError(t, err)
	assert.Equal(t, "Run", created.Title)

	access, _, err := store.Get(ctx, storage.AccessTokenKey)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(access, "access-"))
	assert.NotEqual(t, "expired", access)
	requireConsistent(t, store)
}

func TestListActivities_SessionExpired(t *testing.T) {
	ctx := context.Background()
	f := newFakeBackend()
	s, store := newTestSession(t, f)
	require.NoError(t, s.Login(ctx, testUser, testPassword))

	f.mu.Lock()
	f.access, f.refresh = "", ""
	f.mu.Unlock()

	_, err := s.ListActivities(ctx)
	require.ErrorIs(t, err, ErrFetchFailed)
	require.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, 0, store.Len())
	assert.False(t, s.State().Authenticated())
}

func TestListActivities_NoCredentials(t *testing.T) {
	s, store := newTestSession(t, newFakeBackend())

	_, err := s.ListActivities(context.Background())
	require.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, 0, store.Len())
}

func TestSession_StoreNeverHoldsHalfAPair(t *testing.T) {
	ctx := context.Background()
	f := newFakeBackend()
	s, store := newTestSession(t, f)

	steps := []func(){
		func() { s.Start(ctx) },
		func() { _ = s.Login(ctx, testUser, "wrong") },
		func() { _ = s.Login(ctx, testUser, testPassword) },
		func() { f.expireAccess(); _, _ = s.ListActivities(ctx) },
		func() { _, _ = s.CreateActivity(ctx, models.CreateActivityRequest{Title: "x", Status: models.StatusPlanned}) },
		func() { f.mu.Lock(); f.access, f.refresh = "", ""; f.mu.Unlock(); _, _ = s.ListActivities(ctx) },
		func() { s.Logout(ctx) },
	}
	for i, step := range steps {
		step()
		t.Run(fmt.Sprintf("step %d", i), func(t *testing.T) {
			requireConsistent(t, store)
		})
	}
}
