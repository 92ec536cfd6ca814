package backend

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rryowa/fitness_session/internal/models"
	"github.com/rryowa/fitness_session/internal/storage/memory"
)

func newTestAuth(t *testing.T) (*AuthService, *TokenIssuer) {
	t.Helper()
	log := zaptest.NewLogger(t).Sugar()
	store := memory.NewStorage(log)
	issuer := newTestIssuer(t)
	return NewAuthService(store, store, issuer, log), issuer
}

func validRegistration() models.RegisterRequest {
	return models.RegisterRequest{
		Username:  "alice",
		Email:     "alice@example.com",
		FirstName: "Alice",
		LastName:  "Doe",
		Password:  "correct-horse",
		Password2: "correct-horse",
	}
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.RegisterRequest)
		field  string
		msg    string
	}{
		{
			name:   "missing username",
			mutate: func(r *models.RegisterRequest) { r.Username = " " },
			field:  "username",
			msg:    msgRequired,
		},
		{
			name:   "bad email",
			mutate: func(r *models.RegisterRequest) { r.Email = "alice" },
			field:  "email",
			msg:    msgInvalidEmail,
		},
		{
			name:   "short password",
			mutate: func(r *models.RegisterRequest) { r.Password, r.Password2 = "short", "short" },
			field:  "password",
			msg:    msgPasswordShort,
		},
		{
			name:   "mismatch",
			mutate: func(r *models.RegisterRequest) { r.Password2 = "different-horse" },
			field:  "password",
			msg:    msgPasswordMatch,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth, _ := newTestAuth(t)
			req := validRegistration()
			tt.mutate(&req)

			_, err := auth.Register(context.Background(), req)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields[tt.field], tt.msg)
		})
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	ctx := context.Background()
	auth, _ := newTestAuth(t)

	user, err := auth.Register(ctx, validRegistration())
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = auth.Register(ctx, validRegistration())
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{msgUsernameTaken}, verr.Fields["username"])
}

func TestLogin_RefreshLogout(t *testing.T) {
	ctx := context.Background()
	auth, _ := newTestAuth(t)
	_, err := auth.Register(ctx, validRegistration())
	require.NoError(t, err)

	_, err = auth.Login(ctx, "alice", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = auth.Login(ctx, "bob", "correct-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	pair, err := auth.Login(ctx, "alice", "correct-horse")
	require.NoError(t, err)

	userID, err := auth.Authenticate(ctx, pair.Access)
	require.NoError(t, err)

	me, err := auth.Me(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", me.Email)

	access, err := auth.Refresh(ctx, pair.Refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, access)

	assert.ErrorIs(t, auth.Logout(ctx, userID+1, pair.Refresh, pair.Access), ErrRefreshInvalid)
	require.NoError(t, auth.Logout(ctx, userID, pair.Refresh, pair.Access))

	_, err = auth.Authenticate(ctx, pair.Access)
	assert.ErrorIs(t, err, ErrTokenRevoked)
	_, err = auth.Refresh(ctx, pair.Refresh)
	assert.ErrorIs(t, err, ErrRefreshInvalid)
}

func TestRefresh_ExpiredSession(t *testing.T) {
	ctx := context.Background()
	auth, issuer := newTestAuth(t)
	_, err := auth.Register(ctx, validRegistration())
	require.NoError(t, err)

	pair, err := auth.Login(ctx, "alice", "correct-horse")
	require.NoError(t, err)

	later := time.Now().Add(issuer.RefreshTTL() + time.Minute)
	auth.now = func() time.Time { return later }

	_, err = auth.Refresh(ctx, pair.Refresh)
	assert.ErrorIs(t, err, ErrRefreshInvalid)
}

func TestRefresh_Malformed(t *testing.T) {
	auth, _ := newTestAuth(t)
	_, err := auth.Refresh(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrRefreshInvalid)
}
