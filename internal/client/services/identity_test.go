package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/OleoMar/alphawave/internal/client/models"
	"github.com/OleoMar/alphawave/internal/common"
	"github.com/OleoMar/alphawave/internal/logging"

	_ "modernc.org/sqlite"
)

// ---- helpers ----

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE users (
  id              TEXT PRIMARY KEY,
  email           TEXT NOT NULL UNIQUE,
  password_digest TEXT NOT NULL,
  full_name       TEXT NOT NULL,
  phone           TEXT NOT NULL DEFAULT '',
  gender          TEXT NOT NULL DEFAULT '',
  date_of_birth   TEXT NOT NULL DEFAULT '',
  created_at      TEXT NOT NULL,
  last_login      TEXT
);
CREATE TABLE kv (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);
`)
	require.NoError(t, err)
	return db
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newIdentity(t *testing.T) *IdentityService {
	t.Helper()
	return NewIdentityService(setupDB(t), testLogger())
}

func validRegistration() models.RegisterInput {
	return models.RegisterInput{
		Email:           "Ada@Example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		FullName:        "Ada Lovelace",
		Phone:           "+1 (415) 555-0100",
	}
}

// ---- tests ----

func TestRegisterEstablishesSession(t *testing.T) {
	ctx := context.Background()
	svc := newIdentity(t)

	require.NoError(t, svc.Register(ctx, validRegistration()))

	session, err := svc.CurrentSession(ctx)
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", session.Email)
	require.Equal(t, "Ada Lovelace", session.FullName)
	require.NotEmpty(t, session.UserID)
	require.True(t, svc.IsAuthenticated(ctx))
}

func TestRegisterValidationPriority(t *testing.T) {
	ctx := context.Background()
	svc := newIdentity(t)

	tests := []struct {
		name   string
		mutate func(*models.RegisterInput)
		want   string
	}{
		{"missing email", func(in *models.RegisterInput) { in.Email = "" }, "required"},
		{"missing password", func(in *models.RegisterInput) { in.Password = "" }, "required"},
		{"missing full name", func(in *models.RegisterInput) { in.FullName = "" }, "required"},
		{"malformed email", func(in *models.RegisterInput) { in.Email = "not an email" }, "valid email"},
		{"weak password", func(in *models.RegisterInput) {
			in.Password = "abc"
			in.ConfirmPassword = "abc"
		}, "at least 6"},
		{"mismatched confirmation", func(in *models.RegisterInput) { in.ConfirmPassword = "secret2" }, "do not match"},
		{"malformed phone", func(in *models.RegisterInput) { in.Phone = "0123" }, "valid phone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validRegistration()
			tt.mutate(&input)
			err := svc.Register(ctx, input)
			require.ErrorIs(t, err, common.ErrValidation)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRegisterDuplicateEmailCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	svc := newIdentity(t)

	require.NoError(t, svc.Register(ctx, validRegistration()))

	dup := validRegistration()
	dup.Email = "ADA@EXAMPLE.COM"
	err := svc.Register(ctx, dup)
	require.ErrorIs(t, err, common.ErrValidation)
	require.Contains(t, err.Error(), "already exists")
}

func TestRegisterPasswordLengthBoundary(t *testing.T) {
	ctx := context.Background()
	svc := newIdentity(t)

	input := validRegistration()
	input.Password = "abcdef"
	input.ConfirmPassword = "abcdef"
	require.NoError(t, svc.Register(ctx, input))
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc := newIdentity(t)
	require.NoError(t, svc.Register(ctx, validRegistration()))
	require.NoError(t, svc.Logout(ctx))

	t.Run("empty credentials", func(t *testing.T) {
		require.ErrorIs(t, svc.Login(ctx, "", ""), common.ErrValidation)
	})

	t.Run("unknown email", func(t *testing.T) {
		err := svc.Login(ctx, "nobody@example.com", "secret1")
		require.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("wrong password", func(t *testing.T) {
		err := svc.Login(ctx, "ada@example.com", "wrong1")
		require.ErrorIs(t, err, common.ErrUnauthorized)
		require.False(t, svc.IsAuthenticated(ctx))
	})

	t.Run("success case-insensitive email", func(t *testing.T) {
		require.NoError(t, svc.Login(ctx, "ADA@example.COM", "secret1"))

		session, err := svc.CurrentSession(ctx)
		require.NoError(t, err)
		require.Equal(t, "ada@example.com", session.Email)
		require.NotNil(t, session.LastLogin)
	})
}

func TestLogoutIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := newIdentity(t)
	require.NoError(t, svc.Register(ctx, validRegistration()))

	require.NoError(t, svc.Logout(ctx))
	require.NoError(t, svc.Logout(ctx))
	require.False(t, svc.IsAuthenticated(ctx))

	_, err := svc.CurrentSession(ctx)
	require.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestCurrentSessionRejectsTamperedState(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	svc := NewIdentityService(db, testLogger())
	require.NoError(t, svc.Register(ctx, validRegistration()))

	_, err := db.Exec(`UPDATE kv SET value = ? WHERE key = ?`, []byte("not a token"), common.SessionKey)
	require.NoError(t, err)

	_, err = svc.CurrentSession(ctx)
	require.ErrorIs(t, err, common.ErrUnauthorized)
	require.False(t, svc.IsAuthenticated(ctx))
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	svc := newIdentity(t)

	t.Run("requires session", func(t *testing.T) {
		name := "Someone"
		err := svc.UpdateProfile(ctx, models.ProfilePatch{FullName: &name})
		require.ErrorIs(t, err, common.ErrUnauthorized)
	})

	require.NoError(t, svc.Register(ctx, validRegistration()))

	t.Run("rejects empty full name", func(t *testing.T) {
		name := "   "
		err := svc.UpdateProfile(ctx, models.ProfilePatch{FullName: &name})
		require.ErrorIs(t, err, common.ErrValidation)
	})

	t.Run("rejects malformed phone", func(t *testing.T) {
		phone := "0000"
		err := svc.UpdateProfile(ctx, models.ProfilePatch{Phone: &phone})
		require.ErrorIs(t, err, common.ErrValidation)
	})

	t.Run("merges patch and refreshes session", func(t *testing.T) {
		name := "Ada King"
		gender := "female"
		require.NoError(t, svc.UpdateProfile(ctx, models.ProfilePatch{FullName: &name, Gender: &gender}))

		session, err := svc.CurrentSession(ctx)
		require.NoError(t, err)
		require.Equal(t, "Ada King", session.FullName)
		require.Equal(t, "female", session.Gender)
		require.Equal(t, "+1 (415) 555-0100", session.Phone) // untouched
	})
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	svc := newIdentity(t)

	t.Run("requires session", func(t *testing.T) {
		require.ErrorIs(t, svc.ChangePassword(ctx, "secret1", "secret2"), common.ErrUnauthorized)
	})

	require.NoError(t, svc.Register(ctx, validRegistration()))

	t.Run("wrong current password", func(t *testing.T) {
		require.ErrorIs(t, svc.ChangePassword(ctx, "wrong1", "secret2"), common.ErrUnauthorized)
	})

	t.Run("weak next password", func(t *testing.T) {
		require.ErrorIs(t, svc.ChangePassword(ctx, "secret1", "short"), common.ErrValidation)
	})

	t.Run("success", func(t *testing.T) {
		require.NoError(t, svc.ChangePassword(ctx, "secret1", "secret2"))

		require.ErrorIs(t, svc.Login(ctx, "ada@example.com", "secret1"), common.ErrUnauthorized)
		require.NoError(t, svc.Login(ctx, "ada@example.com", "secret2"))
	})
}

func TestDeleteAccount(t *testing.T) {
	ctx := context.Background()
	svc := newIdentity(t)

	t.Run("requires session", func(t *testing.T) {
		require.ErrorIs(t, svc.DeleteAccount(ctx), common.ErrUnauthorized)
	})

	require.NoError(t, svc.Register(ctx, validRegistration()))
	require.NoError(t, svc.DeleteAccount(ctx))

	require.False(t, svc.IsAuthenticated(ctx))
	require.ErrorIs(t, svc.Login(ctx, "ada@example.com", "secret1"), common.ErrNotFound)
}
