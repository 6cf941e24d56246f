// Package services contains the application services of the AlphaWave
// dashboard client: identity/session management, location consent, and
// market quotes.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/OleoMar/alphawave/internal/client/models"
	"github.com/OleoMar/alphawave/internal/client/repositories/kv"
	"github.com/OleoMar/alphawave/internal/client/repositories/users"
	"github.com/OleoMar/alphawave/internal/common"
	"github.com/OleoMar/alphawave/internal/dbx"
	"github.com/OleoMar/alphawave/internal/logging"
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^\+?[1-9][0-9]{0,15}$`)

	phoneSeparators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
)

func validEmail(email string) bool {
	return emailRe.MatchString(email)
}

func validPhone(phone string) bool {
	return phoneRe.MatchString(phoneSeparators.Replace(phone))
}

// IdentityService owns the user registry and the current session.
//
// The registry (users table) is the system of record; the session is a
// derived snapshot persisted under the current_user key. The registry is
// always persisted before any session update derived from it, so a crash
// between the two cannot leave a session referencing unpersisted data.
type IdentityService struct {
	db  *sql.DB
	log logging.Logger

	now   func() time.Time
	newID func() string
}

// NewIdentityService constructs an IdentityService over the local database.
func NewIdentityService(db *sql.DB, log logging.Logger) *IdentityService {
	return &IdentityService{
		db:    db,
		log:   log,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

func (s *IdentityService) usersRepo() users.Repository {
	return users.NewSQLiteRepository(s.db)
}

func (s *IdentityService) kvStore() kv.Store {
	return kv.NewSQLiteStore(s.db)
}

// sessionClaims is the redacted user snapshot carried by the session token.
// Subject holds the user id; the password digest is never included.
type sessionClaims struct {
	Email       string     `json:"email"`
	FullName    string     `json:"fullName"`
	Phone       string     `json:"phone,omitempty"`
	Gender      string     `json:"gender,omitempty"`
	DateOfBirth string     `json:"dateOfBirth,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastLogin   *time.Time `json:"lastLogin,omitempty"`
	jwt.RegisteredClaims
}

// signingKey returns the per-install session signing key, generating and
// persisting it on first use.
func (s *IdentityService) signingKey(ctx context.Context) ([]byte, error) {
	store := s.kvStore()

	key, err := store.Get(ctx, common.SessionSecretKey)
	if err != nil {
		return nil, err
	}
	if len(key) > 0 {
		return key, nil
	}

	key = common.GenerateRandByteArray(32)
	if err := store.Set(ctx, common.SessionSecretKey, key); err != nil {
		return nil, err
	}
	return key, nil
}

// establishSession replaces the current session with a snapshot of u.
func (s *IdentityService) establishSession(ctx context.Context, u *models.User) error {
	key, err := s.signingKey(ctx)
	if err != nil {
		return err
	}

	claims := sessionClaims{
		Email:       u.Email,
		FullName:    u.FullName,
		Phone:       u.Phone,
		Gender:      u.Gender,
		DateOfBirth: u.DateOfBirth,
		CreatedAt:   u.CreatedAt,
		LastLogin:   u.LastLogin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  u.ID,
			IssuedAt: jwt.NewNumericDate(s.now()),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return fmt.Errorf("failed to sign session: %w", err)
	}

	return s.kvStore().Set(ctx, common.SessionKey, []byte(token))
}

// CurrentSession returns the active session snapshot, or ErrUnauthorized
// when no usable session exists (absent, corrupt, or tampered state all
// count as "no session").
func (s *IdentityService) CurrentSession(ctx context.Context) (*models.Session, error) {
	raw, err := s.kvStore().Get(ctx, common.SessionKey)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, common.ErrUnauthorized
	}

	key, err := s.signingKey(ctx)
	if err != nil {
		return nil, err
	}

	var claims sessionClaims
	_, err = jwt.ParseWithClaims(string(raw), &claims, func(t *jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		s.log.Warn(ctx, "discarding unreadable session", "error", err)
		return nil, common.ErrUnauthorized
	}

	return &models.Session{
		UserID:      claims.Subject,
		Email:       claims.Email,
		FullName:    claims.FullName,
		Phone:       claims.Phone,
		Gender:      claims.Gender,
		DateOfBirth: claims.DateOfBirth,
		CreatedAt:   claims.CreatedAt,
		LastLogin:   claims.LastLogin,
	}, nil
}

// IsAuthenticated reports whether a session exists and holds both a user id
// and an email. Corrupt or partial persisted state counts as not
// authenticated.
func (s *IdentityService) IsAuthenticated(ctx context.Context) bool {
	session, err := s.CurrentSession(ctx)
	return err == nil && session.UserID != "" && session.Email != ""
}

// Register validates input, appends a new record to the registry, and
// establishes a session for it. Violations are reported in a fixed priority
// order: missing required field, malformed email, weak password, mismatched
// confirmation, duplicate email, malformed phone.
func (s *IdentityService) Register(ctx context.Context, input models.RegisterInput) error {
	if input.Email == "" || input.Password == "" || input.FullName == "" {
		return fmt.Errorf("%w: email, password, and full name are required", common.ErrValidation)
	}
	if !validEmail(input.Email) {
		return fmt.Errorf("%w: please enter a valid email address", common.ErrValidation)
	}
	if len(input.Password) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters long", common.ErrValidation)
	}
	if input.Password != input.ConfirmPassword {
		return fmt.Errorf("%w: passwords do not match", common.ErrValidation)
	}

	repo := s.usersRepo()

	exists, err := repo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: an account with this email already exists", common.ErrValidation)
	}
	if input.Phone != "" && !validPhone(input.Phone) {
		return fmt.Errorf("%w: please enter a valid phone number", common.ErrValidation)
	}

	u := &models.User{
		ID:             s.newID(),
		Email:          strings.ToLower(input.Email),
		PasswordDigest: digestPassword(input.Password),
		FullName:       input.FullName,
		Phone:          input.Phone,
		Gender:         input.Gender,
		DateOfBirth:    input.DateOfBirth,
		CreatedAt:      s.now().UTC(),
	}

	// Registry first, session second.
	if err := repo.Create(ctx, u); err != nil {
		return err
	}

	s.log.Info(ctx, "user registered", "id", u.ID, "email", u.Email)
	return s.establishSession(ctx, u)
}

// Login authenticates by email (case-insensitive) and password, updates the
// last-login timestamp, and establishes a new session.
func (s *IdentityService) Login(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return fmt.Errorf("%w: email and password are required", common.ErrValidation)
	}
	if !validEmail(email) {
		return fmt.Errorf("%w: please enter a valid email address", common.ErrValidation)
	}

	repo := s.usersRepo()

	u, err := repo.GetByEmail(ctx, email)
	if errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("%w: no account found with this email address", common.ErrNotFound)
	}
	if err != nil {
		return err
	}

	if !verifyPassword(password, u.PasswordDigest) {
		return fmt.Errorf("%w: incorrect password", common.ErrUnauthorized)
	}

	at := s.now().UTC()
	u.LastLogin = &at
	if err := repo.Update(ctx, u); err != nil {
		return err
	}

	s.log.Info(ctx, "user logged in", "id", u.ID)
	return s.establishSession(ctx, u)
}

// Logout destroys the session. It is idempotent: logging out twice in a row
// succeeds.
func (s *IdentityService) Logout(ctx context.Context) error {
	return s.kvStore().Delete(ctx, common.SessionKey)
}

// UpdateProfile merges the patch into the current user's registry record,
// persists it, and refreshes the session snapshot.
func (s *IdentityService) UpdateProfile(ctx context.Context, patch models.ProfilePatch) error {
	session, err := s.CurrentSession(ctx)
	if err != nil {
		return fmt.Errorf("%w: you must be signed in to update your profile", common.ErrUnauthorized)
	}

	if patch.FullName != nil && strings.TrimSpace(*patch.FullName) == "" {
		return fmt.Errorf("%w: full name cannot be empty", common.ErrValidation)
	}
	if patch.Phone != nil && *patch.Phone != "" && !validPhone(*patch.Phone) {
		return fmt.Errorf("%w: please enter a valid phone number", common.ErrValidation)
	}

	repo := s.usersRepo()

	u, err := repo.GetByID(ctx, session.UserID)
	if errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("%w: user not found", common.ErrNotFound)
	}
	if err != nil {
		return err
	}

	if patch.FullName != nil {
		u.FullName = *patch.FullName
	}
	if patch.Phone != nil {
		u.Phone = *patch.Phone
	}
	if patch.Gender != nil {
		u.Gender = *patch.Gender
	}
	if patch.DateOfBirth != nil {
		u.DateOfBirth = *patch.DateOfBirth
	}

	if err := repo.Update(ctx, u); err != nil {
		return err
	}

	return s.establishSession(ctx, u)
}

// ChangePassword verifies the current password and replaces the stored
// digest with one for next.
func (s *IdentityService) ChangePassword(ctx context.Context, current, next string) error {
	session, err := s.CurrentSession(ctx)
	if err != nil {
		return fmt.Errorf("%w: you must be signed in to change your password", common.ErrUnauthorized)
	}

	repo := s.usersRepo()

	u, err := repo.GetByID(ctx, session.UserID)
	if errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("%w: user not found", common.ErrNotFound)
	}
	if err != nil {
		return err
	}

	if !verifyPassword(current, u.PasswordDigest) {
		return fmt.Errorf("%w: current password is incorrect", common.ErrUnauthorized)
	}
	if len(next) < 6 {
		return fmt.Errorf("%w: new password must be at least 6 characters long", common.ErrValidation)
	}

	u.PasswordDigest = digestPassword(next)
	return repo.Update(ctx, u)
}

// DeleteAccount removes the current user's registry record and destroys the
// session, atomically.
func (s *IdentityService) DeleteAccount(ctx context.Context) error {
	session, err := s.CurrentSession(ctx)
	if err != nil {
		return fmt.Errorf("%w: you must be signed in to delete your account", common.ErrUnauthorized)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := users.NewSQLiteRepository(tx).Delete(ctx, session.UserID); err != nil && !errors.Is(err, common.ErrNotFound) {
			return err
		}
		return kv.NewSQLiteStore(tx).Delete(ctx, common.SessionKey)
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "account deleted", "id", session.UserID)
	return nil
}
