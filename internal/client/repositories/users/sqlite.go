package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/OleoMar/alphawave/internal/client/models"
	"github.com/OleoMar/alphawave/internal/common"
	"github.com/OleoMar/alphawave/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Timestamps are stored as RFC 3339 strings so rows stay readable with any
// sqlite tooling.
func encodeTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func decodeTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func (r *SQLiteRepository) Create(ctx context.Context, u *models.User) error {
	query := `INSERT INTO users (id, email, password_digest, full_name, phone, gender, date_of_birth, created_at, last_login)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULL)`
	_, err := r.db.ExecContext(ctx, query,
		u.ID, strings.ToLower(u.Email), u.PasswordDigest, u.FullName, u.Phone, u.Gender, u.DateOfBirth, encodeTime(u.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	var createdAt string
	var lastLogin sql.NullString

	err := row.Scan(&u.ID, &u.Email, &u.PasswordDigest, &u.FullName, &u.Phone, &u.Gender, &u.DateOfBirth, &createdAt, &lastLogin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user row: %w", err)
	}

	u.CreatedAt, err = decodeTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at: %w", err)
	}
	if lastLogin.Valid {
		t, err := decodeTime(lastLogin.String)
		if err != nil {
			return nil, fmt.Errorf("invalid last_login: %w", err)
		}
		u.LastLogin = &t
	}
	return &u, nil
}

const selectColumns = `id, email, password_digest, full_name, phone, gender, date_of_birth, created_at, last_login`

func (r *SQLiteRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + selectColumns + ` FROM users WHERE email = lower(?)`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + selectColumns + ` FROM users WHERE id = ?`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM users WHERE email = lower(?)`, email).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, u *models.User) error {
	var lastLogin any
	if u.LastLogin != nil {
		lastLogin = encodeTime(*u.LastLogin)
	}

	query := `UPDATE users SET email = ?, password_digest = ?, full_name = ?, phone = ?, gender = ?, date_of_birth = ?, last_login = ?
			WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		strings.ToLower(u.Email), u.PasswordDigest, u.FullName, u.Phone, u.Gender, u.DateOfBirth, lastLogin, u.ID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + selectColumns + ` FROM users ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select users: %w", err)
	}
	defer rows.Close()

	var result []models.User
	for rows.Next() {
		var u models.User
		var createdAt string
		var lastLogin sql.NullString
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordDigest, &u.FullName, &u.Phone, &u.Gender, &u.DateOfBirth, &createdAt, &lastLogin); err != nil {
			return nil, err
		}
		u.CreatedAt, err = decodeTime(createdAt)
		if err != nil {
			return nil, fmt.Errorf("invalid created_at: %w", err)
		}
		if lastLogin.Valid {
			t, err := decodeTime(lastLogin.String)
			if err != nil {
				return nil, fmt.Errorf("invalid last_login: %w", err)
			}
			u.LastLogin = &t
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
