package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vibast-solutions/ms-go-accounts/app/entity"

	"github.com/go-sql-driver/mysql"
)

// ErrDuplicateKey is returned when an insert violates a unique constraint.
// The store-level constraint is the authoritative duplicate guard; the
// service's pre-check only exists for a friendlier error in the common case.
var ErrDuplicateKey = errors.New("duplicate key")

const mysqlDuplicateEntry = 1062

type AccountRepository struct {
	db DBTX
}

func NewAccountRepository(db DBTX) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) WithTx(tx *sql.Tx) *AccountRepository {
	return &AccountRepository{db: tx}
}

const accountColumns = `id, email, username, password_digest, first_name, last_name, phone,
		       confirmed, active, has_admin_right, failed_password_attempts, accessed_at, created_at, updated_at`

func (r *AccountRepository) Create(ctx context.Context, account *entity.Account) error {
	// Timestamps are truncated to microseconds so the in-memory values match
	// what a DATETIME(6) round trip returns. Token derivation depends on this.
	now := time.Now().UTC().Truncate(time.Microsecond)
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = account.CreatedAt

	query := `
		INSERT INTO accounts (email, username, password_digest, first_name, last_name, phone,
		                      confirmed, active, has_admin_right, failed_password_attempts, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		account.Email,
		account.Username,
		account.PasswordDigest,
		account.FirstName,
		account.LastName,
		account.Phone,
		account.Confirmed,
		account.Active,
		account.HasAdminRight,
		account.FailedPasswordAttempts,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return ErrDuplicateKey
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	account.ID = uint64(id)
	return nil
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts WHERE email = ?
	`
	return r.findOne(ctx, query, email)
}

// FindByEmailAndDigest is the authentication lookup: both values must match
// exactly, so callers cannot tell an unknown email from a wrong password.
func (r *AccountRepository) FindByEmailAndDigest(ctx context.Context, email, digest string) (*entity.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts WHERE email = ? AND password_digest = ?
	`
	return r.findOne(ctx, query, email, digest)
}

func (r *AccountRepository) FindByID(ctx context.Context, id uint64) (*entity.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts WHERE id = ?
	`
	return r.findOne(ctx, query, id)
}

// Update persists every mutable field and bumps updated_at. The bump is the
// mechanism that invalidates previously issued recovery tokens.
func (r *AccountRepository) Update(ctx context.Context, account *entity.Account) error {
	query := `
		UPDATE accounts SET
			email = ?,
			username = ?,
			password_digest = ?,
			first_name = ?,
			last_name = ?,
			phone = ?,
			confirmed = ?,
			active = ?,
			has_admin_right = ?,
			failed_password_attempts = ?,
			accessed_at = ?,
			updated_at = ?
		WHERE id = ?
	`
	account.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)
	_, err := r.db.ExecContext(ctx, query,
		account.Email,
		account.Username,
		account.PasswordDigest,
		account.FirstName,
		account.LastName,
		account.Phone,
		account.Confirmed,
		account.Active,
		account.HasAdminRight,
		account.FailedPasswordAttempts,
		account.AccessedAt,
		account.UpdatedAt,
		account.ID,
	)
	return err
}

// TouchAccessedAt records a successful authentication. updated_at moves with
// it, so logging in also invalidates outstanding recovery tokens.
func (r *AccountRepository) TouchAccessedAt(ctx context.Context, account *entity.Account, accessedAt time.Time) error {
	accessedAt = accessedAt.UTC().Truncate(time.Microsecond)
	account.AccessedAt = sql.NullTime{Time: accessedAt, Valid: true}
	account.UpdatedAt = accessedAt

	query := `UPDATE accounts SET accessed_at = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, account.AccessedAt, account.UpdatedAt, account.ID)
	return err
}

func (r *AccountRepository) findOne(ctx context.Context, query string, args ...interface{}) (*entity.Account, error) {
	account := &entity.Account{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&account.ID,
		&account.Email,
		&account.Username,
		&account.PasswordDigest,
		&account.FirstName,
		&account.LastName,
		&account.Phone,
		&account.Confirmed,
		&account.Active,
		&account.HasAdminRight,
		&account.FailedPasswordAttempts,
		&account.AccessedAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return account, nil
}
