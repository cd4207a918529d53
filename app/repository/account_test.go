package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/vibast-solutions/ms-go-accounts/app/entity"
	"github.com/vibast-solutions/ms-go-accounts/app/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

const (
	insertAccountQuery       = `(?s)INSERT INTO accounts \(email, username, password_digest, first_name, last_name, phone,\s+confirmed, active, has_admin_right, failed_password_attempts, created_at, updated_at\)\s+VALUES \(\?, \?, \?, \?, \?, \?, \?, \?, \?, \?, \?, \?\)`
	updateAccountQuery       = `(?s)UPDATE accounts SET\s+email = \?,\s+username = \?,\s+password_digest = \?,\s+first_name = \?,\s+last_name = \?,\s+phone = \?,\s+confirmed = \?,\s+active = \?,\s+has_admin_right = \?,\s+failed_password_attempts = \?,\s+accessed_at = \?,\s+updated_at = \?\s+WHERE id = \?`
	findByEmailQuery         = `(?s)SELECT id, email, username, password_digest, first_name, last_name, phone,\s+confirmed, active, has_admin_right, failed_password_attempts, accessed_at, created_at, updated_at\s+FROM accounts WHERE email = \?\s*$`
	findByEmailAndDigest     = `(?s)SELECT id, email, username, password_digest, first_name, last_name, phone,\s+confirmed, active, has_admin_right, failed_password_attempts, accessed_at, created_at, updated_at\s+FROM accounts WHERE email = \? AND password_digest = \?`
	findByIDQuery            = `(?s)SELECT id, email, username, password_digest, first_name, last_name, phone,\s+confirmed, active, has_admin_right, failed_password_attempts, accessed_at, created_at, updated_at\s+FROM accounts WHERE id = \?`
	touchAccessedAtQuery     = `(?s)UPDATE accounts SET accessed_at = \?, updated_at = \? WHERE id = \?`
)

var accountColumns = []string{
	"id",
	"email",
	"username",
	"password_digest",
	"first_name",
	"last_name",
	"phone",
	"confirmed",
	"active",
	"has_admin_right",
	"failed_password_attempts",
	"accessed_at",
	"created_at",
	"updated_at",
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	return db, mock, func() { _ = db.Close() }
}

func TestAccountRepository_Create(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := repository.NewAccountRepository(db)
	account := &entity.Account{
		Email:          "user@example.com",
		Username:       "user@example.com",
		PasswordDigest: "digest",
		Active:         true,
	}

	mock.ExpectExec(insertAccountQuery).
		WithArgs(
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
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), account); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if account.ID != 1 {
		t.Fatalf("expected ID 1, got %d", account.ID)
	}
	if account.CreatedAt.IsZero() || !account.UpdatedAt.Equal(account.CreatedAt) {
		t.Fatalf("expected created_at and updated_at to be set equal, got %v / %v", account.CreatedAt, account.UpdatedAt)
	}
	if !account.CreatedAt.Equal(account.CreatedAt.Truncate(time.Microsecond)) {
		t.Fatalf("expected created_at truncated to microseconds, got %v", account.CreatedAt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAccountRepository_Create_DuplicateKey(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := repository.NewAccountRepository(db)
	account := &entity.Account{Email: "user@example.com", Username: "user@example.com"}

	mock.ExpectExec(insertAccountQuery).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err := repo.Create(context.Background(), account)
	if !errors.Is(err, repository.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAccountRepository_FindByEmail(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := repository.NewAccountRepository(db)
	now := time.Now()

	mock.ExpectQuery(findByEmailQuery).
		WithArgs("user@example.com").
		WillReturnRows(sqlmock.NewRows(accountColumns).AddRow(
			uint64(1),
			"user@example.com",
			"user@example.com",
			"digest",
			"Jane",
			"Doe",
			"",
			true,
			true,
			false,
			0,
			sql.NullTime{Valid: false},
			now,
			now,
		))

	account, err := repo.FindByEmail(context.Background(), "user@example.com")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if account == nil || account.ID != 1 {
		t.Fatalf("expected account ID 1, got %+v", account)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAccountRepository_FindByEmail_NoRows(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := repository.NewAccountRepository(db)

	mock.ExpectQuery(findByEmailQuery).
		WithArgs("missing@example.com").
		WillReturnRows(sqlmock.NewRows(accountColumns))

	account, err := repo.FindByEmail(context.Background(), "missing@example.com")
	if err != nil {
		t.Fatalf("expected no error for missing account, got %v", err)
	}
	if account != nil {
		t.Fatalf("expected nil account, got %+v", account)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAccountRepository_FindByEmailAndDigest(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := repository.NewAccountRepository(db)
	now := time.Now()

	mock.ExpectQuery(findByEmailAndDigest).
		WithArgs("user@example.com", "digest").
		WillReturnRows(sqlmock.NewRows(accountColumns).AddRow(
			uint64(7),
			"user@example.com",
			"user@example.com",
			"digest",
			"",
			"",
			"",
			true,
			true,
			false,
			0,
			sql.NullTime{Valid: false},
			now,
			now,
		))

	account, err := repo.FindByEmailAndDigest(context.Background(), "user@example.com", "digest")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if account == nil || account.ID != 7 {
		t.Fatalf("expected account ID 7, got %+v", account)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAccountRepository_Update_BumpsUpdatedAt(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := repository.NewAccountRepository(db)
	before := time.Now().Add(-time.Hour)
	account := &entity.Account{
		ID:             1,
		Email:          "user@example.com",
		Username:       "user@example.com",
		PasswordDigest: "digest",
		Confirmed:      true,
		Active:         true,
		CreatedAt:      before,
		UpdatedAt:      before,
	}

	mock.ExpectExec(updateAccountQuery).
		WithArgs(
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
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			account.ID,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Update(context.Background(), account); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !account.UpdatedAt.After(before) {
		t.Fatalf("expected updated_at to move forward, got %v", account.UpdatedAt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAccountRepository_TouchAccessedAt(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := repository.NewAccountRepository(db)
	account := &entity.Account{ID: 1}
	accessedAt := time.Now()

	mock.ExpectExec(touchAccessedAtQuery).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), account.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.TouchAccessedAt(context.Background(), account, accessedAt); err != nil {
		t.Fatalf("touch failed: %v", err)
	}
	if !account.AccessedAt.Valid {
		t.Fatalf("expected accessed_at to be set")
	}
	if !account.UpdatedAt.Equal(account.AccessedAt.Time) {
		t.Fatalf("expected updated_at to move with accessed_at")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
