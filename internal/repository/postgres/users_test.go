package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/resguardo-civil/incident-reporting-service/internal/core/domain"
	"github.com/resguardo-civil/incident-reporting-service/internal/core/port"
	"github.com/resguardo-civil/incident-reporting-service/internal/repository"
)

func newMockUserRepo(t *testing.T) (*UserRepository, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	t.Cleanup(mock.Close)

	repo := &UserRepository{
		exec:    mock,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	return repo, mock
}

func testUser() domain.User {
	return domain.User{
		ID:           "user-1",
		Username:     "brigadista1",
		PasswordHash: "argon2id$v=19$m=19456,t=2,p=1$salt$hash",
		FullName:     "Carlos Medina Rojas",
		Email:        "carlos.medina@resguardo-civil.mx",
		Role:         domain.RoleBrigadista,
		Department:   domain.DepartmentProteccionCivil,
		Active:       true,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
}

func TestUserRepository_Create(t *testing.T) {
	repo, mock := newMockUserRepo(t)
	user := testUser()

	mock.ExpectExec(`INSERT INTO irs\.users`).
		WithArgs(
			user.ID,
			user.Username,
			user.PasswordHash,
			user.FullName,
			user.Email,
			nil,
			user.Role,
			user.Department,
			user.Active,
			user.CreatedAt,
			user.LastLogin,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_Create_DuplicateUsername(t *testing.T) {
	repo, mock := newMockUserRepo(t)
	user := testUser()

	mock.ExpectExec(`INSERT INTO irs\.users`).
		WithArgs(
			user.ID,
			user.Username,
			user.PasswordHash,
			user.FullName,
			user.Email,
			nil,
			user.Role,
			user.Department,
			user.Active,
			user.CreatedAt,
			user.LastLogin,
		).
		WillReturnError(&pgconn.PgError{Code: uniqueViolationCode})

	if err := repo.Create(context.Background(), user); !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_GetByUsername(t *testing.T) {
	repo, mock := newMockUserRepo(t)
	user := testUser()

	rows := pgxmock.NewRows(userColumns).AddRow(
		user.ID,
		user.Username,
		user.PasswordHash,
		user.FullName,
		user.Email,
		nil,
		user.Role,
		user.Department,
		user.Active,
		user.CreatedAt,
		nil,
	)

	mock.ExpectQuery(`SELECT .*FROM irs\.users WHERE username = \$1`).
		WithArgs(user.Username).
		WillReturnRows(rows)

	got, err := repo.GetByUsername(context.Background(), user.Username)
	if err != nil {
		t.Fatalf("GetByUsername returned error: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("expected id %s, got %s", user.ID, got.ID)
	}
	if got.Phone != nil {
		t.Fatalf("expected nil phone")
	}
	if got.LastLogin != nil {
		t.Fatalf("expected nil last login")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_GetByUsername_NotFound(t *testing.T) {
	repo, mock := newMockUserRepo(t)

	mock.ExpectQuery(`SELECT .*FROM irs\.users WHERE username = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	if _, err := repo.GetByUsername(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_SetActive(t *testing.T) {
	repo, mock := newMockUserRepo(t)

	mock.ExpectExec(`UPDATE irs\.users SET is_active = \$1 WHERE id = \$2`).
		WithArgs(false, "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.SetActive(context.Background(), "user-1", false); err != nil {
		t.Fatalf("SetActive returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_SetActive_NotFound(t *testing.T) {
	repo, mock := newMockUserRepo(t)

	mock.ExpectExec(`UPDATE irs\.users SET is_active = \$1 WHERE id = \$2`).
		WithArgs(true, "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := repo.SetActive(context.Background(), "missing", true); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_Count(t *testing.T) {
	repo, mock := newMockUserRepo(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM irs\.users WHERE role = \$1`).
		WithArgs(domain.RoleBrigadista).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(2)))

	count, err := repo.Count(context.Background(), port.UserFilter{Role: domain.RoleBrigadista})
	if err != nil {
		t.Fatalf("Count returned error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected count 2, got %d", count)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
