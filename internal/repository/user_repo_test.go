package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"school-auth/internal/model"
)

var userRowColumns = []string{
	"id", "email", "username", "password_hash", "first_name", "last_name",
	"role", "is_active", "created_at", "updated_at",
}

func newMockRepo(t *testing.T) (*UserRepository, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})

	return NewUserRepository(mock), mock
}

func TestFindByEmail(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	id := uuid.NewString()

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE lower\(email\) = lower\(\$1\)`).
		WithArgs("t1@school.edu").
		WillReturnRows(pgxmock.NewRows(userRowColumns).
			AddRow(id, "T1@school.edu", "", "$2a$hash", "Tina", "Teach", "TEACHER", true, created, created))

	user, err := repo.FindByEmail(context.Background(), "  t1@school.edu ")
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, model.RoleTeacher, user.Role)
	assert.True(t, user.Active)
	assert.Equal(t, created, user.CreatedAt)
}

func TestFindByEmailNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE lower\(email\)`).
		WithArgs("ghost@school.edu").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "ghost@school.edu")
	require.ErrorIs(t, err, model.ErrUserNotFound)
}

func TestFindByEmailWithoutRole(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE lower\(email\)`).
		WithArgs("norole@school.edu").
		WillReturnRows(pgxmock.NewRows(userRowColumns).
			AddRow(uuid.NewString(), "norole@school.edu", "", "$2a$hash", "No", "Role", "", true, now, now))

	user, err := repo.FindByEmail(context.Background(), "norole@school.edu")
	require.NoError(t, err)
	assert.Equal(t, model.Role(""), user.Role)
}

func TestFindByIDRejectsMalformedID(t *testing.T) {
	repo, _ := newMockRepo(t)

	_, err := repo.FindByID(context.Background(), "not-a-uuid")
	require.ErrorIs(t, err, model.ErrUserNotFound)
}

func TestExistsQueries(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM users WHERE lower\(username\)`).
		WithArgs("tina").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM users WHERE lower\(email\)`).
		WithArgs("t1@school.edu").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM users WHERE role = \$1\)`).
		WithArgs("COORDINATOR").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	ctx := context.Background()

	exists, err := repo.ExistsByUsername(ctx, "tina")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByEmail(ctx, "t1@school.edu")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.ExistsByRole(ctx, model.RoleCoordinator)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCreateUser(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	id := uuid.New()

	user := model.User{
		ID:           id.String(),
		Email:        "s1@school.edu",
		PasswordHash: "$2a$hash",
		FirstName:    "Sam",
		LastName:     "Student",
		Role:         model.RoleStudent,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(id, "s1@school.edu", "", "$2a$hash", "Sam", "Student", "STUDENT", true, now, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), user))
}

func TestCreateUserDuplicate(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value"})

	err := repo.Create(context.Background(), model.User{
		ID:        uuid.NewString(),
		Email:     "dup@school.edu",
		Role:      model.RoleStudent,
		CreatedAt: now,
		UpdatedAt: now,
	})
	require.ErrorIs(t, err, model.ErrUserAlreadyExists)
}

func TestSetActive(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectExec(`UPDATE users SET is_active`).
		WithArgs(id, false, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE users SET is_active`).
		WithArgs(id, true, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	require.NoError(t, repo.SetActive(context.Background(), id.String(), false))
	require.ErrorIs(t, repo.SetActive(context.Background(), id.String(), true), model.ErrUserNotFound)
}

func TestListAndCount(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT (.+) FROM users ORDER BY email`).
		WillReturnRows(pgxmock.NewRows(userRowColumns).
			AddRow(uuid.NewString(), "a@school.edu", "admin", "$2a$a", "Ada", "Admin", "ADMIN", true, now, now).
			AddRow(uuid.NewString(), "b@school.edu", "", "$2a$b", "Bo", "Student", "STUDENT", false, now, now))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, model.RoleAdmin, users[0].Role)
	assert.False(t, users[1].Active)

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
