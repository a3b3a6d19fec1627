package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/notsogambhir/obe-portal-api/internal/models"
	appErrors "github.com/notsogambhir/obe-portal-api/pkg/errors"
)

type mockUserStore struct {
	users      map[string]*models.User
	lastFilter models.UserFilter
}

func (m *mockUserStore) List(_ context.Context, filter models.UserFilter) ([]models.User, int, error) {
	m.lastFilter = filter
	var out []models.User
	for _, u := range m.users {
		if filter.ProgramID != "" && (u.ProgramID == nil || *u.ProgramID != filter.ProgramID) {
			continue
		}
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (m *mockUserStore) FindByID(_ context.Context, id string) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func (m *mockUserStore) FindByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserStore) Create(_ context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = "user-new"
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserStore) Update(_ context.Context, user *models.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockUserStore) Delete(_ context.Context, id string) error {
	delete(m.users, id)
	return nil
}

func newUserServiceFixture() (*UserService, *mockUserStore) {
	programID := "prog-1"
	store := &mockUserStore{users: map[string]*models.User{
		"user-1": {
			ID:        "user-1",
			Username:  "coordinator",
			Name:      "Coordinator",
			Role:      models.RoleCoordinator,
			Status:    models.UserStatusActive,
			ProgramID: &programID,
		},
	}}
	return NewUserService(store, nil, nil), store
}

func TestUserCreateHashesPassword(t *testing.T) {
	svc, store := newUserServiceFixture()

	user, err := svc.Create(context.Background(), CreateUserRequest{
		EmployeeID: "EMP-2",
		Username:   "teacher1",
		Password:   "secret123",
		Name:       "Teacher One",
		Role:       models.RoleTeacher,
	})

	require.NoError(t, err)
	assert.Equal(t, models.UserStatusActive, user.Status)
	assert.NotEqual(t, "secret123", user.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret123")))
	assert.Contains(t, store.users, user.ID)
}

func TestUserCreateRejectsUnknownRole(t *testing.T) {
	svc, _ := newUserServiceFixture()

	_, err := svc.Create(context.Background(), CreateUserRequest{
		EmployeeID: "EMP-3",
		Username:   "nobody",
		Password:   "secret123",
		Name:       "Nobody",
		Role:       "Intruder",
	})

	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestUserCreateRejectsDuplicateUsername(t *testing.T) {
	svc, _ := newUserServiceFixture()

	_, err := svc.Create(context.Background(), CreateUserRequest{
		EmployeeID: "EMP-4",
		Username:   "coordinator",
		Password:   "secret123",
		Name:       "Duplicate",
		Role:       models.RoleTeacher,
	})

	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestUserListScopedToProgram(t *testing.T) {
	svc, store := newUserServiceFixture()

	users, pagination, err := svc.List(context.Background(), models.UserFilter{}, models.Scope{
		Role:      models.RoleCoordinator,
		ProgramID: "prog-1",
	})

	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "prog-1", store.lastFilter.ProgramID)
	require.NotNil(t, pagination)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 1, pagination.TotalCount)
}

func TestUserUpdateKeepsStatusWhenOmitted(t *testing.T) {
	svc, _ := newUserServiceFixture()

	user, err := svc.Update(context.Background(), "user-1", UpdateUserRequest{
		EmployeeID: "EMP-1",
		Username:   "coordinator",
		Name:       "Renamed",
		Role:       models.RoleCoordinator,
	})

	require.NoError(t, err)
	assert.Equal(t, "Renamed", user.Name)
	assert.Equal(t, models.UserStatusActive, user.Status)
}
