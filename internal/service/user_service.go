package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/notsogambhir/obe-portal-api/internal/models"
	appErrors "github.com/notsogambhir/obe-portal-api/pkg/errors"
)

type userRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
}

// CreateUserRequest captures user creation payload.
type CreateUserRequest struct {
	EmployeeID string          `json:"employee_id" validate:"required"`
	Username   string          `json:"username" validate:"required"`
	Password   string          `json:"password" validate:"required,min=6"`
	Name       string          `json:"name" validate:"required"`
	Role       models.UserRole `json:"role" validate:"required"`
	ProgramID  *string         `json:"program_id"`
	CollegeID  *string         `json:"college_id"`
}

// UpdateUserRequest captures user update payload. Password changes go
// through the auth service instead.
type UpdateUserRequest struct {
	EmployeeID string            `json:"employee_id" validate:"required"`
	Username   string            `json:"username" validate:"required"`
	Name       string            `json:"name" validate:"required"`
	Role       models.UserRole   `json:"role" validate:"required"`
	Status     models.UserStatus `json:"status"`
	ProgramID  *string           `json:"program_id"`
	CollegeID  *string           `json:"college_id"`
}

// UserService manages user accounts.
type UserService struct {
	repo      userRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService constructs a UserService.
func NewUserService(repo userRepository, validate *validator.Validate, logger *zap.Logger) *UserService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{repo: repo, validator: validate, logger: logger}
}

var knownRoles = map[models.UserRole]struct{}{
	models.RoleAdmin:       {},
	models.RoleUniversity:  {},
	models.RoleDepartment:  {},
	models.RoleCoordinator: {},
	models.RoleTeacher:     {},
}

// List returns users visible to the caller with pagination metadata.
func (s *UserService) List(ctx context.Context, filter models.UserFilter, scope models.Scope) ([]models.User, *models.Pagination, error) {
	if scope.ProgramID != "" {
		filter.ProgramID = scope.ProgramID
	} else if scope.CollegeID != "" {
		filter.CollegeID = scope.CollegeID
	}
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return users, pagination, nil
}

// Get returns a single user.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}

// Create registers a new user account.
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}
	if _, ok := knownRoles[req.Role]; !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown role")
	}
	if _, err := s.repo.FindByUsername(ctx, req.Username); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "username is already taken")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check username")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		EmployeeID:   req.EmployeeID,
		Username:     req.Username,
		PasswordHash: string(hash),
		Name:         req.Name,
		Role:         req.Role,
		Status:       models.UserStatusActive,
		ProgramID:    req.ProgramID,
		CollegeID:    req.CollegeID,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}
	return user, nil
}

// Update modifies a user account.
func (s *UserService) Update(ctx context.Context, id string, req UpdateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}
	if _, ok := knownRoles[req.Role]; !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown role")
	}
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Username != user.Username {
		if _, err := s.repo.FindByUsername(ctx, req.Username); err == nil {
			return nil, appErrors.Clone(appErrors.ErrConflict, "username is already taken")
		} else if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check username")
		}
	}
	user.EmployeeID = req.EmployeeID
	user.Username = req.Username
	user.Name = req.Name
	user.Role = req.Role
	if req.Status != "" {
		user.Status = req.Status
	}
	user.ProgramID = req.ProgramID
	user.CollegeID = req.CollegeID
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update user")
	}
	return user, nil
}

// Delete removes a user account.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete user")
	}
	return nil
}
