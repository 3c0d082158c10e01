package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/lakshyaprep/lakshya-backend/internal/config"
	"github.com/lakshyaprep/lakshya-backend/internal/model"
	"github.com/lakshyaprep/lakshya-backend/internal/repository"
	"github.com/lakshyaprep/lakshya-backend/internal/response"
)

// UserService handles admin-side account management.
type UserService struct {
	cfg   *config.Config
	users *repository.UserRepository
	log   zerolog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(cfg *config.Config, users *repository.UserRepository, log zerolog.Logger) *UserService {
	return &UserService{
		cfg:   cfg,
		users: users,
		log:   log.With().Str("component", "user_service").Logger(),
	}
}

// ListUsers retrieves accounts with pagination and an optional role
// filter.
func (s *UserService) ListUsers(ctx context.Context, role model.Role, page, perPage int) ([]model.User, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	users, total, err := s.users.ListPaginated(ctx, role, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if users == nil {
		users = []model.User{}
	}
	return users, response.NewPagination(page, perPage, total), nil
}

// GetUser retrieves one account by ID.
func (s *UserService) GetUser(ctx context.Context, id int) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// CreateUser inserts an account with the given role. Used by admins to
// provision students and other admins.
func (s *UserService) CreateUser(ctx context.Context, req model.CreateUserRequest) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
		Role:         model.Role(req.Role),
		TargetExam:   model.ExamType(req.TargetExam),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info().Int("user_id", user.ID).Str("role", req.Role).Msg("User created by admin")
	return user, nil
}

// UpdateUser edits an account's name and target exam.
func (s *UserService) UpdateUser(ctx context.Context, id int, req model.UpdateProfileRequest) (*model.User, error) {
	if _, err := s.GetUser(ctx, id); err != nil {
		return nil, err
	}
	if err := s.users.UpdateProfile(ctx, id, req.Name, model.ExamType(req.TargetExam)); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return s.GetUser(ctx, id)
}

// DeleteUser removes an account and everything hanging off it via
// cascading deletes.
func (s *UserService) DeleteUser(ctx context.Context, id int) error {
	if _, err := s.GetUser(ctx, id); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.log.Info().Int("user_id", id).Msg("User deleted")
	return nil
}
