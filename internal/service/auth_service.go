package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/lakshyaprep/lakshya-backend/internal/config"
	"github.com/lakshyaprep/lakshya-backend/internal/model"
	"github.com/lakshyaprep/lakshya-backend/internal/repository"
)

// Common auth errors.
var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrEmailTaken           = errors.New("email is already registered")
	ErrRegistrationDisabled = errors.New("registration is currently disabled")
	ErrWrongPassword        = errors.New("current password is incorrect")
	ErrUserNotFound         = errors.New("user not found")
)

// TokenType distinguishes student vs admin tokens.
type TokenType string

const (
	TokenTypeStudent TokenType = "student"
	TokenTypeAdmin   TokenType = "admin"
)

// registrationSetting gates student self-registration at runtime.
const registrationSetting = "registration_enabled"

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	TokenType TokenType  `json:"token_type"`
	UserID    int        `json:"user_id"`
	Role      model.Role `json:"role"`
}

// AuthService handles registration, login and JWT issuance.
type AuthService struct {
	cfg      *config.Config
	users    *repository.UserRepository
	settings *repository.SettingRepository
	log      zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, users *repository.UserRepository, settings *repository.SettingRepository, log zerolog.Logger) *AuthService {
	return &AuthService{
		cfg:      cfg,
		users:    users,
		settings: settings,
		log:      log.With().Str("component", "auth_service").Logger(),
	}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Register creates a student account and logs it in. Self-registration
// can be switched off via the registration_enabled app setting.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.LoginResponse, error) {
	if !s.settings.GetBool(ctx, registrationSetting, true) {
		return nil, ErrRegistrationDisabled
	}

	hash, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		Role:         model.RoleStudent,
		TargetExam:   model.ExamType(req.TargetExam),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Int("user_id", user.ID).Str("email", user.Email).Msg("Student registered")
	return &model.LoginResponse{Token: token, User: *user}, nil
}

// Login authenticates a user by email and password.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if err := s.CheckPassword(user.PasswordHash, req.Password); err != nil {
		return nil, err
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}
	return &model.LoginResponse{Token: token, User: *user}, nil
}

// generateToken creates a signed JWT carrying the user's role.
func (s *AuthService) generateToken(user *model.User) (string, error) {
	tokenType := TokenTypeStudent
	if user.Role == model.RoleAdmin {
		tokenType = TokenTypeAdmin
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   strconv.Itoa(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		TokenType: tokenType,
		UserID:    user.ID,
		Role:      user.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}

// GetProfile retrieves the caller's account.
func (s *AuthService) GetProfile(ctx context.Context, userID int) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile updates the caller's name and target exam.
func (s *AuthService) UpdateProfile(ctx context.Context, userID int, req model.UpdateProfileRequest) (*model.User, error) {
	if err := s.users.UpdateProfile(ctx, userID, req.Name, model.ExamType(req.TargetExam)); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return s.GetProfile(ctx, userID)
}

// ChangePassword rotates the caller's password after verifying the
// current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID int, req model.ChangePasswordRequest) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	if err := s.CheckPassword(user.PasswordHash, req.CurrentPassword); err != nil {
		return ErrWrongPassword
	}

	hash, err := s.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.log.Info().Int("user_id", userID).Msg("Password changed")
	return nil
}
