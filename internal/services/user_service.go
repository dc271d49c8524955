package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/gatherhub/gatherhub/internal/db/models"
	"github.com/gatherhub/gatherhub/internal/db/repositories"
	"github.com/gatherhub/gatherhub/internal/validation"
)

// UserService handles account registration, credential verification, and
// profile reads.
type UserService struct {
	users *repositories.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(users *repositories.UserRepository) *UserService {
	return &UserService{users: users}
}

// Register creates a new user account. The email must be syntactically valid
// and not already registered; the password is stored as a bcrypt hash.
func (s *UserService) Register(ctx context.Context, email, displayName, password string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !validation.ValidEmail(email) {
		return nil, invalidArgumentf("invalid email address %q", email)
	}
	if !validation.NonBlank(displayName) {
		return nil, invalidArgumentf("display name must not be blank")
	}
	if len(password) < 8 {
		return nil, invalidArgumentf("password must be at least 8 characters")
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, alreadyExistsf("email %s is already registered", email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		DisplayName:  strings.TrimSpace(displayName),
		PasswordHash: string(hash),
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if repositories.IsUniqueViolation(err) {
			return nil, alreadyExistsf("email %s is already registered", email)
		}
		return nil, err
	}

	slog.Info("user registered", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// Authenticate verifies an email/password pair and returns the user on
// success. Unknown emails, wrong passwords, and deactivated accounts all
// return ErrInvalidCredentials so callers cannot distinguish them.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.Active {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Get retrieves a user by ID.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	if !validation.NonBlank(id) {
		return nil, invalidArgumentf("user id must not be blank")
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, notFoundf("user %s does not exist", id)
	}
	return user, nil
}

// UpdateDisplayName replaces a user's display name.
func (s *UserService) UpdateDisplayName(ctx context.Context, id, displayName string) error {
	if !validation.NonBlank(id) {
		return invalidArgumentf("user id must not be blank")
	}
	if !validation.NonBlank(displayName) {
		return invalidArgumentf("display name must not be blank")
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return notFoundf("user %s does not exist", id)
	}
	return s.users.UpdateDisplayName(ctx, id, strings.TrimSpace(displayName))
}
