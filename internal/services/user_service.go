package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"relist/internal/apperrors"
	"relist/internal/models"
	"relist/internal/repositories"
)

// UserService handles registration, credential checks and account
// management within a tenant.
type UserService struct {
	users repositories.UserRepository
}

func NewUserService(users repositories.UserRepository) *UserService {
	return &UserService{users: users}
}

// SignupInput carries a registration request. Role defaults to client;
// admins are created through the admin user management endpoints.
type SignupInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

func (s *UserService) Register(ctx context.Context, tenantID uuid.UUID, in *SignupInput) (*models.User, error) {
	if in.Username == "" || in.Email == "" {
		return nil, apperrors.Validation("username and email are required")
	}
	if len(in.Password) < 8 {
		return nil, apperrors.Validation("password must be at least 8 characters")
	}
	role := in.Role
	if role == "" {
		role = models.RoleClient
	}
	if role != models.RoleClient && role != models.RoleAdmin {
		return nil, apperrors.Validation("role must be client or admin")
	}

	if existing, err := s.users.GetByUsername(ctx, tenantID, in.Username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperrors.Validation("username is already taken")
	}
	if existing, err := s.users.GetByEmail(ctx, tenantID, in.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperrors.Validation("email is already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		ID:           uuid.New(),
		TenantID:     tenantID,
		Username:     strings.TrimSpace(in.Username),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: string(hash),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks a username and password pair. The same error comes
// back for a missing user and a bad password.
func (s *UserService) Authenticate(ctx context.Context, tenantID uuid.UUID, username, password string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, tenantID, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.Authorization("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.Authorization("invalid credentials")
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NotFound("user not found")
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.User, error) {
	return s.users.List(ctx, tenantID, limit, offset)
}

func (s *UserService) Update(ctx context.Context, user *models.User) error {
	if user.Role != models.RoleClient && user.Role != models.RoleAdmin {
		return apperrors.Validation("role must be client or admin")
	}
	existing, err := s.users.GetByID(ctx, user.TenantID, user.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return apperrors.NotFound("user not found")
	}
	return s.users.Update(ctx, user)
}

func (s *UserService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	existing, err := s.users.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return apperrors.NotFound("user not found")
	}
	return s.users.Delete(ctx, tenantID, id)
}
