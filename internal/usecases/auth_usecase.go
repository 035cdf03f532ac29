package usecases

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"payroll-chain.backend/internal/domain/entities"
	domainerrors "payroll-chain.backend/internal/domain/errors"
	"payroll-chain.backend/internal/domain/repositories"
	"payroll-chain.backend/pkg/crypto"
	"payroll-chain.backend/pkg/jwt"
	"payroll-chain.backend/pkg/utils"
)

// AuthUsecase handles admin authentication
type AuthUsecase struct {
	adminRepo  repositories.AdminRepository
	jwtService *jwt.JWTService
}

// NewAuthUsecase creates a new auth usecase
func NewAuthUsecase(adminRepo repositories.AdminRepository, jwtService *jwt.JWTService) *AuthUsecase {
	return &AuthUsecase{
		adminRepo:  adminRepo,
		jwtService: jwtService,
	}
}

// Login verifies credentials and issues a token pair. Unknown emails and
// wrong passwords return the same error so the endpoint does not reveal
// which accounts exist.
func (u *AuthUsecase) Login(ctx context.Context, input entities.LoginInput) (*entities.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	admin, err := u.adminRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !crypto.CheckPassword(input.Password, admin.PasswordHash) {
		return nil, domainerrors.ErrInvalidCredentials
	}

	pair, err := u.jwtService.GenerateTokenPair(admin.ID, admin.Email)
	if err != nil {
		return nil, err
	}

	return &entities.LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		Admin:        admin,
	}, nil
}

// GetAdmin returns the admin identified by id.
func (u *AuthUsecase) GetAdmin(ctx context.Context, adminID uuid.UUID) (*entities.Admin, error) {
	return u.adminRepo.GetByID(ctx, adminID)
}

// CreateAdmin registers an operator account with a bcrypt-hashed password.
func (u *AuthUsecase) CreateAdmin(ctx context.Context, name, email, password string) (*entities.Admin, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if _, err := u.adminRepo.GetByEmail(ctx, email); err == nil {
		return nil, domainerrors.ErrAlreadyExists
	} else if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, err
	}

	admin := &entities.Admin{
		ID:           utils.GenerateUUIDv7(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
	}
	if err := u.adminRepo.Create(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}
