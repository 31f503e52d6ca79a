package service

import (
	"context"
	"errors"

	"perfume-pos/internal/model"
	"perfume-pos/internal/repository"
	"perfume-pos/pkg/jwt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	ResetPassword(ctx context.Context, email, newPassword string) error
	EnsureOwner(ctx context.Context, email, password string) error
}

type LoginResponse struct {
	Token      string             `json:"token"`
	User       model.UserResponse `json:"user"`
	Privileges []string           `json:"privileges"`
}

type authService struct {
	userRepo repository.UserRepository
	tokens   *jwt.Manager
	log      *zap.Logger
}

func NewAuthService(userRepo repository.UserRepository, tokens *jwt.Manager, log *zap.Logger) AuthService {
	return &authService{userRepo: userRepo, tokens: tokens, log: log}
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	// 1. Find user by email
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// 2. Check if user is active
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	// 3. Verify password
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	// 4. Issue token
	token, err := s.tokens.GenerateToken(user.ID, user.Email, user.FullName, user.Role, user.Privileges())
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		Token:      token,
		User:       user.ToResponse(),
		Privileges: user.Privileges(),
	}, nil
}

// ResetPassword sets a new password without checking the old one. It backs
// the reset-password command and is not exposed over HTTP.
func (s *authService) ResetPassword(ctx context.Context, email, newPassword string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := user.SetPassword(newPassword); err != nil {
		return err
	}
	return s.userRepo.UpdatePassword(ctx, user.ID, user.Password)
}

// EnsureOwner creates the owner account on first start. An existing account
// with that email is left untouched.
func (s *authService) EnsureOwner(ctx context.Context, email, password string) error {
	_, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	owner := &model.User{
		Email:    email,
		FullName: "Shop Owner",
		Role:     model.RoleOwner,
		IsActive: true,
	}
	owner.CreatedBy = "system"
	owner.UpdatedBy = "system"
	if err := owner.SetPassword(password); err != nil {
		return err
	}
	if err := s.userRepo.Create(ctx, owner); err != nil {
		return err
	}

	s.log.Info("owner account created", zap.String("email", email))
	return nil
}
