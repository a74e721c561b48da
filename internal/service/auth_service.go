package service

import (
	"go-batch-inventory/internal/apperr"
	"go-batch-inventory/internal/model"
	"go-batch-inventory/internal/repository"
	"go-batch-inventory/pkg/jwt"

	"github.com/google/uuid"
)

type AuthService interface {
	Login(email, password string) (*LoginResponse, error)
}

type LoginResponse struct {
	Token string             `json:"token"`
	User  model.UserResponse `json:"user"`
}

type authService struct {
	userRepo repository.UserRepository
}

func NewAuthService(userRepo repository.UserRepository) AuthService {
	return &authService{userRepo: userRepo}
}

// Login verifies credentials and issues a token carrying the actor identity
// the ledger will attribute transactions to. Each login rotates the token
// version, invalidating earlier sessions.
func (s *authService) Login(email, password string) (*LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return nil, apperr.ErrInvalidCredentials
	}
	if !user.CheckPassword(password) {
		return nil, apperr.ErrInvalidCredentials
	}

	newTokenVersion := uuid.New().String()
	if err := s.userRepo.UpdateTokenVersion(user.ID, newTokenVersion); err != nil {
		return nil, err
	}

	token, err := jwt.GenerateToken(user.ID, user.Email, user.Name, newTokenVersion)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{Token: token, User: user.ToResponse()}, nil
}
