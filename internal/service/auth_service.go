package service

import (
	"errors"
	"fmt"

	"giftpay/config"
	"giftpay/internal/auth"
	"giftpay/internal/domain"
	"giftpay/internal/models"
	"giftpay/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// AuthService issues tokens. The wider authentication story (OAuth,
// sessions, password reset) lives outside this system.
type AuthService struct {
	cfg    *config.Config
	users  *repository.UserRepository
	ledger *repository.LedgerRepository
}

func NewAuthService(cfg *config.Config, users *repository.UserRepository, ledger *repository.LedgerRepository) *AuthService {
	return &AuthService{cfg: cfg, users: users, ledger: ledger}
}

func (s *AuthService) Register(email, password string) (*models.User, string, error) {
	if email == "" || len(password) < 8 {
		return nil, "", fmt.Errorf("%w: email and a password of at least 8 characters required", domain.ErrValidation)
	}
	if _, err := s.users.GetByEmail(email); err == nil {
		return nil, "", fmt.Errorf("%w: email already registered", domain.ErrValidation)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}
	user := &models.User{Email: email, PasswordHash: string(hash), Role: domain.RoleUser}
	if err := s.users.Create(user); err != nil {
		return nil, "", err
	}
	// Wallet created at signup; balance mutations only ever go through the ledger.
	if _, err := s.ledger.GetOrCreate(user.ID); err != nil {
		return nil, "", err
	}
	token, err := auth.GenerateToken(&s.cfg.JWT, user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) Login(email, password string) (*models.User, string, error) {
	user, err := s.users.GetByEmail(email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}
	token, err := auth.GenerateToken(&s.cfg.JWT, user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}
