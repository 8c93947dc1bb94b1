package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/maheshrc27/linkfeed/internal/models"
	"github.com/maheshrc27/linkfeed/internal/repository"
	"github.com/maheshrc27/linkfeed/internal/transfer"
	"github.com/maheshrc27/linkfeed/pkg/utils"
	"golang.org/x/crypto/bcrypt"
)

const (
	TokenDuration     = 24 * time.Hour
	minPasswordLength = 6
)

type AuthService interface {
	Signup(ctx context.Context, su *transfer.Signup) (*transfer.AuthResponse, error)
	Login(ctx context.Context, l *transfer.Login) (*transfer.AuthResponse, error)
}

type authService struct {
	secretKey string
	u         repository.UserRepository
}

func NewAuthService(secretKey string, u repository.UserRepository) AuthService {
	return &authService{
		secretKey: secretKey,
		u:         u,
	}
}

func (s *authService) Signup(ctx context.Context, su *transfer.Signup) (*transfer.AuthResponse, error) {
	name := strings.TrimSpace(su.Name)
	email := strings.ToLower(strings.TrimSpace(su.Email))

	if name == "" {
		return nil, NewValidationError("name is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, NewValidationError("a valid email is required")
	}
	if len(su.Password) < minPasswordLength {
		return nil, NewValidationError("password must be at least %d characters", minPasswordLength)
	}

	_, isExist, err := s.u.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if isExist {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(su.Password), bcrypt.DefaultCost)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	}

	user.ID, err = s.u.Create(ctx, nil, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return s.respond(user)
}

func (s *authService) Login(ctx context.Context, l *transfer.Login) (*transfer.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(l.Email))
	if email == "" || l.Password == "" {
		return nil, NewValidationError("email and password are required")
	}

	user, isExist, err := s.u.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !isExist {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(l.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.respond(user)
}

func (s *authService) respond(user *models.User) (*transfer.AuthResponse, error) {
	token, err := utils.GenerateToken(s.secretKey, strconv.FormatInt(user.ID, 10), user.Name, TokenDuration)
	if err != nil {
		return nil, err
	}

	return &transfer.AuthResponse{
		Token:        token,
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		ProfilePhoto: user.ProfilePhoto,
	}, nil
}
