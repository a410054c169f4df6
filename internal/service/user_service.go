package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lshigami/formkit/internal/auth"
	"github.com/lshigami/formkit/internal/dto"
	"github.com/lshigami/formkit/internal/model"
	"github.com/lshigami/formkit/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	RegisterUser(ctx context.Context, req dto.RegisterUserRequest) (*dto.UserResponse, error)
	GetUser(ctx context.Context, id uint) (*dto.UserResponse, error)
	GetUserByUsername(ctx context.Context, username string) (*dto.UserResponse, error)
	ListUsers(ctx context.Context) ([]dto.UserResponse, error)
	Authenticate(ctx context.Context, req dto.LoginRequest) (*dto.TokenResponse, error)
}

type userService struct {
	userRepo repository.UserRepository
	tokens   *auth.TokenManager
	cost     int
	now      func() time.Time
}

func NewUserService(userRepo repository.UserRepository, tokens *auth.TokenManager) UserService {
	return &userService{userRepo: userRepo, tokens: tokens, cost: bcrypt.DefaultCost, now: time.Now}
}

func (s *userService) RegisterUser(ctx context.Context, req dto.RegisterUserRequest) (*dto.UserResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.EmailAddress))
	if username == "" || email == "" {
		return nil, NewInvalidInputError("username and email_address are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, NewInvalidInputError("password is too long")
		}
		return nil, err
	}

	user := model.User{
		Username:     username,
		PasswordHash: string(hash),
		Fullname:     req.Fullname,
		EmailAddress: email,
		PicURL:       req.PicURL,
	}
	if err := s.userRepo.Create(ctx, &user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			log.Warn().Str("username", username).Msg("Registration rejected: username or email taken")
			return nil, &Error{Code: ErrorConflict, Message: "username or email address already registered", Err: err}
		}
		log.Error().Err(err).Str("username", username).Msg("Failed to create user")
		return nil, err
	}

	log.Info().Uint("userID", user.ID).Str("username", username).Msg("User registered")
	resp := toUserResponse(&user)
	return &resp, nil
}

func (s *userService) GetUser(ctx context.Context, id uint) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fromRepository(err, entity("user", id))
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) GetUserByUsername(ctx context.Context, username string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fromRepository(err, "user "+username)
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, toUserResponse(&users[i]))
	}
	return resp, nil
}

func (s *userService) Authenticate(ctx context.Context, req dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewUnauthorizedError("invalid username or password")
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		log.Warn().Uint("userID", user.ID).Msg("Authentication failed")
		return nil, NewUnauthorizedError("invalid username or password")
	}

	now := s.now()
	if err := s.userRepo.TouchLastLogin(ctx, user.ID, now); err != nil {
		log.Error().Err(err).Uint("userID", user.ID).Msg("Failed to stamp last login")
		return nil, err
	}
	user.LastLogin = &now

	token, expires, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	return &dto.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expires,
		User:        toUserResponse(user),
	}, nil
}
