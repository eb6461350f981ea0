package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shashiranjanraj/sweetshop/app/models"
	"github.com/shashiranjanraj/sweetshop/app/repositories"
	"github.com/shashiranjanraj/sweetshop/pkg/auth"
	"github.com/shashiranjanraj/sweetshop/pkg/logger"
)

// Welcomer greets a freshly registered user, usually by queueing a mail.
type Welcomer interface {
	Welcome(ctx context.Context, user models.User) error
}

// Session is what a successful register or login hands back.
type Session struct {
	Token string
	User  models.User
}

type AuthService struct {
	users    repositories.UserStore
	welcomer Welcomer
}

// NewAuthService builds the service. welcomer may be nil.
func NewAuthService(users repositories.UserStore, welcomer Welcomer) *AuthService {
	return &AuthService{users: users, welcomer: welcomer}
}

// Register creates a user with the user role and signs them in.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (Session, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" || password == "" {
		return Session{}, invalid("username, email and password are required")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return Session{}, fmt.Errorf("auth: hash password: %w", err)
	}

	user := models.User{
		Username: username,
		Email:    email,
		Password: hash,
		Role:     models.RoleUser,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return Session{}, storeError("auth: register "+username, err)
	}

	log := logger.WithCtx(ctx)
	log.Info("user registered", "user_id", user.ID, "username", user.Username)

	if s.welcomer != nil {
		if err := s.welcomer.Welcome(ctx, user); err != nil {
			log.Warn("welcome mail not queued", "user_id", user.ID, "error", err)
		}
	}

	return s.session(user)
}

// Login checks username and password. Unknown users and wrong passwords
// fail the same way.
func (s *AuthService) Login(ctx context.Context, username, password string) (Session, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, repositories.ErrNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, storeError("auth: login", err)
	}

	if !auth.CheckPassword(user.Password, password) {
		return Session{}, ErrInvalidCredentials
	}

	return s.session(user)
}

// Me resolves the user behind an access token.
func (s *AuthService) Me(ctx context.Context, userID string) (models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return models.User{}, storeError("auth: me", err)
	}
	return user, nil
}

func (s *AuthService) session(user models.User) (Session, error) {
	token, err := auth.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return Session{}, fmt.Errorf("auth: sign token: %w", err)
	}
	return Session{Token: token, User: user}, nil
}
