package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/arzan03/DevCamper/internal/common"
	"github.com/arzan03/DevCamper/internal/models"
	"github.com/arzan03/DevCamper/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=user publisher"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateDetailsRequest struct {
	Name  *string `json:"name" bson:"name,omitempty" validate:"omitempty,min=1"`
	Email *string `json:"email" bson:"email,omitempty" validate:"omitempty,email"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=72"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=6,max=72"`
}

var errInvalidCredentials = common.Unauthorized("Invalid credentials")

type AuthService struct {
	users  repository.UserRepository
	tokens *TokenService
	mailer Mailer
	logger *log.Logger
	now    func() time.Time
}

func NewAuthService(users repository.UserRepository, tokens *TokenService, mailer Mailer, logger *log.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, mailer: mailer, logger: logger, now: time.Now}
}

// RegisterUser creates a user with role user or publisher and returns a token.
func (s *AuthService) RegisterUser(ctx context.Context, req RegisterRequest) (string, error) {
	if err := models.Validate(req); err != nil {
		return "", err
	}
	if req.Role == "" {
		req.Role = models.RoleUser
	}

	user := &models.User{
		ID:        primitive.NewObjectID(),
		Name:      req.Name,
		Email:     strings.ToLower(req.Email),
		Role:      req.Role,
		CreatedAt: s.now(),
	}
	if err := user.SetPassword(req.Password); err != nil {
		return "", err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return "", err
	}
	return s.tokens.GenerateJWT(user.ID)
}

// LoginUser fails identically for an unknown email and a wrong password.
func (s *AuthService) LoginUser(ctx context.Context, req LoginRequest) (string, error) {
	if req.Email == "" || req.Password == "" {
		return "", common.BadRequest("Please provide an email and password")
	}

	user, err := s.users.FindByEmail(ctx, strings.ToLower(req.Email))
	if errors.Is(err, repository.ErrNotFound) {
		return "", errInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	if !user.MatchPassword(req.Password) {
		return "", errInvalidCredentials
	}
	return s.tokens.GenerateJWT(user.ID)
}

// Authenticate resolves a token to its user. Every failure, including a
// user deleted after issuance, is reported as ErrNotAuthorized.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, common.ErrNotAuthorized
	}
	id, err := s.tokens.ParseJWT(token)
	if err != nil {
		return nil, common.ErrNotAuthorized
	}
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, common.ErrNotAuthorized
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ForgotPassword stores a reset token and mails its link. resetURL receives
// the raw token and returns the absolute link to put in the message.
func (s *AuthService) ForgotPassword(ctx context.Context, email string, resetURL func(token string) string) error {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(email))
	if errors.Is(err, repository.ErrNotFound) {
		return common.NotFound("There is no user with that email")
	}
	if err != nil {
		return err
	}

	raw, err := user.NewResetToken(s.now())
	if err != nil {
		return err
	}
	if err := s.users.Save(ctx, user); err != nil {
		return err
	}

	msg := Email{
		To:      user.Email,
		Subject: "Password reset token",
		Text: fmt.Sprintf("You are receiving this email because a password reset was requested for your account. "+
			"Please make a PUT request to:\n\n%s", resetURL(raw)),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Printf("reset email for user %s: %v", user.ID.Hex(), err)
		user.ClearResetToken()
		if err := s.users.Save(ctx, user); err != nil {
			s.logger.Printf("clear reset token for user %s: %v", user.ID.Hex(), err)
		}
		return common.Internal("Email could not be sent")
	}
	return nil
}

// ResetPassword swaps the password of the user holding an unexpired token.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken string, req ResetPasswordRequest) (string, error) {
	user, err := s.users.FindByResetToken(ctx, models.HashResetToken(rawToken), s.now())
	if errors.Is(err, repository.ErrNotFound) {
		return "", common.BadRequest("Invalid token")
	}
	if err != nil {
		return "", err
	}
	if err := models.Validate(req); err != nil {
		return "", err
	}

	if err := user.SetPassword(req.Password); err != nil {
		return "", err
	}
	user.ClearResetToken()
	if err := s.users.Save(ctx, user); err != nil {
		return "", err
	}
	return s.tokens.GenerateJWT(user.ID)
}

// UpdateDetails changes name and email only.
func (s *AuthService) UpdateDetails(ctx context.Context, user *models.User, req UpdateDetailsRequest) (*models.User, error) {
	if err := models.Validate(req); err != nil {
		return nil, err
	}
	if req.Email != nil {
		lower := strings.ToLower(*req.Email)
		req.Email = &lower
	}
	set, err := toSet(req)
	if err != nil {
		return nil, err
	}
	return s.users.Update(ctx, user.ID, set)
}

func (s *AuthService) UpdatePassword(ctx context.Context, user *models.User, req UpdatePasswordRequest) (string, error) {
	if err := models.Validate(req); err != nil {
		return "", err
	}
	if !user.MatchPassword(req.CurrentPassword) {
		return "", common.Unauthorized("Password is incorrect")
	}
	if err := user.SetPassword(req.NewPassword); err != nil {
		return "", err
	}
	if _, err := s.users.Update(ctx, user.ID, bson.M{"password": user.Password}); err != nil {
		return "", err
	}
	return s.tokens.GenerateJWT(user.ID)
}
