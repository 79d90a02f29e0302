package services

import (
	"context"
	"strings"
	"time"

	"github.com/arzan03/DevCamper/internal/models"
	"github.com/arzan03/DevCamper/internal/query"
	"github.com/arzan03/DevCamper/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CreateUserRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=user publisher admin"`
}

// UpdateUserRequest has no password field: admins cannot set passwords.
type UpdateUserRequest struct {
	Name  *string `json:"name" bson:"name,omitempty" validate:"omitempty,min=1"`
	Email *string `json:"email" bson:"email,omitempty" validate:"omitempty,email"`
	Role  *string `json:"role" bson:"role,omitempty" validate:"omitempty,oneof=user publisher admin"`
}

// UserService is the admin-only user management surface.
type UserService struct {
	users repository.UserRepository
	now   func() time.Time
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users, now: time.Now}
}

func (s *UserService) ListUsers(ctx context.Context, q query.Query) (*query.Result[models.User], error) {
	return query.Run[models.User](ctx, s.users, q)
}

func (s *UserService) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, id)
	}
	return u, nil
}

func (s *UserService) CreateUser(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	if err := models.Validate(req); err != nil {
		return nil, err
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
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, id primitive.ObjectID, req UpdateUserRequest) (*models.User, error) {
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
	u, err := s.users.Update(ctx, id, set)
	if err != nil {
		return nil, notFound(err, id)
	}
	return u, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	return notFound(s.users.Delete(ctx, id), id)
}
