package handlers

import (
	"net/http"

	"github.com/arzan03/DevCamper/internal/common"
	"github.com/arzan03/DevCamper/internal/services"
	"github.com/gofiber/fiber/v2"
)

// UserHandler serves the admin-only /users routes.
type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// List all users
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	q, err := parseQuery(c)
	if err != nil {
		return err
	}
	result, err := h.users.ListUsers(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// Get user details by ID
func (h *UserHandler) GetUserByID(c *fiber.Ctx) error {
	id, err := objectID(c, "id")
	if err != nil {
		return err
	}
	user, err := h.users.GetUserByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(common.Data(user))
}

func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req services.CreateUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.users.CreateUser(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(common.Data(user))
}

// Update name, email or role; passwords are left alone
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	id, err := objectID(c, "id")
	if err != nil {
		return err
	}
	var req services.UpdateUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.users.UpdateUser(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(common.Data(user))
}

func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := objectID(c, "id")
	if err != nil {
		return err
	}
	if err := h.users.DeleteUser(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(common.Data(common.Empty))
}
