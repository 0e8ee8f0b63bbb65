package server

import (
	"planora/internal/models"
	"planora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListUsers handles GET /api/admin/users
// @Summary List users
// @Description List all accounts (admin only)
// @Tags admin
// @Produce json
// @Success 200 {array} service.UserDetail
// @Failure 403 {object} models.ErrorResponse
// @Router /admin/users [get]
func (s *Server) ListUsers(c *fiber.Ctx) error {
	p := parsePagination(c, 50)

	users, err := s.userService.ListUsers(c.Context(), p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(users)
}

// ListUserDirectory handles GET /api/users and returns compact summaries for
// any authenticated user, for assignee and participant pickers.
func (s *Server) ListUserDirectory(c *fiber.Ctx) error {
	p := parsePagination(c, 50)

	users, err := s.userService.ListUserSummaries(c.Context(), p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(users)
}

// CreateUser handles POST /api/admin/users. Unlike self-registration it
// accepts an explicit role set and enabled/locked state.
func (s *Server) CreateUser(c *fiber.Ctx) error {
	var req struct {
		Username    string   `json:"username"`
		Email       string   `json:"email"`
		Password    string   `json:"password"`
		Avatar      string   `json:"avatar"`
		Enabled     *bool    `json:"enabled"`
		Locked      *bool    `json:"locked"`
		Authorities []string `json:"authorities"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Username == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username and password are required"))
	}

	user, err := s.userService.CreateUser(c.Context(), service.CreateUserInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		Avatar:      req.Avatar,
		Enabled:     req.Enabled,
		Locked:      req.Locked,
		Authorities: req.Authorities,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// GetUser handles GET /api/admin/users/:id
func (s *Server) GetUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.GetUser(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// UpdateUser handles PUT /api/admin/users/:id. Absent fields are left
// untouched; a present authorities array replaces the whole role set.
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Username    *string  `json:"username"`
		Email       *string  `json:"email"`
		Password    *string  `json:"password"`
		Enabled     *bool    `json:"enabled"`
		Locked      *bool    `json:"locked"`
		Avatar      *string  `json:"avatar"`
		Authorities []string `json:"authorities"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateUser(c.Context(), id, service.UpdateUserInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		Enabled:     req.Enabled,
		Locked:      req.Locked,
		Avatar:      req.Avatar,
		Authorities: req.Authorities,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// DeleteUser handles DELETE /api/admin/users/:id. The user's assigned tasks
// survive unassigned and their event memberships are removed.
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.userService.DeleteUser(c.Context(), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User deleted"})
}
