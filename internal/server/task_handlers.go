package server

import (
	"time"

	"planora/internal/models"
	"planora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListTasks handles GET /api/tasks
// @Summary List tasks
// @Description Admins see every task, other users see tasks assigned to them. ?eventId= lists one event's tasks instead.
// @Tags tasks
// @Produce json
// @Param eventId query int false "Filter to the tasks of one event"
// @Success 200 {array} service.TaskSummary
// @Router /tasks [get]
func (s *Server) ListTasks(c *fiber.Ctx) error {
	principal, err := s.principal(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	if eventID := c.QueryInt("eventId", 0); eventID > 0 {
		tasks, err := s.taskService.ListEventTasks(c.Context(), principal, uint(eventID))
		if err != nil {
			return respondServiceError(c, err)
		}
		return c.JSON(tasks)
	}

	tasks, err := s.taskService.ListTasks(c.Context(), principal)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(tasks)
}

// GetTask handles GET /api/tasks/:id
func (s *Server) GetTask(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	principal, err := s.principal(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	task, err := s.taskService.GetTask(c.Context(), principal, id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(task)
}

// CreateTask handles POST /api/tasks. A due date after the target event's
// date is rejected with a DATE_CONFLICT error.
func (s *Server) CreateTask(c *fiber.Ctx) error {
	var req struct {
		Description  string     `json:"description"`
		Completed    *bool      `json:"completed"`
		DueDate      *time.Time `json:"due_date"`
		AssignedToID *uint      `json:"assigned_to_id"`
		EventID      *uint      `json:"event_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	principal, err := s.principal(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	task, err := s.taskService.CreateTask(c.Context(), principal, service.CreateTaskInput{
		Description:  req.Description,
		Completed:    req.Completed,
		DueDate:      req.DueDate,
		AssignedToID: req.AssignedToID,
		EventID:      req.EventID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

// UpdateTask handles PUT /api/tasks/:id. The body follows overwrite
// semantics: description is required, and omitting due_date or
// assigned_to_id clears the stored values. Omitting completed leaves the
// flag alone, and omitting event_id keeps the current event link while a
// present one re-links the task after revalidation.
func (s *Server) UpdateTask(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Description  string     `json:"description"`
		DueDate      *time.Time `json:"due_date"`
		AssignedToID *uint      `json:"assigned_to_id"`
		EventID      *uint      `json:"event_id"`
		Completed    *bool      `json:"completed"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	principal, err := s.principal(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	task, err := s.taskService.UpdateTask(c.Context(), principal, id, service.UpdateTaskInput{
		Description:  req.Description,
		DueDate:      req.DueDate,
		AssignedToID: req.AssignedToID,
		EventID:      req.EventID,
		Completed:    req.Completed,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(task)
}

// ToggleTask handles POST/PATCH /api/tasks/:id/toggle and flips the
// completed flag without revalidating dates.
func (s *Server) ToggleTask(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	principal, err := s.principal(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	task, err := s.taskService.ToggleTask(c.Context(), principal, id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(task)
}

// DeleteTask handles DELETE /api/tasks/:id
func (s *Server) DeleteTask(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	principal, err := s.principal(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	if err := s.taskService.DeleteTask(c.Context(), principal, id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Task deleted"})
}
