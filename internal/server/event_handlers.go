package server

import (
	"time"

	"planora/internal/models"
	"planora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// eventRequest is the JSON body for creating and updating events. Pointer
// fields distinguish "absent" from "zero"; the address group (street, city,
// location name) is only applied when at least one of those is present.
type eventRequest struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	Date         *time.Time `json:"date"`
	Street       *string    `json:"street"`
	City         *string    `json:"city"`
	ZipCode      *string    `json:"zip_code"`
	Country      *string    `json:"country"`
	LocationName *string    `json:"location_name"`
	Latitude     *float64   `json:"latitude"`
	Longitude    *float64   `json:"longitude"`
}

func (r eventRequest) toInput() service.EventInput {
	return service.EventInput{
		Title:        r.Title,
		Description:  r.Description,
		Date:         r.Date,
		Street:       r.Street,
		City:         r.City,
		ZipCode:      r.ZipCode,
		Country:      r.Country,
		LocationName: r.LocationName,
		Latitude:     r.Latitude,
		Longitude:    r.Longitude,
	}
}

// ListEvents handles GET /api/events
// @Summary List events
// @Description Admins see every event, other users see events they organize or attend
// @Tags events
// @Produce json
// @Success 200 {array} service.EventSummary
// @Router /events [get]
func (s *Server) ListEvents(c *fiber.Ctx) error {
	principal, err := s.principal(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	events, err := s.eventService.ListEvents(c.Context(), principal)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(events)
}

// GetEvent handles GET /api/events/:id
func (s *Server) GetEvent(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	principal, err := s.principal(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	event, err := s.eventService.GetEvent(c.Context(), principal, id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(event)
}

// CreateEvent handles POST /api/events
// @Summary Create event
// @Description Create an event; the creator becomes its first organizer
// @Tags events
// @Accept json
// @Produce json
// @Success 201 {object} service.EventDetail
// @Failure 400 {object} models.ErrorResponse
// @Router /events [post]
func (s *Server) CreateEvent(c *fiber.Ctx) error {
	var req eventRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	principal, err := s.principal(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	event, err := s.eventService.CreateEvent(c.Context(), principal, req.toInput())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(event)
}

// UpdateEvent handles PUT /api/events/:id. Moving the event date earlier than
// an existing task's due date is rejected with a DATE_CONFLICT error.
func (s *Server) UpdateEvent(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req eventRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	principal, err := s.principal(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	event, err := s.eventService.UpdateEvent(c.Context(), principal, id, req.toInput())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(event)
}

// DeleteEvent handles DELETE /api/events/:id
func (s *Server) DeleteEvent(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	principal, err := s.principal(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	if err := s.eventService.DeleteEvent(c.Context(), principal, id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Event deleted"})
}

// ListEventTasks handles GET /api/events/:id/tasks
func (s *Server) ListEventTasks(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	principal, err := s.principal(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	tasks, err := s.taskService.ListEventTasks(c.Context(), principal, id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(tasks)
}

// ListEventOrganizers handles GET /api/events/:id/organizers
func (s *Server) ListEventOrganizers(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	principal, err := s.principal(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	organizers, err := s.eventService.GetOrganizers(c.Context(), principal, id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(organizers)
}

// ListEventMembers handles GET /api/events/:id/members
func (s *Server) ListEventMembers(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	principal, err := s.principal(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	members, err := s.eventService.GetMembers(c.Context(), principal, id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(members)
}

type participantOp func(c *fiber.Ctx, principal models.Principal, eventID, userID uint) (*service.EventDetail, error)

// changeParticipant parses both route IDs and applies the given membership
// operation, returning the refreshed event.
func (s *Server) changeParticipant(c *fiber.Ctx, op participantOp) error {
	eventID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	principal, err := s.principal(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	event, err := op(c, principal, eventID, userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(event)
}

// AddOrganizer handles POST /api/events/:id/organizers/:userId. Adding a user
// who already organizes the event is a no-op.
func (s *Server) AddOrganizer(c *fiber.Ctx) error {
	return s.changeParticipant(c, func(c *fiber.Ctx, p models.Principal, eventID, userID uint) (*service.EventDetail, error) {
		return s.eventService.AddOrganizer(c.Context(), p, eventID, userID)
	})
}

// RemoveOrganizer handles DELETE /api/events/:id/organizers/:userId
func (s *Server) RemoveOrganizer(c *fiber.Ctx) error {
	return s.changeParticipant(c, func(c *fiber.Ctx, p models.Principal, eventID, userID uint) (*service.EventDetail, error) {
		return s.eventService.RemoveOrganizer(c.Context(), p, eventID, userID)
	})
}

// AddMember handles POST /api/events/:id/members/:userId
func (s *Server) AddMember(c *fiber.Ctx) error {
	return s.changeParticipant(c, func(c *fiber.Ctx, p models.Principal, eventID, userID uint) (*service.EventDetail, error) {
		return s.eventService.AddMember(c.Context(), p, eventID, userID)
	})
}

// RemoveMember handles DELETE /api/events/:id/members/:userId
func (s *Server) RemoveMember(c *fiber.Ctx) error {
	return s.changeParticipant(c, func(c *fiber.Ctx, p models.Principal, eventID, userID uint) (*service.EventDetail, error) {
		return s.eventService.RemoveMember(c.Context(), p, eventID, userID)
	})
}
