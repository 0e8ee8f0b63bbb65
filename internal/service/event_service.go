package service

import (
	"context"
	"time"

	"planora/internal/models"
	"planora/internal/observability"
	"planora/internal/repository"
)

// EventService implements event CRUD, participant management, and the
// event/task date consistency rules.
type EventService struct {
	eventRepo repository.EventRepository
	userRepo  repository.UserRepository
}

// EventInput carries event fields for create and update. Pointer fields
// distinguish "not sent" from zero values; title and date are required on
// both paths, and the address group is replaced wholesale once any of its
// gating fields is present.
type EventInput struct {
	Title        *string
	Description  *string
	Date         *time.Time
	Street       *string
	City         *string
	ZipCode      *string
	Country      *string
	LocationName *string
	Latitude     *float64
	Longitude    *float64
}

// NewEventService returns a new EventService.
func NewEventService(eventRepo repository.EventRepository, userRepo repository.UserRepository) *EventService {
	return &EventService{eventRepo: eventRepo, userRepo: userRepo}
}

// ListEvents returns the events visible to the principal: admins see all
// events, everyone else sees events they organize or attend.
func (s *EventService) ListEvents(ctx context.Context, principal models.Principal) ([]EventSummary, error) {
	if !principal.Resolved() {
		return nil, models.NewAuthenticationRequiredError()
	}

	var (
		events []models.Event
		err    error
	)
	if principal.IsAdmin() {
		events, err = s.eventRepo.FindAll(ctx)
	} else {
		events, err = s.eventRepo.FindVisibleTo(ctx, principal.UserID)
	}
	if err != nil {
		return nil, err
	}
	return toEventSummaries(events), nil
}

// GetEvent returns the full event representation. The detail embeds
// denormalized assignee usernames, so it is always rebuilt from the store
// rather than cached.
func (s *EventService) GetEvent(ctx context.Context, principal models.Principal, id uint) (*EventDetail, error) {
	if !principal.Resolved() {
		return nil, models.NewAuthenticationRequiredError()
	}
	return s.getDetail(ctx, id)
}

// CreateEvent creates an event. The participant sets start empty; the
// creator joins them only through the explicit organizer/member operations.
func (s *EventService) CreateEvent(ctx context.Context, principal models.Principal, in EventInput) (*EventDetail, error) {
	if !principal.Resolved() {
		return nil, models.NewAuthenticationRequiredError()
	}
	if in.Title == nil || *in.Title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if in.Date == nil {
		return nil, models.NewValidationError("Date is required")
	}

	event := &models.Event{
		Title: *in.Title,
		Date:  *in.Date,
	}
	if in.Description != nil {
		event.Description = *in.Description
	}
	applyAddress(event, in)

	if err := s.eventRepo.Save(ctx, event); err != nil {
		return nil, err
	}
	observability.EventsCreatedTotal.Inc()

	return s.getDetail(ctx, event.ID)
}

// UpdateEvent replaces the event's fields with the input. The new date is
// validated against every attached task before anything is written: the
// first task due after the new date fails the whole update.
func (s *EventService) UpdateEvent(ctx context.Context, principal models.Principal, id uint, in EventInput) (*EventDetail, error) {
	if !principal.Resolved() {
		return nil, models.NewAuthenticationRequiredError()
	}
	if in.Title == nil || *in.Title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if in.Date == nil {
		return nil, models.NewValidationError("Date is required")
	}
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	for i := range event.Tasks {
		task := &event.Tasks[i]
		if task.DueDate != nil && task.DueDate.After(*in.Date) {
			return nil, models.NewDateConflictError("Event date cannot be before task due date: " + task.Description)
		}
	}
	event.Date = *in.Date
	event.Title = *in.Title
	event.Description = ""
	if in.Description != nil {
		event.Description = *in.Description
	}
	applyAddress(event, in)

	if err := s.eventRepo.Save(ctx, event); err != nil {
		return nil, err
	}
	return s.getDetail(ctx, id)
}

// DeleteEvent removes the event with its address and tasks.
func (s *EventService) DeleteEvent(ctx context.Context, principal models.Principal, id uint) error {
	if !principal.Resolved() {
		return models.NewAuthenticationRequiredError()
	}
	return s.eventRepo.Delete(ctx, id)
}

// AddOrganizer adds the user to the event's organizer set. Adding an
// existing organizer is a no-op.
func (s *EventService) AddOrganizer(ctx context.Context, principal models.Principal, eventID, userID uint) (*EventDetail, error) {
	return s.changeParticipant(ctx, principal, eventID, userID, s.eventRepo.AddOrganizer)
}

// RemoveOrganizer removes the user from the event's organizer set. Removing
// a user who is not an organizer is a no-op.
func (s *EventService) RemoveOrganizer(ctx context.Context, principal models.Principal, eventID, userID uint) (*EventDetail, error) {
	return s.changeParticipant(ctx, principal, eventID, userID, s.eventRepo.RemoveOrganizer)
}

// AddMember adds the user to the event's member set. Adding an existing
// member is a no-op.
func (s *EventService) AddMember(ctx context.Context, principal models.Principal, eventID, userID uint) (*EventDetail, error) {
	return s.changeParticipant(ctx, principal, eventID, userID, s.eventRepo.AddMember)
}

// RemoveMember removes the user from the event's member set. Removing a user
// who is not a member is a no-op.
func (s *EventService) RemoveMember(ctx context.Context, principal models.Principal, eventID, userID uint) (*EventDetail, error) {
	return s.changeParticipant(ctx, principal, eventID, userID, s.eventRepo.RemoveMember)
}

// GetOrganizers returns the event's organizer set as user summaries.
func (s *EventService) GetOrganizers(ctx context.Context, principal models.Principal, eventID uint) ([]UserSummary, error) {
	if !principal.Resolved() {
		return nil, models.NewAuthenticationRequiredError()
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return toUserSummaries(event.Organizers), nil
}

// GetMembers returns the event's member set as user summaries.
func (s *EventService) GetMembers(ctx context.Context, principal models.Principal, eventID uint) ([]UserSummary, error) {
	if !principal.Resolved() {
		return nil, models.NewAuthenticationRequiredError()
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return toUserSummaries(event.Members), nil
}

func (s *EventService) changeParticipant(
	ctx context.Context,
	principal models.Principal,
	eventID, userID uint,
	op func(context.Context, *models.Event, *models.User) error,
) (*EventDetail, error) {
	if !principal.Resolved() {
		return nil, models.NewAuthenticationRequiredError()
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := op(ctx, event, user); err != nil {
		return nil, err
	}
	return s.getDetail(ctx, eventID)
}

func (s *EventService) getDetail(ctx context.Context, id uint) (*EventDetail, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toEventDetail(event), nil
}

// applyAddress replaces the event's owned address from the input. The group
// is only touched when street, city, or location name was sent; lone
// zip/country/coordinate fields never create an address on their own. Once
// the gate passes the whole group is overwritten, so omitted fields are
// cleared rather than preserved.
func applyAddress(event *models.Event, in EventInput) {
	if in.Street == nil && in.City == nil && in.LocationName == nil {
		return
	}
	if event.Address == nil {
		event.Address = &models.Address{}
	}
	event.Address.Street = strVal(in.Street)
	event.Address.City = strVal(in.City)
	event.Address.ZipCode = strVal(in.ZipCode)
	event.Address.Country = strVal(in.Country)
	event.Address.LocationName = strVal(in.LocationName)
	event.Address.Geo.Latitude = floatVal(in.Latitude)
	event.Address.Geo.Longitude = floatVal(in.Longitude)
}

func strVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func floatVal(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
