package service

import (
	"context"
	"testing"
	"time"

	"planora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string        { return &s }
func timePtr(t time.Time) *time.Time { return &t }
func uintPtr(u uint) *uint           { return &u }
func boolPtr(b bool) *bool           { return &b }
func floatPtr(f float64) *float64    { return &f }

func TestListEventsAdminSeesAll(t *testing.T) {
	t.Parallel()

	allCalled := false
	eventRepo := &stubEventRepo{
		findAll: func(ctx context.Context) ([]models.Event, error) {
			allCalled = true
			return []models.Event{{ID: 1, Title: "A"}, {ID: 2, Title: "B"}}, nil
		},
	}
	svc := NewEventService(eventRepo, &stubUserRepo{})

	events, err := svc.ListEvents(context.Background(), adminPrincipal())
	require.NoError(t, err)
	assert.True(t, allCalled)
	assert.Len(t, events, 2)
}

func TestListEventsUserSeesOnlyVisible(t *testing.T) {
	t.Parallel()

	var requestedUser uint
	eventRepo := &stubEventRepo{
		findVisibleTo: func(ctx context.Context, userID uint) ([]models.Event, error) {
			requestedUser = userID
			return []models.Event{{ID: 3, Title: "Mine"}}, nil
		},
	}
	svc := NewEventService(eventRepo, &stubUserRepo{})

	events, err := svc.ListEvents(context.Background(), userPrincipal(42))
	require.NoError(t, err)
	assert.EqualValues(t, 42, requestedUser)
	require.Len(t, events, 1)
	assert.Equal(t, "Mine", events[0].Title)
}

func TestListEventsUnauthenticated(t *testing.T) {
	t.Parallel()

	svc := NewEventService(&stubEventRepo{}, &stubUserRepo{})

	_, err := svc.ListEvents(context.Background(), models.Principal{})
	require.Error(t, err)
	appErr := err.(*models.AppError)
	assert.Equal(t, models.CodeAuthRequired, appErr.Code)
}

func TestCreateEventStartsWithoutParticipants(t *testing.T) {
	t.Parallel()

	saved := &models.Event{}
	organizerAdded := false

	eventRepo := &stubEventRepo{
		save: func(ctx context.Context, event *models.Event) error {
			event.ID = 10
			*saved = *event
			return nil
		},
		addOrganizer: func(ctx context.Context, event *models.Event, user *models.User) error {
			organizerAdded = true
			return nil
		},
		getByID: func(ctx context.Context, id uint) (*models.Event, error) { return saved, nil },
	}
	svc := NewEventService(eventRepo, &stubUserRepo{})

	// The creator does not join the participant sets implicitly; that only
	// happens through the organizer/member endpoints.
	detail, err := svc.CreateEvent(context.Background(), userPrincipal(7), EventInput{
		Title: strPtr("Launch"),
		Date:  timePtr(time.Now().Add(24 * time.Hour)),
	})
	require.NoError(t, err)
	assert.False(t, organizerAdded)
	assert.Empty(t, detail.Organizers)
	assert.Empty(t, detail.Members)
}

func TestCreateEventRequiresTitleAndDate(t *testing.T) {
	t.Parallel()

	svc := NewEventService(&stubEventRepo{}, &stubUserRepo{})

	_, err := svc.CreateEvent(context.Background(), userPrincipal(1), EventInput{Date: timePtr(time.Now())})
	require.Error(t, err)
	assert.Equal(t, models.CodeValidation, err.(*models.AppError).Code)

	_, err = svc.CreateEvent(context.Background(), userPrincipal(1), EventInput{Title: strPtr("No date")})
	require.Error(t, err)
	assert.Equal(t, models.CodeValidation, err.(*models.AppError).Code)
}

func TestUpdateEventDateConflictsWithTask(t *testing.T) {
	t.Parallel()

	eventDate := time.Date(2026, 9, 10, 18, 0, 0, 0, time.UTC)
	lateDue := time.Date(2026, 9, 9, 12, 0, 0, 0, time.UTC)
	event := &models.Event{
		ID:    5,
		Title: "Gala",
		Date:  eventDate,
		Tasks: []models.Task{
			{ID: 1, Description: "Order flowers", DueDate: &lateDue},
			{ID: 2, Description: "No due date"},
		},
	}

	saveCalled := false
	eventRepo := &stubEventRepo{
		getByID: func(ctx context.Context, id uint) (*models.Event, error) { return event, nil },
		save: func(ctx context.Context, e *models.Event) error {
			saveCalled = true
			return nil
		},
	}
	svc := NewEventService(eventRepo, &stubUserRepo{})

	// Moving the event before the flower order's due date must fail and
	// must not write anything.
	newDate := time.Date(2026, 9, 8, 18, 0, 0, 0, time.UTC)
	_, err := svc.UpdateEvent(context.Background(), adminPrincipal(), 5, EventInput{
		Title: strPtr("Gala"),
		Date:  timePtr(newDate),
	})
	require.Error(t, err)
	appErr := err.(*models.AppError)
	assert.Equal(t, models.CodeDateConflict, appErr.Code)
	assert.Equal(t, "Event date cannot be before task due date: Order flowers", appErr.Message)
	assert.False(t, saveCalled)
	assert.Equal(t, eventDate, event.Date)
}

func TestUpdateEventDateAllowedWhenTasksFit(t *testing.T) {
	t.Parallel()

	due := time.Date(2026, 9, 5, 12, 0, 0, 0, time.UTC)
	event := &models.Event{
		ID:    5,
		Title: "Gala",
		Date:  time.Date(2026, 9, 10, 18, 0, 0, 0, time.UTC),
		Tasks: []models.Task{{ID: 1, Description: "Order flowers", DueDate: &due}},
	}

	eventRepo := &stubEventRepo{
		getByID: func(ctx context.Context, id uint) (*models.Event, error) { return event, nil },
	}
	svc := NewEventService(eventRepo, &stubUserRepo{})

	newDate := time.Date(2026, 9, 6, 18, 0, 0, 0, time.UTC)
	detail, err := svc.UpdateEvent(context.Background(), adminPrincipal(), 5, EventInput{
		Title: strPtr("Gala"),
		Date:  timePtr(newDate),
	})
	require.NoError(t, err)
	assert.Equal(t, newDate, detail.Date)
}

func TestUpdateEventRequiresTitleAndDate(t *testing.T) {
	t.Parallel()

	svc := NewEventService(&stubEventRepo{}, &stubUserRepo{})

	_, err := svc.UpdateEvent(context.Background(), adminPrincipal(), 1, EventInput{Date: timePtr(time.Now())})
	require.Error(t, err)
	assert.Equal(t, models.CodeValidation, err.(*models.AppError).Code)

	_, err = svc.UpdateEvent(context.Background(), adminPrincipal(), 1, EventInput{Title: strPtr("No date")})
	require.Error(t, err)
	assert.Equal(t, models.CodeValidation, err.(*models.AppError).Code)
}

func TestUpdateEventReplacesFields(t *testing.T) {
	t.Parallel()

	event := &models.Event{
		ID:          5,
		Title:       "Gala",
		Description: "Black tie",
		Date:        time.Date(2026, 9, 10, 18, 0, 0, 0, time.UTC),
	}
	eventRepo := &stubEventRepo{
		getByID: func(ctx context.Context, id uint) (*models.Event, error) { return event, nil },
	}
	svc := NewEventService(eventRepo, &stubUserRepo{})

	// An omitted description is cleared, not preserved.
	newDate := time.Date(2026, 9, 12, 18, 0, 0, 0, time.UTC)
	detail, err := svc.UpdateEvent(context.Background(), adminPrincipal(), 5, EventInput{
		Title: strPtr("Winter Gala"),
		Date:  timePtr(newDate),
	})
	require.NoError(t, err)
	assert.Equal(t, "Winter Gala", detail.Title)
	assert.Equal(t, newDate, detail.Date)
	assert.Empty(t, detail.Description)
}

func TestUpdateEventAddressGroup(t *testing.T) {
	t.Parallel()

	makeSvc := func(event *models.Event) *EventService {
		repo := &stubEventRepo{
			getByID: func(ctx context.Context, id uint) (*models.Event, error) { return event, nil },
		}
		return NewEventService(repo, &stubUserRepo{})
	}

	base := EventInput{Title: strPtr("T"), Date: timePtr(time.Now())}

	t.Run("lone country does not create an address", func(t *testing.T) {
		event := &models.Event{ID: 1, Title: "T", Date: time.Now()}
		in := base
		in.Country = strPtr("Germany")
		_, err := makeSvc(event).UpdateEvent(context.Background(), adminPrincipal(), 1, in)
		require.NoError(t, err)
		assert.Nil(t, event.Address)
	})

	t.Run("city creates the address and carries other fields", func(t *testing.T) {
		event := &models.Event{ID: 1, Title: "T", Date: time.Now()}
		in := base
		in.City = strPtr("Hamburg")
		in.Country = strPtr("Germany")
		in.Latitude = floatPtr(53.55)
		in.Longitude = floatPtr(9.99)
		_, err := makeSvc(event).UpdateEvent(context.Background(), adminPrincipal(), 1, in)
		require.NoError(t, err)
		require.NotNil(t, event.Address)
		assert.Equal(t, "Hamburg", event.Address.City)
		assert.Equal(t, "Germany", event.Address.Country)
		assert.Equal(t, 53.55, event.Address.Geo.Latitude)
	})

	t.Run("existing address is replaced wholesale", func(t *testing.T) {
		event := &models.Event{
			ID: 1, Title: "T", Date: time.Now(),
			Address: &models.Address{Street: "Old St", City: "Bremen", ZipCode: "28195"},
		}
		in := base
		in.Street = strPtr("New St")
		_, err := makeSvc(event).UpdateEvent(context.Background(), adminPrincipal(), 1, in)
		require.NoError(t, err)
		assert.Equal(t, "New St", event.Address.Street)
		assert.Empty(t, event.Address.City, "omitted city is cleared, not kept")
		assert.Empty(t, event.Address.ZipCode)
	})

	t.Run("gate fails so the stored address survives untouched", func(t *testing.T) {
		event := &models.Event{
			ID: 1, Title: "T", Date: time.Now(),
			Address: &models.Address{Street: "Old St", City: "Bremen"},
		}
		in := base
		in.Country = strPtr("Germany")
		_, err := makeSvc(event).UpdateEvent(context.Background(), adminPrincipal(), 1, in)
		require.NoError(t, err)
		assert.Equal(t, "Old St", event.Address.Street)
		assert.Equal(t, "Bremen", event.Address.City)
	})
}

func TestAddMemberUnknownUser(t *testing.T) {
	t.Parallel()

	eventRepo := &stubEventRepo{
		getByID: func(ctx context.Context, id uint) (*models.Event, error) {
			return &models.Event{ID: id, Title: "E", Date: time.Now()}, nil
		},
	}
	svc := NewEventService(eventRepo, &stubUserRepo{})

	_, err := svc.AddMember(context.Background(), adminPrincipal(), 1, 999)
	require.Error(t, err)
	assert.Equal(t, models.CodeNotFound, err.(*models.AppError).Code)
}

func TestRemoveMemberReturnsUpdatedDetail(t *testing.T) {
	t.Parallel()

	member := &models.User{ID: 2, Username: "member"}
	event := &models.Event{ID: 1, Title: "E", Date: time.Now(), Members: []models.User{*member}}

	eventRepo := &stubEventRepo{
		getByID: func(ctx context.Context, id uint) (*models.Event, error) { return event, nil },
		removeMember: func(ctx context.Context, e *models.Event, u *models.User) error {
			e.Members = nil
			return nil
		},
	}
	userRepo := &stubUserRepo{
		getByID: func(ctx context.Context, id uint) (*models.User, error) { return member, nil },
	}
	svc := NewEventService(eventRepo, userRepo)

	detail, err := svc.RemoveMember(context.Background(), adminPrincipal(), 1, 2)
	require.NoError(t, err)
	assert.Empty(t, detail.Members)
}
