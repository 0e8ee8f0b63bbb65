package server

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"planora/internal/models"
	"planora/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateEventStartsWithoutParticipants(t *testing.T) {
	s, app := newTestServer(t)
	user, token := seedUser(t, s, "host", models.RoleUser)

	resp := doJSON(t, app, http.MethodPost, "/api/events/", token, map[string]any{
		"title":       "Company Offsite",
		"description": "Two days in the mountains",
		"date":        time.Now().Add(30 * 24 * time.Hour),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var detail service.EventDetail
	decodeBody(t, resp, &detail)
	assert.Equal(t, "Company Offsite", detail.Title)
	assert.Empty(t, detail.Organizers)
	assert.Empty(t, detail.Members)

	// The creator only becomes an organizer through the explicit endpoint.
	resp = doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/events/%d/organizers/%d", detail.ID, user.ID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &detail)
	require.Len(t, detail.Organizers, 1)
	assert.Equal(t, user.ID, detail.Organizers[0].ID)
}

func TestCreateEventRequiresTitle(t *testing.T) {
	s, app := newTestServer(t)
	_, token := seedUser(t, s, "host", models.RoleUser)

	resp := doJSON(t, app, http.MethodPost, "/api/events/", token, map[string]any{
		"date": time.Now().Add(24 * time.Hour),
	})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListEventsVisibility(t *testing.T) {
	s, app := newTestServer(t)
	host, hostToken := seedUser(t, s, "host", models.RoleUser)
	_, outsiderToken := seedUser(t, s, "outsider", models.RoleUser)
	_, adminToken := seedUser(t, s, "admin", models.RoleUser, models.RoleAdmin)

	resp := doJSON(t, app, http.MethodPost, "/api/events/", hostToken, map[string]any{
		"title": "Private Party",
		"date":  time.Now().Add(24 * time.Hour),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var detail service.EventDetail
	decodeBody(t, resp, &detail)

	resp = doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/events/%d/organizers/%d", detail.ID, host.ID), hostToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	// The organizer sees their event.
	var hostEvents []service.EventSummary
	resp = doJSON(t, app, http.MethodGet, "/api/events/", hostToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &hostEvents)
	assert.Len(t, hostEvents, 1)

	// An unrelated user sees nothing.
	var outsiderEvents []service.EventSummary
	resp = doJSON(t, app, http.MethodGet, "/api/events/", outsiderToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &outsiderEvents)
	assert.Empty(t, outsiderEvents)

	// Admins see everything.
	var adminEvents []service.EventSummary
	resp = doJSON(t, app, http.MethodGet, "/api/events/", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &adminEvents)
	assert.Len(t, adminEvents, 1)
}

func TestUpdateEventDateConflict(t *testing.T) {
	s, app := newTestServer(t)
	_, token := seedUser(t, s, "host", models.RoleUser)

	eventDate := time.Date(2026, 10, 1, 18, 0, 0, 0, time.UTC)
	resp := doJSON(t, app, http.MethodPost, "/api/events/", token, map[string]any{
		"title": "Wedding",
		"date":  eventDate,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var detail service.EventDetail
	decodeBody(t, resp, &detail)

	// A task due right before the event.
	resp = doJSON(t, app, http.MethodPost, "/api/tasks/", token, map[string]any{
		"description": "Order flowers",
		"due_date":    eventDate.Add(-24 * time.Hour),
		"event_id":    detail.ID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	// Moving the event earlier than the task's due date must fail.
	resp = doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/events/%d", detail.ID), token, map[string]any{
		"title": "Wedding",
		"date":  eventDate.Add(-48 * time.Hour),
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var errBody struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	decodeBody(t, resp, &errBody)
	assert.Equal(t, models.CodeDateConflict, errBody.Code)
	assert.Equal(t, "Event date cannot be before task due date: Order flowers", errBody.Error)

	// The stored date is untouched.
	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/events/%d", detail.ID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var after service.EventDetail
	decodeBody(t, resp, &after)
	assert.True(t, after.Date.Equal(eventDate))
}

func TestEventAddressGroup(t *testing.T) {
	s, app := newTestServer(t)
	_, token := seedUser(t, s, "host", models.RoleUser)

	resp := doJSON(t, app, http.MethodPost, "/api/events/", token, map[string]any{
		"title":         "Launch Party",
		"date":          time.Now().Add(14 * 24 * time.Hour),
		"city":          "Berlin",
		"country":       "Germany",
		"location_name": "Warehouse 9",
		"latitude":      52.52,
		"longitude":     13.405,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var detail service.EventDetail
	decodeBody(t, resp, &detail)
	require.NotNil(t, detail.Address)
	assert.Equal(t, "Berlin", detail.Address.City)
	assert.Equal(t, "Warehouse 9", detail.Address.LocationName)
	assert.InDelta(t, 52.52, detail.Address.Geo.Latitude, 1e-9)
}

func TestEventMembership(t *testing.T) {
	s, app := newTestServer(t)
	_, hostToken := seedUser(t, s, "host", models.RoleUser)
	guest, guestToken := seedUser(t, s, "guest", models.RoleUser)

	resp := doJSON(t, app, http.MethodPost, "/api/events/", hostToken, map[string]any{
		"title": "Meetup",
		"date":  time.Now().Add(24 * time.Hour),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var detail service.EventDetail
	decodeBody(t, resp, &detail)

	memberPath := fmt.Sprintf("/api/events/%d/members/%d", detail.ID, guest.ID)

	resp = doJSON(t, app, http.MethodPost, memberPath, hostToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var withMember service.EventDetail
	decodeBody(t, resp, &withMember)
	require.Len(t, withMember.Members, 1)
	assert.Equal(t, guest.ID, withMember.Members[0].ID)

	// Adding the same member twice is a no-op.
	resp = doJSON(t, app, http.MethodPost, memberPath, hostToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &withMember)
	assert.Len(t, withMember.Members, 1)

	// The member now sees the event in their list.
	var guestEvents []service.EventSummary
	resp = doJSON(t, app, http.MethodGet, "/api/events/", guestToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &guestEvents)
	assert.Len(t, guestEvents, 1)

	resp = doJSON(t, app, http.MethodDelete, memberPath, hostToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var withoutMember service.EventDetail
	decodeBody(t, resp, &withoutMember)
	assert.Empty(t, withoutMember.Members)
}

func TestListEventParticipants(t *testing.T) {
	s, app := newTestServer(t)
	host, hostToken := seedUser(t, s, "host", models.RoleUser)
	guest, _ := seedUser(t, s, "guest", models.RoleUser)

	resp := doJSON(t, app, http.MethodPost, "/api/events/", hostToken, map[string]any{
		"title": "Retro",
		"date":  time.Now().Add(24 * time.Hour),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var detail service.EventDetail
	decodeBody(t, resp, &detail)

	resp = doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/events/%d/organizers/%d", detail.ID, host.ID), hostToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp = doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/events/%d/members/%d", detail.ID, guest.ID), hostToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	var organizers []service.UserSummary
	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/events/%d/organizers", detail.ID), hostToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &organizers)
	require.Len(t, organizers, 1)
	assert.Equal(t, host.ID, organizers[0].ID)

	var members []service.UserSummary
	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/events/%d/members", detail.ID), hostToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &members)
	require.Len(t, members, 1)
	assert.Equal(t, guest.ID, members[0].ID)
}

func TestAddMemberUnknownUser(t *testing.T) {
	s, app := newTestServer(t)
	_, token := seedUser(t, s, "host", models.RoleUser)

	resp := doJSON(t, app, http.MethodPost, "/api/events/", token, map[string]any{
		"title": "Meetup",
		"date":  time.Now().Add(24 * time.Hour),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var detail service.EventDetail
	decodeBody(t, resp, &detail)

	resp = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/events/%d/members/999", detail.ID), token, nil)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteEvent(t *testing.T) {
	s, app := newTestServer(t)
	_, token := seedUser(t, s, "host", models.RoleUser)

	resp := doJSON(t, app, http.MethodPost, "/api/events/", token, map[string]any{
		"title": "Short-lived",
		"date":  time.Now().Add(24 * time.Hour),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var detail service.EventDetail
	decodeBody(t, resp, &detail)

	resp = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/events/%d", detail.ID), token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/events/%d", detail.ID), token, nil)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateEventReplaceSemantics(t *testing.T) {
	s, app := newTestServer(t)
	_, token := seedUser(t, s, "host", models.RoleUser)

	resp := doJSON(t, app, http.MethodPost, "/api/events/", token, map[string]any{
		"title":         "Launch Party",
		"description":   "Open bar",
		"date":          time.Now().Add(14 * 24 * time.Hour),
		"street":        "Warehouse Row 9",
		"city":          "Berlin",
		"zip_code":      "10115",
		"country":       "Germany",
		"location_name": "Warehouse 9",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var detail service.EventDetail
	decodeBody(t, resp, &detail)

	// A title-less update is rejected outright.
	resp = doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/events/%d", detail.ID), token, map[string]any{
		"date": time.Now().Add(20 * 24 * time.Hour),
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()

	// The update replaces the whole record: the omitted description is
	// cleared and the address group is overwritten, so zip, country and
	// location name vanish when only the street is resent.
	resp = doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/events/%d", detail.ID), token, map[string]any{
		"title":  "Launch Party v2",
		"date":   time.Now().Add(21 * 24 * time.Hour),
		"street": "Pier 3",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated service.EventDetail
	decodeBody(t, resp, &updated)
	assert.Equal(t, "Launch Party v2", updated.Title)
	assert.Empty(t, updated.Description)
	require.NotNil(t, updated.Address)
	assert.Equal(t, "Pier 3", updated.Address.Street)
	assert.Empty(t, updated.Address.City)
	assert.Empty(t, updated.Address.ZipCode)
	assert.Empty(t, updated.Address.Country)
	assert.Empty(t, updated.Address.LocationName)
}

func TestEventDetailReflectsRenamedAssignee(t *testing.T) {
	s, app := newTestServer(t)
	worker, workerToken := seedUser(t, s, "worker", models.RoleUser)
	_, adminToken := seedUser(t, s, "boss", models.RoleUser, models.RoleAdmin)

	resp := doJSON(t, app, http.MethodPost, "/api/events/", workerToken, map[string]any{
		"title": "Inventory Day",
		"date":  time.Now().Add(10 * 24 * time.Hour),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var detail service.EventDetail
	decodeBody(t, resp, &detail)

	resp = doJSON(t, app, http.MethodPost, "/api/tasks/", workerToken, map[string]any{
		"description":    "Count boxes",
		"assigned_to_id": worker.ID,
		"event_id":       detail.ID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	// Prime the detail view before the rename.
	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/events/%d", detail.ID), workerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &detail)
	require.Len(t, detail.Tasks, 1)
	assert.Equal(t, "worker", detail.Tasks[0].AssignedToUsername)

	resp = doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/admin/users/%d", worker.ID), adminToken, map[string]any{
		"username": "renamed_worker",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	// The denormalized assignee username must be fresh on the next read.
	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/events/%d", detail.ID), workerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &detail)
	require.Len(t, detail.Tasks, 1)
	assert.Equal(t, "renamed_worker", detail.Tasks[0].AssignedToUsername)
}

func TestEventsRequireAuthentication(t *testing.T) {
	_, app := newTestServer(t)

	resp := doJSON(t, app, http.MethodGet, "/api/events/", "", nil)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
