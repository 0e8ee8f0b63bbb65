// Package service implements the business logic of the application.
package service

import (
	"time"

	"planora/internal/models"
)

// UserSummary is the compact user representation embedded in event and task
// responses.
type UserSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
}

// UserDetail is the full user representation returned to admins and to the
// user themselves.
type UserDetail struct {
	ID                  uint       `json:"id"`
	Username            string     `json:"username"`
	Email               string     `json:"email"`
	Enabled             bool       `json:"enabled"`
	Locked              bool       `json:"locked"`
	FailedLoginAttempts int        `json:"failed_login_attempts"`
	LastLogin           *time.Time `json:"last_login,omitempty"`
	Avatar              string     `json:"avatar,omitempty"`
	Authorities         []string   `json:"authorities"`
	CreatedAt           time.Time  `json:"created_at"`
}

// GeoView is a coordinate pair in API responses.
type GeoView struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// AddressView is the event location in API responses.
type AddressView struct {
	Street       string  `json:"street,omitempty"`
	City         string  `json:"city,omitempty"`
	ZipCode      string  `json:"zip_code,omitempty"`
	Country      string  `json:"country,omitempty"`
	LocationName string  `json:"location_name,omitempty"`
	Geo          GeoView `json:"geo"`
}

// EventSummary is the list representation of an event with derived counts.
type EventSummary struct {
	ID                 uint      `json:"id"`
	Title              string    `json:"title"`
	Description        string    `json:"description,omitempty"`
	Date               time.Time `json:"date"`
	LocationName       string    `json:"location_name,omitempty"`
	ParticipantCount   int       `json:"participant_count"`
	TaskCount          int       `json:"task_count"`
	HasUnfinishedTasks bool      `json:"has_unfinished_tasks"`
	CreatedAt          time.Time `json:"created_at"`
}

// EventDetail is the full event representation with participants and tasks.
type EventDetail struct {
	ID          uint          `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Date        time.Time     `json:"date"`
	Address     *AddressView  `json:"address,omitempty"`
	Organizers  []UserSummary `json:"organizers"`
	Members     []UserSummary `json:"members"`
	Tasks       []TaskSummary `json:"tasks"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// TaskSummary is the list representation of a task. The assignee's username
// is denormalized so list views never need a second lookup.
type TaskSummary struct {
	ID                 uint       `json:"id"`
	Description        string     `json:"description"`
	Completed          bool       `json:"completed"`
	DueDate            *time.Time `json:"due_date,omitempty"`
	AssignedToID       *uint      `json:"assigned_to_id,omitempty"`
	AssignedToUsername string     `json:"assigned_to_username,omitempty"`
	EventID            *uint      `json:"event_id,omitempty"`
}

// EventRef is the compact event representation embedded in task details.
type EventRef struct {
	ID    uint      `json:"id"`
	Title string    `json:"title"`
	Date  time.Time `json:"date"`
}

// TaskDetail is the full task representation.
type TaskDetail struct {
	ID          uint         `json:"id"`
	Description string       `json:"description"`
	Completed   bool         `json:"completed"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	AssignedTo  *UserSummary `json:"assigned_to,omitempty"`
	Event       *EventRef    `json:"event,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// AdminStats is the aggregate counters view for the admin dashboard.
type AdminStats struct {
	UserCount            int64   `json:"user_count"`
	EventCount           int64   `json:"event_count"`
	TaskCount            int64   `json:"task_count"`
	CompletedTaskCount   int64   `json:"completed_task_count"`
	CompletionRate       float64 `json:"completion_rate"`
	ActiveOrganizerCount int64   `json:"active_organizer_count"`
}

func toUserSummary(u *models.User) UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, Avatar: u.Avatar}
}

func toUserSummaries(users []models.User) []UserSummary {
	out := make([]UserSummary, 0, len(users))
	for i := range users {
		out = append(out, toUserSummary(&users[i]))
	}
	return out
}

func toUserDetail(u *models.User) *UserDetail {
	return &UserDetail{
		ID:                  u.ID,
		Username:            u.Username,
		Email:               u.Email,
		Enabled:             u.Enabled,
		Locked:              u.Locked,
		FailedLoginAttempts: u.FailedLoginAttempts,
		LastLogin:           u.LastLogin,
		Avatar:              u.Avatar,
		Authorities:         u.RoleNames(),
		CreatedAt:           u.CreatedAt,
	}
}

func toAddressView(a *models.Address) *AddressView {
	if a == nil {
		return nil
	}
	return &AddressView{
		Street:       a.Street,
		City:         a.City,
		ZipCode:      a.ZipCode,
		Country:      a.Country,
		LocationName: a.LocationName,
		Geo:          GeoView{Latitude: a.Geo.Latitude, Longitude: a.Geo.Longitude},
	}
}

func toTaskSummary(t *models.Task) TaskSummary {
	s := TaskSummary{
		ID:           t.ID,
		Description:  t.Description,
		Completed:    t.Completed,
		DueDate:      t.DueDate,
		AssignedToID: t.AssignedToID,
		EventID:      t.EventID,
	}
	if t.AssignedTo != nil {
		s.AssignedToUsername = t.AssignedTo.Username
	}
	return s
}

func toTaskSummaries(tasks []models.Task) []TaskSummary {
	out := make([]TaskSummary, 0, len(tasks))
	for i := range tasks {
		out = append(out, toTaskSummary(&tasks[i]))
	}
	return out
}

func toTaskDetail(t *models.Task) *TaskDetail {
	d := &TaskDetail{
		ID:          t.ID,
		Description: t.Description,
		Completed:   t.Completed,
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.AssignedTo != nil {
		s := toUserSummary(t.AssignedTo)
		d.AssignedTo = &s
	}
	if t.Event != nil {
		d.Event = &EventRef{ID: t.Event.ID, Title: t.Event.Title, Date: t.Event.Date}
	}
	return d
}

func toEventSummary(e *models.Event) EventSummary {
	s := EventSummary{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date,
		TaskCount:   len(e.Tasks),
		CreatedAt:   e.CreatedAt,
	}
	if e.Address != nil {
		s.LocationName = e.Address.LocationName
	}
	// Participants are the union of organizers and members; a user in both
	// sets counts once.
	seen := make(map[uint]struct{}, len(e.Organizers)+len(e.Members))
	for i := range e.Organizers {
		seen[e.Organizers[i].ID] = struct{}{}
	}
	for i := range e.Members {
		seen[e.Members[i].ID] = struct{}{}
	}
	s.ParticipantCount = len(seen)
	for i := range e.Tasks {
		if !e.Tasks[i].Completed {
			s.HasUnfinishedTasks = true
			break
		}
	}
	return s
}

func toEventSummaries(events []models.Event) []EventSummary {
	out := make([]EventSummary, 0, len(events))
	for i := range events {
		out = append(out, toEventSummary(&events[i]))
	}
	return out
}

func toEventDetail(e *models.Event) *EventDetail {
	return &EventDetail{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date,
		Address:     toAddressView(e.Address),
		Organizers:  toUserSummaries(e.Organizers),
		Members:     toUserSummaries(e.Members),
		Tasks:       toTaskSummaries(e.Tasks),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}
