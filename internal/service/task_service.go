package service

import (
	"context"
	"time"

	"planora/internal/models"
	"planora/internal/observability"
	"planora/internal/repository"
)

// TaskService implements task CRUD, assignment, and completion toggling.
type TaskService struct {
	taskRepo  repository.TaskRepository
	eventRepo repository.EventRepository
	userRepo  repository.UserRepository
}

// CreateTaskInput carries fields for creating a task.
type CreateTaskInput struct {
	Description  string
	Completed    *bool
	DueDate      *time.Time
	AssignedToID *uint
	EventID      *uint
}

// UpdateTaskInput carries fields for updating a task. The fields are not
// symmetric on purpose: Description, DueDate and AssignedToID are always
// overwritten, so omitting the latter two clears the stored values. A nil
// Completed leaves the flag alone, and a nil EventID keeps the current event
// link instead of clearing it.
type UpdateTaskInput struct {
	Description  string
	DueDate      *time.Time
	AssignedToID *uint
	EventID      *uint
	Completed    *bool
}

// NewTaskService returns a new TaskService.
func NewTaskService(taskRepo repository.TaskRepository, eventRepo repository.EventRepository, userRepo repository.UserRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo, eventRepo: eventRepo, userRepo: userRepo}
}

// ListTasks returns the tasks visible to the principal: admins see all
// tasks, everyone else sees tasks assigned to them.
func (s *TaskService) ListTasks(ctx context.Context, principal models.Principal) ([]TaskSummary, error) {
	if !principal.Resolved() {
		return nil, models.NewAuthenticationRequiredError()
	}

	var (
		tasks []models.Task
		err   error
	)
	if principal.IsAdmin() {
		tasks, err = s.taskRepo.FindAll(ctx)
	} else {
		tasks, err = s.taskRepo.FindByAssignedTo(ctx, principal.UserID)
	}
	if err != nil {
		return nil, err
	}
	return toTaskSummaries(tasks), nil
}

// ListEventTasks returns the tasks attached to an event.
func (s *TaskService) ListEventTasks(ctx context.Context, principal models.Principal, eventID uint) ([]TaskSummary, error) {
	if !principal.Resolved() {
		return nil, models.NewAuthenticationRequiredError()
	}
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	tasks, err := s.taskRepo.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return toTaskSummaries(tasks), nil
}

// GetTask returns the full task representation.
func (s *TaskService) GetTask(ctx context.Context, principal models.Principal, id uint) (*TaskDetail, error) {
	if !principal.Resolved() {
		return nil, models.NewAuthenticationRequiredError()
	}
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toTaskDetail(task), nil
}

// CreateTask creates a task, optionally attached to an event and assigned to
// a user. A due date later than the event date is rejected.
func (s *TaskService) CreateTask(ctx context.Context, principal models.Principal, in CreateTaskInput) (*TaskDetail, error) {
	if !principal.Resolved() {
		return nil, models.NewAuthenticationRequiredError()
	}
	if in.Description == "" {
		return nil, models.NewValidationError("Description is required")
	}

	task := &models.Task{
		Description:  in.Description,
		Completed:    in.Completed != nil && *in.Completed,
		DueDate:      in.DueDate,
		AssignedToID: in.AssignedToID,
		EventID:      in.EventID,
	}

	if in.AssignedToID != nil {
		if _, err := s.userRepo.GetByID(ctx, *in.AssignedToID); err != nil {
			return nil, err
		}
	}
	if in.EventID != nil {
		event, err := s.eventRepo.GetByID(ctx, *in.EventID)
		if err != nil {
			return nil, err
		}
		if err := validateTaskDueDate(task.DueDate, event); err != nil {
			return nil, err
		}
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}
	observability.TasksCreatedTotal.Inc()

	return s.getDetail(ctx, task.ID)
}

// UpdateTask applies the input to the task. Description, due date and
// assignee are always overwritten from the input; completion only changes
// when sent. A present EventID re-links the task to that event after
// revalidating the due date against it, while an absent one leaves the
// current link in place (but still revalidates against it).
func (s *TaskService) UpdateTask(ctx context.Context, principal models.Principal, id uint, in UpdateTaskInput) (*TaskDetail, error) {
	if !principal.Resolved() {
		return nil, models.NewAuthenticationRequiredError()
	}
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Description == "" {
		return nil, models.NewValidationError("Description is required")
	}
	if in.AssignedToID != nil {
		if _, err := s.userRepo.GetByID(ctx, *in.AssignedToID); err != nil {
			return nil, err
		}
	}
	if in.EventID != nil {
		event, err := s.eventRepo.GetByID(ctx, *in.EventID)
		if err != nil {
			return nil, err
		}
		if err := validateTaskDueDate(in.DueDate, event); err != nil {
			return nil, err
		}
		task.EventID = in.EventID
		task.Event = nil
	} else if task.EventID != nil {
		event, err := s.eventRepo.GetByID(ctx, *task.EventID)
		if err != nil {
			return nil, err
		}
		if err := validateTaskDueDate(in.DueDate, event); err != nil {
			return nil, err
		}
	}

	task.Description = in.Description
	task.DueDate = in.DueDate
	task.AssignedToID = in.AssignedToID
	task.AssignedTo = nil
	if in.Completed != nil {
		task.Completed = *in.Completed
	}

	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}
	return s.getDetail(ctx, id)
}

// ToggleTask flips the task's completion flag. The due date is deliberately
// not revalidated here: finishing or reopening a task is always allowed.
func (s *TaskService) ToggleTask(ctx context.Context, principal models.Principal, id uint) (*TaskDetail, error) {
	if !principal.Resolved() {
		return nil, models.NewAuthenticationRequiredError()
	}
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	task.Completed = !task.Completed
	task.AssignedTo = nil
	task.Event = nil
	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}
	observability.RecordToggle(task.Completed)

	return s.getDetail(ctx, id)
}

// DeleteTask removes the task. The event and assignee are untouched.
func (s *TaskService) DeleteTask(ctx context.Context, principal models.Principal, id uint) error {
	if !principal.Resolved() {
		return models.NewAuthenticationRequiredError()
	}
	if _, err := s.taskRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.taskRepo.Delete(ctx, id)
}

func (s *TaskService) getDetail(ctx context.Context, id uint) (*TaskDetail, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toTaskDetail(task), nil
}

// validateTaskDueDate rejects a due date that falls after the event date.
// A task with no due date is always fine.
func validateTaskDueDate(dueDate *time.Time, event *models.Event) error {
	if dueDate == nil {
		return nil
	}
	if dueDate.After(event.Date) {
		return models.NewDateConflictError("Task due date cannot be after event date")
	}
	return nil
}
