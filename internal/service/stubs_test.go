package service

import (
	"context"

	"planora/internal/models"
)

// Function-field stubs let each test supply only the repository behavior it
// cares about.

type stubUserRepo struct {
	getByID       func(ctx context.Context, id uint) (*models.User, error)
	getByEmail    func(ctx context.Context, email string) (*models.User, error)
	getByUsername func(ctx context.Context, username string) (*models.User, error)
	create        func(ctx context.Context, user *models.User) error
	update        func(ctx context.Context, user *models.User) error
	deleteFn      func(ctx context.Context, id uint) error
	list          func(ctx context.Context, limit, offset int) ([]models.User, error)
	count         func(ctx context.Context) (int64, error)
}

func (s *stubUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	if s.getByID != nil {
		return s.getByID(ctx, id)
	}
	return nil, models.NewNotFoundError("User", id)
}

func (s *stubUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.getByEmail != nil {
		return s.getByEmail(ctx, email)
	}
	return nil, nil
}

func (s *stubUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if s.getByUsername != nil {
		return s.getByUsername(ctx, username)
	}
	return nil, nil
}

func (s *stubUserRepo) Create(ctx context.Context, user *models.User) error {
	if s.create != nil {
		return s.create(ctx, user)
	}
	user.ID = 1
	return nil
}

func (s *stubUserRepo) Update(ctx context.Context, user *models.User) error {
	if s.update != nil {
		return s.update(ctx, user)
	}
	return nil
}

func (s *stubUserRepo) Delete(ctx context.Context, id uint) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	return nil
}

func (s *stubUserRepo) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	if s.list != nil {
		return s.list(ctx, limit, offset)
	}
	return nil, nil
}

func (s *stubUserRepo) Count(ctx context.Context) (int64, error) {
	if s.count != nil {
		return s.count(ctx)
	}
	return 0, nil
}

type stubEventRepo struct {
	getByID                 func(ctx context.Context, id uint) (*models.Event, error)
	findAll                 func(ctx context.Context) ([]models.Event, error)
	findVisibleTo           func(ctx context.Context, userID uint) ([]models.Event, error)
	create                  func(ctx context.Context, event *models.Event) error
	save                    func(ctx context.Context, event *models.Event) error
	deleteFn                func(ctx context.Context, id uint) error
	addOrganizer            func(ctx context.Context, event *models.Event, user *models.User) error
	removeOrganizer         func(ctx context.Context, event *models.Event, user *models.User) error
	addMember               func(ctx context.Context, event *models.Event, user *models.User) error
	removeMember            func(ctx context.Context, event *models.Event, user *models.User) error
	count                   func(ctx context.Context) (int64, error)
	countDistinctOrganizers func(ctx context.Context) (int64, error)
}

func (s *stubEventRepo) GetByID(ctx context.Context, id uint) (*models.Event, error) {
	if s.getByID != nil {
		return s.getByID(ctx, id)
	}
	return nil, models.NewNotFoundError("Event", id)
}

func (s *stubEventRepo) FindAll(ctx context.Context) ([]models.Event, error) {
	if s.findAll != nil {
		return s.findAll(ctx)
	}
	return nil, nil
}

func (s *stubEventRepo) FindVisibleTo(ctx context.Context, userID uint) ([]models.Event, error) {
	if s.findVisibleTo != nil {
		return s.findVisibleTo(ctx, userID)
	}
	return nil, nil
}

func (s *stubEventRepo) Create(ctx context.Context, event *models.Event) error {
	if s.create != nil {
		return s.create(ctx, event)
	}
	event.ID = 1
	return nil
}

func (s *stubEventRepo) Save(ctx context.Context, event *models.Event) error {
	if s.save != nil {
		return s.save(ctx, event)
	}
	if event.ID == 0 {
		event.ID = 1
	}
	return nil
}

func (s *stubEventRepo) Delete(ctx context.Context, id uint) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	return nil
}

func (s *stubEventRepo) AddOrganizer(ctx context.Context, event *models.Event, user *models.User) error {
	if s.addOrganizer != nil {
		return s.addOrganizer(ctx, event, user)
	}
	return nil
}

func (s *stubEventRepo) RemoveOrganizer(ctx context.Context, event *models.Event, user *models.User) error {
	if s.removeOrganizer != nil {
		return s.removeOrganizer(ctx, event, user)
	}
	return nil
}

func (s *stubEventRepo) AddMember(ctx context.Context, event *models.Event, user *models.User) error {
	if s.addMember != nil {
		return s.addMember(ctx, event, user)
	}
	return nil
}

func (s *stubEventRepo) RemoveMember(ctx context.Context, event *models.Event, user *models.User) error {
	if s.removeMember != nil {
		return s.removeMember(ctx, event, user)
	}
	return nil
}

func (s *stubEventRepo) Count(ctx context.Context) (int64, error) {
	if s.count != nil {
		return s.count(ctx)
	}
	return 0, nil
}

func (s *stubEventRepo) CountDistinctOrganizers(ctx context.Context) (int64, error) {
	if s.countDistinctOrganizers != nil {
		return s.countDistinctOrganizers(ctx)
	}
	return 0, nil
}

type stubTaskRepo struct {
	getByID          func(ctx context.Context, id uint) (*models.Task, error)
	findAll          func(ctx context.Context) ([]models.Task, error)
	findByEventID    func(ctx context.Context, eventID uint) ([]models.Task, error)
	findByAssignedTo func(ctx context.Context, userID uint) ([]models.Task, error)
	create           func(ctx context.Context, task *models.Task) error
	save             func(ctx context.Context, task *models.Task) error
	deleteFn         func(ctx context.Context, id uint) error
	count            func(ctx context.Context) (int64, error)
	countCompleted   func(ctx context.Context) (int64, error)
}

func (s *stubTaskRepo) GetByID(ctx context.Context, id uint) (*models.Task, error) {
	if s.getByID != nil {
		return s.getByID(ctx, id)
	}
	return nil, models.NewNotFoundError("Task", id)
}

func (s *stubTaskRepo) FindAll(ctx context.Context) ([]models.Task, error) {
	if s.findAll != nil {
		return s.findAll(ctx)
	}
	return nil, nil
}

func (s *stubTaskRepo) FindByEventID(ctx context.Context, eventID uint) ([]models.Task, error) {
	if s.findByEventID != nil {
		return s.findByEventID(ctx, eventID)
	}
	return nil, nil
}

func (s *stubTaskRepo) FindByAssignedTo(ctx context.Context, userID uint) ([]models.Task, error) {
	if s.findByAssignedTo != nil {
		return s.findByAssignedTo(ctx, userID)
	}
	return nil, nil
}

func (s *stubTaskRepo) Create(ctx context.Context, task *models.Task) error {
	if s.create != nil {
		return s.create(ctx, task)
	}
	task.ID = 1
	return nil
}

func (s *stubTaskRepo) Save(ctx context.Context, task *models.Task) error {
	if s.save != nil {
		return s.save(ctx, task)
	}
	return nil
}

func (s *stubTaskRepo) Delete(ctx context.Context, id uint) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	return nil
}

func (s *stubTaskRepo) Count(ctx context.Context) (int64, error) {
	if s.count != nil {
		return s.count(ctx)
	}
	return 0, nil
}

func (s *stubTaskRepo) CountCompleted(ctx context.Context) (int64, error) {
	if s.countCompleted != nil {
		return s.countCompleted(ctx)
	}
	return 0, nil
}

func adminPrincipal() models.Principal {
	return models.Principal{UserID: 1, Username: "admin", Roles: []string{models.RoleAdmin, models.RoleUser}}
}

func userPrincipal(id uint) models.Principal {
	return models.Principal{UserID: id, Username: "user", Roles: []string{models.RoleUser}}
}
