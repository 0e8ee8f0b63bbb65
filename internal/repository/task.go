package repository

import (
	"context"
	"errors"

	"planora/internal/models"

	"gorm.io/gorm"
)

// TaskRepository defines persistence operations for tasks.
type TaskRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Task, error)
	FindAll(ctx context.Context) ([]models.Task, error)
	FindByEventID(ctx context.Context, eventID uint) ([]models.Task, error)
	FindByAssignedTo(ctx context.Context, userID uint) ([]models.Task, error)
	Create(ctx context.Context, task *models.Task) error
	Save(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
	CountCompleted(ctx context.Context) (int64, error)
}

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository returns a new TaskRepository implementation.
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) preload(db *gorm.DB) *gorm.DB {
	return db.Preload("AssignedTo").Preload("Event")
}

func (r *taskRepository) GetByID(ctx context.Context, id uint) (*models.Task, error) {
	var task models.Task
	if err := r.preload(r.db.WithContext(ctx)).First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Task", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &task, nil
}

func (r *taskRepository) FindAll(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.preload(r.db.WithContext(ctx)).Order("id").Find(&tasks).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return tasks, nil
}

func (r *taskRepository) FindByEventID(ctx context.Context, eventID uint) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.preload(r.db.WithContext(ctx)).Where("event_id = ?", eventID).Order("id").Find(&tasks).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return tasks, nil
}

func (r *taskRepository) FindByAssignedTo(ctx context.Context, userID uint) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.preload(r.db.WithContext(ctx)).Where("assigned_to_id = ?", userID).Order("id").Find(&tasks).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return tasks, nil
}

func (r *taskRepository) Create(ctx context.Context, task *models.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *taskRepository) Save(ctx context.Context, task *models.Task) error {
	// Omit loaded associations so a save never rewrites the assignee or
	// event rows, only the task's own columns.
	if err := r.db.WithContext(ctx).Omit("AssignedTo", "Event").Save(task).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id uint) error {
	var task models.Task
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Task", id)
		}
		return models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).Delete(&models.Task{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *taskRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Task{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *taskRepository) CountCompleted(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Task{}).Where("completed = ?", true).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
