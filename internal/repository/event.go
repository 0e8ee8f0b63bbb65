package repository

import (
	"context"
	"errors"

	"planora/internal/models"

	"gorm.io/gorm"
)

// EventRepository defines persistence operations for events and their
// organizer/member relations.
type EventRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Event, error)
	FindAll(ctx context.Context) ([]models.Event, error)
	FindVisibleTo(ctx context.Context, userID uint) ([]models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	Save(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id uint) error
	AddOrganizer(ctx context.Context, event *models.Event, user *models.User) error
	RemoveOrganizer(ctx context.Context, event *models.Event, user *models.User) error
	AddMember(ctx context.Context, event *models.Event, user *models.User) error
	RemoveMember(ctx context.Context, event *models.Event, user *models.User) error
	Count(ctx context.Context) (int64, error)
	CountDistinctOrganizers(ctx context.Context) (int64, error)
}

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository returns a new EventRepository implementation.
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

// preloadAll loads the full event graph: address, participants, and tasks
// with their assignees.
func (r *eventRepository) preloadAll(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Address").
		Preload("Organizers").
		Preload("Members").
		Preload("Tasks").
		Preload("Tasks.AssignedTo")
}

func (r *eventRepository) GetByID(ctx context.Context, id uint) (*models.Event, error) {
	var event models.Event
	if err := r.preloadAll(r.db.WithContext(ctx)).First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Event", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &event, nil
}

func (r *eventRepository) FindAll(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	if err := r.preloadAll(r.db.WithContext(ctx)).Order("events.date").Find(&events).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return events, nil
}

// FindVisibleTo returns events where the user is an organizer or a member.
// The DISTINCT keeps users appearing in both relations from producing
// duplicate rows.
func (r *eventRepository) FindVisibleTo(ctx context.Context, userID uint) ([]models.Event, error) {
	var events []models.Event
	err := r.preloadAll(r.db.WithContext(ctx)).
		Distinct("events.*").
		Joins("LEFT JOIN event_organizers eo ON eo.event_id = events.id").
		Joins("LEFT JOIN event_members em ON em.event_id = events.id").
		Where("eo.user_id = ? OR em.user_id = ?", userID, userID).
		Order("events.date").
		Find(&events).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return events, nil
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Save persists the event and its owned address in one transaction.
func (r *eventRepository) Save(ctx context.Context, event *models.Event) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if event.Address != nil {
			if err := tx.Save(event.Address).Error; err != nil {
				return err
			}
			event.AddressID = &event.Address.ID
		}
		// Omit associations: organizer/member sets are managed through the
		// dedicated Add/Remove operations, not by full saves.
		return tx.Omit("Organizers", "Members", "Tasks").Save(event).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Delete removes the event with its owned address and tasks. Organizer and
// member join rows go with it; the users themselves are untouched.
func (r *eventRepository) Delete(ctx context.Context, id uint) error {
	var event models.Event
	if err := r.db.WithContext(ctx).First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Event", id)
		}
		return models.NewInternalError(err)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM event_organizers WHERE event_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM event_members WHERE event_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Event{}, id).Error; err != nil {
			return err
		}
		if event.AddressID != nil {
			if err := tx.Delete(&models.Address{}, *event.AddressID).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *eventRepository) AddOrganizer(ctx context.Context, event *models.Event, user *models.User) error {
	if err := r.db.WithContext(ctx).Model(event).Association("Organizers").Append(user); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *eventRepository) RemoveOrganizer(ctx context.Context, event *models.Event, user *models.User) error {
	if err := r.db.WithContext(ctx).Model(event).Association("Organizers").Delete(user); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *eventRepository) AddMember(ctx context.Context, event *models.Event, user *models.User) error {
	if err := r.db.WithContext(ctx).Model(event).Association("Members").Append(user); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *eventRepository) RemoveMember(ctx context.Context, event *models.Event, user *models.User) error {
	if err := r.db.WithContext(ctx).Model(event).Association("Members").Delete(user); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *eventRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Event{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// CountDistinctOrganizers counts users organizing at least one event.
// A user organizing several events counts once.
func (r *eventRepository) CountDistinctOrganizers(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Table("event_organizers").Distinct("user_id").Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
