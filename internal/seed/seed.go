// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"planora/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumEvents   int
	ShouldClean bool
}

// demoPassword is the shared password of every seeded account.
const demoPassword = "Planora-Demo-1!"

var eventThemes = []string{
	"Summer Barbecue", "Product Launch", "Team Offsite", "Wedding Reception",
	"Birthday Bash", "Charity Gala", "Board Game Night", "Hackathon",
	"Open Air Concert", "Neighborhood Cleanup", "Book Club Meetup",
	"Company Anniversary", "Farewell Party", "Housewarming",
}

var taskTemplates = []string{
	"Book the venue", "Send invitations", "Order catering", "Arrange transport",
	"Prepare playlist", "Buy decorations", "Confirm guest list", "Print name tags",
	"Set up chairs", "Organize cleanup crew", "Reserve parking", "Test the sound system",
}

// Seed populates the database with demo users, events, and tasks.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Seeding database with %d users and %d events...", opts.NumUsers, opts.NumEvents)
	gofakeit.Seed(time.Now().UnixNano())

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway...")
		}
	}

	users, err := createUsers(db, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("✓ %d users created", len(users))

	events, err := createEvents(db, users, opts.NumEvents)
	if err != nil {
		return fmt.Errorf("failed to create events: %w", err)
	}
	log.Printf("✓ %d events created", len(events))

	taskCount, err := createTasks(db, users, events)
	if err != nil {
		return fmt.Errorf("failed to create tasks: %w", err)
	}
	log.Printf("✓ %d tasks created", taskCount)

	log.Println("Database seeding completed")
	return nil
}

func clearData(db *gorm.DB) error {
	for _, stmt := range []string{
		"DELETE FROM tasks",
		"DELETE FROM event_organizers",
		"DELETE FROM event_members",
		"DELETE FROM events",
		"DELETE FROM addresses",
		"DELETE FROM roles",
		"DELETE FROM users",
	} {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

func createUsers(db *gorm.DB, count int) ([]models.User, error) {
	if count <= 0 {
		count = 10
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, count+1)

	admin := models.User{
		Username: "planora_admin",
		Email:    "admin@planora.local",
		Password: string(hashed),
		Enabled:  true,
		Roles: []models.Role{
			{Name: models.RoleUser},
			{Name: models.RoleAdmin},
		},
	}
	if err := db.Create(&admin).Error; err != nil {
		return nil, err
	}
	users = append(users, admin)

	for i := 0; i < count; i++ {
		username := strings.ToLower(fmt.Sprintf("%s_%s%d",
			gofakeit.FirstName(), gofakeit.LastName(), gofakeit.Number(10, 99)))
		user := models.User{
			Username: username,
			Email:    username + "@" + gofakeit.DomainName(),
			Password: string(hashed),
			Enabled:  true,
			Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", username),
			Roles:    []models.Role{{Name: models.RoleUser}},
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func createEvents(db *gorm.DB, users []models.User, count int) ([]models.Event, error) {
	if count <= 0 {
		count = 6
	}

	events := make([]models.Event, 0, count)
	for i := 0; i < count; i++ {
		address := models.Address{
			Street:       gofakeit.Street(),
			City:         gofakeit.City(),
			ZipCode:      gofakeit.Zip(),
			Country:      gofakeit.Country(),
			LocationName: gofakeit.Company(),
			Geo: models.Geo{
				Latitude:  gofakeit.Latitude(),
				Longitude: gofakeit.Longitude(),
			},
		}
		if err := db.Create(&address).Error; err != nil {
			return nil, err
		}

		event := models.Event{
			Title:       eventThemes[rand.Intn(len(eventThemes))],
			Description: gofakeit.Sentence(12),
			Date:        time.Now().AddDate(0, 0, 7+rand.Intn(120)),
			AddressID:   &address.ID,
		}
		if err := db.Create(&event).Error; err != nil {
			return nil, err
		}

		organizer := users[rand.Intn(len(users))]
		if err := db.Model(&event).Association("Organizers").Append(&organizer); err != nil {
			return nil, err
		}

		// A few random members; the organizer attending too is fine.
		for j := 0; j < 2+rand.Intn(4); j++ {
			member := users[rand.Intn(len(users))]
			if err := db.Model(&event).Association("Members").Append(&member); err != nil {
				return nil, err
			}
		}
		events = append(events, event)
	}
	return events, nil
}

func createTasks(db *gorm.DB, users []models.User, events []models.Event) (int, error) {
	created := 0
	for i := range events {
		event := &events[i]
		for j := 0; j < 2+rand.Intn(4); j++ {
			// Due dates always land before the event date so seeded data
			// satisfies the scheduling rules.
			due := event.Date.AddDate(0, 0, -(1 + rand.Intn(7)))
			task := models.Task{
				Description: taskTemplates[rand.Intn(len(taskTemplates))],
				DueDate:     &due,
				Completed:   rand.Intn(3) == 0,
				EventID:     &event.ID,
			}
			if rand.Intn(4) > 0 {
				assignee := users[rand.Intn(len(users))]
				task.AssignedToID = &assignee.ID
			}
			if err := db.Create(&task).Error; err != nil {
				return created, err
			}
			created++
		}
	}
	return created, nil
}
