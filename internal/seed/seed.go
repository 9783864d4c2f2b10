// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"inkwell/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configures a seeding run.
type Options struct {
	NumUsers         int
	NumPosts         int
	NumTelegramUsers int
	ShouldClean      bool
}

// Seeder populates the database with generated data.
type Seeder struct {
	db   *gorm.DB
	rand *rand.Rand
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db:   db,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll removes all seeded rows. Order matters for foreign keys.
func (s *Seeder) ClearAll() error {
	for _, model := range []any{
		&models.Post{},
		&models.TelegramUser{},
		&models.AuthToken{},
		&models.Profile{},
		&models.User{},
	} {
		if err := s.db.Unscoped().Where("1 = 1").Delete(model).Error; err != nil {
			return fmt.Errorf("clearing %T: %w", model, err)
		}
	}
	slog.Info("database cleared")
	return nil
}

// Run executes a full seeding pass.
func (s *Seeder) Run(opts Options) error {
	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return err
		}
	}

	users, err := s.createUsers(opts.NumUsers)
	if err != nil {
		return err
	}
	if err := s.createPosts(users, opts.NumPosts); err != nil {
		return err
	}
	if err := s.createTelegramUsers(users, opts.NumTelegramUsers); err != nil {
		return err
	}

	slog.Info("seeding complete",
		"users", opts.NumUsers,
		"posts", opts.NumPosts,
		"telegram_users", opts.NumTelegramUsers,
	)
	return nil
}

// createUsers inserts users with profiles. Every seeded account shares the
// password "password123" so dev logins are predictable.
func (s *Seeder) createUsers(n int) ([]models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, n)
	for i := 0; i < n; i++ {
		username := fmt.Sprintf("%s%d", gofakeit.Username(), i)
		user := models.User{
			Username:  username,
			Email:     fmt.Sprintf("%s@%s", username, gofakeit.DomainName()),
			Password:  string(hash),
			FirstName: gofakeit.FirstName(),
			LastName:  gofakeit.LastName(),
			CreatedAt: s.pastTime(180),
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("creating user %q: %w", username, err)
		}
		if err := s.db.Create(&models.Profile{UserID: user.ID}).Error; err != nil {
			return nil, fmt.Errorf("creating profile for %q: %w", username, err)
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Seeder) createPosts(users []models.User, n int) error {
	if len(users) == 0 {
		return nil
	}
	for i := 0; i < n; i++ {
		owner := users[s.rand.Intn(len(users))]
		post := models.Post{
			Title:     gofakeit.Sentence(5),
			Content:   gofakeit.Paragraph(1, 3, 5, "\n"),
			UserID:    owner.ID,
			CreatedAt: s.pastTime(90),
		}
		if err := s.db.Create(&post).Error; err != nil {
			return fmt.Errorf("creating post: %w", err)
		}
	}
	return nil
}

// createTelegramUsers seeds chat identities; roughly half get linked to a
// seeded account with the handle mirrored to the profile.
func (s *Seeder) createTelegramUsers(users []models.User, n int) error {
	for i := 0; i < n; i++ {
		tu := models.TelegramUser{
			TelegramID: int64(100000 + i),
			Username:   gofakeit.Username(),
			FirstName:  gofakeit.FirstName(),
			LastName:   gofakeit.LastName(),
			IsActive:   true,
		}

		if len(users) > 0 && i%2 == 0 {
			account := users[s.rand.Intn(len(users))]
			tu.Username = account.Username
			tu.UserID = &account.ID
		}

		if err := s.db.Create(&tu).Error; err != nil {
			return fmt.Errorf("creating telegram user: %w", err)
		}

		if tu.UserID != nil {
			handle := tu.Username
			err := s.db.Model(&models.Profile{}).
				Where("user_id = ?", *tu.UserID).
				Update("telegram_username", handle).Error
			if err != nil {
				return fmt.Errorf("linking profile: %w", err)
			}
		}
	}
	return nil
}

// pastTime returns a random time within the last maxDays days.
func (s *Seeder) pastTime(maxDays int) time.Time {
	back := time.Duration(s.rand.Intn(maxDays*24*60)) * time.Minute
	return time.Now().Add(-back)
}
