package server

import (
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

type publicStats struct {
	TotalUsers int64  `json:"total_users"`
	TotalPosts int64  `json:"total_posts"`
	APIVersion string `json:"api_version"`
}

// PublicView handles GET /api/public - open to everyone, serves aggregate
// counts cache-aside so the landing page never hammers the database.
func (s *Server) PublicView(c *fiber.Ctx) error {
	var stats publicStats
	err := cache.Aside(c.Context(), cache.StatsKey, &stats, cache.StatsTTL, func() error {
		users, err := s.userRepo.Count(c.Context())
		if err != nil {
			return err
		}
		posts, err := s.postRepo.Count(c.Context())
		if err != nil {
			return err
		}
		stats = publicStats{
			TotalUsers: users,
			TotalPosts: posts,
			APIVersion: "1.0.0",
		}
		return nil
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(fiber.Map{
		"message":   "This is a public endpoint accessible to everyone!",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"status":    "success",
		"data":      stats,
	})
}

// ProtectedView handles GET /api/protected - requires authentication and
// echoes back the caller's profile.
func (s *Server) ProtectedView(c *fiber.Ctx) error {
	userID := currentUserID(c)

	user, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	profile, err := s.userRepo.GetProfile(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	var telegramUsername *string
	if profile != nil {
		telegramUsername = profile.TelegramUsername
	}

	return c.JSON(fiber.Map{
		"message": "Hello " + user.Username + "! This is a protected endpoint.",
		"user_info": fiber.Map{
			"username":          user.Username,
			"email":             user.Email,
			"telegram_username": telegramUsername,
			"created_at":        user.CreatedAt,
		},
		"permissions": "authenticated_user",
		"status":      "success",
	})
}
