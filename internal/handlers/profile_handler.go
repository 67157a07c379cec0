package handlers

import (
	"errors"
	"log"
	"net/http"

	"quizhub-service/internal/middleware"
	"quizhub-service/internal/models"
	"quizhub-service/internal/service"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	service *service.StatsService
}

func NewProfileHandler(statsService *service.StatsService) *ProfileHandler {
	return &ProfileHandler{service: statsService}
}

// statsView adds the display form of time played to the stored stats.
func statsView(stats models.ProfileStats) gin.H {
	return gin.H{
		"level":               stats.Level,
		"quizzes_taken":       stats.QuizzesTaken,
		"total_score":         stats.TotalScore,
		"win_rate":            stats.WinRate,
		"current_streak":      stats.CurrentStreak,
		"highest_streak":      stats.HighestStreak,
		"completion_rate":     stats.CompletionRate,
		"time_played":         stats.TimePlayed.Seconds(),
		"time_played_display": stats.TimePlayedDisplay(),
		"best_category":       stats.BestCategory,
		"weakest_category":    stats.WeakestCategory,
	}
}

// MyStats returns the caller's own statistics.
// GET /protected/profile/me/stats
func (h *ProfileHandler) MyStats(c *gin.Context) {
	h.renderStats(c, middleware.UserID(c))
}

// UserStats returns another user's public statistics.
// GET /public/profile/:userId/stats
func (h *ProfileHandler) UserStats(c *gin.Context) {
	h.renderStats(c, c.Param("userId"))
}

func (h *ProfileHandler) renderStats(c *gin.Context, userID string) {
	profile, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found."})
			return
		}
		log.Printf("Failed to load profile for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":  profile.UserID,
		"username": profile.Username,
		"stats":    statsView(profile.Stats),
	})
}
