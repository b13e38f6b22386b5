// Package handlers – mini-app API
//
// The mini app lists the published catalog and shows aggregate stats. Both
// endpoints are read-only and unauthenticated; the content itself stays
// behind the membership gate, since the list only exposes deep links that
// route back through the bot.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cineflix/videogate-bot/internal/bot"
	"github.com/cineflix/videogate-bot/internal/repo"
	"github.com/cineflix/videogate-bot/internal/services"
	"github.com/cineflix/videogate-bot/internal/utils"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Handler bundles the dependencies of all HTTP endpoints.
type Handler struct {
	DB          *gorm.DB
	Dispatcher  *bot.Dispatcher
	Admin       *services.AdminService
	BotUsername string
}

// New constructs a Handler.
func New(db *gorm.DB, d *bot.Dispatcher, admin *services.AdminService, botUsername string) *Handler {
	return &Handler{DB: db, Dispatcher: d, Admin: admin, BotUsername: botUsername}
}

// VideoItem is one catalog entry.
type VideoItem struct {
	ShortCode string    `json:"short_code"`
	Title     string    `json:"title"`
	DeepLink  string    `json:"deep_link"`
	AddedAt   time.Time `json:"added_at"`
}

// VideoPage is the paginated catalog response.
type VideoPage struct {
	Page    int         `json:"page"`
	PerPage int         `json:"per_page"`
	Total   int64       `json:"total"`
	Items   []VideoItem `json:"items"`
}

// ListVideos returns a page of the published catalog, newest first.
// Query parameters: page (1-based), per_page (capped).
func (h *Handler) ListVideos(c *gin.Context) {
	page := utils.AtoiDefault(c.Query("page"), 1)
	if page < 1 {
		page = 1
	}
	perPage := utils.AtoiDefault(c.Query("per_page"), defaultPageSize)
	if perPage < 1 {
		perPage = defaultPageSize
	}
	if perPage > maxPageSize {
		perPage = maxPageSize
	}

	ctx := c.Request.Context()
	total, err := repo.CountVideos(ctx, h.DB)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not list videos")
		return
	}
	videos, err := repo.ListVideosPage(ctx, h.DB, (page-1)*perPage, perPage)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not list videos")
		return
	}

	items := make([]VideoItem, 0, len(videos))
	for _, v := range videos {
		items = append(items, VideoItem{
			ShortCode: v.ShortCode,
			Title:     v.Title,
			DeepLink:  "https://t.me/" + h.BotUsername + "?start=" + v.ShortCode,
			AddedAt:   v.AddedAt,
		})
	}

	ok(c, http.StatusOK, VideoPage{Page: page, PerPage: perPage, Total: total, Items: items})
}

// StatsResponse is the aggregate counters payload.
type StatsResponse struct {
	TotalUsers     int64 `json:"total_users"`
	TotalVideos    int64 `json:"total_videos"`
	ActiveChannels int64 `json:"active_channels"`
	BannedUsers    int64 `json:"banned_users"`
}

// Stats returns aggregate bot statistics for the mini app's about screen.
func (h *Handler) Stats(c *gin.Context) {
	view, err := h.Admin.Stats(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load stats")
		return
	}
	ok(c, http.StatusOK, StatsResponse{
		TotalUsers:     view.TotalUsers,
		TotalVideos:    view.TotalVideos,
		ActiveChannels: view.ActiveChannels,
		BannedUsers:    view.BannedUsers,
	})
}
