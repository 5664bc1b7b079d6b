// Package ideas contains the HTTP handlers for the idea CRUD surface, the
// dashboards, and the AI brainstorm page.
package ideas

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/ideahub/ideas-hub/internal/auth"
	"github.com/ideahub/ideas-hub/internal/brainstorm"
	"github.com/ideahub/ideas-hub/internal/models"
	"github.com/ideahub/ideas-hub/internal/store"
	"github.com/ideahub/ideas-hub/internal/youtube"
)

// Handlers bundles the dependencies of the idea routes.
type Handlers struct {
	ideas       store.IdeaStore
	brainstorms store.BrainstormStore
	yt          *youtube.Client
	ai          *brainstorm.Service
	logger      *slog.Logger

	// enqueueResolve schedules a background channel re-resolution; nil when
	// no task queue is available.
	enqueueResolve func(ideaID, ownerID uint, nameQuery string) error
}

// NewHandlers creates the idea handler set.
func NewHandlers(
	ideas store.IdeaStore,
	brainstorms store.BrainstormStore,
	yt *youtube.Client,
	ai *brainstorm.Service,
	logger *slog.Logger,
	enqueueResolve func(ideaID, ownerID uint, nameQuery string) error,
) *Handlers {
	return &Handlers{
		ideas:          ideas,
		brainstorms:    brainstorms,
		yt:             yt,
		ai:             ai,
		logger:         logger,
		enqueueResolve: enqueueResolve,
	}
}

// ideaRow is one list entry with its enrichment.
type ideaRow struct {
	Idea         models.Idea
	RecentVideos []youtube.Video
}

// List renders the idea list, optionally filtered by the search and status
// query parameters, each idea enriched with its channel's recent uploads.
func (h *Handlers) List(c *gin.Context) {
	identity := auth.CurrentIdentity(c)

	filter := store.IdeaFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
	}

	ideas, err := h.ideas.List(c.Request.Context(), identity.UserID, filter)
	if err != nil {
		h.logger.Error("Idea list failed", "error", err)
		models.RenderError(c, models.NewInternalError(err))
		return
	}

	rows := h.enrichList(c, ideas)

	c.HTML(http.StatusOK, "index.tmpl", gin.H{
		"PageTitle": "Ideas Hub",
		"UserName":  identity.Name,
		"Rows":      rows,
		"Search":    filter.Search,
		"Status":    filter.Status,
	})
}

// Create handles the add-idea form. When the category mentions YouTube and a
// channel name was supplied, the channel id is resolved before storing.
func (h *Handlers) Create(c *gin.Context) {
	identity := auth.CurrentIdentity(c)

	title := strings.TrimSpace(c.PostForm("title"))
	description := strings.TrimSpace(c.PostForm("description"))
	category := strings.TrimSpace(c.PostForm("category"))
	channelName := strings.TrimSpace(c.PostForm("channelName"))

	if title == "" || description == "" {
		models.RenderError(c, models.NewValidationError("Title and description are required"))
		return
	}

	idea := models.Idea{
		UserID:      identity.UserID,
		Title:       title,
		Description: description,
		Category:    category,
	}

	wantsChannel := strings.Contains(strings.ToLower(category), "youtube") && channelName != ""
	retryResolve := false
	if wantsChannel {
		channelID, err := h.yt.ResolveChannelID(c.Request.Context(), channelName)
		switch {
		case err != nil:
			// Upstream failure, not "no such channel": store without the id
			// and retry in the background when a queue is available.
			h.logger.Warn("Channel resolution unavailable", "channel", channelName, "error", err)
			retryResolve = true
		case channelID == "":
			h.logger.Info("Channel not found", "channel", channelName)
		default:
			idea.YouTubeChannelID = channelID
		}
	}

	if err := h.ideas.Create(c.Request.Context(), &idea); err != nil {
		h.logger.Error("Idea creation failed", "error", err)
		models.RenderError(c, models.NewInternalError(err))
		return
	}

	if retryResolve && h.enqueueResolve != nil {
		if err := h.enqueueResolve(idea.ID, identity.UserID, channelName); err != nil {
			h.logger.Warn("Failed to enqueue channel resolution", "idea_id", idea.ID, "error", err)
		}
	}

	c.Redirect(http.StatusFound, "/")
}

// CreateFromSuggestion stores an idea taken from an AI suggestion. Channel
// resolution is skipped and the idea is flagged as AI generated.
func (h *Handlers) CreateFromSuggestion(c *gin.Context) {
	identity := auth.CurrentIdentity(c)

	title := strings.TrimSpace(c.PostForm("title"))
	description := strings.TrimSpace(c.PostForm("description"))
	category := strings.TrimSpace(c.PostForm("category"))

	if title == "" || description == "" {
		models.RenderError(c, models.NewValidationError("Title and description are required"))
		return
	}

	idea := models.Idea{
		UserID:        identity.UserID,
		Title:         title,
		Description:   description,
		Category:      category,
		IsAIGenerated: true,
	}
	if err := h.ideas.Create(c.Request.Context(), &idea); err != nil {
		h.logger.Error("Idea creation failed", "error", err)
		models.RenderError(c, models.NewInternalError(err))
		return
	}

	c.Redirect(http.StatusFound, "/")
}

// ShowEdit renders the edit form for one idea.
func (h *Handlers) ShowEdit(c *gin.Context) {
	identity := auth.CurrentIdentity(c)

	id, ok := parseID(c)
	if !ok {
		models.RenderError(c, models.NewNotFoundError("Idea"))
		return
	}

	idea, err := h.ideas.Get(c.Request.Context(), id, identity.UserID)
	if err != nil {
		h.renderStoreError(c, err, "Idea")
		return
	}

	// The status set is open-ended text: keep an unknown stored label
	// selectable instead of silently dropping it from the form.
	statuses := []string{"Draft", "In Progress", "Recording", "Editing", "Published"}
	known := false
	for _, s := range statuses {
		if s == idea.Status {
			known = true
			break
		}
	}
	if !known {
		statuses = append(statuses, idea.Status)
	}

	c.HTML(http.StatusOK, "edit.tmpl", gin.H{
		"PageTitle": "Edit idea",
		"UserName":  identity.Name,
		"Idea":      idea,
		"Statuses":  statuses,
	})
}

// Update replaces the editable fields of one idea.
func (h *Handlers) Update(c *gin.Context) {
	identity := auth.CurrentIdentity(c)

	id, ok := parseID(c)
	if !ok {
		models.RenderError(c, models.NewNotFoundError("Idea"))
		return
	}

	title := strings.TrimSpace(c.PostForm("title"))
	description := strings.TrimSpace(c.PostForm("description"))
	if title == "" || description == "" {
		models.RenderError(c, models.NewValidationError("Title and description are required"))
		return
	}

	update := store.IdeaUpdate{
		Title:          title,
		Description:    description,
		Category:       strings.TrimSpace(c.PostForm("category")),
		Status:         strings.TrimSpace(c.PostForm("status")),
		YouTubeVideoID: strings.TrimSpace(c.PostForm("videoId")),
	}

	if err := h.ideas.Replace(c.Request.Context(), id, identity.UserID, update); err != nil {
		h.renderStoreError(c, err, "Idea")
		return
	}

	c.Redirect(http.StatusFound, "/")
}

// Delete removes one idea. Deleting an already-deleted idea is NotFound.
func (h *Handlers) Delete(c *gin.Context) {
	identity := auth.CurrentIdentity(c)

	id, ok := parseID(c)
	if !ok {
		models.RenderError(c, models.NewNotFoundError("Idea"))
		return
	}

	if err := h.ideas.Delete(c.Request.Context(), id, identity.UserID); err != nil {
		h.renderStoreError(c, err, "Idea")
		return
	}

	c.Redirect(http.StatusFound, "/")
}

// Dashboard renders the per-idea dashboard: channel statistics, recent
// uploads, and video statistics when a video id is on record. The three
// fetches run concurrently and each failure degrades to an empty section.
func (h *Handlers) Dashboard(c *gin.Context) {
	identity := auth.CurrentIdentity(c)

	id, ok := parseID(c)
	if !ok {
		models.RenderError(c, models.NewNotFoundError("Idea"))
		return
	}

	idea, err := h.ideas.Get(c.Request.Context(), id, identity.UserID)
	if err != nil {
		h.renderStoreError(c, err, "Idea")
		return
	}

	if idea.YouTubeChannelID == "" && idea.YouTubeVideoID == "" {
		c.HTML(http.StatusOK, "dashboard.tmpl", gin.H{
			"PageTitle": idea.Title,
			"UserName":  identity.Name,
			"Idea":      idea,
			"NoChannel": true,
		})
		return
	}

	data := h.enrichDashboard(c, idea)

	c.HTML(http.StatusOK, "dashboard.tmpl", gin.H{
		"PageTitle":    idea.Title,
		"UserName":     identity.Name,
		"Idea":         idea,
		"ChannelStats": data.ChannelStats,
		"RecentVideos": data.RecentVideos,
		"VideoStats":   data.VideoStats,
		"HasVideo":     idea.YouTubeVideoID != "",
	})
}

// GlobalDashboard tallies ideas per status and shows statistics for every
// distinct channel across the caller's ideas.
func (h *Handlers) GlobalDashboard(c *gin.Context) {
	identity := auth.CurrentIdentity(c)
	ctx := c.Request.Context()

	counts, err := h.ideas.CountByStatus(ctx, identity.UserID)
	if err != nil {
		h.logger.Error("Status tally failed", "error", err)
		models.RenderError(c, models.NewInternalError(err))
		return
	}

	channelIDs, err := h.ideas.DistinctChannelIDs(ctx, identity.UserID)
	if err != nil {
		h.logger.Error("Channel id listing failed", "error", err)
		models.RenderError(c, models.NewInternalError(err))
		return
	}

	channelStats := h.enrichChannels(c, channelIDs)

	c.HTML(http.StatusOK, "global_dashboard.tmpl", gin.H{
		"PageTitle":    "Global dashboard",
		"UserName":     identity.Name,
		"StatusCounts": counts,
		"ChannelStats": channelStats,
	})
}

// ShowBrainstorm renders the brainstorm form with the caller's recent
// sessions.
func (h *Handlers) ShowBrainstorm(c *gin.Context) {
	identity := auth.CurrentIdentity(c)

	recent, err := h.brainstorms.Recent(c.Request.Context(), identity.UserID, 5)
	if err != nil {
		h.logger.Warn("Failed to load brainstorm history", "error", err)
	}

	c.HTML(http.StatusOK, "brainstorm.tmpl", gin.H{
		"PageTitle": "Brainstorm",
		"UserName":  identity.Name,
		"Keywords":  "",
		"Category":  "",
		"Recent":    recent,
	})
}

// HandleBrainstorm runs one AI brainstorming call and renders the result.
// A failed call surfaces its message on the page instead of an empty section.
func (h *Handlers) HandleBrainstorm(c *gin.Context) {
	identity := auth.CurrentIdentity(c)

	keywords := strings.TrimSpace(c.PostForm("keywords"))
	category := strings.TrimSpace(c.PostForm("category"))
	if keywords == "" {
		models.RenderError(c, models.NewValidationError("Keywords are required"))
		return
	}

	result := h.ai.GenerateSuggestions(c.Request.Context(), keywords, category)

	recent, err := h.brainstorms.Recent(c.Request.Context(), identity.UserID, 5)
	if err != nil {
		h.logger.Warn("Failed to load brainstorm history", "error", err)
	}

	if result.Err != "" {
		c.HTML(http.StatusOK, "brainstorm.tmpl", gin.H{
			"PageTitle": "Brainstorm",
			"UserName":  identity.Name,
			"Keywords":  keywords,
			"Category":  category,
			"Error":     result.Err,
			"Recent":    recent,
		})
		return
	}

	if raw, err := json.Marshal(result.Suggestions); err == nil {
		session := models.BrainstormSession{
			UserID:      identity.UserID,
			Keywords:    keywords,
			Category:    category,
			Suggestions: datatypes.JSON(raw),
		}
		if err := h.brainstorms.Save(c.Request.Context(), &session); err != nil {
			h.logger.Warn("Failed to save brainstorm session", "error", err)
		}
	}

	c.HTML(http.StatusOK, "brainstorm.tmpl", gin.H{
		"PageTitle":   "Brainstorm",
		"UserName":    identity.Name,
		"Keywords":    keywords,
		"Category":    category,
		"Suggestions": result.Suggestions,
		"Recent":      recent,
	})
}

func (h *Handlers) renderStoreError(c *gin.Context, err error, resource string) {
	if errors.Is(err, store.ErrNotFound) {
		models.RenderError(c, models.NewNotFoundError(resource))
		return
	}
	h.logger.Error("Store operation failed", "resource", resource, "error", err)
	models.RenderError(c, models.NewInternalError(err))
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}
