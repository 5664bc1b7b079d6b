package ideas

import (
	"context"
	"encoding/json"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ideahub/ideas-hub/internal/auth"
	"github.com/ideahub/ideas-hub/internal/brainstorm"
	"github.com/ideahub/ideas-hub/internal/logging"
	"github.com/ideahub/ideas-hub/internal/models"
	"github.com/ideahub/ideas-hub/internal/store"
	"github.com/ideahub/ideas-hub/internal/youtube"
)

// testTemplates returns a minimal template set with markers the assertions
// can look for, standing in for the real pages.
func testTemplates() *template.Template {
	return template.Must(template.New("").Parse(`
{{define "index.tmpl"}}INDEX{{range .Rows}}[{{.Idea.Title}}|{{.Idea.Status}}{{range .RecentVideos}}|{{.VideoID}}{{end}}]{{end}}{{end}}
{{define "edit.tmpl"}}EDIT {{.Idea.Title}}{{end}}
{{define "dashboard.tmpl"}}{{if .NoChannel}}DASH no_channel=true{{else}}DASH no_channel=false channel={{with .ChannelStats}}{{.Title}}{{end}} videos={{len .RecentVideos}}{{end}}{{end}}
{{define "global_dashboard.tmpl"}}GLOBAL{{range $s, $c := .StatusCounts}} {{$s}}={{$c}}{{end}} channels={{len .ChannelStats}}{{end}}
{{define "brainstorm.tmpl"}}BRAINSTORM err={{.Error}}{{end}}
{{define "error.tmpl"}}ERROR {{.Message}}{{end}}
`))
}

type testEnv struct {
	router   *gin.Engine
	db       *gorm.DB
	ideas    store.IdeaStore
	alice    *models.User
	bob      *models.User
	enqueued []uint
}

// fakeYouTube serves canned YouTube API responses. A nil handler map entry
// falls through to 404.
func fakeYouTube(t *testing.T, channelID string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/search" && r.URL.Query().Get("type") == "channel":
			items := []map[string]any{}
			if channelID != "" {
				items = append(items, map[string]any{"id": map[string]any{"channelId": channelID}})
			}
			json.NewEncoder(w).Encode(map[string]any{"items": items})
		case r.URL.Path == "/search" && r.URL.Query().Get("type") == "video":
			json.NewEncoder(w).Encode(map[string]any{
				"items": []map[string]any{
					{"id": map[string]any{"videoId": "v1"}, "snippet": map[string]any{"title": "Upload"}},
				},
			})
		case r.URL.Path == "/channels":
			json.NewEncoder(w).Encode(map[string]any{
				"items": []map[string]any{
					{
						"snippet":    map[string]any{"title": "Acme Channel"},
						"statistics": map[string]any{"subscriberCount": "10"},
					},
				},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "not found"}})
		}
	}))
}

// setupEnv wires the handlers onto a test router. The auth middleware is
// replaced by one stamping the given user as the current identity.
func setupEnv(t *testing.T, ytBaseURL string) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Idea{}, &models.BrainstormSession{}))

	env := &testEnv{db: db}

	env.alice = &models.User{Username: "alice", AuthMethod: models.AuthMethodLocal}
	require.NoError(t, db.Create(env.alice).Error)
	env.bob = &models.User{Username: "bob", AuthMethod: models.AuthMethodLocal}
	require.NoError(t, db.Create(env.bob).Error)

	logger := logging.NewLogger("error", "text")
	env.ideas = store.NewIdeaStore(db)
	brainstorms := store.NewBrainstormStore(db)

	apiKey := "test-key"
	if ytBaseURL == "" {
		apiKey = "" // no upstream configured at all
	}
	yt := youtube.NewClient(apiKey, ytBaseURL)

	ai, err := brainstorm.New(context.Background(), "", logger)
	require.NoError(t, err)

	handlers := NewHandlers(env.ideas, brainstorms, yt, ai, logger, func(ideaID, ownerID uint, nameQuery string) error {
		env.enqueued = append(env.enqueued, ideaID)
		return nil
	})

	currentUser := env.alice
	asUser := func(c *gin.Context) {
		c.Set(auth.KeyUserID, currentUser.ID)
		c.Set(auth.KeyUserName, currentUser.Username)
		c.Set(auth.KeyAuthMethod, currentUser.AuthMethod)
	}

	router := gin.New()
	router.SetHTMLTemplate(testTemplates())
	group := router.Group("/", asUser)
	group.GET("/", handlers.List)
	group.POST("/idea", handlers.Create)
	group.POST("/idea/add-from-ia", handlers.CreateFromSuggestion)
	group.GET("/idea/delete/:id", handlers.Delete)
	group.GET("/edit/:id", handlers.ShowEdit)
	group.POST("/edit/update/:id", handlers.Update)
	group.GET("/dashboard/:id", handlers.Dashboard)
	group.GET("/global-dashboard", handlers.GlobalDashboard)
	group.POST("/brainstorm", handlers.HandleBrainstorm)

	// Route variants acting as bob, for ownership tests.
	bobGroup := router.Group("/as-bob", func(c *gin.Context) {
		c.Set(auth.KeyUserID, env.bob.ID)
		c.Set(auth.KeyUserName, env.bob.Username)
		c.Set(auth.KeyAuthMethod, env.bob.AuthMethod)
	})
	bobGroup.GET("/", handlers.List)
	bobGroup.POST("/edit/update/:id", handlers.Update)
	bobGroup.GET("/dashboard/:id", handlers.Dashboard)

	env.router = router
	return env
}

func (env *testEnv) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func (env *testEnv) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func TestCreateValidation(t *testing.T) {
	env := setupEnv(t, "")

	w := env.post("/idea", url.Values{"title": {""}, "description": {"x"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "ERROR")

	w = env.post("/idea", url.Values{"title": {"t"}, "description": {""}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateDefaultsAndRedirect(t *testing.T) {
	env := setupEnv(t, "")

	w := env.post("/idea", url.Values{"title": {"t"}, "description": {"d"}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	ideas, err := env.ideas.List(t.Context(), env.alice.ID, store.IdeaFilter{})
	require.NoError(t, err)
	require.Len(t, ideas, 1)
	assert.Equal(t, "General", ideas[0].Category)
	assert.Equal(t, "Draft", ideas[0].Status)
}

func TestCreateResolvesChannelForYouTubeCategory(t *testing.T) {
	yt := fakeYouTube(t, "UC123")
	defer yt.Close()
	env := setupEnv(t, yt.URL)

	w := env.post("/idea", url.Values{
		"title":       {"Ep1"},
		"description": {"desc"},
		"category":    {"YouTube"},
		"channelName": {"Acme"},
	})
	assert.Equal(t, http.StatusFound, w.Code)

	ideas, err := env.ideas.List(t.Context(), env.alice.ID, store.IdeaFilter{})
	require.NoError(t, err)
	require.Len(t, ideas, 1)
	assert.Equal(t, "UC123", ideas[0].YouTubeChannelID)
	assert.Empty(t, env.enqueued, "successful resolution needs no retry")
}

func TestCreateSkipsResolutionForOtherCategories(t *testing.T) {
	yt := fakeYouTube(t, "UC123")
	defer yt.Close()
	env := setupEnv(t, yt.URL)

	w := env.post("/idea", url.Values{
		"title":       {"Podcast pilot"},
		"description": {"desc"},
		"category":    {"Podcast"},
		"channelName": {"Acme"},
	})
	assert.Equal(t, http.StatusFound, w.Code)

	ideas, err := env.ideas.List(t.Context(), env.alice.ID, store.IdeaFilter{})
	require.NoError(t, err)
	assert.Empty(t, ideas[0].YouTubeChannelID)
}

func TestCreateEnqueuesRetryWhenUpstreamDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()
	env := setupEnv(t, server.URL)

	w := env.post("/idea", url.Values{
		"title":       {"Ep1"},
		"description": {"desc"},
		"category":    {"youtube tutorials"},
		"channelName": {"Acme"},
	})
	assert.Equal(t, http.StatusFound, w.Code, "upstream failure must not block creation")

	ideas, err := env.ideas.List(t.Context(), env.alice.ID, store.IdeaFilter{})
	require.NoError(t, err)
	require.Len(t, ideas, 1)
	assert.Empty(t, ideas[0].YouTubeChannelID)
	assert.Equal(t, []uint{ideas[0].ID}, env.enqueued)
}

func TestCreateFromSuggestionSetsFlag(t *testing.T) {
	env := setupEnv(t, "")

	w := env.post("/idea/add-from-ia", url.Values{
		"title":       {"AI idea"},
		"description": {"from a suggestion"},
		"category":    {"YouTube"},
	})
	assert.Equal(t, http.StatusFound, w.Code)

	ideas, err := env.ideas.List(t.Context(), env.alice.ID, store.IdeaFilter{})
	require.NoError(t, err)
	require.Len(t, ideas, 1)
	assert.True(t, ideas[0].IsAIGenerated)
	assert.Empty(t, ideas[0].YouTubeChannelID, "channel resolution skipped")
}

func TestListFiltersAndIsolation(t *testing.T) {
	env := setupEnv(t, "")
	ctx := t.Context()

	seed := []models.Idea{
		{UserID: env.alice.ID, Title: "Cat video", Description: "cats", Status: "Draft"},
		{UserID: env.alice.ID, Title: "Dog video", Description: "dogs", Status: "Published"},
		{UserID: env.bob.ID, Title: "Bob secret", Description: "hidden", Status: "Draft"},
	}
	for i := range seed {
		require.NoError(t, env.ideas.Create(ctx, &seed[i]))
	}

	t.Run("alice never sees bob's ideas", func(t *testing.T) {
		w := env.get("/")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "Bob secret")
		assert.Contains(t, w.Body.String(), "Cat video")
	})

	t.Run("status filter", func(t *testing.T) {
		w := env.get("/?status=Draft")
		body := w.Body.String()
		assert.Contains(t, body, "Cat video")
		assert.NotContains(t, body, "Dog video")
	})

	t.Run("search filter", func(t *testing.T) {
		w := env.get("/?search=CAT")
		body := w.Body.String()
		assert.Contains(t, body, "Cat video")
		assert.NotContains(t, body, "Dog video")
	})
}

func TestUpdateOwnershipMerged(t *testing.T) {
	env := setupEnv(t, "")
	ctx := t.Context()

	idea := models.Idea{UserID: env.alice.ID, Title: "original", Description: "d"}
	require.NoError(t, env.ideas.Create(ctx, &idea))

	form := url.Values{"title": {"hijacked"}, "description": {"x"}}

	w := env.post("/as-bob/edit/update/"+itoa(idea.ID), form)
	assert.Equal(t, http.StatusNotFound, w.Code, "not-owned is indistinguishable from missing")

	stored, err := env.ideas.Get(ctx, idea.ID, env.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", stored.Title, "document unchanged")
}

func TestDeleteIdempotentInEffect(t *testing.T) {
	env := setupEnv(t, "")
	ctx := t.Context()

	idea := models.Idea{UserID: env.alice.ID, Title: "t", Description: "d"}
	require.NoError(t, env.ideas.Create(ctx, &idea))

	w := env.get("/idea/delete/" + itoa(idea.ID))
	assert.Equal(t, http.StatusFound, w.Code)

	w = env.get("/idea/delete/" + itoa(idea.ID))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDashboard(t *testing.T) {
	t.Run("no channel on record renders a message, not an error", func(t *testing.T) {
		env := setupEnv(t, "")
		idea := models.Idea{UserID: env.alice.ID, Title: "t", Description: "d"}
		require.NoError(t, env.ideas.Create(t.Context(), &idea))

		w := env.get("/dashboard/" + itoa(idea.ID))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "no_channel=true")
	})

	t.Run("unreachable upstream degrades to empty sections", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()
		env := setupEnv(t, server.URL)

		idea := models.Idea{UserID: env.alice.ID, Title: "t", Description: "d", YouTubeChannelID: "UC123"}
		require.NoError(t, env.ideas.Create(t.Context(), &idea))

		w := env.get("/dashboard/" + itoa(idea.ID))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "channel= videos=0")
	})

	t.Run("healthy upstream fills sections", func(t *testing.T) {
		yt := fakeYouTube(t, "UC123")
		defer yt.Close()
		env := setupEnv(t, yt.URL)

		idea := models.Idea{UserID: env.alice.ID, Title: "t", Description: "d", YouTubeChannelID: "UC123"}
		require.NoError(t, env.ideas.Create(t.Context(), &idea))

		w := env.get("/dashboard/" + itoa(idea.ID))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Acme Channel")
	})

	t.Run("not owned merges into not found", func(t *testing.T) {
		env := setupEnv(t, "")
		idea := models.Idea{UserID: env.alice.ID, Title: "t", Description: "d"}
		require.NoError(t, env.ideas.Create(t.Context(), &idea))

		w := env.get("/as-bob/dashboard/" + itoa(idea.ID))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestGlobalDashboard(t *testing.T) {
	yt := fakeYouTube(t, "UC123")
	defer yt.Close()
	env := setupEnv(t, yt.URL)
	ctx := t.Context()

	seed := []models.Idea{
		{UserID: env.alice.ID, Title: "a", Description: "d", Status: "Draft", YouTubeChannelID: "UC1"},
		{UserID: env.alice.ID, Title: "b", Description: "d", Status: "Draft", YouTubeChannelID: "UC1"},
		{UserID: env.alice.ID, Title: "c", Description: "d", Status: "Published"},
	}
	for i := range seed {
		require.NoError(t, env.ideas.Create(ctx, &seed[i]))
	}

	w := env.get("/global-dashboard")
	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Draft=2")
	assert.Contains(t, body, "Published=1")
	assert.Contains(t, body, "channels=1")
}

func TestBrainstormWithoutAPIKeyShowsError(t *testing.T) {
	env := setupEnv(t, "")

	w := env.post("/brainstorm", url.Values{"keywords": {"cats"}})
	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "BRAINSTORM")
	assert.Contains(t, body, "not configured")
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
