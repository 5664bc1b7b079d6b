package ideas

import (
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/ideahub/ideas-hub/internal/models"
	"github.com/ideahub/ideas-hub/internal/youtube"
)

// dashboardData holds the enrichment branches of the per-idea dashboard.
type dashboardData struct {
	ChannelStats youtube.ChannelStats
	RecentVideos []youtube.Video
	VideoStats   youtube.VideoStats
}

// enrichList fans out one recent-videos fetch per idea that has a channel on
// record. Each branch swallows its own failure so one slow or broken lookup
// never fails the page; ideas without a channel get an empty section.
func (h *Handlers) enrichList(c *gin.Context, ideas []models.Idea) []ideaRow {
	ctx := c.Request.Context()
	rows := make([]ideaRow, len(ideas))

	var wg sync.WaitGroup
	for i, idea := range ideas {
		rows[i].Idea = idea
		if idea.YouTubeChannelID == "" {
			continue
		}

		wg.Add(1)
		go func(i int, channelID string) {
			defer wg.Done()
			videos, err := h.yt.RecentVideos(ctx, channelID, 3)
			if err != nil {
				h.logger.Warn("Recent videos fetch failed", "channel_id", channelID, "error", err)
				return
			}
			rows[i].RecentVideos = videos
		}(i, idea.YouTubeChannelID)
	}
	wg.Wait()

	return rows
}

// enrichDashboard fetches channel statistics, recent uploads, and video
// statistics concurrently. Branches write disjoint fields and degrade to
// zero values on failure.
func (h *Handlers) enrichDashboard(c *gin.Context, idea *models.Idea) dashboardData {
	ctx := c.Request.Context()
	var data dashboardData

	var wg sync.WaitGroup

	if idea.YouTubeChannelID != "" {
		wg.Add(2)
		go func() {
			defer wg.Done()
			stats, err := h.yt.ChannelStatistics(ctx, idea.YouTubeChannelID)
			if err != nil {
				h.logger.Warn("Channel statistics fetch failed", "channel_id", idea.YouTubeChannelID, "error", err)
				return
			}
			data.ChannelStats = stats
		}()
		go func() {
			defer wg.Done()
			videos, err := h.yt.RecentVideos(ctx, idea.YouTubeChannelID, 3)
			if err != nil {
				h.logger.Warn("Recent videos fetch failed", "channel_id", idea.YouTubeChannelID, "error", err)
				return
			}
			data.RecentVideos = videos
		}()
	}

	if idea.YouTubeVideoID != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stats, err := h.yt.VideoStatistics(ctx, idea.YouTubeVideoID)
			if err != nil {
				h.logger.Warn("Video statistics fetch failed", "video_id", idea.YouTubeVideoID, "error", err)
				return
			}
			data.VideoStats = stats
		}()
	}

	wg.Wait()
	return data
}

// enrichChannels fetches statistics for each distinct channel in parallel.
// Failed lookups are dropped from the result rather than failing the page.
func (h *Handlers) enrichChannels(c *gin.Context, channelIDs []string) map[string]youtube.ChannelStats {
	ctx := c.Request.Context()

	var mu sync.Mutex
	stats := make(map[string]youtube.ChannelStats, len(channelIDs))

	var wg sync.WaitGroup
	for _, channelID := range channelIDs {
		wg.Add(1)
		go func(channelID string) {
			defer wg.Done()
			s, err := h.yt.ChannelStatistics(ctx, channelID)
			if err != nil {
				h.logger.Warn("Channel statistics fetch failed", "channel_id", channelID, "error", err)
				return
			}
			mu.Lock()
			stats[channelID] = s
			mu.Unlock()
		}(channelID)
	}
	wg.Wait()

	return stats
}
