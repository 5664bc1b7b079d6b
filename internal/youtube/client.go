// Package youtube is a thin read-only client for the YouTube Data API v3.
//
// It powers idea enrichment: channel lookup, recent uploads, channel and
// video statistics. Callers treat every failure as "no data" — the page is
// rendered with empty sections and the cause goes to the log.
package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://www.googleapis.com/youtube/v3"

// ErrNoAPIKey is returned when the client was constructed without an API key.
var ErrNoAPIKey = errors.New("youtube: API key not configured")

// Video is one recent upload of a channel.
type Video struct {
	VideoID      string
	Title        string
	ThumbnailURL string
}

// ChannelStats holds display-ready channel statistics. The count fields stay
// strings: the API returns them as strings and they are shown verbatim.
type ChannelStats struct {
	Title           string
	ThumbnailURL    string
	SubscriberCount string
	ViewCount       string
	VideoCount      string
}

// VideoStats holds display-ready statistics for a single video.
type VideoStats struct {
	Title        string
	PublishedAt  string
	ViewCount    string
	LikeCount    string
	CommentCount string
}

// Client issues read-only requests against the YouTube Data API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a YouTube Data API client. baseURL overrides the Google
// endpoint, used by tests; pass "" for the real API.
func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values, result any) error {
	if c.apiKey == "" {
		return ErrNoAPIKey
	}

	params.Set("key", c.apiKey)
	apiURL := c.baseURL + endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error.Message != "" {
			return fmt.Errorf("youtube API error (status %d): %s", resp.StatusCode, errResp.Error.Message)
		}
		return fmt.Errorf("youtube API error: status %d", resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

type searchThumbnails struct {
	Default struct {
		URL string `json:"url"`
	} `json:"default"`
}

// ResolveChannelID searches for a channel by name and returns the id of the
// best match. Returns "" with a nil error when nothing matched.
func (c *Client) ResolveChannelID(ctx context.Context, nameQuery string) (string, error) {
	var resp struct {
		Items []struct {
			ID struct {
				ChannelID string `json:"channelId"`
			} `json:"id"`
		} `json:"items"`
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("type", "channel")
	params.Set("maxResults", "1")
	params.Set("q", nameQuery)

	if err := c.doRequest(ctx, "/search", params, &resp); err != nil {
		return "", err
	}
	if len(resp.Items) == 0 {
		return "", nil
	}
	return resp.Items[0].ID.ChannelID, nil
}

// RecentVideos returns the channel's newest uploads, newest first.
// limit defaults to 3 when zero or negative.
func (c *Client) RecentVideos(ctx context.Context, channelID string, limit int) ([]Video, error) {
	if channelID == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 3
	}

	var resp struct {
		Items []struct {
			ID struct {
				VideoID string `json:"videoId"`
			} `json:"id"`
			Snippet struct {
				Title      string           `json:"title"`
				Thumbnails searchThumbnails `json:"thumbnails"`
			} `json:"snippet"`
		} `json:"items"`
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("type", "video")
	params.Set("order", "date")
	params.Set("maxResults", fmt.Sprintf("%d", limit))
	params.Set("channelId", channelID)

	if err := c.doRequest(ctx, "/search", params, &resp); err != nil {
		return nil, err
	}

	videos := make([]Video, 0, len(resp.Items))
	for _, item := range resp.Items {
		videos = append(videos, Video{
			VideoID:      item.ID.VideoID,
			Title:        item.Snippet.Title,
			ThumbnailURL: item.Snippet.Thumbnails.Default.URL,
		})
	}
	return videos, nil
}

// ChannelStatistics fetches title, thumbnail and the public counters for a
// channel. Returns the zero value when the channel id is unknown upstream.
func (c *Client) ChannelStatistics(ctx context.Context, channelID string) (ChannelStats, error) {
	if channelID == "" {
		return ChannelStats{}, nil
	}

	var resp struct {
		Items []struct {
			Snippet struct {
				Title      string           `json:"title"`
				Thumbnails searchThumbnails `json:"thumbnails"`
			} `json:"snippet"`
			Statistics struct {
				SubscriberCount string `json:"subscriberCount"`
				ViewCount       string `json:"viewCount"`
				VideoCount      string `json:"videoCount"`
			} `json:"statistics"`
		} `json:"items"`
	}

	params := url.Values{}
	params.Set("part", "snippet,statistics")
	params.Set("id", channelID)

	if err := c.doRequest(ctx, "/channels", params, &resp); err != nil {
		return ChannelStats{}, err
	}
	if len(resp.Items) == 0 {
		return ChannelStats{}, nil
	}

	item := resp.Items[0]
	return ChannelStats{
		Title:           item.Snippet.Title,
		ThumbnailURL:    item.Snippet.Thumbnails.Default.URL,
		SubscriberCount: item.Statistics.SubscriberCount,
		ViewCount:       item.Statistics.ViewCount,
		VideoCount:      item.Statistics.VideoCount,
	}, nil
}

// VideoStatistics fetches title, publish date and the public counters for a
// video. Like and comment counts default to "0" when the API omits them.
func (c *Client) VideoStatistics(ctx context.Context, videoID string) (VideoStats, error) {
	if videoID == "" {
		return VideoStats{}, nil
	}

	var resp struct {
		Items []struct {
			Snippet struct {
				Title       string `json:"title"`
				PublishedAt string `json:"publishedAt"`
			} `json:"snippet"`
			Statistics struct {
				ViewCount    string `json:"viewCount"`
				LikeCount    string `json:"likeCount"`
				CommentCount string `json:"commentCount"`
			} `json:"statistics"`
		} `json:"items"`
	}

	params := url.Values{}
	params.Set("part", "snippet,statistics")
	params.Set("id", videoID)

	if err := c.doRequest(ctx, "/videos", params, &resp); err != nil {
		return VideoStats{}, err
	}
	if len(resp.Items) == 0 {
		return VideoStats{}, nil
	}

	item := resp.Items[0]
	stats := VideoStats{
		Title:        item.Snippet.Title,
		PublishedAt:  item.Snippet.PublishedAt,
		ViewCount:    item.Statistics.ViewCount,
		LikeCount:    item.Statistics.LikeCount,
		CommentCount: item.Statistics.CommentCount,
	}
	if stats.LikeCount == "" {
		stats.LikeCount = "0"
	}
	if stats.CommentCount == "" {
		stats.CommentCount = "0"
	}
	return stats, nil
}
