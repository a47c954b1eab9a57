package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// ErrSearch wraps any upstream catalog failure: non-success responses and
// malformed or missing result payloads.
var ErrSearch = errors.New("catalog search failed")

const (
	defaultBaseURL   = "https://www.googleapis.com/youtube/v3"
	searchMaxResults = 20
	playlistMaxItems = 50
	watchURLPrefix   = "https://www.youtube.com/watch?v="
)

// YouTubeClient queries the external video catalog. One request per call, no
// retry; overlapping calls are the caller's problem to gate.
type YouTubeClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewYouTubeClient(apiKey, baseURL string) *YouTubeClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &YouTubeClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type ytThumbnails struct {
	Default struct {
		URL string `json:"url"`
	} `json:"default"`
	Medium struct {
		URL string `json:"url"`
	} `json:"medium"`
}

type ytSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string       `json:"title"`
			ChannelTitle string       `json:"channelTitle"`
			Thumbnails   ytThumbnails `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

// Search issues one catalog query and returns candidates sorted by official
// score, descending; equal scores keep their catalog order. Empty or
// whitespace-only queries are a no-op, not an error.
func (c *YouTubeClient) Search(ctx context.Context, query string) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	val := url.Values{}
	val.Set("part", "snippet")
	val.Set("type", "video")
	val.Set("maxResults", fmt.Sprint(searchMaxResults))
	val.Set("q", query)
	val.Set("key", c.apiKey)

	var body ytSearchResponse
	if err := c.get(ctx, "/search", val, &body); err != nil {
		return nil, err
	}
	if body.Items == nil {
		return nil, fmt.Errorf("%w: no results in payload", ErrSearch)
	}

	out := make([]Result, 0, len(body.Items))
	for _, it := range body.Items {
		thumb := it.Snippet.Thumbnails.Medium.URL
		if thumb == "" {
			thumb = it.Snippet.Thumbnails.Default.URL
		}
		out = append(out, Result{
			ID:            it.ID.VideoID,
			Title:         it.Snippet.Title,
			ChannelTitle:  it.Snippet.ChannelTitle,
			ThumbnailURL:  thumb,
			VideoURL:      watchURLPrefix + it.ID.VideoID,
			OfficialScore: OfficialScore(it.Snippet.Title, it.Snippet.ChannelTitle),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OfficialScore > out[j].OfficialScore
	})
	return out, nil
}

type ytPlaylistResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
			ResourceID   struct {
				VideoID string `json:"videoId"`
			} `json:"resourceId"`
		} `json:"snippet"`
	} `json:"items"`
}

// ListPlaylistItems loads the default catalog playlist.
func (c *YouTubeClient) ListPlaylistItems(ctx context.Context, playlistID string) ([]PlaylistItem, error) {
	val := url.Values{}
	val.Set("part", "snippet")
	val.Set("playlistId", playlistID)
	val.Set("maxResults", fmt.Sprint(playlistMaxItems))
	val.Set("key", c.apiKey)

	var body ytPlaylistResponse
	if err := c.get(ctx, "/playlistItems", val, &body); err != nil {
		return nil, err
	}

	out := make([]PlaylistItem, 0, len(body.Items))
	for _, it := range body.Items {
		out = append(out, PlaylistItem{
			ID:           it.ID,
			Title:        it.Snippet.Title,
			ChannelTitle: it.Snippet.ChannelTitle,
			VideoID:      it.Snippet.ResourceID.VideoID,
		})
	}
	return out, nil
}

func (c *YouTubeClient) get(ctx context.Context, path string, val url.Values, dst any) error {
	reqURL := c.baseURL + path + "?" + val.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSearch, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSearch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: youtube status %d", ErrSearch, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrSearch, err)
	}
	return nil
}
