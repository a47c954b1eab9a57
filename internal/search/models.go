package search

// Result is a ranked search candidate. Results are immutable and discarded
// when a new query begins.
type Result struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	ChannelTitle  string `json:"channelTitle"`
	ThumbnailURL  string `json:"thumbnailUrl"`
	VideoURL      string `json:"videoUrl"`
	OfficialScore int    `json:"officialScore"`
}

// PlaylistItem is an entry of the pre-configured default catalog playlist,
// loaded once at session start and read-only thereafter.
type PlaylistItem struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	ChannelTitle string `json:"channelTitle"`
	VideoID      string `json:"videoId"`
}
