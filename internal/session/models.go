package session

import "time"

type Mode string

const (
	ModeFreeplay Mode = "FREEPLAY"
	ModePaid     Mode = "PAID"
)

type LogType string

const (
	LogSongPlayed    LogType = "SONG_PLAYED"
	LogUserSelection LogType = "USER_SELECTION"
	LogCreditAdded   LogType = "CREDIT_ADDED"
	LogCreditRemoved LogType = "CREDIT_REMOVED"
)

// LogEntry records controller-side activity. Entries are kept newest first
// and evicted oldest first once the cap is reached.
type LogEntry struct {
	Timestamp   time.Time `json:"timestamp"`
	Type        LogType   `json:"type"`
	Description string    `json:"description"`
	VideoID     string    `json:"videoId,omitempty"`
	CreditDelta int       `json:"creditDelta,omitempty"`
}

type BackgroundKind string

const (
	BackgroundImage BackgroundKind = "image"
	BackgroundVideo BackgroundKind = "video"
)

// Background is a selectable player backdrop owned by the controller.
type Background struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	URL  string         `json:"url"`
	Kind BackgroundKind `json:"kind"`
}

// Candidate is a confirmed search result about to be enqueued.
type Candidate struct {
	VideoID      string `json:"videoId"`
	Title        string `json:"title"`
	ChannelTitle string `json:"channelTitle"`
}

// State is a read-only snapshot of the session for the UI surfaces.
type State struct {
	Mode               Mode     `json:"mode"`
	Credits            int      `json:"credits"`
	CurrentPlaylist    []string `json:"currentPlaylist"`
	PlayerRunning      bool     `json:"playerRunning"`
	PlayerAlive        bool     `json:"playerAlive"`
	SelectedBackground string   `json:"selectedBackground"`
	CycleBackgrounds   bool     `json:"cycleBackgrounds"`
	IsSearching        bool     `json:"isSearching"`
}
