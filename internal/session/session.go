// Package session holds the authoritative controller-side model of the
// jukebox: mode, credits, the current queue and the activity log. Commands
// to the player window are emitted only as side effects of committed state
// transitions, never the other way around.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"jukebox-service/internal/channel"
	"jukebox-service/internal/command"
	"jukebox-service/internal/search"
)

// ErrInsufficientCredits blocks a PAID-mode enqueue before any state
// mutation or command emission.
var ErrInsufficientCredits = errors.New("insufficient credits")

const defaultLogCap = 1000

// Windows is the window-lifecycle capability the session consumes.
// Implemented by *window.Hub.
type Windows interface {
	Open(ctx context.Context) error
	Alive() bool
	Close()
}

// Searcher issues one catalog query per call.
type Searcher interface {
	Search(ctx context.Context, query string) ([]search.Result, error)
}

// Session serializes every transition behind one mutex: the controller has
// an event-loop scheduling model, never two transitions at once.
type Session struct {
	sink     channel.Sink
	windows  Windows
	searcher Searcher
	now      func() time.Time

	mu              sync.Mutex
	mode            Mode
	credits         int
	currentPlaylist []string
	logs            []LogEntry
	logCap          int
	playerRunning   bool

	defaultPlaylist []search.PlaylistItem
	searchResults   []search.Result
	searching       bool
	searchGen       uint64

	backgrounds []Background
	selectedBg  string
	cycleBg     bool
	cycleIdx    int
}

func New(sink channel.Sink, windows Windows, searcher Searcher, logCap int) *Session {
	if logCap <= 0 {
		logCap = defaultLogCap
	}
	return &Session{
		sink:     sink,
		windows:  windows,
		searcher: searcher,
		now:      time.Now,
		mode:     ModeFreeplay,
		logCap:   logCap,
		backgrounds: []Background{
			{ID: "default", Name: "Default", URL: "/backgrounds/default.png", Kind: BackgroundImage},
		},
		selectedBg: "default",
	}
}

// Enqueue appends a confirmed candidate to the current playlist. In PAID
// mode it costs one credit; the guard, the mutation and the command emission
// appear atomic to callers. A command-send failure after the mutation
// committed is surfaced but not rolled back.
func (s *Session) Enqueue(ctx context.Context, c Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == ModePaid && s.credits <= 0 {
		return ErrInsufficientCredits
	}

	s.currentPlaylist = append(s.currentPlaylist, c.VideoID)
	if s.mode == ModePaid {
		s.credits--
	}

	err := s.sink.Send(ctx, command.AddToPlaylist(c.VideoID, c.Title, c.ChannelTitle))
	if err != nil {
		return fmt.Errorf("queue updated but player not notified: %w", err)
	}

	s.appendLog(LogUserSelection, fmt.Sprintf("Added %q by %s", c.Title, c.ChannelTitle), c.VideoID, 0)
	return nil
}

// AdjustCredit applies a signed delta, flooring the balance at zero, and
// returns the new balance. The log records the delta actually applied.
func (s *Session) AdjustCredit(delta int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.credits + delta
	if next < 0 {
		next = 0
	}
	applied := next - s.credits
	s.credits = next

	// A zero-effect adjustment (delta 0, or a removal fully clamped away)
	// leaves no trace in the admin log.
	if applied == 0 {
		return s.credits
	}
	if delta > 0 {
		s.appendLog(LogCreditAdded, "Admin added credit", "", applied)
	} else {
		s.appendLog(LogCreditRemoved, "Admin removed credit", "", applied)
	}
	return s.credits
}

// TogglePlayer starts or stops the player window and returns the resulting
// running flag. The flag reflects intent, not confirmed player state: a stop
// whose command write fails still leaves the flag false.
func (s *Session) TogglePlayer(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.playerRunning {
		err := s.sink.Send(ctx, command.Stop())
		s.playerRunning = false
		if err != nil {
			return false, err
		}
		s.appendLog(LogSongPlayed, "Player stopped by admin", "", 0)
		return false, nil
	}

	if err := s.windows.Open(ctx); err != nil {
		return false, err
	}
	s.playerRunning = true
	if err := s.sink.Send(ctx, command.Start()); err != nil {
		return true, err
	}
	s.appendLog(LogSongPlayed, "Player started by admin", "", 0)
	return true, nil
}

// SkipSong fades the current song out. No-op while the player is stopped.
func (s *Session) SkipSong(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.playerRunning {
		return nil
	}
	if err := s.sink.Send(ctx, command.FadeOutBlack()); err != nil {
		return err
	}
	s.appendLog(LogSongPlayed, "Song skipped by admin", "", 0)
	return nil
}

// SetMode is a pure assignment; it does not revalidate the existing credit
// balance against the new mode.
func (s *Session) SetMode(m Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = m
}

// Search runs one catalog query and stores the ranked results. Responses
// belonging to a superseded query are discarded so they cannot overwrite
// newer results. Empty queries return immediately without a request.
func (s *Session) Search(ctx context.Context, query string) ([]search.Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	s.mu.Lock()
	s.searchGen++
	gen := s.searchGen
	s.searching = true
	s.mu.Unlock()

	results, err := s.searcher.Search(ctx, query)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.searchGen {
		// A newer query superseded this one; leave its results alone.
		return nil, nil
	}
	s.searching = false
	if err != nil {
		// Prior results stay untouched on failure.
		return nil, err
	}
	s.searchResults = results
	return results, nil
}

// ResetSearch discards stored results, e.g. when the search surface closes.
func (s *Session) ResetSearch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchResults = nil
	s.searching = false
	s.searchGen++
}

func (s *Session) SearchResults() []search.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]search.Result, len(s.searchResults))
	copy(out, s.searchResults)
	return out
}

// SetDefaultPlaylist installs the pre-configured catalog list, loaded once
// at session start and read-only thereafter.
func (s *Session) SetDefaultPlaylist(items []search.PlaylistItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaultPlaylist = items
}

func (s *Session) DefaultPlaylist() []search.PlaylistItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]search.PlaylistItem, len(s.defaultPlaylist))
	copy(out, s.defaultPlaylist)
	return out
}

// Logs returns the activity log, newest first.
func (s *Session) Logs() []LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]LogEntry, len(s.logs))
	copy(out, s.logs)
	return out
}

func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	playlist := make([]string, len(s.currentPlaylist))
	copy(playlist, s.currentPlaylist)

	return State{
		Mode:               s.mode,
		Credits:            s.credits,
		CurrentPlaylist:    playlist,
		PlayerRunning:      s.playerRunning,
		PlayerAlive:        s.windows.Alive(),
		SelectedBackground: s.selectedBg,
		CycleBackgrounds:   s.cycleBg,
		IsSearching:        s.searching,
	}
}

// Close tears the session down. The controller owns the player window for as
// long as the session exists, so a still-open window is closed here.
func (s *Session) Close() {
	if s.windows.Alive() {
		s.windows.Close()
	}
}

// appendLog prepends an entry (newest first) and evicts beyond the cap.
// Callers hold s.mu.
func (s *Session) appendLog(typ LogType, description, videoID string, creditDelta int) {
	entry := LogEntry{
		Timestamp:   s.now().UTC(),
		Type:        typ,
		Description: description,
		VideoID:     videoID,
		CreditDelta: creditDelta,
	}
	s.logs = append([]LogEntry{entry}, s.logs...)
	if len(s.logs) > s.logCap {
		s.logs = s.logs[:s.logCap]
	}
}
