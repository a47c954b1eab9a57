package session

import (
	"errors"

	"github.com/google/uuid"
)

var ErrUnknownBackground = errors.New("unknown background")

// AddBackground registers an uploaded backdrop and returns its record.
func (s *Session) AddBackground(name, url string, kind BackgroundKind) Background {
	s.mu.Lock()
	defer s.mu.Unlock()

	bg := Background{
		ID:   uuid.NewString(),
		Name: name,
		URL:  url,
		Kind: kind,
	}
	s.backgrounds = append(s.backgrounds, bg)
	return bg
}

func (s *Session) Backgrounds() []Background {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Background, len(s.backgrounds))
	copy(out, s.backgrounds)
	return out
}

// SelectBackground switches the active backdrop by id.
func (s *Session) SelectBackground(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, bg := range s.backgrounds {
		if bg.ID == id {
			s.selectedBg = id
			s.cycleIdx = i
			return nil
		}
	}
	return ErrUnknownBackground
}

// SetCycleBackgrounds toggles automatic background rotation.
func (s *Session) SetCycleBackgrounds(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cycleBg = enabled
}

// AdvanceBackground rotates to the next backdrop when cycling is enabled
// and returns the now-current one.
func (s *Session) AdvanceBackground() Background {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.backgrounds) == 0 {
		return Background{}
	}
	if s.cycleBg {
		s.cycleIdx = (s.cycleIdx + 1) % len(s.backgrounds)
		s.selectedBg = s.backgrounds[s.cycleIdx].ID
	}
	return s.backgrounds[s.cycleIdx]
}

// CurrentBackground returns the selected backdrop.
func (s *Session) CurrentBackground() Background {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, bg := range s.backgrounds {
		if bg.ID == s.selectedBg {
			return bg
		}
	}
	if len(s.backgrounds) > 0 {
		return s.backgrounds[0]
	}
	return Background{}
}
