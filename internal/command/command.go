package command

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Action is the wire name of a player instruction.
type Action string

const (
	ActionStart         Action = "start"
	ActionStop          Action = "stop"
	ActionFadeOutBlack  Action = "fadeOutAndBlack"
	ActionAddToPlaylist Action = "addToPlaylist"
)

// Command is the envelope written to the command slot. VideoID, Title and
// ChannelTitle are only set for "addToPlaylist".
type Command struct {
	Action       Action `json:"action"`
	VideoID      string `json:"videoId,omitempty"`
	Title        string `json:"title,omitempty"`
	ChannelTitle string `json:"channelTitle,omitempty"`
}

func Start() Command        { return Command{Action: ActionStart} }
func Stop() Command         { return Command{Action: ActionStop} }
func FadeOutBlack() Command { return Command{Action: ActionFadeOutBlack} }

// AddToPlaylist builds an enqueue command for the player.
func AddToPlaylist(videoID, title, channelTitle string) Command {
	return Command{
		Action:       ActionAddToPlaylist,
		VideoID:      videoID,
		Title:        title,
		ChannelTitle: channelTitle,
	}
}

// Validate reports whether the command is well-formed. Players ignore
// commands with unknown actions, but the controller never emits them.
func (c Command) Validate() error {
	switch c.Action {
	case ActionStart, ActionStop, ActionFadeOutBlack:
		return nil
	case ActionAddToPlaylist:
		if strings.TrimSpace(c.VideoID) == "" {
			return fmt.Errorf("addToPlaylist requires a videoId")
		}
		return nil
	default:
		return fmt.Errorf("unknown action %q", c.Action)
	}
}

// Encode serializes the command for the slot.
func Encode(c Command) ([]byte, error) {
	return json.Marshal(c)
}

// Decode parses a slot payload. It does not reject unknown actions; that is
// the consumer's decision (they are ignored).
func Decode(data []byte) (Command, error) {
	var c Command
	if err := json.Unmarshal(data, &c); err != nil {
		return Command{}, fmt.Errorf("decode command: %w", err)
	}
	return c, nil
}
