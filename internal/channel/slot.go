package channel

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"jukebox-service/internal/command"
)

const (
	// SlotKey is the shared storage slot watched by the player window.
	SlotKey = "jukebox:command"

	// NotifyChannel carries change notifications for attached windows.
	NotifyChannel = "jukebox:command:notify"
)

// Liveness reports whether the target window can still be written to.
// Implemented by *window.Hub.
type Liveness interface {
	Alive() bool
}

// SlotChannel is a Redis-backed Sink/Source. Writing a new command before
// the previous one is consumed overwrites it.
type SlotChannel struct {
	rdb     *redis.Client
	windows Liveness
}

func NewSlotChannel(rdb *redis.Client, windows Liveness) *SlotChannel {
	return &SlotChannel{rdb: rdb, windows: windows}
}

// Send serializes the command into the slot. Success means "written and the
// window believed alive at write time"; there is no acknowledgment path.
func (s *SlotChannel) Send(ctx context.Context, cmd command.Command) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteDenied, err)
	}
	if s.windows == nil || !s.windows.Alive() {
		return ErrWindowUnavailable
	}

	payload, err := command.Encode(cmd)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteDenied, err)
	}
	if err := s.rdb.Set(ctx, SlotKey, payload, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteDenied, err)
	}

	// Best effort nudge; a window that misses it catches up via TryReceive.
	if err := s.rdb.Publish(ctx, NotifyChannel, string(payload)).Err(); err != nil {
		log.Printf("jukebox-service: command notify: %v", err)
	}
	return nil
}

// TryReceive consumes the pending command, if any. The slot is cleared so a
// command is executed at most once per observed write.
func (s *SlotChannel) TryReceive(ctx context.Context) (command.Command, bool, error) {
	payload, err := s.rdb.GetDel(ctx, SlotKey).Result()
	if errors.Is(err, redis.Nil) {
		return command.Command{}, false, nil
	}
	if err != nil {
		return command.Command{}, false, fmt.Errorf("read command slot: %w", err)
	}
	cmd, err := command.Decode([]byte(payload))
	if err != nil {
		return command.Command{}, false, err
	}
	return cmd, true, nil
}
