// Package channel carries commands from the controller to the player
// window. The conduit is a single storage slot with last-write-wins
// semantics: no delivery acknowledgment, no queueing of in-flight commands,
// no ordering guarantee beyond "most recent write observed".
package channel

import (
	"context"
	"errors"

	"jukebox-service/internal/command"
)

var (
	// ErrWindowUnavailable means the player window handle is gone. Checked
	// immediately before every write; window closure is externally triggered.
	ErrWindowUnavailable = errors.New("player window is not available")

	// ErrWriteDenied means the storage layer rejected the write. Surfaced to
	// the caller, never allowed to crash the controller.
	ErrWriteDenied = errors.New("command write denied")
)

// Sink is the controller-facing side of the conduit.
type Sink interface {
	Send(ctx context.Context, cmd command.Command) error
}

// Source is the player-facing side: a command is consumed at most once.
type Source interface {
	TryReceive(ctx context.Context) (command.Command, bool, error)
}
