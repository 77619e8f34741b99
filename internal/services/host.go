package services

import (
	"context"

	"github.com/jwebster45206/improv-engine/pkg/session"
)

// HostService produces the host persona's spoken lines. It is the
// interface boundary to the LLM collaborator: the session state machine
// never calls it, only the orchestrating layer does, and its output is
// handed back to the caller rather than written into the transcript.
type HostService interface {
	// ReactionLine returns the host's short reaction to a performance.
	ReactionLine(ctx context.Context, scene session.Round, performance string) (string, error)

	// ClosingSummary returns the host's wrap-up for a finished show.
	ClosingSummary(ctx context.Context, state *session.State) (string, error)
}
