package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/jwebster45206/improv-engine/pkg/scenario"
)

// Saver persists a snapshot of a session state under a name. The store
// package provides the real implementations.
type Saver interface {
	Save(ctx context.Context, name string, state *State) error
}

// AdvanceResult is the outcome of an Advance call. NextScene is nil
// exactly when Done is true.
type AdvanceResult struct {
	NextScene *Round `json:"next_scene,omitempty"`
	Done      bool   `json:"done"`
}

// Controller is the orchestration surface a conversational driver
// invokes. It exclusively owns one State for the session's lifetime;
// every operation is an atomic read or mutation under one mutex, so
// overlapping tool invocations serialize to one-at-a-time execution.
//
// CurrentScene and Snapshot are safe to retry. AcknowledgePerformance
// and Advance are not: a retry would double-append transcript entries
// or double-advance the round.
type Controller struct {
	mu      sync.Mutex
	catalog *scenario.Catalog
	state   *State
}

// NewController selects maxRounds scenarios from the catalog using the
// seed and starts a session in the intro phase. Scenario selection
// happens exactly once, here.
func NewController(catalog *scenario.Catalog, playerName string, maxRounds int, seed int64) (*Controller, error) {
	if maxRounds <= 0 {
		return nil, fmt.Errorf("max rounds must be positive, got %d", maxRounds)
	}

	selected, err := catalog.SelectUnique(maxRounds, seed)
	if err != nil {
		return nil, fmt.Errorf("failed to select rounds: %w", err)
	}

	rounds := make([]Round, len(selected))
	for i, s := range selected {
		rounds[i] = roundFromScenario(s)
	}

	return &Controller{
		catalog: catalog,
		state: &State{
			PlayerName:   playerName,
			CurrentRound: 0,
			MaxRounds:    maxRounds,
			Rounds:       rounds,
			Phase:        PhaseIntro,
			StoryHistory: make([]TranscriptEntry, 0),
		},
	}, nil
}

// Resume wraps a previously saved state in a fresh controller. The
// state must already satisfy Validate.
func Resume(catalog *scenario.Catalog, state *State) (*Controller, error) {
	if err := state.Validate(); err != nil {
		return nil, fmt.Errorf("cannot resume session: %w", err)
	}
	return &Controller{catalog: catalog, state: state.Clone()}, nil
}

// CurrentScene returns the round at the cursor. The first call on a
// fresh (or restarted) session moves intro to awaiting_improv and
// appends the host's announcement; every later call is a pure read, so
// the operation is safe to retry.
func (c *Controller) CurrentScene() (Round, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Phase == PhaseDone {
		return Round{}, fmt.Errorf("%w: all %d rounds played", ErrSessionDone, c.state.MaxRounds)
	}

	r := c.state.Rounds[c.state.CurrentRound]
	if c.state.Phase == PhaseIntro {
		c.state.Phase = PhaseAwaitingImprov
		c.appendHost(introLine(c.state.PlayerName, r))
	}
	return r, nil
}

// AcknowledgePerformance records the player's performance and moves
// awaiting_improv to reacting.
func (c *Controller) AcknowledgePerformance(transcriptText string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Phase != PhaseAwaitingImprov {
		return fmt.Errorf("%w: cannot acknowledge performance in phase %q", ErrInvalidPhaseTransition, c.state.Phase)
	}

	c.state.StoryHistory = append(c.state.StoryHistory, TranscriptEntry{
		Speaker: SpeakerPlayer,
		Text:    transcriptText,
	})
	c.state.Phase = PhaseReacting
	return nil
}

// Advance closes the current round. If rounds remain it announces the
// next scene and returns it; otherwise it ends the show.
func (c *Controller) Advance() (AdvanceResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Phase != PhaseReacting {
		return AdvanceResult{}, fmt.Errorf("%w: cannot advance in phase %q", ErrInvalidPhaseTransition, c.state.Phase)
	}

	c.state.CurrentRound++
	if c.state.CurrentRound < c.state.MaxRounds {
		next := c.state.Rounds[c.state.CurrentRound]
		c.state.Phase = PhaseAwaitingImprov
		c.appendHost(announceLine(c.state.CurrentRound+1, next))
		return AdvanceResult{NextScene: &next}, nil
	}

	c.state.Phase = PhaseDone
	c.appendHost(closingLine(c.state.PlayerName, c.state.MaxRounds))
	return AdvanceResult{Done: true}, nil
}

// Restart resets the session to the intro phase: round cursor back to
// zero, transcript cleared. Rounds are re-selected only when a new seed
// is supplied; otherwise the same script is replayed.
func (c *Controller) Restart(newSeed *int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if newSeed != nil {
		selected, err := c.catalog.SelectUnique(c.state.MaxRounds, *newSeed)
		if err != nil {
			return fmt.Errorf("failed to re-select rounds: %w", err)
		}
		rounds := make([]Round, len(selected))
		for i, s := range selected {
			rounds[i] = roundFromScenario(s)
		}
		c.state.Rounds = rounds
	}

	c.state.CurrentRound = 0
	c.state.Phase = PhaseIntro
	c.state.StoryHistory = make([]TranscriptEntry, 0)
	return nil
}

// Snapshot returns a deep copy of the live state. It never mutates.
func (c *Controller) Snapshot() *State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Save snapshots the live state and hands the copy to the store. The
// copy is taken under the session lock; the write happens without it,
// so a slow disk or network never blocks other operations.
func (c *Controller) Save(ctx context.Context, store Saver, name string) error {
	c.mu.Lock()
	snapshot := c.state.Clone()
	c.mu.Unlock()

	if err := store.Save(ctx, name, snapshot); err != nil {
		return fmt.Errorf("failed to save session %q: %w", name, err)
	}
	return nil
}

// appendHost records a host transcript line. Callers hold c.mu.
func (c *Controller) appendHost(text string) {
	c.state.StoryHistory = append(c.state.StoryHistory, TranscriptEntry{
		Speaker: SpeakerHost,
		Text:    text,
	})
}
