package session

import (
	"fmt"

	"github.com/jwebster45206/improv-engine/pkg/scenario"
)

// Phase is the session's position in the show cycle.
type Phase string

const (
	PhaseIntro          Phase = "intro"           // Session created, nothing announced yet
	PhaseAwaitingImprov Phase = "awaiting_improv" // Scene announced, waiting on the player
	PhaseReacting       Phase = "reacting"        // Performance received, host reacts
	PhaseDone           Phase = "done"            // Terminal: all rounds played
)

// Round is a scenario bound into one session's fixed play order. It is
// a copy, not a reference, so catalog edits never alter a live session.
type Round struct {
	ID     string `json:"id"`
	Prompt string `json:"prompt"`
	Hint   string `json:"hint"`
}

func roundFromScenario(s scenario.Scenario) Round {
	return Round{ID: s.ID, Prompt: s.Prompt, Hint: s.Hint}
}

// State is the full model of one playthrough. Its JSON form is the
// snapshot format written by the session store.
type State struct {
	PlayerName   string            `json:"player_name"`
	CurrentRound int               `json:"current_round"`
	MaxRounds    int               `json:"max_rounds"`
	Rounds       []Round           `json:"rounds"`
	Phase        Phase             `json:"phase"`
	StoryHistory []TranscriptEntry `json:"story_history"`
}

// Validate checks the structural invariants of a state. It is called on
// every snapshot load so a corrupted snapshot is rejected, never
// partially applied.
func (s *State) Validate() error {
	if s.MaxRounds <= 0 {
		return fmt.Errorf("max_rounds must be positive, got %d", s.MaxRounds)
	}
	if len(s.Rounds) != s.MaxRounds {
		return fmt.Errorf("rounds length %d does not match max_rounds %d", len(s.Rounds), s.MaxRounds)
	}
	if s.CurrentRound < 0 || s.CurrentRound > s.MaxRounds {
		return fmt.Errorf("current_round %d out of range [0,%d]", s.CurrentRound, s.MaxRounds)
	}
	switch s.Phase {
	case PhaseIntro, PhaseAwaitingImprov, PhaseReacting, PhaseDone:
	default:
		return fmt.Errorf("unknown phase %q", s.Phase)
	}
	if (s.Phase == PhaseDone) != (s.CurrentRound == s.MaxRounds) {
		return fmt.Errorf("phase %q inconsistent with current_round %d of %d", s.Phase, s.CurrentRound, s.MaxRounds)
	}
	for i, r := range s.Rounds {
		if r.ID == "" || r.Prompt == "" {
			return fmt.Errorf("round %d is missing id or prompt", i)
		}
	}
	return nil
}

// Clone returns a deep copy of the state.
func (s *State) Clone() *State {
	out := *s
	out.Rounds = make([]Round, len(s.Rounds))
	copy(out.Rounds, s.Rounds)
	out.StoryHistory = make([]TranscriptEntry, len(s.StoryHistory))
	copy(out.StoryHistory, s.StoryHistory)
	return &out
}
