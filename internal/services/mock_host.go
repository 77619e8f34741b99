package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/jwebster45206/improv-engine/pkg/session"
)

// MockHost is a HostService with canned lines, used in tests and when
// no LLM is configured. Reactions rotate through a fixed set so
// repeated rounds do not sound identical.
type MockHost struct {
	ReactionLineFunc   func(ctx context.Context, scene session.Round, performance string) (string, error)
	ClosingSummaryFunc func(ctx context.Context, state *session.State) (string, error)

	// Call tracking for tests
	ReactionCalls []string

	mu   sync.Mutex
	next int
}

var _ HostService = (*MockHost)(nil)

var cannedReactions = []string{
	"Fantastic energy! The crowd is loving it.",
	"Not bad at all. A little more commitment next time and you'll bring the house down.",
	"Ha! Bold choice. Let's see where the next scene takes you.",
}

func NewMockHost() *MockHost {
	return &MockHost{ReactionCalls: make([]string, 0)}
}

func (m *MockHost) ReactionLine(ctx context.Context, scene session.Round, performance string) (string, error) {
	m.mu.Lock()
	m.ReactionCalls = append(m.ReactionCalls, performance)
	i := m.next
	m.next++
	m.mu.Unlock()

	if m.ReactionLineFunc != nil {
		return m.ReactionLineFunc(ctx, scene, performance)
	}
	return cannedReactions[i%len(cannedReactions)], nil
}

func (m *MockHost) ClosingSummary(ctx context.Context, state *session.State) (string, error) {
	if m.ClosingSummaryFunc != nil {
		return m.ClosingSummaryFunc(ctx, state)
	}
	return fmt.Sprintf("What a show, %s! %d scenes, zero hesitation. Come back any time.",
		state.PlayerName, state.MaxRounds), nil
}
