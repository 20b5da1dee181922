package testutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alchemorsel/marco/internal/domain/conversation"
	"github.com/alchemorsel/marco/internal/domain/recipe"
)

// StateAssertions provides run-state assertion methods
type StateAssertions struct {
	t *testing.T
}

// NewStateAssertions creates a new state assertions helper
func NewStateAssertions(t *testing.T) *StateAssertions {
	return &StateAssertions{t: t}
}

// Finalized asserts that a run produced a recipe and closed the conversation
func (a *StateAssertions) Finalized(st *recipe.State) {
	a.t.Helper()
	require.NotNil(a.t, st, "State should not be nil")
	require.NotNil(a.t, st.Recipe, "State should carry a recipe")
	assert.NotEmpty(a.t, st.Conversation, "Conversation should not be empty")
	assert.Equal(a.t, conversation.PhaseFinalized, st.Context.Phase)
	assert.True(a.t, st.Context.ConsensusReached, "Consensus should be reached")
}

// MessagesChronological asserts that timestamps never go backwards
func (a *StateAssertions) MessagesChronological(st *recipe.State) {
	a.t.Helper()
	for i := 1; i < len(st.Conversation); i++ {
		prev, cur := st.Conversation[i-1].Timestamp, st.Conversation[i].Timestamp
		assert.False(a.t, cur.Before(prev), "message %d is older than message %d", i, i-1)
	}
}

// HasMessage asserts that some message from role has type t
func (a *StateAssertions) HasMessage(st *recipe.State, from conversation.ExpertRole, t conversation.MessageType) conversation.Message {
	a.t.Helper()
	for _, msg := range st.Conversation {
		if msg.From == from && msg.Type == t {
			return msg
		}
	}
	a.t.Errorf("no %s message from %s", t, from)
	return conversation.Message{}
}

// CountMessages counts the messages of type t
func CountMessages(st *recipe.State, t conversation.MessageType) int {
	n := 0
	for _, msg := range st.Conversation {
		if msg.Type == t {
			n++
		}
	}
	return n
}
