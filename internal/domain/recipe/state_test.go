package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alchemorsel/marco/internal/domain/conversation"
)

func TestNewState_InitialValues(t *testing.T) {
	st := NewState(NewRequest("soup"))

	assert.False(t, st.HasRecipe())
	assert.Nil(t, st.Analysis())
	assert.Empty(t, st.Experts)
	assert.Empty(t, st.Conversation)
	assert.Equal(t, conversation.DefaultTopic, st.Context.Topic)
	assert.Equal(t, conversation.PhasePlanning, st.Context.Phase)
}

func TestState_CloneRestoresCleanly(t *testing.T) {
	st := NewState(NewRequest("soup"))
	st.Recipe = &Recipe{Name: "Soup", Ingredients: []Ingredient{{Name: "leek"}}}
	st.Conversation = append(st.Conversation, conversation.Message{ID: "1", From: conversation.RoleChef})

	snapshot := st.Clone()

	st.Recipe.Name = "Changed"
	st.Recipe.Ingredients[0].Name = "onion"
	st.Conversation = append(st.Conversation, conversation.Message{ID: "2"})
	st.Context.Phase = conversation.PhaseFinalized
	st.Experts[conversation.RoleChef] = conversation.Profile{Name: "x"}

	assert.Equal(t, "Soup", snapshot.Recipe.Name)
	assert.Equal(t, "leek", snapshot.Recipe.Ingredients[0].Name)
	assert.Len(t, snapshot.Conversation, 1)
	assert.Equal(t, conversation.PhasePlanning, snapshot.Context.Phase)
	assert.Empty(t, snapshot.Experts)
}

func TestState_RecentMessages(t *testing.T) {
	st := NewState(NewRequest("soup"))
	for i := 0; i < 7; i++ {
		st.Conversation = append(st.Conversation, conversation.Message{Content: string(rune('a' + i))})
	}

	recent := st.RecentMessages(5)
	assert.Len(t, recent, 5)
	assert.Equal(t, "c", recent[0].Content)
	assert.Len(t, st.RecentMessages(10), 7)
}
