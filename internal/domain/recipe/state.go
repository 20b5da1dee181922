package recipe

import (
	"github.com/alchemorsel/marco/internal/domain/conversation"
)

// State is the single unit of shared mutable state threaded through one
// generation run. Every workflow step reads and mutates it in place.
type State struct {
	Request           Request                                          `json:"request"`
	Recipe            *Recipe                                          `json:"recipe,omitempty"`
	SeasonalVariation *SeasonalVariation                               `json:"seasonal_variation,omitempty"`
	Experts           map[conversation.ExpertRole]conversation.Profile `json:"experts"`
	Conversation      []conversation.Message                           `json:"conversation"`
	Context           conversation.Context                             `json:"conversation_context"`
	Messages          []conversation.LegacyMessage                     `json:"messages"`
	Errors            []string                                         `json:"errors"`
}

// NewState creates the state for a fresh run of req.
func NewState(req Request) *State {
	return &State{
		Request:      req.Clone(),
		Experts:      map[conversation.ExpertRole]conversation.Profile{},
		Conversation: []conversation.Message{},
		Context:      conversation.NewContext(),
		Messages:     []conversation.LegacyMessage{},
		Errors:       []string{},
	}
}

// HasRecipe reports whether generation has produced a recipe.
func (s *State) HasRecipe() bool {
	return s != nil && s.Recipe != nil
}

// Analysis returns the recipe's analysis, or nil.
func (s *State) Analysis() *PsychonutritionAnalysis {
	if !s.HasRecipe() {
		return nil
	}
	return s.Recipe.PsychonutritionAnalysis
}

// Note appends an assistant note to the legacy message list.
func (s *State) Note(content string) {
	s.Messages = append(s.Messages, conversation.LegacyMessage{Role: "assistant", Content: content})
}

// AddError records a recoverable step failure.
func (s *State) AddError(msg string) {
	s.Errors = append(s.Errors, msg)
}

// RecentMessages returns at most the last n conversation messages.
func (s *State) RecentMessages(n int) []conversation.Message {
	if len(s.Conversation) <= n {
		return s.Conversation
	}
	return s.Conversation[len(s.Conversation)-n:]
}

// Clone returns a deep copy of the state. Messages are shared by value since
// they are never modified once appended.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	c := &State{
		Request:           s.Request.Clone(),
		Recipe:            s.Recipe.Clone(),
		SeasonalVariation: s.SeasonalVariation.Clone(),
		Experts:           make(map[conversation.ExpertRole]conversation.Profile, len(s.Experts)),
		Conversation:      append([]conversation.Message{}, s.Conversation...),
		Context:           s.Context.Clone(),
		Messages:          append([]conversation.LegacyMessage{}, s.Messages...),
		Errors:            append([]string{}, s.Errors...),
	}
	for role, profile := range s.Experts {
		c.Experts[role] = profile
	}
	return c
}
