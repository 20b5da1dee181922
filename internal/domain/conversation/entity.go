// Package conversation contains the domain types for the simulated expert
// conversation that critiques and revises a recipe.
package conversation

import (
	"time"
)

// ExpertRole identifies a persona in the conversation. The set is closed.
type ExpertRole string

// Expert roles. RoleNutritionist is part of the enumeration but no profile
// is seeded for it and no workflow step speaks as it.
const (
	RoleNutritionist       ExpertRole = "nutritionist"
	RoleChef               ExpertRole = "chef"
	RoleSeasonalExpert     ExpertRole = "seasonal_expert"
	RolePsychonutritionist ExpertRole = "psychonutritionist"
)

// AllRoles returns every expert role in declaration order.
func AllRoles() []ExpertRole {
	return []ExpertRole{RoleNutritionist, RoleChef, RoleSeasonalExpert, RolePsychonutritionist}
}

// IsValid reports whether r is one of the known roles.
func (r ExpertRole) IsValid() bool {
	switch r {
	case RoleNutritionist, RoleChef, RoleSeasonalExpert, RolePsychonutritionist:
		return true
	}
	return false
}

func (r ExpertRole) String() string { return string(r) }

// MessageType classifies an expert message. The set is closed.
type MessageType string

// Message types
const (
	TypeSuggestion    MessageType = "suggestion"
	TypeQuestion      MessageType = "question"
	TypeOpinion       MessageType = "opinion"
	TypeApproval      MessageType = "approval"
	TypeConcern       MessageType = "concern"
	TypeModification  MessageType = "modification"
	TypeFinalDecision MessageType = "final_decision"
)

// IsValid reports whether t is one of the known message types.
func (t MessageType) IsValid() bool {
	switch t {
	case TypeSuggestion, TypeQuestion, TypeOpinion, TypeApproval,
		TypeConcern, TypeModification, TypeFinalDecision:
		return true
	}
	return false
}

func (t MessageType) String() string { return string(t) }

// Message is one entry in the conversation log. A nil To means the message
// is addressed to every expert. Messages are never modified after they are
// appended.
type Message struct {
	ID          string                 `json:"id"`
	From        ExpertRole             `json:"from_expert"`
	To          *ExpertRole            `json:"to_expert,omitempty"`
	Type        MessageType            `json:"message_type"`
	Content     string                 `json:"content"`
	Timestamp   time.Time              `json:"timestamp"`
	ReferenceTo string                 `json:"reference_to,omitempty"`
	Metadata    map[string]interface{} `json:"metadata"`
}

// IsBroadcast reports whether the message is addressed to all experts.
func (m Message) IsBroadcast() bool {
	return m.To == nil
}

// AddressedTo reports whether the message targets role specifically.
func (m Message) AddressedTo(role ExpertRole) bool {
	return m.To != nil && *m.To == role
}

// Profile is the static descriptor of an expert persona.
type Profile struct {
	Role               ExpertRole `json:"role"`
	Name               string     `json:"name"`
	Specialization     string     `json:"specialization"`
	Concerns           []string   `json:"concerns"`
	CommunicationStyle string     `json:"communication_style"`
}

// Conversation phases in their usual progression
const (
	PhasePlanning     = "planning"
	PhaseAnalysis     = "analysis"
	PhaseRefinement   = "refinement"
	PhaseOptimization = "optimization"
	PhaseFinalized    = "finalized"
)

// DefaultTopic is the topic of a fresh conversation.
const DefaultTopic = "Recipe Planning"

// Context tracks where the conversation stands.
type Context struct {
	Topic            string   `json:"topic"`
	Phase            string   `json:"phase"`
	DecisionsMade    []string `json:"decisions_made"`
	PendingQuestions []string `json:"pending_questions"`
	ConsensusReached bool     `json:"consensus_reached"`
}

// NewContext returns the initial conversation context.
func NewContext() Context {
	return Context{
		Topic:            DefaultTopic,
		Phase:            PhasePlanning,
		DecisionsMade:    []string{},
		PendingQuestions: []string{},
	}
}

// Clone returns a copy that shares no slices with c.
func (c Context) Clone() Context {
	c.DecisionsMade = append([]string{}, c.DecisionsMade...)
	c.PendingQuestions = append([]string{}, c.PendingQuestions...)
	return c
}

// ContextUpdate lists the context fields to change. Empty fields are left
// untouched.
type ContextUpdate struct {
	Topic    string
	Phase    string
	Decision string
	Question string
}

// LegacyMessage is a free-form role/content note kept alongside the expert
// conversation.
type LegacyMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
