// Package conversation implements the expert conversation log: addressing,
// recipient filtering, the consensus heuristic and context tracking.
package conversation

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alchemorsel/marco/internal/domain/conversation"
	"github.com/alchemorsel/marco/internal/domain/recipe"
)

const (
	// ConsensusWindow is how many trailing messages CheckConsensus inspects.
	ConsensusWindow = 5
	// HistoryWindow is how many messages FormatHistory renders.
	HistoryWindow = 10
)

// Manager appends to and reads from the conversation log of a run state.
type Manager struct {
	profiles map[conversation.ExpertRole]conversation.Profile
	now      func() time.Time
	newID    func() string
	logger   *zap.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithIDGenerator overrides the message id source.
func WithIDGenerator(newID func() string) Option {
	return func(m *Manager) { m.newID = newID }
}

// WithProfiles replaces the persona table.
func WithProfiles(profiles map[conversation.ExpertRole]conversation.Profile) Option {
	return func(m *Manager) { m.profiles = profiles }
}

// NewManager creates a conversation manager seeded with the default personas.
func NewManager(logger *zap.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		profiles: conversation.DefaultProfiles(),
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
		logger:   logger.Named("conversation"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// InitializeExperts copies the persona table into the state. Callers check
// that st.Experts is empty first.
func (m *Manager) InitializeExperts(st *recipe.State) {
	experts := make(map[conversation.ExpertRole]conversation.Profile, len(m.profiles))
	for role, p := range m.profiles {
		experts[role] = p
	}
	st.Experts = experts
}

// EnsureExperts initializes the experts only when none are present.
func (m *Manager) EnsureExperts(st *recipe.State) {
	if len(st.Experts) == 0 {
		m.InitializeExperts(st)
	}
}

// MessageOption sets an optional field of a new message.
type MessageOption func(*conversation.Message)

// To addresses the message to a single expert.
func To(role conversation.ExpertRole) MessageOption {
	return func(msg *conversation.Message) {
		r := role
		msg.To = &r
	}
}

// ReplyTo marks the message as a reply to an earlier message id.
func ReplyTo(id string) MessageOption {
	return func(msg *conversation.Message) { msg.ReferenceTo = id }
}

// WithMetadata attaches metadata to the message.
func WithMetadata(md map[string]interface{}) MessageOption {
	return func(msg *conversation.Message) {
		for k, v := range md {
			msg.Metadata[k] = v
		}
	}
}

// AddMessage appends a new message with a fresh id and timestamp and returns it.
func (m *Manager) AddMessage(
	st *recipe.State,
	from conversation.ExpertRole,
	content string,
	msgType conversation.MessageType,
	opts ...MessageOption,
) conversation.Message {
	msg := conversation.Message{
		ID:        m.newID(),
		From:      from,
		Type:      msgType,
		Content:   content,
		Timestamp: m.now(),
		Metadata:  map[string]interface{}{},
	}
	for _, opt := range opts {
		opt(&msg)
	}
	st.Conversation = append(st.Conversation, msg)

	fields := []zap.Field{
		zap.String("id", msg.ID),
		zap.String("from", from.String()),
		zap.String("type", msgType.String()),
	}
	if msg.To != nil {
		fields = append(fields, zap.String("to", msg.To.String()))
	}
	m.logger.Debug("Expert message added", fields...)
	return msg
}

// ConversationFor returns, in log order, every message sent to or by expert,
// plus broadcasts when includeGeneral is set.
func (m *Manager) ConversationFor(st *recipe.State, expert conversation.ExpertRole, includeGeneral bool) []conversation.Message {
	var out []conversation.Message
	for _, msg := range st.Conversation {
		switch {
		case msg.AddressedTo(expert):
			out = append(out, msg)
		case msg.From == expert:
			out = append(out, msg)
		case includeGeneral && msg.IsBroadcast():
			out = append(out, msg)
		}
	}
	return out
}

// CheckConsensus reports whether approvals outnumber concerns among the last
// ConsensusWindow messages. Ties are not consensus.
func (m *Manager) CheckConsensus(st *recipe.State) bool {
	approvals, concerns := 0, 0
	for _, msg := range st.RecentMessages(ConsensusWindow) {
		switch msg.Type {
		case conversation.TypeApproval:
			approvals++
		case conversation.TypeConcern:
			concerns++
		}
	}
	return approvals > concerns
}

// UpdateContext applies the non-empty fields of u and recomputes consensus.
func (m *Manager) UpdateContext(st *recipe.State, u conversation.ContextUpdate) {
	if u.Topic != "" {
		st.Context.Topic = u.Topic
	}
	if u.Phase != "" {
		st.Context.Phase = u.Phase
	}
	if u.Decision != "" {
		st.Context.DecisionsMade = append(st.Context.DecisionsMade, u.Decision)
	}
	if u.Question != "" {
		st.Context.PendingQuestions = append(st.Context.PendingQuestions, u.Question)
	}
	st.Context.ConsensusReached = m.CheckConsensus(st)
}

// ExpertName returns the persona name for role, or the role itself when the
// state carries no profile for it.
func ExpertName(st *recipe.State, role conversation.ExpertRole) string {
	if p, ok := st.Experts[role]; ok {
		return p.Name
	}
	return role.String()
}

// FormatHistory renders the last HistoryWindow messages, filtered to those
// relevant to forExpert when it is non-nil.
func (m *Manager) FormatHistory(st *recipe.State, forExpert *conversation.ExpertRole) string {
	messages := st.Conversation
	if forExpert != nil {
		messages = m.ConversationFor(st, *forExpert, true)
	}
	if len(messages) == 0 {
		return "No previous conversation."
	}
	if len(messages) > HistoryWindow {
		messages = messages[len(messages)-HistoryWindow:]
	}

	var b strings.Builder
	b.WriteString("=== EXPERT CONVERSATION ===\n")
	for _, msg := range messages {
		target := " → All"
		if msg.To != nil {
			target = " → " + ExpertName(st, *msg.To)
		}
		fmt.Fprintf(&b, "\n**%s** (%s)%s:\n", ExpertName(st, msg.From), msg.Type, target)
		fmt.Fprintf(&b, "  %s\n", msg.Content)
	}
	return b.String()
}

// ExpertPromptContext builds the persona prompt for expert, including the
// current context and the expert's view of the conversation.
func (m *Manager) ExpertPromptContext(st *recipe.State, expert conversation.ExpertRole) (string, error) {
	profile, ok := st.Experts[expert]
	if !ok {
		return "", fmt.Errorf("no profile for expert %q", expert)
	}

	decisions := "None"
	if len(st.Context.DecisionsMade) > 0 {
		decisions = strings.Join(st.Context.DecisionsMade, ", ")
	}
	questions := "None"
	if len(st.Context.PendingQuestions) > 0 {
		questions = strings.Join(st.Context.PendingQuestions, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, a %s expert.\n\n", profile.Name, profile.Specialization)
	fmt.Fprintf(&b, "Your expertise focuses on: %s\n", strings.Join(profile.Concerns, ", "))
	fmt.Fprintf(&b, "Your communication style: %s\n\n", profile.CommunicationStyle)
	b.WriteString("CURRENT CONTEXT:\n")
	fmt.Fprintf(&b, "- Topic: %s\n", st.Context.Topic)
	fmt.Fprintf(&b, "- Phase: %s\n", st.Context.Phase)
	fmt.Fprintf(&b, "- Previous decisions: %s\n", decisions)
	fmt.Fprintf(&b, "- Pending questions: %s\n\n", questions)
	b.WriteString(m.FormatHistory(st, &expert))
	b.WriteString("\nYou are collaborating with other experts to create the perfect recipe. ")
	b.WriteString("Consider their input and respond naturally as your expert persona would.\n")
	return b.String(), nil
}
