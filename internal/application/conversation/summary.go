package conversation

import (
	"sort"

	"github.com/alchemorsel/marco/internal/domain/conversation"
	"github.com/alchemorsel/marco/internal/domain/recipe"
)

// KeyMessageCount is how many key messages a summary keeps
const KeyMessageCount = 3

// Summary is a compact view of a finished conversation
type Summary struct {
	Participants     []string
	TotalMessages    int
	Phase            string
	ConsensusReached bool
	Decisions        []string
	// KeyMessages are the last approvals, concerns, modifications and final
	// decisions, oldest first
	KeyMessages []conversation.Message
}

// Summarize builds the summary of st's conversation
func Summarize(st *recipe.State) Summary {
	s := Summary{
		TotalMessages:    len(st.Conversation),
		Phase:            st.Context.Phase,
		ConsensusReached: st.Context.ConsensusReached,
		Decisions:        append([]string{}, st.Context.DecisionsMade...),
	}
	for _, p := range st.Experts {
		s.Participants = append(s.Participants, p.Name)
	}
	sort.Strings(s.Participants)

	for i := len(st.Conversation) - 1; i >= 0 && len(s.KeyMessages) < KeyMessageCount; i-- {
		msg := st.Conversation[i]
		if isKey(msg.Type) {
			s.KeyMessages = append(s.KeyMessages, msg)
		}
	}
	for i, j := 0, len(s.KeyMessages)-1; i < j; i, j = i+1, j-1 {
		s.KeyMessages[i], s.KeyMessages[j] = s.KeyMessages[j], s.KeyMessages[i]
	}
	return s
}

func isKey(t conversation.MessageType) bool {
	switch t {
	case conversation.TypeApproval, conversation.TypeConcern,
		conversation.TypeModification, conversation.TypeFinalDecision:
		return true
	}
	return false
}
