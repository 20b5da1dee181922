package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpertRole_IsValid(t *testing.T) {
	for _, role := range AllRoles() {
		assert.True(t, role.IsValid(), role)
	}
	assert.False(t, ExpertRole("sommelier").IsValid())
}

func TestMessageType_IsValid(t *testing.T) {
	assert.True(t, TypeFinalDecision.IsValid())
	assert.False(t, MessageType("rant").IsValid())
}

func TestMessage_Addressing(t *testing.T) {
	chef := RoleChef
	targeted := Message{From: RoleSeasonalExpert, To: &chef}
	broadcast := Message{From: RoleChef}

	assert.True(t, targeted.AddressedTo(RoleChef))
	assert.False(t, targeted.AddressedTo(RoleSeasonalExpert))
	assert.False(t, targeted.IsBroadcast())
	assert.True(t, broadcast.IsBroadcast())
	assert.False(t, broadcast.AddressedTo(RoleChef))
}

func TestDefaultProfiles_NutritionistHasNoProfile(t *testing.T) {
	profiles := DefaultProfiles()

	assert.Len(t, profiles, 3)
	assert.NotContains(t, profiles, RoleNutritionist)
	assert.Equal(t, "Dr. Maya Chen", profiles[RolePsychonutritionist].Name)
	assert.Equal(t, "Chef Marco Rossi", profiles[RoleSeasonalExpert].Name)
	assert.Equal(t, "Chef Isabella Laurent", profiles[RoleChef].Name)
}

func TestContext_CloneIsIndependent(t *testing.T) {
	ctx := NewContext()
	assert.Equal(t, DefaultTopic, ctx.Topic)
	assert.Equal(t, PhasePlanning, ctx.Phase)

	clone := ctx.Clone()
	clone.DecisionsMade = append(clone.DecisionsMade, "use walnuts")

	assert.Empty(t, ctx.DecisionsMade)
}
