package conversation

// DefaultProfiles returns the fixed persona table used by the collaborative
// steps. Only three roles have a profile; the nutritionist is left out.
func DefaultProfiles() map[ExpertRole]Profile {
	return map[ExpertRole]Profile{
		RolePsychonutritionist: {
			Role:           RolePsychonutritionist,
			Name:           "Dr. Maya Chen",
			Specialization: "Psychonutrition and anxiety management",
			Concerns: []string{
				"anxiety-reducing nutrients",
				"mood-stabilizing compounds",
				"stress-response optimization",
				"gut-brain axis health",
			},
			CommunicationStyle: "Scientific but approachable, focuses on evidence-based nutrition",
		},
		RoleSeasonalExpert: {
			Role:           RoleSeasonalExpert,
			Name:           "Chef Marco Rossi",
			Specialization: "Seasonal and sustainable cooking",
			Concerns: []string{
				"ingredient seasonality",
				"local availability",
				"environmental impact",
				"peak flavor timing",
			},
			CommunicationStyle: "Passionate about seasonality, speaks from experience with local farms",
		},
		RoleChef: {
			Role:           RoleChef,
			Name:           "Chef Isabella Laurent",
			Specialization: "Culinary technique and flavor harmony",
			Concerns: []string{
				"cooking techniques",
				"flavor balance",
				"texture combinations",
				"presentation",
				"cooking times and temperatures",
			},
			CommunicationStyle: "Detail-oriented, focuses on technique and perfect execution",
		},
	}
}
