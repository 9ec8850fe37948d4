package runmodel

import "testing"

func TestDeriveBranchName(t *testing.T) {
	cases := []struct {
		name, team, leader, want string
	}{
		{"simple", "Acme Corp", "Jane Doe", "ACMECORP_JANEDOE_AI_FIX"},
		{"punctuation stripped", "Team-9!", "O'Brien", "TEAM9_OBRIEN_AI_FIX"},
		{"empty inputs", "", "", "__AI_FIX"},
		{"already upper", "RED", "BLUE", "RED_BLUE_AI_FIX"},
		{"unicode stripped", "Café Team", "leader", "CAFTEAM_LEADER_AI_FIX"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DeriveBranchName(tc.team, tc.leader)
			if got != tc.want {
				t.Fatalf("DeriveBranchName(%q, %q) = %q, want %q", tc.team, tc.leader, got, tc.want)
			}
		})
	}
}

func TestDeriveBranchNameNoWhitespace(t *testing.T) {
	got := DeriveBranchName("a team with spaces", "a leader  too")
	for _, r := range got {
		if r == ' ' || r == '\t' || r == '\n' {
			t.Fatalf("branch name %q contains whitespace", got)
		}
	}
}
