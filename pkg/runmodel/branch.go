package runmodel

import "strings"

// branchSuffix is the fixed literal marker appended to every derived branch
// name (spec.md §3 BranchName).
const branchSuffix = "AI_FIX"

// DeriveBranchName computes the deterministic branch name for a team/leader
// pair: uppercase each, strip non-alphanumerics, collapse to a single
// underscore-joined token, then append the fixed suffix. Total and pure —
// every input, including empty strings, produces a value.
func DeriveBranchName(team, leader string) string {
	return normalizeToken(team) + "_" + normalizeToken(leader) + "_" + branchSuffix
}

// normalizeToken uppercases s and strips every rune that is not an ASCII
// letter or digit (accented and other non-ASCII letters are stripped too),
// per spec.md §3's "strip non-alphanumerics" rule.
func normalizeToken(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
