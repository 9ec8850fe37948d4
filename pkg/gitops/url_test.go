package gitops

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRepoURL(t *testing.T) {
	cases := []struct {
		name      string
		input     string
		wantOwner string
		wantRepo  string
	}{
		{"plain", "https://github.com/acme/widgets", "acme", "widgets"},
		{"dot-git suffix", "https://github.com/acme/widgets.git", "acme", "widgets"},
		{"trailing slash", "https://github.com/acme/widgets/", "acme", "widgets"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			parts, err := ParseRepoURL(tc.input)
			require.NoError(t, err)
			require.Equal(t, tc.wantOwner, parts.Owner)
			require.Equal(t, tc.wantRepo, parts.Repo)
		})
	}
}

func TestParseRepoURLRejectsNonGitHub(t *testing.T) {
	_, err := ParseRepoURL("https://gitlab.com/acme/widgets")
	require.Error(t, err)
}

func TestParseRepoURLRejectsNonHTTPS(t *testing.T) {
	_, err := ParseRepoURL("http://github.com/acme/widgets")
	require.Error(t, err)
}

func TestParseRepoURLRejectsMalformed(t *testing.T) {
	_, err := ParseRepoURL("https://github.com/acme")
	require.Error(t, err)
}
