package auth

import "strings"

// Known GitHub token prefixes
var githubTokenPrefixes = []string{"ghp_", "gho_", "ghu_", "ghs_", "ghr_", "github_pat_"}

// TokenSource records where a resolved token came from
type TokenSource string

const (
	SourceFlag    TokenSource = "flag"
	SourceEnv     TokenSource = "env"
	SourceKeyring TokenSource = "keyring"
)

// Token is a resolved GitHub credential
type Token struct {
	Value  string
	Source TokenSource
}

// String masks the token value so it is safe to log.
func (t Token) String() string {
	return MaskToken(t.Value) + " (" + string(t.Source) + ")"
}

// LooksLikeGitHubToken reports whether token carries a known GitHub prefix.
// Classic 40-char hex tokens are accepted as well.
func LooksLikeGitHubToken(token string) bool {
	for _, p := range githubTokenPrefixes {
		if strings.HasPrefix(token, p) {
			return true
		}
	}
	if len(token) != 40 {
		return false
	}
	for _, r := range token {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return false
		}
	}
	return true
}

// MaskToken returns a masked version of a token for display
// Example: ghp_a1b2****...****
func MaskToken(token string) string {
	const visible = 8
	if len(token) <= visible {
		return "****"
	}
	return token[:visible] + "****...****"
}
