package auth

import (
	"os"
	"strings"

	radarerrors "radar/internal/errors"
	"radar/internal/logging"
)

// EnvVar is the environment variable consulted for the GitHub token.
const EnvVar = "GITHUB_TOKEN"

// TokenStore is the subset of Keyring the resolver needs.
type TokenStore interface {
	GetGitHubToken() (string, error)
}

// Resolver picks the GitHub token to use.
// Precedence: explicit flag, then GITHUB_TOKEN, then the OS keyring.
type Resolver struct {
	store  TokenStore
	getenv func(string) string
	logger *logging.Logger
}

// NewResolver creates a resolver backed by store. store may be nil to skip
// the keyring lookup.
func NewResolver(store TokenStore, logger *logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Resolver{store: store, getenv: os.Getenv, logger: logger}
}

// Resolve returns the first non-empty token. It fails with TOKEN_MISSING
// when no source yields one.
func (r *Resolver) Resolve(flagValue string) (Token, error) {
	if v := strings.TrimSpace(flagValue); v != "" {
		return r.found(Token{Value: v, Source: SourceFlag}), nil
	}
	if v := strings.TrimSpace(r.getenv(EnvVar)); v != "" {
		return r.found(Token{Value: v, Source: SourceEnv}), nil
	}
	if r.store != nil {
		v, err := r.store.GetGitHubToken()
		if err != nil {
			// An unreachable keyring is treated as an empty one.
			r.logger.Debug("Keyring lookup skipped", map[string]interface{}{"error": err.Error()})
		} else if v != "" {
			return r.found(Token{Value: v, Source: SourceKeyring}), nil
		}
	}

	return Token{}, radarerrors.NewRadarError(
		radarerrors.TokenMissing,
		"no GitHub token: pass --token, set GITHUB_TOKEN, or store one with radar init --store-token",
		nil,
		radarerrors.GetSuggestedFixes(radarerrors.TokenMissing),
	)
}

func (r *Resolver) found(t Token) Token {
	if !LooksLikeGitHubToken(t.Value) {
		r.logger.Warn("Token does not look like a GitHub token", map[string]interface{}{"source": string(t.Source)})
	}
	r.logger.Debug("Resolved GitHub token", map[string]interface{}{"token": t.String()})
	return t
}
