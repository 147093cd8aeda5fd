package auth

import (
	"errors"
	"strings"
	"testing"

	"github.com/zalando/go-keyring"

	radarerrors "radar/internal/errors"
)

type fakeStore struct {
	token string
	err   error
	calls int
}

func (f *fakeStore) GetGitHubToken() (string, error) {
	f.calls++
	return f.token, f.err
}

func newTestResolver(store TokenStore, env map[string]string) *Resolver {
	r := NewResolver(store, nil)
	r.getenv = func(k string) string { return env[k] }
	return r
}

func TestResolver_Precedence(t *testing.T) {
	tests := []struct {
		name       string
		flag       string
		env        map[string]string
		store      *fakeStore
		wantValue  string
		wantSource TokenSource
	}{
		{
			name:       "flag wins over everything",
			flag:       "ghp_flag",
			env:        map[string]string{EnvVar: "ghp_env"},
			store:      &fakeStore{token: "ghp_keyring"},
			wantValue:  "ghp_flag",
			wantSource: SourceFlag,
		},
		{
			name:       "env wins over keyring",
			env:        map[string]string{EnvVar: "ghp_env"},
			store:      &fakeStore{token: "ghp_keyring"},
			wantValue:  "ghp_env",
			wantSource: SourceEnv,
		},
		{
			name:       "keyring is the fallback",
			store:      &fakeStore{token: "ghp_keyring"},
			wantValue:  "ghp_keyring",
			wantSource: SourceKeyring,
		},
		{
			name:       "whitespace flag is ignored",
			flag:       "   ",
			env:        map[string]string{EnvVar: " ghp_env \n"},
			store:      &fakeStore{},
			wantValue:  "ghp_env",
			wantSource: SourceEnv,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, err := newTestResolver(tt.store, tt.env).Resolve(tt.flag)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if tok.Value != tt.wantValue || tok.Source != tt.wantSource {
				t.Errorf("Resolve() = %+v, want %s from %s", tok, tt.wantValue, tt.wantSource)
			}
		})
	}
}

func TestResolver_KeyringNotConsultedWhenFlagSet(t *testing.T) {
	store := &fakeStore{token: "ghp_keyring"}
	if _, err := newTestResolver(store, nil).Resolve("ghp_flag"); err != nil {
		t.Fatal(err)
	}
	if store.calls != 0 {
		t.Errorf("keyring consulted %d times", store.calls)
	}
}

func TestResolver_Missing(t *testing.T) {
	for name, store := range map[string]TokenStore{
		"empty keyring":  &fakeStore{},
		"broken keyring": &fakeStore{err: errors.New("dbus not running")},
		"no keyring":     nil,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := newTestResolver(store, nil).Resolve("")
			if !errors.Is(err, radarerrors.ErrTokenMissing) {
				t.Fatalf("expected TOKEN_MISSING, got %v", err)
			}
			var re *radarerrors.RadarError
			if !errors.As(err, &re) || len(re.SuggestedFixes) == 0 {
				t.Errorf("expected suggested fixes on %v", err)
			}
		})
	}
}

func TestKeyring_RoundTrip(t *testing.T) {
	keyring.MockInit()
	k := NewKeyring(nil)

	got, err := k.GetGitHubToken()
	if err != nil || got != "" {
		t.Fatalf("empty keyring: got %q, err %v", got, err)
	}

	if err := k.SetGitHubToken(""); !errors.Is(err, ErrEmptyToken) {
		t.Errorf("SetGitHubToken(\"\") = %v, want ErrEmptyToken", err)
	}
	if err := k.SetGitHubToken("ghp_stored"); err != nil {
		t.Fatalf("SetGitHubToken() error = %v", err)
	}
	if got, _ := k.GetGitHubToken(); got != "ghp_stored" {
		t.Errorf("GetGitHubToken() = %q", got)
	}

	tok, err := newTestResolver(k, nil).Resolve("")
	if err != nil || tok.Source != SourceKeyring {
		t.Errorf("resolver with keyring = %+v, %v", tok, err)
	}

	if err := k.DeleteGitHubToken(); err != nil {
		t.Fatalf("DeleteGitHubToken() error = %v", err)
	}
	if err := k.DeleteGitHubToken(); err != nil {
		t.Errorf("second delete should be a no-op, got %v", err)
	}
}

func TestMaskToken(t *testing.T) {
	tests := map[string]string{
		"":                     "****",
		"short":                "****",
		"ghp_abcdefghijklmnop": "ghp_abcd****...****",
	}
	for in, want := range tests {
		if got := MaskToken(in); got != want {
			t.Errorf("MaskToken(%q) = %q, want %q", in, got, want)
		}
	}

	tok := Token{Value: "ghp_abcdefghijklmnop", Source: SourceEnv}
	if s := tok.String(); strings.Contains(s, "ijklmnop") || !strings.HasSuffix(s, "(env)") {
		t.Errorf("Token.String() leaked or mislabeled: %q", s)
	}
}

func TestLooksLikeGitHubToken(t *testing.T) {
	tests := []struct {
		token string
		want  bool
	}{
		{"ghp_xxxxxxxxxxxxxxxx", true},
		{"github_pat_11AAAA", true},
		{"0123456789abcdef0123456789abcdef01234567", true},
		{"0123456789ABCDEF0123456789ABCDEF01234567", false},
		{"not-a-token", false},
	}
	for _, tt := range tests {
		if got := LooksLikeGitHubToken(tt.token); got != tt.want {
			t.Errorf("LooksLikeGitHubToken(%q) = %v, want %v", tt.token, got, tt.want)
		}
	}
}
