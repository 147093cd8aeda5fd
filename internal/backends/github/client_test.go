package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"radar/internal/config"
	radarerrors "radar/internal/errors"
)

type fakeCommit struct {
	sha    string
	author string
	files  []string
	// status, when set, is returned instead of the commit.
	status int
}

// newFakeGitHub serves the handful of endpoints the client uses.
func newFakeGitHub(t *testing.T, commits []fakeCommit, contents map[string]string) (*httptest.Server, *int32) {
	t.Helper()
	var commitFetches int32
	mux := http.NewServeMux()

	mux.HandleFunc("/repos/acme/widgets/commits", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("since") == "" {
			t.Errorf("commits listed without since parameter")
		}
		var list []map[string]interface{}
		for _, c := range commits {
			list = append(list, map[string]interface{}{
				"sha":    c.sha,
				"author": map[string]interface{}{"login": c.author},
				"commit": map[string]interface{}{
					"author": map[string]interface{}{"name": c.author, "date": "2024-05-01T12:00:00Z"},
				},
			})
		}
		json.NewEncoder(w).Encode(list)
	})

	mux.HandleFunc("/repos/acme/widgets/commits/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&commitFetches, 1)
		sha := strings.TrimPrefix(r.URL.Path, "/repos/acme/widgets/commits/")
		for _, c := range commits {
			if c.sha != sha {
				continue
			}
			if c.status != 0 {
				w.WriteHeader(c.status)
				fmt.Fprint(w, `{"message":"upstream failure"}`)
				return
			}
			var files []map[string]interface{}
			for _, f := range c.files {
				files = append(files, map[string]interface{}{"filename": f, "additions": 2, "deletions": 1})
			}
			json.NewEncoder(w).Encode(map[string]interface{}{"sha": sha, "files": files})
			return
		}
		http.NotFound(w, r)
	})

	mux.HandleFunc("/repos/acme/widgets/contents/", func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/repos/acme/widgets/contents/")
		body, ok := contents[path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message":"Not Found"}`)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"type":     "file",
			"name":     path,
			"path":     path,
			"encoding": "base64",
			"content":  base64.StdEncoding.EncodeToString([]byte(body)),
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &commitFetches
}

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := NewClient(Options{
		Owner:          "acme",
		Repo:           "widgets",
		Token:          "ghp_test",
		RequestsPerSec: 1000,
		Burst:          100,
		Workers:        4,
		BaseURL:        srv.URL,
	}, nil)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	c.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	return c
}

func TestClient_TopChangedFiles(t *testing.T) {
	srv, fetches := newFakeGitHub(t, []fakeCommit{
		{sha: "c1", author: "alice", files: []string{"src/main.rs", "src/lib.rs"}},
		{sha: "c2", author: "bob", files: []string{"src/main.rs"}},
		{sha: "c3", author: "alice", files: []string{"src/main.rs", "Cargo.toml"}},
		{sha: "c4", author: "carol", files: []string{"src/lib.rs"}},
	}, nil)
	c := newTestClient(t, srv)

	files, err := c.TopChangedFiles(context.Background(), 2)
	if err != nil {
		t.Fatalf("TopChangedFiles() error = %v", err)
	}
	if atomic.LoadInt32(fetches) != 4 {
		t.Errorf("expected 4 commit fetches, got %d", *fetches)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %+v", files)
	}
	if files[0].Path != "src/main.rs" || files[0].Changes != 3 || files[0].Authors != 2 {
		t.Errorf("files[0] = %+v", files[0])
	}
	if files[1].Path != "src/lib.rs" || files[1].Changes != 2 {
		t.Errorf("files[1] = %+v", files[1])
	}
	if files[0].Additions != 6 || files[0].Deletions != 3 {
		t.Errorf("line counts = +%d -%d", files[0].Additions, files[0].Deletions)
	}
}

func TestClient_TopChangedFiles_SkipsFailedCommit(t *testing.T) {
	srv, _ := newFakeGitHub(t, []fakeCommit{
		{sha: "good", author: "alice", files: []string{"src/lib.rs"}},
		{sha: "bad", author: "bob", files: []string{"src/main.rs"}, status: http.StatusBadGateway},
	}, nil)
	c := newTestClient(t, srv)

	files, err := c.TopChangedFiles(context.Background(), 5)
	if err != nil {
		t.Fatalf("TopChangedFiles() error = %v", err)
	}
	if len(files) != 1 || files[0].Path != "src/lib.rs" || files[0].Changes != 1 {
		t.Errorf("files = %+v, want only src/lib.rs", files)
	}
}

func TestClient_TopChangedFiles_AbortsOnCommitAuthFailure(t *testing.T) {
	srv, _ := newFakeGitHub(t, []fakeCommit{
		{sha: "good", files: []string{"src/lib.rs"}},
		{sha: "bad", files: []string{"src/main.rs"}, status: http.StatusUnauthorized},
	}, nil)

	_, err := newTestClient(t, srv).TopChangedFiles(context.Background(), 5)
	if !radarerrors.HasCode(err, radarerrors.TokenMissing) {
		t.Errorf("expected TOKEN_MISSING, got %v", err)
	}
}

func TestClient_TopChangedFiles_PagedCommitFiles(t *testing.T) {
	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/widgets/commits", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"sha":"big","commit":{"author":{"name":"alice","date":"2024-05-01T12:00:00Z"}}}]`)
	})
	mux.HandleFunc("/repos/acme/widgets/commits/big", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("per_page") != "100" {
			t.Errorf("per_page = %q", r.URL.Query().Get("per_page"))
		}
		switch r.URL.Query().Get("page") {
		case "", "1":
			w.Header().Set("Link", fmt.Sprintf(`<%s/repos/acme/widgets/commits/big?page=2&per_page=100>; rel="next"`, srv.URL))
			fmt.Fprint(w, `{"sha":"big","files":[{"filename":"src/a.rs"},{"filename":"src/b.rs"}]}`)
		case "2":
			fmt.Fprint(w, `{"sha":"big","files":[{"filename":"src/c.rs"}]}`)
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()

	files, err := newTestClient(t, srv).TopChangedFiles(context.Background(), 10)
	if err != nil {
		t.Fatalf("TopChangedFiles() error = %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("expected files from both pages, got %+v", files)
	}
	if files[2].Path != "src/c.rs" {
		t.Errorf("files[2] = %+v", files[2])
	}
}

func TestClient_MaxCommits(t *testing.T) {
	srv, fetches := newFakeGitHub(t, []fakeCommit{
		{sha: "c1", files: []string{"a.rs"}},
		{sha: "c2", files: []string{"b.rs"}},
		{sha: "c3", files: []string{"c.rs"}},
	}, nil)
	c := newTestClient(t, srv)
	c.maxCommits = 2

	files, err := c.TopChangedFiles(context.Background(), 10)
	if err != nil {
		t.Fatalf("TopChangedFiles() error = %v", err)
	}
	if len(files) != 2 || atomic.LoadInt32(fetches) != 2 {
		t.Errorf("expected two commits processed, got files=%+v fetches=%d", files, *fetches)
	}
}

func TestClient_ReadFile(t *testing.T) {
	srv, _ := newFakeGitHub(t, nil, map[string]string{
		"src/main.rs": "fn main() {}\n",
	})
	c := newTestClient(t, srv)

	data, err := c.ReadFile(context.Background(), "src/main.rs")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "fn main() {}\n" {
		t.Errorf("ReadFile() = %q", data)
	}

	_, err = c.ReadFile(context.Background(), "src/missing.rs")
	if !errors.Is(err, radarerrors.ErrSourceUnreadable) || !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing file: %v", err)
	}
}

func TestClient_ErrorTranslation(t *testing.T) {
	tests := []struct {
		name   string
		status int
		header map[string]string
		want   radarerrors.ErrorCode
	}{
		{"unauthorized", http.StatusUnauthorized, nil, radarerrors.TokenMissing},
		{"missing repository", http.StatusNotFound, nil, radarerrors.BackendUnavailable},
		{"rate limited", http.StatusForbidden, map[string]string{
			"X-RateLimit-Remaining": "0",
			"X-RateLimit-Reset":     fmt.Sprint(time.Now().Add(time.Hour).Unix()),
		}, radarerrors.RateLimited},
		{"server error", http.StatusBadGateway, nil, radarerrors.BackendUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tt.header {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tt.status)
				fmt.Fprint(w, `{"message":"nope"}`)
			}))
			defer srv.Close()

			_, err := newTestClient(t, srv).TopChangedFiles(context.Background(), 5)
			if !radarerrors.HasCode(err, tt.want) {
				t.Errorf("expected %s, got %v", tt.want, err)
			}
		})
	}
}

func TestNewClient_RequiresRepository(t *testing.T) {
	_, err := NewClient(Options{Owner: "acme"}, nil)
	if !radarerrors.HasCode(err, radarerrors.ConfigInvalid) {
		t.Errorf("expected CONFIG_INVALID, got %v", err)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.GitHub.Owner = "acme"
	cfg.GitHub.Repo = "widgets"
	cfg.Source.WindowDays = 30

	opts := OptionsFromConfig(cfg, "ghp_x")
	if opts.Owner != "acme" || opts.Repo != "widgets" || opts.Token != "ghp_x" || opts.WindowDays != 30 {
		t.Errorf("OptionsFromConfig() = %+v", opts)
	}

	c, err := NewClient(opts, nil)
	if err != nil {
		t.Fatal(err)
	}
	if c.ID() != BackendID || c.Repository() != "acme/widgets" {
		t.Errorf("client identity = %s %s", c.ID(), c.Repository())
	}
}
