//go:build cgo

package hotspots

import (
	"context"
	"errors"
	"testing"
	"time"

	"radar/internal/complexity"
	radarerrors "radar/internal/errors"
)

func newTestSource() *fakeSource {
	return &fakeSource{
		changes: []FileChange{
			{Path: "crates/core/src/lib.rs", Changes: 9, Authors: 3},
			{Path: "README.md", Changes: 7},
			{Path: "src/main.rs", Changes: 7, Authors: 1},
			{Path: "src/broken.rs", Changes: 4},
			{Path: "src/deleted.rs", Changes: 3},
			{Path: "scripts/gen.py", Changes: 2},
		},
		files: map[string]string{
			"Cargo.toml":             "[package]\nname = \"app\"\n",
			"crates/core/Cargo.toml": "[package]\nname = \"core\"\n",
			"crates/core/src/lib.rs": "pub fn parse(x: i32) -> i32 {\n    for i in 0..x {\n        if i > 2 { return i; }\n    }\n    0\n}\n\npub fn id(x: i32) -> i32 { x }\n",
			"src/main.rs":            "fn main() {\n    if true {}\n}\n",
			"src/broken.rs":          "fn broken( {\n",
			"README.md":              "# readme\n",
		},
	}
}

func newTestScanner(src Source) *Scanner {
	s := NewScanner(src, complexity.NewAnalyzer(nil), nil)
	s.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestScanner_Scan(t *testing.T) {
	src := newTestSource()
	report, err := newTestScanner(src).Scan(context.Background(), ScanOptions{
		Repository:    "acme/widgets",
		SourceName:    "github",
		Limit:         6,
		Workers:       3,
		ResolveCrates: true,
	})
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if report.RunID == "" || report.Repository != "acme/widgets" || report.Source != "github" {
		t.Errorf("report header = %+v", report)
	}
	if !report.GeneratedAt.Equal(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("GeneratedAt = %v", report.GeneratedAt)
	}

	wantOrder := []string{"crates/core/src/lib.rs", "README.md", "src/main.rs", "src/broken.rs", "src/deleted.rs", "scripts/gen.py"}
	if len(report.Rows) != len(wantOrder) {
		t.Fatalf("expected %d rows, got %d", len(wantOrder), len(report.Rows))
	}
	for i, p := range wantOrder {
		if report.Rows[i].Path != p {
			t.Errorf("rows[%d] = %s, want %s", i, report.Rows[i].Path, p)
		}
	}

	lib := report.Rows[0]
	if lib.Status != StatusAnalyzed || lib.Crate != "core" {
		t.Errorf("lib.rs = %+v", lib)
	}
	// for 1 + nested if 2 = 3
	if lib.MaxCognitive != 3 || lib.Total != 3 || len(lib.Functions) != 2 {
		t.Errorf("lib.rs scores: max=%d total=%d functions=%+v", lib.MaxCognitive, lib.Total, lib.Functions)
	}
	if lib.Hotness != 27 {
		t.Errorf("lib.rs hotness = %d, want 27", lib.Hotness)
	}
	if lib.Score <= 0 || lib.Score >= 1 {
		t.Errorf("lib.rs normalized score = %f", lib.Score)
	}

	main := report.Rows[2]
	if main.Status != StatusAnalyzed || main.Crate != "app" || main.MaxCognitive != 1 || main.Hotness != 7 {
		t.Errorf("main.rs = %+v", main)
	}

	if r := report.Rows[1]; r.Status != StatusSkipped || r.Hotness != 0 {
		t.Errorf("README.md = %+v", r)
	}
	if r := report.Rows[5]; r.Status != StatusSkipped || r.Language != complexity.LangPython {
		t.Errorf("gen.py = %+v", r)
	}
	if r := report.Rows[3]; r.Status != StatusFailed || r.ErrorCode != string(radarerrors.ParseFailed) {
		t.Errorf("broken.rs = %+v", r)
	}
	if r := report.Rows[4]; r.Status != StatusFailed || r.ErrorCode != string(radarerrors.SourceUnreadable) {
		t.Errorf("deleted.rs = %+v", r)
	}

	if report.Analyzed != 2 || report.Skipped != 2 || report.Failed != 2 {
		t.Errorf("counts analyzed=%d skipped=%d failed=%d", report.Analyzed, report.Skipped, report.Failed)
	}

	// unsupported files are never fetched
	if src.readCount("README.md") != 0 || src.readCount("scripts/gen.py") != 0 {
		t.Error("skipped files should not be read")
	}
}

func TestScanner_LimitAndSupportedOnly(t *testing.T) {
	report, err := newTestScanner(newTestSource()).Scan(context.Background(), ScanOptions{Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Rows) != 2 || report.Rows[1].Path != "README.md" {
		t.Errorf("limit 2 rows = %+v", report.Rows)
	}

	report, err = newTestScanner(newTestSource()).Scan(context.Background(), ScanOptions{Limit: 2, SupportedOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Rows) != 2 || report.Rows[0].Path != "crates/core/src/lib.rs" || report.Rows[1].Path != "src/main.rs" {
		t.Errorf("supported-only rows = %+v", report.Rows)
	}
	if report.Rows[0].Crate != "" {
		t.Errorf("crate resolved without ResolveCrates: %q", report.Rows[0].Crate)
	}
}

func TestScanner_SourceError(t *testing.T) {
	boom := radarerrors.NewRadarError(radarerrors.RateLimited, "slow down", nil, nil)
	_, err := newTestScanner(&fakeSource{listErr: boom}).Scan(context.Background(), ScanOptions{Limit: 5})
	if !errors.Is(err, boom) {
		t.Errorf("Scan() = %v, want source error", err)
	}
}

func TestScanner_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestScanner(newTestSource()).Scan(ctx, ScanOptions{Limit: 5})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Scan() = %v, want context.Canceled", err)
	}
}

func TestScanner_RunIDsAreUnique(t *testing.T) {
	s := newTestScanner(newTestSource())
	a, _ := s.Scan(context.Background(), ScanOptions{Limit: 1})
	b, _ := s.Scan(context.Background(), ScanOptions{Limit: 1})
	if a.RunID == b.RunID {
		t.Errorf("duplicate run id %s", a.RunID)
	}
}
