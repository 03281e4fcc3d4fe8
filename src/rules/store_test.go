package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/chainlink-tools/safe-fetch/src/config"
)

func TestLoad_NoRulesFile(t *testing.T) {
	s := newTestStore(t, t.TempDir())

	rs := s.Load()
	if len(rs) != 1 {
		t.Fatalf("rule count = %d, want 1 (built-in only)", len(rs))
	}
	if rs[0] != Builtin {
		t.Errorf("rule = %+v, want built-in", rs[0])
	}
}

func TestLoad_ParsesRulesFile(t *testing.T) {
	root := t.TempDir()
	writeRules(t, root, "evil_string|||[REMOVED]\nanother(pattern)?|||X\n")
	s := newTestStore(t, root)

	rs := s.Load()
	if len(rs) != 3 {
		t.Fatalf("rule count = %d, want 3 (2 loaded + built-in)", len(rs))
	}
	if rs[0].Pattern != "evil_string" || rs[0].Replacement != "[REMOVED]" {
		t.Errorf("rule[0] = %+v", rs[0])
	}
	if rs[1].Pattern != "another(pattern)?" || rs[1].Replacement != "X" {
		t.Errorf("rule[1] = %+v", rs[1])
	}
	if rs[2] != Builtin {
		t.Errorf("rule[2] = %+v, want built-in appended last", rs[2])
	}
}

func TestLoad_SkipsCommentsAndBlanks(t *testing.T) {
	root := t.TempDir()
	writeRules(t, root, "# a comment\n\n  \na|||b\n# another\n")
	s := newTestStore(t, root)

	rs := s.Load()
	if len(rs) != 2 {
		t.Fatalf("rule count = %d, want 2", len(rs))
	}
	if rs[0].Pattern != "a" || rs[0].Replacement != "b" {
		t.Errorf("rule[0] = %+v", rs[0])
	}
}

func TestLoad_SkipsMalformedLines(t *testing.T) {
	root := t.TempDir()
	// One field, three fields, and a valid line in between.
	writeRules(t, root, "nodelimiter\ngood|||ok\na|||b|||c\n")
	s := newTestStore(t, root)

	rs := s.Load()
	if len(rs) != 2 {
		t.Fatalf("rule count = %d, want 2 (1 valid + built-in)", len(rs))
	}
	if rs[0].Pattern != "good" || rs[0].Replacement != "ok" {
		t.Errorf("rule[0] = %+v", rs[0])
	}
}

func TestLoad_TrimsFields(t *testing.T) {
	root := t.TempDir()
	writeRules(t, root, "  spaced  |||  [GONE]  \n")
	s := newTestStore(t, root)

	rs := s.Load()
	if rs[0].Pattern != "spaced" || rs[0].Replacement != "[GONE]" {
		t.Errorf("rule[0] = %+v, want trimmed fields", rs[0])
	}
}

func TestLoad_BuiltinNotDuplicated(t *testing.T) {
	root := t.TempDir()
	writeRules(t, root, Builtin.Pattern+"|||custom_replacement\n")
	s := newTestStore(t, root)

	rs := s.Load()
	if len(rs) != 1 {
		t.Fatalf("rule count = %d, want 1 (file rule shadows built-in)", len(rs))
	}
	if rs[0].Replacement != "custom_replacement" {
		t.Errorf("replacement = %q, want file version kept", rs[0].Replacement)
	}
}

func TestLoad_OrderPreserved(t *testing.T) {
	root := t.TempDir()
	writeRules(t, root, "first|||1\nsecond|||2\nthird|||3\n")
	s := newTestStore(t, root)

	for i := 0; i < 3; i++ {
		rs := s.Load()
		want := []string{"first", "second", "third", Builtin.Pattern}
		if len(rs) != len(want) {
			t.Fatalf("rule count = %d, want %d", len(rs), len(want))
		}
		for j, p := range want {
			if rs[j].Pattern != p {
				t.Errorf("load %d: rule[%d].Pattern = %q, want %q", i, j, rs[j].Pattern, p)
			}
		}
	}
}

func TestFindMarkerDir_FindsAncestor(t *testing.T) {
	base := t.TempDir()
	marker := filepath.Join(base, ".chainlink")
	deep := filepath.Join(base, "a", "b", "c")
	if err := os.MkdirAll(marker, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(deep, 0755); err != nil {
		t.Fatal(err)
	}

	got, ok := FindMarkerDir(deep, ".chainlink", 10)
	if !ok {
		t.Fatal("expected marker dir to be found")
	}
	if got != marker {
		t.Errorf("marker = %q, want %q", got, marker)
	}
}

func TestFindMarkerDir_RespectsBound(t *testing.T) {
	base := t.TempDir()
	marker := filepath.Join(base, ".chainlink")
	deep := filepath.Join(base, "a", "b", "c", "d")
	if err := os.MkdirAll(marker, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(deep, 0755); err != nil {
		t.Fatal(err)
	}

	// The marker is 4 levels up; a bound of 3 must not reach it.
	if _, ok := FindMarkerDir(deep, ".chainlink", 3); ok {
		t.Error("marker should not be found within 3 levels")
	}
	if _, ok := FindMarkerDir(deep, ".chainlink", 5); !ok {
		t.Error("marker should be found within 5 levels")
	}
}

func TestFindMarkerDir_NotFound(t *testing.T) {
	if _, ok := FindMarkerDir(t.TempDir(), ".does-not-exist", 10); ok {
		t.Error("expected no marker dir")
	}
}

// newTestStore builds a Store pointed at an explicit root, bypassing
// working-directory discovery.
func newTestStore(t *testing.T, root string) *Store {
	t.Helper()
	return NewStore(config.RulesConfig{
		Root:      root,
		MarkerDir: ".chainlink",
		File:      "rules/sanitize-patterns.txt",
		MaxAscent: 10,
	}, zerolog.Nop())
}

func writeRules(t *testing.T, root, content string) {
	t.Helper()
	dir := filepath.Join(root, "rules")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sanitize-patterns.txt"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}
