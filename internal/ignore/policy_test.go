package ignore

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMetadataDirAlwaysIgnored(t *testing.T) {
	root := filepath.Join("/", "work", "project")
	policy := NewPolicy(Config{Root: root, IncludePatterns: []string{"**/*"}})

	cases := []string{
		filepath.Join(root, ".git"),
		filepath.Join(root, ".git", "HEAD"),
		filepath.Join(root, ".git", "objects", "ab", "cdef"),
		filepath.Join(root, "sub", ".git", "config"),
	}
	for _, path := range cases {
		if !policy.ShouldIgnore(path) {
			t.Fatalf("expected %q to be ignored", path)
		}
	}

	if policy.ShouldIgnore(filepath.Join(root, ".github", "workflows", "ci.yml")) {
		t.Fatal(".github must not be treated as metadata")
	}
}

func TestExplicitIgnoreGlobs(t *testing.T) {
	root := filepath.Join("/", "work", "project")
	policy := NewPolicy(Config{
		Root:           root,
		IgnorePatterns: []string{"*.log", "build/**"},
	})

	if !policy.ShouldIgnore(filepath.Join(root, "server.log")) {
		t.Fatal("expected *.log to match at root")
	}
	if !policy.ShouldIgnore(filepath.Join(root, "sub", "nested.log")) {
		t.Fatal("expected *.log to match nested via basename")
	}
	if !policy.ShouldIgnore(filepath.Join(root, "build", "out", "bin")) {
		t.Fatal("expected build/** to match")
	}
	if policy.ShouldIgnore(filepath.Join(root, "main.go")) {
		t.Fatal("main.go must not be ignored")
	}
}

func TestIgnoreFileRules(t *testing.T) {
	root := filepath.Join("/", "work", "project")
	policy := NewPolicy(Config{
		Root: root,
		IgnoreFileRules: []string{
			"node_modules/",
			"*.tmp",
			"/dist",
			"!keep.tmp",
		},
	})

	cases := []struct {
		path string
		want bool
	}{
		{filepath.Join(root, "node_modules", "pkg", "index.js"), true},
		{filepath.Join(root, "sub", "node_modules", "x"), true},
		{filepath.Join(root, "scratch.tmp"), true},
		{filepath.Join(root, "deep", "scratch.tmp"), true},
		{filepath.Join(root, "keep.tmp"), false},
		{filepath.Join(root, "dist", "app.js"), true},
		{filepath.Join(root, "sub", "dist", "app.js"), false},
		{filepath.Join(root, "src", "main.go"), false},
	}
	for _, tc := range cases {
		if got := policy.ShouldIgnore(tc.path); got != tc.want {
			t.Fatalf("ShouldIgnore(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestShouldWatchIncludePatterns(t *testing.T) {
	root := filepath.Join("/", "work", "project")

	unrestricted := NewPolicy(Config{Root: root})
	if !unrestricted.ShouldWatch(filepath.Join(root, "anything.bin")) {
		t.Fatal("no include patterns must watch everything")
	}

	goOnly := NewPolicy(Config{Root: root, IncludePatterns: []string{"**/*.go"}})
	if !goOnly.ShouldWatch(filepath.Join(root, "sub", "main.go")) {
		t.Fatal("expected nested .go file to be watched")
	}
	if goOnly.ShouldWatch(filepath.Join(root, "README.md")) {
		t.Fatal("expected README.md to be excluded by includes")
	}
}

func TestPolicyIsDeterministic(t *testing.T) {
	root := filepath.Join("/", "work", "project")
	policy := NewPolicy(Config{
		Root:            root,
		IncludePatterns: []string{"**/*.txt"},
		IgnorePatterns:  []string{"*.bak"},
		IgnoreFileRules: []string{"tmp/"},
	})
	path := filepath.Join(root, "tmp", "note.txt")

	first := policy.ShouldIgnore(path)
	for i := 0; i < 100; i++ {
		if policy.ShouldIgnore(path) != first {
			t.Fatal("ShouldIgnore must be deterministic")
		}
	}
	watch := policy.ShouldWatch(path)
	for i := 0; i < 100; i++ {
		if policy.ShouldWatch(path) != watch {
			t.Fatal("ShouldWatch must be deterministic")
		}
	}
}

func TestLoadIgnoreFile(t *testing.T) {
	root := t.TempDir()
	payload := "# comment\n\n*.log\nbuild/\n!important.log\n"
	if err := os.WriteFile(filepath.Join(root, IgnoreFileName), []byte(payload), 0o600); err != nil {
		t.Fatalf("write ignore file: %v", err)
	}

	lines := LoadIgnoreFile(root)
	want := []string{"*.log", "build/", "!important.log"}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %v", len(want), lines)
	}
	for i, line := range want {
		if lines[i] != line {
			t.Fatalf("line %d = %q, want %q", i, lines[i], line)
		}
	}
}

func TestLoadIgnoreFileMissing(t *testing.T) {
	if lines := LoadIgnoreFile(t.TempDir()); lines != nil {
		t.Fatalf("expected nil for missing ignore file, got %v", lines)
	}
}
