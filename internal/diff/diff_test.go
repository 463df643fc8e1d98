package diff

import (
	"strings"
	"testing"
)

func TestUnifiedSingleLineReplace(t *testing.T) {
	body := Unified("hello\n", "hello world\n")
	if body != "-hello\n+hello world\n" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestUnifiedHasNoHeadersOrHunkMarkers(t *testing.T) {
	body := Unified("a\nb\nc\n", "a\nB\nc\nd\n")
	for _, forbidden := range []string{"---", "+++", "@@"} {
		if strings.Contains(body, forbidden) {
			t.Fatalf("body contains %q:\n%s", forbidden, body)
		}
	}
	for _, line := range strings.SplitAfter(body, "\n") {
		if line == "" {
			continue
		}
		if line[0] != '-' && line[0] != '+' {
			t.Fatalf("unexpected line %q in body", line)
		}
	}
}

func TestUnifiedEqualContentIsEmpty(t *testing.T) {
	if body := Unified("same\ncontent\n", "same\ncontent\n"); body != "" {
		t.Fatalf("expected empty body, got %q", body)
	}
	if body := Unified("", ""); body != "" {
		t.Fatalf("expected empty body for empty inputs, got %q", body)
	}
}

func TestApplyRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		old  string
		new  string
	}{
		{"replace line", "hello\n", "hello world\n"},
		{"create", "", "fresh\nfile\n"},
		{"delete all", "doomed\ncontent\n", ""},
		{"insert middle", "a\nb\n", "a\nx\nb\n"},
		{"insert front", "a\nb\n", "x\na\nb\n"},
		{"append", "a\nb\n", "a\nb\nc\n"},
		{"delete middle", "a\nb\nc\n", "a\nc\n"},
		{"full rewrite", "one\ntwo\n", "three\nfour\nfive\n"},
		{"no trailing newline old", "alpha", "alpha\nbeta\n"},
		{"no trailing newline new", "alpha\nbeta\n", "beta"},
		{"disjoint edits", "a\nb\nc\nd\ne\n", "a\nB\nc\nd\nE\n"},
		{"repeated lines", "x\nx\nx\n", "x\nx\n"},
		{"interleaved", "a\nb\nc\n", "b\na\nc\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hunks := Compute(tc.old, tc.new)
			applied, err := Apply(tc.old, hunks)
			if err != nil {
				t.Fatalf("apply: %v", err)
			}
			if applied != tc.new {
				t.Fatalf("round trip mismatch: got %q, want %q", applied, tc.new)
			}
		})
	}
}

func TestRenderMatchesComputedHunks(t *testing.T) {
	old := "a\nb\nc\n"
	new := "a\nc\nd\n"
	body := Unified(old, new)
	if body != "-b\n+d\n" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestApplyRejectsMismatchedHunks(t *testing.T) {
	hunks := []Hunk{{OldStart: 0, Deleted: []string{"missing\n"}}}
	if _, err := Apply("present\n", hunks); err == nil {
		t.Fatal("expected mismatch error")
	}

	outOfRange := []Hunk{{OldStart: 5, Inserted: []string{"x\n"}}}
	if _, err := Apply("a\n", outOfRange); err == nil {
		t.Fatal("expected out of range error")
	}
}

func TestComputeZeroContext(t *testing.T) {
	hunks := Compute("keep\nold\nkeep\n", "keep\nnew\nkeep\n")
	if len(hunks) != 1 {
		t.Fatalf("expected 1 hunk, got %d", len(hunks))
	}
	hunk := hunks[0]
	if len(hunk.Deleted) != 1 || hunk.Deleted[0] != "old\n" {
		t.Fatalf("unexpected deletions %q", hunk.Deleted)
	}
	if len(hunk.Inserted) != 1 || hunk.Inserted[0] != "new\n" {
		t.Fatalf("unexpected insertions %q", hunk.Inserted)
	}
	if hunk.OldStart != 1 {
		t.Fatalf("expected hunk at line 1, got %d", hunk.OldStart)
	}
}
