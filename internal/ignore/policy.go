// Package ignore decides which paths the watcher tracks. A Policy combines
// three rule sources: the fixed version-control metadata exclusion, explicit
// ignore globs, and rules loaded once from the root's ignore file. After
// construction a Policy is immutable and its predicates are pure.
package ignore

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"editwatch/internal/fsutil"
)

// MetadataDir is always excluded, at any depth, regardless of configuration.
const MetadataDir = ".git"

type Policy struct {
	root     string
	includes []string
	ignores  []string
	rules    []rule
}

// rule is one compiled ignore-file line. Evaluation order matters: the last
// matching rule decides, so a later negated rule can un-ignore a path.
type rule struct {
	pattern string
	negate  bool
}

// Config holds the static inputs of a Policy.
type Config struct {
	Root            string
	IncludePatterns []string
	IgnorePatterns  []string
	// IgnoreFileRules are pre-parsed ignore-file lines, normally produced by
	// LoadIgnoreFile at construction time.
	IgnoreFileRules []string
}

func NewPolicy(config Config) *Policy {
	policy := &Policy{
		root:     config.Root,
		includes: append([]string(nil), config.IncludePatterns...),
		ignores:  append([]string(nil), config.IgnorePatterns...),
	}
	for _, line := range config.IgnoreFileRules {
		if compiled, ok := compileRule(line); ok {
			policy.rules = append(policy.rules, compiled)
		}
	}
	return policy
}

// ShouldIgnore reports whether path is excluded from watching.
func (policy *Policy) ShouldIgnore(path string) bool {
	if policy == nil {
		return false
	}
	rel := fsutil.RelPath(policy.root, path)
	if rel == "." {
		return false
	}

	if fsutil.HasSegment(rel, MetadataDir) {
		return true
	}

	for _, pattern := range policy.ignores {
		if matchGlob(pattern, rel) {
			return true
		}
	}

	return policy.matchRules(rel)
}

// ShouldWatch reports whether path is selected by the include patterns. With
// no include patterns configured every path is watched.
func (policy *Policy) ShouldWatch(path string) bool {
	if policy == nil || len(policy.includes) == 0 {
		return true
	}
	rel := fsutil.RelPath(policy.root, path)
	for _, pattern := range policy.includes {
		if matchGlob(pattern, rel) {
			return true
		}
	}
	return false
}

// matchRules evaluates ignore-file rules in order; the last match wins so
// negated rules can override earlier ones.
func (policy *Policy) matchRules(rel string) bool {
	ignored := false
	for _, r := range policy.rules {
		if matchRulePattern(r.pattern, rel) {
			ignored = !r.negate
		}
	}
	return ignored
}

// matchRulePattern matches rel against an ignore-file pattern both as the
// path itself and as a directory prefix, so a rule naming a directory also
// covers everything beneath it.
func matchRulePattern(pattern, rel string) bool {
	if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
		return true
	}
	if ok, err := doublestar.Match(pattern+"/**", rel); err == nil && ok {
		return true
	}
	return false
}

// matchGlob matches a configured glob against the relative path, falling back
// to the basename for patterns without a separator.
func matchGlob(pattern, rel string) bool {
	if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
		return true
	}
	if !strings.Contains(pattern, "/") {
		base := rel
		if index := strings.LastIndex(rel, "/"); index >= 0 {
			base = rel[index+1:]
		}
		if ok, err := doublestar.Match(pattern, base); err == nil && ok {
			return true
		}
	}
	return false
}

// compileRule turns one ignore-file line into a doublestar pattern. Comments
// and blank lines compile to nothing. A trailing slash is dropped because
// rules are checked both with and without the separator; a leading slash or
// an inner slash anchors the rule at the root, anything else matches at any
// depth.
func compileRule(line string) (rule, bool) {
	trimmed := strings.TrimRight(line, " \t")
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return rule{}, false
	}

	compiled := rule{}
	if strings.HasPrefix(trimmed, "!") {
		compiled.negate = true
		trimmed = trimmed[1:]
	}
	trimmed = strings.TrimSuffix(trimmed, "/")
	if trimmed == "" {
		return rule{}, false
	}

	rooted := strings.HasPrefix(trimmed, "/")
	trimmed = strings.TrimPrefix(trimmed, "/")
	if trimmed == "" {
		return rule{}, false
	}
	if !rooted && !strings.Contains(trimmed, "/") {
		trimmed = "**/" + trimmed
	}

	compiled.pattern = trimmed
	return compiled, true
}
