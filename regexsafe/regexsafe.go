// Package regexsafe implements spec.md §4.5's RegExp safety envelope: flag
// validation and a syntactic heuristic that rejects patterns shaped to
// trigger catastrophic backtracking in a typical backtracking regex engine
// (nested quantifiers, and quantified alternation whose branches overlap).
//
// The walk is a single character-by-character pass over the pattern with
// a stack of open groups; it bails out at the first quantified group that
// fails the check.
package regexsafe

import (
	"strings"

	"github.com/tessellate/vgraph/codecerr"
)

const validFlagChars = "dgimsuvy"

// ValidateFlags checks that flags contains only characters from
// {d,g,i,m,s,u,v,y}, each at most once.
func ValidateFlags(flags string) error {
	seen := make(map[byte]bool, len(flags))
	for i := 0; i < len(flags); i++ {
		c := flags[i]
		if !strings.ContainsRune(validFlagChars, rune(c)) {
			return &codecerr.InvalidRegExpFlagsError{Flags: flags}
		}
		if seen[c] {
			return &codecerr.InvalidRegExpFlagsError{Flags: flags}
		}
		seen[c] = true
	}
	return nil
}

// Config controls pattern-length and heuristic enforcement.
type Config struct {
	// MaxPatternLength caps the accepted pattern length. Zero means use
	// the default (1024); a negative value disables the cap.
	MaxPatternLength int
	// AllowUnsafe skips the backtracking heuristic (the length cap still
	// applies unless separately disabled).
	AllowUnsafe bool
}

// DefaultMaxPatternLength is spec.md's default pattern-length cap.
const DefaultMaxPatternLength = 1024

// Validate enforces the length cap and, unless cfg.AllowUnsafe, the
// backtracking-safety heuristic.
func Validate(pattern string, cfg Config) error {
	limit := cfg.MaxPatternLength
	if limit == 0 {
		limit = DefaultMaxPatternLength
	}
	if limit > 0 && len(pattern) > limit {
		return &codecerr.RegExpPatternTooLongError{Length: len(pattern), Limit: limit}
	}
	if cfg.AllowUnsafe {
		return nil
	}
	if !IsPatternSafe(pattern) {
		return &codecerr.UnsafeRegExpPatternError{Pattern: pattern}
	}
	return nil
}

type groupFrame struct {
	contentStart int
}

// IsPatternSafe implements the heuristic described in spec.md §4.5. It
// walks the pattern once, tracking escape state, character classes, and a
// stack of open groups. Whenever a group closes and is immediately
// followed by a quantifier, the group is rejected if its body already
// contains a quantifier anywhere (nested repetition, e.g. "(a+)+") or if
// its top-level alternation has overlapping branches (e.g. "(a|aa)+").
func IsPatternSafe(pattern string) bool {
	var stack []groupFrame
	inClass := false
	i := 0
	n := len(pattern)

	for i < n {
		c := pattern[i]
		switch {
		case c == '\\':
			i += 2
			continue
		case inClass:
			if c == ']' {
				inClass = false
			}
			i++
			continue
		case c == '[':
			inClass = true
			i++
			continue
		case c == '(':
			contentStart := parseGroupHeader(pattern, i)
			stack = append(stack, groupFrame{contentStart: contentStart})
			i = contentStart
			continue
		case c == ')':
			if len(stack) == 0 {
				i++
				continue
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			body := pattern[top.contentStart:i]
			if isQuantifierAt(pattern, i+1) {
				if hasAnyQuantifier(body) || hasOverlappingAlternation(body) {
					return false
				}
			}
			i++
			continue
		default:
			i++
		}
	}
	return true
}

// parseGroupHeader returns the index at which a group's body begins,
// given the index of its opening '(' in pattern. It strips the
// non-capturing (?:...), lookaround ((?=...), (?!...), (?<=...), (?<!...))
// and named-group ((?<name>...)) headers. An ambiguous header — "(?<"
// not followed by a valid group name and a closing '>' — is left
// unstripped and treated as data, per spec.md §4.5.
func parseGroupHeader(pattern string, open int) int {
	n := len(pattern)
	if open+1 >= n || pattern[open+1] != '?' {
		return open + 1
	}
	rest := pattern[open+2:]
	switch {
	case strings.HasPrefix(rest, ":"), strings.HasPrefix(rest, "="),
		strings.HasPrefix(rest, "!"), strings.HasPrefix(rest, ">"):
		return open + 3
	case strings.HasPrefix(rest, "<="), strings.HasPrefix(rest, "<!"):
		return open + 4
	case strings.HasPrefix(rest, "<"):
		name := rest[1:]
		gt := strings.IndexByte(name, '>')
		if gt > 0 && isValidGroupName(name[:gt]) {
			return open + 2 + 1 + gt + 1
		}
		// Ambiguous header, e.g. "(?<a|b>x)" — treat as data.
		return open + 1
	default:
		return open + 1
	}
}

func isValidGroupName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		isAlnum := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' || c == '$'
		if !isAlnum {
			return false
		}
	}
	return true
}

func isQuantifierAt(pattern string, idx int) bool {
	if idx >= len(pattern) {
		return false
	}
	switch pattern[idx] {
	case '+', '*', '?', '{':
		return true
	default:
		return false
	}
}

// hasAnyQuantifier reports whether body contains a quantifier character
// applying to a preceding atom, at any nesting depth. A quantifier
// character at position 0, or immediately after '(' or any '|', is
// not an applied quantifier (it would be a syntax error in the source
// regex) and is ignored.
func hasAnyQuantifier(body string) bool {
	inClass := false
	n := len(body)
	prevAtomEnd := false

	for i := 0; i < n; i++ {
		c := body[i]
		switch {
		case c == '\\':
			i++
			prevAtomEnd = true
		case inClass:
			if c == ']' {
				inClass = false
				prevAtomEnd = true
			}
		case c == '[':
			inClass = true
			prevAtomEnd = false
		case c == '(':
			prevAtomEnd = false
		case c == ')':
			prevAtomEnd = true
		case c == '|':
			prevAtomEnd = false
		case c == '+', c == '*', c == '?', c == '{':
			if prevAtomEnd {
				return true
			}
			prevAtomEnd = false
		default:
			prevAtomEnd = true
		}
	}
	return false
}

// hasOverlappingAlternation splits body on its top-level '|' separators
// (respecting escapes, character classes, and nested groups) and reports
// whether any two branches overlap: one is a prefix of the other, either
// is empty, or they are equal.
func hasOverlappingAlternation(body string) bool {
	branches := splitTopLevelAlternatives(body)
	if len(branches) < 2 {
		return false
	}
	for i := 0; i < len(branches); i++ {
		for j := i + 1; j < len(branches); j++ {
			a, b := branches[i], branches[j]
			if a == "" || b == "" || a == b || strings.HasPrefix(a, b) || strings.HasPrefix(b, a) {
				return true
			}
		}
	}
	return false
}

func splitTopLevelAlternatives(body string) []string {
	var branches []string
	depth := 0
	inClass := false
	start := 0
	n := len(body)

	for i := 0; i < n; i++ {
		c := body[i]
		switch {
		case c == '\\':
			i++
		case inClass:
			if c == ']' {
				inClass = false
			}
		case c == '[':
			inClass = true
		case c == '(':
			depth++
		case c == ')':
			if depth > 0 {
				depth--
			}
		case c == '|' && depth == 0:
			branches = append(branches, body[start:i])
			start = i + 1
		}
	}
	branches = append(branches, body[start:])
	return branches
}
