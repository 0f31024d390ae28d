package auth

import "strings"

// GlobMatch matches a cluster ID against a pattern using '*' as a wildcard
// for any substring. A bare "*" matches everything; a pattern without '*' is
// plain string equality. Otherwise the literal before the first '*' must be a
// prefix, the literal after the last '*' must be a suffix, and every interior
// literal segment must occur, in order, within the remaining span.
func GlobMatch(pattern, s string) bool {
	if pattern == Wildcard {
		return true
	}
	if !strings.Contains(pattern, "*") {
		return pattern == s
	}

	segments := strings.Split(pattern, "*")

	// Anchor the leading literal as a prefix.
	if head := segments[0]; head != "" {
		if !strings.HasPrefix(s, head) {
			return false
		}
		s = s[len(head):]
	}

	// Anchor the trailing literal as a suffix.
	if tail := segments[len(segments)-1]; tail != "" {
		if !strings.HasSuffix(s, tail) {
			return false
		}
		s = s[:len(s)-len(tail)]
	}

	// Interior segments match greedily left to right, non-overlapping.
	for _, seg := range segments[1 : len(segments)-1] {
		if seg == "" {
			continue
		}
		idx := strings.Index(s, seg)
		if idx < 0 {
			return false
		}
		s = s[idx+len(seg):]
	}

	return true
}
