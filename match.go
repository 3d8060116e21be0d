package meetingagent

import "strings"

// TopicsMatch reports whether two topic labels refer to the same agenda item.
// Labels match when the normalized strings are equal, when one contains the
// other, or when their word sets share at least two words. The heuristic is
// deliberately permissive: a missed "discussed" mark is more disruptive than
// an occasional wrong one.
func TopicsMatch(a, b string) bool {
	t1 := strings.ToLower(strings.TrimSpace(a))
	t2 := strings.ToLower(strings.TrimSpace(b))
	if t1 == "" || t2 == "" {
		return false
	}

	if t1 == t2 {
		return true
	}

	if strings.Contains(t1, t2) || strings.Contains(t2, t1) {
		return true
	}

	words := make(map[string]struct{})
	for _, w := range strings.Fields(t1) {
		words[w] = struct{}{}
	}
	common := 0
	seen := make(map[string]struct{})
	for _, w := range strings.Fields(t2) {
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		if _, ok := words[w]; ok {
			common++
		}
	}
	return common >= 2
}
