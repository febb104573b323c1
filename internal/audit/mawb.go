package audit

import (
	"regexp"
	"sort"
	"strings"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^0-9A-Z]`)
	listSeparators  = regexp.MustCompile(`[,\s]+`)
	allDigits       = regexp.MustCompile(`^[0-9]+$`)
)

// NormalizeMAWB canonicalizes a raw MAWB value into the standard
// NNN-NNNNNNNN form where possible. Blank values and the literal NAN/NONE
// tokens produced by upstream exports normalize to the empty string.
// Already-hyphenated values with a 3-character prefix are kept as-is.
// 11-digit values split 3+8; 12-digit values drop the leading digit before
// the split; the dropped digit comes from source systems that prepend one
// and may be a check digit. Anything else falls back to
// the stripped alphanumeric string. The function is idempotent.
func NormalizeMAWB(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" || s == "NAN" || s == "NONE" {
		return ""
	}

	if prefix, _, found := strings.Cut(s, "-"); found && len(prefix) == 3 {
		return s
	}

	alnum := nonAlphanumeric.ReplaceAllString(s, "")
	if allDigits.MatchString(alnum) {
		switch len(alnum) {
		case 11:
			return alnum[:3] + "-" + alnum[3:]
		case 12:
			return alnum[1:4] + "-" + alnum[4:]
		}
	}
	return alnum
}

// ParseMAWBList parses a free-text, comma/whitespace-delimited MAWB list
// into a normalized, deduplicated, lexicographically sorted slice. A bare
// 3-digit token immediately followed by an 8-digit token is rejoined
// before normalization, so a MAWB pasted with a space where the hyphen
// belongs ("999 34022144") still resolves to one identifier. Empty input
// yields an empty slice, which callers interpret as "no filter".
func ParseMAWBList(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	tokens := joinSplitPairs(listSeparators.Split(trimmed, -1))

	seen := make(map[string]struct{})
	var out []string
	for _, token := range tokens {
		m := NormalizeMAWB(token)
		if m == "" {
			continue
		}
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// joinSplitPairs merges a 3-digit token with an immediately following
// 8-digit token, the two halves of the standard MAWB form.
func joinSplitPairs(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		t := tokens[i]
		if i+1 < len(tokens) &&
			len(t) == 3 && allDigits.MatchString(t) &&
			len(tokens[i+1]) == 8 && allDigits.MatchString(tokens[i+1]) {
			out = append(out, t+tokens[i+1])
			i++
			continue
		}
		out = append(out, t)
	}
	return out
}
