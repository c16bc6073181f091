package schema

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Resolve finds the header that best matches any of candidates.
//
// An exact match (case-insensitive, trimmed, NFKC-normalized) wins over a substring
// match, where a header contains a candidate. Within a pass candidates are tried in
// order and headers in order. The result is always one of headers as given.
//
// The substring pass can bind a short alias to an unrelated header ("Объект" inside
// "Адрес объекта"); exact aliases for the real column take precedence.
func Resolve(headers, candidates []string) (string, bool) {
	folded := make([]string, len(headers))
	for i, h := range headers {
		folded[i] = fold(h)
	}

	keys := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if k := fold(c); k != "" {
			keys = append(keys, k)
		}
	}

	for _, key := range keys {
		for i, h := range folded {
			if h == key {
				return headers[i], true
			}
		}
	}

	for _, key := range keys {
		for i, h := range folded {
			if strings.Contains(h, key) {
				return headers[i], true
			}
		}
	}

	return "", false
}

func fold(s string) string {
	return strings.ToLower(norm.NFKC.String(strings.TrimSpace(s)))
}
