package extract

import (
	"regexp"
	"strings"

	"github.com/rivo/uniseg"
)

var urlPattern = regexp.MustCompile(`https?://[^\s<>"'\x60\)\]\}，。；]+`)

// Truncate cuts s to at most n user-perceived characters.
// Grapheme clusters are never split, so CJK text and emoji stay intact.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}

	count := 0
	state := -1
	rest := s
	var cluster string
	end := 0

	for len(rest) > 0 {
		if count == n {
			return s[:end]
		}
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		end += len(cluster)
		count++
	}

	return s
}

// URLs returns the distinct http(s) URLs mentioned in plain text, in order
func URLs(text string) []string {
	var urls []string
	seen := make(map[string]bool)

	for _, u := range urlPattern.FindAllString(text, -1) {
		u = strings.TrimRight(u, ".,;:!?")
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		urls = append(urls, u)
	}

	return urls
}

// LooksLikeHTML reports whether content is an HTML document rather than text
func LooksLikeHTML(content string) bool {
	head := strings.ToLower(strings.TrimSpace(Truncate(content, 512)))
	return strings.HasPrefix(head, "<!doctype html") ||
		strings.HasPrefix(head, "<html") ||
		strings.Contains(head, "<body")
}
