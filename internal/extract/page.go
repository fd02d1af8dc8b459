package extract

import (
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// Page is the checkable view of an HTML document
type Page struct {
	Title       string
	Text        string
	PublishedAt *time.Time
	Links       []string
}

var publishedMetaKeys = []string{
	"article:published_time",
	"og:published_time",
	"datepublished",
	"date",
	"pubdate",
	"dc.date",
	"dc.date.issued",
}

var publishedLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParsePage reduces an HTML document to its title, visible text, publication
// time and outbound http(s) links. baseURL may be empty; relative links are
// then dropped.
func ParsePage(htmlContent string, baseURL string) (*Page, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, err
	}

	var base *url.URL
	if baseURL != "" {
		if base, err = url.Parse(baseURL); err != nil {
			return nil, err
		}
	}

	page := &Page{Text: visibleText(doc)}
	seen := make(map[string]bool)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if page.Title == "" && n.FirstChild != nil {
					page.Title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "meta":
				if page.PublishedAt == nil {
					page.PublishedAt = metaPublished(n)
				}
			case "time":
				if page.PublishedAt == nil {
					page.PublishedAt = parsePublished(attr(n, "datetime"))
				}
			case "a":
				if link := resolveURL(base, strings.TrimSpace(attr(n, "href"))); link != "" && !seen[link] {
					seen[link] = true
					page.Links = append(page.Links, link)
				}
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)
	return page, nil
}

// VisibleText returns the rendered text of an HTML document
func VisibleText(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}
	return visibleText(doc), nil
}

// visibleText joins text nodes outside script, style, noscript and iframe
func visibleText(n *html.Node) string {
	var buf strings.Builder
	var walk func(*html.Node)

	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "head", "template":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				if buf.Len() > 0 {
					buf.WriteString(" ")
				}
				buf.WriteString(text)
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return buf.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func metaPublished(n *html.Node) *time.Time {
	key := attr(n, "property")
	if key == "" {
		key = attr(n, "name")
	}
	if key == "" {
		key = attr(n, "itemprop")
	}
	key = strings.ToLower(key)

	for _, k := range publishedMetaKeys {
		if key == k {
			return parsePublished(attr(n, "content"))
		}
	}
	return nil
}

func parsePublished(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// resolveURL resolves href against base and keeps only http(s) results
func resolveURL(base *url.URL, href string) string {
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	if strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
		return ""
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := parsed
	if base != nil {
		resolved = base.ResolveReference(parsed)
	}

	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	resolved.Fragment = ""

	return resolved.String()
}
