package extract

import (
	"strings"
	"testing"
	"time"
)

func TestParsePage_Basic(t *testing.T) {
	doc := `<!DOCTYPE html>
	<html>
	<head>
		<title> Go 1.25 Release Notes </title>
		<meta property="article:published_time" content="2025-08-12T10:00:00Z">
		<style>p { color: red; }</style>
	</head>
	<body>
		<script>var hidden = "do not include";</script>
		<p>Go 1.25 adds a container-aware GOMAXPROCS.</p>
		<p>See the <a href="/doc/go1.25">notes</a> and <a href="https://go.dev/blog">blog</a>.</p>
		<a href="#top">top</a>
		<a href="mailto:someone@example.com">mail</a>
		<a href="/doc/go1.25#runtime">runtime</a>
	</body>
	</html>`

	page, err := ParsePage(doc, "https://go.dev/")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if page.Title != "Go 1.25 Release Notes" {
		t.Errorf("Expected trimmed title, got %q", page.Title)
	}

	if strings.Contains(page.Text, "do not include") || strings.Contains(page.Text, "color: red") {
		t.Errorf("Script or style leaked into text: %q", page.Text)
	}
	if !strings.Contains(page.Text, "container-aware GOMAXPROCS") {
		t.Errorf("Expected paragraph text, got %q", page.Text)
	}

	if page.PublishedAt == nil {
		t.Fatal("Expected publication time from meta tag")
	}
	want := time.Date(2025, 8, 12, 10, 0, 0, 0, time.UTC)
	if !page.PublishedAt.Equal(want) {
		t.Errorf("Expected %v, got %v", want, page.PublishedAt)
	}

	// Fragment-only and mailto links are dropped, fragments are stripped before dedupe
	if len(page.Links) != 2 {
		t.Fatalf("Expected 2 links, got %v", page.Links)
	}
	if page.Links[0] != "https://go.dev/doc/go1.25" || page.Links[1] != "https://go.dev/blog" {
		t.Errorf("Unexpected links: %v", page.Links)
	}
}

func TestParsePage_TimeElementAndNoBase(t *testing.T) {
	doc := `<html><body>
		<time datetime="2024-03-01">March 1</time>
		<a href="relative/page">rel</a>
		<a href="https://example.org/a">abs</a>
	</body></html>`

	page, err := ParsePage(doc, "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if page.PublishedAt == nil || page.PublishedAt.Year() != 2024 || page.PublishedAt.Month() != time.March {
		t.Errorf("Expected 2024-03-01 publication time, got %v", page.PublishedAt)
	}

	if len(page.Links) != 1 || page.Links[0] != "https://example.org/a" {
		t.Errorf("Expected only the absolute link without a base, got %v", page.Links)
	}
}

func TestParsePage_UnparseableDate(t *testing.T) {
	doc := `<html><head><meta name="date" content="last tuesday"></head><body>x</body></html>`

	page, err := ParsePage(doc, "https://example.com")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if page.PublishedAt != nil {
		t.Errorf("Expected nil publication time, got %v", page.PublishedAt)
	}
}

func TestVisibleText(t *testing.T) {
	text, err := VisibleText(`<div>Hello <b>world</b><noscript>enable js</noscript><iframe>x</iframe></div>`)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if text != "Hello world" {
		t.Errorf("Expected %q, got %q", "Hello world", text)
	}
}
