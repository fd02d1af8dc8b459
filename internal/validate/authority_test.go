package validate

import (
	"testing"

	"github.com/ppiankov/contentqc/internal/model"
)

func TestAuthorityClassifier_Defaults(t *testing.T) {
	classifier := NewAuthorityClassifier(model.AuthorityConfig{})

	tests := []struct {
		url      string
		expected model.AuthorityTier
		desc     string
	}{
		{"https://arxiv.org/abs/2501.12948", model.TierPrimary, "preprint server"},
		{"https://api-docs.deepseek.com/news/news250120", model.TierPrimary, "vendor subdomain"},
		{"https://www.nist.gov/ai", model.TierPrimary, "government TLD"},
		{"https://cs.stanford.edu/", model.TierPrimary, "academic TLD"},
		{"https://www.tsinghua.edu.cn/", model.TierPrimary, "Chinese academic TLD"},
		{"https://en.wikipedia.org/wiki/DeepSeek", model.TierSecondary, "encyclopedia"},
		{"https://www.reuters.com/technology/", model.TierSecondary, "wire service"},
		{"https://medium.com/@someone/post", model.TierTertiary, "blog platform"},
		{"https://someone.substack.com/p/x", model.TierTertiary, "newsletter subdomain"},
		{"https://random-site.example/article", model.TierTertiary, "unlisted host"},
		{"https://box.com/file", model.TierTertiary, "suffix of a listed domain is not a match"},
		{"not a url", model.TierUnknown, "no host"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if got := classifier.Classify(tt.url); got != tt.expected {
				t.Errorf("Expected %v for %s, got %v", tt.expected, tt.url, got)
			}
		})
	}
}

func TestAuthorityClassifier_ConfigOverrides(t *testing.T) {
	classifier := NewAuthorityClassifier(model.AuthorityConfig{
		Primary:   []string{"WWW.Example-Vendor.com"},
		Secondary: []string{"medium.com"},
		Tertiary:  []string{"theverge.com"},
	})

	tests := []struct {
		url      string
		expected model.AuthorityTier
	}{
		{"https://blog.example-vendor.com/launch", model.TierPrimary},
		{"https://medium.com/@someone/post", model.TierSecondary},
		{"https://www.theverge.com/ai", model.TierTertiary},
	}

	for _, tt := range tests {
		if got := classifier.Classify(tt.url); got != tt.expected {
			t.Errorf("Expected %v for %s, got %v", tt.expected, tt.url, got)
		}
	}
}

func TestAuthorityTier_MarshalText(t *testing.T) {
	b, err := model.TierSecondary.MarshalText()
	if err != nil || string(b) != "secondary" {
		t.Errorf("Expected secondary, got %q (%v)", b, err)
	}
}
