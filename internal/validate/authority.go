package validate

import (
	"net/url"
	"strings"

	"github.com/ppiankov/contentqc/internal/model"
)

// Built-in tiers for sources that commonly back technology news. Configured
// domains take precedence.
var (
	defaultPrimary = []string{
		"arxiv.org", "doi.org", "ieee.org", "acm.org", "nature.com", "science.org",
		"github.com", "go.dev", "python.org", "kernel.org", "w3.org", "ietf.org",
		"openai.com", "anthropic.com", "deepseek.com", "ai.google", "blog.google",
		"microsoft.com", "apple.com", "nvidia.com", "meta.com", "huggingface.co",
	}
	defaultSecondary = []string{
		"wikipedia.org", "reuters.com", "apnews.com", "bloomberg.com", "bbc.co.uk", "bbc.com",
		"nytimes.com", "wsj.com", "ft.com", "theverge.com", "techcrunch.com", "arstechnica.com",
		"wired.com", "theregister.com", "zdnet.com", "36kr.com", "infoq.com", "infoq.cn",
	}
	defaultTertiary = []string{
		"medium.com", "substack.com", "reddit.com", "x.com", "twitter.com", "weibo.com",
		"zhihu.com", "csdn.net", "blogspot.com", "wordpress.com", "quora.com",
	}
)

// AuthorityClassifier classifies source URLs into authority tiers
type AuthorityClassifier struct {
	tiers map[string]model.AuthorityTier
}

// NewAuthorityClassifier creates a classifier from the built-in domain lists
// extended by cfg
func NewAuthorityClassifier(cfg model.AuthorityConfig) *AuthorityClassifier {
	a := &AuthorityClassifier{tiers: make(map[string]model.AuthorityTier)}

	a.add(defaultTertiary, model.TierTertiary)
	a.add(defaultSecondary, model.TierSecondary)
	a.add(defaultPrimary, model.TierPrimary)

	// Configured domains override built-ins
	a.add(cfg.Tertiary, model.TierTertiary)
	a.add(cfg.Secondary, model.TierSecondary)
	a.add(cfg.Primary, model.TierPrimary)

	return a
}

func (a *AuthorityClassifier) add(domains []string, tier model.AuthorityTier) {
	for _, d := range domains {
		d = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(d)), "www.")
		if d != "" {
			a.tiers[d] = tier
		}
	}
}

// Classify returns the tier of rawURL. Unlisted hosts are tertiary; URLs
// without a host are unknown.
func (a *AuthorityClassifier) Classify(rawURL string) model.AuthorityTier {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		return model.TierUnknown
	}

	host := strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")

	// Walk up the domain labels: docs.python.org -> python.org -> org
	for h := host; h != ""; {
		if tier, ok := a.tiers[h]; ok {
			return tier
		}
		idx := strings.Index(h, ".")
		if idx < 0 {
			break
		}
		h = h[idx+1:]
	}

	if strings.HasSuffix(host, ".gov") || strings.HasSuffix(host, ".edu") ||
		strings.HasSuffix(host, ".ac.uk") || strings.HasSuffix(host, ".gov.cn") || strings.HasSuffix(host, ".edu.cn") {
		return model.TierPrimary
	}

	return model.TierTertiary
}
