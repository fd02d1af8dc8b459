package model

// Config is the complete contentqc configuration
type Config struct {
	LLM       LLMConfig       `yaml:"llm" json:"llm" mapstructure:"llm"`
	Grounded  GroundedConfig  `yaml:"grounded" json:"grounded" mapstructure:"grounded"`
	Search    SearchConfig    `yaml:"search" json:"search" mapstructure:"search"`
	Cache     CacheConfig     `yaml:"cache" json:"cache" mapstructure:"cache"`
	Quality   QualityConfig   `yaml:"quality" json:"quality" mapstructure:"quality"`
	Improve   ImproveConfig   `yaml:"improve" json:"improve" mapstructure:"improve"`
	Sources   SourcesConfig   `yaml:"sources" json:"sources" mapstructure:"sources"`
	HTTP      HTTPConfig      `yaml:"http" json:"http" mapstructure:"http"`
	API       APIConfig       `yaml:"api" json:"api" mapstructure:"api"`
	Output    OutputConfig    `yaml:"output" json:"output" mapstructure:"output"`
	Authority AuthorityConfig `yaml:"authority" json:"authority" mapstructure:"authority"`
}

// LLMConfig configures the plain generation provider
type LLMConfig struct {
	Provider    string  `yaml:"provider" json:"provider" mapstructure:"provider"` // openai, deepseek, anthropic, ollama, "" (disabled)
	Model       string  `yaml:"model" json:"model" mapstructure:"model"`
	APIKey      string  `yaml:"api_key,omitempty" json:"-" mapstructure:"api_key"`
	BaseURL     string  `yaml:"base_url,omitempty" json:"base_url,omitempty" mapstructure:"base_url"`
	Timeout     int     `yaml:"timeout" json:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens   int     `yaml:"max_tokens" json:"max_tokens" mapstructure:"max_tokens"`
	Temperature float32 `yaml:"temperature" json:"temperature" mapstructure:"temperature"`
}

// GroundedConfig configures the search-grounded generation provider
type GroundedConfig struct {
	Provider string `yaml:"provider" json:"provider" mapstructure:"provider"` // openai, doubao, "" (disabled)
	Model    string `yaml:"model" json:"model" mapstructure:"model"`
	APIKey   string `yaml:"api_key,omitempty" json:"-" mapstructure:"api_key"`
	BaseURL  string `yaml:"base_url,omitempty" json:"base_url,omitempty" mapstructure:"base_url"`
	Timeout  int    `yaml:"timeout" json:"timeout" mapstructure:"timeout"` // seconds
}

// SearchConfig configures the document search provider
type SearchConfig struct {
	Provider          string  `yaml:"provider" json:"provider" mapstructure:"provider"` // tavily, "" (disabled)
	APIKey            string  `yaml:"api_key,omitempty" json:"-" mapstructure:"api_key"`
	BaseURL           string  `yaml:"base_url,omitempty" json:"base_url,omitempty" mapstructure:"base_url"`
	Depth             string  `yaml:"depth" json:"depth" mapstructure:"depth"` // basic, advanced
	MaxResults        int     `yaml:"max_results" json:"max_results" mapstructure:"max_results"`
	Timeout           int     `yaml:"timeout" json:"timeout" mapstructure:"timeout"` // seconds
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second" mapstructure:"requests_per_second"`
}

// CacheConfig configures the search result cache
type CacheConfig struct {
	Enabled  bool   `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
	Backend  string `yaml:"backend" json:"backend" mapstructure:"backend"` // memory, disk, layered, redis
	Dir      string `yaml:"dir" json:"dir" mapstructure:"dir"`
	TTLHours int    `yaml:"ttl_hours" json:"ttl_hours" mapstructure:"ttl_hours"`
	RedisURL string `yaml:"redis_url,omitempty" json:"redis_url,omitempty" mapstructure:"redis_url"`
}

// QualityConfig configures the verdict computations
type QualityConfig struct {
	VerifyRounds    int  `yaml:"verify_rounds" json:"verify_rounds" mapstructure:"verify_rounds"`
	FreshnessRounds int  `yaml:"freshness_rounds" json:"freshness_rounds" mapstructure:"freshness_rounds"`
	ParallelRounds  bool `yaml:"parallel_rounds" json:"parallel_rounds" mapstructure:"parallel_rounds"`
	CrossRefResults int  `yaml:"crossref_results" json:"crossref_results" mapstructure:"crossref_results"`
	Relevance       bool `yaml:"relevance" json:"relevance" mapstructure:"relevance"`
}

// ImproveConfig configures the content improver and refinement loop
type ImproveConfig struct {
	Enabled       bool `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
	MaxIterations int  `yaml:"max_iterations" json:"max_iterations" mapstructure:"max_iterations"`
	MaxTokens     int  `yaml:"max_tokens" json:"max_tokens" mapstructure:"max_tokens"`
	Grounded      bool `yaml:"grounded" json:"grounded" mapstructure:"grounded"` // Ask the provider to search while rewriting
}

// SourcesConfig configures validation of cited source URLs
type SourcesConfig struct {
	Validate      bool `yaml:"validate" json:"validate" mapstructure:"validate"`
	Concurrency   int  `yaml:"concurrency" json:"concurrency" mapstructure:"concurrency"`
	Timeout       int  `yaml:"timeout" json:"timeout" mapstructure:"timeout"` // seconds
	MaxRetries    int  `yaml:"max_retries" json:"max_retries" mapstructure:"max_retries"`
	RespectRobots bool `yaml:"respect_robots" json:"respect_robots" mapstructure:"respect_robots"`
	MaxSources    int  `yaml:"max_sources" json:"max_sources" mapstructure:"max_sources"`
}

// HTTPConfig holds outbound HTTP settings shared by all clients
type HTTPConfig struct {
	UserAgent  string `yaml:"user_agent" json:"user_agent" mapstructure:"user_agent"`
	HTTPProxy  string `yaml:"http_proxy,omitempty" json:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy,omitempty" json:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy    string `yaml:"no_proxy,omitempty" json:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// APIConfig configures the HTTP API server
type APIConfig struct {
	Addr           string   `yaml:"addr" json:"addr" mapstructure:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins" mapstructure:"allowed_origins"`
	MaxBodyBytes   int64    `yaml:"max_body_bytes" json:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Format string `yaml:"format" json:"format" mapstructure:"format"` // summary, json, yaml, markdown
	Color  bool   `yaml:"color" json:"color" mapstructure:"color"`
}

// AuthorityConfig lists extra domains per authority tier
type AuthorityConfig struct {
	Primary   []string `yaml:"primary,omitempty" json:"primary,omitempty" mapstructure:"primary"`
	Secondary []string `yaml:"secondary,omitempty" json:"secondary,omitempty" mapstructure:"secondary"`
	Tertiary  []string `yaml:"tertiary,omitempty" json:"tertiary,omitempty" mapstructure:"tertiary"`
}

// DefaultConfig returns sensible defaults. All collaborators are disabled
// until a provider is named, so a bare run degrades instead of failing.
func DefaultConfig() Config {
	return Config{
		LLM: LLMConfig{
			Timeout:     60,
			MaxTokens:   800,
			Temperature: 0.1,
		},
		Grounded: GroundedConfig{
			Timeout: 60,
		},
		Search: SearchConfig{
			Depth:             "advanced",
			MaxResults:        5,
			Timeout:           30,
			RequestsPerSecond: 2,
		},
		Cache: CacheConfig{
			Enabled:  true,
			Backend:  "memory",
			Dir:      "~/.contentqc/cache",
			TTLHours: 6,
		},
		Quality: QualityConfig{
			VerifyRounds:    2,
			FreshnessRounds: 2,
			ParallelRounds:  true,
			CrossRefResults: 5,
			Relevance:       true,
		},
		Improve: ImproveConfig{
			Enabled:       false,
			MaxIterations: 1,
			MaxTokens:     3000,
			Grounded:      true,
		},
		Sources: SourcesConfig{
			Validate:      false,
			Concurrency:   5,
			Timeout:       10,
			MaxRetries:    2,
			RespectRobots: true,
			MaxSources:    20,
		},
		HTTP: HTTPConfig{
			UserAgent: "contentqc/0.1 (+https://github.com/ppiankov/contentqc)",
		},
		API: APIConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
			MaxBodyBytes:   1 << 20,
		},
		Output: OutputConfig{
			Format: "summary",
			Color:  true,
		},
	}
}
