package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/contentqc/internal/logging"
	"github.com/ppiankov/contentqc/internal/model"
	"github.com/ppiankov/contentqc/internal/render"
)

// Version is the release version, overridable at build time with -ldflags
var Version = "v0.1.0"

var (
	cfgFile  string
	verbose  bool
	logLevel string
	format   string
	noColor  bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "contentqc",
	Short: "contentqc - quality gate for generated news content",
	Long: `contentqc scores a draft for truthfulness, freshness and consistency
before it is published.

Claims are verified over independent search-grounded rounds, freshness blends
publication time, recency keywords and web search, and consistency is checked
against retrieved documents. The weighted overall score decides whether the
draft passes; failing drafts can be rewritten and rescored.

Every collaborator is optional. Without providers the checks degrade and
say so in the report instead of failing.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command. Cancelling ctx aborts running checks.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("contentqc %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.contentqc/config.yaml)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	pf.StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.StringVarP(&format, "format", "f", "", "output format (summary, json, yaml, markdown)")
	pf.BoolVar(&noColor, "no-color", false, "disable colored output")

	// Provider flags
	pf.String("llm-provider", "", "generation provider (openai, deepseek, anthropic, ollama, doubao)")
	pf.String("llm-model", "", "generation model name")
	pf.String("grounded-provider", "", "search-grounded provider (openai, doubao)")
	pf.String("grounded-model", "", "search-grounded model name")
	pf.String("search-provider", "", "document search provider (tavily)")
	pf.Bool("validate-sources", false, "check that cited source URLs are reachable")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", pf.Lookup("verbose"))
	_ = viper.BindPFlag("output.format", pf.Lookup("format"))
	_ = viper.BindPFlag("llm.provider", pf.Lookup("llm-provider"))
	_ = viper.BindPFlag("llm.model", pf.Lookup("llm-model"))
	_ = viper.BindPFlag("grounded.provider", pf.Lookup("grounded-provider"))
	_ = viper.BindPFlag("grounded.model", pf.Lookup("grounded-model"))
	_ = viper.BindPFlag("search.provider", pf.Lookup("search-provider"))
	_ = viper.BindPFlag("sources.validate", pf.Lookup("validate-sources"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	setDefaults(model.DefaultConfig())

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(filepath.Join(home, ".contentqc"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match CONTENTQC_*
	viper.SetEnvPrefix("CONTENTQC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for _, key := range []string{"llm.api_key", "grounded.api_key", "search.api_key", "cache.redis_url"} {
		_ = viper.BindEnv(key)
	}

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every key of cfg with viper so that environment
// variables can override nested settings
func setDefaults(cfg model.Config) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return
	}
	var tree map[string]interface{}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return
	}
	setDefaultTree("", tree)
}

func setDefaultTree(prefix string, tree map[string]interface{}) {
	for k, v := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := v.(map[string]interface{}); ok {
			setDefaultTree(key, sub)
			continue
		}
		viper.SetDefault(key, v)
	}
}

// loadConfig resolves the effective configuration: flags, environment,
// config file, then defaults
func loadConfig() (model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	applyProviderEnv(&cfg)
	return cfg, nil
}

// providerKeyEnv maps provider names to the environment variable holding their key
var providerKeyEnv = map[string]string{
	"openai":           "OPENAI_API_KEY",
	"responses":        "OPENAI_API_KEY",
	"openai-responses": "OPENAI_API_KEY",
	"deepseek":         "DEEPSEEK_API_KEY",
	"anthropic":        "ANTHROPIC_API_KEY",
	"claude":           "ANTHROPIC_API_KEY",
	"doubao":           "DOUBAO_API_KEY",
	"ark":              "DOUBAO_API_KEY",
	"glm":              "DOUBAO_API_KEY",
	"tavily":           "TAVILY_API_KEY",
}

// applyProviderEnv fills API keys and the Ollama endpoint from the
// conventional provider environment variables when not configured
func applyProviderEnv(cfg *model.Config) {
	keyFor := func(provider string) string {
		if env, ok := providerKeyEnv[strings.ToLower(provider)]; ok {
			return os.Getenv(env)
		}
		return ""
	}

	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = keyFor(cfg.LLM.Provider)
	}
	if cfg.Grounded.APIKey == "" {
		cfg.Grounded.APIKey = keyFor(cfg.Grounded.Provider)
	}
	if cfg.Search.APIKey == "" {
		cfg.Search.APIKey = keyFor(cfg.Search.Provider)
	}
	if strings.EqualFold(cfg.LLM.Provider, "ollama") && cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = os.Getenv("OLLAMA_BASE_URL")
	}
}

func newLogger() *slog.Logger {
	level := logLevel
	if verbose {
		level = "debug"
	}
	return logging.New(level, os.Stderr)
}

func newRenderer(cfg model.Config) (*render.Renderer, error) {
	f, err := render.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, err
	}
	color := cfg.Output.Color && !noColor && term.IsTerminal(int(os.Stdout.Fd()))
	return render.New(f, color), nil
}
