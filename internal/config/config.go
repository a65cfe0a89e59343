package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/legis-cli/internal/strategy"
)

// Config holds the full application configuration.
type Config struct {
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Anthropic   AnthropicConfig   `yaml:"anthropic" mapstructure:"anthropic"`
	Judge       JudgeConfig       `yaml:"judge" mapstructure:"judge"`
	Legislature LegislatureConfig `yaml:"legislature" mapstructure:"legislature"`
	Resolver    ResolverConfig    `yaml:"resolver" mapstructure:"resolver"`
	Notice      NoticeConfig      `yaml:"notice" mapstructure:"notice"`
	Audit       AuditConfig       `yaml:"audit" mapstructure:"audit"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// CacheConfig configures the evidence cache backend.
type CacheConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// JudgeConfig configures automated candidate judgment.
type JudgeConfig struct {
	Enabled     bool   `yaml:"enabled" mapstructure:"enabled"`
	Prompt      string `yaml:"prompt" mapstructure:"prompt"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// LegislatureConfig configures access to the legislature website.
type LegislatureConfig struct {
	BaseURL        string  `yaml:"base_url" mapstructure:"base_url"`
	RequestsPerSec float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
	Burst          int     `yaml:"burst" mapstructure:"burst"`
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent      string  `yaml:"user_agent" mapstructure:"user_agent"`
}

// ResolverConfig configures evidence resolution.
type ResolverConfig struct {
	Confirmation bool           `yaml:"confirmation" mapstructure:"confirmation"`
	Summary      []strategy.Ref `yaml:"summary" mapstructure:"summary"`
	Votes        []strategy.Ref `yaml:"votes" mapstructure:"votes"`
}

// NoticeConfig configures hearing-notice evaluation.
type NoticeConfig struct {
	MinDays int `yaml:"min_days" mapstructure:"min_days"`
}

// AuditConfig configures the confirmation audit trail.
type AuditConfig struct {
	LogPath string `yaml:"log_path" mapstructure:"log_path"`
}

// OutputConfig configures result artifacts.
type OutputConfig struct {
	Dir  string `yaml:"dir" mapstructure:"dir"`
	XLSX bool   `yaml:"xlsx" mapstructure:"xlsx"`
}

// ServerConfig configures the results API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEGIS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("cache.driver", "sqlite")
	v.SetDefault("cache.path", "legis-cache.db")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("judge.enabled", true)
	v.SetDefault("judge.timeout_secs", 30)
	v.SetDefault("legislature.base_url", "https://malegislature.gov")
	v.SetDefault("legislature.requests_per_sec", 2.0)
	v.SetDefault("legislature.burst", 1)
	v.SetDefault("legislature.timeout_secs", 30)
	v.SetDefault("legislature.user_agent", "legis-cli/1.0 (compliance research)")
	v.SetDefault("resolver.confirmation", true)
	v.SetDefault("resolver.summary", defaultSummaryStrategies())
	v.SetDefault("resolver.votes", defaultVoteStrategies())
	v.SetDefault("notice.min_days", 10)
	v.SetDefault("audit.log_path", "doc_judgment_audit.jsonl")
	v.SetDefault("output.dir", ".")
	v.SetDefault("output.xlsx", true)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// defaultSummaryStrategies is the stock summary catalog, cheapest first.
func defaultSummaryStrategies() []map[string]any {
	return []map[string]any{
		{"name": "summary_bill_embedded", "cost": 1.0},
		{"name": "summary_bill_documents", "cost": 2.0},
		{"name": "summary_hearing_docs", "cost": 3.0},
		{"name": "summary_committee_docs", "cost": 4.0},
	}
}

// defaultVoteStrategies is the stock vote-record catalog, cheapest first.
func defaultVoteStrategies() []map[string]any {
	return []map[string]any{
		{"name": "votes_bill_tab", "cost": 1.0},
		{"name": "votes_hearing_docs", "cost": 2.0},
		{"name": "votes_committee_docs", "cost": 3.0},
	}
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
