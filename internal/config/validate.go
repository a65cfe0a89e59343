package config

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Validate checks that the configuration is usable for the given mode.
// Modes: "run" (compliance runs), "serve" (results API).
func (c *Config) Validate(mode string) error {
	var problems []string

	switch c.Cache.Driver {
	case "sqlite":
		if c.Cache.Path == "" {
			problems = append(problems, "cache.path is required for the sqlite driver")
		}
	case "postgres":
		if c.Cache.DatabaseURL == "" {
			problems = append(problems, "cache.database_url is required for the postgres driver")
		}
	default:
		problems = append(problems, "cache.driver must be sqlite or postgres")
	}

	switch mode {
	case "run":
		if c.Judge.Enabled && c.Anthropic.Key == "" {
			problems = append(problems, "anthropic.key is required when judge.enabled is true")
		}
		if c.Legislature.BaseURL == "" {
			problems = append(problems, "legislature.base_url is required")
		}
		if c.Legislature.RequestsPerSec <= 0 {
			problems = append(problems, "legislature.requests_per_sec must be > 0")
		}
		if c.Notice.MinDays < 0 {
			problems = append(problems, "notice.min_days must be >= 0")
		}
		if len(c.Resolver.Summary) == 0 {
			problems = append(problems, "resolver.summary must list at least one strategy")
		}
		if len(c.Resolver.Votes) == 0 {
			problems = append(problems, "resolver.votes must list at least one strategy")
		}
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
		if c.Output.Dir == "" {
			problems = append(problems, "output.dir is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}
