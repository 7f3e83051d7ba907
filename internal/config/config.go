// Package config loads the operator-tunable static tables: per-connector
// retryability overrides and failure policy rules. Loaded once at startup;
// the resulting structures are handed to immutable tables and never
// mutated afterwards.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yourorg/payment-router/internal/policy"
)

// RuleConfig is the YAML shape of one policy rule.
type RuleConfig struct {
	ID             string `yaml:"id"`
	Expression     string `yaml:"expression"`
	AllowRetry     bool   `yaml:"allow_retry"`
	SkipFallback   bool   `yaml:"skip_fallback"`
	EscalateManual bool   `yaml:"escalate_manual"`
	Reason         string `yaml:"reason"`
}

// Config is the root of the static configuration file.
type Config struct {
	// RetryOverrides: connector name → error code → retryable.
	RetryOverrides map[string]map[string]bool `yaml:"retry_overrides"`
	PolicyRules    []RuleConfig               `yaml:"policy_rules"`
	ListenAddr     string                     `yaml:"listen_addr"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		RetryOverrides: map[string]map[string]bool{},
		ListenAddr:     ":8080",
	}
}

// Load reads and validates a YAML config file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes YAML bytes into a validated Config.
func Parse(raw []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("config: invalid YAML: %w", err)
	}
	for i, rule := range cfg.PolicyRules {
		if rule.ID == "" {
			return nil, fmt.Errorf("config: policy_rules[%d] has no id", i)
		}
		if rule.Expression == "" {
			return nil, fmt.Errorf("config: policy rule %q has no expression", rule.ID)
		}
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	return cfg, nil
}

// Rules converts the YAML rule shapes into policy.Rule values.
func (c *Config) Rules() []policy.Rule {
	rules := make([]policy.Rule, 0, len(c.PolicyRules))
	for _, rc := range c.PolicyRules {
		rules = append(rules, policy.Rule{
			ID:         rc.ID,
			Expression: rc.Expression,
			Decision: policy.Decision{
				AllowRetry:     rc.AllowRetry,
				SkipFallback:   rc.SkipFallback,
				EscalateManual: rc.EscalateManual,
				Reason:         rc.Reason,
			},
		})
	}
	return rules
}

// RetryOverridesFor returns the operator overrides for one connector;
// empty map when none are configured.
func (c *Config) RetryOverridesFor(connectorName string) map[string]bool {
	if overrides, ok := c.RetryOverrides[connectorName]; ok {
		return overrides
	}
	return map[string]bool{}
}
