// Package config implements specforge's layered configuration: defaults
// overridden by a repo-local YAML file, then environment variables, then
// CLI flags (spec.md §3 "GatePolicy... merged from defaults ← policy-file
// ← CLI overrides", generalized here to the whole config surface).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/specforge/specforge/internal/atomicfile"
	"github.com/specforge/specforge/internal/durstr"
	"github.com/specforge/specforge/internal/llm"
	"github.com/specforge/specforge/internal/runner"
	"github.com/specforge/specforge/internal/status"
)

// RunnerConfig controls backend process invocation (spec.md §4.6).
type RunnerConfig struct {
	Mode    string `yaml:"mode"`    // auto|native|wsl
	Distro  string `yaml:"distro"`  // WSL distro name, ignored on Native
	Timeout string `yaml:"timeout"` // duration string, see internal/durstr
}

// PacketConfig controls the packet builder's budget (spec.md §3 "PacketBudget").
type PacketConfig struct {
	LimitBytes int `yaml:"limit_bytes"`
	LimitLines int `yaml:"limit_lines"`
}

// LockConfig controls advisory lock acquisition (spec.md §4.4).
type LockConfig struct {
	TTL string `yaml:"ttl"`
}

// GateConfig mirrors the [gate] policy-file section so the merged
// top-level config and the standalone policy file agree on field names.
type GateConfig struct {
	MinPhase            string `yaml:"min_phase"`
	FailOnPendingFixups bool   `yaml:"fail_on_pending_fixups"`
	MaxPhaseAge         string `yaml:"max_phase_age,omitempty"`
}

// LoggingConfig controls the category file logger (internal/logging).
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ValidationConfig controls the postprocess contract's strict mode
// (spec.md §4.8 "in strict mode, failures raise ValidationFailed;
// otherwise they are logged"), surfaced read-only on the status
// document so a dashboard can see which mode a spec is running under
// without needing a fresh --strict flag on every invocation.
type ValidationConfig struct {
	Strict bool `yaml:"strict"`
}

// ModelConfig pins the backend identity used for lockfile drift checks
// (spec.md §4.5).
type ModelConfig struct {
	FullName   string `yaml:"full_name"`
	Alias      string `yaml:"alias,omitempty"`
	CLIVersion string `yaml:"cli_version"`
}

// HTTPProviderConfig configures one HTTP-based LLM backend (spec.md §9
// "backends are selected by configuration"), grounded on the original's
// [llm.anthropic]/[llm.openrouter] config sections.
type HTTPProviderConfig struct {
	APIKeyEnv   string  `yaml:"api_key_env,omitempty"`
	BaseURL     string  `yaml:"base_url,omitempty"`
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens,omitempty"`
	Temperature float64 `yaml:"temperature,omitempty"`
}

// LLMConfig selects which backend kind RunPhase invokes and carries each
// HTTP provider's settings. Provider is one of "subprocess" (the default,
// shelling out to the CLI binary), "anthropic", or "openrouter".
type LLMConfig struct {
	Provider   string              `yaml:"provider"`
	Anthropic  HTTPProviderConfig  `yaml:"anthropic"`
	OpenRouter HTTPProviderConfig  `yaml:"openrouter"`
}

// Config is the full merged configuration for one specforge invocation.
type Config struct {
	Model   ModelConfig   `yaml:"model"`
	Runner  RunnerConfig  `yaml:"runner"`
	Packet  PacketConfig  `yaml:"packet"`
	Lock    LockConfig    `yaml:"lock"`
	Gate       GateConfig       `yaml:"gate"`
	Logging    LoggingConfig    `yaml:"logging"`
	Validation ValidationConfig `yaml:"validation"`
	LLM        LLMConfig        `yaml:"llm"`

	// sources tracks, per dotted field path, which layer last set the
	// value (default|config|env|cli) — consumed by EffectiveConfig for
	// the status-json.v2 "effective_config" block.
	sources map[string]string `yaml:"-"`
}

// DefaultConfig returns specforge's baseline configuration.
func DefaultConfig() *Config {
	c := &Config{
		Model: ModelConfig{
			FullName:   "claude-sonnet-4-5-20250514",
			CLIVersion: "unknown",
		},
		Runner: RunnerConfig{
			Mode:    "auto",
			Timeout: "300s",
		},
		Packet: PacketConfig{
			LimitBytes: 65536,
			LimitLines: 1200,
		},
		Lock: LockConfig{
			TTL: "1h",
		},
		Gate: GateConfig{
			MinPhase:            "requirements",
			FailOnPendingFixups: false,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "specforge.log",
		},
		Validation: ValidationConfig{
			Strict: false,
		},
		LLM: LLMConfig{
			Provider: "subprocess",
		},
	}
	c.sources = defaultSources()
	return c
}

func defaultSources() map[string]string {
	return map[string]string{
		"model.full_name":             "default",
		"model.alias":                 "default",
		"model.cli_version":           "default",
		"runner.mode":                 "default",
		"runner.distro":               "default",
		"runner.timeout":              "default",
		"packet.limit_bytes":          "default",
		"packet.limit_lines":          "default",
		"lock.ttl":                    "default",
		"gate.min_phase":              "default",
		"gate.fail_on_pending_fixups": "default",
		"gate.max_phase_age":          "default",
		"logging.level":               "default",
		"logging.file":                "default",
		"validation.strict":           "default",
		"llm.provider":                "default",
	}
}

// Load reads a YAML config file layered on top of DefaultConfig, then
// applies environment overrides. A missing file is not an error — the
// defaults (plus any env overrides) are returned as-is.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	markFileSources(cfg, data)

	cfg.applyEnvOverrides()
	return cfg, nil
}

// markFileSources re-parses the raw file into a generic map so only the
// keys actually present in the file get attributed to the "config"
// source; everything else stays "default".
func markFileSources(cfg *Config, data []byte) {
	var raw map[string]map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return
	}
	for section, fields := range raw {
		for field := range fields {
			cfg.sources[section+"."+field] = "config"
		}
	}
}

// Save atomically persists cfg as YAML through internal/atomicfile — an
// explicit improvement over a bare os.WriteFile, matching the same
// write-tmp-then-rename discipline used by internal/lockfile,
// internal/receipt, and internal/artifact.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: failed to create directory: %w", err)
		}
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: failed to marshal: %w", err)
	}
	return atomicfile.Write(path, data, 0o644)
}

// applyEnvOverrides layers SPECFORGE_-prefixed environment variables on
// top of file/default values, recording provenance as it goes.
func (c *Config) applyEnvOverrides() {
	set := func(key string, dest *string, field string) {
		if v := os.Getenv(key); v != "" {
			*dest = v
			c.sources[field] = "env"
		}
	}
	set("SPECFORGE_MODEL_FULL_NAME", &c.Model.FullName, "model.full_name")
	set("SPECFORGE_MODEL_ALIAS", &c.Model.Alias, "model.alias")
	set("SPECFORGE_CLI_VERSION", &c.Model.CLIVersion, "model.cli_version")
	set("SPECFORGE_RUNNER_MODE", &c.Runner.Mode, "runner.mode")
	set("SPECFORGE_RUNNER_DISTRO", &c.Runner.Distro, "runner.distro")
	set("SPECFORGE_RUNNER_TIMEOUT", &c.Runner.Timeout, "runner.timeout")
	set("SPECFORGE_LOCK_TTL", &c.Lock.TTL, "lock.ttl")
	set("SPECFORGE_GATE_MIN_PHASE", &c.Gate.MinPhase, "gate.min_phase")
	set("SPECFORGE_GATE_MAX_PHASE_AGE", &c.Gate.MaxPhaseAge, "gate.max_phase_age")
	set("SPECFORGE_LOG_LEVEL", &c.Logging.Level, "logging.level")
	set("SPECFORGE_LOG_FILE", &c.Logging.File, "logging.file")
	set("SPECFORGE_LLM_PROVIDER", &c.LLM.Provider, "llm.provider")

	if v := os.Getenv("SPECFORGE_PACKET_LIMIT_BYTES"); v != "" {
		if n := parseIntOrZero(v); n > 0 {
			c.Packet.LimitBytes = n
			c.sources["packet.limit_bytes"] = "env"
		}
	}
	if v := os.Getenv("SPECFORGE_PACKET_LIMIT_LINES"); v != "" {
		if n := parseIntOrZero(v); n > 0 {
			c.Packet.LimitLines = n
			c.sources["packet.limit_lines"] = "env"
		}
	}
	if v := os.Getenv("SPECFORGE_GATE_FAIL_ON_PENDING_FIXUPS"); v != "" {
		c.Gate.FailOnPendingFixups = v == "true" || v == "1"
		c.sources["gate.fail_on_pending_fixups"] = "env"
	}
	if v := os.Getenv("SPECFORGE_VALIDATION_STRICT"); v != "" {
		c.Validation.Strict = v == "true" || v == "1"
		c.sources["validation.strict"] = "env"
	}
}

func parseIntOrZero(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// SetCLIOverride records that field was set by an explicit CLI flag,
// the highest-precedence layer. Callers (cmd/specforge) mutate the
// corresponding Config field directly and call this to update
// provenance.
func (c *Config) SetCLIOverride(field string) {
	c.sources[field] = "cli"
}

// RunnerMode parses Runner.Mode into runner.Mode, defaulting to Auto on
// an unrecognized value.
func (c *Config) RunnerMode() runner.Mode {
	switch c.Runner.Mode {
	case "native":
		return runner.Native
	case "wsl":
		return runner.WSL
	default:
		return runner.Auto
	}
}

// RunnerTimeout parses Runner.Timeout via internal/durstr.
func (c *Config) RunnerTimeout() time.Duration {
	d, err := durstr.Parse(c.Runner.Timeout)
	if err != nil {
		return 300 * time.Second
	}
	return d
}

// LockTTL parses Lock.TTL via internal/durstr.
func (c *Config) LockTTL() time.Duration {
	d, err := durstr.Parse(c.Lock.TTL)
	if err != nil {
		return time.Hour
	}
	return d
}

// EffectiveConfig renders the config surface into the status reporter's
// {value, source} map (spec.md §6 "effective_config").
func (c *Config) EffectiveConfig() map[string]status.EffectiveValue {
	fields := map[string]string{
		"model.full_name":             c.Model.FullName,
		"model.alias":                 c.Model.Alias,
		"model.cli_version":           c.Model.CLIVersion,
		"runner.mode":                 c.Runner.Mode,
		"runner.distro":               c.Runner.Distro,
		"runner.timeout":              c.Runner.Timeout,
		"packet.limit_bytes":          fmt.Sprintf("%d", c.Packet.LimitBytes),
		"packet.limit_lines":         fmt.Sprintf("%d", c.Packet.LimitLines),
		"lock.ttl":                    c.Lock.TTL,
		"gate.min_phase":              c.Gate.MinPhase,
		"gate.fail_on_pending_fixups": fmt.Sprintf("%t", c.Gate.FailOnPendingFixups),
		"gate.max_phase_age":          c.Gate.MaxPhaseAge,
		"logging.level":               c.Logging.Level,
		"logging.file":                c.Logging.File,
		"validation.strict":           fmt.Sprintf("%t", c.Validation.Strict),
		"llm.provider":                c.LLM.Provider,
	}
	out := make(map[string]status.EffectiveValue, len(fields))
	for field, value := range fields {
		source := c.sources[field]
		if source == "" {
			source = "default"
		}
		out[field] = status.EffectiveValue{Value: value, Source: source}
	}
	return out
}

// SelectLLMBackend builds the Backend named by LLM.Provider (spec.md §9
// "backends are selected by configuration"). subprocessBase supplies the
// CLI invocation shape used when Provider is "subprocess" or unset.
func (c *Config) SelectLLMBackend(subprocessBase runner.Invocation) (llm.Backend, error) {
	switch c.LLM.Provider {
	case "", "subprocess":
		return llm.NewSubprocessBackend(subprocessBase), nil
	case "anthropic":
		p := c.LLM.Anthropic
		return llm.NewAnthropicBackendFromEnv(p.APIKeyEnv, p.BaseURL, p.Model, p.MaxTokens, p.Temperature)
	case "openrouter":
		p := c.LLM.OpenRouter
		return llm.NewOpenRouterBackendFromEnv(p.APIKeyEnv, p.BaseURL, p.Model, p.MaxTokens, p.Temperature)
	default:
		return nil, fmt.Errorf("config: unknown llm.provider %q", c.LLM.Provider)
	}
}
