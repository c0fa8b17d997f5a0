package gate

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/specforge/specforge/internal/durstr"
	"github.com/specforge/specforge/internal/spec"
)

// ResolvePolicyPath finds the policy file `gate` should load, in order:
// an explicit CLI override, a repo-local `.specforge/policy.toml` found
// by walking up from the current directory (stopping at a VCS root), a
// user-global config file, then the spec workspace's own policy.toml.
func ResolvePolicyPath(explicit string, specDefault string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("policy file not found: %s", explicit)
		}
		return explicit, nil
	}

	if cwd, err := os.Getwd(); err == nil {
		if p, ok := discoverPolicyFileFrom(cwd); ok {
			return p, nil
		}
	}

	if p, ok := globalPolicyPath(); ok {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return specDefault, nil
}

func discoverPolicyFileFrom(start string) (string, bool) {
	dir := start
	for {
		candidate := filepath.Join(dir, ".specforge", "policy.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
		for _, vcs := range []string{".git", ".hg", ".svn"} {
			if _, err := os.Stat(filepath.Join(dir, vcs)); err == nil {
				return "", false
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func globalPolicyPath() (string, bool) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "specforge", "policy.toml"), true
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	return filepath.Join(home, ".config", "specforge", "policy.toml"), true
}

// DefaultPolicy is the gate's zero-configuration baseline: require only
// that Requirements has run, and don't fail on pending fixups.
func DefaultPolicy() Policy {
	return Policy{MinPhase: spec.Requirements, FailOnPendingFixups: false}
}

// ParsePolicyFile reads a `[gate]`-sectioned key/value policy file
// (spec.md §6 "Policy file (gate)"). No TOML/INI library appears
// anywhere in the example corpus retrieved for this spec, so this parser
// is deliberately minimal hand-rolled stdlib: it recognizes exactly the
// one section and the handful of long/short field aliases spec.md lists,
// nothing more general.
func ParsePolicyFile(path string) (Policy, error) {
	p := DefaultPolicy()

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return p, err
	}
	defer f.Close()

	inGateSection := false
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			inGateSection = strings.TrimSpace(line[1:len(line)-1]) == "gate"
			continue
		}
		if !inGateSection {
			continue
		}

		key, value, ok := splitKeyValue(line)
		if !ok {
			continue
		}

		switch key {
		case "require_phase", "min_phase":
			phase, ok := spec.ParsePhaseID(value)
			if !ok {
				return p, fmt.Errorf("policy file %s: unknown phase %q", path, value)
			}
			p.MinPhase = phase
		case "allow_fixups":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return p, fmt.Errorf("policy file %s: invalid boolean %q for allow_fixups", path, value)
			}
			p.FailOnPendingFixups = !b
		case "fail_on_pending_fixups":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return p, fmt.Errorf("policy file %s: invalid boolean %q for fail_on_pending_fixups", path, value)
			}
			p.FailOnPendingFixups = b
		case "max_age_days":
			days, err := strconv.Atoi(value)
			if err != nil {
				return p, fmt.Errorf("policy file %s: invalid integer %q for max_age_days", path, value)
			}
			d := time.Duration(days) * 24 * time.Hour
			p.MaxPhaseAge = &d
		case "max_phase_age":
			d, err := durstr.Parse(value)
			if err != nil {
				return p, fmt.Errorf("policy file %s: %w", path, err)
			}
			p.MaxPhaseAge = &d
		}
	}
	return p, scanner.Err()
}

func splitKeyValue(line string) (key, value string, ok bool) {
	idx := strings.IndexAny(line, "=:")
	if idx < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(line[:idx])
	value = strings.Trim(strings.TrimSpace(line[idx+1:]), `"`)
	return key, value, key != ""
}
