// Package featureflags evaluates runtime feature flags configured through
// FEATURE_FLAGS, a comma-separated key=value list. Planora uses flags like
// "disable_signups=on" to close registration and "beta_dashboard=25%" for
// gradual per-user rollouts.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

type flagState int

const (
	stateOff flagState = iota
	stateOn
	statePercent
)

// flag is one parsed entry. raw keeps the configured value for Raw().
type flag struct {
	state   flagState
	percent int
	raw     string
}

// Manager holds the parsed flag set. A nil Manager evaluates every flag as
// disabled, so callers never need to guard against missing configuration.
type Manager struct {
	flags map[string]flag
}

// NewManager parses a comma-separated "name=value" list. Malformed entries
// are skipped rather than rejected: a typo in one flag must not take the
// whole config down. Accepted values are on/true/1, off/false/0, and "N%"
// for a deterministic per-user rollout.
func NewManager(raw string) *Manager {
	m := &Manager{flags: make(map[string]flag)}

	for _, entry := range strings.Split(raw, ",") {
		name, value, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		name = normalize(name)
		value = normalize(value)
		if name == "" || value == "" {
			continue
		}
		m.flags[name] = parseValue(value)
	}

	return m
}

func parseValue(value string) flag {
	f := flag{raw: value}
	switch value {
	case "on", "true", "1":
		f.state = stateOn
		return f
	case "off", "false", "0":
		return f
	}
	if pct, ok := strings.CutSuffix(value, "%"); ok {
		if n, err := strconv.Atoi(pct); err == nil {
			f.state = statePercent
			f.percent = n
		}
	}
	return f
}

// Enabled reports whether the named flag is on for the given user. Percent
// rollouts bucket each user deterministically, so a user stays in or out of
// a rollout across requests; anonymous callers (userID 0) are never included.
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}
	f, ok := m.flags[normalize(name)]
	if !ok {
		return false
	}
	switch f.state {
	case stateOn:
		return true
	case statePercent:
		if f.percent <= 0 {
			return false
		}
		if f.percent >= 100 {
			return true
		}
		if userID == 0 {
			return false
		}
		return rolloutBucket(name, userID) < f.percent
	}
	return false
}

// Raw returns the configured values as parsed, keyed by flag name.
func (m *Manager) Raw() map[string]string {
	out := make(map[string]string, len(m.flags))
	for name, f := range m.flags {
		out[name] = f.raw
	}
	return out
}

// Snapshot evaluates every flag for one user.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	out := make(map[string]bool, len(m.flags))
	for name := range m.flags {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// rolloutBucket maps a flag/user pair onto 0..99. FNV keeps the bucket
// stable across restarts without any stored state.
func rolloutBucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(fmt.Sprintf("%s:%d", normalize(name), userID)))
	return int(h.Sum32() % 100)
}
