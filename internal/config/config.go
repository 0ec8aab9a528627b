// Package config defines the schema a deployment's meter list is
// written in (spec §6): one entry per physical meter, naming its
// driver, key, accepted link modes, and which fields to emit. This is
// schema only — no file or CLI loader is built here (Non-goal); yaml
// tags and mapstructure decoding are provided so a caller-supplied
// loader can turn a parsed YAML document or a generic
// map[string]interface{} into a Config with one call.
package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/vanturaiot/wmbus-core/internal/wmbus"
)

// MeterConfig is one entry in a deployment's meter list.
type MeterConfig struct {
	Name                 string            `yaml:"name" mapstructure:"name"`
	Driver               string            `yaml:"driver" mapstructure:"driver"`
	DriverExtras         map[string]string `yaml:"driver_extras,omitempty" mapstructure:"driver_extras"`
	AddressExpressions   []string          `yaml:"address_expressions" mapstructure:"address_expressions"`
	Key                  string            `yaml:"key,omitempty" mapstructure:"key"`
	LinkModes            []string          `yaml:"link_modes" mapstructure:"link_modes"`
	IdentityMode         string            `yaml:"identity_mode,omitempty" mapstructure:"identity_mode"`
	SelectedFields       []string          `yaml:"selected_fields,omitempty" mapstructure:"selected_fields"`
	ExtraConstantFields  map[string]string `yaml:"extra_constant_fields,omitempty" mapstructure:"extra_constant_fields"`
	ExtraCalculatedFields map[string]string `yaml:"extra_calculated_fields,omitempty" mapstructure:"extra_calculated_fields"`
	PollInterval         time.Duration     `yaml:"poll_interval,omitempty" mapstructure:"poll_interval"`
}

// Config is a full deployment: every meter this process should decode.
type Config struct {
	Meters []MeterConfig `yaml:"meters" mapstructure:"meters"`
}

// Keys decodes the meter's confidentiality key from its hex string
// form, returning an empty key (unencrypted) for "" or "NOKEY".
func (m MeterConfig) Keys() (wmbus.MeterKeys, error) {
	if m.Key == "" || strings.EqualFold(m.Key, "NOKEY") {
		return wmbus.MeterKeys{}, nil
	}
	raw, err := hexDecode(m.Key)
	if err != nil {
		return wmbus.MeterKeys{}, &wmbus.ConfigError{Reason: "bad key hex", Err: err}
	}
	if len(raw) != 16 {
		return wmbus.MeterKeys{}, &wmbus.ConfigError{Reason: "key must be 16 bytes"}
	}
	return wmbus.MeterKeys{Confidentiality: raw}, nil
}

func hexDecode(s string) ([]byte, error) {
	if len(s)%2 != 0 {
		return nil, strconvErr("odd-length hex string")
	}
	out := make([]byte, len(s)/2)
	for i := range out {
		hi, err := strconv.ParseUint(s[i*2:i*2+1], 16, 8)
		if err != nil {
			return nil, err
		}
		lo, err := strconv.ParseUint(s[i*2+1:i*2+2], 16, 8)
		if err != nil {
			return nil, err
		}
		out[i] = byte(hi<<4 | lo)
	}
	return out, nil
}

type strconvErr string

func (e strconvErr) Error() string { return string(e) }

// MatchAddress reports whether addr satisfies any of m's
// address_expressions. An expression is either a bare 8-digit address,
// a glob with '*' wildcards, or "any". Only the address is matched;
// manufacturer, type and version are not part of the comparison.
func (m MeterConfig) MatchAddress(addr string) bool {
	for _, expr := range m.AddressExpressions {
		if expr == "any" {
			return true
		}
		if globMatch(expr, addr) {
			return true
		}
	}
	return false
}

func globMatch(pattern, s string) bool {
	if !strings.Contains(pattern, "*") {
		return pattern == s
	}
	parts := strings.Split(pattern, "*")
	if !strings.HasPrefix(s, parts[0]) {
		return false
	}
	s = s[len(parts[0]):]
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		idx := strings.Index(s, p)
		if idx < 0 {
			return false
		}
		s = s[idx+len(p):]
	}
	return true
}

// FromMap decodes a generic map (as parsed from JSON/CLI flags/etc)
// into a Config via mapstructure, the same decode path
// oasisprotocol-cli uses for its own loosely-typed configuration
// input.
func FromMap(m map[string]interface{}) (*Config, error) {
	var cfg Config
	if err := mapstructure.Decode(m, &cfg); err != nil {
		return nil, &wmbus.ConfigError{Reason: "decode config map", Err: err}
	}
	return &cfg, nil
}

// FromYAML decodes raw YAML bytes into a Config.
func FromYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &wmbus.ConfigError{Reason: "decode config yaml", Err: err}
	}
	return &cfg, nil
}
