// Package driver implements the Driver Dispatcher (spec §4.6, §9):
// resolving a Telegram's identity triple to the DriverInfo that knows
// how to read it, and running that driver's Meter over the telegram's
// extracted entries.
//
// Registration is an explicit call (Register) returning an error,
// replacing the teacher's mutable package-level function-variable
// indirection in internal/protocol/protocol.go
// (`var NewJ1587Protocol = func() Protocol {...}`, reassigned from
// init() in each cmd/agent-*/main.go) — spec §9 names that exact
// pattern as the thing a from-scratch Go design should not repeat.
package driver

import (
	"fmt"

	"github.com/vanturaiot/wmbus-core/internal/field"
	"github.com/vanturaiot/wmbus-core/internal/field/formula"
	"github.com/vanturaiot/wmbus-core/internal/wmbus"
)

// Triple identifies a meter type the way the DLL/TPL header does:
// manufacturer code, device type byte, and version byte. A Type or
// Version of 0xff in a registered triple acts as a wildcard.
type Triple struct {
	Mfct    uint16
	Type    byte
	Version byte
}

const wildcardByte = 0xff

// mfctMask strips the manufacturer code's high bit before comparison,
// tolerating meters that set it incorrectly (spec §4.6).
const mfctMask = 0x7fff

// Matches reports whether t (parsed from a telegram) satisfies this
// registration triple, honoring wildcardByte in Type/Version.
func (reg Triple) Matches(t Triple) bool {
	if reg.Mfct&mfctMask != t.Mfct&mfctMask {
		return false
	}
	if reg.Type != wildcardByte && reg.Type != t.Type {
		return false
	}
	if reg.Version != wildcardByte && reg.Version != t.Version {
		return false
	}
	return true
}

// ContentProcessor lets a driver compute fields directly from a
// telegram's raw entries before or instead of the generic field
// engine, for payloads too irregular for declarative FieldInfos (spec
// §9's composition-over-inheritance note: a Meter is FieldEngine plus
// an optional ContentProcessor hook, not a subclass per driver).
type ContentProcessor func(t *wmbus.Telegram, r *field.Result)

// DriverInfo is one registered meter driver.
type DriverInfo struct {
	Name       string
	Detect     []Triple
	Fields     []*field.FieldInfo
	Formulas   map[string]*formula.Expr
	Process    ContentProcessor
}

// Meter is a DriverInfo bound and ready to run against telegrams.
type Meter struct {
	Info *DriverInfo
}

// Run extracts fields, runs the driver's ContentProcessor if any,
// evaluates calculated fields, and composes the status string.
func (m *Meter) Run(t *wmbus.Telegram, tplStatusBits []string) *field.Result {
	r := field.ExtractFields(t, m.Info.Fields)
	if m.Info.Process != nil {
		m.Info.Process(t, r)
	}
	field.CalculateFields(r, m.Info.Formulas)
	field.ComposeStatus(r, tplStatusBits)
	return r
}

// Registry holds every registered DriverInfo, keyed by name, with
// Detect triples checked in registration order on lookup.
type Registry struct {
	byName  map[string]*DriverInfo
	ordered []*DriverInfo
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byName: map[string]*DriverInfo{}}
}

// Register adds info to the registry. A duplicate name, or a Detect
// triple that collides with one already registered to a different
// driver, is rejected as a ConfigError rather than a panic (spec §9's
// Open Question resolution: "treat as disallowed").
func (reg *Registry) Register(info *DriverInfo) error {
	if _, exists := reg.byName[info.Name]; exists {
		return &wmbus.ConfigError{Reason: fmt.Sprintf("driver %q already registered", info.Name)}
	}
	for _, existing := range reg.ordered {
		for _, a := range existing.Detect {
			for _, b := range info.Detect {
				if a.Matches(b) {
					return &wmbus.ConfigError{Reason: fmt.Sprintf(
						"driver %q detection triple %+v collides with %q", info.Name, a, existing.Name)}
				}
			}
		}
	}
	reg.byName[info.Name] = info
	reg.ordered = append(reg.ordered, info)
	return nil
}

// Lookup returns the DriverInfo whose Detect list matches t, in
// registration order, or nil if none does.
func (reg *Registry) Lookup(t Triple) *DriverInfo {
	for _, info := range reg.ordered {
		for _, d := range info.Detect {
			if d.Matches(t) {
				return info
			}
		}
	}
	return nil
}

// ByName returns the DriverInfo registered under name, or nil.
func (reg *Registry) ByName(name string) *DriverInfo {
	return reg.byName[name]
}

// Names returns every registered driver name, in registration order.
func (reg *Registry) Names() []string {
	out := make([]string, len(reg.ordered))
	for i, info := range reg.ordered {
		out[i] = info.Name
	}
	return out
}
