// Package field implements the Field Extractor and Calculator (spec
// §4.6): matching DVEntries against a Meter's configured FieldInfos,
// scaling the matched raw value into its display unit, evaluating
// calculated-field formulas, and composing the final status string.
//
// The three-phase shape (extract, calculate, compose status) and the
// "already consumed by another field" diagnostic are grounded on
// original_source/components/wmbus_common/meters.cc's
// processFieldExtractors/processFieldCalculators/getStatusField, kept
// as three exported functions here instead of methods buried in one
// monolithic meter object, the same separation-of-stages style the
// teacher applies to its own bus.go/data.go/pids.go split.
package field

import (
	"math"
	"sort"
	"strings"

	"github.com/vanturaiot/wmbus-core/internal/field/formula"
	"github.com/vanturaiot/wmbus-core/internal/field/unit"
	"github.com/vanturaiot/wmbus-core/internal/wmbus"
)

// FieldMatcher selects which DVEntry (or entries) a FieldInfo reads
// from. Zero-value StorageNr/TariffNr/SubUnitNr require an exact match
// unless the corresponding Any flag is set.
type FieldMatcher struct {
	MeasurementType   wmbus.MeasurementType
	AnyMeasurementType bool
	VIFRange          wmbus.VIFRange
	Combinable        wmbus.Combinable
	AnyCombinable     bool

	StorageNr    int
	AnyStorageNr bool
	TariffNr     int
	AnyTariffNr  bool
	SubUnitNr    int
	AnySubUnitNr bool
}

// Matches reports whether e satisfies m.
func (m FieldMatcher) Matches(e *wmbus.DVEntry) bool {
	if e.Invalid {
		return false
	}
	if m.VIFRange != wmbus.VIFRangeAny && m.VIFRange != e.VIFRange {
		return false
	}
	if !m.AnyMeasurementType && m.MeasurementType != e.MeasurementType {
		return false
	}
	if !m.AnyCombinable && m.Combinable != wmbus.CombinableNone && m.Combinable != e.Combinable {
		return false
	}
	if !m.AnyStorageNr && m.StorageNr != e.StorageNr {
		return false
	}
	if !m.AnyTariffNr && m.TariffNr != e.TariffNr {
		return false
	}
	if !m.AnySubUnitNr && m.SubUnitNr != e.SubUnitNr {
		return false
	}
	return true
}

// FieldInfo is one output field a Meter produces from a telegram.
type FieldInfo struct {
	Name        string
	Quantity    unit.Quantity
	DisplayUnit unit.Unit
	Matcher     FieldMatcher

	// IndexNr selects the Nth (1-based) entry matching Matcher, for
	// fields expected to match against multiple entries (e.g. per-tariff
	// energy registers sharing a VIF). Zero means "first match".
	IndexNr int

	// InjectIntoStatus marks a string-valued field (typically decoded
	// from ErrorFlags) as a contributor to the composed status string.
	InjectIntoStatus bool

	// OverrideConversion replaces the VIF table's scale/unit handling
	// entirely, for drivers whose content needs bespoke interpretation
	// (spec §4.6's named escape hatch).
	OverrideConversion func(e *wmbus.DVEntry) (float64, bool)

	// VifScaling additionally multiplies the VIF-table-scaled raw value
	// before conversion into DisplayUnit, for drivers that need a
	// correction factor beyond what the VIF byte alone encodes. Zero
	// means no extra scaling (factor of 1).
	VifScaling float64
}

// Result is everything ExtractFields/CalculateFields/ComposeStatus
// produced for one telegram.
type Result struct {
	Numeric map[string]float64
	Strings map[string]string
	Status  string
}

func newResult() *Result {
	return &Result{Numeric: map[string]float64{}, Strings: map[string]string{}}
}

// ExtractFields matches each FieldInfo against t's entries in offset
// order, recording a diagnostic (via DVEntry.MarkMatched) whenever an
// entry gets consumed more than once.
func ExtractFields(t *wmbus.Telegram, fields []*FieldInfo) *Result {
	r := newResult()

	sorted := make([]*wmbus.DVEntry, len(t.Entries))
	copy(sorted, t.Entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })

	for _, fi := range fields {
		want := fi.IndexNr
		if want <= 0 {
			want = 1
		}
		matchN := 0
		var matched *wmbus.DVEntry
		for _, e := range sorted {
			if !fi.Matcher.Matches(e) {
				continue
			}
			matchN++
			if matchN == want {
				matched = e
				break
			}
		}
		if matched == nil {
			continue
		}
		matched.MarkMatched(fi.Name)

		if fi.OverrideConversion != nil {
			if v, ok := fi.OverrideConversion(matched); ok {
				r.Numeric[outputName(fi)] = v
			}
			continue
		}

		switch {
		case matched.HasNumeric:
			v := matched.Numeric
			if fi.VifScaling != 0 {
				v *= fi.VifScaling
			}
			v = unit.Convert(v, fi.Quantity.BaseUnit(), fi.DisplayUnit)
			r.Numeric[outputName(fi)] = v
		case matched.HasString:
			r.Strings[fi.Name] = matched.Str
			if fi.InjectIntoStatus {
				r.Strings["__status__"+fi.Name] = matched.Str
			}
		case matched.HasDate:
			r.Strings[fi.Name] = matched.Date.Format("2006-01-02T15:04:05")
		}
	}

	return r
}

// outputName forms the key a numeric field is reported under: its
// configured name plus the display unit's suffix (spec §6's "total_m3"
// convention), or the bare name when the field has no physical unit.
func outputName(fi *FieldInfo) string {
	suffix := fi.DisplayUnit.String()
	if suffix == "" {
		return fi.Name
	}
	return fi.Name + "_" + suffix
}

// CalculateFields evaluates each named formula against r's current
// numeric values, adding the result back into r. A formula referencing
// an unresolved name evaluates to NaN, which is stored as-is (spec
// §4.6: "a calculated field whose inputs are missing reports NaN
// rather than being omitted").
func CalculateFields(r *Result, formulas map[string]*formula.Expr) {
	for name, expr := range formulas {
		r.Numeric[name] = expr.Eval(r.Numeric)
	}
}

// ComposeStatus joins every status-contributing string this telegram
// produced (TPL status bits plus any InjectIntoStatus field), sorted
// and deduplicated, defaulting to "OK" when nothing is set — the same
// shape as the original's getStatusField/getStringValue composition.
func ComposeStatus(r *Result, tplStatusBits []string) string {
	set := map[string]bool{}
	for k, v := range r.Strings {
		if strings.HasPrefix(k, "__status__") && v != "" {
			set[v] = true
		}
	}
	for _, s := range tplStatusBits {
		if s != "" {
			set[s] = true
		}
	}
	if len(set) == 0 {
		r.Status = "OK"
		return r.Status
	}
	parts := make([]string, 0, len(set))
	for s := range set {
		parts = append(parts, s)
	}
	sort.Strings(parts)
	r.Status = strings.Join(parts, " ")
	return r.Status
}

// NaNSafe reports whether v is a usable numeric value (not NaN), so
// callers can decide whether to serialize a calculated field.
func NaNSafe(v float64) bool { return !math.IsNaN(v) }
