// Grounded on original_source/components/wmbus/driver_supercom587.cpp:
// a total-volume field plus an ERROR_FLAGS status field whose bits are
// looked up in a small string table (MaskBits(0x000f) there), joined
// into the meter's status, defaulting to "OK" when no bit is set.
package builtin

import (
	"github.com/vanturaiot/wmbus-core/internal/driver"
	"github.com/vanturaiot/wmbus-core/internal/field"
	"github.com/vanturaiot/wmbus-core/internal/field/unit"
	"github.com/vanturaiot/wmbus-core/internal/wmbus"
)

var supercom587ErrorBits = map[uint64]string{
	0x1: "DRY",
	0x2: "REVERSE",
	0x4: "LEAK",
	0x8: "BURST",
}

func supercom587Info() *driver.DriverInfo {
	return &driver.DriverInfo{
		Name: "supercom587",
		Detect: []driver.Triple{
			{Mfct: mfct("ELS"), Type: 0x06, Version: 0x3c},
		},
		Fields: []*field.FieldInfo{
			{
				Name:        "total",
				Quantity:    unit.QuantityVolume,
				DisplayUnit: unit.UnitM3,
				Matcher: field.FieldMatcher{
					VIFRange:        wmbus.VIFRangeVolume,
					MeasurementType: wmbus.Instantaneous,
				},
			},
			{
				Name:             "error_flags",
				InjectIntoStatus: true,
				Matcher: field.FieldMatcher{
					VIFRange:           wmbus.VIFRangeErrorFlags,
					AnyMeasurementType: true,
				},
				OverrideConversion: func(e *wmbus.DVEntry) (float64, bool) {
					return 0, false // status text is produced via Process below
				},
			},
		},
		Process: func(t *wmbus.Telegram, r *field.Result) {
			e, ok := t.EntriesByKey[errorFlagsKey(t)]
			if !ok {
				return
			}
			bits := littleEndianUint(e.Raw)
			for mask, name := range supercom587ErrorBits {
				if bits&mask != 0 {
					r.Strings["__status__"+name] = name
				}
			}
		},
	}
}

// errorFlagsKey finds the DifVifKey of the first ErrorFlags entry so
// Process can look it up directly; real drivers with more than one
// ERROR_FLAGS-shaped record would need a matcher here instead.
func errorFlagsKey(t *wmbus.Telegram) string {
	for _, e := range t.Entries {
		if e.VIFRange == wmbus.VIFRangeErrorFlags {
			return e.DifVifKey
		}
	}
	return ""
}

func littleEndianUint(raw []byte) uint64 {
	var v uint64
	for i := len(raw) - 1; i >= 0; i-- {
		v = (v << 8) | uint64(raw[i])
	}
	return v
}
