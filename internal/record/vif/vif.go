// Package vif holds the wM-Bus VIF/VIFE lookup tables (spec §4.5): the
// primary VIF table (including a manufacturer-specific 0x7C entry) and
// a partial 0xFD extension table. There is no 0xFB table; IsExtensionFB
// only recognizes that prefix byte. It is a pure static-data package, the
// same shape as the teacher's midDescriptions/fmiDescriptions maps in
// internal/j1587/j1587.go generalized from two flat string tables into
// one table keyed by VIF byte and returning a (VIFRange, scale, unit).
package vif

import "github.com/vanturaiot/wmbus-core/internal/wmbus"

// Entry describes what one VIF byte means: the physical quantity it
// selects, the decimal exponent applied to the raw integer value, and
// the display unit for that exponent.
type Entry struct {
	Range VIFRangeAndUnit
}

// VIFRangeAndUnit couples a VIFRange with the scale/unit a given VIF
// byte selects within that range.
type VIFRangeAndUnit struct {
	Range VIFRangeID
	Scale float64 // multiply the raw integer by this to get base SI unit
	Unit  string
}

type VIFRangeID = wmbus.VIFRange

// primaryTable maps the low 7 bits of a non-extension VIF byte (bit 7
// is the VIFE-follows flag, stripped before lookup) to its meaning.
// Ranges of VIF values that share a linear exponent step (volume,
// energy, power, mass flow, temperature) are expanded programmatically
// in init() rather than listed byte by byte, mirroring how the OMS
// table itself is defined as base-code-plus-exponent-nibble.
var primaryTable = map[byte]VIFRangeAndUnit{}

func init() {
	// Energy, Wh: 0x00-0x07, exponent = nibble-3 (low bit of code - 3)
	for n := byte(0); n < 8; n++ {
		primaryTable[0x00+n] = VIFRangeAndUnit{wmbus.VIFRangeEnergy, pow10(int(n) - 3), "Wh"}
	}
	// Energy, J: 0x08-0x0F, exponent = nibble, rescaled to Wh
	// (1 Wh = 3600 J) so every energy VIF decodes into the same unit
	for n := byte(0); n < 8; n++ {
		primaryTable[0x08+n] = VIFRangeAndUnit{wmbus.VIFRangeEnergy, pow10(int(n)) / 3600, "Wh"}
	}
	// Volume, m3: 0x10-0x17, exponent = nibble-6
	for n := byte(0); n < 8; n++ {
		primaryTable[0x10+n] = VIFRangeAndUnit{wmbus.VIFRangeVolume, pow10(int(n) - 6), "m3"}
	}
	// Mass, kg: 0x18-0x1F, exponent = nibble-3
	for n := byte(0); n < 8; n++ {
		primaryTable[0x18+n] = VIFRangeAndUnit{wmbus.VIFRangeEnergy, pow10(int(n) - 3), "kg"}
	}
	// On Time / Off Time: 0x20-0x23 (seconds..days)
	primaryTable[0x20] = VIFRangeAndUnit{wmbus.VIFRangeDuration, 1, "seconds"}
	primaryTable[0x21] = VIFRangeAndUnit{wmbus.VIFRangeDuration, 60, "seconds"}
	primaryTable[0x22] = VIFRangeAndUnit{wmbus.VIFRangeDuration, 3600, "seconds"}
	primaryTable[0x23] = VIFRangeAndUnit{wmbus.VIFRangeDuration, 86400, "seconds"}

	// Power, W: 0x28-0x2F, exponent = nibble-3
	for n := byte(0); n < 8; n++ {
		primaryTable[0x28+n] = VIFRangeAndUnit{wmbus.VIFRangePower, pow10(int(n) - 3), "W"}
	}
	// Volume flow, m3/h: 0x38-0x3F, exponent = nibble-6
	for n := byte(0); n < 8; n++ {
		primaryTable[0x38+n] = VIFRangeAndUnit{wmbus.VIFRangeVolumeFlow, pow10(int(n) - 6), "m3/h"}
	}
	// Mass flow, kg/h: 0x58-0x5F, exponent = nibble-3
	for n := byte(0); n < 8; n++ {
		primaryTable[0x58+n] = VIFRangeAndUnit{wmbus.VIFRangeMassFlow, pow10(int(n) - 3), "kg/h"}
	}
	// Flow temperature, C: 0x60-0x63, exponent = nibble-3
	for n := byte(0); n < 4; n++ {
		primaryTable[0x60+n] = VIFRangeAndUnit{wmbus.VIFRangeFlowTemperature, pow10(int(n) - 3), "C"}
	}
	// Return temperature, C: 0x64-0x67
	for n := byte(0); n < 4; n++ {
		primaryTable[0x64+n] = VIFRangeAndUnit{wmbus.VIFRangeReturnTemperature, pow10(int(n) - 3), "C"}
	}
	// Temperature difference, K: 0x68-0x6B
	for n := byte(0); n < 4; n++ {
		primaryTable[0x68+n] = VIFRangeAndUnit{wmbus.VIFRangeTemperatureDifference, pow10(int(n) - 3), "K"}
	}
	// External temperature, C: 0x6C-0x6F
	for n := byte(0); n < 4; n++ {
		primaryTable[0x6c+n] = VIFRangeAndUnit{wmbus.VIFRangeExternalTemperature, pow10(int(n) - 3), "C"}
	}

	// Date: this table has no type-G Date entry; 0x6C resolves only to
	// external temperature above. record.decodeValue decodes a date
	// (2-byte or 4-byte) only for VIF 0x6D, the date-time entry below.
	primaryTable[0x6d] = VIFRangeAndUnit{wmbus.VIFRangeDateTime, 1, ""}

	primaryTable[0x78] = VIFRangeAndUnit{wmbus.VIFRangeFabricationNo, 1, ""}
	primaryTable[0x7c] = VIFRangeAndUnit{wmbus.VIFRangeManufacturerSpecific, 1, ""}

	// Voltage, V: 0x7E is base for an FD-extension-only family in real
	// tables; provided here as a simple placeholder entry.
	primaryTable[0x7e] = VIFRangeAndUnit{wmbus.VIFRangeVoltage, 1, "V"}

	// Error flags
	primaryTable[0x7d] = VIFRangeAndUnit{wmbus.VIFRangeErrorFlags, 1, ""}

	// Manufacturer specific range 0x7F / 0xFF handled by caller via DIF
	// manufacturer-data escape, not through this table.
}

func pow10(exp int) float64 {
	v := 1.0
	if exp >= 0 {
		for i := 0; i < exp; i++ {
			v *= 10
		}
		return v
	}
	for i := 0; i < -exp; i++ {
		v /= 10
	}
	return v
}

// Lookup resolves a plain (non-extended) VIF byte's low 7 bits.
func Lookup(vif byte) (VIFRangeAndUnit, bool) {
	v, ok := primaryTable[vif&0x7f]
	return v, ok
}

// IsExtensionFB reports whether code names the 0xFB linear-extension
// table (second-generation energy/volume VIFs).
func IsExtensionFB(code byte) bool { return code == 0xfb }

// IsExtensionFD reports whether code names the 0xFD linear-extension
// table (voltage, current, and other electrical quantities).
func IsExtensionFD(code byte) bool { return code == 0xfd }

// fdTable is a minimal slice of the 0xFD extension table: the
// electrical quantities voltage and current.
var fdTable = map[byte]VIFRangeAndUnit{}

func init() {
	for n := byte(0); n < 16; n++ {
		fdTable[0x40+n] = VIFRangeAndUnit{wmbus.VIFRangeVoltage, pow10(int(n) - 9), "V"}
	}
	for n := byte(0); n < 16; n++ {
		fdTable[0x50+n] = VIFRangeAndUnit{wmbus.VIFRangeCurrent, pow10(int(n) - 12), "A"}
	}
}

// LookupFD resolves a VIFE byte within the 0xFD extension table.
func LookupFD(vife byte) (VIFRangeAndUnit, bool) {
	v, ok := fdTable[vife&0x7f]
	return v, ok
}
