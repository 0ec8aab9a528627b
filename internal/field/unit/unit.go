// Package unit holds the physical-quantity and unit vocabulary a
// FieldInfo can request output in, plus the static conversion table
// between units of the same quantity (spec §4.6).
package unit

// Quantity groups units that measure the same physical dimension and
// can be converted between each other.
type Quantity int

const (
	QuantityVolume Quantity = iota
	QuantityVolumeFlow
	QuantityEnergy
	QuantityPower
	QuantityMassFlow
	QuantityTemperature
	QuantityTime
	QuantityVoltage
	QuantityCurrent
	QuantityText
	QuantityDateTime
	QuantityCounter
)

// Unit is a concrete display unit within a Quantity.
type Unit int

const (
	UnitNone Unit = iota
	UnitM3
	UnitL
	UnitM3H
	UnitLH
	UnitWh
	UnitKWh
	UnitMJ
	UnitGJ
	UnitW
	UnitKW
	UnitKgH
	UnitC
	UnitK
	UnitSecond
	UnitMinute
	UnitHour
	UnitDay
	UnitV
	UnitA
	UnitText
	UnitDateTime
	UnitCounter
)

// factor expresses Unit in terms of its Quantity's SI base unit: m3,
// m3/h, Wh, W, kg/h, C (offset-free, so only scale applies), or
// seconds.
var factor = map[Unit]float64{
	UnitM3: 1, UnitL: 0.001,
	UnitM3H: 1, UnitLH: 0.001,
	UnitWh: 1, UnitKWh: 1000, UnitMJ: 1000.0 / 3.6, UnitGJ: 1000000.0 / 3.6,
	UnitW: 1, UnitKW: 1000,
	UnitKgH:    1,
	UnitC:      1,
	UnitK:      1,
	UnitSecond: 1, UnitMinute: 60, UnitHour: 3600, UnitDay: 86400,
	UnitV: 1, UnitA: 1,
}

// Convert rescales a value expressed in fromUnit's base-SI quantity
// into toUnit. Both units must belong to the same Quantity; callers are
// responsible for that invariant (this package has no reflection-based
// quantity lookup by design, matching spec §4.6's static-table intent).
func Convert(value float64, fromUnit, toUnit Unit) float64 {
	f, ok1 := factor[fromUnit]
	t, ok2 := factor[toUnit]
	if !ok1 || !ok2 || t == 0 {
		return value
	}
	return value * f / t
}

// baseUnit maps a Quantity to the unit internal/record decodes its raw
// VIF-scaled values into, the "fromUnit" side of every Convert call the
// field engine makes.
var baseUnit = map[Quantity]Unit{
	QuantityVolume:      UnitM3,
	QuantityVolumeFlow:  UnitM3H,
	QuantityEnergy:      UnitWh,
	QuantityPower:       UnitW,
	QuantityMassFlow:    UnitKgH,
	QuantityTemperature: UnitC,
	QuantityTime:        UnitSecond,
	QuantityVoltage:     UnitV,
	QuantityCurrent:     UnitA,
}

// BaseUnit returns the unit q's raw values arrive in before display-unit
// conversion, or UnitNone for quantities with no numeric conversion
// (text, date/time, counters).
func (q Quantity) BaseUnit() Unit {
	return baseUnit[q]
}

// String renders a Unit the way it appears in serialized output keys
// (spec §6's "_unit" convention).
func (u Unit) String() string {
	switch u {
	case UnitM3:
		return "m3"
	case UnitL:
		return "l"
	case UnitM3H:
		return "m3h"
	case UnitLH:
		return "lh"
	case UnitWh:
		return "wh"
	case UnitKWh:
		return "kwh"
	case UnitMJ:
		return "mj"
	case UnitGJ:
		return "gj"
	case UnitW:
		return "w"
	case UnitKW:
		return "kw"
	case UnitKgH:
		return "kgh"
	case UnitC:
		return "c"
	case UnitK:
		return "k"
	case UnitSecond:
		return "s"
	case UnitMinute:
		return "min"
	case UnitHour:
		return "h"
	case UnitDay:
		return "day"
	case UnitV:
		return "v"
	case UnitA:
		return "a"
	case UnitText:
		return "text"
	case UnitDateTime:
		return "date"
	case UnitCounter:
		return "counter"
	default:
		return ""
	}
}
