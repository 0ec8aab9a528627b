// generic is the fallback driver the pipeline selects when no
// registered Detect triple matches a telegram's identity (spec §4.6):
// it reports whatever common quantities the record parser found,
// without meter-specific decoding. It carries no Detect entries of its
// own, since a driver with a wildcard trip would make every other
// registration a collision; the pipeline looks it up by name instead.
package builtin

import (
	"github.com/vanturaiot/wmbus-core/internal/driver"
	"github.com/vanturaiot/wmbus-core/internal/field"
	"github.com/vanturaiot/wmbus-core/internal/field/unit"
	"github.com/vanturaiot/wmbus-core/internal/wmbus"
)

// GenericDriverName is the registry key the pipeline falls back to.
const GenericDriverName = "generic"

func genericInfo() *driver.DriverInfo {
	return &driver.DriverInfo{
		Name: GenericDriverName,
		Fields: []*field.FieldInfo{
			{
				Name:        "total",
				Quantity:    unit.QuantityVolume,
				DisplayUnit: unit.UnitM3,
				Matcher:     field.FieldMatcher{VIFRange: wmbus.VIFRangeVolume, AnyMeasurementType: true},
			},
			{
				Name:        "total_energy",
				Quantity:    unit.QuantityEnergy,
				DisplayUnit: unit.UnitKWh,
				Matcher:     field.FieldMatcher{VIFRange: wmbus.VIFRangeEnergy, AnyMeasurementType: true},
			},
			{
				Name:        "flow_temperature",
				Quantity:    unit.QuantityTemperature,
				DisplayUnit: unit.UnitC,
				Matcher:     field.FieldMatcher{VIFRange: wmbus.VIFRangeFlowTemperature, AnyMeasurementType: true},
			},
			{
				Name:        "return_temperature",
				Quantity:    unit.QuantityTemperature,
				DisplayUnit: unit.UnitC,
				Matcher:     field.FieldMatcher{VIFRange: wmbus.VIFRangeReturnTemperature, AnyMeasurementType: true},
			},
		},
	}
}
