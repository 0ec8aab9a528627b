// Package builtin registers the meter drivers shipped with this
// module. Each driver is grounded on a file under
// original_source/components/wmbus/, adapted from ESPHome's C++
// driver-per-meter shape into a declarative DriverInfo plus, where the
// payload is too irregular for DIF/VIF matchers alone, a small
// ContentProcessor.
package builtin

import "github.com/vanturaiot/wmbus-core/internal/driver"

// RegisterAll registers every built-in driver into reg, returning the
// first registration error encountered (a name or detection-triple
// collision; see driver.Registry.Register).
func RegisterAll(reg *driver.Registry) error {
	for _, info := range []*driver.DriverInfo{
		supercom587Info(),
		mkradio4Info(),
		apator162Info(),
		itronInfo(),
		evo868Info(),
		genericInfo(),
	} {
		if err := reg.Register(info); err != nil {
			return err
		}
	}
	return nil
}
