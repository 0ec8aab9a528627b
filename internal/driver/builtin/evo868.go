// Grounded on original_source/components/wmbus/driver_evo868.h, same
// detection-only stub situation as itron.go.
package builtin

import "github.com/vanturaiot/wmbus-core/internal/driver"

func evo868Info() *driver.DriverInfo {
	return &driver.DriverInfo{
		Name: "evo868",
		Detect: []driver.Triple{
			{Mfct: mfct("AXI"), Type: 0x0a, Version: wildcardVersion},
		},
	}
}
