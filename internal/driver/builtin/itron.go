// Grounded on original_source/components/wmbus/driver_itron.h, which
// ESPHome itself ships as a detection-only stub (no field decoding
// implemented upstream either). Kept as a stub here for the same
// reason: registering the identity so telegrams from this meter are
// recognized and not misrouted to the generic fallback, without
// fabricating field semantics nothing in the retrieval pack describes.
package builtin

import "github.com/vanturaiot/wmbus-core/internal/driver"

func itronInfo() *driver.DriverInfo {
	return &driver.DriverInfo{
		Name: "itron",
		Detect: []driver.Triple{
			{Mfct: mfct("ITW"), Type: 0x07, Version: wildcardVersion},
		},
	}
}
