// Grounded on
// original_source/components/wmbus/DriversWmbusMeters/driver_mkradio4.cpp's
// processContent: the payload is a single opaque manufacturer-data
// blob (DIF 0x0F), not standard DIF/VIF records, so this driver reads
// two little-endian tenths-of-m3 counters directly out of it: "prev"
// at byte offset 3-4 and "curr" at byte offset 7-8, with total =
// prev+curr and target = prev.
package builtin

import (
	"github.com/vanturaiot/wmbus-core/internal/driver"
	"github.com/vanturaiot/wmbus-core/internal/field"
	"github.com/vanturaiot/wmbus-core/internal/wmbus"
)

func mkradio4Info() *driver.DriverInfo {
	return &driver.DriverInfo{
		Name: "mkradio4",
		Detect: []driver.Triple{
			{Mfct: mfct("TCH"), Type: 0x62, Version: wildcardVersion},
			{Mfct: mfct("TCH"), Type: 0x72, Version: wildcardVersion},
		},
		Process: func(t *wmbus.Telegram, r *field.Result) {
			raw := manufacturerBlob(t)
			if len(raw) < 9 {
				return
			}
			prev := float64(uint16(raw[3])|uint16(raw[4])<<8) / 10.0
			curr := float64(uint16(raw[7])|uint16(raw[8])<<8) / 10.0
			r.Numeric["total_m3"] = prev + curr
			r.Numeric["target_m3"] = prev
		},
	}
}

const wildcardVersion = 0xff

func manufacturerBlob(t *wmbus.Telegram) []byte {
	if e, ok := t.EntriesByKey["MFCT"]; ok {
		return e.Raw
	}
	return nil
}
