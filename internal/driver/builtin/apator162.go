// Grounded on original_source/components/wmbus/apator_16_2.h: this
// meter encrypts with AES-128-CBC under a manufacturer-fixed key (the
// TPL layer already decrypts given that key in configuration), then
// carries its registers as a tag/size stream rather than standard
// DIF/VIF records. Tag 0x10 with size 4 is the total-volume register:
// a little-endian uint32 in liters, reported here in cubic metres.
package builtin

import (
	"github.com/vanturaiot/wmbus-core/internal/driver"
	"github.com/vanturaiot/wmbus-core/internal/field"
	"github.com/vanturaiot/wmbus-core/internal/wmbus"
)

// apator162RegisterSize maps a register tag byte to its payload size,
// the table apator_16_2.h uses to walk tag 0x40-0xF0 without needing
// DIF/VIF framing.
var apator162RegisterSize = map[byte]int{
	0x10: 4,
	0x40: 1, 0x50: 1, 0x60: 2, 0x70: 2, 0x80: 4, 0x90: 4, 0xa0: 4,
	0xb0: 4, 0xc0: 4, 0xd0: 4, 0xe0: 4, 0xf0: 4,
}

func apator162Info() *driver.DriverInfo {
	return &driver.DriverInfo{
		Name: "apator162",
		Detect: []driver.Triple{
			{Mfct: mfct("APA"), Type: 0x06, Version: 0x02},
		},
		Process: func(t *wmbus.Telegram, r *field.Result) {
			raw := manufacturerBlob(t)
			if len(raw) < 2 {
				return
			}
			pos := 0
			for pos < len(raw) {
				tag := raw[pos]
				size, known := apator162RegisterSize[tag]
				if !known {
					pos++
					continue
				}
				pos++
				if pos+size > len(raw) {
					break
				}
				if tag == 0x10 {
					v := uint32(0)
					for i := size - 1; i >= 0; i-- {
						v = v<<8 | uint32(raw[pos+i])
					}
					r.Numeric["total_water_m3"] = float64(v) / 1000.0
				}
				pos += size
			}
		},
	}
}
