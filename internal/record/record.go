// Package record implements the wM-Bus DIF/VIF data-record parser
// (spec §4.5): walking the decrypted TPL payload into a sequence of
// DVEntry values, one per data record.
//
// The per-nibble length table and the DIFE storage/tariff/subunit
// accumulation are generalized from the same kind of fixed-width,
// bit-packed field extraction the teacher does for CAN IDs in
// internal/j1939/j1939.go (processFrames' pgn/sa/pf bit-splitting),
// here applied to the DIF/DIFE/VIF/VIFE byte chain instead of a single
// 29-bit identifier.
package record

import (
	"time"

	"github.com/vanturaiot/wmbus-core/internal/record/vif"
	"github.com/vanturaiot/wmbus-core/internal/wmbus"
)

// difDataLen maps a DIF low nibble to the number of data bytes the
// record carries (spec §4.5's table). 0x0D (LVAR) and 0x0F/0x1F
// (manufacturer data / more-records-follow) are handled specially in
// Parse, not through this table.
var difDataLen = [16]int{
	0x0: 0, 0x1: 1, 0x2: 2, 0x3: 3, 0x4: 4, 0x5: 4, 0x6: 6, 0x7: 8,
	0x8: 0, 0x9: 1, 0xa: 2, 0xb: 3, 0xc: 4, 0xd: -1, 0xe: 6, 0xf: -1,
}

const (
	difIdleFiller  = 0x2f
	difManufData   = 0x0f
	difMoreRecords = 0x1f
)

// Parse walks data (the plaintext payload after the TPL header) into a
// sequence of DVEntry values. Parsing never stops at the first
// malformed record: on error it flags an Invalid entry and advances by
// at least one byte, per spec §3's "never silently drop a byte" rule.
func Parse(data []byte) []*wmbus.DVEntry {
	var entries []*wmbus.DVEntry
	pos := 0

	for pos < len(data) {
		start := pos
		dif := data[pos]

		if dif == difIdleFiller {
			pos++
			continue
		}
		if dif == difManufData || dif == difMoreRecords {
			// Remainder of the payload is an opaque manufacturer blob;
			// there is nothing more to parse after it.
			e := &wmbus.DVEntry{Offset: start, DifVifKey: "MFCT", Raw: append([]byte(nil), data[pos+1:]...)}
			entries = append(entries, e)
			break
		}

		pos++
		measurementType := measurementTypeOf(dif)
		storageNr := int((dif >> 6) & 0x1)
		tariffNr := 0
		subUnitNr := 0

		for pos < len(data) && data[pos-1]&0x80 != 0 {
			dife := data[pos]
			pos++
			storageNr |= int(dife&0x0f) << 1
			tariffNr |= int((dife >> 4) & 0x3) << 0
			subUnitNr |= int((dife>>6)&0x1) << 0
		}

		if pos >= len(data) {
			entries = append(entries, invalidEntry(start, "truncated after DIF(E)"))
			break
		}
		vifByte := data[pos]
		pos++

		combinable := wmbus.CombinableNone
		for pos < len(data) && data[pos-1]&0x80 != 0 {
			vife := data[pos]
			pos++
			switch vife & 0x7f {
			case 0x3b:
				combinable = wmbus.CombinableBackwardFlow
			case 0x3a:
				combinable = wmbus.CombinableForwardFlow
			}
		}

		n := dif & 0x0f
		length := difDataLen[n]

		var e *wmbus.DVEntry
		switch {
		case n == 0x0d: // LVAR
			if pos >= len(data) {
				entries = append(entries, invalidEntry(start, "truncated LVAR length"))
				pos = advanceMin(start, pos, len(data))
				continue
			}
			lvarLen := int(data[pos])
			pos++
			if lvarLen > 0xbf {
				// Negative/date LVAR codes not supported; treat as opaque.
				lvarLen = 0
			}
			if pos+lvarLen > len(data) {
				entries = append(entries, invalidEntry(start, "truncated LVAR payload"))
				pos = len(data)
				continue
			}
			raw := data[pos : pos+lvarLen]
			pos += lvarLen
			e = newEntry(start, vifByte, measurementType, storageNr, tariffNr, subUnitNr, combinable, raw)
			e.HasString = true
			e.Str = reverseASCII(raw)

		default:
			if length < 0 || pos+length > len(data) {
				entries = append(entries, invalidEntry(start, "truncated data field"))
				pos = advanceMin(start, pos, len(data))
				continue
			}
			raw := data[pos : pos+length]
			pos += length
			e = newEntry(start, vifByte, measurementType, storageNr, tariffNr, subUnitNr, combinable, raw)
			decodeValue(e, raw)
		}

		entries = append(entries, e)
	}

	return entries
}

func advanceMin(start, pos, limit int) int {
	if pos > start {
		return pos
	}
	if start+1 <= limit {
		return start + 1
	}
	return limit
}

func invalidEntry(offset int, _ string) *wmbus.DVEntry {
	return &wmbus.DVEntry{Offset: offset, Invalid: true}
}

func measurementTypeOf(dif byte) wmbus.MeasurementType {
	switch (dif >> 4) & 0x3 {
	case 0:
		return wmbus.Instantaneous
	case 1:
		return wmbus.Maximum
	case 2:
		return wmbus.Minimum
	default:
		return wmbus.AtError
	}
}

func newEntry(offset int, vifByte byte, mt wmbus.MeasurementType, storageNr, tariffNr, subUnitNr int, combinable wmbus.Combinable, raw []byte) *wmbus.DVEntry {
	rangeInfo, _ := vif.Lookup(vifByte)
	return &wmbus.DVEntry{
		Offset:          offset,
		DifVifKey:       keyFor(vifByte, storageNr, tariffNr, subUnitNr),
		MeasurementType: mt,
		VIFRange:        rangeInfo.Range,
		VIF:             vifByte,
		Combinable:      combinable,
		StorageNr:       storageNr,
		TariffNr:        tariffNr,
		SubUnitNr:       subUnitNr,
		Raw:             append([]byte(nil), raw...),
	}
}

func keyFor(vifByte byte, storageNr, tariffNr, subUnitNr int) string {
	const hex = "0123456789abcdef"
	b := []byte{'V', hex[vifByte>>4], hex[vifByte&0xf], '-', 'S', hex[storageNr&0xf], '-', 'T', hex[tariffNr&0xf], '-', 'U', hex[subUnitNr&0xf]}
	return string(b)
}

// decodeValue fills in the numeric/date interpretation of a record's
// raw bytes using its VIFRange, applying the VIF table's scale.
func decodeValue(e *wmbus.DVEntry, raw []byte) {
	info, ok := vif.Lookup(e.VIF)
	if !ok {
		return
	}
	switch info.Range {
	case wmbus.VIFRangeDate, wmbus.VIFRangeDateTime:
		if t, ok := decodeDate(raw); ok {
			e.HasDate = true
			e.Date = t
		}
		return
	}

	n := littleEndianUint(raw)
	e.HasNumeric = true
	e.Numeric = float64(n) * info.Scale
}

func littleEndianUint(raw []byte) uint64 {
	var v uint64
	for i := len(raw) - 1; i >= 0; i-- {
		v = (v << 8) | uint64(raw[i])
	}
	return v
}

// decodeDate decodes the type-G (2-byte date) and type-F (4-byte
// date-time) encodings (spec §4.5).
func decodeDate(raw []byte) (time.Time, bool) {
	switch len(raw) {
	case 2:
		day := int(raw[0] & 0x1f)
		month := int(raw[1] & 0x0f)
		year := int((raw[0]>>5)&0x7) | int((raw[1]>>5)&0x7)<<3
		if day == 0 || month == 0 {
			return time.Time{}, false
		}
		return time.Date(2000+year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
	case 4:
		minute := int(raw[0] & 0x3f)
		hour := int(raw[1] & 0x1f)
		day := int(raw[2] & 0x1f)
		month := int(raw[3] & 0x0f)
		year := int((raw[2]>>5)&0x7) | int((raw[3]>>5)&0x7)<<3
		if day == 0 || month == 0 {
			return time.Time{}, false
		}
		return time.Date(2000+year, time.Month(month), day, hour, minute, 0, 0, time.UTC), true
	default:
		return time.Time{}, false
	}
}

// reverseASCII decodes an LVAR string record, which is stored
// byte-reversed on the wire (spec §4.5).
func reverseASCII(raw []byte) string {
	b := make([]byte, len(raw))
	for i, c := range raw {
		b[len(raw)-1-i] = c
	}
	return string(b)
}
