// Package wmbus holds the domain types shared by every stage of the
// telegram-to-measurement pipeline: the frame assembler, link/ELL/AFL/TPL
// decoders, the DIF/VIF record parser, and the driver/field engine.
//
// It plays the role the teacher's internal/protocol package played for
// j1587/j1939: a small hub of shared types (Protocol, VehicleData,
// DTCCode there; Telegram, DVEntry, Address here) that every later stage
// depends on without depending on each other.
package wmbus

import "time"

// LinkMode is the radio modulation/framing profile a telegram arrived on.
type LinkMode string

const (
	LinkModeT1    LinkMode = "T1"
	LinkModeC1    LinkMode = "C1"
	LinkModeS1    LinkMode = "S1"
	LinkModeT2    LinkMode = "T2"
	LinkModeC2    LinkMode = "C2"
	LinkModeS2    LinkMode = "S2"
	LinkModeMBus  LinkMode = "MBUS"
	LinkModeNone  LinkMode = ""
)

// FrameFormat distinguishes the two wM-Bus block layouts.
type FrameFormat int

const (
	FrameFormatA FrameFormat = iota
	FrameFormatB
)

func (f FrameFormat) String() string {
	if f == FrameFormatB {
		return "B"
	}
	return "A"
}

// AboutTelegram is the metadata the radio layer attaches on arrival,
// before any of the telegram's own bytes are interpreted.
type AboutTelegram struct {
	DeviceID  string
	RSSI      int
	LQI       int
	Timestamp int64
	LinkMode  LinkMode
}

// Address is one identity layer exposed by a telegram: the DLL address,
// and (if present) the TPL address, which may belong to a different
// physical device than the DLL (a gateway relaying a meter's telegram).
type Address struct {
	ID      string
	Mfct    uint16
	Version byte
	Type    byte
}

// Mask7FFF returns the manufacturer code with the high bit masked off,
// tolerating meters that set it incorrectly (spec §4.2).
func (a Address) Mask7FFF() uint16 {
	return a.Mfct & 0x7fff
}

// SecurityMode is the TPL configuration word's security-mode field.
type SecurityMode int

const (
	SecurityModeNone     SecurityMode = 0
	SecurityModeAESCBC   SecurityMode = 5
	SecurityModeAESCTR   SecurityMode = 7
	SecurityModeUnknown  SecurityMode = -1
)

// MeasurementType is derived from a DIF byte's function-field nibble.
type MeasurementType int

const (
	Instantaneous MeasurementType = iota
	Maximum
	Minimum
	AtError
)

func (m MeasurementType) String() string {
	switch m {
	case Instantaneous:
		return "Instantaneous"
	case Maximum:
		return "Maximum"
	case Minimum:
		return "Minimum"
	case AtError:
		return "AtError"
	default:
		return "Unknown"
	}
}

// VIFRange enumerates the physical quantity a VIF byte (or VIF family)
// decodes to. Any/None are matcher wildcards, not telegram values.
type VIFRange int

const (
	VIFRangeNone VIFRange = iota
	VIFRangeAny
	VIFRangeVolume
	VIFRangeVolumeFlow
	VIFRangeFlowTemperature
	VIFRangeReturnTemperature
	VIFRangeTemperatureDifference
	VIFRangeExternalTemperature
	VIFRangeEnergy
	VIFRangePower
	VIFRangeMassFlow
	VIFRangeDate
	VIFRangeDateTime
	VIFRangeErrorFlags
	VIFRangeDuration
	VIFRangeVoltage
	VIFRangeCurrent
	VIFRangeFabricationNo
	VIFRangeSoftwareVersion
	VIFRangeAnyVolumeVIF
	VIFRangeAnyEnergyVIF
	VIFRangeAnyPowerVIF
	VIFRangeManufacturerSpecific
)

// Combinable is a DIFE/VIFE-carried modifier such as forward/backward
// flow direction; FieldMatcher predicates can require one.
type Combinable int

const (
	CombinableNone Combinable = iota
	CombinableForwardFlow
	CombinableBackwardFlow
)

// DVEntry is one data record parsed from a telegram's plaintext.
type DVEntry struct {
	Offset          int
	DifVifKey       string
	MeasurementType MeasurementType
	VIFRange        VIFRange
	VIF             byte
	Combinable      Combinable
	StorageNr       int
	TariffNr        int
	SubUnitNr       int
	Raw             []byte

	HasNumeric bool
	Numeric    float64

	HasDate bool
	Date    time.Time

	HasString bool
	Str       string

	// Invalid marks a record that failed all decoders; it is retained
	// for diagnostics rather than dropped (spec §3 invariant).
	Invalid bool

	// MatchCount / LastMatchedField support the "entry already consumed
	// by another field" diagnostic without DVEntry depending on the
	// field package (which would create an import cycle).
	MatchCount      int
	LastMatchedField string
}

// Consumed reports whether any FieldInfo has already matched this entry.
func (e *DVEntry) Consumed() bool { return e.MatchCount > 0 }

// MarkMatched records a successful FieldInfo match against this entry.
func (e *DVEntry) MarkMatched(fieldName string) {
	e.MatchCount++
	e.LastMatchedField = fieldName
}

// Telegram owns the mutable state of one decoding pass, from raw radio
// bytes through to the keyed table of DVEntries the field engine reads.
type Telegram struct {
	About AboutTelegram
	Raw   []byte

	ParsedPrefixLen int
	Format          FrameFormat

	DLLMfct    uint16
	DLLAddress [4]byte
	DLLVersion byte
	DLLType    byte

	HasELL bool

	HasTPL        bool
	TPLMfct       uint16
	TPLAddress    [4]byte
	TPLVersion    byte
	TPLType       byte
	TPLAccessNr   byte
	TPLStatus     byte
	TPLConfigWord uint16

	SecurityMode SecurityMode

	// Entries preserves wire order (sorted by Offset); EntriesByKey is
	// the canonical-DifVifKey lookup table, last entry wins on
	// collision exactly like the original's map<string,...>.
	Entries      []*DVEntry
	EntriesByKey map[string]*DVEntry

	Addresses []Address

	Discard       bool
	DiscardReason error
	CRCFailures   int
}

// NewTelegram allocates a Telegram ready for the pipeline to populate.
func NewTelegram(about AboutTelegram, raw []byte) *Telegram {
	return &Telegram{
		About:        about,
		Raw:          raw,
		EntriesByKey: make(map[string]*DVEntry),
	}
}

// AddEntry records a parsed DVEntry, keeping Entries in offset order and
// EntriesByKey pointing at the most recently parsed entry for that key.
func (t *Telegram) AddEntry(e *DVEntry) {
	t.Entries = append(t.Entries, e)
	t.EntriesByKey[e.DifVifKey] = e
}

// PushAddress appends an identity layer; the last one pushed is the one
// the consumer sees (spec §3).
func (t *Telegram) PushAddress(a Address) {
	t.Addresses = append(t.Addresses, a)
}

// LastAddress returns the most recently pushed identity, or the zero
// Address if none has been pushed yet.
func (t *Telegram) LastAddress() Address {
	if len(t.Addresses) == 0 {
		return Address{}
	}
	return t.Addresses[len(t.Addresses)-1]
}

// IdentityTriple returns the (mfct, type, version) the driver dispatcher
// matches against, preferring TPL over DLL per spec §4.6.
func (t *Telegram) IdentityTriple() (mfct uint16, typ, version byte) {
	if t.HasTPL {
		return t.TPLMfct, t.TPLType, t.TPLVersion
	}
	return t.DLLMfct, t.DLLType, t.DLLVersion
}

// MeterKeys carries the confidentiality key for a configured meter.
// An empty key means the telegram must arrive unencrypted.
type MeterKeys struct {
	Confidentiality []byte
}

// Encrypted reports whether a 16-byte AES key has been configured.
func (k MeterKeys) Encrypted() bool { return len(k.Confidentiality) == 16 }
