// Package afl implements the wM-Bus Authentication and Fragmentation
// Layer: parsing the AFL header that precedes a fragmented TPL payload,
// and reassembling telegrams sent as multiple radio frames (spec §4.3,
// §5).
//
// Like internal/ell, the retrieved original_source excerpt never
// surfaces AFL's byte-level layout (meters.cc only branches on whether
// a telegram is fragmented, not on the header fields themselves), so
// the header shape below is this project's own documented reading of
// the OMS fragmentation scheme: a control word carrying the
// more-fragments flag, a message-control byte, a session/message
// counter that ties fragments together, and a total-length field used
// to know when reassembly is complete.
package afl

import (
	"time"

	lru "github.com/golang/groupcache/lru"

	"github.com/vanturaiot/wmbus-core/internal/wmbus"
)

// CI is the control-information byte signaling an AFL header.
const CI = 0x90

// headerLen is the fixed AFL header length (including CI) this project
// assumes: CI, FCL(2), MCL(1), MessageCounter(2), MessageLength(2).
const headerLen = 8

// fclMoreFragments is the bit in the Fragmentation Control word marking
// that additional fragments follow this one.
const fclMoreFragments = 0x8000

// Header is a parsed AFL header.
type Header struct {
	MoreFragments bool
	SessionID     uint16
	TotalLength   uint16
	HeaderLen     int
}

// Parse reads an AFL header from the front of data. data[0] must be CI.
func Parse(data []byte) (*Header, bool) {
	if len(data) < headerLen || data[0] != CI {
		return nil, false
	}
	fcl := uint16(data[1]) | uint16(data[2])<<8
	sessionID := uint16(data[4]) | uint16(data[5])<<8
	totalLen := uint16(data[6]) | uint16(data[7])<<8
	return &Header{
		MoreFragments: fcl&fclMoreFragments != 0,
		SessionID:     sessionID,
		TotalLength:   totalLen,
		HeaderLen:     headerLen,
	}, true
}

// session accumulates fragments for one (address, session ID) pair.
type session struct {
	data       []byte
	want       int
	lastSeen   time.Time
}

// Reassembler buffers fragmented telegrams keyed by (DLL address,
// session ID), bounded by an LRU so a flood of partial sessions from
// noisy neighbours cannot grow memory without limit, and discarded
// after SilenceTimeout of inactivity (spec §5's fragment-timeout
// requirement).
type Reassembler struct {
	cache          *lru.Cache
	SilenceTimeout time.Duration
	Now            func() time.Time // injected for tests
}

// NewReassembler builds a Reassembler holding at most maxSessions
// concurrent partial telegrams.
func NewReassembler(maxSessions int, silenceTimeout time.Duration) *Reassembler {
	return &Reassembler{
		cache:          lru.New(maxSessions),
		SilenceTimeout: silenceTimeout,
		Now:            time.Now,
	}
}

type key struct {
	addr      string
	sessionID uint16
}

// Append feeds one fragment's payload (the bytes after the AFL header)
// into the session named by addr/h. It returns the full reassembled
// buffer and done=true once h.TotalLength bytes have arrived.
func (r *Reassembler) Append(addr string, h *Header, payload []byte) (full []byte, done bool) {
	now := r.Now()
	k := key{addr: addr, sessionID: h.SessionID}

	var s *session
	if v, ok := r.cache.Get(k); ok {
		s = v.(*session)
		if now.Sub(s.lastSeen) > r.SilenceTimeout {
			s = &session{want: int(h.TotalLength)}
		}
	} else {
		s = &session{want: int(h.TotalLength)}
	}

	s.data = append(s.data, payload...)
	s.lastSeen = now
	r.cache.Add(k, s)

	if len(s.data) >= s.want {
		r.cache.Remove(k)
		return s.data[:s.want], true
	}
	return nil, false
}

// MarkPresent is called when an AFL header has been seen. It leaves t
// unchanged: unlike ell.MarkPresent, which sets HasELL, no AFL flag is
// recorded.
func MarkPresent(t *wmbus.Telegram) {
	// AFL presence does not currently change Telegram shape beyond the
	// security/TPL fields TPL decode itself sets; reserved for future
	// AFL-MAC verification reporting.
	_ = t
}
