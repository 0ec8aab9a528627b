// Package frame implements the wM-Bus Frame Assembler (spec §4.1): it
// turns a raw radio frame into a CRC-verified, block-stripped byte
// stream ready for the Link Decoder, applying 3-of-6 line decoding
// first when the radio hasn't already done so.
//
// The read/assemble goroutine pair below is the same channel-handoff
// shape as the teacher's readFrames/processFrames in
// internal/j1587/j1587.go, adapted from a continuous serial stream
// with an inter-byte gap to a radio that already hands back one frame
// per PollFrame call.
package frame

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vanturaiot/wmbus-core/internal/crc16"
	"github.com/vanturaiot/wmbus-core/internal/radio"
	"github.com/vanturaiot/wmbus-core/internal/threeofsix"
	"github.com/vanturaiot/wmbus-core/internal/wmbus"
)

// firstBlockData and laterBlockData are the per-block data-byte counts
// from spec §4.1 before each block's trailing 2-byte CRC.
const (
	firstBlockData = 15
	laterBlockData = 16
)

// Frame is the Assembler's output: a complete, CRC-verified telegram
// body plus the radio metadata it arrived with.
type Frame struct {
	Bytes    []byte
	Format   wmbus.FrameFormat
	LinkMode wmbus.LinkMode
	RSSIDBm  int
	LQI      int
}

// Counters tallies assembler-level drop reasons for diagnostics; spec
// §4.1 calls for "counter incremented" on every discard path.
type Counters struct {
	CRCFailures    int
	DecodeMisses   int
	MalformedLen   int
}

// BlockCount returns the number of CRC blocks a frame with L-field l
// is split into, per spec §4.1's explicit formula.
func BlockCount(l byte) int {
	if l < 26 {
		return 2
	}
	return int((int(l)-26)/16) + 3
}

// BlockSizes returns the data-byte length (CRC excluded) of each block
// in a frame with L-field l, consuming exactly L+1 data bytes across
// BlockCount(l) blocks: block 0 holds up to firstBlockData bytes,
// interior blocks hold up to laterBlockData, and the last block
// absorbs whatever remains — "the last block may be short" (spec
// §4.1). Resolution of the edge case where the block-count formula
// and a naive 15/16 chunking would disagree is documented in
// DESIGN.md: the formula's block count is authoritative, sizes are
// derived by simply consuming remaining bytes into that many blocks.
func BlockSizes(l byte) []int {
	dataLen := int(l) + 1
	blocks := BlockCount(l)
	sizes := make([]int, 0, blocks)

	remaining := dataLen
	for i := 0; i < blocks; i++ {
		var want int
		switch {
		case i == 0:
			want = firstBlockData
		case i == blocks-1:
			want = remaining
		default:
			want = laterBlockData
		}
		if want > remaining {
			want = remaining
		}
		if want < 0 {
			want = 0
		}
		sizes = append(sizes, want)
		remaining -= want
	}
	return sizes
}

// Assembler consumes frames from a radio.Source and emits CRC-verified
// Frames on Frames. It is the cooperative-loop entry point of spec §5:
// one goroutine calls Run, which blocks only inside PollFrame.
type Assembler struct {
	Source     radio.Source
	LinkMode   wmbus.LinkMode
	Decode3of6 bool // set for T-mode radios that hand back undecoded chips
	Log        logrus.FieldLogger

	Frames   chan Frame
	stopChan chan struct{}

	Counters Counters
}

// NewAssembler builds an Assembler for the given radio and link mode.
func NewAssembler(src radio.Source, linkMode wmbus.LinkMode, decode3of6 bool, log logrus.FieldLogger) *Assembler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Assembler{
		Source:     src,
		LinkMode:   linkMode,
		Decode3of6: decode3of6,
		Log:        log,
		Frames:     make(chan Frame, 4),
		stopChan:   make(chan struct{}),
	}
}

// Run polls the radio until Stop is called, pushing each successfully
// assembled Frame onto a.Frames. Malformed frames are dropped silently
// per spec §4.1 and never reach the channel.
func (a *Assembler) Run(pollTimeout time.Duration) {
	for {
		select {
		case <-a.stopChan:
			return
		default:
		}

		raw, rssi, lqi, ok := a.Source.PollFrame(time.Now().Add(pollTimeout))
		if !ok {
			continue
		}

		f, err := a.assemble(raw, rssi, lqi)
		a.Source.RestartRX()
		if err != nil {
			a.Log.WithError(err).Debug("frame: discarded")
			continue
		}
		select {
		case a.Frames <- *f:
		case <-a.stopChan:
			return
		}
	}
}

// Stop halts Run.
func (a *Assembler) Stop() { close(a.stopChan) }

// assemble decodes 3-of-6 if required, splits the result into blocks,
// and verifies each block's CRC.
func (a *Assembler) assemble(raw []byte, rssiDBm, lqi int) (*Frame, error) {
	if len(raw) < 1 {
		a.Counters.MalformedLen++
		return nil, &wmbus.TransportError{Reason: "empty frame"}
	}

	wire := raw
	if a.Decode3of6 {
		// The L-field itself must be decoded first to know how many
		// logical bytes follow.
		lNibbles, ok := threeofsix.Decode(wire, 1)
		if !ok || len(lNibbles) < 1 {
			a.Counters.DecodeMisses++
			return nil, &wmbus.TransportError{Reason: "3-of-6 decode miss on L-field"}
		}
		l := lNibbles[0]
		total := int(l) + 1 + 2*BlockCount(l)
		decoded, ok := threeofsix.Decode(wire, total)
		if !ok {
			a.Counters.DecodeMisses++
			return nil, &wmbus.TransportError{Reason: "3-of-6 decode miss"}
		}
		wire = decoded
	}

	if len(wire) < 1 {
		a.Counters.MalformedLen++
		return nil, &wmbus.TransportError{Reason: "empty after decode"}
	}
	l := wire[0]
	sizes := BlockSizes(l)

	body := make([]byte, 0, int(l)+1)
	pos := 0
	for i, size := range sizes {
		blockLen := size + 2
		if pos+blockLen > len(wire) {
			a.Counters.MalformedLen++
			return nil, &wmbus.TransportError{Reason: "truncated block", Err: nil}
		}
		block := wire[pos : pos+blockLen]
		if !crc16.Verify(block) {
			a.Counters.CRCFailures++
			return nil, &wmbus.TransportError{Reason: "crc failure"}
		}
		body = append(body, block[:size]...)
		pos += blockLen
		_ = i
	}

	return &Frame{
		Bytes:    body,
		Format:   wmbus.FrameFormatA,
		LinkMode: a.LinkMode,
		RSSIDBm:  rssiDBm,
		LQI:      lqi,
	}, nil
}
