// Package radio defines the boundary between the core decode pipeline
// and the transceiver driver, per spec §6. It is an interface only —
// SX1262/CC1101 register programming, SPI, and GPIO are explicitly out
// of scope (spec §1 Non-goals) and have no implementation here.
//
// This mirrors the shape of the teacher's internal/protocol.Protocol
// interface: a small seam a concrete driver satisfies, with the engine
// on the other side never importing the driver package.
package radio

import "time"

// Source is implemented by whatever concrete transceiver driver a
// firmware build links in. Bytes returned by PollFrame are
// pre-3-of-6-decoded when the radio hardware supports it; otherwise
// internal/frame performs the decoding itself.
type Source interface {
	// PollFrame blocks (the single suspension point in spec §5) until a
	// frame is available or the deadline passes, returning the raw
	// frame bytes, RSSI in dBm, and LQI (0-255).
	PollFrame(deadline time.Time) (frame []byte, rssiDBm int, lqi int, ok bool)

	// RestartRX re-arms the receiver after a frame has been consumed or
	// discarded.
	RestartRX()

	// RSSI returns the instantaneous received signal strength, valid
	// even between frames.
	RSSI() int8
}
