// Package n2k implements the core of a NMEA 2000 protocol node: the
// frame<->PGN codec, the Fast Packet reassembler and the bit-exact value
// types shared by every PGN payload in package pgn.
//
// The node itself (address claim, heartbeat, dispatch) lives in package
// node; this package only holds the collaborator-free, pure-function parts
// of the stack.
package n2k

import "time"

// MaxDataLen is the largest payload a single NMEA 2000 message may carry,
// reassembled from at most 32 Fast Packet frames (6 + 31*7 bytes).
const MaxDataLen = 223

// AddressNull is the J1939 "no address yet" source/destination (254), used
// by a node that has not completed address claim.
const AddressNull uint8 = 254

// AddressGlobal is the broadcast destination address (255, "all nodes").
const AddressGlobal uint8 = 255

// MaxCANBusAddress is the highest address a node may claim (251). 252-253
// are usable but conventionally left for dynamically configured devices;
// 254 and 255 are reserved (AddressNull, AddressGlobal).
const MaxCANBusAddress uint8 = 251

// Clock is the wall/monotonic millisecond time source the node and
// reassembler use for scheduling and timeouts. Collaborator per the design
// note on injectable clocks; production code uses SystemClock, tests inject
// a fake.
type Clock interface {
	NowMs() uint64
}

// SystemClock is the default Clock, backed by time.Now.
type SystemClock struct{}

// NowMs returns the current wall-clock time in milliseconds.
func (SystemClock) NowMs() uint64 {
	return uint64(time.Now().UnixMilli())
}

// Frame is a single raw CAN 2.0B frame as it crosses the wire: a 29-bit
// identifier (already decomposed into CANHeader) and up to 8 data bytes.
type Frame struct {
	Time   time.Time
	Header CANHeader
	Length uint8
	Data   [8]byte
}

// Message is a logical NMEA 2000 datagram, already reassembled from one or
// more Frames. It is valid iff PGN != 0 and len(Data) > 0.
type Message struct {
	Time        time.Time
	PGN         uint32
	Priority    uint8
	Source      uint8
	Destination uint8
	Data        []byte
}

// IsValid reports whether m satisfies the Message invariant.
func (m Message) IsValid() bool {
	return m.PGN != 0 && len(m.Data) > 0
}

// CheckDestination forces Destination to AddressGlobal when the low byte of
// PGN is non-zero: such a PGN is PDU2 and can only ever be broadcast.
func (m *Message) CheckDestination() {
	if m.PGN&0xff != 0 {
		m.Destination = AddressGlobal
	}
}

// TxContext carries the per-send fields a PGN encoder needs but cannot know
// on its own: the sending node's address, the destination (255 for PDU2 or
// a broadcast PDU1 message) and the timestamp to stamp the outgoing Message
// with.
type TxContext struct {
	Source      uint8
	Destination uint8
	Time        time.Time
}
