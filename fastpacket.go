package n2k

import "time"

// DefaultFastPacketPGNs is the canonical set of Fast Packet PGNs, used by
// FastPacketAssembler unless extended by the caller.
var DefaultFastPacketPGNs = []uint32{
	126464, 126996, 126998, 127237, 127489,
	129029, 129038, 129039, 129040, 129041,
	129284, 129285, 129540, 129794, 129809, 129810,
	130074,
}

// DefaultFastPacketSlots is the default Fast Packet reassembly pool capacity.
const DefaultFastPacketSlots = 20

// DefaultFastPacketTTL is how long an in-flight Fast Packet slot is kept
// without activity before it is freed.
const DefaultFastPacketTTL = 100 * time.Millisecond

type fastPacketSlot struct {
	inUse        bool
	pgn          uint32
	source       uint8
	header       CANHeader
	length       uint8
	received     int
	lastSeq      uint8
	lastActivity time.Time
	frameTime    time.Time
	data         [MaxDataLen]byte
}

// FastPacketAssembler reassembles Fast Packet multi-frame messages keyed by
// (pgn, source). At most one in-flight Fast Packet per (pgn, source); the
// pool has a fixed capacity, and new first-frames are dropped once it is
// full.
type FastPacketAssembler struct {
	pgns  map[uint32]bool
	slots []fastPacketSlot
	ttl   time.Duration
}

// NewFastPacketAssembler creates an assembler with the default Fast Packet
// PGN set, extended by extraPGNs.
func NewFastPacketAssembler(clock Clock, extraPGNs ...uint32) *FastPacketAssembler {
	return NewFastPacketAssemblerWithCapacity(clock, DefaultFastPacketSlots, extraPGNs...)
}

// NewFastPacketAssemblerWithCapacity is NewFastPacketAssembler with an
// explicit slot pool capacity.
// The clock argument is accepted for API symmetry with the rest of the
// node's injectable collaborators; slot expiry is driven by the Time values
// on fed Frames and the `now` passed to Tick, not by polling the clock.
func NewFastPacketAssemblerWithCapacity(clock Clock, capacity int, extraPGNs ...uint32) *FastPacketAssembler {
	_ = clock
	pgns := make(map[uint32]bool, len(DefaultFastPacketPGNs)+len(extraPGNs))
	for _, p := range DefaultFastPacketPGNs {
		pgns[p] = true
	}
	for _, p := range extraPGNs {
		pgns[p] = true
	}
	return &FastPacketAssembler{
		pgns:  pgns,
		slots: make([]fastPacketSlot, capacity),
		ttl:   DefaultFastPacketTTL,
	}
}

// IsFastPacket reports whether pgn is reassembled as a Fast Packet stream.
func (a *FastPacketAssembler) IsFastPacket(pgn uint32) bool {
	return a.pgns[pgn]
}

func (a *FastPacketAssembler) findSlot(pgn uint32, source uint8) int {
	for i := range a.slots {
		if a.slots[i].inUse && a.slots[i].pgn == pgn && a.slots[i].source == source {
			return i
		}
	}
	return -1
}

func (a *FastPacketAssembler) freeSlotIndex() int {
	for i := range a.slots {
		if !a.slots[i].inUse {
			return i
		}
	}
	return -1
}

// Feed processes one received Frame. It returns the reassembled Message and
// true when a complete message is ready to deliver. A non-nil error means
// the frame was dropped (sequence gap, malformed, or ErrBackpressure when a
// new first frame finds the slot pool full); the caller should count
// it and move on: decode errors never propagate to user handlers.
func (a *FastPacketAssembler) Feed(frame Frame) (Message, bool, error) {
	pgn := frame.Header.PGN
	if !a.IsFastPacket(pgn) {
		return Message{
			Time:        frame.Time,
			PGN:         pgn,
			Priority:    frame.Header.Priority,
			Source:      frame.Header.Source,
			Destination: frame.Header.Destination,
			Data:        append([]byte(nil), frame.Data[:frame.Length]...),
		}, true, nil
	}
	if frame.Length < 2 {
		return Message{}, false, ErrDecodeShort
	}

	seq := frame.Data[0]
	frameNr := seq & 0b0001_1111

	if frameNr == 0 { // first frame of a new message
		idx := a.findSlot(pgn, frame.Header.Source)
		if idx == -1 {
			idx = a.freeSlotIndex()
			if idx == -1 {
				return Message{}, false, ErrBackpressure // pool full, first frame dropped
			}
		}
		slot := &a.slots[idx]
		*slot = fastPacketSlot{
			inUse:        true,
			pgn:          pgn,
			source:       frame.Header.Source,
			header:       frame.Header,
			length:       frame.Data[1],
			lastSeq:      seq,
			lastActivity: frame.Time,
			frameTime:    frame.Time,
		}
		n := copy(slot.data[:], frame.Data[2:frame.Length])
		slot.received = n
		return a.deliverIfComplete(idx)
	}

	idx := a.findSlot(pgn, frame.Header.Source)
	if idx == -1 { // orphan continuation frame, no matching slot
		return Message{}, false, ErrDecodeMalformed
	}
	slot := &a.slots[idx]
	if slot.lastSeq+1 != seq {
		slot.inUse = false // invalidate: frame was lost
		return Message{}, false, ErrDecodeMalformed
	}
	remaining := int(slot.length) - slot.received
	chunk := frame.Data[1:frame.Length]
	if len(chunk) > remaining {
		chunk = chunk[:remaining]
	}
	copy(slot.data[slot.received:], chunk)
	slot.received += len(chunk)
	slot.lastSeq = seq
	slot.lastActivity = frame.Time
	return a.deliverIfComplete(idx)
}

func (a *FastPacketAssembler) deliverIfComplete(idx int) (Message, bool, error) {
	slot := &a.slots[idx]
	if slot.received < int(slot.length) {
		return Message{}, false, nil
	}
	msg := Message{
		Time:        slot.frameTime,
		PGN:         slot.header.PGN,
		Priority:    slot.header.Priority,
		Source:      slot.header.Source,
		Destination: slot.header.Destination,
		Data:        append([]byte(nil), slot.data[:slot.length]...),
	}
	slot.inUse = false
	return msg, true, nil
}

// Tick frees any slot that has seen no activity for longer than the
// reassembler's TTL, so a stalled sender can never pin a slot forever.
func (a *FastPacketAssembler) Tick(now time.Time) {
	for i := range a.slots {
		if a.slots[i].inUse && now.Sub(a.slots[i].lastActivity) > a.ttl {
			a.slots[i].inUse = false
		}
	}
}

// FragmentFastPacket splits data (<= MaxDataLen bytes) into the 8-byte CAN
// frames a Fast Packet transmit needs, stamping each with the given 3-bit
// message counter (0-7). The final frame is padded with 0xFF.
func FragmentFastPacket(data []byte, messageCounter uint8) ([][8]byte, error) {
	if len(data) > MaxDataLen {
		return nil, ErrBufferFull
	}
	frameCount := 1
	if len(data) > 6 {
		// ceil((len-6)/7) frames follow the first; algebraically len/7 (see
		// ceil(a/b) == floor((a+b-1)/b) with a=len-6, b=7).
		frameCount += len(data) / 7
	}
	frames := make([][8]byte, frameCount)
	mc := (messageCounter & 0x07) << 5

	frames[0][0] = mc
	frames[0][1] = uint8(len(data))
	n := copy(frames[0][2:], data)
	for i := n + 2; i < 8; i++ {
		frames[0][i] = 0xFF
	}

	offset := n
	for i := 1; i < frameCount; i++ {
		frames[i][0] = mc | uint8(i)
		written := copy(frames[i][1:], data[offset:])
		offset += written
		for j := written + 1; j < 8; j++ {
			frames[i][j] = 0xFF
		}
	}
	return frames, nil
}
