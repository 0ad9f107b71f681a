package node

import (
	n2k "github.com/oceanbus/n2k-node"
)

// messageCounter assigns each outgoing Fast Packet message its 3-bit
// sequence counter, tracked per PGN. Every such message carries this node's
// source address, so this matches n2k.FastPacketAssembler's per-(PGN,
// source) tracking on receive.
type messageCounter struct {
	counters map[uint32]uint8
}

func newMessageCounter() *messageCounter {
	return &messageCounter{counters: make(map[uint32]uint8)}
}

func (c *messageCounter) next(pgn uint32) uint8 {
	v := c.counters[pgn]
	c.counters[pgn] = v + 1
	return v
}

// FragmentForWire turns a logical Message into the CAN frames that carry
// it: a single 8-byte frame for an 8-byte-or-less payload, or a Fast Packet
// sequence (via n2k.FragmentFastPacket) for anything longer.
func FragmentForWire(msg n2k.Message, fastPacketSeq uint8) ([]n2k.Frame, error) {
	header := n2k.CANHeader{PGN: msg.PGN, Priority: msg.Priority, Source: msg.Source, Destination: msg.Destination}

	if len(msg.Data) <= 8 {
		var data [8]byte
		copy(data[:], msg.Data)
		for i := len(msg.Data); i < 8; i++ {
			data[i] = 0xFF
		}
		return []n2k.Frame{{Time: msg.Time, Header: header, Length: uint8(len(msg.Data)), Data: data}}, nil
	}

	packets, err := n2k.FragmentFastPacket(msg.Data, fastPacketSeq)
	if err != nil {
		return nil, err
	}
	frames := make([]n2k.Frame, 0, len(packets))
	for _, p := range packets {
		frames = append(frames, n2k.Frame{Time: msg.Time, Header: header, Length: 8, Data: p})
	}
	return frames, nil
}
