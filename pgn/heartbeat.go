package pgn

import n2k "github.com/oceanbus/n2k-node"

// Heartbeat is PGN 126993, broadcast on the node's configured interval (or
// immediately, on a forced send) to announce the node is alive.
type Heartbeat struct {
	IntervalMs      uint32 // 10ms resolution, valid range 10..655320
	SequenceCounter uint8
	Status          uint8
}

func (Heartbeat) PGN() uint32 { return 126993 }

func (h Heartbeat) EncodeMessage(ctx n2k.TxContext) (n2k.Message, error) {
	e := n2k.NewEncoder()
	e.AddUint(n2k.NewInt(int64(h.IntervalMs/10)), 2)
	e.AddByte(h.SequenceCounter)
	e.AddByte(h.Status)
	e.AddByte(0xFF)
	e.AddByte(0xFF)
	e.AddByte(0xFF)
	e.AddByte(0xFF)
	return finish(e, 126993, 7, ctx)
}

// DecodeHeartbeat parses a PGN 126993 payload.
func DecodeHeartbeat(msg n2k.Message) (Heartbeat, error) {
	d := n2k.NewDecoder(msg.Data)
	interval, err := d.Uint(2)
	if err != nil {
		return Heartbeat{}, err
	}
	seq, err := d.Byte()
	if err != nil {
		return Heartbeat{}, err
	}
	status, err := d.Byte()
	if err != nil {
		return Heartbeat{}, err
	}
	intervalMs := uint32(0)
	if interval.State == n2k.Present {
		intervalMs = uint32(interval.Value) * 10
	}
	return Heartbeat{IntervalMs: intervalMs, SequenceCounter: seq, Status: status}, nil
}
