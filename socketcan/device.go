package socketcan

import (
	"context"
	"errors"
	"time"

	n2k "github.com/oceanbus/n2k-node"
)

// Device wraps a Connection with Fast Packet reassembly, turning raw CAN
// frames into complete n2k.Message values the rest of the node consumes.
type Device struct {
	conn *Connection

	// ifName is SocketCAN interface name. For example: can0
	ifName string

	// receiveDataTimeout bounds how long ReadMessage will keep retrying a
	// read that times out with no data, so a quiet bus doesn't block the
	// node forever; it does not bound any single read call, which is kept
	// short precisely so ctx cancellation is checked often.
	receiveDataTimeout time.Duration

	assembler *n2k.FastPacketAssembler
	timeNow   func() time.Time
}

// NewDevice returns a Device for the named SocketCAN interface. Call
// Initialize before use.
func NewDevice(ifName string) *Device {
	return &Device{
		ifName:             ifName,
		timeNow:            time.Now,
		receiveDataTimeout: 5 * time.Second,
		assembler:          n2k.NewFastPacketAssembler(n2k.SystemClock{}),
	}
}

func (d *Device) Close() error {
	return d.conn.Close()
}

func (d *Device) Initialize() error {
	conn, err := NewConnection(d.ifName)
	if err != nil {
		return err
	}
	d.conn = conn
	return nil
}

// WriteFrame sends one already-fragmented CAN frame; callers that need to
// transmit a Fast Packet PGN must fragment it first (n2k.FragmentFastPacket).
func (d *Device) WriteFrame(f n2k.Frame) error {
	return d.conn.SendFrame(f)
}

// ReadMessage blocks until a complete Message is reassembled, ctx is
// cancelled, or the bus has been silent longer than receiveDataTimeout.
func (d *Device) ReadMessage(ctx context.Context) (n2k.Message, error) {
	start := d.timeNow()
	for {
		select {
		case <-ctx.Done():
			return n2k.Message{}, ctx.Err()
		default:
		}

		if err := d.conn.SetReadTimeout(50 * time.Millisecond); err != nil {
			return n2k.Message{}, err
		}
		frame, err := d.conn.ReadFrame()

		now := d.timeNow()
		// on read errors we do not return immediately as for:
		// errReadTimeout - set a new deadline next iteration, unless the bus
		// has been silent past receiveDataTimeout
		if err != nil {
			if errors.Is(err, errReadTimeout) {
				if now.Sub(start) > d.receiveDataTimeout {
					return n2k.Message{}, err
				}
				continue
			}
			return n2k.Message{}, err
		}

		d.assembler.Tick(now)
		msg, complete, err := d.assembler.Feed(frame)
		if err != nil {
			continue // malformed/orphan Fast Packet frame, keep reading
		}
		if !complete {
			continue
		}
		return msg, nil
	}
}
