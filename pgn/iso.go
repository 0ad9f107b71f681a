package pgn

import n2k "github.com/oceanbus/n2k-node"

// ISORequest is PGN 59904: a request for the addressed node to transmit the
// named PGN.
type ISORequest struct {
	RequestedPGN uint32
}

func (ISORequest) PGN() uint32 { return 59904 }

// EncodeMessage emits the 3-byte little-endian target PGN.
func (r ISORequest) EncodeMessage(ctx n2k.TxContext) (n2k.Message, error) {
	e := n2k.NewEncoder()
	e.AddUint(n2k.NewInt(int64(r.RequestedPGN)), 3)
	return finish(e, 59904, 6, ctx)
}

// DecodeISORequest parses a PGN 59904 payload.
func DecodeISORequest(msg n2k.Message) (ISORequest, error) {
	d := n2k.NewDecoder(msg.Data)
	pgn, err := d.Uint(3)
	if err != nil {
		return ISORequest{}, err
	}
	return ISORequest{RequestedPGN: uint32(pgn.Value)}, nil
}

// ISOAckControl is the control-code field of an ISO Acknowledgement.
type ISOAckControl uint8

const (
	ISOAck            ISOAckControl = 0
	ISONak            ISOAckControl = 1
	ISOAccessDenied   ISOAckControl = 2
	ISOCannotRespond  ISOAckControl = 3
)

// ISOAcknowledgement is PGN 59392, sent in reply to a request the node
// cannot or will not service positively.
type ISOAcknowledgement struct {
	Control       ISOAckControl
	GroupFunction uint8
	PGN           uint32
}

func (ISOAcknowledgement) PGN() uint32 { return 59392 }

func (a ISOAcknowledgement) EncodeMessage(ctx n2k.TxContext) (n2k.Message, error) {
	e := n2k.NewEncoder()
	e.AddByte(uint8(a.Control))
	e.AddByte(a.GroupFunction)
	e.AddByte(0xFF)
	e.AddByte(0xFF)
	e.AddByte(0xFF)
	e.AddUint(n2k.NewInt(int64(a.PGN)), 3)
	return finish(e, 59392, 6, ctx)
}

// DecodeISOAcknowledgement parses a PGN 59392 payload.
func DecodeISOAcknowledgement(msg n2k.Message) (ISOAcknowledgement, error) {
	d := n2k.NewDecoder(msg.Data)
	control, err := d.Byte()
	if err != nil {
		return ISOAcknowledgement{}, err
	}
	groupFn, err := d.Byte()
	if err != nil {
		return ISOAcknowledgement{}, err
	}
	d.Skip(3)
	pgn, err := d.Uint(3)
	if err != nil {
		return ISOAcknowledgement{}, err
	}
	return ISOAcknowledgement{
		Control:       ISOAckControl(control),
		GroupFunction: groupFn,
		PGN:           uint32(pgn.Value),
	}, nil
}

// ISOAddressClaim is PGN 60928, the node's NAME broadcast during address
// claim and in reply to an ISO Request for this PGN.
type ISOAddressClaim struct {
	Name Name
}

func (ISOAddressClaim) PGN() uint32 { return 60928 }

func (c ISOAddressClaim) EncodeMessage(ctx n2k.TxContext) (n2k.Message, error) {
	e := n2k.NewEncoder()
	e.AddBytes(c.Name.Bytes()[:])
	return finish(e, 60928, 6, ctx)
}

// DecodeISOAddressClaim parses a PGN 60928 payload.
func DecodeISOAddressClaim(msg n2k.Message) (ISOAddressClaim, error) {
	d := n2k.NewDecoder(msg.Data)
	b, err := d.Bytes(8)
	if err != nil {
		return ISOAddressClaim{}, err
	}
	return ISOAddressClaim{Name: NameFromBytes(b)}, nil
}

// finish builds a Message from an Encoder's output, applying the encoder's
// deferred error (e.g. ErrBufferFull) and the PDU2 global-destination rule.
func finish(e *n2k.Encoder, pgn uint32, priority uint8, ctx n2k.TxContext) (n2k.Message, error) {
	if err := e.Err(); err != nil {
		return n2k.Message{}, err
	}
	msg := n2k.Message{
		Time:        ctx.Time,
		PGN:         pgn,
		Priority:    priority,
		Source:      ctx.Source,
		Destination: ctx.Destination,
		Data:        e.Bytes(),
	}
	msg.CheckDestination()
	return msg, nil
}
