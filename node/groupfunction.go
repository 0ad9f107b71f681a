package node

import (
	"time"

	n2k "github.com/oceanbus/n2k-node"
)

// GroupFunctionPGN is PGN 126208, the NMEA 2000 Group Function: a generic
// Request/Command/Acknowledge/Read/Write envelope that can address any other
// PGN's fields, layered over the base Request/ISO Acknowledgement flow.
const GroupFunctionPGN uint32 = 126208

// GroupFunctionCode is the first byte of a PGN 126208 payload, naming the
// operation the message performs.
type GroupFunctionCode uint8

const (
	GroupFunctionRequest     GroupFunctionCode = 0
	GroupFunctionCommand     GroupFunctionCode = 1
	GroupFunctionAcknowledge GroupFunctionCode = 2
	GroupFunctionRead        GroupFunctionCode = 3
	GroupFunctionReadReply   GroupFunctionCode = 4
	GroupFunctionWrite       GroupFunctionCode = 5
	GroupFunctionWriteReply  GroupFunctionCode = 6
)

// GroupFunctionPGNError is the per-PGN status byte of a GroupFunctionAcknowledge
// reply.
type GroupFunctionPGNError uint8

const (
	GroupFunctionPGNAcknowledged           GroupFunctionPGNError = 0
	GroupFunctionPGNNotSupported           GroupFunctionPGNError = 1
	GroupFunctionPGNAccessDenied           GroupFunctionPGNError = 2
	GroupFunctionPGNNotSupportedAtThisTime GroupFunctionPGNError = 3
	GroupFunctionPGNReadOrWriteNotSupported GroupFunctionPGNError = 4
)

// GroupFunctionHandler answers PGN 126208 Group Function messages targeting
// one PGN, TargetPGN. It implements Handler matched exactly on PGN 126208;
// Handle then filters by the requested PGN embedded in the envelope's own
// payload, since every Group Function shares the one outer PGN. Proprietary
// is carried on the handler but does not change matching: Handle compares
// the embedded PGN with TargetPGN only.
type GroupFunctionHandler struct {
	TargetPGN   uint32
	Proprietary bool
	OnRequest   func(code GroupFunctionCode, msg n2k.Message)
}

// PGN reports this handler as matching PGN 126208 exactly.
func (h GroupFunctionHandler) PGN() (uint32, bool) {
	return GroupFunctionPGN, true
}

// Handle parses the group function code and target PGN out of msg and, if
// it matches TargetPGN, invokes OnRequest.
func (h GroupFunctionHandler) Handle(msg n2k.Message) {
	if msg.PGN != GroupFunctionPGN || h.OnRequest == nil {
		return
	}
	requested, ok := requestedGroupFunctionPGN(msg)
	if !ok || requested != h.TargetPGN {
		return
	}
	h.OnRequest(GroupFunctionCode(msg.Data[0]), msg)
}

// requestedGroupFunctionPGN pulls the 3-byte target PGN out of a PGN 126208
// payload, the same field every group function code carries starting at
// byte 1.
func requestedGroupFunctionPGN(msg n2k.Message) (uint32, bool) {
	if len(msg.Data) < 4 {
		return 0, false
	}
	return uint32(msg.Data[1]) | uint32(msg.Data[2])<<8 | uint32(msg.Data[3])<<16, true
}

// encodeGroupFunctionAcknowledge builds the PGN 126208 Acknowledge reply
// (group function code 2) the core sends back when no handler is registered
// for the PGN a group function message targeted.
func encodeGroupFunctionAcknowledge(requestedPGN uint32, errCode GroupFunctionPGNError, source, destination uint8, now time.Time) (n2k.Message, error) {
	e := n2k.NewEncoder()
	e.AddByte(uint8(GroupFunctionAcknowledge))
	e.AddUint(n2k.NewInt(int64(requestedPGN)), 3)
	e.AddByte(uint8(errCode)) // transmission/priority error code: Acknowledge (0) in the high nibble
	e.AddByte(0)              // number of parameter pairs
	if err := e.Err(); err != nil {
		return n2k.Message{}, err
	}
	msg := n2k.Message{
		Time:        now,
		PGN:         GroupFunctionPGN,
		Priority:    3,
		Source:      source,
		Destination: destination,
		Data:        e.Bytes(),
	}
	msg.CheckDestination()
	return msg, nil
}
