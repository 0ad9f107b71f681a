package n2k

// CANHeader holds the fields a 29-bit J1939/NMEA 2000 CAN identifier
// decomposes into.
type CANHeader struct {
	PGN         uint32
	Priority    uint8
	Source      uint8
	Destination uint8
}

// Uint32 is kept as an alias of ToCANID for callers that only want the
// always-succeeds PDU2 encoding (e.g. constructing a header for a PGN that's
// statically known to be PDU2). Prefer ToCANID, which rejects the PDU1
// low-byte violation the bare bit math here can't express.
func (h CANHeader) Uint32() uint32 {
	id, _ := ToCANID(h)
	return id
}

// ToCANID encodes h back into a 29-bit CAN identifier. Returns ErrInvalidPGN
// if h is a PDU1 (destination-specific) PGN whose low byte is non-zero --
// that combination cannot be represented on the wire.
func ToCANID(h CANHeader) (uint32, error) {
	pf := uint8(h.PGN >> 8)
	canID := uint32(h.Source) // bits 0-7

	if pf < 240 { // PDU1: destination-specific
		if h.PGN&0xff != 0 {
			return 0, ErrInvalidPGN
		}
		canID |= uint32(h.Destination) << 8 // bits 8-15
	} else { // PDU2: global, PS is part of the PGN
		canID |= (h.PGN & 0xff) << 8 // bits 8-15, taken from the PGN itself
	}
	canID |= (h.PGN &^ 0xff) << 8       // bits 16-25 (PF, DP and reserved)
	canID |= uint32(h.Priority&0x7) << 26 // bits 26-28
	return canID, nil
}

// FromCANID parses a 29-bit CAN identifier into its header fields.
func FromCANID(canID uint32) CANHeader {
	h := CANHeader{
		Priority: uint8((canID >> 26) & 0x7),
		Source:   uint8(canID),
	}
	ps := uint8(canID >> 8)
	pf := uint8(canID >> 16)
	// bits 24-25 are reserved+DP; NMEA 2000 PGNs occupy the full 18-bit
	// (reserved<<17 | DP<<16 | PF<<8 | PS) space rather than the single DP
	// bit a strict J1939 reading suggests, matching the 0-262143 PGN range.
	rAndDP := uint32((canID >> 24) & 3)
	pgn := (rAndDP << 16) | (uint32(pf) << 8)

	if pf < 240 { // PDU1
		h.Destination = ps
		h.PGN = pgn
	} else { // PDU2
		h.Destination = AddressGlobal
		h.PGN = pgn | uint32(ps)
	}
	return h
}
