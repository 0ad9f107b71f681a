package n2k

import "errors"

// Decode errors (ErrDecodeShort, ErrDecodeMalformed) never reach user
// handlers: node.Receive logs them at Debug level and carries on.
// Encode/send errors (ErrBufferFull, ErrInvalidPGN, ErrBackpressure,
// ErrConfigError) are returned to the caller. ErrAddressClaimLost is returned
// from Node.Receive and Node.Tick once the address-claim walk-down has tried
// every source address.
var (
	// ErrDecodeShort indicates fewer bytes were available than a field requires.
	ErrDecodeShort = errors.New("n2k: fewer bytes available than field requires")
	// ErrDecodeMalformed indicates reserved bits or a length prefix were inconsistent.
	ErrDecodeMalformed = errors.New("n2k: malformed field encoding")
	// ErrBufferFull indicates an encode would exceed MaxDataLen.
	ErrBufferFull = errors.New("n2k: encoded payload exceeds maximum PGN data length")
	// ErrInvalidPGN indicates a PDU1 PGN with non-zero low byte was passed to the CAN-ID encoder.
	ErrInvalidPGN = errors.New("n2k: PDU1 PGN must have a zero low byte")
	// ErrBackpressure indicates the send queue overflowed and the oldest pending frame was evicted.
	// FastPacketAssembler.Feed also returns it when its slot pool is full and a new first frame is dropped.
	ErrBackpressure = errors.New("n2k: send queue full, oldest frame evicted")
	// ErrConfigError indicates invalid node configuration (NAME == 0, heartbeat interval out of range, strings too long).
	ErrConfigError = errors.New("n2k: invalid node configuration")
	// ErrAddressClaimLost indicates no free source address could be found in [0, MaxCANBusAddress].
	ErrAddressClaimLost = errors.New("n2k: no free source address available")
	// ErrUnknownPGN indicates the decoder has no registered typed codec for a PGN.
	ErrUnknownPGN = errors.New("n2k: no decoder registered for PGN")
)
