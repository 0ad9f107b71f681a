// Package pgn implements typed encode/decode pairs for the NMEA 2000
// Parameter Group Numbers this node supports, plus the Registry that maps a
// PGN number to its canonical transmission metadata.
package pgn

import "encoding/binary"

// Name is the 64-bit ISO 11783 NAME that uniquely identifies a node on the
// bus, used as the payload of an ISO Address Claim and as the tie-breaker in
// address-claim contention (numerically lower NAME wins).
type Name struct {
	UniqueNumber     uint32 // 21 bits
	ManufacturerCode uint16 // 11 bits
	DeviceInstance   uint8  // 8 bits
	DeviceFunction   uint8  // 8 bits
	DeviceClass      uint8  // 7 bits
	SystemInstance   uint8  // 4 bits
	IndustryGroup    uint8  // 3 bits
}

// Uint64 packs n into the 64-bit little-endian NAME integer used for
// address-claim comparison. The top bit (arbitrary-address-capable) is
// conventionally fixed at 1; this package does not expose it as settable.
func (n Name) Uint64() uint64 {
	v := uint64(n.UniqueNumber & 0x1FFFFF)
	v |= uint64(n.ManufacturerCode&0x7FF) << 21
	v |= uint64(n.DeviceInstance) << 32
	v |= uint64(n.DeviceFunction) << 40
	v |= uint64(n.DeviceClass&0x7F) << 49
	v |= uint64(n.SystemInstance&0xF) << 56
	v |= uint64(n.IndustryGroup&0x7) << 60
	v |= uint64(1) << 63
	return v
}

// Bytes returns the little-endian 8-byte wire form of n.
func (n Name) Bytes() [8]byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], n.Uint64())
	return b
}

// NameFromUint64 decomposes a 64-bit NAME integer into its fields.
func NameFromUint64(v uint64) Name {
	return Name{
		UniqueNumber:     uint32(v & 0x1FFFFF),
		ManufacturerCode: uint16((v >> 21) & 0x7FF),
		DeviceInstance:   uint8((v >> 32) & 0xFF),
		DeviceFunction:   uint8((v >> 40) & 0xFF),
		DeviceClass:      uint8((v >> 49) & 0x7F),
		SystemInstance:   uint8((v >> 56) & 0xF),
		IndustryGroup:    uint8((v >> 60) & 0x7),
	}
}

// NameFromBytes decodes an 8-byte little-endian NAME payload.
func NameFromBytes(b []byte) Name {
	return NameFromUint64(binary.LittleEndian.Uint64(b))
}
