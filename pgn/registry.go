package pgn

import n2k "github.com/oceanbus/n2k-node"

// Meta holds the canonical transmission metadata for a PGN: the priority it
// is always sent with, whether it reassembles via Fast Packet, and (for
// periodic broadcasts) its default transmission period.
type Meta struct {
	PGN         uint32
	Name        string
	Priority    uint8
	FastPacket  bool
	PeriodMs    uint32 // 0 for request/response PGNs with no fixed schedule
}

// CanonicalTable is the full set of PGNs this node understands, single-frame
// and Fast Packet, with their canonical priority and period.
var CanonicalTable = []Meta{
	{PGN: 59392, Name: "ISO Acknowledgement", Priority: 6},
	{PGN: 59904, Name: "ISO Request", Priority: 6},
	{PGN: 60928, Name: "ISO Address Claim", Priority: 6},
	{PGN: 126992, Name: "System Date/Time", Priority: 3, PeriodMs: 1000},
	{PGN: 126993, Name: "Heartbeat", Priority: 7, PeriodMs: 60000},
	{PGN: 127245, Name: "Rudder", Priority: 2, PeriodMs: 100},
	{PGN: 127250, Name: "Vessel Heading", Priority: 2, PeriodMs: 100},
	{PGN: 127251, Name: "Rate of Turn", Priority: 2, PeriodMs: 100},
	{PGN: 127257, Name: "Attitude", Priority: 3, PeriodMs: 1000},
	{PGN: 127488, Name: "Engine Parameters Rapid", Priority: 2, PeriodMs: 100},
	{PGN: 127505, Name: "Fluid Level", Priority: 6, PeriodMs: 2500},
	{PGN: 127508, Name: "Battery Status", Priority: 6, PeriodMs: 1500},
	{PGN: 128259, Name: "Boat Speed", Priority: 2, PeriodMs: 1000},
	{PGN: 128267, Name: "Water Depth", Priority: 3, PeriodMs: 1000},
	{PGN: 129025, Name: "Position Rapid", Priority: 2, PeriodMs: 100},
	{PGN: 129026, Name: "COG/SOG Rapid", Priority: 2, PeriodMs: 250},
	{PGN: 130306, Name: "Wind Speed", Priority: 2, PeriodMs: 100},

	{PGN: 126464, Name: "Supported PGN List", Priority: 6, FastPacket: true},
	{PGN: 126996, Name: "Product Information", Priority: 6, FastPacket: true},
	{PGN: 126998, Name: "Configuration Information", Priority: 6, FastPacket: true},
	{PGN: 127237, Name: "Heading/Track Control", Priority: 2, FastPacket: true},
	{PGN: 127489, Name: "Engine Parameters Dynamic", Priority: 2, FastPacket: true},
	{PGN: 129029, Name: "GNSS Position Data", Priority: 3, FastPacket: true},
	{PGN: 129038, Name: "AIS Class A Position Report", Priority: 4, FastPacket: true},
	{PGN: 129039, Name: "AIS Class B Position Report", Priority: 4, FastPacket: true},
	{PGN: 129040, Name: "AIS Class B Extended Position Report", Priority: 4, FastPacket: true},
	{PGN: 129041, Name: "AIS Aids To Navigation Report", Priority: 4, FastPacket: true},
	{PGN: 129284, Name: "Navigation Info", Priority: 3, FastPacket: true},
	{PGN: 129285, Name: "Route & Waypoint Info", Priority: 3, FastPacket: true},
	{PGN: 129540, Name: "Satellites In View", Priority: 6, FastPacket: true},
	{PGN: 129794, Name: "AIS Class A Static Data", Priority: 6, FastPacket: true},
	{PGN: 129809, Name: "AIS Class B Static Data A", Priority: 6, FastPacket: true},
	{PGN: 129810, Name: "AIS Class B Static Data B", Priority: 6, FastPacket: true},
	{PGN: 130074, Name: "Waypoint List", Priority: 7, FastPacket: true},
}

// Codec is the uniform encode interface every typed PGN payload implements,
// so node.Send can encode any payload without a type switch. Decoding is
// done by each type's package-level DecodeXxx function.
type Codec interface {
	PGN() uint32
	EncodeMessage(ctx n2k.TxContext) (n2k.Message, error)
}

// Registry looks up canonical Meta by PGN number and reports whether a PGN
// is handled as Fast Packet. Package node does not consult it:
// FragmentForWire chooses Fast Packet by payload length, and Receive
// dispatches by PGN number.
type Registry struct {
	byPGN map[uint32]Meta
}

// NewRegistry builds a Registry pre-populated with CanonicalTable.
func NewRegistry() *Registry {
	r := &Registry{byPGN: make(map[uint32]Meta, len(CanonicalTable))}
	for _, m := range CanonicalTable {
		r.byPGN[m.PGN] = m
	}
	return r
}

// Lookup returns the canonical Meta for pgn and whether it is known.
func (r *Registry) Lookup(pgn uint32) (Meta, bool) {
	m, ok := r.byPGN[pgn]
	return m, ok
}

// IsFastPacket reports whether pgn is reassembled via Fast Packet.
func (r *Registry) IsFastPacket(pgn uint32) bool {
	m, ok := r.byPGN[pgn]
	return ok && m.FastPacket
}

// FastPacketPGNs returns every PGN in the table marked Fast Packet, for
// seeding an n2k.FastPacketAssembler.
func (r *Registry) FastPacketPGNs() []uint32 {
	out := make([]uint32, 0, len(r.byPGN))
	for pgn, m := range r.byPGN {
		if m.FastPacket {
			out = append(out, pgn)
		}
	}
	return out
}
