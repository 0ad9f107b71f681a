package pgn

import n2k "github.com/oceanbus/n2k-node"

// GNSSMethod is the position-fix type lookup used by PGN 129029.
type GNSSMethod uint8

const (
	GNSSNoFix        GNSSMethod = 0
	GNSSGNSSFix      GNSSMethod = 1
	GNSSDGNSSFix     GNSSMethod = 2
	GNSSPrecise      GNSSMethod = 3
)

// GNSSPositionData is PGN 129029 (Fast Packet). The trailing reference-
// station list (type/ID/correction age, repeated per station) is carried
// opaquely as RawReferenceStations: this implementation does not interpret
// the per-station records, only preserves them on decode and re-emits them
// unchanged on re-encode.
type GNSSPositionData struct {
	SID                 uint8
	DaysSince1970       uint16
	SecondsSinceMidnight n2k.Double // seconds, resolution 0.0001
	Latitude            n2k.Double // degrees, signed, resolution 1e-16 (stored as 8-byte)
	Longitude           n2k.Double // degrees, signed, resolution 1e-16
	Altitude            n2k.Double // meters, signed, resolution 1e-6
	Method              GNSSMethod
	Integrity           uint8 // 2-bit field, opaque beyond presence
	NumSatellites       uint8
	HDOP                n2k.Double // resolution 0.01
	PDOP                n2k.Double // resolution 0.01
	GeoidalSeparation   n2k.Double // meters, resolution 0.01
	RawReferenceStations []byte
}

func (GNSSPositionData) PGN() uint32 { return 129029 }

func (g GNSSPositionData) EncodeMessage(ctx n2k.TxContext) (n2k.Message, error) {
	e := n2k.NewEncoder()
	e.AddByte(g.SID)
	e.AddUint(n2k.NewInt(int64(g.DaysSince1970)), 2)
	e.AddDouble(g.SecondsSinceMidnight, 0.0001, 4, false)
	e.AddDouble(g.Latitude, 1e-16, 8, true)
	e.AddDouble(g.Longitude, 1e-16, 8, true)
	e.AddDouble(g.Altitude, 1e-6, 8, true)
	e.AddByte(uint8(g.Method&0xF) | 0xF0)
	e.AddByte(g.Integrity & 0x3)
	e.AddByte(g.NumSatellites)
	e.AddDouble(g.HDOP, 0.01, 2, true)
	e.AddDouble(g.PDOP, 0.01, 2, true)
	e.AddDouble(g.GeoidalSeparation, 0.01, 4, true)
	e.AddByte(uint8(len(g.RawReferenceStations) / 1)) // count placeholder when no stations modeled
	e.AddBytes(g.RawReferenceStations)
	return finish(e, 129029, 3, ctx)
}

// DecodeGNSSPositionData parses a PGN 129029 payload.
func DecodeGNSSPositionData(msg n2k.Message) (GNSSPositionData, error) {
	d := n2k.NewDecoder(msg.Data)
	var g GNSSPositionData
	var err error
	if g.SID, err = d.Byte(); err != nil {
		return g, err
	}
	days, err := d.Uint(2)
	if err != nil {
		return g, err
	}
	g.DaysSince1970 = uint16(days.Value)
	if g.SecondsSinceMidnight, err = d.Double(0.0001, 4, false); err != nil {
		return g, err
	}
	if g.Latitude, err = d.Double(1e-16, 8, true); err != nil {
		return g, err
	}
	if g.Longitude, err = d.Double(1e-16, 8, true); err != nil {
		return g, err
	}
	if g.Altitude, err = d.Double(1e-6, 8, true); err != nil {
		return g, err
	}
	methodByte, err := d.Byte()
	if err != nil {
		return g, err
	}
	g.Method = GNSSMethod(methodByte & 0xF)
	integrityByte, err := d.Byte()
	if err != nil {
		return g, err
	}
	g.Integrity = integrityByte & 0x3
	if g.NumSatellites, err = d.Byte(); err != nil {
		return g, err
	}
	if g.HDOP, err = d.Double(0.01, 2, true); err != nil {
		return g, err
	}
	if g.PDOP, err = d.Double(0.01, 2, true); err != nil {
		return g, err
	}
	if g.GeoidalSeparation, err = d.Double(0.01, 4, true); err != nil {
		return g, err
	}
	if _, err = d.Byte(); err != nil { // reference-station count, unmodeled
		return g, err
	}
	if d.Len() > 0 {
		g.RawReferenceStations, err = d.Bytes(d.Len())
		if err != nil {
			return g, err
		}
	}
	return g, nil
}

// NavigationInfo is PGN 129284 (Fast Packet).
type NavigationInfo struct {
	SID                  uint8
	DistanceToWaypoint   n2k.Double // meters, unsigned, resolution 0.01
	CourseBearingRef     HeadingReference
	PerpendicularCrossed bool
	ArrivalCircleEntered bool
	BearingOriginToDest  n2k.Double // radians, unsigned, resolution 0.0001
	BearingPosToDest     n2k.Double // radians, unsigned, resolution 0.0001
	OriginWaypointID     uint32
	DestWaypointID       uint32
	DestLatitude         n2k.Double // degrees, signed, resolution 1e-7
	DestLongitude        n2k.Double // degrees, signed, resolution 1e-7
	WaypointClosingSpeed n2k.Double // m/s, signed, resolution 0.01
}

func (NavigationInfo) PGN() uint32 { return 129284 }

func (n NavigationInfo) EncodeMessage(ctx n2k.TxContext) (n2k.Message, error) {
	e := n2k.NewEncoder()
	e.AddByte(n.SID)
	e.AddDouble(n.DistanceToWaypoint, 0.01, 4, false)
	flags := uint8(n.CourseBearingRef & 0x3)
	if n.PerpendicularCrossed {
		flags |= 1 << 2
	}
	if n.ArrivalCircleEntered {
		flags |= 1 << 4
	}
	e.AddByte(flags | 0xC0)
	e.AddDouble(n.BearingOriginToDest, 0.0001, 2, false)
	e.AddDouble(n.BearingPosToDest, 0.0001, 2, false)
	e.AddUint(n2k.NewInt(int64(n.OriginWaypointID)), 4)
	e.AddUint(n2k.NewInt(int64(n.DestWaypointID)), 4)
	e.AddDouble(n.DestLatitude, 1e-7, 4, true)
	e.AddDouble(n.DestLongitude, 1e-7, 4, true)
	e.AddDouble(n.WaypointClosingSpeed, 0.01, 2, true)
	return finish(e, 129284, 3, ctx)
}

// DecodeNavigationInfo parses a PGN 129284 payload.
func DecodeNavigationInfo(msg n2k.Message) (NavigationInfo, error) {
	d := n2k.NewDecoder(msg.Data)
	var n NavigationInfo
	var err error
	if n.SID, err = d.Byte(); err != nil {
		return n, err
	}
	if n.DistanceToWaypoint, err = d.Double(0.01, 4, false); err != nil {
		return n, err
	}
	flags, err := d.Byte()
	if err != nil {
		return n, err
	}
	n.CourseBearingRef = HeadingReference(flags & 0x3)
	n.PerpendicularCrossed = flags&(1<<2) != 0
	n.ArrivalCircleEntered = flags&(1<<4) != 0
	if n.BearingOriginToDest, err = d.Double(0.0001, 2, false); err != nil {
		return n, err
	}
	if n.BearingPosToDest, err = d.Double(0.0001, 2, false); err != nil {
		return n, err
	}
	origin, err := d.Uint(4)
	if err != nil {
		return n, err
	}
	n.OriginWaypointID = uint32(origin.Value)
	dest, err := d.Uint(4)
	if err != nil {
		return n, err
	}
	n.DestWaypointID = uint32(dest.Value)
	if n.DestLatitude, err = d.Double(1e-7, 4, true); err != nil {
		return n, err
	}
	if n.DestLongitude, err = d.Double(1e-7, 4, true); err != nil {
		return n, err
	}
	if n.WaypointClosingSpeed, err = d.Double(0.01, 2, true); err != nil {
		return n, err
	}
	return n, nil
}

// Satellite is one entry of a PGN 129540 satellite list.
type Satellite struct {
	PRN              uint8
	Elevation        n2k.Double // radians, signed, resolution 0.0001
	Azimuth          n2k.Double // radians, unsigned, resolution 0.0001
	SNR              n2k.Double // dB, unsigned, resolution 0.01
	RangeResiduals   n2k.Int    // meters*100, signed
	UsageStatus      uint8      // 4-bit field
}

// SatellitesInView is PGN 129540 (Fast Packet).
type SatellitesInView struct {
	SID         uint8
	RangeResidualMode uint8 // 2-bit field
	Satellites  []Satellite
}

func (SatellitesInView) PGN() uint32 { return 129540 }

func (s SatellitesInView) EncodeMessage(ctx n2k.TxContext) (n2k.Message, error) {
	e := n2k.NewEncoder()
	e.AddByte(s.SID)
	e.AddByte(uint8(s.RangeResidualMode&0x3) | 0xFC)
	e.AddByte(uint8(len(s.Satellites)))
	for _, sat := range s.Satellites {
		e.AddByte(sat.PRN)
		e.AddDouble(sat.Elevation, 0.0001, 2, true)
		e.AddDouble(sat.Azimuth, 0.0001, 2, false)
		e.AddDouble(sat.SNR, 0.01, 2, false)
		e.AddInt(sat.RangeResiduals, 4)
		e.AddByte(sat.UsageStatus & 0xF)
	}
	return finish(e, 129540, 6, ctx)
}

// DecodeSatellitesInView parses a PGN 129540 payload.
func DecodeSatellitesInView(msg n2k.Message) (SatellitesInView, error) {
	d := n2k.NewDecoder(msg.Data)
	var s SatellitesInView
	var err error
	if s.SID, err = d.Byte(); err != nil {
		return s, err
	}
	modeByte, err := d.Byte()
	if err != nil {
		return s, err
	}
	s.RangeResidualMode = modeByte & 0x3
	count, err := d.Byte()
	if err != nil {
		return s, err
	}
	s.Satellites = make([]Satellite, 0, count)
	for i := 0; i < int(count); i++ {
		var sat Satellite
		if sat.PRN, err = d.Byte(); err != nil {
			return s, err
		}
		if sat.Elevation, err = d.Double(0.0001, 2, true); err != nil {
			return s, err
		}
		if sat.Azimuth, err = d.Double(0.0001, 2, false); err != nil {
			return s, err
		}
		if sat.SNR, err = d.Double(0.01, 2, false); err != nil {
			return s, err
		}
		if sat.RangeResiduals, err = d.Int(4); err != nil {
			return s, err
		}
		statusByte, err := d.Byte()
		if err != nil {
			return s, err
		}
		sat.UsageStatus = statusByte & 0xF
		s.Satellites = append(s.Satellites, sat)
	}
	return s, nil
}

// HeadingTrackControl is PGN 127237 (Fast Packet): autopilot rudder and
// heading limits.
type HeadingTrackControl struct {
	RudderLimitExceeded  uint8 // 2-bit tri-state
	OffHeadingLimitExceeded uint8
	OffTrackLimitExceeded   uint8
	Override             bool
	SteeringMode         uint8 // 3-bit
	TurnMode             uint8 // 3-bit
	HeadingReference     HeadingReference
	CommandedRudderDirection uint8 // 3-bit
	CommandedRudderAngle n2k.Double // radians, signed, resolution 0.0001
	HeadingToSteer       n2k.Double // radians, unsigned, resolution 0.0001
	Track                n2k.Double // radians, unsigned, resolution 0.0001
	RudderLimit          n2k.Double // radians, unsigned, resolution 0.0001
	OffHeadingLimit      n2k.Double // radians, unsigned, resolution 0.0001
	RadiusOfTurn         n2k.Double // meters, signed, resolution 1
	RateOfTurn           n2k.Double // rad/s, signed, resolution rateOfTurnResolution
	OffTrackLimit        n2k.Double // meters, signed, resolution 1
	VesselHeading        n2k.Double // radians, unsigned, resolution 0.0001
}

func (HeadingTrackControl) PGN() uint32 { return 127237 }

func (h HeadingTrackControl) EncodeMessage(ctx n2k.TxContext) (n2k.Message, error) {
	e := n2k.NewEncoder()
	b0 := (h.RudderLimitExceeded & 0x3) | (h.OffHeadingLimitExceeded&0x3)<<2 | (h.OffTrackLimitExceeded&0x3)<<4
	if h.Override {
		b0 |= 1 << 6
	}
	e.AddByte(b0)
	e.AddByte((h.SteeringMode & 0x7) | (h.TurnMode&0x7)<<3 | uint8(h.HeadingReference&0x3)<<6)
	e.AddByte(h.CommandedRudderDirection & 0x7)
	e.AddDouble(h.CommandedRudderAngle, 0.0001, 2, true)
	e.AddDouble(h.HeadingToSteer, 0.0001, 2, false)
	e.AddDouble(h.Track, 0.0001, 2, false)
	e.AddDouble(h.RudderLimit, 0.0001, 2, false)
	e.AddDouble(h.OffHeadingLimit, 0.0001, 2, false)
	e.AddDouble(h.RadiusOfTurn, 1, 2, true)
	e.AddDouble(h.RateOfTurn, rateOfTurnResolution, 4, true)
	e.AddDouble(h.OffTrackLimit, 1, 2, true)
	e.AddDouble(h.VesselHeading, 0.0001, 2, false)
	return finish(e, 127237, 2, ctx)
}

// DecodeHeadingTrackControl parses a PGN 127237 payload.
func DecodeHeadingTrackControl(msg n2k.Message) (HeadingTrackControl, error) {
	d := n2k.NewDecoder(msg.Data)
	var h HeadingTrackControl
	b0, err := d.Byte()
	if err != nil {
		return h, err
	}
	h.RudderLimitExceeded = b0 & 0x3
	h.OffHeadingLimitExceeded = (b0 >> 2) & 0x3
	h.OffTrackLimitExceeded = (b0 >> 4) & 0x3
	h.Override = b0&(1<<6) != 0
	b1, err := d.Byte()
	if err != nil {
		return h, err
	}
	h.SteeringMode = b1 & 0x7
	h.TurnMode = (b1 >> 3) & 0x7
	h.HeadingReference = HeadingReference((b1 >> 6) & 0x3)
	b2, err := d.Byte()
	if err != nil {
		return h, err
	}
	h.CommandedRudderDirection = b2 & 0x7
	if h.CommandedRudderAngle, err = d.Double(0.0001, 2, true); err != nil {
		return h, err
	}
	if h.HeadingToSteer, err = d.Double(0.0001, 2, false); err != nil {
		return h, err
	}
	if h.Track, err = d.Double(0.0001, 2, false); err != nil {
		return h, err
	}
	if h.RudderLimit, err = d.Double(0.0001, 2, false); err != nil {
		return h, err
	}
	if h.OffHeadingLimit, err = d.Double(0.0001, 2, false); err != nil {
		return h, err
	}
	if h.RadiusOfTurn, err = d.Double(1, 2, true); err != nil {
		return h, err
	}
	if h.RateOfTurn, err = d.Double(rateOfTurnResolution, 4, true); err != nil {
		return h, err
	}
	if h.OffTrackLimit, err = d.Double(1, 2, true); err != nil {
		return h, err
	}
	if h.VesselHeading, err = d.Double(0.0001, 2, false); err != nil {
		return h, err
	}
	return h, nil
}
