package pgn

import n2k "github.com/oceanbus/n2k-node"

// HeadingReference is the True/Magnetic lookup shared by several heading-
// and course-related PGNs.
type HeadingReference uint8

const (
	HeadingTrue     HeadingReference = 0
	HeadingMagnetic HeadingReference = 1
)

// Rudder is PGN 127245.
type Rudder struct {
	Instance     uint8
	AngleOrder   n2k.Double // radians
	Position     n2k.Double // radians
}

func (Rudder) PGN() uint32 { return 127245 }

func (r Rudder) EncodeMessage(ctx n2k.TxContext) (n2k.Message, error) {
	e := n2k.NewEncoder()
	e.AddByte(r.Instance)
	e.AddByte(0xFF) // direction order / reserved, not modeled
	e.AddDouble(r.AngleOrder, 0.0001, 2, true)
	e.AddDouble(r.Position, 0.0001, 2, true)
	e.AddByte(0xFF)
	e.AddByte(0xFF)
	return finish(e, 127245, 2, ctx)
}

func DecodeRudder(msg n2k.Message) (Rudder, error) {
	d := n2k.NewDecoder(msg.Data)
	instance, err := d.Byte()
	if err != nil {
		return Rudder{}, err
	}
	d.Skip(1)
	angleOrder, err := d.Double(0.0001, 2, true)
	if err != nil {
		return Rudder{}, err
	}
	position, err := d.Double(0.0001, 2, true)
	if err != nil {
		return Rudder{}, err
	}
	return Rudder{Instance: instance, AngleOrder: angleOrder, Position: position}, nil
}

// VesselHeading is PGN 127250.
type VesselHeading struct {
	SID       uint8
	Heading   n2k.Double // radians, unsigned field
	Deviation n2k.Double // radians, signed field
	Variation n2k.Double // radians, signed field
	Reference HeadingReference
}

func (VesselHeading) PGN() uint32 { return 127250 }

func (h VesselHeading) EncodeMessage(ctx n2k.TxContext) (n2k.Message, error) {
	e := n2k.NewEncoder()
	e.AddByte(h.SID)
	e.AddDouble(h.Heading, 0.0001, 2, false)
	e.AddDouble(h.Deviation, 0.0001, 2, true)
	e.AddDouble(h.Variation, 0.0001, 2, true)
	e.AddByte(uint8(h.Reference&0x3) | 0xFC)
	return finish(e, 127250, 2, ctx)
}

func DecodeVesselHeading(msg n2k.Message) (VesselHeading, error) {
	d := n2k.NewDecoder(msg.Data)
	sid, err := d.Byte()
	if err != nil {
		return VesselHeading{}, err
	}
	heading, err := d.Double(0.0001, 2, false)
	if err != nil {
		return VesselHeading{}, err
	}
	deviation, err := d.Double(0.0001, 2, true)
	if err != nil {
		return VesselHeading{}, err
	}
	variation, err := d.Double(0.0001, 2, true)
	if err != nil {
		return VesselHeading{}, err
	}
	refByte, err := d.Byte()
	if err != nil {
		return VesselHeading{}, err
	}
	return VesselHeading{
		SID:       sid,
		Heading:   heading,
		Deviation: deviation,
		Variation: variation,
		Reference: HeadingReference(refByte & 0x3),
	}, nil
}

// RateOfTurn is PGN 127251.
type RateOfTurn struct {
	SID  uint8
	Rate n2k.Double // rad/s, signed, resolution 1/32768 rad/s (~3.052e-5)
}

func (RateOfTurn) PGN() uint32 { return 127251 }

const rateOfTurnResolution = 1.0 / 32768.0

func (r RateOfTurn) EncodeMessage(ctx n2k.TxContext) (n2k.Message, error) {
	e := n2k.NewEncoder()
	e.AddByte(r.SID)
	e.AddDouble(r.Rate, rateOfTurnResolution, 4, true)
	e.AddByte(0xFF)
	e.AddByte(0xFF)
	e.AddByte(0xFF)
	return finish(e, 127251, 2, ctx)
}

func DecodeRateOfTurn(msg n2k.Message) (RateOfTurn, error) {
	d := n2k.NewDecoder(msg.Data)
	sid, err := d.Byte()
	if err != nil {
		return RateOfTurn{}, err
	}
	rate, err := d.Double(rateOfTurnResolution, 4, true)
	if err != nil {
		return RateOfTurn{}, err
	}
	return RateOfTurn{SID: sid, Rate: rate}, nil
}

// Attitude is PGN 127257.
type Attitude struct {
	SID   uint8
	Yaw   n2k.Double // radians, signed
	Pitch n2k.Double // radians, signed
	Roll  n2k.Double // radians, signed
}

func (Attitude) PGN() uint32 { return 127257 }

func (a Attitude) EncodeMessage(ctx n2k.TxContext) (n2k.Message, error) {
	e := n2k.NewEncoder()
	e.AddByte(a.SID)
	e.AddDouble(a.Yaw, 0.0001, 2, true)
	e.AddDouble(a.Pitch, 0.0001, 2, true)
	e.AddDouble(a.Roll, 0.0001, 2, true)
	return finish(e, 127257, 3, ctx)
}

func DecodeAttitude(msg n2k.Message) (Attitude, error) {
	d := n2k.NewDecoder(msg.Data)
	sid, err := d.Byte()
	if err != nil {
		return Attitude{}, err
	}
	yaw, err := d.Double(0.0001, 2, true)
	if err != nil {
		return Attitude{}, err
	}
	pitch, err := d.Double(0.0001, 2, true)
	if err != nil {
		return Attitude{}, err
	}
	roll, err := d.Double(0.0001, 2, true)
	if err != nil {
		return Attitude{}, err
	}
	return Attitude{SID: sid, Yaw: yaw, Pitch: pitch, Roll: roll}, nil
}

// BoatSpeed is PGN 128259.
type BoatSpeed struct {
	SID             uint8
	SpeedWater      n2k.Double // m/s, unsigned, resolution 0.01
	SpeedGround     n2k.Double // m/s, unsigned, resolution 0.01
	SpeedReference  uint8
}

func (BoatSpeed) PGN() uint32 { return 128259 }

func (s BoatSpeed) EncodeMessage(ctx n2k.TxContext) (n2k.Message, error) {
	e := n2k.NewEncoder()
	e.AddByte(s.SID)
	e.AddDouble(s.SpeedWater, 0.01, 2, false)
	e.AddDouble(s.SpeedGround, 0.01, 2, false)
	e.AddByte(s.SpeedReference)
	e.AddByte(0xFF)
	e.AddByte(0xFF)
	e.AddByte(0xFF)
	return finish(e, 128259, 2, ctx)
}

func DecodeBoatSpeed(msg n2k.Message) (BoatSpeed, error) {
	d := n2k.NewDecoder(msg.Data)
	sid, err := d.Byte()
	if err != nil {
		return BoatSpeed{}, err
	}
	waterSpeed, err := d.Double(0.01, 2, false)
	if err != nil {
		return BoatSpeed{}, err
	}
	groundSpeed, err := d.Double(0.01, 2, false)
	if err != nil {
		return BoatSpeed{}, err
	}
	ref, err := d.Byte()
	if err != nil {
		return BoatSpeed{}, err
	}
	return BoatSpeed{SID: sid, SpeedWater: waterSpeed, SpeedGround: groundSpeed, SpeedReference: ref}, nil
}

// WaterDepth is PGN 128267.
type WaterDepth struct {
	SID     uint8
	Depth   n2k.Double // meters below transducer, unsigned, resolution 0.01
	Offset  n2k.Double // meters, signed, resolution 0.001
}

func (WaterDepth) PGN() uint32 { return 128267 }

func (w WaterDepth) EncodeMessage(ctx n2k.TxContext) (n2k.Message, error) {
	e := n2k.NewEncoder()
	e.AddByte(w.SID)
	e.AddDouble(w.Depth, 0.01, 4, false)
	e.AddDouble(w.Offset, 0.001, 2, true)
	e.AddByte(0xFF)
	return finish(e, 128267, 3, ctx)
}

func DecodeWaterDepth(msg n2k.Message) (WaterDepth, error) {
	d := n2k.NewDecoder(msg.Data)
	sid, err := d.Byte()
	if err != nil {
		return WaterDepth{}, err
	}
	depth, err := d.Double(0.01, 4, false)
	if err != nil {
		return WaterDepth{}, err
	}
	offset, err := d.Double(0.001, 2, true)
	if err != nil {
		return WaterDepth{}, err
	}
	return WaterDepth{SID: sid, Depth: depth, Offset: offset}, nil
}

// PositionRapid is PGN 129025.
type PositionRapid struct {
	Latitude  n2k.Double // degrees, signed, resolution 1e-7
	Longitude n2k.Double // degrees, signed, resolution 1e-7
}

func (PositionRapid) PGN() uint32 { return 129025 }

func (p PositionRapid) EncodeMessage(ctx n2k.TxContext) (n2k.Message, error) {
	e := n2k.NewEncoder()
	e.AddDouble(p.Latitude, 1e-7, 4, true)
	e.AddDouble(p.Longitude, 1e-7, 4, true)
	return finish(e, 129025, 2, ctx)
}

func DecodePositionRapid(msg n2k.Message) (PositionRapid, error) {
	d := n2k.NewDecoder(msg.Data)
	lat, err := d.Double(1e-7, 4, true)
	if err != nil {
		return PositionRapid{}, err
	}
	lon, err := d.Double(1e-7, 4, true)
	if err != nil {
		return PositionRapid{}, err
	}
	return PositionRapid{Latitude: lat, Longitude: lon}, nil
}

// COGSOGRapid is PGN 129026.
type COGSOGRapid struct {
	SID           uint8
	COGReference  HeadingReference
	COG           n2k.Double // radians, unsigned, resolution 0.0001
	SOG           n2k.Double // m/s, unsigned, resolution 0.01
}

func (COGSOGRapid) PGN() uint32 { return 129026 }

func (c COGSOGRapid) EncodeMessage(ctx n2k.TxContext) (n2k.Message, error) {
	e := n2k.NewEncoder()
	e.AddByte(c.SID)
	e.AddByte(uint8(c.COGReference&0x3) | 0xFC)
	e.AddDouble(c.COG, 0.0001, 2, false)
	e.AddDouble(c.SOG, 0.01, 2, false)
	e.AddByte(0xFF)
	e.AddByte(0xFF)
	return finish(e, 129026, 2, ctx)
}

func DecodeCOGSOGRapid(msg n2k.Message) (COGSOGRapid, error) {
	d := n2k.NewDecoder(msg.Data)
	sid, err := d.Byte()
	if err != nil {
		return COGSOGRapid{}, err
	}
	refByte, err := d.Byte()
	if err != nil {
		return COGSOGRapid{}, err
	}
	cog, err := d.Double(0.0001, 2, false)
	if err != nil {
		return COGSOGRapid{}, err
	}
	sog, err := d.Double(0.01, 2, false)
	if err != nil {
		return COGSOGRapid{}, err
	}
	return COGSOGRapid{SID: sid, COGReference: HeadingReference(refByte & 0x3), COG: cog, SOG: sog}, nil
}

// WindReference is the wind-angle reference lookup for PGN 130306.
type WindReference uint8

const (
	WindTrueNorth WindReference = 0
	WindMagnetic  WindReference = 1
	WindApparent  WindReference = 2
)

// WindSpeed is PGN 130306.
type WindSpeed struct {
	SID           uint8
	WindSpeed     n2k.Double // m/s, unsigned, resolution 0.01
	WindAngle     n2k.Double // radians, unsigned, resolution 0.0001
	WindReference WindReference
}

func (WindSpeed) PGN() uint32 { return 130306 }

func (w WindSpeed) EncodeMessage(ctx n2k.TxContext) (n2k.Message, error) {
	e := n2k.NewEncoder()
	e.AddByte(w.SID)
	e.AddDouble(w.WindSpeed, 0.01, 2, false)
	e.AddDouble(w.WindAngle, 0.0001, 2, false)
	e.AddByte(uint8(w.WindReference & 0x7))
	e.AddByte(0xFF)
	e.AddByte(0xFF)
	return finish(e, 130306, 2, ctx)
}

func DecodeWindSpeed(msg n2k.Message) (WindSpeed, error) {
	d := n2k.NewDecoder(msg.Data)
	sid, err := d.Byte()
	if err != nil {
		return WindSpeed{}, err
	}
	speed, err := d.Double(0.01, 2, false)
	if err != nil {
		return WindSpeed{}, err
	}
	angle, err := d.Double(0.0001, 2, false)
	if err != nil {
		return WindSpeed{}, err
	}
	refByte, err := d.Byte()
	if err != nil {
		return WindSpeed{}, err
	}
	return WindSpeed{SID: sid, WindSpeed: speed, WindAngle: angle, WindReference: WindReference(refByte & 0x7)}, nil
}

// SystemDateTime is PGN 126992.
type SystemDateTime struct {
	SID       uint8
	DaysSince1970 uint16
	SecondsSinceMidnight n2k.Double // seconds, unsigned, resolution 0.0001
}

func (SystemDateTime) PGN() uint32 { return 126992 }

func (s SystemDateTime) EncodeMessage(ctx n2k.TxContext) (n2k.Message, error) {
	e := n2k.NewEncoder()
	e.AddByte(s.SID)
	e.AddByte(0xF0) // source/reserved, not modeled
	e.AddUint(n2k.NewInt(int64(s.DaysSince1970)), 2)
	e.AddDouble(s.SecondsSinceMidnight, 0.0001, 4, false)
	return finish(e, 126992, 3, ctx)
}

func DecodeSystemDateTime(msg n2k.Message) (SystemDateTime, error) {
	d := n2k.NewDecoder(msg.Data)
	sid, err := d.Byte()
	if err != nil {
		return SystemDateTime{}, err
	}
	d.Skip(1)
	days, err := d.Uint(2)
	if err != nil {
		return SystemDateTime{}, err
	}
	seconds, err := d.Double(0.0001, 4, false)
	if err != nil {
		return SystemDateTime{}, err
	}
	return SystemDateTime{SID: sid, DaysSince1970: uint16(days.Value), SecondsSinceMidnight: seconds}, nil
}
