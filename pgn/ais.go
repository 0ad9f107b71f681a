package pgn

import n2k "github.com/oceanbus/n2k-node"

// AISPositionReport is the shared shape of PGN 129038 (Class A) and 129039
// (Class B) position reports.
type AISPositionReport struct {
	MessageID    uint8 // 6-bit AIS message type
	Repeat       uint8 // 2-bit
	MMSI         uint32
	Longitude    n2k.Double // degrees, signed, resolution 1e-7
	Latitude     n2k.Double // degrees, signed, resolution 1e-7
	PositionAccuracy bool
	RAIM         bool
	TimeStamp    uint8 // 6-bit seconds field
	COG          n2k.Double // radians, unsigned, resolution 0.0001
	SOG          n2k.Double // m/s, unsigned, resolution 0.01
	Heading      n2k.Double // radians, unsigned, resolution 0.0001
	NavStatus    uint8
}

func encodeAISPositionReport(r AISPositionReport, pgn uint32, priority uint8, ctx n2k.TxContext) (n2k.Message, error) {
	e := n2k.NewEncoder()
	e.AddByte((r.MessageID & 0x3F) | (r.Repeat&0x3)<<6)
	e.AddUint(n2k.NewInt(int64(r.MMSI)), 4)
	e.AddDouble(r.Longitude, 1e-7, 4, true)
	e.AddDouble(r.Latitude, 1e-7, 4, true)
	flags := uint8(0)
	if r.PositionAccuracy {
		flags |= 1
	}
	if r.RAIM {
		flags |= 1 << 1
	}
	flags |= (r.TimeStamp & 0x3F) << 2
	e.AddByte(flags)
	e.AddDouble(r.COG, 0.0001, 2, false)
	e.AddDouble(r.SOG, 0.01, 2, false)
	e.AddByte(r.NavStatus & 0xF)
	e.AddDouble(r.Heading, 0.0001, 2, false)
	return finish(e, pgn, priority, ctx)
}

func decodeAISPositionReport(msg n2k.Message) (AISPositionReport, error) {
	d := n2k.NewDecoder(msg.Data)
	var r AISPositionReport
	b0, err := d.Byte()
	if err != nil {
		return r, err
	}
	r.MessageID = b0 & 0x3F
	r.Repeat = (b0 >> 6) & 0x3
	mmsi, err := d.Uint(4)
	if err != nil {
		return r, err
	}
	r.MMSI = uint32(mmsi.Value)
	if r.Longitude, err = d.Double(1e-7, 4, true); err != nil {
		return r, err
	}
	if r.Latitude, err = d.Double(1e-7, 4, true); err != nil {
		return r, err
	}
	flags, err := d.Byte()
	if err != nil {
		return r, err
	}
	r.PositionAccuracy = flags&1 != 0
	r.RAIM = flags&(1<<1) != 0
	r.TimeStamp = (flags >> 2) & 0x3F
	if r.COG, err = d.Double(0.0001, 2, false); err != nil {
		return r, err
	}
	if r.SOG, err = d.Double(0.01, 2, false); err != nil {
		return r, err
	}
	navByte, err := d.Byte()
	if err != nil {
		return r, err
	}
	r.NavStatus = navByte & 0xF
	if r.Heading, err = d.Double(0.0001, 2, false); err != nil {
		return r, err
	}
	return r, nil
}

// AISClassAPositionReport is PGN 129038 (Fast Packet).
type AISClassAPositionReport struct{ AISPositionReport }

func (AISClassAPositionReport) PGN() uint32 { return 129038 }

func (r AISClassAPositionReport) EncodeMessage(ctx n2k.TxContext) (n2k.Message, error) {
	return encodeAISPositionReport(r.AISPositionReport, 129038, 4, ctx)
}

// DecodeAISClassAPositionReport parses a PGN 129038 payload.
func DecodeAISClassAPositionReport(msg n2k.Message) (AISClassAPositionReport, error) {
	r, err := decodeAISPositionReport(msg)
	return AISClassAPositionReport{r}, err
}

// AISClassBPositionReport is PGN 129039 (Fast Packet).
type AISClassBPositionReport struct{ AISPositionReport }

func (AISClassBPositionReport) PGN() uint32 { return 129039 }

func (r AISClassBPositionReport) EncodeMessage(ctx n2k.TxContext) (n2k.Message, error) {
	return encodeAISPositionReport(r.AISPositionReport, 129039, 4, ctx)
}

// DecodeAISClassBPositionReport parses a PGN 129039 payload.
func DecodeAISClassBPositionReport(msg n2k.Message) (AISClassBPositionReport, error) {
	r, err := decodeAISPositionReport(msg)
	return AISClassBPositionReport{r}, err
}

// AISClassBExtendedPositionReport is PGN 129040 (Fast Packet): the Class B
// position report extended with the vessel's name and dimensions.
type AISClassBExtendedPositionReport struct {
	AISPositionReport
	RegionalApplication uint8
	ShipType             uint8
	Length               n2k.Double // meters, unsigned, resolution 0.1
	Beam                 n2k.Double // meters, unsigned, resolution 0.1
	PositionRefStarboard n2k.Double // meters, unsigned, resolution 0.1
	PositionRefBow       n2k.Double // meters, unsigned, resolution 0.1
	Name                 string
}

func (AISClassBExtendedPositionReport) PGN() uint32 { return 129040 }

func (r AISClassBExtendedPositionReport) EncodeMessage(ctx n2k.TxContext) (n2k.Message, error) {
	base, err := encodeAISPositionReport(r.AISPositionReport, 129040, 4, ctx)
	if err != nil {
		return base, err
	}
	e := n2k.NewEncoder()
	e.AddBytes(base.Data)
	e.AddByte(r.RegionalApplication)
	e.AddByte(r.ShipType)
	e.AddDouble(r.Length, 0.1, 2, false)
	e.AddDouble(r.Beam, 0.1, 2, false)
	e.AddDouble(r.PositionRefStarboard, 0.1, 2, false)
	e.AddDouble(r.PositionRefBow, 0.1, 2, false)
	e.AddStr(r.Name, 20)
	return finish(e, 129040, 4, ctx)
}

// DecodeAISClassBExtendedPositionReport parses a PGN 129040 payload.
func DecodeAISClassBExtendedPositionReport(msg n2k.Message) (AISClassBExtendedPositionReport, error) {
	d := n2k.NewDecoder(msg.Data)
	var r AISClassBExtendedPositionReport
	b0, err := d.Byte()
	if err != nil {
		return r, err
	}
	r.MessageID = b0 & 0x3F
	r.Repeat = (b0 >> 6) & 0x3
	mmsi, err := d.Uint(4)
	if err != nil {
		return r, err
	}
	r.MMSI = uint32(mmsi.Value)
	if r.Longitude, err = d.Double(1e-7, 4, true); err != nil {
		return r, err
	}
	if r.Latitude, err = d.Double(1e-7, 4, true); err != nil {
		return r, err
	}
	flags, err := d.Byte()
	if err != nil {
		return r, err
	}
	r.PositionAccuracy = flags&1 != 0
	r.RAIM = flags&(1<<1) != 0
	r.TimeStamp = (flags >> 2) & 0x3F
	if r.COG, err = d.Double(0.0001, 2, false); err != nil {
		return r, err
	}
	if r.SOG, err = d.Double(0.01, 2, false); err != nil {
		return r, err
	}
	navByte, err := d.Byte()
	if err != nil {
		return r, err
	}
	r.NavStatus = navByte & 0xF
	if r.Heading, err = d.Double(0.0001, 2, false); err != nil {
		return r, err
	}
	if r.RegionalApplication, err = d.Byte(); err != nil {
		return r, err
	}
	if r.ShipType, err = d.Byte(); err != nil {
		return r, err
	}
	if r.Length, err = d.Double(0.1, 2, false); err != nil {
		return r, err
	}
	if r.Beam, err = d.Double(0.1, 2, false); err != nil {
		return r, err
	}
	if r.PositionRefStarboard, err = d.Double(0.1, 2, false); err != nil {
		return r, err
	}
	if r.PositionRefBow, err = d.Double(0.1, 2, false); err != nil {
		return r, err
	}
	if r.Name, err = d.StrFix(20); err != nil {
		return r, err
	}
	return r, nil
}

// AtoNType is the aid-to-navigation type lookup for PGN 129041.
type AtoNType uint8

// AISAtoNReport is PGN 129041 (Fast Packet): an AIS aid-to-navigation report.
type AISAtoNReport struct {
	MMSI             uint32
	Longitude        n2k.Double
	Latitude         n2k.Double
	PositionAccuracy bool
	AtoNType         AtoNType
	OffPosition      bool
	VirtualAtoN      bool
	Name             string
}

func (AISAtoNReport) PGN() uint32 { return 129041 }

func (r AISAtoNReport) EncodeMessage(ctx n2k.TxContext) (n2k.Message, error) {
	e := n2k.NewEncoder()
	e.AddUint(n2k.NewInt(int64(r.MMSI)), 4)
	e.AddDouble(r.Longitude, 1e-7, 4, true)
	e.AddDouble(r.Latitude, 1e-7, 4, true)
	flags := uint8(0)
	if r.PositionAccuracy {
		flags |= 1
	}
	if r.OffPosition {
		flags |= 1 << 1
	}
	if r.VirtualAtoN {
		flags |= 1 << 2
	}
	e.AddByte(flags)
	e.AddByte(uint8(r.AtoNType))
	e.AddVarStr(r.Name)
	return finish(e, 129041, 4, ctx)
}

// DecodeAISAtoNReport parses a PGN 129041 payload.
func DecodeAISAtoNReport(msg n2k.Message) (AISAtoNReport, error) {
	d := n2k.NewDecoder(msg.Data)
	var r AISAtoNReport
	mmsi, err := d.Uint(4)
	if err != nil {
		return r, err
	}
	r.MMSI = uint32(mmsi.Value)
	if r.Longitude, err = d.Double(1e-7, 4, true); err != nil {
		return r, err
	}
	if r.Latitude, err = d.Double(1e-7, 4, true); err != nil {
		return r, err
	}
	flags, err := d.Byte()
	if err != nil {
		return r, err
	}
	r.PositionAccuracy = flags&1 != 0
	r.OffPosition = flags&(1<<1) != 0
	r.VirtualAtoN = flags&(1<<2) != 0
	atonType, err := d.Byte()
	if err != nil {
		return r, err
	}
	r.AtoNType = AtoNType(atonType)
	if r.Name, _, err = d.VarStr(); err != nil {
		return r, err
	}
	return r, nil
}

// AISClassAStatic is PGN 129794 (Fast Packet): AIS Class A static and
// voyage-related data.
type AISClassAStatic struct {
	MMSI         uint32
	IMONumber    uint32
	CallSign     string
	Name         string
	ShipType     uint8
	Length       n2k.Double // meters, resolution 0.1
	Beam         n2k.Double // meters, resolution 0.1
	Destination  string
}

func (AISClassAStatic) PGN() uint32 { return 129794 }

func (s AISClassAStatic) EncodeMessage(ctx n2k.TxContext) (n2k.Message, error) {
	e := n2k.NewEncoder()
	e.AddUint(n2k.NewInt(int64(s.MMSI)), 4)
	e.AddUint(n2k.NewInt(int64(s.IMONumber)), 4)
	e.AddStr(s.CallSign, 7)
	e.AddStr(s.Name, 20)
	e.AddByte(s.ShipType)
	e.AddDouble(s.Length, 0.1, 2, false)
	e.AddDouble(s.Beam, 0.1, 2, false)
	e.AddStr(s.Destination, 20)
	return finish(e, 129794, 6, ctx)
}

// DecodeAISClassAStatic parses a PGN 129794 payload.
func DecodeAISClassAStatic(msg n2k.Message) (AISClassAStatic, error) {
	d := n2k.NewDecoder(msg.Data)
	var s AISClassAStatic
	mmsi, err := d.Uint(4)
	if err != nil {
		return s, err
	}
	s.MMSI = uint32(mmsi.Value)
	imo, err := d.Uint(4)
	if err != nil {
		return s, err
	}
	s.IMONumber = uint32(imo.Value)
	if s.CallSign, err = d.StrFix(7); err != nil {
		return s, err
	}
	if s.Name, err = d.StrFix(20); err != nil {
		return s, err
	}
	if s.ShipType, err = d.Byte(); err != nil {
		return s, err
	}
	if s.Length, err = d.Double(0.1, 2, false); err != nil {
		return s, err
	}
	if s.Beam, err = d.Double(0.1, 2, false); err != nil {
		return s, err
	}
	if s.Destination, err = d.StrFix(20); err != nil {
		return s, err
	}
	return s, nil
}

// AISClassBStaticA is PGN 129809 (Fast Packet), part A of the Class B static
// data report (name only).
type AISClassBStaticA struct {
	MMSI uint32
	Name string
}

func (AISClassBStaticA) PGN() uint32 { return 129809 }

func (s AISClassBStaticA) EncodeMessage(ctx n2k.TxContext) (n2k.Message, error) {
	e := n2k.NewEncoder()
	e.AddUint(n2k.NewInt(int64(s.MMSI)), 4)
	e.AddStr(s.Name, 20)
	return finish(e, 129809, 6, ctx)
}

// DecodeAISClassBStaticA parses a PGN 129809 payload.
func DecodeAISClassBStaticA(msg n2k.Message) (AISClassBStaticA, error) {
	d := n2k.NewDecoder(msg.Data)
	var s AISClassBStaticA
	mmsi, err := d.Uint(4)
	if err != nil {
		return s, err
	}
	s.MMSI = uint32(mmsi.Value)
	if s.Name, err = d.StrFix(20); err != nil {
		return s, err
	}
	return s, nil
}

// AISClassBStaticB is PGN 129810 (Fast Packet), part B of the Class B static
// data report (type, call sign and dimensions).
type AISClassBStaticB struct {
	MMSI     uint32
	ShipType uint8
	CallSign string
	Length   n2k.Double // meters, resolution 0.1
	Beam     n2k.Double // meters, resolution 0.1
}

func (AISClassBStaticB) PGN() uint32 { return 129810 }

func (s AISClassBStaticB) EncodeMessage(ctx n2k.TxContext) (n2k.Message, error) {
	e := n2k.NewEncoder()
	e.AddUint(n2k.NewInt(int64(s.MMSI)), 4)
	e.AddByte(s.ShipType)
	e.AddStr(s.CallSign, 7)
	e.AddDouble(s.Length, 0.1, 2, false)
	e.AddDouble(s.Beam, 0.1, 2, false)
	return finish(e, 129810, 6, ctx)
}

// DecodeAISClassBStaticB parses a PGN 129810 payload.
func DecodeAISClassBStaticB(msg n2k.Message) (AISClassBStaticB, error) {
	d := n2k.NewDecoder(msg.Data)
	var s AISClassBStaticB
	mmsi, err := d.Uint(4)
	if err != nil {
		return s, err
	}
	s.MMSI = uint32(mmsi.Value)
	if s.ShipType, err = d.Byte(); err != nil {
		return s, err
	}
	if s.CallSign, err = d.StrFix(7); err != nil {
		return s, err
	}
	if s.Length, err = d.Double(0.1, 2, false); err != nil {
		return s, err
	}
	if s.Beam, err = d.Double(0.1, 2, false); err != nil {
		return s, err
	}
	return s, nil
}
