package pgn

import n2k "github.com/oceanbus/n2k-node"

// productInfoLen is the fixed wire length of a PGN 126996 payload: two
// 16-bit fields, four 32-byte ASCII fields and two trailing bytes.
const productInfoLen = 134

// ProductInformation is PGN 126996 (Fast Packet).
type ProductInformation struct {
	NMEA2000Version     uint16
	ProductCode         uint16
	ModelID             string
	SoftwareVersionCode string
	ModelVersion        string
	ModelSerialCode     string
	CertificationLevel  uint8
	LoadEquivalency     uint8
}

func (ProductInformation) PGN() uint32 { return 126996 }

func (p ProductInformation) EncodeMessage(ctx n2k.TxContext) (n2k.Message, error) {
	e := n2k.NewEncoder()
	e.AddUint(n2k.NewInt(int64(p.NMEA2000Version)), 2)
	e.AddUint(n2k.NewInt(int64(p.ProductCode)), 2)
	e.AddStr(p.ModelID, 32)
	e.AddStr(p.SoftwareVersionCode, 32)
	e.AddStr(p.ModelVersion, 32)
	e.AddStr(p.ModelSerialCode, 32)
	e.AddByte(p.CertificationLevel)
	e.AddByte(p.LoadEquivalency)
	return finish(e, 126996, 6, ctx)
}

// DecodeProductInformation parses a PGN 126996 payload.
func DecodeProductInformation(msg n2k.Message) (ProductInformation, error) {
	if len(msg.Data) != productInfoLen {
		return ProductInformation{}, n2k.ErrDecodeMalformed
	}
	d := n2k.NewDecoder(msg.Data)
	var p ProductInformation
	version, err := d.Uint(2)
	if err != nil {
		return p, err
	}
	code, err := d.Uint(2)
	if err != nil {
		return p, err
	}
	if p.ModelID, err = d.StrFix(32); err != nil {
		return p, err
	}
	if p.SoftwareVersionCode, err = d.StrFix(32); err != nil {
		return p, err
	}
	if p.ModelVersion, err = d.StrFix(32); err != nil {
		return p, err
	}
	if p.ModelSerialCode, err = d.StrFix(32); err != nil {
		return p, err
	}
	if p.CertificationLevel, err = d.Byte(); err != nil {
		return p, err
	}
	if p.LoadEquivalency, err = d.Byte(); err != nil {
		return p, err
	}
	p.NMEA2000Version = uint16(version.Value)
	p.ProductCode = uint16(code.Value)
	return p, nil
}

// ConfigurationInformation is PGN 126998 (Fast Packet): three variable-
// length ASCII fields, each at most 70 bytes of payload.
type ConfigurationInformation struct {
	InstallationDescription1 string
	InstallationDescription2 string
	ManufacturerInformation  string
}

func (ConfigurationInformation) PGN() uint32 { return 126998 }

func (c ConfigurationInformation) EncodeMessage(ctx n2k.TxContext) (n2k.Message, error) {
	e := n2k.NewEncoder()
	e.AddVarStr(c.InstallationDescription1)
	e.AddVarStr(c.InstallationDescription2)
	e.AddVarStr(c.ManufacturerInformation)
	return finish(e, 126998, 6, ctx)
}

// DecodeConfigurationInformation parses a PGN 126998 payload.
func DecodeConfigurationInformation(msg n2k.Message) (ConfigurationInformation, error) {
	d := n2k.NewDecoder(msg.Data)
	var c ConfigurationInformation
	var err error
	if c.InstallationDescription1, _, err = d.VarStr(); err != nil {
		return c, err
	}
	if c.InstallationDescription2, _, err = d.VarStr(); err != nil {
		return c, err
	}
	if c.ManufacturerInformation, _, err = d.VarStr(); err != nil {
		return c, err
	}
	return c, nil
}

// SupportedPGNList is PGN 126464 (Fast Packet): the set of PGNs this node
// transmits or receives.
type SupportedPGNList struct {
	Transmit bool // false means this lists received PGNs
	PGNs     []uint32
}

func (SupportedPGNList) PGN() uint32 { return 126464 }

func (l SupportedPGNList) EncodeMessage(ctx n2k.TxContext) (n2k.Message, error) {
	e := n2k.NewEncoder()
	if l.Transmit {
		e.AddByte(0)
	} else {
		e.AddByte(1)
	}
	for _, pgn := range l.PGNs {
		e.AddUint(n2k.NewInt(int64(pgn)), 3)
	}
	return finish(e, 126464, 6, ctx)
}

// DecodeSupportedPGNList parses a PGN 126464 payload.
func DecodeSupportedPGNList(msg n2k.Message) (SupportedPGNList, error) {
	d := n2k.NewDecoder(msg.Data)
	code, err := d.Byte()
	if err != nil {
		return SupportedPGNList{}, err
	}
	l := SupportedPGNList{Transmit: code == 0}
	for d.Len() >= 3 {
		pgn, err := d.Uint(3)
		if err != nil {
			return l, err
		}
		l.PGNs = append(l.PGNs, uint32(pgn.Value))
	}
	return l, nil
}
