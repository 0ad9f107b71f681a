package pgn

import n2k "github.com/oceanbus/n2k-node"

// EngineStatusFlag is one bit of an engine discrete-status word.
type EngineStatusFlag uint16

const (
	EngineCheckEngine        EngineStatusFlag = 1 << 0
	EngineOverTemperature    EngineStatusFlag = 1 << 1
	EngineLowOilPressure     EngineStatusFlag = 1 << 2
	EngineLowOilLevel        EngineStatusFlag = 1 << 3
	EngineLowFuelPressure    EngineStatusFlag = 1 << 4
	EngineLowSystemVoltage   EngineStatusFlag = 1 << 5
	EngineLowCoolantLevel    EngineStatusFlag = 1 << 6
	EngineWaterFlow          EngineStatusFlag = 1 << 7
	EngineWaterInFuel        EngineStatusFlag = 1 << 8
	EngineChargeIndicator    EngineStatusFlag = 1 << 9
	EnginePreheatIndicator   EngineStatusFlag = 1 << 10
	EngineHighBoostPressure  EngineStatusFlag = 1 << 11
	EngineRevLimitExceeded   EngineStatusFlag = 1 << 12
	EngineEGRSystem          EngineStatusFlag = 1 << 13
	EngineThrottlePosSensor  EngineStatusFlag = 1 << 14
	EngineEmergencyStop      EngineStatusFlag = 1 << 15
)

// EngineDiscreteStatus is a bit-packed set of engine warning flags, the way
// PGN 127488/127489 carry them on the wire: a plain uint16 with named bit
// constants rather than a runtime-loaded schema.
type EngineDiscreteStatus uint16

// NewEngineDiscreteStatus ORs together the given flags.
func NewEngineDiscreteStatus(flags ...EngineStatusFlag) EngineDiscreteStatus {
	var v EngineDiscreteStatus
	for _, f := range flags {
		v |= EngineDiscreteStatus(f)
	}
	return v
}

// EngineDiscreteStatusFromRaw wraps a raw 16-bit field read off the wire.
func EngineDiscreteStatusFromRaw(raw uint16) EngineDiscreteStatus {
	return EngineDiscreteStatus(raw)
}

// Has reports whether flag is set.
func (s EngineDiscreteStatus) Has(flag EngineStatusFlag) bool {
	return uint16(s)&uint16(flag) != 0
}

// Raw returns the bit pattern to place on the wire.
func (s EngineDiscreteStatus) Raw() uint16 { return uint16(s) }

// EngineParametersRapid is PGN 127488.
type EngineParametersRapid struct {
	Instance    uint8
	Speed       n2k.Double // rpm, unsigned, resolution 0.25
	BoostPressure n2k.Double // hPa, unsigned, resolution 1
	TiltTrim    n2k.Int    // percent, signed, -100..100
	Status      EngineDiscreteStatus
}

func (EngineParametersRapid) PGN() uint32 { return 127488 }

func (r EngineParametersRapid) EncodeMessage(ctx n2k.TxContext) (n2k.Message, error) {
	e := n2k.NewEncoder()
	e.AddByte(r.Instance)
	e.AddDouble(r.Speed, 0.25, 2, false)
	e.AddDouble(r.BoostPressure, 1, 2, false)
	e.AddInt(r.TiltTrim, 1)
	e.AddUint(n2k.NewInt(int64(r.Status.Raw())), 2)
	return finish(e, 127488, 2, ctx)
}

func DecodeEngineParametersRapid(msg n2k.Message) (EngineParametersRapid, error) {
	d := n2k.NewDecoder(msg.Data)
	instance, err := d.Byte()
	if err != nil {
		return EngineParametersRapid{}, err
	}
	speed, err := d.Double(0.25, 2, false)
	if err != nil {
		return EngineParametersRapid{}, err
	}
	boost, err := d.Double(1, 2, false)
	if err != nil {
		return EngineParametersRapid{}, err
	}
	tilt, err := d.Int(1)
	if err != nil {
		return EngineParametersRapid{}, err
	}
	status, err := d.Uint(2)
	if err != nil {
		return EngineParametersRapid{}, err
	}
	return EngineParametersRapid{
		Instance:      instance,
		Speed:         speed,
		BoostPressure: boost,
		TiltTrim:      tilt,
		Status:        EngineDiscreteStatusFromRaw(uint16(status.Value)),
	}, nil
}

// EngineParametersDynamic is PGN 127489 (Fast Packet).
type EngineParametersDynamic struct {
	Instance          uint8
	OilPressure       n2k.Double // hPa, unsigned, resolution 100
	OilTemperature    n2k.Double // K, unsigned, resolution 0.1
	CoolantTemperature n2k.Double // K, unsigned, resolution 0.01
	AlternatorVoltage n2k.Double // V, signed, resolution 0.01
	FuelRate          n2k.Double // L/h, signed, resolution 0.1
	EngineHours       n2k.Double // s, unsigned, resolution 1
	CoolantPressure   n2k.Double // hPa, unsigned, resolution 1
	FuelPressure      n2k.Double // hPa, unsigned, resolution 1
	Status1           EngineDiscreteStatus
	Status2           EngineDiscreteStatus
	PercentLoad       n2k.Int // percent, signed
	PercentTorque     n2k.Int // percent, signed
}

func (EngineParametersDynamic) PGN() uint32 { return 127489 }

func (r EngineParametersDynamic) EncodeMessage(ctx n2k.TxContext) (n2k.Message, error) {
	e := n2k.NewEncoder()
	e.AddByte(r.Instance)
	e.AddDouble(r.OilPressure, 100, 2, false)
	e.AddDouble(r.OilTemperature, 0.1, 2, false)
	e.AddDouble(r.CoolantTemperature, 0.01, 2, false)
	e.AddDouble(r.AlternatorVoltage, 0.01, 2, true)
	e.AddDouble(r.FuelRate, 0.1, 2, true)
	e.AddDouble(r.EngineHours, 1, 4, false)
	e.AddDouble(r.CoolantPressure, 1, 2, false)
	e.AddDouble(r.FuelPressure, 1, 2, false)
	e.AddByte(0xFF) // reserved
	e.AddUint(n2k.NewInt(int64(r.Status1.Raw())), 2)
	e.AddUint(n2k.NewInt(int64(r.Status2.Raw())), 2)
	e.AddInt(r.PercentLoad, 1)
	e.AddInt(r.PercentTorque, 1)
	return finish(e, 127489, 2, ctx)
}

func DecodeEngineParametersDynamic(msg n2k.Message) (EngineParametersDynamic, error) {
	d := n2k.NewDecoder(msg.Data)
	var r EngineParametersDynamic
	var err error
	if r.Instance, err = d.Byte(); err != nil {
		return r, err
	}
	if r.OilPressure, err = d.Double(100, 2, false); err != nil {
		return r, err
	}
	if r.OilTemperature, err = d.Double(0.1, 2, false); err != nil {
		return r, err
	}
	if r.CoolantTemperature, err = d.Double(0.01, 2, false); err != nil {
		return r, err
	}
	if r.AlternatorVoltage, err = d.Double(0.01, 2, true); err != nil {
		return r, err
	}
	if r.FuelRate, err = d.Double(0.1, 2, true); err != nil {
		return r, err
	}
	if r.EngineHours, err = d.Double(1, 4, false); err != nil {
		return r, err
	}
	if r.CoolantPressure, err = d.Double(1, 2, false); err != nil {
		return r, err
	}
	if r.FuelPressure, err = d.Double(1, 2, false); err != nil {
		return r, err
	}
	d.Skip(1)
	status1, err := d.Uint(2)
	if err != nil {
		return r, err
	}
	status2, err := d.Uint(2)
	if err != nil {
		return r, err
	}
	r.Status1 = EngineDiscreteStatusFromRaw(uint16(status1.Value))
	r.Status2 = EngineDiscreteStatusFromRaw(uint16(status2.Value))
	if r.PercentLoad, err = d.Int(1); err != nil {
		return r, err
	}
	if r.PercentTorque, err = d.Int(1); err != nil {
		return r, err
	}
	return r, nil
}

// FluidType is the tank-content lookup for PGN 127505.
type FluidType uint8

const (
	FluidFuel FluidType = iota
	FluidWater
	FluidGrayWater
	FluidLiveWell
	FluidOil
	FluidBlackWater
)

// FluidLevel is PGN 127505.
type FluidLevel struct {
	Instance uint8
	Type     FluidType
	Level    n2k.Double // percent, unsigned, resolution 0.004
	Capacity n2k.Double // liters, unsigned, resolution 0.1
}

func (FluidLevel) PGN() uint32 { return 127505 }

func (f FluidLevel) EncodeMessage(ctx n2k.TxContext) (n2k.Message, error) {
	e := n2k.NewEncoder()
	e.AddByte(uint8(f.Instance&0xF) | uint8(f.Type&0xF)<<4)
	e.AddDouble(f.Level, 0.004, 2, false)
	e.AddDouble(f.Capacity, 0.1, 4, false)
	return finish(e, 127505, 6, ctx)
}

func DecodeFluidLevel(msg n2k.Message) (FluidLevel, error) {
	d := n2k.NewDecoder(msg.Data)
	b, err := d.Byte()
	if err != nil {
		return FluidLevel{}, err
	}
	level, err := d.Double(0.004, 2, false)
	if err != nil {
		return FluidLevel{}, err
	}
	capacity, err := d.Double(0.1, 4, false)
	if err != nil {
		return FluidLevel{}, err
	}
	return FluidLevel{Instance: b & 0xF, Type: FluidType(b >> 4), Level: level, Capacity: capacity}, nil
}

// BatteryStatus is PGN 127508.
type BatteryStatus struct {
	Instance    uint8
	Voltage     n2k.Double // V, signed, resolution 0.01
	Current     n2k.Double // A, signed, resolution 0.1
	Temperature n2k.Double // K, unsigned, resolution 0.01
	SID         uint8
}

func (BatteryStatus) PGN() uint32 { return 127508 }

func (b BatteryStatus) EncodeMessage(ctx n2k.TxContext) (n2k.Message, error) {
	e := n2k.NewEncoder()
	e.AddByte(b.Instance)
	e.AddDouble(b.Voltage, 0.01, 2, true)
	e.AddDouble(b.Current, 0.1, 2, true)
	e.AddDouble(b.Temperature, 0.01, 2, false)
	e.AddByte(b.SID)
	return finish(e, 127508, 6, ctx)
}

func DecodeBatteryStatus(msg n2k.Message) (BatteryStatus, error) {
	d := n2k.NewDecoder(msg.Data)
	instance, err := d.Byte()
	if err != nil {
		return BatteryStatus{}, err
	}
	voltage, err := d.Double(0.01, 2, true)
	if err != nil {
		return BatteryStatus{}, err
	}
	current, err := d.Double(0.1, 2, true)
	if err != nil {
		return BatteryStatus{}, err
	}
	temperature, err := d.Double(0.01, 2, false)
	if err != nil {
		return BatteryStatus{}, err
	}
	sid, err := d.Byte()
	if err != nil {
		return BatteryStatus{}, err
	}
	return BatteryStatus{Instance: instance, Voltage: voltage, Current: current, Temperature: temperature, SID: sid}, nil
}
