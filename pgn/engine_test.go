package pgn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	n2k "github.com/oceanbus/n2k-node"
)

func TestEngineDiscreteStatus_flags(t *testing.T) {
	s := NewEngineDiscreteStatus(EngineCheckEngine, EngineLowOilPressure)
	assert.True(t, s.Has(EngineCheckEngine))
	assert.True(t, s.Has(EngineLowOilPressure))
	assert.False(t, s.Has(EngineOverTemperature))

	roundTripped := EngineDiscreteStatusFromRaw(s.Raw())
	assert.Equal(t, s, roundTripped)
}

func TestEngineParametersRapid_roundTrip(t *testing.T) {
	r := EngineParametersRapid{
		Instance:      0,
		Speed:         n2k.NewDouble(1800),
		BoostPressure: n2k.NewDouble(150),
		TiltTrim:      n2k.NewInt(-10),
		Status:        NewEngineDiscreteStatus(EngineLowFuelPressure),
	}
	msg, err := r.EncodeMessage(txCtx())
	require.NoError(t, err)
	got, err := DecodeEngineParametersRapid(msg)
	require.NoError(t, err)
	assert.Equal(t, r.Instance, got.Instance)
	assert.InDelta(t, r.Speed.Value, got.Speed.Value, 0.25)
	assert.InDelta(t, r.BoostPressure.Value, got.BoostPressure.Value, 1)
	assert.Equal(t, r.TiltTrim.Value, got.TiltTrim.Value)
	assert.True(t, got.Status.Has(EngineLowFuelPressure))
}

func TestEngineParametersDynamic_roundTrip(t *testing.T) {
	r := EngineParametersDynamic{
		Instance:           0,
		OilPressure:        n2k.NewDouble(400000),
		OilTemperature:     n2k.NewDouble(360.0),
		CoolantTemperature: n2k.NewDouble(353.15),
		AlternatorVoltage:  n2k.NewDouble(14.2),
		FuelRate:           n2k.NewDouble(12.5),
		EngineHours:        n2k.NewDouble(12345),
		CoolantPressure:    n2k.NewDouble(100),
		FuelPressure:       n2k.NewDouble(300),
		Status1:            NewEngineDiscreteStatus(EngineChargeIndicator),
		Status2:            NewEngineDiscreteStatus(),
		PercentLoad:        n2k.NewInt(75),
		PercentTorque:      n2k.NewInt(-5),
	}
	msg, err := r.EncodeMessage(txCtx())
	require.NoError(t, err)
	assert.Equal(t, uint32(127489), msg.PGN)

	got, err := DecodeEngineParametersDynamic(msg)
	require.NoError(t, err)
	assert.Equal(t, r.Instance, got.Instance)
	assert.InDelta(t, r.OilTemperature.Value, got.OilTemperature.Value, 0.1)
	assert.InDelta(t, r.AlternatorVoltage.Value, got.AlternatorVoltage.Value, 0.01)
	assert.Equal(t, r.PercentLoad.Value, got.PercentLoad.Value)
	assert.Equal(t, r.PercentTorque.Value, got.PercentTorque.Value)
	assert.True(t, got.Status1.Has(EngineChargeIndicator))
}

func TestFluidLevel_roundTrip(t *testing.T) {
	f := FluidLevel{Instance: 1, Type: FluidWater, Level: n2k.NewDouble(50), Capacity: n2k.NewDouble(200)}
	msg, err := f.EncodeMessage(txCtx())
	require.NoError(t, err)
	got, err := DecodeFluidLevel(msg)
	require.NoError(t, err)
	assert.Equal(t, f.Instance, got.Instance)
	assert.Equal(t, f.Type, got.Type)
	assert.InDelta(t, f.Level.Value, got.Level.Value, 0.01)
	assert.InDelta(t, f.Capacity.Value, got.Capacity.Value, 0.1)
}

func TestBatteryStatus_roundTrip(t *testing.T) {
	b := BatteryStatus{Instance: 0, Voltage: n2k.NewDouble(12.6), Current: n2k.NewDouble(-2.5), Temperature: n2k.NewDouble(298.15), SID: 3}
	msg, err := b.EncodeMessage(txCtx())
	require.NoError(t, err)
	got, err := DecodeBatteryStatus(msg)
	require.NoError(t, err)
	assert.InDelta(t, b.Voltage.Value, got.Voltage.Value, 0.01)
	assert.InDelta(t, b.Current.Value, got.Current.Value, 0.1)
	assert.InDelta(t, b.Temperature.Value, got.Temperature.Value, 0.01)
	assert.Equal(t, b.SID, got.SID)
}
