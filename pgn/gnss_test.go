package pgn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	n2k "github.com/oceanbus/n2k-node"
)

func TestGNSSPositionData_roundTrip(t *testing.T) {
	g := GNSSPositionData{
		SID:                  1,
		DaysSince1970:        19876,
		SecondsSinceMidnight: n2k.NewDouble(43200),
		Latitude:             n2k.NewDouble(37.7749),
		Longitude:            n2k.NewDouble(-122.4194),
		Altitude:             n2k.NewDouble(15.0),
		Method:               GNSSGNSSFix,
		Integrity:            1,
		NumSatellites:        9,
		HDOP:                 n2k.NewDouble(0.9),
		PDOP:                 n2k.NewDouble(1.5),
		GeoidalSeparation:    n2k.NewDouble(-30.1),
	}
	msg, err := g.EncodeMessage(txCtx())
	require.NoError(t, err)

	got, err := DecodeGNSSPositionData(msg)
	require.NoError(t, err)
	assert.Equal(t, g.SID, got.SID)
	assert.Equal(t, g.DaysSince1970, got.DaysSince1970)
	assert.InDelta(t, g.Latitude.Value, got.Latitude.Value, 1e-9)
	assert.InDelta(t, g.Longitude.Value, got.Longitude.Value, 1e-9)
	assert.Equal(t, g.Method, got.Method)
	assert.Equal(t, g.Integrity, got.Integrity)
	assert.Equal(t, g.NumSatellites, got.NumSatellites)
	assert.Empty(t, got.RawReferenceStations)
}

func TestGNSSPositionData_preservesRawReferenceStations(t *testing.T) {
	g := GNSSPositionData{
		Method:               GNSSDGNSSFix,
		RawReferenceStations: []byte{0x01, 0x02, 0x03, 0x04},
	}
	msg, err := g.EncodeMessage(txCtx())
	require.NoError(t, err)

	got, err := DecodeGNSSPositionData(msg)
	require.NoError(t, err)
	assert.Equal(t, g.RawReferenceStations, got.RawReferenceStations)
}

func TestNavigationInfo_roundTrip(t *testing.T) {
	n := NavigationInfo{
		SID:                  2,
		DistanceToWaypoint:   n2k.NewDouble(1500.5),
		CourseBearingRef:     HeadingTrue,
		PerpendicularCrossed: true,
		ArrivalCircleEntered: false,
		BearingOriginToDest:  n2k.NewDouble(1.2),
		BearingPosToDest:     n2k.NewDouble(1.3),
		OriginWaypointID:     1,
		DestWaypointID:       2,
		DestLatitude:         n2k.NewDouble(10.0),
		DestLongitude:        n2k.NewDouble(20.0),
		WaypointClosingSpeed: n2k.NewDouble(3.3),
	}
	msg, err := n.EncodeMessage(txCtx())
	require.NoError(t, err)

	got, err := DecodeNavigationInfo(msg)
	require.NoError(t, err)
	assert.Equal(t, n.SID, got.SID)
	assert.Equal(t, n.CourseBearingRef, got.CourseBearingRef)
	assert.Equal(t, n.PerpendicularCrossed, got.PerpendicularCrossed)
	assert.Equal(t, n.ArrivalCircleEntered, got.ArrivalCircleEntered)
	assert.Equal(t, n.OriginWaypointID, got.OriginWaypointID)
	assert.Equal(t, n.DestWaypointID, got.DestWaypointID)
	assert.InDelta(t, n.DestLatitude.Value, got.DestLatitude.Value, 1e-6)
}

func TestSatellitesInView_roundTrip(t *testing.T) {
	s := SatellitesInView{
		SID:               1,
		RangeResidualMode: 1,
		Satellites: []Satellite{
			{PRN: 12, Elevation: n2k.NewDouble(0.5), Azimuth: n2k.NewDouble(2.1), SNR: n2k.NewDouble(35.5), RangeResiduals: n2k.NewInt(120), UsageStatus: 1},
			{PRN: 24, Elevation: n2k.NewDouble(0.8), Azimuth: n2k.NewDouble(4.2), SNR: n2k.NewDouble(40.1), RangeResiduals: n2k.NewInt(-50), UsageStatus: 2},
		},
	}
	msg, err := s.EncodeMessage(txCtx())
	require.NoError(t, err)

	got, err := DecodeSatellitesInView(msg)
	require.NoError(t, err)
	require.Len(t, got.Satellites, 2)
	assert.Equal(t, s.Satellites[0].PRN, got.Satellites[0].PRN)
	assert.Equal(t, s.Satellites[1].RangeResiduals.Value, got.Satellites[1].RangeResiduals.Value)
}

func TestHeadingTrackControl_roundTrip(t *testing.T) {
	h := HeadingTrackControl{
		Override:                 true,
		SteeringMode:             2,
		TurnMode:                 1,
		HeadingReference:         HeadingMagnetic,
		CommandedRudderDirection: 1,
		CommandedRudderAngle:     n2k.NewDouble(0.05),
		HeadingToSteer:           n2k.NewDouble(1.57),
		Track:                    n2k.NewDouble(1.6),
		RudderLimit:              n2k.NewDouble(0.3),
		OffHeadingLimit:          n2k.NewDouble(0.1),
		RadiusOfTurn:             n2k.NewDouble(100),
		RateOfTurn:               n2k.NewDouble(0.01),
		OffTrackLimit:            n2k.NewDouble(50),
		VesselHeading:            n2k.NewDouble(1.0),
	}
	msg, err := h.EncodeMessage(txCtx())
	require.NoError(t, err)

	got, err := DecodeHeadingTrackControl(msg)
	require.NoError(t, err)
	assert.Equal(t, h.Override, got.Override)
	assert.Equal(t, h.SteeringMode, got.SteeringMode)
	assert.Equal(t, h.HeadingReference, got.HeadingReference)
	assert.InDelta(t, h.CommandedRudderAngle.Value, got.CommandedRudderAngle.Value, 0.0001)
	assert.InDelta(t, h.RadiusOfTurn.Value, got.RadiusOfTurn.Value, 1)
}
